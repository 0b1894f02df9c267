// Package config loads the process configuration (spec.md §6 "Process
// inputs"), grounded on the teacher's YAML-plus-environment-override
// Config/Load/LoadWithEnv/Validate shape, using creasty/defaults and
// go-playground/validator the way the rest of the retrieved corpus does
// for request/config structs.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("iana_timezone", func(fl validator.FieldLevel) bool {
		_, err := time.LoadLocation(fl.Field().String())
		return err == nil
	})
	return v
}

// RegionInput is one configured upstream bridge region (spec.md §6:
// "per-region upstream endpoints").
type RegionInput struct {
	RegionShort            string        `yaml:"region_short" validate:"required"`
	RegionName             string        `yaml:"region_name" validate:"required"`
	Endpoint               string        `yaml:"endpoint" validate:"required,url"`
	InsecureSkipVerifyHost string        `yaml:"insecure_skip_verify_host"`
	Bridges                []BridgeInput `yaml:"bridges" validate:"dive"`
}

// BridgeInput is one bridge's static identity within a region.
type BridgeInput struct {
	ID   string  `yaml:"id" validate:"required"`
	Name string  `yaml:"name" validate:"required"`
	Lat  float64 `yaml:"lat" validate:"required"`
	Lng  float64 `yaml:"lng" validate:"required"`
}

// Config is the full process configuration.
type Config struct {
	Environment string `yaml:"environment" default:"production"`
	Timezone    string `yaml:"timezone" default:"America/Toronto" validate:"iana_timezone"`

	Server struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`

	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`

	Persistence struct {
		SnapshotPath string `yaml:"snapshot_path" default:"data/bridges.json"`
		HistoryDir   string `yaml:"history_dir" default:"data/history"`
	} `yaml:"persistence"`

	AIS struct {
		UDPEnabled    bool              `yaml:"udp_enabled"`
		UDPPort       int               `yaml:"udp_port" validate:"required_if=UDPEnabled true"`
		UDPStationMap map[string]string `yaml:"udp_station_map"`
		AISHubAPIKey  string            `yaml:"aishub_api_key"`
		AISHubURL     string            `yaml:"aishub_url" default:"https://data.aishub.net/ws.php"`
	} `yaml:"ais"`

	Bridges struct {
		DayScrapeInterval   time.Duration `yaml:"day_scrape_interval" default:"20s"`
		NightScrapeInterval time.Duration `yaml:"night_scrape_interval" default:"30s"`
		Regions             []RegionInput `yaml:"regions" validate:"required,min=1,dive"`
	} `yaml:"bridges"`

	RateLimit struct {
		DataPerMinute   int    `yaml:"data_per_minute" default:"60"`
		StaticPerMinute int    `yaml:"static_per_minute" default:"30"`
		RedisAddr       string `yaml:"redis_addr"`
	} `yaml:"rate_limit"`

	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers" validate:"required_if=Enabled true"`
		Topic        string   `yaml:"topic" validate:"required_if=Enabled true"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
	} `yaml:"kafka"`
}

// Load reads and parses a YAML configuration file, applying defaults to
// any field the file leaves unset before validating.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply config defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides select fields from the
// environment, for secrets that should not live in a checked-in file.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("AISHUB_API_KEY"); v != "" {
		c.AIS.AISHubAPIKey = v
	}
	if v := os.Getenv("AIS_UDP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.AIS.UDPPort = port
		}
	}
	if v := os.Getenv("SNAPSHOT_PATH"); v != "" {
		c.Persistence.SnapshotPath = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.RateLimit.RedisAddr = v
	}

	return c, nil
}

// Validate checks the configuration's structural invariants.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	for _, r := range c.Bridges.Regions {
		if r.InsecureSkipVerifyHost != "" && r.InsecureSkipVerifyHost != r.RegionShort && !strings.Contains(r.Endpoint, r.InsecureSkipVerifyHost) {
			return fmt.Errorf("region %q: insecure_skip_verify_host %q does not match its endpoint", r.RegionShort, r.InsecureSkipVerifyHost)
		}
	}
	return nil
}

// AISHubEnabled reports whether the AISHub HTTP poller should run
// (spec.md §6: "if unset, HTTP poller disabled").
func (c *Config) AISHubEnabled() bool {
	return c.AIS.AISHubAPIKey != ""
}
