package ais

import (
	"context"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"seawaywatch/internal/domain/models"
	"seawaywatch/internal/domain/repository"
	"seawaywatch/pkg/logger"
)

// flushInterval is the fixed coalescing window of spec.md §4.3: decoded
// records are buffered per source/mmsi and flushed to the registry on
// this cadence, last-writer-wins within the window.
const flushInterval = 5 * time.Second

// udpReadBufferBytes sizes the per-datagram read buffer; a UDP packet
// may carry several AIS sentences concatenated by newline.
const udpReadBufferBytes = 4096

// Listener binds a single UDP socket and coalesces decoded AIS records
// into the vessel registry on a fixed flush timer (spec.md §4.3, §5).
type Listener struct {
	port       int
	stationMap map[string]string
	decoder    *Decoder
	registry   repository.VesselRegistry
	clock      repository.Clock
	metrics    repository.Metrics
	log        *logger.Logger

	mu     sync.Mutex
	buffer map[string]models.Update // keyed by "station|mmsi"
}

// NewListener builds a Listener. stationMap maps a sender IP to a
// station identifier; unmapped IPs fall back to the IP string itself
// (spec.md §4.3: "unmapped IPs get a synthetic identifier").
func NewListener(port int, stationMap map[string]string, registry repository.VesselRegistry, clock repository.Clock, metrics repository.Metrics, log *logger.Logger) *Listener {
	return &Listener{
		port:       port,
		stationMap: stationMap,
		decoder:    NewDecoder(),
		registry:   registry,
		clock:      clock,
		metrics:    metrics,
		log:        log,
		buffer:     make(map[string]models.Update),
	}
}

// Run binds the socket, reads datagrams until ctx is cancelled, and
// flushes the coalescing buffer to the registry every flushInterval.
// It blocks until the socket is closed (on ctx cancellation) and the
// read loop has returned.
func (l *Listener) Run(ctx context.Context) error {
	conn, err := net.ListenPacket("udp", fmtPort(l.port))
	if err != nil {
		return err
	}

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		l.readLoop(conn)
	}()

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close()
			<-readDone
			l.flush()
			return nil
		case <-ticker.C:
			l.flush()
		}
	}
}

func (l *Listener) readLoop(conn net.PacketConn) {
	buf := make([]byte, udpReadBufferBytes)
	for {
		n, addr, err := conn.ReadFrom(buf)
		if err != nil {
			return // socket closed by Run on shutdown
		}
		l.handleDatagram(buf[:n], addr)
	}
}

func (l *Listener) handleDatagram(data []byte, addr net.Addr) {
	station := l.stationFor(addr)
	now := l.clock.Now()

	for _, sentence := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		update, ok := l.decoder.Decode(sentence, now)
		if !ok {
			if l.metrics != nil {
				l.metrics.RecordAISMessage(station, true)
			}
			continue
		}
		if l.metrics != nil {
			l.metrics.RecordAISMessage(station, false)
		}
		l.bufferUpdate(station, update)
	}
}

func (l *Listener) bufferUpdate(station string, u models.Update) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := station + "|" + strconv.Itoa(u.MMSI)
	l.buffer[key] = u // last-writer-wins within the flush window
}

func (l *Listener) flush() {
	l.mu.Lock()
	pending := l.buffer
	l.buffer = make(map[string]models.Update)
	l.mu.Unlock()

	for _, u := range pending {
		if err := l.registry.Merge(u); err != nil {
			l.log.Debug("udp update rejected", logger.String("reason", err.Error()))
		}
	}
}

func (l *Listener) stationFor(addr net.Addr) string {
	host := addr.String()
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if id, ok := l.stationMap[host]; ok {
		return id
	}
	return host
}

func fmtPort(port int) string {
	return ":" + strconv.Itoa(port)
}
