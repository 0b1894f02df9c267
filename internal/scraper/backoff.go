package scraper

import (
	"sync"
	"time"
)

// maxBackoffSeconds caps the per-region exponential backoff (spec.md
// §4.4 step 10 / §7: "next_retry_at = now + min(2^failure_count, 300)").
const maxBackoffSeconds = 300

// regionState is the per-region failure/backoff record plus the cached
// working endpoint shape (spec.md §4.4 steps 1-2).
type regionState struct {
	failureCount int
	nextRetryAt  time.Time
	shape        endpointShape
}

type endpointShape int

const (
	shapeOld endpointShape = iota
	shapeNew
)

// backoffTable is the single-mutex guard over every region's state
// (spec.md §5 concurrency table: "per-region backoff ... single mutex").
type backoffTable struct {
	mu    sync.Mutex
	byKey map[string]*regionState
}

func newBackoffTable() *backoffTable {
	return &backoffTable{byKey: make(map[string]*regionState)}
}

// Due reports whether region is eligible to be scraped this tick.
func (b *backoffTable) Due(region string, now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	st, ok := b.byKey[region]
	if !ok {
		return true
	}
	return !now.Before(st.nextRetryAt)
}

// RecordFailure increments the region's failure counter and schedules
// the next retry with exponential backoff capped at 300s.
func (b *backoffTable) RecordFailure(region string, now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	st := b.stateLocked(region)
	st.failureCount++
	delaySeconds := 1 << uint(min(st.failureCount, 9)) // 2^9=512 already exceeds cap
	if delaySeconds > maxBackoffSeconds {
		delaySeconds = maxBackoffSeconds
	}
	st.nextRetryAt = now.Add(time.Duration(delaySeconds) * time.Second)
}

// RecordSuccess clears the region's failure counter.
func (b *backoffTable) RecordSuccess(region string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	st := b.stateLocked(region)
	st.failureCount = 0
	st.nextRetryAt = time.Time{}
}

// Shape returns the cached working endpoint shape for region.
func (b *backoffTable) Shape(region string) endpointShape {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stateLocked(region).shape
}

// SetShape caches the endpoint shape that last worked for region.
func (b *backoffTable) SetShape(region string, shape endpointShape) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stateLocked(region).shape = shape
}

func (b *backoffTable) stateLocked(region string) *regionState {
	st, ok := b.byKey[region]
	if !ok {
		st = &regionState{}
		b.byKey[region] = st
	}
	return st
}
