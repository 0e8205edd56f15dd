package dedup

import (
	"sync"
	"time"

	"barscan/internal/config"
	"barscan/internal/detect"
)

// Result is one accepted decoded payload with the detection it came from.
type Result struct {
	Payload   string           `json:"payload"`
	Source    detect.Detection `json:"source"`
	Timestamp time.Time        `json:"timestamp"`
}

// Deduplicator suppresses repeat notifications. It remembers only the single
// most recently accepted (payload, timestamp) pair: a new payload is accepted
// iff it differs from the last one, or the cooldown window has elapsed since
// that payload was last accepted. Accepted results are prepended to a
// fixed-capacity recent list, oldest evicted on overflow.
type Deduplicator struct {
	cooldown time.Duration
	capacity int

	mu           sync.Mutex
	lastPayload  string
	lastAccepted time.Time
	recent       []Result
}

func NewDeduplicator(cfg *config.Config) *Deduplicator {
	return &Deduplicator{
		cooldown: time.Duration(cfg.DedupCooldown) * time.Millisecond,
		capacity: cfg.RecentLimit,
	}
}

// Accept applies the cooldown rule to a decoded payload. It returns the
// stored result and whether it was accepted.
func (d *Deduplicator) Accept(payload string, source detect.Detection, now time.Time) (Result, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if payload == d.lastPayload && !d.lastAccepted.IsZero() && now.Sub(d.lastAccepted) <= d.cooldown {
		return Result{}, false
	}

	result := Result{
		Payload:   payload,
		Source:    source,
		Timestamp: now,
	}
	d.lastPayload = payload
	d.lastAccepted = now

	d.recent = append([]Result{result}, d.recent...)
	if len(d.recent) > d.capacity {
		d.recent = d.recent[:d.capacity]
	}

	return result, true
}

// Recent returns a snapshot of the recent-results list, newest first.
func (d *Deduplicator) Recent() []Result {
	d.mu.Lock()
	defer d.mu.Unlock()

	snapshot := make([]Result, len(d.recent))
	copy(snapshot, d.recent)
	return snapshot
}
