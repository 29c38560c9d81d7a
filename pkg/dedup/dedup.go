// Package dedup remembers recently seen keys so QoS-1 redeliveries can be
// dropped.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

type Deduper struct {
	mu   sync.Mutex
	ttl  time.Duration
	max  int
	seen map[string]time.Time
	now  func() time.Time
}

func New(ttl time.Duration, max int) *Deduper {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if max <= 0 {
		max = 10000
	}
	return &Deduper{ttl: ttl, max: max, seen: make(map[string]time.Time), now: time.Now}
}

// PayloadKey hashes a payload; identical redeliveries share the key.
func PayloadKey(payload []byte) string {
	h := sha256.Sum256(payload)
	return hex.EncodeToString(h[:])
}

// Seen records id and reports whether it was already recorded and unexpired.
func (d *Deduper) Seen(id string) bool {
	if id == "" {
		return false
	}
	now := d.now()
	d.mu.Lock()
	defer d.mu.Unlock()
	exp, ok := d.seen[id]
	d.seen[id] = now.Add(d.ttl)
	if ok && now.Before(exp) {
		return true
	}
	if len(d.seen) > d.max {
		d.evict(now)
	}
	return false
}

// ShouldProcess is the inverse of Seen.
func (d *Deduper) ShouldProcess(id string) bool { return !d.Seen(id) }

func (d *Deduper) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}

func (d *Deduper) evict(now time.Time) {
	for k, v := range d.seen {
		if now.After(v) {
			delete(d.seen, k)
		}
	}
	// still full of live keys: drop arbitrary ones
	for k := range d.seen {
		if len(d.seen) <= d.max {
			break
		}
		delete(d.seen, k)
	}
}
