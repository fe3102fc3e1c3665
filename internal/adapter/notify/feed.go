package notify

import (
	"context"
	"sync"
	"time"

	"autoupgrader/internal/app/ports"
)

const DefaultFeedCapacity = 100

type Entry struct {
	Seq     int64       `json:"seq"`
	Level   ports.Level `json:"level"`
	Message string      `json:"message"`
	At      time.Time   `json:"at"`
}

// Feed keeps the most recent notifications for the control surface.
type Feed struct {
	mu       sync.Mutex
	entries  []Entry
	capacity int
	seq      int64
	now      func() time.Time
}

func NewFeed(capacity int) *Feed {
	if capacity <= 0 {
		capacity = DefaultFeedCapacity
	}
	return &Feed{capacity: capacity, now: time.Now}
}

func (f *Feed) Notify(_ context.Context, level ports.Level, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	f.entries = append(f.entries, Entry{Seq: f.seq, Level: level, Message: message, At: f.now().UTC()})
	if over := len(f.entries) - f.capacity; over > 0 {
		f.entries = append(f.entries[:0:0], f.entries[over:]...)
	}
}

// Recent returns up to limit entries, newest first. A non-positive limit
// returns everything retained.
func (f *Feed) Recent(limit int) []Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.entries)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]Entry, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, f.entries[i])
	}
	return out
}
