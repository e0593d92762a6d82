// Package declog provides the append-only decision log. Entries are
// deduplicated by 0.1-minute time bucket: once any entry lands in a bucket,
// later entries for the same bucket are suppressed regardless of content.
// The log is read by the web layer while the driver appends, so access is
// guarded by an RWMutex.
package declog

import (
	"math"
	"sync"
)

// Entry is one recorded decision, ordered by insertion (not re-sorted by
// time).
type Entry struct {
	Minutes float64
	Message string
}

// Log is the deduplicated decision log for one simulation run.
type Log struct {
	mu      sync.RWMutex
	entries []Entry
	buckets map[int]struct{}
}

// New creates an empty log.
func New() *Log {
	return &Log{buckets: make(map[int]struct{})}
}

// Record appends an entry unless its 0.1-minute bucket is already taken.
// Reports whether the entry was appended.
func (l *Log) Record(minutes float64, message string) bool {
	b := bucket(minutes)

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, taken := l.buckets[b]; taken {
		return false
	}
	l.buckets[b] = struct{}{}
	l.entries = append(l.entries, Entry{Minutes: minutes, Message: message})
	return true
}

// Entries returns a copy of the log in insertion order.
func (l *Log) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Clear empties the log. This is the only way entries are ever removed.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
	l.buckets = make(map[int]struct{})
}

// bucket rounds minutes to one decimal place.
func bucket(minutes float64) int {
	return int(math.Round(minutes * 10))
}
