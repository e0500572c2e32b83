package ocrcall

import (
	"sync"
	"time"
)

// DefaultCapacity bounds the in-memory log when none is configured.
const DefaultCapacity = 100

// QueryFilter specifies filters for listing calls.
type QueryFilter struct {
	After   *time.Time
	Before  *time.Time
	Success *bool
	Limit   int
	Offset  int
}

// Log keeps the most recent calls in memory, oldest dropped first.
type Log struct {
	mu       sync.RWMutex
	calls    []Call
	capacity int
}

// NewLog creates a log holding at most capacity calls.
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{capacity: capacity}
}

// Add appends a call, evicting the oldest when full.
func (l *Log) Add(c Call) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.calls) == l.capacity {
		copy(l.calls, l.calls[1:])
		l.calls = l.calls[:len(l.calls)-1]
	}
	l.calls = append(l.calls, c)
}

// Get returns the call with id, or nil.
func (l *Log) Get(id string) *Call {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for i := len(l.calls) - 1; i >= 0; i-- {
		if l.calls[i].ID == id {
			c := l.calls[i]
			return &c
		}
	}
	return nil
}

// List returns calls matching filter, newest first.
func (l *Log) List(filter QueryFilter) []Call {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Call, 0)
	skipped := 0
	for i := len(l.calls) - 1; i >= 0; i-- {
		c := l.calls[i]
		if filter.Success != nil && c.Success != *filter.Success {
			continue
		}
		if filter.After != nil && !c.Timestamp.After(*filter.After) {
			continue
		}
		if filter.Before != nil && !c.Timestamp.Before(*filter.Before) {
			continue
		}
		if skipped < filter.Offset {
			skipped++
			continue
		}
		out = append(out, c)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out
}

// Len returns the number of calls held.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.calls)
}
