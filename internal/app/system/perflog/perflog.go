// Package perflog keeps a bounded in-memory log of recent requests for
// the monitoring page. Old entries are overwritten in ring-buffer
// fashion, so memory use is fixed no matter how long the process runs.
package perflog

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Entry is one recorded request.
type Entry struct {
	ID       string        `json:"id"`
	Method   string        `json:"method"`
	Path     string        `json:"path"`
	Status   int           `json:"status"`
	Duration time.Duration `json:"duration_ns"`
	At       time.Time     `json:"at"`
}

// Buffer is a fixed-capacity ring of entries, safe for concurrent use.
type Buffer struct {
	mu      sync.Mutex
	entries []Entry
	next    int
	full    bool
}

// DefaultCapacity bounds the monitoring buffer when no size is configured.
const DefaultCapacity = 512

func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{entries: make([]Entry, capacity)}
}

// Record adds an entry, overwriting the oldest when full.
func (b *Buffer) Record(e Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[b.next] = e
	b.next++
	if b.next == len(b.entries) {
		b.next = 0
		b.full = true
	}
}

// Snapshot returns the recorded entries, newest first.
func (b *Buffer) Snapshot() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.next
	if b.full {
		n = len(b.entries)
	}
	out := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		idx := b.next - 1 - i
		if idx < 0 {
			idx += len(b.entries)
		}
		out = append(out, b.entries[idx])
	}
	return out
}

// Len reports how many entries are currently held.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.full {
		return len(b.entries)
	}
	return b.next
}

// Middleware records every request's method, path, status, and latency
// into the buffer.
func Middleware(buf *Buffer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			buf.Record(Entry{
				ID:       uuid.NewString(),
				Method:   r.Method,
				Path:     r.URL.Path,
				Status:   ww.Status(),
				Duration: time.Since(start),
				At:       start.UTC(),
			})
		})
	}
}
