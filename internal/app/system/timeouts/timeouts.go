// Package timeouts centralizes request-scoped deadline presets so
// handlers and stores agree on how long a database operation may take.
package timeouts

import "time"

// Short is for single-document lookups.
func Short() time.Duration { return 5 * time.Second }

// Medium is for writes and small multi-document queries.
func Medium() time.Duration { return 10 * time.Second }

// Long is for list queries and transactional multi-collection work.
func Long() time.Duration { return 30 * time.Second }

// Ping is for health-check pings.
func Ping() time.Duration { return 2 * time.Second }
