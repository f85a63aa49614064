// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kinship Contributors

package health

import (
	"context"
	"time"
)

// Summarizer is the slice of the store the health probe needs.
type Summarizer interface {
	Summary(ctx context.Context) (counts map[string]int, err error)
}

// Status is a point-in-time health snapshot, safe to serialize to JSON.
type Status struct {
	Status    string    `json:"status"`
	Objects   int       `json:"objects"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Check probes the store and reports whether it is reachable. A probe
// failure degrades the status instead of failing the endpoint, so load
// balancers can tell a dead store from a dead process.
func Check(ctx context.Context, s Summarizer) Status {
	st := Status{Status: "ok", CheckedAt: time.Now().UTC()}

	counts, err := s.Summary(ctx)
	if err != nil {
		st.Status = "degraded"
		st.Error = err.Error()
		return st
	}
	for _, n := range counts {
		st.Objects += n
	}
	return st
}
