package types

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// ItemFailure records one item-local error with the logical remote path
// that failed, so the user can retry it by hand.
type ItemFailure struct {
	Path  string `json:"path"`
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

// SyncStats accumulates the outcome of one synchronization run.
type SyncStats struct {
	Downloaded uint          `json:"downloaded"`
	Displaced  uint          `json:"displaced"`
	Errors     uint          `json:"errors"`
	Bytes      uint64        `json:"bytes"`
	Failures   []ItemFailure `json:"failures"`
}

func NewSyncStats() *SyncStats {
	return &SyncStats{Failures: []ItemFailure{}}
}

// RecordFailure increments the error counter and keeps the failure details
func (s *SyncStats) RecordFailure(path, kind string, err error) {
	s.Errors++
	s.Failures = append(s.Failures, ItemFailure{
		Path:  path,
		Kind:  kind,
		Error: err.Error(),
	})
}

// SyncSummary is the result of the sync command
type SyncSummary struct {
	Repository  string     `json:"repository"`
	Provider    string     `json:"provider"`
	Destination string     `json:"destination"`
	RunID       string     `json:"runId"`
	Stats       *SyncStats `json:"stats"`
}

func (s *SyncSummary) Headers() []string {
	return []string{"Repository", "Destination", "Downloaded", "Displaced", "Errors", "Size"}
}

func (s *SyncSummary) Rows() [][]string {
	stats := s.Stats
	if stats == nil {
		stats = NewSyncStats()
	}
	return [][]string{{
		s.Repository,
		s.Destination,
		fmt.Sprintf("%d", stats.Downloaded),
		fmt.Sprintf("%d", stats.Displaced),
		fmt.Sprintf("%d", stats.Errors),
		humanize.Bytes(stats.Bytes),
	}}
}

func (s *SyncSummary) EmptyMessage() string {
	return "Nothing synchronized"
}
