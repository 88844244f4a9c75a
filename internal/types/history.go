package types

import (
	"fmt"
	"time"
)

// RunRecord is one persisted synchronization run
type RunRecord struct {
	ID          string    `json:"id"`
	Repository  string    `json:"repository"`
	Provider    string    `json:"provider"`
	Destination string    `json:"destination"`
	StartedAt   time.Time `json:"startedAt"`
	FinishedAt  time.Time `json:"finishedAt"`
	Downloaded  uint      `json:"downloaded"`
	Displaced   uint      `json:"displaced"`
	Errors      uint      `json:"errors"`
	Bytes       uint64    `json:"bytes"`
}

type RunHistory struct {
	Runs []*RunRecord `json:"runs"`
}

func (h *RunHistory) Headers() []string {
	return []string{"Run", "Repository", "Destination", "Finished", "Downloaded", "Displaced", "Errors"}
}

func (h *RunHistory) Rows() [][]string {
	rows := make([][]string, 0, len(h.Runs))
	for _, r := range h.Runs {
		rows = append(rows, []string{
			truncateCell(r.ID, 11),
			r.Repository,
			r.Destination,
			r.FinishedAt.Local().Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%d", r.Downloaded),
			fmt.Sprintf("%d", r.Displaced),
			fmt.Sprintf("%d", r.Errors),
		})
	}
	return rows
}

func (h *RunHistory) EmptyMessage() string {
	return "No synchronization runs recorded"
}

// RunFailures lists the item failures of one recorded run
type RunFailures struct {
	RunID    string        `json:"runId"`
	Failures []ItemFailure `json:"failures"`
}

func (f *RunFailures) Headers() []string {
	return []string{"Path", "Kind", "Error"}
}

func (f *RunFailures) Rows() [][]string {
	rows := make([][]string, 0, len(f.Failures))
	for _, item := range f.Failures {
		rows = append(rows, []string{item.Path, item.Kind, truncateCell(item.Error, 80)})
	}
	return rows
}

func (f *RunFailures) EmptyMessage() string {
	return "Run " + f.RunID + " had no failures"
}
