package mocks

import (
	"sync"

	"github.com/dl-alexandre/rmirror/internal/types"
)

// RecordingReporter keeps every progress event it receives
type RecordingReporter struct {
	mu          sync.Mutex
	Directories []string
	Downloads   []string
	Moves       map[string]string
	Failures    []types.ItemFailure
}

func NewRecordingReporter() *RecordingReporter {
	return &RecordingReporter{Moves: make(map[string]string)}
}

func (r *RecordingReporter) EnterDirectory(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Directories = append(r.Directories, path)
}

func (r *RecordingReporter) Displaced(path, movedTo string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Moves[path] = movedTo
}

func (r *RecordingReporter) Downloaded(path string, _ int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Downloads = append(r.Downloads, path)
}

func (r *RecordingReporter) Failed(failure types.ItemFailure) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Failures = append(r.Failures, failure)
}
