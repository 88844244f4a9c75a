package sync

import (
	"github.com/dl-alexandre/rmirror/internal/logging"
	"github.com/dl-alexandre/rmirror/internal/types"
)

// Reporter receives progress events from a Synchronizer. Paths are logical
// remote paths such as "a/b/c.txt".
type Reporter interface {
	EnterDirectory(path string)
	Displaced(path, movedTo string)
	Downloaded(path string, bytes int64)
	Failed(failure types.ItemFailure)
}

// LogReporter writes progress events to a Logger
type LogReporter struct {
	logger logging.Logger
}

func NewLogReporter(logger logging.Logger) *LogReporter {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &LogReporter{logger: logger}
}

func (r *LogReporter) EnterDirectory(path string) {
	r.logger.Debug("Entering directory", logging.F("path", path))
}

func (r *LogReporter) Displaced(path, movedTo string) {
	r.logger.Info("Displaced existing file", logging.F("path", path), logging.F("movedTo", movedTo))
}

func (r *LogReporter) Downloaded(path string, bytes int64) {
	r.logger.Info("Downloaded", logging.F("path", path), logging.F("bytes", bytes))
}

func (r *LogReporter) Failed(failure types.ItemFailure) {
	r.logger.Warn("Item failed",
		logging.F("path", failure.Path),
		logging.F("kind", failure.Kind),
		logging.F("error", failure.Error),
	)
}
