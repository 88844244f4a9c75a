package logging

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"
)

func newTestFileLogger(t *testing.T, level LogLevel, maxSize int64) (*FileLogger, string) {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "logs", "rmirror.log")
	logger, err := NewFileLogger(FileLoggerConfig{
		FilePath:      logPath,
		Level:         level,
		MaxFileSize:   maxSize,
		RotateEnabled: maxSize > 0,
	})
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	t.Cleanup(func() { logger.Close() })
	return logger, logPath
}

func readEntries(t *testing.T, path string) []LogEntry {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	var entries []LogEntry
	for _, line := range splitLogLines(data) {
		var entry LogEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("Failed to parse log entry %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestFileLogger_CreatesDirectory(t *testing.T) {
	_, logPath := newTestFileLogger(t, INFO, 0)
	if _, err := os.Stat(logPath); err != nil {
		t.Fatalf("Log file was not created: %v", err)
	}
}

func TestFileLogger_WritesJSONLines(t *testing.T) {
	logger, logPath := newTestFileLogger(t, DEBUG, 0)

	logger.Debug("Entering directory", F("path", "agents"))
	logger.Info("Downloaded", F("path", "agents/a.md"), F("bytes", 123))
	logger.Warn("Falling back to default repository")
	logger.Error("Item failed", F("kind", "transport"))
	logger.Close()

	entries := readEntries(t, logPath)
	if len(entries) != 4 {
		t.Fatalf("Expected 4 log entries, got %d", len(entries))
	}

	wantLevels := []string{"DEBUG", "INFO", "WARN", "ERROR"}
	for i, want := range wantLevels {
		if entries[i].Level != want {
			t.Errorf("entry %d level = %s, want %s", i, entries[i].Level, want)
		}
	}
	if entries[0].Fields["path"] != "agents" {
		t.Errorf("Fields[path] = %v, want agents", entries[0].Fields["path"])
	}
	if entries[1].Fields["bytes"] != float64(123) {
		t.Errorf("Fields[bytes] = %v, want 123", entries[1].Fields["bytes"])
	}
	if entries[2].Fields != nil {
		t.Errorf("Expected no fields on entry without fields, got %v", entries[2].Fields)
	}
}

func TestFileLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name    string
		level   LogLevel
		entries int
	}{
		{"debug", DEBUG, 4},
		{"info", INFO, 3},
		{"warn", WARN, 2},
		{"error", ERROR, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logPath := newTestFileLogger(t, tt.level, 0)
			logger.Debug("debug")
			logger.Info("info")
			logger.Warn("warn")
			logger.Error("error")
			logger.Close()

			if got := len(readEntries(t, logPath)); got != tt.entries {
				t.Errorf("Expected %d entries, got %d", tt.entries, got)
			}
		})
	}
}

func TestFileLogger_SetLevel(t *testing.T) {
	logger, logPath := newTestFileLogger(t, DEBUG, 0)

	logger.Debug("before")
	logger.SetLevel(ERROR)
	logger.Debug("filtered")
	logger.Info("filtered")
	logger.Error("after")
	logger.Close()

	entries := readEntries(t, logPath)
	if len(entries) != 2 || entries[0].Message != "before" || entries[1].Message != "after" {
		t.Fatalf("Unexpected entries: %+v", entries)
	}
}

func TestFileLogger_TraceIDs(t *testing.T) {
	logger, logPath := newTestFileLogger(t, INFO, 0)

	logger.WithTraceID("run-1").Info("Starting synchronization")
	ctx := ContextWithTraceID(context.Background(), "run-2")
	logger.WithContext(ctx).Info("Starting synchronization")
	logger.WithContext(context.Background()).Info("No trace")
	logger.Close()

	entries := readEntries(t, logPath)
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	for i, want := range []string{"run-1", "run-2", ""} {
		if entries[i].TraceID != want {
			t.Errorf("entry %d trace ID = %q, want %q", i, entries[i].TraceID, want)
		}
	}
}

func TestFileLogger_DerivedLoggersShareFile(t *testing.T) {
	logger, logPath := newTestFileLogger(t, INFO, 0)
	traced := logger.WithTraceID("run-1")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(l Logger) {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				l.Info("Downloaded", F("path", "docs/guide.md"))
			}
		}([]Logger{logger, traced}[i%2])
	}
	wg.Wait()
	logger.Close()

	if got := len(readEntries(t, logPath)); got != 200 {
		t.Fatalf("Expected 200 intact entries, got %d", got)
	}

	// The derived logger stops writing once the root logger is closed
	traced.Info("after close")
	if got := len(readEntries(t, logPath)); got != 200 {
		t.Fatalf("Expected no write after close, got %d entries", got)
	}
}

func TestFileLogger_Rotation(t *testing.T) {
	logger, logPath := newTestFileLogger(t, INFO, 100)
	tick := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	logger.sink.rotateClock = func() time.Time {
		tick = tick.Add(time.Millisecond)
		return tick
	}

	for i := 0; i < 20; i++ {
		logger.Info("Downloaded", F("path", "a/very/long/path/that/fills/the/log/file.txt"))
	}
	logger.Close()

	files, err := filepath.Glob(logPath + "*")
	if err != nil {
		t.Fatalf("Failed to glob log files: %v", err)
	}
	if len(files) < 2 {
		t.Fatalf("Expected the active file plus rotated files, got %v", files)
	}
	rotated := 0
	for _, f := range files {
		if strings.HasPrefix(filepath.Base(f), "rmirror.log.20260102-030405.") {
			rotated++
		}
	}
	if rotated != len(files)-1 {
		t.Errorf("Unexpected rotated file names: %v", files)
	}
}

func TestFileLogger_CloseTwice(t *testing.T) {
	logger, _ := newTestFileLogger(t, INFO, 0)
	if err := logger.Close(); err != nil {
		t.Fatalf("first Close() error = %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}

func splitLogLines(data []byte) []string {
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
