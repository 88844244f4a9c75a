package logging

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

type closeErrLogger struct {
	NoOpLogger
	err error
}

func (c *closeErrLogger) Close() error { return c.err }

func newBufferConsole(buf *bytes.Buffer, level LogLevel) *ConsoleLogger {
	return NewConsoleLogger(ConsoleLoggerConfig{
		Writer: buf,
		Level:  level,
	})
}

func TestMultiLogger_FansOut(t *testing.T) {
	var a, b bytes.Buffer
	multi := NewMultiLogger(newBufferConsole(&a, INFO), newBufferConsole(&b, INFO))

	multi.Info("Downloaded", F("path", "agents/a.md"))

	if !strings.Contains(a.String(), "agents/a.md") {
		t.Errorf("first logger missed the message: %q", a.String())
	}
	if a.String() != b.String() {
		t.Errorf("loggers produced different output:\n%s\n%s", a.String(), b.String())
	}
}

func TestMultiLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	multi := NewMultiLogger(newBufferConsole(&buf, DEBUG))

	multi.Debug("Entering directory")
	multi.Info("Downloaded")
	multi.Warn("Item failed")
	multi.Error("Error classified")

	out := buf.String()
	for _, level := range []string{"DEBUG", "INFO", "WARN", "ERROR"} {
		if !strings.Contains(out, level) {
			t.Errorf("missing %s line in %q", level, out)
		}
	}

	buf.Reset()
	multi.SetLevel(ERROR)
	multi.Info("filtered")
	multi.Error("kept")
	if strings.Contains(buf.String(), "filtered") || !strings.Contains(buf.String(), "kept") {
		t.Errorf("SetLevel not applied to children: %q", buf.String())
	}
}

func TestMultiLogger_TraceIDReachesChildren(t *testing.T) {
	var buf bytes.Buffer
	logPath := filepath.Join(t.TempDir(), "rmirror.log")
	file, err := NewFileLogger(FileLoggerConfig{FilePath: logPath, Level: INFO})
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	multi := NewMultiLogger(file, newBufferConsole(&buf, INFO))

	ctx := ContextWithTraceID(context.Background(), "3f2a9c1e-run")
	multi.WithContext(ctx).Info("Starting synchronization")
	if err := multi.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if !strings.Contains(buf.String(), "3f2a9c1e") {
		t.Errorf("console line lacks trace ID: %q", buf.String())
	}
	entries := readEntries(t, logPath)
	if len(entries) != 1 || entries[0].TraceID != "3f2a9c1e-run" {
		t.Errorf("file entries = %+v", entries)
	}
}

func TestMultiLogger_CloseJoinsErrors(t *testing.T) {
	first := errors.New("first")
	second := errors.New("second")
	multi := NewMultiLogger(&closeErrLogger{err: first}, NewNoOpLogger(), &closeErrLogger{err: second})

	err := multi.Close()
	if !errors.Is(err, first) || !errors.Is(err, second) {
		t.Fatalf("Close() = %v, want both errors", err)
	}
}
