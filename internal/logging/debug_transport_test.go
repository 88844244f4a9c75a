package logging

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDebugTransport_LogsRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	logger := NewConsoleLogger(ConsoleLoggerConfig{Writer: &buf, Level: DEBUG})
	client := &http.Client{Transport: NewDebugTransport(srv.Client().Transport, logger)}

	resp, err := client.Get(srv.URL + "/repos/octo/repo/contents")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	resp.Body.Close()

	out := buf.String()
	if !strings.Contains(out, "HTTP request") || !strings.Contains(out, "status=418") {
		t.Fatalf("round trip not logged: %q", out)
	}
	if !strings.Contains(out, "/repos/octo/repo/contents") {
		t.Fatalf("url missing from log: %q", out)
	}
}
