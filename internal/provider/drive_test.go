package provider

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dl-alexandre/rmirror/internal/types"
)

func newDriveTestProvider(t *testing.T, handler http.HandlerFunc, apiKey string) *DriveProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := NewDriveProvider(context.Background(), DriveOptions{
		APIKey:   apiKey,
		Endpoint: srv.URL + "/",
	})
	if err != nil {
		t.Fatalf("NewDriveProvider() error = %v", err)
	}
	return p
}

func TestDriveListPagesAndMapsEntries(t *testing.T) {
	var queries []string
	var keys []string
	p := newDriveTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files" {
			http.NotFound(w, r)
			return
		}
		queries = append(queries, r.URL.Query().Get("q"))
		keys = append(keys, r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("pageToken") == "" {
			io.WriteString(w, `{"nextPageToken": "p2", "files": [
				{"id": "d1", "name": "docs", "mimeType": "application/vnd.google-apps.folder"},
				{"id": "s1", "name": "alias", "mimeType": "application/vnd.google-apps.shortcut"}
			]}`)
			return
		}
		io.WriteString(w, `{"files": [
			{"id": "f1", "name": "notes.md", "mimeType": "text/markdown", "size": "12"},
			{"id": "g1", "name": "Budget", "mimeType": "application/vnd.google-apps.spreadsheet"}
		]}`)
	}, "test-key")

	entries, err := p.List(context.Background(), "root123")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	want := []types.RemoteEntry{
		{Name: "docs", Kind: types.EntryDirectory, ChildRef: "d1"},
		{Name: "notes.md", Kind: types.EntryFile, ContentRef: "f1", Size: 12},
	}
	if len(entries) != len(want) {
		t.Fatalf("Expected %d entries, got %d: %+v", len(want), len(entries), entries)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, entries[i], want[i])
		}
	}

	if len(queries) != 2 {
		t.Fatalf("Expected 2 page requests, got %d", len(queries))
	}
	if queries[0] != "'root123' in parents and trashed = false" {
		t.Errorf("Unexpected query %q", queries[0])
	}
	for _, k := range keys {
		if k != "test-key" {
			t.Errorf("Expected API key on every request, got %q", k)
		}
	}
}

func TestDriveListErrorIsTransport(t *testing.T) {
	p := newDriveTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error": {"code": 404, "message": "File not found: nope."}}`)
	}, "")

	_, err := p.List(context.Background(), "nope")
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("Expected TransportError, got %T: %v", err, err)
	}
	if transportErr.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", transportErr.StatusCode)
	}
	if !strings.Contains(transportErr.Message, "File not found") {
		t.Errorf("Expected API message, got %q", transportErr.Message)
	}
}

func TestDriveFetch(t *testing.T) {
	p := newDriveTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("alt") != "media" {
			http.Error(w, "expected media download", http.StatusBadRequest)
			return
		}
		switch r.URL.Path {
		case "/files/f1":
			io.WriteString(w, "drive bytes")
		default:
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			io.WriteString(w, `{"error": {"code": 403, "message": "forbidden"}}`)
		}
	}, "")

	body, err := p.Fetch(context.Background(), "f1")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	data, _ := io.ReadAll(body)
	body.Close()
	if string(data) != "drive bytes" {
		t.Errorf("Unexpected body %q", data)
	}

	_, err = p.Fetch(context.Background(), "private")
	var transportErr *TransportError
	if !errors.As(err, &transportErr) || transportErr.StatusCode != http.StatusForbidden {
		t.Fatalf("Expected 403 TransportError, got %v", err)
	}
}

func TestEscapeQueryValue(t *testing.T) {
	if got := escapeQueryValue(`a'b\c`); got != `a\'b\\c` {
		t.Errorf("escapeQueryValue() = %q", got)
	}
}
