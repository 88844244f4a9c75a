package provider

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dl-alexandre/rmirror/internal/resolver"
	"github.com/dl-alexandre/rmirror/internal/types"
)

func newGitHubTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *GitHubProvider) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	p := NewGitHubProvider(GitHubOptions{BaseURL: srv.URL, Timeout: 5 * time.Second})
	return srv, p
}

func TestGitHubRootRef(t *testing.T) {
	p := NewGitHubProvider(GitHubOptions{BaseURL: "https://api.example.com/"})
	coord := resolver.Coordinate{Owner: "octo", Repo: "templates"}

	if got, want := p.RootRef(coord, ""), "https://api.example.com/repos/octo/templates/contents"; got != want {
		t.Errorf("RootRef() = %s, want %s", got, want)
	}
	if got, want := p.RootRef(coord, "release/1.x"), "https://api.example.com/repos/octo/templates/contents?ref=release%2F1.x"; got != want {
		t.Errorf("RootRef() with ref = %s, want %s", got, want)
	}
}

func TestGitHubListMapsEntries(t *testing.T) {
	var gotAccept, gotUA string
	_, p := newGitHubTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[
			{"name": "agents", "type": "dir", "url": "http://x/agents", "download_url": null},
			{"name": "README.md", "type": "file", "url": "http://x/README.md", "download_url": "http://raw/README.md", "size": 42},
			{"name": "link", "type": "symlink", "url": "http://x/link"},
			{"name": "vendor", "type": "submodule", "url": "http://x/vendor"}
		]`)
	})

	entries, err := p.List(context.Background(), p.baseURL+"/repos/o/r/contents")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d: %+v", len(entries), entries)
	}

	dir := entries[0]
	if dir.Name != "agents" || dir.Kind != types.EntryDirectory || dir.ChildRef != "http://x/agents" {
		t.Errorf("Unexpected directory entry: %+v", dir)
	}
	file := entries[1]
	if file.Name != "README.md" || file.Kind != types.EntryFile || file.ContentRef != "http://raw/README.md" || file.Size != 42 {
		t.Errorf("Unexpected file entry: %+v", file)
	}

	if gotAccept != "application/vnd.github+json" {
		t.Errorf("Expected GitHub accept header, got %q", gotAccept)
	}
	if !strings.HasPrefix(gotUA, "rmirror/") {
		t.Errorf("Expected rmirror user agent, got %q", gotUA)
	}
}

func TestGitHubListRejectsNonArray(t *testing.T) {
	tests := []struct {
		name string
		body string
		got  string
	}{
		{"object", `{"name": "file.txt", "type": "file"}`, "object"},
		{"string", `"hello"`, "string"},
		{"null", `null`, "null"},
		{"malformed", `[{"name": `, "malformed JSON"},
		{"empty", "", "empty body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, p := newGitHubTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, tt.body)
			})

			_, err := p.List(context.Background(), p.baseURL+"/repos/o/r/contents")
			var shapeErr *PayloadShapeError
			if !errors.As(err, &shapeErr) {
				t.Fatalf("Expected PayloadShapeError, got %T: %v", err, err)
			}
			if shapeErr.Got != tt.got {
				t.Errorf("Expected Got=%q, got %q", tt.got, shapeErr.Got)
			}
		})
	}
}

func TestGitHubListStatusError(t *testing.T) {
	_, p := newGitHubTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"message": "Not Found"}`)
	})

	_, err := p.List(context.Background(), p.baseURL+"/repos/o/missing/contents")
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("Expected TransportError, got %T: %v", err, err)
	}
	if transportErr.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", transportErr.StatusCode)
	}
	if transportErr.Message != "Not Found" {
		t.Errorf("Expected GitHub message, got %q", transportErr.Message)
	}
	if !IsTransport(err) || IsPayloadShape(err) {
		t.Error("Expected only IsTransport to match")
	}
}

func TestGitHubListNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	p := NewGitHubProvider(GitHubOptions{BaseURL: srv.URL, Timeout: time.Second})
	srv.Close()

	_, err := p.List(context.Background(), srv.URL+"/repos/o/r/contents")
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("Expected TransportError, got %T: %v", err, err)
	}
	if transportErr.StatusCode != 0 {
		t.Errorf("Expected status 0 for network failure, got %d", transportErr.StatusCode)
	}
}

func TestGitHubFetchStreamsBody(t *testing.T) {
	_, p := newGitHubTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/raw/missing.txt" {
			http.Error(w, "gone", http.StatusInternalServerError)
			return
		}
		io.WriteString(w, "file body\n")
	})

	body, err := p.Fetch(context.Background(), p.baseURL+"/raw/ok.txt")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	data, err := io.ReadAll(body)
	body.Close()
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if string(data) != "file body\n" {
		t.Errorf("Unexpected body %q", data)
	}

	_, err = p.Fetch(context.Background(), p.baseURL+"/raw/missing.txt")
	var transportErr *TransportError
	if !errors.As(err, &transportErr) || transportErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("Expected 500 TransportError, got %v", err)
	}
}

func TestErrorTypesMessages(t *testing.T) {
	te := &TransportError{Op: "fetch", URL: "http://x/a", StatusCode: 502}
	if te.Error() != "fetch http://x/a: status 502" {
		t.Errorf("Unexpected message: %s", te.Error())
	}
	cause := errors.New("connection refused")
	te = &TransportError{Op: "list", URL: "http://x", Err: cause}
	if !errors.Is(te, cause) {
		t.Error("TransportError should unwrap to its cause")
	}
	pe := &PayloadShapeError{URL: "http://x", Got: "object"}
	if !strings.Contains(pe.Error(), "expected a JSON array, got object") {
		t.Errorf("Unexpected message: %s", pe.Error())
	}
}
