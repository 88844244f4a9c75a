// Package mocks provides in-memory fakes for tests.
package mocks

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dl-alexandre/rmirror/internal/provider"
	"github.com/dl-alexandre/rmirror/internal/types"
)

const (
	dirRefPrefix  = "dir:"
	fileRefPrefix = "file:"
)

type node struct {
	name     string
	isDir    bool
	content  []byte
	children []*node
}

// MemoryProvider serves a tree held in memory. Directory refs are
// "dir:<path>", content refs "file:<path>", and the root ref is RootRef.
// Children are listed in insertion order.
type MemoryProvider struct {
	mu         sync.Mutex
	root       *node
	listErrs   map[string]error
	fetchErrs  map[string]error
	rawEntries map[string][]types.RemoteEntry

	ListCalls  int
	FetchCalls int
}

// RootRef is the listing reference of the tree root
const RootRef = dirRefPrefix

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		root:       &node{isDir: true},
		listErrs:   make(map[string]error),
		fetchErrs:  make(map[string]error),
		rawEntries: make(map[string][]types.RemoteEntry),
	}
}

// AddFile adds a file at a slash separated path, creating parents
func (m *MemoryProvider) AddFile(path, content string) *MemoryProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	dir, name := splitPath(path)
	parent := m.ensureDir(dir)
	parent.children = append(parent.children, &node{name: name, content: []byte(content)})
	return m
}

// AddDir adds an empty directory, creating parents
func (m *MemoryProvider) AddDir(path string) *MemoryProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureDir(path)
	return m
}

// AddRawEntry appends an entry verbatim to a directory listing. It is used
// to inject names or refs a real tree could not hold.
func (m *MemoryProvider) AddRawEntry(dir string, entry types.RemoteEntry) *MemoryProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureDir(dir)
	m.rawEntries[dir] = append(m.rawEntries[dir], entry)
	return m
}

// FailList makes listing the directory at path return err
func (m *MemoryProvider) FailList(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listErrs[path] = err
}

// FailFetch makes fetching the file at path return err
func (m *MemoryProvider) FailFetch(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchErrs[path] = err
}

// Files returns the number of files in the tree
func (m *MemoryProvider) Files() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count func(n *node) int
	count = func(n *node) int {
		if !n.isDir {
			return 1
		}
		total := 0
		for _, c := range n.children {
			total += count(c)
		}
		return total
	}
	return count(m.root)
}

func (m *MemoryProvider) List(_ context.Context, dirRef string) ([]types.RemoteEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListCalls++

	if !strings.HasPrefix(dirRef, dirRefPrefix) {
		return nil, &provider.TransportError{Op: "list", URL: dirRef, StatusCode: 404}
	}
	path := strings.TrimPrefix(dirRef, dirRefPrefix)
	if err, ok := m.listErrs[path]; ok {
		return nil, err
	}
	dir := m.lookup(path)
	if dir == nil || !dir.isDir {
		return nil, &provider.TransportError{Op: "list", URL: dirRef, StatusCode: 404}
	}

	entries := make([]types.RemoteEntry, 0, len(dir.children))
	for _, c := range dir.children {
		childPath := joinPath(path, c.name)
		if c.isDir {
			entries = append(entries, types.RemoteEntry{Name: c.name, Kind: types.EntryDirectory, ChildRef: dirRefPrefix + childPath})
		} else {
			entries = append(entries, types.RemoteEntry{Name: c.name, Kind: types.EntryFile, ContentRef: fileRefPrefix + childPath, Size: int64(len(c.content))})
		}
	}
	return append(entries, m.rawEntries[path]...), nil
}

func (m *MemoryProvider) Fetch(_ context.Context, contentRef string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchCalls++

	path := strings.TrimPrefix(contentRef, fileRefPrefix)
	if err, ok := m.fetchErrs[path]; ok {
		return nil, err
	}
	f := m.lookup(path)
	if f == nil || f.isDir {
		return nil, &provider.TransportError{Op: "fetch", URL: contentRef, StatusCode: 404}
	}
	return io.NopCloser(bytes.NewReader(f.content)), nil
}

func (m *MemoryProvider) ensureDir(path string) *node {
	current := m.root
	for _, segment := range segments(path) {
		var next *node
		for _, c := range current.children {
			if c.name == segment {
				next = c
				break
			}
		}
		if next == nil {
			next = &node{name: segment, isDir: true}
			current.children = append(current.children, next)
		}
		if !next.isDir {
			panic(fmt.Sprintf("mocks: %s is a file", segment))
		}
		current = next
	}
	return current
}

func (m *MemoryProvider) lookup(path string) *node {
	current := m.root
	for _, segment := range segments(path) {
		var next *node
		for _, c := range current.children {
			if c.name == segment {
				next = c
				break
			}
		}
		if next == nil {
			return nil
		}
		current = next
	}
	return current
}

func segments(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func splitPath(path string) (string, string) {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return "", path
	}
	return path[:i], path[i+1:]
}

func joinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}
