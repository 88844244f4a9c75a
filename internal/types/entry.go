package types

// EntryKind distinguishes directories from files in a remote listing
type EntryKind string

const (
	EntryDirectory EntryKind = "dir"
	EntryFile      EntryKind = "file"
)

// RemoteEntry is one item returned by a single directory listing.
// ChildRef is only set for directories, ContentRef only for files.
type RemoteEntry struct {
	Name       string    `json:"name"`
	Kind       EntryKind `json:"kind"`
	ChildRef   string    `json:"childRef,omitempty"`
	ContentRef string    `json:"contentRef,omitempty"`
	Size       int64     `json:"size,omitempty"`
}

func (e RemoteEntry) IsDir() bool {
	return e.Kind == EntryDirectory
}
