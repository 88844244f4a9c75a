package catalog

import "testing"

func TestMatcherExcluded(t *testing.T) {
	m := NewMatcher([]string{"drafts/", "*.tmp.md", "NOTES.md", " "})

	tests := []struct {
		path  string
		isDir bool
		want  bool
	}{
		{".git", true, true},
		{".git/config", false, true},
		{"pkg/node_modules", true, true},
		{"vendor/x/README.md", false, true},
		{"drafts", true, true},
		{"drafts/a.md", false, true},
		{"agents/drafts", true, true},
		{"agents/a.tmp.md", false, true},
		{"NOTES.md", false, true},
		{"agents/NOTES.md", false, true},
		{"./agents/a.md", false, false},
		{"vendored.md", false, false},
		{"draftsman.md", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := m.Excluded(tt.path, tt.isDir); got != tt.want {
				t.Errorf("Excluded(%q, %v) = %v, want %v", tt.path, tt.isDir, got, tt.want)
			}
		})
	}
}

func TestNilMatcherExcludesNothing(t *testing.T) {
	var m *Matcher
	if m.Excluded(".git", true) {
		t.Error("nil matcher should not exclude")
	}
}
