package types

// CatalogEntry describes one markdown document found in a mirrored tree
type CatalogEntry struct {
	Path        string `json:"path"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	HasMeta     bool   `json:"hasMeta"`
}

type Catalog struct {
	Root    string          `json:"root"`
	Entries []*CatalogEntry `json:"entries"`
}

func (c *Catalog) Headers() []string {
	return []string{"Path", "Name", "Description"}
}

func (c *Catalog) Rows() [][]string {
	rows := make([][]string, 0, len(c.Entries))
	for _, e := range c.Entries {
		name, desc := e.Name, e.Description
		if !e.HasMeta {
			name, desc = "-", "-"
		}
		rows = append(rows, []string{e.Path, name, truncateCell(desc, 60)})
	}
	return rows
}

func (c *Catalog) EmptyMessage() string {
	return "No markdown documents found under " + c.Root
}

func truncateCell(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
