// Package frontmatter reads the YAML header of markdown documents.
//
// Parsing is two-stage: a strict YAML decode first, then a line-based
// extractor for headers that are not valid YAML (an unquoted description
// containing ": " is the common case). Absence is reported through the
// boolean result, never through an error.
package frontmatter

import (
	"bytes"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// Meta is the subset of frontmatter the catalog displays
type Meta struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags,omitempty"`
}

var looseFieldPattern = regexp.MustCompile(`(?m)^[ \t]*(name|description)[ \t]*:[ \t]*(.*?)[ \t]*$`)

// Extract returns the raw header between the opening and closing "---"
// lines. The opening delimiter must be the first line of content.
func Extract(content []byte) ([]byte, bool) {
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))
	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))

	lines := strings.Split(string(content), "\n")
	if len(lines) < 2 || strings.TrimRight(lines[0], " \t") != delimiter {
		return nil, false
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], " \t") == delimiter {
			return []byte(strings.Join(lines[1:i], "\n")), true
		}
	}
	return nil, false
}

// Parse reads the frontmatter of a markdown document. The boolean is false
// when there is no header or neither stage finds a name or description.
func Parse(content []byte) (Meta, bool) {
	block, ok := Extract(content)
	if !ok {
		return Meta{}, false
	}

	var meta Meta
	if err := yaml.Unmarshal(block, &meta); err == nil {
		if meta.Name != "" || meta.Description != "" {
			return meta, true
		}
		return Meta{}, false
	}

	return parseLoose(block)
}

func parseLoose(block []byte) (Meta, bool) {
	var meta Meta
	for _, match := range looseFieldPattern.FindAllSubmatch(block, -1) {
		value := unquote(string(match[2]))
		switch string(match[1]) {
		case "name":
			if meta.Name == "" {
				meta.Name = value
			}
		case "description":
			if meta.Description == "" {
				meta.Description = value
			}
		}
	}
	if meta.Name == "" && meta.Description == "" {
		return Meta{}, false
	}
	return meta, true
}

func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'') && first == last {
			return s[1 : len(s)-1]
		}
	}
	return s
}
