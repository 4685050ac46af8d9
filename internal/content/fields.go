package content

import (
	"path"
	"strings"
)

// WordsPerMinute is the reading speed used for ReadingTimeMinutes.
const WordsPerMinute = 200

// URLPrefix is prepended to the slug path to build a document URL.
const URLPrefix = "/blog/"

// Computed holds the fields derived from a document's source path and body.
type Computed struct {
	Slug               string `json:"slug"`
	SlugPath           string `json:"slugPath"`
	URL                string `json:"url"`
	ReadingTimeMinutes int    `json:"readingTimeMinutes"`
}

// ComputeFields derives slug, slug path, url and reading time. The source
// path must have at least two segments (collection directory and name).
func ComputeFields(sourcePath, rawBody string) (Computed, error) {
	sourcePath = NormalizeSourcePath(sourcePath)
	segments := strings.Split(sourcePath, "/")
	if sourcePath == "" || len(segments) < 2 {
		return Computed{}, &PathShapeError{SourcePath: sourcePath, Segments: len(segments)}
	}
	slugPath := strings.Join(segments[1:], "/")
	return Computed{
		Slug:               segments[len(segments)-1],
		SlugPath:           slugPath,
		URL:                URLPrefix + slugPath,
		ReadingTimeMinutes: ReadingTime(rawBody),
	}, nil
}

// ReadingTime returns ceil(words/WordsPerMinute), never less than one.
func ReadingTime(rawBody string) int {
	words := len(strings.Fields(strings.TrimSpace(rawBody)))
	minutes := (words + WordsPerMinute - 1) / WordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

// NormalizeSourcePath turns a file path relative to the content root into
// a source path: forward slashes, no extension, no trailing "index" segment.
func NormalizeSourcePath(p string) string {
	p = strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
	if p == "" {
		return ""
	}
	p = strings.Trim(path.Clean("/"+p), "/")
	if ext := path.Ext(p); ext != "" {
		p = strings.TrimSuffix(p, ext)
	}
	if p == "index" {
		return ""
	}
	return strings.TrimSuffix(p, "/index")
}
