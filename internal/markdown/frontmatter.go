package markdown

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-folio/internal/content"
	"github.com/goliatone/go-folio/internal/validation"
)

// RawFrontMatter is the undecoded metadata block of a source document.
type RawFrontMatter map[string]any

// MetadataDefaults supplies values for optional keys that are absent.
type MetadataDefaults struct {
	Author string
}

// DateLayouts lists the accepted front-matter date formats, tried in order.
var DateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

var requiredKeys = []string{"title", "description", "date"}

var nullableString = map[string]any{"type": []string{"string", "null"}}

var nullableStringList = map[string]any{
	"type":  []string{"array", "null"},
	"items": map[string]any{"type": "string"},
}

var metadataSchema = validation.MustCompile("frontmatter.json", map[string]any{
	"type": "object",
	"properties": map[string]any{
		"title":       map[string]any{"type": "string", "pattern": `\S`},
		"description": map[string]any{"type": "string", "pattern": `\S`},
		"date":        map[string]any{"type": "string", "pattern": `\S`},
		"published":   map[string]any{"type": []string{"boolean", "null"}},
		"featured":    map[string]any{"type": []string{"boolean", "null"}},
		"author":      nullableString,
		"image":       nullableString,
		"tags":        nullableStringList,
		"categories":  nullableStringList,
	},
	"additionalProperties": true,
})

// ParseFrontMatter splits source into its metadata block and body. YAML
// (---) and TOML (+++) delimiters are recognised; a source without a block
// yields empty metadata and the full body.
func ParseFrontMatter(source []byte) (RawFrontMatter, []byte, error) {
	raw := map[string]any{}
	body, err := frontmatter.Parse(bytes.NewReader(source), &raw)
	if err != nil {
		return nil, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	return RawFrontMatter(raw), body, nil
}

// DecodeMetadata validates raw against the metadata schema and coerces it.
// Every problem found is reported in a single SchemaViolationError.
func DecodeMetadata(path string, raw RawFrontMatter, defaults MetadataDefaults) (content.Metadata, error) {
	var issues []content.SchemaIssue
	for _, key := range requiredKeys {
		if value, ok := raw[key]; !ok || value == nil {
			issues = append(issues, content.SchemaIssue{Field: key, Message: "is required"})
		}
	}

	dateInvalid := false
	if err := metadataSchema.Validate(map[string]any(raw)); err != nil {
		for _, issue := range validation.Issues(err) {
			field := issue.Field()
			dateInvalid = dateInvalid || field == "date"
			issues = append(issues, content.SchemaIssue{Field: field, Message: issue.Message})
		}
	}

	var publishedAt time.Time
	if value, ok := raw["date"]; ok && value != nil && !dateInvalid {
		parsed, err := coerceDate(value)
		if err != nil {
			issues = append(issues, content.SchemaIssue{Field: "date", Message: err.Error()})
		}
		publishedAt = parsed
	}
	if len(issues) > 0 {
		return content.Metadata{}, &content.SchemaViolationError{Path: path, Issues: issues}
	}

	meta := content.Metadata{
		Title:       strings.TrimSpace(stringValue(raw["title"])),
		Description: strings.TrimSpace(stringValue(raw["description"])),
		PublishedAt: publishedAt,
		IsPublished: boolValue(raw["published"], true),
		IsFeatured:  boolValue(raw["featured"], false),
		Author:      strings.TrimSpace(stringValue(raw["author"])),
		CoverImage:  strings.TrimSpace(stringValue(raw["image"])),
		Tags:        stringList(raw["tags"]),
		Categories:  stringList(raw["categories"]),
	}
	if meta.Author == "" {
		meta.Author = defaults.Author
	}
	return meta, nil
}

func coerceDate(value any) (time.Time, error) {
	switch typed := value.(type) {
	case time.Time:
		return typed.UTC(), nil
	case string:
		trimmed := strings.TrimSpace(typed)
		for _, layout := range DateLayouts {
			if parsed, err := time.Parse(layout, trimmed); err == nil {
				return parsed.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognised date %q", trimmed)
	default:
		return time.Time{}, fmt.Errorf("unsupported date value %v", value)
	}
}

func stringValue(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return ""
}

func boolValue(value any, fallback bool) bool {
	if b, ok := value.(bool); ok {
		return b
	}
	return fallback
}

func stringList(value any) []string {
	items, ok := value.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
