package markdown

import (
	"errors"

	"github.com/goliatone/go-folio/internal/content"
)

// BuildDocument parses a source into an unrendered Document. Unreadable
// front-matter is reported as a schema violation; a source path with a
// single segment yields a PathShapeError.
func BuildDocument(src Source, defaults MetadataDefaults) (content.Document, error) {
	raw, body, err := ParseFrontMatter(src.Data)
	if err != nil {
		return content.Document{}, &content.SchemaViolationError{
			Path:   src.Path,
			Issues: []content.SchemaIssue{{Message: err.Error()}},
			Err:    err,
		}
	}

	meta, err := DecodeMetadata(src.Path, raw, defaults)
	if err != nil {
		return content.Document{}, err
	}

	doc, err := content.NewDocument(src.SourcePath, meta, string(body))
	if err != nil {
		var shape *content.PathShapeError
		if errors.As(err, &shape) {
			shape.SourcePath = src.Path
		}
		return content.Document{}, err
	}
	return doc, nil
}
