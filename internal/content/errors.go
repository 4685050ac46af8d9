package content

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSchemaViolation    = errors.New("content: schema violation")
	ErrPathShapeViolation = errors.New("content: source path must have at least two segments")
	ErrRenderFailure      = errors.New("content: render failure")
	ErrDocumentNotFound   = errors.New("content: document not found")
	ErrDuplicateSlug      = errors.New("content: duplicate slug")
	ErrCollectionFrozen   = errors.New("content: collection is frozen")
)

// SchemaIssue describes one metadata problem at a front-matter location.
type SchemaIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (i SchemaIssue) String() string {
	if i.Field == "" {
		return i.Message
	}
	return i.Field + ": " + i.Message
}

// SchemaViolationError reports metadata that failed validation for a source.
type SchemaViolationError struct {
	Path   string
	Issues []SchemaIssue
	Err    error
}

func (e *SchemaViolationError) Error() string {
	if e == nil {
		return ErrSchemaViolation.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.String())
	}
	msg := ErrSchemaViolation.Error()
	if e.Path != "" {
		msg = fmt.Sprintf("%s: path=%s", msg, e.Path)
	}
	if len(parts) > 0 {
		msg = fmt.Sprintf("%s: %s", msg, strings.Join(parts, "; "))
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes ErrSchemaViolation and, when present, the cause.
func (e *SchemaViolationError) Unwrap() []error {
	if e == nil || e.Err == nil {
		return []error{ErrSchemaViolation}
	}
	return []error{ErrSchemaViolation, e.Err}
}

// PathShapeError reports a source path that cannot produce a slug path.
type PathShapeError struct {
	SourcePath string
	Segments   int
}

func (e *PathShapeError) Error() string {
	if e == nil {
		return ErrPathShapeViolation.Error()
	}
	return fmt.Sprintf("%s: path=%q segments=%d", ErrPathShapeViolation.Error(), e.SourcePath, e.Segments)
}

func (e *PathShapeError) Unwrap() error {
	return ErrPathShapeViolation
}

// RenderFailureError reports a document whose markup could not be rendered.
type RenderFailureError struct {
	SourcePath string
	Stage      string
	Reason     string
	Err        error
}

func (e *RenderFailureError) Error() string {
	if e == nil {
		return ErrRenderFailure.Error()
	}
	msg := ErrRenderFailure.Error()
	if e.SourcePath != "" {
		msg = fmt.Sprintf("%s: path=%s", msg, e.SourcePath)
	}
	if e.Stage != "" {
		msg = fmt.Sprintf("%s stage=%s", msg, e.Stage)
	}
	if e.Reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	}
	return msg
}

func (e *RenderFailureError) Unwrap() []error {
	if e == nil || e.Err == nil {
		return []error{ErrRenderFailure}
	}
	return []error{ErrRenderFailure, e.Err}
}

// NotFoundError captures a failed slug lookup.
type NotFoundError struct {
	Slug string
}

func (e *NotFoundError) Error() string {
	if e == nil || e.Slug == "" {
		return ErrDocumentNotFound.Error()
	}
	return fmt.Sprintf("%s: slug=%s", ErrDocumentNotFound.Error(), e.Slug)
}

func (e *NotFoundError) Unwrap() error {
	return ErrDocumentNotFound
}

// DuplicateSlug describes documents sharing a slug. The first source path
// is the one lookups resolve to.
type DuplicateSlug struct {
	Slug        string   `json:"slug"`
	SourcePaths []string `json:"sourcePaths"`
}
