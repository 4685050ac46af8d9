package content

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-folio/internal/identity"
)

// Metadata is the validated front-matter of a source document.
type Metadata struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PublishedAt time.Time `json:"publishedAt"`
	IsPublished bool      `json:"isPublished"`
	IsFeatured  bool      `json:"isFeatured"`
	Author      string    `json:"author,omitempty"`
	CoverImage  string    `json:"coverImage,omitempty"`
	Tags        []string  `json:"tags"`
	Categories  []string  `json:"categories"`
}

func (m Metadata) clone() Metadata {
	m.Tags = cloneStrings(m.Tags)
	m.Categories = cloneStrings(m.Categories)
	return m
}

// Heading is one entry of the rendered document outline.
type Heading struct {
	Level int    `json:"level"`
	ID    string `json:"id"`
	Text  string `json:"text"`
}

// ComponentRef records an embedded component found while rendering.
type ComponentRef struct {
	Name  string         `json:"name"`
	Props map[string]any `json:"props,omitempty"`
}

// RenderedBody is the output of the markup transformer for one document.
type RenderedBody struct {
	HTML          string         `json:"html"`
	Serialized    []byte         `json:"-"`
	Headings      []Heading      `json:"headings,omitempty"`
	Components    []ComponentRef `json:"components,omitempty"`
	Failed        bool           `json:"failed,omitempty"`
	FailureReason string         `json:"failureReason,omitempty"`
}

func (r RenderedBody) clone() RenderedBody {
	r.Serialized = slices.Clone(r.Serialized)
	r.Headings = slices.Clone(r.Headings)
	if len(r.Components) > 0 {
		components := make([]ComponentRef, len(r.Components))
		for i, ref := range r.Components {
			components[i] = ComponentRef{Name: ref.Name, Props: cloneProps(ref.Props)}
		}
		r.Components = components
	}
	return r
}

// Document is an immutable source document with its computed fields.
// Slug, SlugPath, URL and ReadingTimeMinutes are derived from the source
// path and body inside NewDocument and WithBody and cannot be set directly.
type Document struct {
	Metadata

	id         uuid.UUID
	sourcePath string
	rawBody    string
	rendered   RenderedBody
	computed   Computed
}

// NewDocument derives the computed fields for sourcePath and rawBody. It
// returns a PathShapeError when sourcePath has fewer than two segments.
func NewDocument(sourcePath string, meta Metadata, rawBody string) (Document, error) {
	sourcePath = NormalizeSourcePath(sourcePath)
	computed, err := ComputeFields(sourcePath, rawBody)
	if err != nil {
		return Document{}, err
	}
	return Document{
		Metadata:   meta.clone(),
		id:         identity.DocumentUUID(sourcePath),
		sourcePath: sourcePath,
		rawBody:    rawBody,
		computed:   computed,
	}, nil
}

func (d Document) ID() uuid.UUID            { return d.id }
func (d Document) SourcePath() string       { return d.sourcePath }
func (d Document) RawBody() string          { return d.rawBody }
func (d Document) Slug() string             { return d.computed.Slug }
func (d Document) SlugPath() string         { return d.computed.SlugPath }
func (d Document) URL() string              { return d.computed.URL }
func (d Document) ReadingTimeMinutes() int  { return d.computed.ReadingTimeMinutes }
func (d Document) Rendered() RenderedBody   { return d.rendered.clone() }
func (d Document) Computed() Computed       { return d.computed }
func (d Document) RenderFailed() bool       { return d.rendered.Failed }
func (d Document) Published() bool          { return d.IsPublished }
func (d Document) HasTag(tag string) bool   { return slices.Contains(d.Tags, tag) }
func (d Document) InCategory(c string) bool { return slices.Contains(d.Categories, c) }

// WithBody returns a copy carrying a new raw body. Reading time is
// recomputed and any previous rendering is discarded.
func (d Document) WithBody(rawBody string) Document {
	next := d.clone()
	next.rawBody = rawBody
	next.computed.ReadingTimeMinutes = ReadingTime(rawBody)
	next.rendered = RenderedBody{}
	return next
}

// WithRendered returns a copy carrying the rendered body.
func (d Document) WithRendered(rendered RenderedBody) Document {
	next := d.clone()
	next.rendered = rendered.clone()
	return next
}

// WithMetadata returns a copy carrying new metadata. Computed fields are
// untouched because they depend only on the source path and body.
func (d Document) WithMetadata(meta Metadata) Document {
	next := d.clone()
	next.Metadata = meta.clone()
	return next
}

func (d Document) clone() Document {
	d.Metadata = d.Metadata.clone()
	d.rendered = d.rendered.clone()
	return d
}

type documentJSON struct {
	ID                 uuid.UUID `json:"id"`
	SourcePath         string    `json:"sourcePath"`
	Slug               string    `json:"slug"`
	SlugPath           string    `json:"slugPath"`
	URL                string    `json:"url"`
	ReadingTimeMinutes int       `json:"readingTimeMinutes"`
	Metadata
	Body RenderedBody `json:"body"`
}

// MarshalJSON exposes the computed fields alongside the metadata.
func (d Document) MarshalJSON() ([]byte, error) {
	meta := d.Metadata
	if meta.Tags == nil {
		meta.Tags = []string{}
	}
	if meta.Categories == nil {
		meta.Categories = []string{}
	}
	return json.Marshal(documentJSON{
		ID:                 d.id,
		SourcePath:         d.sourcePath,
		Slug:               d.computed.Slug,
		SlugPath:           d.computed.SlugPath,
		URL:                d.computed.URL,
		ReadingTimeMinutes: d.computed.ReadingTimeMinutes,
		Metadata:           meta,
		Body:               d.rendered,
	})
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	return slices.Clone(values)
}

func cloneProps(props map[string]any) map[string]any {
	if props == nil {
		return nil
	}
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}
