package markdown

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/goliatone/go-folio/internal/content"
	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

// Outline is the serialized form of a rendered body handed to markup
// renderers alongside the HTML.
type Outline struct {
	Headings   []content.Heading      `json:"headings"`
	Components []content.ComponentRef `json:"components"`
}

// Transformer renders document bodies through a Pipeline. It is safe for
// concurrent use; per-document state lives in the goldmark parser context.
type Transformer struct {
	pipeline *Pipeline
	engine   goldmark.Markdown
	logger   interfaces.Logger
}

// NewTransformer binds a pipeline. A nil logger discards output.
func NewTransformer(pipeline *Pipeline, logger interfaces.Logger) (*Transformer, error) {
	if pipeline == nil {
		return nil, fmt.Errorf("markdown transformer: pipeline is required")
	}
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Transformer{
		pipeline: pipeline,
		engine:   pipeline.engine(),
		logger:   logger,
	}, nil
}

// Stages lists the stage names this transformer applies.
func (t *Transformer) Stages() []string {
	return t.pipeline.Names()
}

// Render converts body to HTML. Stage problems, conversion errors and
// panics yield a RenderFailureError together with a body marked Failed that
// keeps whatever HTML was produced.
func (t *Transformer) Render(sourcePath string, body []byte) (rendered content.RenderedBody, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			reason := fmt.Sprintf("panic: %v", recovered)
			rendered = content.RenderedBody{Failed: true, FailureReason: reason}
			err = &content.RenderFailureError{SourcePath: sourcePath, Reason: reason}
			t.logger.Error("markdown.render.panic", "source_path", sourcePath, "reason", reason)
		}
	}()

	pc := parser.NewContext()
	doc := t.engine.Parser().Parse(text.NewReader(body), parser.WithContext(pc))

	var buf bytes.Buffer
	renderErr := t.engine.Renderer().Render(&buf, body, doc)

	state := stateFrom(pc)
	outline := Outline{
		Headings:   nonNil(state.headings),
		Components: nonNil(state.components),
	}
	serialized, marshalErr := json.Marshal(outline)
	if marshalErr != nil {
		serialized = nil
	}

	rendered = content.RenderedBody{
		HTML:       buf.String(),
		Serialized: serialized,
		Headings:   state.headings,
		Components: state.components,
	}

	switch {
	case renderErr != nil:
		rendered.Failed = true
		rendered.FailureReason = renderErr.Error()
		err = &content.RenderFailureError{SourcePath: sourcePath, Reason: renderErr.Error(), Err: renderErr}
	case len(state.problems) > 0:
		reasons := make([]string, len(state.problems))
		for i, p := range state.problems {
			reasons[i] = p.Stage + ": " + p.Message
		}
		rendered.Failed = true
		rendered.FailureReason = strings.Join(reasons, "; ")
		err = &content.RenderFailureError{
			SourcePath: sourcePath,
			Stage:      state.problems[0].Stage,
			Reason:     rendered.FailureReason,
		}
	case marshalErr != nil:
		rendered.Failed = true
		rendered.FailureReason = marshalErr.Error()
		err = &content.RenderFailureError{SourcePath: sourcePath, Reason: marshalErr.Error(), Err: marshalErr}
	}

	if err != nil {
		t.logger.Warn("markdown.render.failed", "source_path", sourcePath, "reason", rendered.FailureReason)
	}
	return rendered, err
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
