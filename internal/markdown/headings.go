package markdown

import (
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/goliatone/go-folio/internal/content"
)

const (
	StageHeadingIDs     = "heading-ids"
	StageHeadingAnchors = "heading-anchors"
)

// KindHeadingAnchor is the node kind of HeadingAnchor.
var KindHeadingAnchor = ast.NewNodeKind("HeadingAnchor")

// HeadingAnchor is the self link prepended to every heading.
type HeadingAnchor struct {
	ast.BaseInline
	ID string
}

func (n *HeadingAnchor) Kind() ast.NodeKind { return KindHeadingAnchor }

func (n *HeadingAnchor) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"ID": n.ID}, nil)
}

type headingIDTransformer struct{}

// Transform assigns a document-unique id to every heading and records the
// outline.
func (headingIDTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	state := stateFrom(pc)
	source := reader.Source()
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := node.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		label := nodeText(heading, source)
		id := state.uniqueID(label)
		heading.SetAttributeString("id", []byte(id))
		state.headings = append(state.headings, content.Heading{
			Level: heading.Level,
			ID:    id,
			Text:  label,
		})
		return ast.WalkSkipChildren, nil
	})
}

type headingAnchorTransformer struct{}

func (headingAnchorTransformer) Transform(doc *ast.Document, _ text.Reader, pc parser.Context) {
	state := stateFrom(pc)
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := node.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		id := headingID(heading)
		if id == "" {
			state.report(StageHeadingAnchors, "heading at level %d has no id", heading.Level)
			return ast.WalkSkipChildren, nil
		}
		anchor := &HeadingAnchor{ID: id}
		if first := heading.FirstChild(); first != nil {
			heading.InsertBefore(heading, first, anchor)
		} else {
			heading.AppendChild(heading, anchor)
		}
		return ast.WalkSkipChildren, nil
	})
}

type headingAnchorRenderer struct{}

func (r headingAnchorRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindHeadingAnchor, r.render)
}

func (headingAnchorRenderer) render(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	anchor := node.(*HeadingAnchor)
	_, _ = w.WriteString(`<a class="anchor" aria-label="Link to section" href="#`)
	_, _ = w.Write(util.EscapeHTML([]byte(anchor.ID)))
	_, _ = w.WriteString(`"><span class="icon icon-link"></span></a>`)
	return ast.WalkSkipChildren, nil
}

func headingID(heading *ast.Heading) string {
	value, ok := heading.AttributeString("id")
	if !ok {
		return ""
	}
	switch typed := value.(type) {
	case []byte:
		return string(typed)
	case string:
		return typed
	default:
		return ""
	}
}

// nodeText concatenates the literal text below node.
func nodeText(node ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(node, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch typed := child.(type) {
		case *ast.Text:
			b.Write(typed.Segment.Value(source))
			if typed.SoftLineBreak() || typed.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(typed.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}
