package markdown

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"golang.org/x/net/html"

	"github.com/goliatone/go-folio/internal/content"
)

const StageComponents = "components"

var (
	// KindComponent is the node kind of Component.
	KindComponent = ast.NewNodeKind("Component")
	// KindInlineComponent is the node kind of InlineComponent.
	KindInlineComponent = ast.NewNodeKind("InlineComponent")
)

// Component is an embedded component occupying a block.
type Component struct {
	ast.BaseBlock
	Name  string
	Props map[string]any
}

func (n *Component) Kind() ast.NodeKind { return KindComponent }

func (n *Component) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Name": n.Name}, nil)
}

// InlineComponent is an embedded component inside a paragraph.
type InlineComponent struct {
	ast.BaseInline
	Name  string
	Props map[string]any
}

func (n *InlineComponent) Kind() ast.NodeKind { return KindInlineComponent }

func (n *InlineComponent) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Name": n.Name}, nil)
}

type tagKind int

const (
	tagOpen tagKind = iota
	tagClose
	tagSelfClosing
)

type componentTag struct {
	kind  tagKind
	name  string
	props map[string]any
}

// componentTransformer replaces raw HTML whose tag name starts with an
// upper-case letter by component nodes. Content between an opening and a
// closing tag among the same siblings becomes the component's children.
type componentTransformer struct {
	allowed []string
}

func (t componentTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	t.rewrite(doc, reader.Source(), stateFrom(pc))
}

func (t componentTransformer) rewrite(parent ast.Node, source []byte, state *renderState) {
	for child := parent.FirstChild(); child != nil; {
		next := child.NextSibling()

		tag, body, ok, issue := t.tagOf(child, source)
		if issue != "" {
			state.report(StageComponents, "%s", issue)
		}
		if !ok {
			if child.HasChildren() {
				t.rewrite(child, source, state)
			}
			child = next
			continue
		}

		switch tag.kind {
		case tagSelfClosing:
			node := t.newNode(child, tag, state)
			if body != "" {
				node.AppendChild(node, ast.NewString([]byte(body)))
			}
			parent.ReplaceChild(parent, child, node)
			next = node.NextSibling()
		case tagOpen:
			closing := t.findClose(child, tag.name, source)
			if closing == nil {
				state.report(StageComponents, "component <%s> is not closed", tag.name)
				break
			}
			node := t.newNode(child, tag, state)
			for sibling := child.NextSibling(); sibling != closing; {
				following := sibling.NextSibling()
				parent.RemoveChild(parent, sibling)
				node.AppendChild(node, sibling)
				sibling = following
			}
			parent.ReplaceChild(parent, child, node)
			parent.RemoveChild(parent, closing)
			t.rewrite(node, source, state)
			next = node.NextSibling()
		case tagClose:
			state.report(StageComponents, "closing tag </%s> has no matching opening tag", tag.name)
		}
		child = next
	}
}

func (t componentTransformer) newNode(at ast.Node, tag componentTag, state *renderState) ast.Node {
	if len(t.allowed) > 0 && !slices.Contains(t.allowed, tag.name) {
		state.report(StageComponents, "unknown component <%s>", tag.name)
	}
	state.components = append(state.components, content.ComponentRef{Name: tag.name, Props: tag.props})
	if at.Type() == ast.TypeBlock {
		return &Component{Name: tag.name, Props: tag.props}
	}
	return &InlineComponent{Name: tag.name, Props: tag.props}
}

// findClose returns the sibling holding the matching closing tag, honouring
// nested components of the same name.
func (t componentTransformer) findClose(open ast.Node, name string, source []byte) ast.Node {
	depth := 0
	for sibling := open.NextSibling(); sibling != nil; sibling = sibling.NextSibling() {
		tag, _, ok, _ := t.tagOf(sibling, source)
		if !ok || tag.name != name {
			continue
		}
		switch tag.kind {
		case tagOpen:
			depth++
		case tagClose:
			if depth == 0 {
				return sibling
			}
			depth--
		}
	}
	return nil
}

// tagOf recognises a raw HTML node holding a single component tag. An
// opening tag, text and the matching closing tag inside one HTML block are
// folded into a self-closing tag with a text body. issue describes
// component markup that could not be interpreted.
func (t componentTransformer) tagOf(node ast.Node, source []byte) (componentTag, string, bool, string) {
	var raw []byte
	switch typed := node.(type) {
	case *ast.HTMLBlock:
		var buf bytes.Buffer
		lines := typed.Lines()
		for i := 0; i < lines.Len(); i++ {
			segment := lines.At(i)
			buf.Write(segment.Value(source))
		}
		if typed.HasClosure() {
			buf.Write(typed.ClosureLine.Value(source))
		}
		raw = buf.Bytes()
	case *ast.RawHTML:
		var buf bytes.Buffer
		for i := 0; i < typed.Segments.Len(); i++ {
			segment := typed.Segments.At(i)
			buf.Write(segment.Value(source))
		}
		raw = buf.Bytes()
	default:
		return componentTag{}, "", false, ""
	}

	tags, body, mixed := scanComponentTags(string(raw))
	switch {
	case len(tags) == 0:
		return componentTag{}, "", false, ""
	case mixed:
		return componentTag{}, "", false, fmt.Sprintf("component <%s> is mixed with other markup", tags[0].name)
	case len(tags) == 1 && body == "":
		return tags[0], "", true, ""
	case len(tags) == 2 && tags[0].kind == tagOpen && tags[1].kind == tagClose && tags[0].name == tags[1].name:
		folded := tags[0]
		folded.kind = tagSelfClosing
		return folded, body, true, ""
	default:
		return componentTag{}, "", false, fmt.Sprintf("unsupported component markup around <%s>", tags[0].name)
	}
}

// scanComponentTags tokenizes raw HTML. mixed reports tags or comments
// that are not components.
func scanComponentTags(raw string) (tags []componentTag, body string, mixed bool) {
	z := html.NewTokenizer(strings.NewReader(raw))
	var text strings.Builder
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return tags, strings.TrimSpace(text.String()), mixed && len(tags) > 0
		case html.TextToken:
			text.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			rawTag := string(z.Raw())
			name := originalTagName(rawTag)
			if !isComponentName(name) {
				mixed = true
				continue
			}
			tag := componentTag{name: name, kind: tagOpen}
			switch tt {
			case html.EndTagToken:
				tag.kind = tagClose
			case html.SelfClosingTagToken:
				tag.kind = tagSelfClosing
			}
			if tag.kind != tagClose {
				tag.props = readProps(z, rawTag)
			}
			tags = append(tags, tag)
		default:
			mixed = true
		}
	}
}

// readProps collects the attributes of the current token. The tokenizer
// lower-cases attribute names, so the original spelling is recovered from
// the raw tag.
func readProps(z *html.Tokenizer, rawTag string) map[string]any {
	props := map[string]any{}
	lowered := strings.ToLower(rawTag)
	offset := len(originalTagName(rawTag)) + 1
	for {
		key, value, more := z.TagAttr()
		if len(key) > 0 {
			name, hasValue, next := attributeName(rawTag, lowered, string(key), offset)
			offset = next
			if hasValue {
				props[name] = propValue(string(value))
			} else {
				props[name] = true
			}
		}
		if !more {
			return props
		}
	}
}

func attributeName(rawTag, lowered, key string, offset int) (string, bool, int) {
	if offset > len(lowered) {
		offset = len(lowered)
	}
	idx := strings.Index(lowered[offset:], key)
	if idx < 0 {
		return key, true, offset
	}
	start := offset + idx
	end := start + len(key)
	rest := strings.TrimLeftFunc(rawTag[end:], unicode.IsSpace)
	return rawTag[start:end], strings.HasPrefix(rest, "="), end
}

// propValue decodes {expression} values holding JSON literals; anything
// else stays a string.
func propValue(value string) any {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) >= 2 && strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		inner := strings.TrimSpace(trimmed[1 : len(trimmed)-1])
		var decoded any
		if err := json.Unmarshal([]byte(inner), &decoded); err == nil {
			return decoded
		}
		return inner
	}
	return value
}

func originalTagName(rawTag string) string {
	name := strings.TrimPrefix(strings.TrimSpace(rawTag), "<")
	name = strings.TrimPrefix(name, "/")
	end := strings.IndexFunc(name, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '-' || r == '_')
	})
	if end >= 0 {
		name = name[:end]
	}
	return name
}

func isComponentName(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return r != utf8.RuneError && unicode.IsUpper(r)
}

type componentRenderer struct{}

func (r componentRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindComponent, r.renderBlock)
	reg.Register(KindInlineComponent, r.renderInline)
}

func (componentRenderer) renderBlock(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*Component)
	if entering {
		writeComponentOpen(w, "div", n.Name, n.Props)
		if n.HasChildren() && n.FirstChild().Type() == ast.TypeBlock {
			_ = w.WriteByte('\n')
		}
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString("</div>\n")
	return ast.WalkContinue, nil
}

func (componentRenderer) renderInline(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*InlineComponent)
	if entering {
		writeComponentOpen(w, "span", n.Name, n.Props)
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString("</span>")
	return ast.WalkContinue, nil
}

func writeComponentOpen(w util.BufWriter, element, name string, props map[string]any) {
	if props == nil {
		props = map[string]any{}
	}
	encoded, err := json.Marshal(props)
	if err != nil {
		encoded = []byte("{}")
	}
	_, _ = w.WriteString("<" + element + ` data-component="`)
	_, _ = w.Write(util.EscapeHTML([]byte(name)))
	_, _ = w.WriteString(`" data-props='`)
	_, _ = w.Write(bytes.ReplaceAll(encoded, []byte("'"), []byte("&#39;")))
	_, _ = w.WriteString("'>")
}
