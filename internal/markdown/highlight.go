package markdown

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

const (
	StageHighlight = "highlight"

	// DefaultTheme is the chroma style used when none is configured.
	DefaultTheme = "github-dark"

	plainLanguage     = "plaintext"
	highlightPriority = 200
)

var (
	lineRangesPattern = regexp.MustCompile(`\{([\d,\s-]+)\}`)
	wordPattern       = regexp.MustCompile(`/((?:\\/|[^/])+)/`)
)

// FenceMeta is the parsed info string of a fenced code block.
type FenceMeta struct {
	Language string
	Lines    map[int]bool
	Words    []string
}

// ParseFenceMeta reads "lang {1,3-4} /word/" info strings.
func ParseFenceMeta(info string) FenceMeta {
	info = strings.TrimSpace(info)
	meta := FenceMeta{Lines: map[int]bool{}}

	end := strings.IndexFunc(info, func(r rune) bool { return r == ' ' || r == '\t' || r == '{' })
	if end < 0 {
		meta.Language, info = info, ""
	} else {
		meta.Language, info = info[:end], info[end:]
	}

	for _, match := range lineRangesPattern.FindAllStringSubmatch(info, -1) {
		for _, part := range strings.Split(match[1], ",") {
			from, to, ok := parseLineRange(strings.TrimSpace(part))
			if !ok {
				continue
			}
			for line := from; line <= to; line++ {
				meta.Lines[line] = true
			}
		}
	}
	for _, match := range wordPattern.FindAllStringSubmatch(info, -1) {
		if word := strings.ReplaceAll(match[1], `\/`, "/"); word != "" {
			meta.Words = append(meta.Words, word)
		}
	}
	return meta
}

func parseLineRange(part string) (int, int, bool) {
	if part == "" {
		return 0, 0, false
	}
	if from, to, isRange := strings.Cut(part, "-"); isRange {
		start, err1 := strconv.Atoi(strings.TrimSpace(from))
		end, err2 := strconv.Atoi(strings.TrimSpace(to))
		if err1 != nil || err2 != nil || start < 1 || end < start {
			return 0, 0, false
		}
		return start, end, true
	}
	line, err := strconv.Atoi(part)
	if err != nil || line < 1 {
		return 0, 0, false
	}
	return line, line, true
}

type codeSegment struct {
	text  string
	class string
	style string
}

// highlightRenderer replaces the default fenced code renderer.
type highlightRenderer struct {
	theme string
	style *chroma.Style
}

func newHighlightRenderer(theme string) highlightRenderer {
	if strings.TrimSpace(theme) == "" {
		theme = DefaultTheme
	}
	return highlightRenderer{theme: theme, style: styles.Get(theme)}
}

func (r highlightRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.render)
}

func (r highlightRenderer) render(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	block := node.(*ast.FencedCodeBlock)

	var info string
	if block.Info != nil {
		info = string(block.Info.Segment.Value(source))
	}
	meta := ParseFenceMeta(info)

	var code strings.Builder
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		code.Write(segment.Value(source))
	}

	language, codeLines := r.tokenize(meta.Language, code.String())

	background := r.style.Get(chroma.Background)
	escapedLanguage := util.EscapeHTML([]byte(language))
	_, _ = w.WriteString(`<pre class="chroma" data-language="`)
	_, _ = w.Write(escapedLanguage)
	_, _ = w.WriteString(`" data-theme="`)
	_, _ = w.Write(util.EscapeHTML([]byte(r.theme)))
	_, _ = w.WriteString(`"`)
	if css := entryCSS(background, true); css != "" {
		_, _ = w.WriteString(` style="` + css + `"`)
	}
	_, _ = w.WriteString(`><code data-language="`)
	_, _ = w.Write(escapedLanguage)
	_, _ = w.WriteString(`">`)

	for i, segments := range codeLines {
		number := i + 1
		if i > 0 {
			_ = w.WriteByte('\n')
		}
		highlighted := meta.Lines[number]
		if highlighted {
			_, _ = w.WriteString(`<span class="line line--highlighted" data-line="` + strconv.Itoa(number) + `" data-highlighted-line>`)
		} else {
			_, _ = w.WriteString(`<span class="line" data-line="` + strconv.Itoa(number) + `">`)
		}
		segments = markWords(segments, meta.Words)
		if lineText(segments) == "" {
			_ = w.WriteByte(' ')
		}
		for _, segment := range segments {
			writeSegment(w, segment)
		}
		_, _ = w.WriteString(`</span>`)
	}
	_, _ = w.WriteString("</code></pre>\n")
	return ast.WalkSkipChildren, nil
}

// tokenize splits code into styled lines. Unknown languages and lexer
// errors fall back to unstyled lines.
func (r highlightRenderer) tokenize(language, code string) (string, [][]codeSegment) {
	lexer := lexers.Get(language)
	if language == "" || lexer == nil {
		return plainLanguage, plainLines(code)
	}
	language = strings.ToLower(language)

	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return plainLanguage, plainLines(code)
	}

	var out [][]codeSegment
	for _, tokens := range chroma.SplitTokensIntoLines(iterator.Tokens()) {
		line := make([]codeSegment, 0, len(tokens))
		for _, token := range tokens {
			value := strings.TrimRight(token.Value, "\n")
			if value == "" {
				continue
			}
			line = append(line, codeSegment{
				text:  value,
				class: chroma.StandardTypes[token.Type],
				style: entryCSS(r.style.Get(token.Type), false),
			})
		}
		out = append(out, line)
	}
	if want := len(plainLines(code)); len(out) > want {
		out = out[:want]
	}
	return language, out
}

func plainLines(code string) [][]codeSegment {
	code = strings.TrimSuffix(code, "\n")
	if code == "" {
		return [][]codeSegment{{}}
	}
	raw := strings.Split(code, "\n")
	out := make([][]codeSegment, len(raw))
	for i, line := range raw {
		if line != "" {
			out[i] = []codeSegment{{text: line}}
		}
	}
	return out
}

// markWords splits segments at highlighted word boundaries. Covered
// pieces take the word--highlighted class in place of the token class.
func markWords(segments []codeSegment, words []string) []codeSegment {
	if len(words) == 0 || len(segments) == 0 {
		return segments
	}
	full := lineText(segments)

	type span struct{ start, end int }
	var spans []span
	for _, word := range words {
		for offset := 0; offset < len(full); {
			idx := strings.Index(full[offset:], word)
			if idx < 0 {
				break
			}
			start := offset + idx
			spans = append(spans, span{start, start + len(word)})
			offset = start + len(word)
		}
	}
	if len(spans) == 0 {
		return segments
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	covered := func(pos int) bool {
		for _, s := range spans {
			if pos >= s.start && pos < s.end {
				return true
			}
		}
		return false
	}
	isBoundary := func(pos int) bool {
		for _, s := range spans {
			if pos == s.start || pos == s.end {
				return true
			}
		}
		return false
	}

	var out []codeSegment
	pos := 0
	for _, segment := range segments {
		start := 0
		for i := 1; i <= len(segment.text); i++ {
			if i < len(segment.text) && !isBoundary(pos+i) {
				continue
			}
			piece := codeSegment{text: segment.text[start:i], class: segment.class, style: segment.style}
			if covered(pos + start) {
				piece.class = "word--highlighted"
			}
			out = append(out, piece)
			start = i
		}
		pos += len(segment.text)
	}
	return out
}

func lineText(segments []codeSegment) string {
	var b strings.Builder
	for _, segment := range segments {
		b.WriteString(segment.text)
	}
	return b.String()
}

func writeSegment(w util.BufWriter, segment codeSegment) {
	escaped := util.EscapeHTML([]byte(segment.text))
	if segment.class == "" && segment.style == "" {
		_, _ = w.Write(escaped)
		return
	}
	_, _ = w.WriteString("<span")
	if segment.class != "" {
		_, _ = w.WriteString(` class="` + segment.class + `"`)
	}
	if segment.style != "" {
		_, _ = w.WriteString(` style="` + segment.style + `"`)
	}
	_ = w.WriteByte('>')
	_, _ = w.Write(escaped)
	_, _ = w.WriteString("</span>")
}

func entryCSS(entry chroma.StyleEntry, withBackground bool) string {
	var parts []string
	if entry.Colour.IsSet() {
		parts = append(parts, "color:"+entry.Colour.String())
	}
	if withBackground && entry.Background.IsSet() {
		parts = append(parts, "background-color:"+entry.Background.String())
	}
	if entry.Bold == chroma.Yes {
		parts = append(parts, "font-weight:bold")
	}
	if entry.Italic == chroma.Yes {
		parts = append(parts, "font-style:italic")
	}
	if entry.Underline == chroma.Yes {
		parts = append(parts, "text-decoration:underline")
	}
	return strings.Join(parts, ";")
}
