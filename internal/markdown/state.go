package markdown

import (
	"fmt"

	"github.com/goliatone/go-slug"
	"github.com/yuin/goldmark/parser"

	"github.com/goliatone/go-folio/internal/content"
)

var renderStateKey = parser.NewContextKey()

// problem is a stage-level issue that marks the document as failed while
// keeping the best-effort output.
type problem struct {
	Stage   string
	Message string
}

// renderState is shared by the tree stages of a single conversion.
type renderState struct {
	headings   []content.Heading
	components []content.ComponentRef
	problems   []problem
	slugCounts map[string]int
	usedIDs    map[string]struct{}
}

func stateFrom(pc parser.Context) *renderState {
	if existing, ok := pc.Get(renderStateKey).(*renderState); ok && existing != nil {
		return existing
	}
	state := &renderState{
		slugCounts: map[string]int{},
		usedIDs:    map[string]struct{}{},
	}
	pc.Set(renderStateKey, state)
	return state
}

func (s *renderState) report(stage, format string, args ...any) {
	s.problems = append(s.problems, problem{Stage: stage, Message: fmt.Sprintf(format, args...)})
}

// uniqueID slugs text and suffixes repeats with -1, -2, ... Accented
// letters are transliterated first ("Introdução" becomes "introducao").
// Blank or unsluggable text becomes "section".
func (s *renderState) uniqueID(text string) string {
	base := headingSlug(text)
	for n := s.slugCounts[base]; ; n++ {
		candidate := base
		if n > 0 {
			candidate = fmt.Sprintf("%s-%d", base, n)
		}
		if _, taken := s.usedIDs[candidate]; taken {
			continue
		}
		s.slugCounts[base] = n + 1
		s.usedIDs[candidate] = struct{}{}
		return candidate
	}
}

func headingSlug(text string) string {
	transliterated, err := slug.HashNormalize(text)
	if err != nil {
		transliterated = text
	}
	base, err := slug.Normalize(transliterated)
	if err != nil || base == "" {
		return "section"
	}
	return base
}
