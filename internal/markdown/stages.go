package markdown

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/util"
)

const StageGFM = "gfm"

// StageOptions configures the default stages.
type StageOptions struct {
	// Theme is the chroma style name for code blocks.
	Theme string
	// Components restricts embedded components to these names when set.
	Components []string
}

// DefaultStages returns gfm, components, heading-ids, heading-anchors and
// highlight, in that order.
func DefaultStages(opts StageOptions) []Stage {
	return []Stage{
		{
			Name:      StageGFM,
			Phase:     PhaseSyntax,
			Extenders: []goldmark.Extender{extension.GFM},
		},
		{
			Name:         StageComponents,
			Phase:        PhaseTree,
			Transformers: []parser.ASTTransformer{componentTransformer{allowed: opts.Components}},
			Renderers:    []util.PrioritizedValue{util.Prioritized(componentRenderer{}, 500)},
		},
		{
			Name:         StageHeadingIDs,
			Phase:        PhaseTree,
			Transformers: []parser.ASTTransformer{headingIDTransformer{}},
		},
		{
			Name:         StageHeadingAnchors,
			Phase:        PhaseTree,
			Transformers: []parser.ASTTransformer{headingAnchorTransformer{}},
			Renderers:    []util.PrioritizedValue{util.Prioritized(headingAnchorRenderer{}, 500)},
		},
		{
			Name:      StageHighlight,
			Phase:     PhaseRender,
			Renderers: []util.PrioritizedValue{util.Prioritized(newHighlightRenderer(opts.Theme), highlightPriority)},
		},
	}
}

// DefaultPipeline builds the pipeline from DefaultStages.
func DefaultPipeline(opts StageOptions) (*Pipeline, error) {
	return NewPipeline(DefaultStages(opts)...)
}
