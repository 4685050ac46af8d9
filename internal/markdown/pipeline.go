package markdown

import (
	"fmt"
	"slices"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// Phase orders stages. Syntax stages extend the parser, tree stages
// rewrite the parsed document, render stages replace node renderers.
type Phase int

const (
	PhaseSyntax Phase = iota
	PhaseTree
	PhaseRender
)

func (p Phase) String() string {
	switch p {
	case PhaseSyntax:
		return "syntax"
	case PhaseTree:
		return "tree"
	case PhaseRender:
		return "render"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Stage is one named step of the transformer. Tree stage transformers run
// in stage order; their goldmark priorities are assigned by the pipeline.
// Renderers carry explicit priorities because they compete with the
// default HTML renderer (priority 1000, lower wins).
type Stage struct {
	Name         string
	Phase        Phase
	Extenders    []goldmark.Extender
	Transformers []parser.ASTTransformer
	Renderers    []util.PrioritizedValue
}

const (
	treePriorityBase = 100
	treePriorityStep = 10
)

// Pipeline is an ordered, validated list of stages.
type Pipeline struct {
	stages []Stage
}

// NewPipeline validates stage names and ordering.
func NewPipeline(stages ...Stage) (*Pipeline, error) {
	seen := map[string]struct{}{}
	last := PhaseSyntax
	for i, stage := range stages {
		name := strings.TrimSpace(stage.Name)
		if name == "" {
			return nil, fmt.Errorf("markdown pipeline: stage %d has no name", i)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("markdown pipeline: duplicate stage %q", name)
		}
		seen[name] = struct{}{}
		if stage.Phase < last {
			return nil, fmt.Errorf("markdown pipeline: stage %q (%s) follows a %s stage", name, stage.Phase, last)
		}
		if stage.Phase == PhaseSyntax && len(stage.Transformers) > 0 {
			return nil, fmt.Errorf("markdown pipeline: syntax stage %q cannot rewrite the tree", name)
		}
		last = stage.Phase
	}
	return &Pipeline{stages: slices.Clone(stages)}, nil
}

// Names lists the stage names in execution order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.stages))
	for i, stage := range p.stages {
		names[i] = stage.Name
	}
	return names
}

// Without returns a pipeline with the named stages removed.
func (p *Pipeline) Without(names ...string) (*Pipeline, error) {
	return NewPipeline(slices.DeleteFunc(slices.Clone(p.stages), func(s Stage) bool {
		return slices.Contains(names, s.Name)
	})...)
}

// Only returns a pipeline restricted to the named stages, in pipeline order.
func (p *Pipeline) Only(names ...string) (*Pipeline, error) {
	for _, name := range names {
		if !slices.ContainsFunc(p.stages, func(s Stage) bool { return s.Name == name }) {
			return nil, fmt.Errorf("markdown pipeline: unknown stage %q", name)
		}
	}
	return NewPipeline(slices.DeleteFunc(slices.Clone(p.stages), func(s Stage) bool {
		return !slices.Contains(names, s.Name)
	})...)
}

// engine assembles a goldmark instance. Raw HTML is never passed through.
func (p *Pipeline) engine() goldmark.Markdown {
	var (
		extenders    []goldmark.Extender
		transformers []util.PrioritizedValue
		renderers    []util.PrioritizedValue
	)
	for i, stage := range p.stages {
		extenders = append(extenders, stage.Extenders...)
		for j, t := range stage.Transformers {
			transformers = append(transformers, util.Prioritized(t, treePriorityBase+i*treePriorityStep+j))
		}
		renderers = append(renderers, stage.Renderers...)
	}

	return goldmark.New(
		goldmark.WithExtensions(extenders...),
		goldmark.WithParserOptions(parser.WithASTTransformers(transformers...)),
		goldmark.WithRendererOptions(renderer.WithNodeRenderers(renderers...)),
	)
}
