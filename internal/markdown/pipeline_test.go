package markdown

import (
	"slices"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

func TestDefaultPipelineOrder(t *testing.T) {
	pipeline, err := DefaultPipeline(StageOptions{})
	if err != nil {
		t.Fatalf("DefaultPipeline: %v", err)
	}
	want := []string{StageGFM, StageComponents, StageHeadingIDs, StageHeadingAnchors, StageHighlight}
	if got := pipeline.Names(); !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestNewPipelineRejectsDuplicateNames(t *testing.T) {
	_, err := NewPipeline(
		Stage{Name: "gfm", Phase: PhaseSyntax, Extenders: []goldmark.Extender{extension.GFM}},
		Stage{Name: "gfm", Phase: PhaseSyntax},
	)
	if err == nil {
		t.Fatal("expected duplicate stage names to be rejected")
	}
}

func TestNewPipelineRejectsOutOfOrderPhases(t *testing.T) {
	_, err := NewPipeline(
		Stage{Name: "ids", Phase: PhaseTree, Transformers: []parser.ASTTransformer{headingIDTransformer{}}},
		Stage{Name: "gfm", Phase: PhaseSyntax},
	)
	if err == nil {
		t.Fatal("expected a syntax stage after a tree stage to be rejected")
	}
}

func TestNewPipelineRejectsTransformersInSyntaxStage(t *testing.T) {
	_, err := NewPipeline(Stage{
		Name:         "bad",
		Phase:        PhaseSyntax,
		Transformers: []parser.ASTTransformer{headingIDTransformer{}},
	})
	if err == nil {
		t.Fatal("expected syntax stage with transformers to be rejected")
	}
}

func TestPipelineWithoutAndOnly(t *testing.T) {
	pipeline, err := DefaultPipeline(StageOptions{})
	if err != nil {
		t.Fatalf("DefaultPipeline: %v", err)
	}

	without, err := pipeline.Without(StageHighlight, StageComponents)
	if err != nil {
		t.Fatalf("Without: %v", err)
	}
	if got := without.Names(); !slices.Equal(got, []string{StageGFM, StageHeadingIDs, StageHeadingAnchors}) {
		t.Fatalf("unexpected stages %v", got)
	}

	only, err := pipeline.Only(StageHeadingIDs, StageGFM)
	if err != nil {
		t.Fatalf("Only: %v", err)
	}
	if got := only.Names(); !slices.Equal(got, []string{StageGFM, StageHeadingIDs}) {
		t.Fatalf("expected pipeline order to be kept, got %v", got)
	}

	if _, err := pipeline.Only("missing"); err == nil {
		t.Fatal("expected unknown stage to be rejected")
	}
	if len(pipeline.Names()) != 5 {
		t.Fatal("expected original pipeline to be unchanged")
	}
}

func TestParseFenceMeta(t *testing.T) {
	meta := ParseFenceMeta(`go {1,3-4} /fmt/ /a\/b/`)
	if meta.Language != "go" {
		t.Fatalf("unexpected language %q", meta.Language)
	}
	for _, line := range []int{1, 3, 4} {
		if !meta.Lines[line] {
			t.Fatalf("expected line %d to be highlighted", line)
		}
	}
	if meta.Lines[2] {
		t.Fatal("did not expect line 2 to be highlighted")
	}
	if !slices.Equal(meta.Words, []string{"fmt", "a/b"}) {
		t.Fatalf("unexpected words %v", meta.Words)
	}

	bare := ParseFenceMeta("ts{2}")
	if bare.Language != "ts" || !bare.Lines[2] {
		t.Fatalf("unexpected meta %+v", bare)
	}
}
