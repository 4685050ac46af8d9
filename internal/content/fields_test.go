package content

import (
	"errors"
	"strings"
	"testing"
)

func TestComputeFieldsDerivesFromSourcePath(t *testing.T) {
	cases := []struct {
		sourcePath   string
		wantSlug     string
		wantSlugPath string
		wantURL      string
	}{
		{"blog/hello-world", "hello-world", "hello-world", "/blog/hello-world"},
		{"blog/2024/launch", "launch", "2024/launch", "/blog/2024/launch"},
		{"blog/2024/launch.mdx", "launch", "2024/launch", "/blog/2024/launch"},
		{"blog/series/index.md", "series", "series", "/blog/series"},
	}

	for _, tc := range cases {
		got, err := ComputeFields(tc.sourcePath, "body")
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.sourcePath, err)
		}
		if got.Slug != tc.wantSlug || got.SlugPath != tc.wantSlugPath || got.URL != tc.wantURL {
			t.Fatalf("%s: got %+v", tc.sourcePath, got)
		}
	}
}

func TestComputeFieldsRejectsSingleSegment(t *testing.T) {
	for _, sourcePath := range []string{"hello", "hello.mdx", "", "blog/index.mdx"} {
		_, err := ComputeFields(sourcePath, "body")
		if !errors.Is(err, ErrPathShapeViolation) {
			t.Fatalf("%q: expected ErrPathShapeViolation, got %v", sourcePath, err)
		}
		var shapeErr *PathShapeError
		if !errors.As(err, &shapeErr) {
			t.Fatalf("%q: expected *PathShapeError, got %T", sourcePath, err)
		}
	}
}

func TestReadingTime(t *testing.T) {
	cases := []struct {
		words int
		want  int
	}{
		{0, 1},
		{1, 1},
		{200, 1},
		{201, 2},
		{400, 2},
		{401, 3},
	}
	for _, tc := range cases {
		body := strings.TrimSpace(strings.Repeat("word ", tc.words))
		if got := ReadingTime(body); got != tc.want {
			t.Fatalf("%d words: expected %d minutes, got %d", tc.words, tc.want, got)
		}
	}
}

func TestReadingTimeIgnoresWhitespaceRuns(t *testing.T) {
	if got := ReadingTime("  \n\t  "); got != 1 {
		t.Fatalf("expected minimum of 1 minute, got %d", got)
	}
	if got := ReadingTime("one\n\ntwo\tthree"); got != 1 {
		t.Fatalf("expected 1 minute, got %d", got)
	}
}

func TestNormalizeSourcePath(t *testing.T) {
	cases := map[string]string{
		"blog/a.mdx":       "blog/a",
		`blog\nested\b.md`: "blog/nested/b",
		"/blog//c.mdx":     "blog/c",
		"blog/d/index.mdx": "blog/d",
		"blog/e":           "blog/e",
		"  blog/f.md  ":    "blog/f",
	}
	for input, want := range cases {
		if got := NormalizeSourcePath(input); got != want {
			t.Fatalf("NormalizeSourcePath(%q) = %q, want %q", input, got, want)
		}
	}
}
