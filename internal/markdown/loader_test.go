package markdown

import (
	"context"
	"slices"
	"testing"
	"testing/fstest"
)

func contentFS() fstest.MapFS {
	return fstest.MapFS{
		"content/blog/a.mdx":                 {Data: []byte(helloSource)},
		"content/blog/2024/b.md":             {Data: []byte(helloSource)},
		"content/blog/2024/deep/c.mdx":       {Data: []byte(helloSource)},
		"content/blog/notes.txt":             {Data: []byte("not markdown")},
		"content/pages/about.mdx":            {Data: []byte(helloSource)},
		"content/blog/2024/series/index.mdx": {Data: []byte(helloSource)},
	}
}

func TestLoaderMatchesDefaultPatterns(t *testing.T) {
	loader, err := NewLoader(contentFS(), LoaderConfig{Root: "content"})
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	sources, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	var paths, sourcePaths []string
	for _, src := range sources {
		paths = append(paths, src.Path)
		sourcePaths = append(sourcePaths, src.SourcePath)
	}
	wantPaths := []string{
		"blog/2024/b.md",
		"blog/2024/deep/c.mdx",
		"blog/2024/series/index.mdx",
		"blog/a.mdx",
	}
	if !slices.Equal(paths, wantPaths) {
		t.Fatalf("expected %v, got %v", wantPaths, paths)
	}
	wantSourcePaths := []string{"blog/2024/b", "blog/2024/deep/c", "blog/2024/series", "blog/a"}
	if !slices.Equal(sourcePaths, wantSourcePaths) {
		t.Fatalf("expected %v, got %v", wantSourcePaths, sourcePaths)
	}
	for _, src := range sources {
		if len(src.Data) == 0 {
			t.Fatalf("expected data for %s", src.Path)
		}
	}
}

func TestLoaderCustomPattern(t *testing.T) {
	loader, err := NewLoader(contentFS(), LoaderConfig{Root: "content", Patterns: []string{"pages/*.mdx"}})
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	sources, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(sources) != 1 || sources[0].SourcePath != "pages/about" {
		t.Fatalf("unexpected sources %+v", sources)
	}
}

func TestLoaderHonoursCancellation(t *testing.T) {
	loader, err := NewLoader(contentFS(), LoaderConfig{Root: "content"})
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := loader.Load(ctx); err == nil {
		t.Fatal("expected cancelled context to abort loading")
	}
}

func TestLoaderLoadFile(t *testing.T) {
	loader, err := NewLoader(contentFS(), LoaderConfig{Root: "content"})
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	src, err := loader.LoadFile(context.Background(), "blog/a.mdx")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if src.SourcePath != "blog/a" {
		t.Fatalf("unexpected source path %q", src.SourcePath)
	}
}
