package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-folio/cmd/folio/internal/bootstrap"
	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

type quietProvider struct{}

func (quietProvider) GetLogger(string) interfaces.Logger { return logging.NoOp() }

func quietBuilder(t *testing.T) {
	t.Helper()
	original := moduleBuilder
	t.Cleanup(func() { moduleBuilder = original })
	moduleBuilder = func(opts bootstrap.Options) (*bootstrap.Module, error) {
		opts.LoggerProvider = quietProvider{}
		return original(opts)
	}
}

func writeSource(t *testing.T, root, rel, body string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestRunBuildPublishesArtifacts(t *testing.T) {
	quietBuilder(t)
	contentDir := t.TempDir()
	outputDir := t.TempDir()
	writeSource(t, contentDir, "blog/hello.md", "---\ntitle: Hello\ndescription: First\ndate: 2024-05-01\npublished: true\n---\nHi.\n")

	var out bytes.Buffer
	err := run(context.Background(), []string{"build", "-content-dir", contentDir, "-output", outputDir}, &out)
	if err != nil {
		t.Fatalf("run build: %v", err)
	}
	if !strings.Contains(out.String(), "1 documents, 1 published") {
		t.Fatalf("unexpected output %q", out.String())
	}
	for _, name := range []string{"rss.xml", "sitemap.xml", "robots.txt", "feed.json"} {
		if _, err := os.Stat(filepath.Join(outputDir, name)); err != nil {
			t.Fatalf("expected %s in output: %v", name, err)
		}
	}
}

func TestRunBuildStrictSlugsFails(t *testing.T) {
	quietBuilder(t)
	contentDir := t.TempDir()
	post := "---\ntitle: Same\ndescription: x\ndate: 2024-05-01\npublished: true\n---\nBody\n"
	writeSource(t, contentDir, "blog/a/same.md", post)
	writeSource(t, contentDir, "blog/b/same.md", post)

	var out bytes.Buffer
	err := run(context.Background(), []string{"build", "-content-dir", contentDir, "-publish=false", "-strict-slugs"}, &out)
	if err == nil {
		t.Fatal("expected duplicate slug failure")
	}
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), []string{"deploy"}, &out); err == nil {
		t.Fatal("expected error for unknown command")
	}
	if !strings.Contains(out.String(), "usage: folio") {
		t.Fatalf("expected usage, got %q", out.String())
	}
}

func TestRunTokenRequiresSecret(t *testing.T) {
	quietBuilder(t)
	t.Setenv("FOLIO_HTTP_JWT_SECRET", "")
	var out bytes.Buffer
	if err := run(context.Background(), []string{"token", "-subject", "ana"}, &out); err == nil {
		t.Fatal("expected error without a jwt secret")
	}
}

func TestRunTokenIssues(t *testing.T) {
	quietBuilder(t)
	t.Setenv("FOLIO_HTTP_JWT_SECRET", "secret")
	var out bytes.Buffer
	if err := run(context.Background(), []string{"token", "-subject", "ana"}, &out); err != nil {
		t.Fatalf("run token: %v", err)
	}
	if strings.Count(strings.TrimSpace(out.String()), ".") != 2 {
		t.Fatalf("expected a jwt, got %q", out.String())
	}
}
