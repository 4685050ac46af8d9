package folio_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	folio "github.com/goliatone/go-folio"
	"github.com/goliatone/go-folio/internal/generator"
	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/internal/media"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

type quietProvider struct{}

func (quietProvider) GetLogger(string) interfaces.Logger { return logging.NoOp() }

func sources() fstest.MapFS {
	return fstest.MapFS{
		"posts/blog/hello.mdx": &fstest.MapFile{Data: []byte(`---
title: Hello
description: First post
date: 2024-05-01
published: true
tags: [go]
---
# Hello

<Callout type="info">

Welcome

</Callout>
`)},
	}
}

func newModule(t *testing.T, opts ...folio.Option) *folio.Module {
	t.Helper()
	cfg := folio.DefaultConfig()
	cfg.Content.Root = "posts"
	cfg.Site.BaseURL = "https://example.com"
	cfg.Artifacts.Driver = "memory"
	base := []folio.Option{
		folio.WithLoggerProvider(quietProvider{}),
		folio.WithFS(sources()),
		folio.WithClock(func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }),
	}
	module, err := folio.New(cfg, append(base, opts...)...)
	if err != nil {
		t.Fatalf("folio.New: %v", err)
	}
	return module
}

func TestModuleBuildAndLookup(t *testing.T) {
	store := generator.NewMemoryStore()
	module := newModule(t, folio.WithArtifactStore(store))

	if _, err := module.Collection(); !errors.Is(err, folio.ErrNoCollection) {
		t.Fatalf("expected ErrNoCollection, got %v", err)
	}
	result, err := module.Build(context.Background(), folio.TriggerCLI, true)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if result.Report.Published != 1 {
		t.Fatalf("expected one published document, got %+v", result.Report)
	}

	coll, err := module.Collection()
	if err != nil {
		t.Fatalf("Collection: %v", err)
	}
	doc, err := coll.FindPublishedBySlug("hello")
	if err != nil {
		t.Fatalf("FindPublishedBySlug: %v", err)
	}
	if doc.URL() != "/blog/hello" {
		t.Fatalf("unexpected url %q", doc.URL())
	}
	if !strings.Contains(doc.Rendered().HTML, "Welcome") {
		t.Fatalf("expected component body in html, got %q", doc.Rendered().HTML)
	}
	feed, ok := store.Artifacts[generator.ArtifactFeed]
	if !ok || !strings.Contains(string(feed.Data), "https://example.com/blog/hello") {
		t.Fatalf("expected feed artifact with the post permalink")
	}
}

func TestModuleIngestWithoutMedia(t *testing.T) {
	module := newModule(t)
	_, err := module.Ingest(context.Background(), folio.Upload{Filename: "a.png"}, "")
	if !errors.Is(err, folio.ErrMediaDisabled) {
		t.Fatalf("expected ErrMediaDisabled, got %v", err)
	}
}

func TestModuleMediaURLUsesConfiguredCloud(t *testing.T) {
	cfg := folio.DefaultConfig()
	cfg.Media.CloudName = "demo"
	module, err := folio.New(cfg, folio.WithLoggerProvider(quietProvider{}), folio.WithFS(sources()))
	if err != nil {
		t.Fatalf("folio.New: %v", err)
	}
	got := module.MediaURL("blog/cover", media.URLOptions{Width: 800})
	want := "https://res.cloudinary.com/demo/image/upload/c_fill,w_800,q_auto,f_auto/blog/cover"
	if got != want {
		t.Fatalf("MediaURL() = %q, want %q", got, want)
	}
}
