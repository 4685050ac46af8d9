package generator

import (
	"testing"
	"time"

	"github.com/goliatone/go-folio/internal/content"
)

var testSite = Site{
	Name:        "Folio",
	Description: "Notes  on\nsoftware",
	BaseURL:     "https://example.com/",
	Language:    "pt-BR",
}

var generatedAt = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type docFixture struct {
	path      string
	title     string
	date      string
	published bool
	featured  bool
	tags      []string
	category  string
}

func buildCollection(t *testing.T, fixtures ...docFixture) *content.Collection {
	t.Helper()
	coll := content.NewCollection()
	for _, f := range fixtures {
		published, err := time.Parse("2006-01-02", f.date)
		if err != nil {
			t.Fatalf("parse date: %v", err)
		}
		meta := content.Metadata{
			Title:       f.title,
			Description: "About " + f.title,
			PublishedAt: published,
			IsPublished: f.published,
			IsFeatured:  f.featured,
			Author:      "Ana",
			Tags:        f.tags,
		}
		if f.category != "" {
			meta.Categories = []string{f.category}
		}
		doc, err := content.NewDocument(f.path, meta, "some words in the body")
		if err != nil {
			t.Fatalf("NewDocument(%s): %v", f.path, err)
		}
		if err := coll.AddOrReplace(doc); err != nil {
			t.Fatalf("AddOrReplace: %v", err)
		}
	}
	coll.Freeze()
	return coll
}

func sampleCollection(t *testing.T) *content.Collection {
	return buildCollection(t,
		docFixture{path: "blog/first", title: "First", date: "2024-01-01", published: true, tags: []string{"go"}, category: "eng"},
		docFixture{path: "blog/second", title: "Second", date: "2024-03-01", published: true, featured: true, tags: []string{"go", "web"}},
		docFixture{path: "blog/draft", title: "Draft", date: "2024-05-01", published: false, tags: []string{"go"}},
		docFixture{path: "blog/2024/third", title: "Third", date: "2024-02-01", published: true, category: "eng"},
	)
}
