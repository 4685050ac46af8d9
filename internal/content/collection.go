package content

import (
	"iter"
	"slices"
	"strings"
	"sync"
)

// Collection is the in-memory set of documents produced by one pipeline
// run. Documents keep their first insertion position; AddOrReplace on an
// existing source path swaps the value in place. After Freeze the
// collection rejects writes and is safe for concurrent readers.
type Collection struct {
	mu     sync.RWMutex
	order  []string
	docs   map[string]Document
	frozen bool
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{docs: make(map[string]Document)}
}

// AddOrReplace stores a copy of doc keyed by its source path.
func (c *Collection) AddOrReplace(doc Document) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.frozen {
		return ErrCollectionFrozen
	}
	key := doc.SourcePath()
	if _, ok := c.docs[key]; !ok {
		c.order = append(c.order, key)
	}
	c.docs[key] = doc.clone()
	return nil
}

// Freeze marks the collection read-only.
func (c *Collection) Freeze() {
	c.mu.Lock()
	c.frozen = true
	c.mu.Unlock()
}

// Frozen reports whether Freeze has been called.
func (c *Collection) Frozen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frozen
}

func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// All returns every document in insertion order.
func (c *Collection) All() []Document {
	return c.filter(func(Document) bool { return true })
}

// Get returns the document stored under sourcePath.
func (c *Collection) Get(sourcePath string) (Document, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	doc, ok := c.docs[NormalizeSourcePath(sourcePath)]
	if !ok {
		return Document{}, false
	}
	return doc.clone(), true
}

// Published lazily yields published documents in insertion order. The
// sequence walks a snapshot of the keys taken when iteration starts.
func (c *Collection) Published() iter.Seq[Document] {
	return func(yield func(Document) bool) {
		c.mu.RLock()
		keys := slices.Clone(c.order)
		c.mu.RUnlock()

		for _, key := range keys {
			c.mu.RLock()
			doc, ok := c.docs[key]
			c.mu.RUnlock()
			if !ok || !doc.IsPublished {
				continue
			}
			if !yield(doc.clone()) {
				return
			}
		}
	}
}

// SortedByDateDescending returns published documents, newest first. Equal
// dates are ordered by source path ascending.
func (c *Collection) SortedByDateDescending() []Document {
	docs := slices.Collect(c.Published())
	slices.SortStableFunc(docs, compareByDateDesc)
	return docs
}

// Featured returns published featured documents, newest first.
func (c *Collection) Featured() []Document {
	return sorted(c.filter(func(d Document) bool { return d.IsPublished && d.IsFeatured }))
}

// ByTag returns published documents carrying tag, newest first.
func (c *Collection) ByTag(tag string) []Document {
	return sorted(c.filter(func(d Document) bool { return d.IsPublished && d.HasTag(tag) }))
}

// ByCategory returns published documents in category, newest first.
func (c *Collection) ByCategory(category string) []Document {
	return sorted(c.filter(func(d Document) bool { return d.IsPublished && d.InCategory(category) }))
}

// Tags returns the distinct tags of published documents, sorted.
func (c *Collection) Tags() []string {
	seen := map[string]struct{}{}
	for doc := range c.Published() {
		for _, tag := range doc.Tags {
			seen[tag] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for tag := range seen {
		out = append(out, tag)
	}
	slices.Sort(out)
	return out
}

// FindBySlug returns the first document, in collection order, whose slug
// equals slug regardless of publication state.
func (c *Collection) FindBySlug(slug string) (Document, error) {
	return c.find(slug, func(Document) bool { return true })
}

// FindPublishedBySlug is FindBySlug restricted to published documents.
// An unpublished match is reported as not found.
func (c *Collection) FindPublishedBySlug(slug string) (Document, error) {
	return c.find(slug, func(d Document) bool { return d.IsPublished })
}

// DuplicateSlugs lists slugs shared by more than one document, in the
// order their first holder was inserted.
func (c *Collection) DuplicateSlugs() []DuplicateSlug {
	c.mu.RLock()
	defer c.mu.RUnlock()

	bySlug := map[string][]string{}
	slugs := []string{}
	for _, key := range c.order {
		slug := c.docs[key].Slug()
		if _, ok := bySlug[slug]; !ok {
			slugs = append(slugs, slug)
		}
		bySlug[slug] = append(bySlug[slug], key)
	}

	var out []DuplicateSlug
	for _, slug := range slugs {
		if paths := bySlug[slug]; len(paths) > 1 {
			out = append(out, DuplicateSlug{Slug: slug, SourcePaths: paths})
		}
	}
	return out
}

func (c *Collection) find(slug string, keep func(Document) bool) (Document, error) {
	slug = strings.TrimSpace(slug)
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, key := range c.order {
		doc := c.docs[key]
		if doc.Slug() != slug {
			continue
		}
		if !keep(doc) {
			break
		}
		return doc.clone(), nil
	}
	return Document{}, &NotFoundError{Slug: slug}
}

func (c *Collection) filter(keep func(Document) bool) []Document {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Document, 0, len(c.order))
	for _, key := range c.order {
		if doc := c.docs[key]; keep(doc) {
			out = append(out, doc.clone())
		}
	}
	return out
}

func sorted(docs []Document) []Document {
	slices.SortStableFunc(docs, compareByDateDesc)
	return docs
}

func compareByDateDesc(a, b Document) int {
	if cmp := b.Metadata.PublishedAt.Compare(a.Metadata.PublishedAt); cmp != 0 {
		return cmp
	}
	return strings.Compare(a.SourcePath(), b.SourcePath())
}
