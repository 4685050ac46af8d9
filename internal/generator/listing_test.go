package generator

import (
	"math"
	"testing"
)

func titles(page ListingPage) []string {
	out := make([]string, 0, len(page.Items))
	for _, doc := range page.Items {
		out = append(out, doc.Title)
	}
	return out
}

func TestPaginateOrdersNewestFirst(t *testing.T) {
	coll := sampleCollection(t)

	page := Paginate(coll, 1, 2)
	if got := titles(page); len(got) != 2 || got[0] != "Second" || got[1] != "Third" {
		t.Fatalf("unexpected first page %v", got)
	}
	if page.TotalItems != 3 || page.TotalPages != 2 || page.HasPrev || !page.HasNext {
		t.Fatalf("unexpected page counters %+v", page)
	}

	second := Paginate(coll, 2, 2)
	if got := titles(second); len(got) != 1 || got[0] != "First" {
		t.Fatalf("unexpected second page %v", got)
	}
	if !second.HasPrev || second.HasNext {
		t.Fatalf("unexpected second page flags %+v", second)
	}
}

func TestPaginateClampsAndOverflows(t *testing.T) {
	coll := sampleCollection(t)

	clamped := Paginate(coll, -3, 0)
	if clamped.Page != 1 || clamped.PerPage != DefaultPerPage || len(clamped.Items) != 3 {
		t.Fatalf("expected clamped first page, got %+v", clamped)
	}

	beyond := Paginate(coll, 9, 2)
	if len(beyond.Items) != 0 || beyond.Items == nil {
		t.Fatalf("expected empty non-nil items, got %#v", beyond.Items)
	}
	if beyond.HasNext || !beyond.HasPrev {
		t.Fatalf("unexpected flags past the end %+v", beyond)
	}
}

func TestPaginateExtremeArguments(t *testing.T) {
	coll := sampleCollection(t)

	far := Paginate(coll, math.MaxInt, 10)
	if len(far.Items) != 0 || far.Page != math.MaxInt || far.HasNext {
		t.Fatalf("expected empty last-page listing, got %+v", far)
	}

	wide := Paginate(coll, 2, math.MaxInt)
	if len(wide.Items) != 0 || wide.TotalPages != 1 {
		t.Fatalf("expected one page holding everything, got %+v", wide)
	}
}

func TestPaginateFilters(t *testing.T) {
	coll := sampleCollection(t)

	if got := titles(PaginateByTag(coll, "go", 1, 10)); len(got) != 2 || got[0] != "Second" {
		t.Fatalf("unexpected tag listing %v", got)
	}
	if got := titles(PaginateByCategory(coll, "eng", 1, 10)); len(got) != 2 || got[0] != "Third" {
		t.Fatalf("unexpected category listing %v", got)
	}
	if got := titles(PaginateFiltered(coll, ListingFilter{Tag: "go", Category: "eng"}, 1, 10)); len(got) != 1 || got[0] != "First" {
		t.Fatalf("unexpected combined listing %v", got)
	}
	if got := titles(PaginateFiltered(coll, ListingFilter{Featured: true}, 1, 10)); len(got) != 1 || got[0] != "Second" {
		t.Fatalf("unexpected featured listing %v", got)
	}
}
