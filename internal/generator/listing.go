package generator

import (
	"github.com/goliatone/go-folio/internal/content"
)

// DefaultPerPage is used when a listing is requested without a page size.
const DefaultPerPage = 10

// ListingPage is one page of published documents, newest first.
type ListingPage struct {
	Items      []content.Document `json:"items"`
	Page       int                `json:"page"`
	PerPage    int                `json:"perPage"`
	TotalItems int                `json:"totalItems"`
	TotalPages int                `json:"totalPages"`
	HasPrev    bool               `json:"hasPrev"`
	HasNext    bool               `json:"hasNext"`
}

// ListingFilter narrows a listing to a tag and/or a category.
type ListingFilter struct {
	Tag      string
	Category string
	Featured bool
}

// Paginate slices the published documents of coll. A page below 1 is
// treated as 1; a page past the last one yields no items.
func Paginate(coll *content.Collection, page, perPage int) ListingPage {
	return paginate(coll.SortedByDateDescending(), page, perPage)
}

// PaginateByTag is Paginate restricted to documents carrying tag.
func PaginateByTag(coll *content.Collection, tag string, page, perPage int) ListingPage {
	return paginate(coll.ByTag(tag), page, perPage)
}

// PaginateByCategory is Paginate restricted to documents in category.
func PaginateByCategory(coll *content.Collection, category string, page, perPage int) ListingPage {
	return paginate(coll.ByCategory(category), page, perPage)
}

// PaginateFiltered applies every non-empty filter field before slicing.
func PaginateFiltered(coll *content.Collection, filter ListingFilter, page, perPage int) ListingPage {
	var docs []content.Document
	switch {
	case filter.Featured:
		docs = coll.Featured()
	case filter.Tag != "":
		docs = coll.ByTag(filter.Tag)
	case filter.Category != "":
		docs = coll.ByCategory(filter.Category)
	default:
		docs = coll.SortedByDateDescending()
	}

	kept := docs[:0]
	for _, doc := range docs {
		if filter.Tag != "" && !doc.HasTag(filter.Tag) {
			continue
		}
		if filter.Category != "" && !doc.InCategory(filter.Category) {
			continue
		}
		kept = append(kept, doc)
	}
	return paginate(kept, page, perPage)
}

func paginate(docs []content.Document, page, perPage int) ListingPage {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if page < 1 {
		page = 1
	}

	total := len(docs)
	totalPages := total / perPage
	if total%perPage != 0 {
		totalPages++
	}

	listing := ListingPage{
		Items:      []content.Document{},
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}

	if page > totalPages {
		return listing
	}
	start := (page - 1) * perPage
	end := min(start+perPage, total)
	listing.Items = append(listing.Items, docs[start:end]...)
	return listing
}
