package generator

import (
	"strings"
	"time"

	"github.com/goliatone/go-folio/internal/content"
)

const schemaContext = "https://schema.org"

// Breadcrumb is one step of a breadcrumb trail.
type Breadcrumb struct {
	Name string
	URL  string
}

type Thing struct {
	Type string `json:"@type"`
	Name string `json:"name,omitempty"`
	ID   string `json:"@id,omitempty"`
	URL  string `json:"url,omitempty"`
}

type Organization struct {
	Type string `json:"@type"`
	Name string `json:"name"`
	Logo Thing  `json:"logo"`
}

// Article is a schema.org BlogPosting.
type Article struct {
	Context          string       `json:"@context"`
	Type             string       `json:"@type"`
	Headline         string       `json:"headline"`
	Description      string       `json:"description"`
	Image            string       `json:"image,omitempty"`
	DatePublished    string       `json:"datePublished"`
	Author           Thing        `json:"author"`
	Publisher        Organization `json:"publisher"`
	MainEntityOfPage Thing        `json:"mainEntityOfPage"`
	Keywords         string       `json:"keywords,omitempty"`
}

type ListItem struct {
	Type     string `json:"@type"`
	Position int    `json:"position"`
	Name     string `json:"name"`
	Item     string `json:"item"`
}

// BreadcrumbList is a schema.org BreadcrumbList.
type BreadcrumbList struct {
	Context         string     `json:"@context"`
	Type            string     `json:"@type"`
	ItemListElement []ListItem `json:"itemListElement"`
}

type EntryPoint struct {
	Type        string `json:"@type"`
	URLTemplate string `json:"urlTemplate"`
}

type SearchAction struct {
	Type       string     `json:"@type"`
	Target     EntryPoint `json:"target"`
	QueryInput string     `json:"query-input"`
}

// Website is a schema.org WebSite with a site search action.
type Website struct {
	Context         string       `json:"@context"`
	Type            string       `json:"@type"`
	Name            string       `json:"name"`
	Description     string       `json:"description"`
	URL             string       `json:"url"`
	PotentialAction SearchAction `json:"potentialAction"`
}

// ArticleSchema describes doc as a BlogPosting.
func ArticleSchema(doc content.Document, site Site) Article {
	return Article{
		Context:       schemaContext,
		Type:          "BlogPosting",
		Headline:      doc.Title,
		Description:   doc.Description,
		Image:         doc.CoverImage,
		DatePublished: doc.Metadata.PublishedAt.UTC().Format(time.RFC3339),
		Author:        Thing{Type: "Person", Name: doc.Author},
		Publisher: Organization{
			Type: "Organization",
			Name: site.Name,
			Logo: Thing{Type: "ImageObject", URL: site.Logo()},
		},
		MainEntityOfPage: Thing{Type: "WebPage", ID: site.Absolute(doc.URL())},
		Keywords:         strings.Join(doc.Tags, ", "),
	}
}

// BreadcrumbSchema numbers items from 1 in the order given.
func BreadcrumbSchema(items []Breadcrumb) BreadcrumbList {
	list := BreadcrumbList{
		Context:         schemaContext,
		Type:            "BreadcrumbList",
		ItemListElement: make([]ListItem, 0, len(items)),
	}
	for i, item := range items {
		list.ItemListElement = append(list.ItemListElement, ListItem{
			Type:     "ListItem",
			Position: i + 1,
			Name:     item.Name,
			Item:     item.URL,
		})
	}
	return list
}

// DocumentBreadcrumbs is the home / blog / document trail for doc.
func DocumentBreadcrumbs(doc content.Document, site Site) []Breadcrumb {
	return []Breadcrumb{
		{Name: site.Name, URL: site.Base()},
		{Name: "Blog", URL: site.Absolute("/blog")},
		{Name: doc.Title, URL: site.Absolute(doc.URL())},
	}
}

// WebsiteSchema describes the site and its search entry point.
func WebsiteSchema(site Site) Website {
	return Website{
		Context:     schemaContext,
		Type:        "WebSite",
		Name:        site.Name,
		Description: site.Description,
		URL:         site.Base(),
		PotentialAction: SearchAction{
			Type: "SearchAction",
			Target: EntryPoint{
				Type:        "EntryPoint",
				URLTemplate: site.Base() + "/blog?q={search_term_string}",
			},
			QueryInput: "required name=search_term_string",
		},
	}
}
