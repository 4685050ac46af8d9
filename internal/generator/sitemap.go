package generator

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"time"

	"github.com/goliatone/go-folio/internal/content"
)

const (
	SitemapContentType = "application/xml"
	SitemapPath        = "/sitemap.xml"

	sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"
)

// ChangeFrequency values used by the site map.
const (
	ChangeDaily   = "daily"
	ChangeMonthly = "monthly"
)

// DefaultStaticRoutes are listed ahead of documents in the site map.
var DefaultStaticRoutes = []string{"", "/blog", "/sobre"}

// SitemapEntry is one location of the site map.
type SitemapEntry struct {
	URL             string    `json:"url"`
	LastModified    time.Time `json:"lastModified"`
	ChangeFrequency string    `json:"changeFrequency"`
	Priority        float64   `json:"priority"`
}

// SitemapOptions tunes BuildSitemap.
type SitemapOptions struct {
	// StaticRoutes replaces DefaultStaticRoutes when non-nil. The empty
	// route is the home page.
	StaticRoutes []string
}

// BuildSitemap lists the static routes followed by every published
// document in collection order.
func BuildSitemap(coll *content.Collection, site Site, generatedAt time.Time, opts SitemapOptions) []SitemapEntry {
	routes := opts.StaticRoutes
	if routes == nil {
		routes = DefaultStaticRoutes
	}

	entries := make([]SitemapEntry, 0, len(routes)+coll.Len())
	for _, route := range routes {
		priority := 0.9
		if route == "" {
			priority = 1.0
		}
		entries = append(entries, SitemapEntry{
			URL:             site.Base() + route,
			LastModified:    generatedAt.UTC(),
			ChangeFrequency: ChangeDaily,
			Priority:        priority,
		})
	}
	for doc := range coll.Published() {
		entries = append(entries, SitemapEntry{
			URL:             site.Absolute(doc.URL()),
			LastModified:    doc.Metadata.PublishedAt.UTC(),
			ChangeFrequency: ChangeMonthly,
			Priority:        0.8,
		})
	}
	return entries
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// EncodeSitemap serialises entries in the sitemaps.org format.
func EncodeSitemap(entries []SitemapEntry) ([]byte, error) {
	set := urlSet{XMLNS: sitemapNamespace, URLs: make([]sitemapURL, 0, len(entries))}
	for _, entry := range entries {
		u := sitemapURL{
			Loc:        entry.URL,
			ChangeFreq: entry.ChangeFrequency,
			Priority:   strconv.FormatFloat(entry.Priority, 'f', 1, 64),
		}
		if !entry.LastModified.IsZero() {
			u.LastMod = entry.LastModified.UTC().Format(time.RFC3339)
		}
		set.URLs = append(set.URLs, u)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return nil, fmt.Errorf("generator: encode sitemap: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("generator: encode sitemap: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
