package generator

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/goliatone/go-folio/internal/content"
)

const (
	// FeedContentType is served with the syndication feed.
	FeedContentType = "application/xml"
	// FeedCacheControl lets shared caches keep the feed for an hour.
	FeedCacheControl = "public, s-maxage=3600, stale-while-revalidate=1800"
	// FeedPath is the route the feed is published under.
	FeedPath = "/rss.xml"

	atomNamespace = "http://www.w3.org/2005/Atom"
)

// FeedOptions tunes BuildFeed.
type FeedOptions struct {
	// Limit caps the number of items. Zero keeps every published document.
	Limit int
}

type rssDocument struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Atom    string     `xml:"xmlns:atom,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language,omitempty"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Self          atomLink  `xml:"atom:link"`
	Items         []rssItem `xml:"item"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	PubDate     string   `xml:"pubDate"`
	GUID        rssGUID  `xml:"guid"`
	Author      string   `xml:"author,omitempty"`
	Categories  []string `xml:"category"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// BuildFeed renders the published documents of coll as an RSS 2.0 feed,
// newest first. Output depends only on its arguments.
func BuildFeed(coll *content.Collection, site Site, generatedAt time.Time, opts FeedOptions) ([]byte, error) {
	docs := coll.SortedByDateDescending()
	if opts.Limit > 0 && len(docs) > opts.Limit {
		docs = docs[:opts.Limit]
	}

	channel := rssChannel{
		Title:         site.Name,
		Link:          site.Base(),
		Description:   normalizeWhitespace(site.Description),
		Language:      site.Language,
		LastBuildDate: rfc1123(generatedAt),
		Self: atomLink{
			Href: site.Absolute(FeedPath),
			Rel:  "self",
			Type: "application/rss+xml",
		},
		Items: make([]rssItem, 0, len(docs)),
	}
	for _, doc := range docs {
		permalink := site.Absolute(doc.URL())
		channel.Items = append(channel.Items, rssItem{
			Title:       doc.Title,
			Link:        permalink,
			Description: normalizeWhitespace(doc.Description),
			PubDate:     rfc1123(doc.Metadata.PublishedAt),
			GUID:        rssGUID{IsPermaLink: true, Value: permalink},
			Author:      doc.Author,
			Categories:  doc.Tags,
		})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(rssDocument{Version: "2.0", Atom: atomNamespace, Channel: channel}); err != nil {
		return nil, fmt.Errorf("generator: encode feed: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("generator: encode feed: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func rfc1123(t time.Time) string {
	return t.UTC().Format(time.RFC1123Z)
}
