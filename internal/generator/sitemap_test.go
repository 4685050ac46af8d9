package generator

import (
	"encoding/xml"
	"strings"
	"testing"
)

func TestBuildSitemapListsStaticRoutesThenDocuments(t *testing.T) {
	coll := sampleCollection(t)
	entries := BuildSitemap(coll, testSite, generatedAt, SitemapOptions{})

	if len(entries) != 6 {
		t.Fatalf("expected 3 static + 3 published entries, got %d", len(entries))
	}
	home := entries[0]
	if home.URL != "https://example.com" || home.Priority != 1.0 || home.ChangeFrequency != ChangeDaily || !home.LastModified.Equal(generatedAt) {
		t.Fatalf("unexpected home entry %+v", home)
	}
	if entries[2].URL != "https://example.com/sobre" || entries[2].Priority != 0.9 {
		t.Fatalf("unexpected static entry %+v", entries[2])
	}
	doc := entries[3]
	if doc.URL != "https://example.com/blog/first" || doc.Priority != 0.8 || doc.ChangeFrequency != ChangeMonthly {
		t.Fatalf("unexpected document entry %+v", doc)
	}
	if doc.LastModified.Format("2006-01-02") != "2024-01-01" {
		t.Fatalf("expected publish date as last modified, got %v", doc.LastModified)
	}
	for _, entry := range entries {
		if strings.Contains(entry.URL, "draft") {
			t.Fatalf("unpublished document in sitemap: %s", entry.URL)
		}
	}
}

func TestBuildSitemapCustomRoutes(t *testing.T) {
	coll := buildCollection(t)
	entries := BuildSitemap(coll, testSite, generatedAt, SitemapOptions{StaticRoutes: []string{"/about"}})
	if len(entries) != 1 || entries[0].URL != "https://example.com/about" || entries[0].Priority != 0.9 {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

func TestEncodeSitemap(t *testing.T) {
	coll := sampleCollection(t)
	data, err := EncodeSitemap(BuildSitemap(coll, testSite, generatedAt, SitemapOptions{}))
	if err != nil {
		t.Fatalf("EncodeSitemap: %v", err)
	}

	var decoded struct {
		URLs []struct {
			Loc        string `xml:"loc"`
			LastMod    string `xml:"lastmod"`
			ChangeFreq string `xml:"changefreq"`
			Priority   string `xml:"priority"`
		} `xml:"url"`
	}
	if err := xml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(decoded.URLs) != 6 {
		t.Fatalf("expected 6 urls, got %d", len(decoded.URLs))
	}
	if decoded.URLs[0].Priority != "1.0" || decoded.URLs[3].Priority != "0.8" {
		t.Fatalf("unexpected priorities %+v", decoded.URLs)
	}
	if decoded.URLs[3].LastMod != "2024-01-01T00:00:00Z" {
		t.Fatalf("unexpected lastmod %q", decoded.URLs[3].LastMod)
	}
	if !strings.Contains(string(data), `xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"`) {
		t.Fatalf("missing namespace:\n%s", data)
	}
}

func TestBuildRobots(t *testing.T) {
	got := BuildRobots(testSite, true)
	want := "User-agent: *\nAllow: /\n\nSitemap: https://example.com/sitemap.xml\n"
	if got != want {
		t.Fatalf("unexpected robots:\n%s", got)
	}
	if strings.Contains(BuildRobots(testSite, false), "Sitemap") {
		t.Fatal("expected no sitemap line")
	}
}
