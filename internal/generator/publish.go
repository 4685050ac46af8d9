package generator

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/goliatone/go-folio/internal/content"
	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

// Artifact paths written by Publish.
const (
	ArtifactFeed    = "rss.xml"
	ArtifactSitemap = "sitemap.xml"
	ArtifactRobots  = "robots.txt"
	ArtifactListing = "feed.json"

	listingContentType = "application/json"
	sitemapCache       = "public, max-age=3600"
)

// PublishOptions tunes Publish. The zero value publishes everything with
// default feed and site map settings.
type PublishOptions struct {
	Feed    FeedOptions
	Sitemap SitemapOptions
	PerPage int
	Logger  interfaces.Logger
}

// PublishedArtifact records one written artifact.
type PublishedArtifact struct {
	Path        string `json:"path"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
	Checksum    string `json:"checksum"`
}

// PublishResult lists the artifacts of one Publish call in write order.
type PublishResult struct {
	GeneratedAt time.Time           `json:"generatedAt"`
	Artifacts   []PublishedArtifact `json:"artifacts"`
}

type listingSnapshot struct {
	Website Website     `json:"website"`
	Listing ListingPage `json:"listing"`
}

type pendingArtifact struct {
	path         string
	contentType  string
	cacheControl string
	data         []byte
}

// Publish derives the feed, site map, robots file and listing snapshot
// from coll and writes them to store. Generation finishes before the
// first write so a generator error leaves the store untouched.
func Publish(ctx context.Context, store interfaces.ArtifactStore, coll *content.Collection, site Site, generatedAt time.Time, opts PublishOptions) (*PublishResult, error) {
	if store == nil {
		return nil, fmt.Errorf("generator: artifact store is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOp()
	}

	feed, err := BuildFeed(coll, site, generatedAt, opts.Feed)
	if err != nil {
		return nil, err
	}
	sitemap, err := EncodeSitemap(BuildSitemap(coll, site, generatedAt, opts.Sitemap))
	if err != nil {
		return nil, err
	}
	listing, err := json.Marshal(listingSnapshot{
		Website: WebsiteSchema(site),
		Listing: Paginate(coll, 1, opts.PerPage),
	})
	if err != nil {
		return nil, fmt.Errorf("generator: encode listing: %w", err)
	}

	pending := []pendingArtifact{
		{path: ArtifactFeed, contentType: FeedContentType, cacheControl: FeedCacheControl, data: feed},
		{path: ArtifactSitemap, contentType: SitemapContentType, cacheControl: sitemapCache, data: sitemap},
		{path: ArtifactRobots, contentType: RobotsContentType, cacheControl: sitemapCache, data: []byte(BuildRobots(site, true))},
		{path: ArtifactListing, contentType: listingContentType, cacheControl: FeedCacheControl, data: listing},
	}

	result := &PublishResult{GeneratedAt: generatedAt.UTC()}
	for _, item := range pending {
		checksum := computeHash(item.data)
		err := store.Put(ctx, interfaces.Artifact{
			Path:         item.path,
			Content:      bytes.NewReader(item.data),
			Size:         int64(len(item.data)),
			ContentType:  item.contentType,
			CacheControl: item.cacheControl,
			Checksum:     checksum,
			Metadata: map[string]string{
				"generated_at": generatedAt.UTC().Format(time.RFC3339),
			},
		})
		if err != nil {
			logger.Error("generator.publish.failed", "path", item.path, "error", err)
			return result, err
		}
		result.Artifacts = append(result.Artifacts, PublishedArtifact{
			Path:        item.path,
			ContentType: item.contentType,
			Size:        len(item.data),
			Checksum:    checksum,
		})
		logger.Debug("generator.publish.artifact", "path", item.path, "size", len(item.data))
	}
	logger.Info("generator.publish.completed", "artifacts", len(result.Artifacts))
	return result, nil
}

func computeHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
