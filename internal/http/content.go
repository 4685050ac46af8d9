package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/goliatone/go-folio/internal/content"
	"github.com/goliatone/go-folio/internal/generator"
)

type structuredData struct {
	Article    generator.Article        `json:"article"`
	Breadcrumb generator.BreadcrumbList `json:"breadcrumb"`
}

type postResponse struct {
	Document       content.Document `json:"document"`
	StructuredData structuredData   `json:"structured_data"`
}

func (r *routes) feed(c *gin.Context) {
	coll, builtAt, ok := r.current(c)
	if !ok {
		return
	}
	body, err := generator.BuildFeed(coll, r.cfg.Site, builtAt, r.cfg.Feed)
	if err != nil {
		r.logger.WithContext(c.Request.Context()).Error("http.feed.failed", "error", err)
		writeError(c, err)
		return
	}
	c.Header("Cache-Control", generator.FeedCacheControl)
	c.Data(http.StatusOK, generator.FeedContentType, body)
}

func (r *routes) sitemap(c *gin.Context) {
	coll, builtAt, ok := r.current(c)
	if !ok {
		return
	}
	body, err := generator.EncodeSitemap(generator.BuildSitemap(coll, r.cfg.Site, builtAt, r.cfg.Sitemap))
	if err != nil {
		r.logger.WithContext(c.Request.Context()).Error("http.sitemap.failed", "error", err)
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, generator.SitemapContentType, body)
}

func (r *routes) robots(c *gin.Context) {
	c.Data(http.StatusOK, generator.RobotsContentType, []byte(generator.BuildRobots(r.cfg.Site, true)))
}

func (r *routes) listPosts(c *gin.Context) {
	coll, _, ok := r.current(c)
	if !ok {
		return
	}
	perPage := queryInt(c, "per_page", r.cfg.PerPage)
	if perPage > r.cfg.MaxPerPage {
		perPage = r.cfg.MaxPerPage
	}
	filter := generator.ListingFilter{
		Tag:      strings.TrimSpace(c.Query("tag")),
		Category: strings.TrimSpace(c.Query("category")),
		Featured: queryBool(c, "featured"),
	}
	c.JSON(http.StatusOK, generator.PaginateFiltered(coll, filter, queryInt(c, "page", 1), perPage))
}

func (r *routes) getPost(c *gin.Context) {
	coll, _, ok := r.current(c)
	if !ok {
		return
	}
	doc, err := coll.FindPublishedBySlug(c.Param("slug"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, postResponse{
		Document: doc,
		StructuredData: structuredData{
			Article:    generator.ArticleSchema(doc, r.cfg.Site),
			Breadcrumb: generator.BreadcrumbSchema(generator.DocumentBreadcrumbs(doc, r.cfg.Site)),
		},
	})
}

func (r *routes) listTags(c *gin.Context) {
	coll, _, ok := r.current(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": coll.Tags()})
}
