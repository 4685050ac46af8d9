// Package http exposes the collection, its derived artifacts and the media
// gateway over gin.
//
// Routes:
//   - GET /rss.xml, /sitemap.xml, /robots.txt
//   - GET /api/posts (page, per_page, tag, category, featured)
//   - GET /api/posts/:slug
//   - GET /api/tags
//   - POST /api/upload (bearer auth, rate limited)
//   - GET /metrics, /healthz
//
// Host applications can mount the same handlers on their own router with
// RegisterRoutes.
package http
