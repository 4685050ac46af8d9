package generator

import (
	"fmt"
	"strings"
)

const RobotsContentType = "text/plain; charset=utf-8"

// BuildRobots allows every crawler and optionally points at the site map.
func BuildRobots(site Site, includeSitemap bool) string {
	var builder strings.Builder
	builder.WriteString("User-agent: *\n")
	builder.WriteString("Allow: /\n")
	if includeSitemap {
		builder.WriteString("\n")
		builder.WriteString(fmt.Sprintf("Sitemap: %s\n", site.Absolute(SitemapPath)))
	}
	return builder.String()
}
