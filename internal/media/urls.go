package media

import (
	"fmt"
	"strconv"
	"strings"
)

const deliveryHost = "https://res.cloudinary.com"

// URLOptions parameterise a delivery URL. Zero values take the defaults
// crop=fill, quality=auto and format=auto; dimensions are left out.
type URLOptions struct {
	Width   int
	Height  int
	Crop    string
	Quality string
	Format  string
}

// BuildURL derives a delivery URL for publicID without contacting the
// service.
func BuildURL(cloudName, publicID string, opts URLOptions) string {
	tokens := []string{"c_" + fallback(opts.Crop, "fill")}
	if opts.Width > 0 {
		tokens = append(tokens, "w_"+strconv.Itoa(opts.Width))
	}
	if opts.Height > 0 {
		tokens = append(tokens, "h_"+strconv.Itoa(opts.Height))
	}
	tokens = append(tokens,
		"q_"+fallback(opts.Quality, "auto"),
		"f_"+fallback(opts.Format, "auto"),
	)
	return fmt.Sprintf("%s/%s/image/upload/%s/%s",
		deliveryHost,
		strings.TrimSpace(cloudName),
		strings.Join(tokens, ","),
		strings.TrimPrefix(strings.TrimSpace(publicID), "/"),
	)
}

// Recipe is the eager transformation string applied on ingestion, e.g.
// c_fill,h_630,w_1200/q_auto/f_auto.
func Recipe(width, height int, crop, quality, format string) string {
	box := []string{"c_" + fallback(crop, "fill")}
	if height > 0 {
		box = append(box, "h_"+strconv.Itoa(height))
	}
	if width > 0 {
		box = append(box, "w_"+strconv.Itoa(width))
	}
	return strings.Join([]string{
		strings.Join(box, ","),
		"q_" + fallback(quality, "auto"),
		"f_" + fallback(format, "auto"),
	}, "/")
}

func fallback(value, def string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return def
}
