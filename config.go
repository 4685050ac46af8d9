package folio

import (
	"errors"

	"github.com/goliatone/go-folio/internal/runtimeconfig"
)

var (
	ErrInvalidConfig              = runtimeconfig.ErrInvalidConfig
	ErrArtifactsMinIORequired     = runtimeconfig.ErrArtifactsMinIORequired
	ErrArtifactsOutputDirRequired = runtimeconfig.ErrArtifactsOutputDirRequired
	ErrLoggingLevelInvalid        = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid       = runtimeconfig.ErrLoggingFormatInvalid

	ErrMediaDisabled = errors.New("folio: media service is not configured")
)

type (
	Config          = runtimeconfig.Config
	SiteConfig      = runtimeconfig.SiteConfig
	ContentConfig   = runtimeconfig.ContentConfig
	MarkdownConfig  = runtimeconfig.MarkdownConfig
	ListingConfig   = runtimeconfig.ListingConfig
	SitemapConfig   = runtimeconfig.SitemapConfig
	FeedConfig      = runtimeconfig.FeedConfig
	MediaConfig     = runtimeconfig.MediaConfig
	ArtifactsConfig = runtimeconfig.ArtifactsConfig
	MinIOConfig     = runtimeconfig.MinIOConfig
	HTTPConfig      = runtimeconfig.HTTPConfig
	LoggingConfig   = runtimeconfig.LoggingConfig
	LoadOptions     = runtimeconfig.LoadOptions
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads .env, the optional file at path and FOLIO_* variables.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}
