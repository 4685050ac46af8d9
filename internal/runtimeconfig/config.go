package runtimeconfig

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrInvalidConfig wraps every field-level validation failure.
var ErrInvalidConfig = errors.New("folio config: invalid configuration")

// ErrArtifactsMinIORequired reports a minio artifact driver without an endpoint or bucket.
var ErrArtifactsMinIORequired = errors.New("folio config: minio endpoint and bucket are required for the minio artifact driver")

// ErrArtifactsOutputDirRequired reports a file artifact driver without an output directory.
var ErrArtifactsOutputDirRequired = errors.New("folio config: artifacts output directory is required for the file artifact driver")
var ErrLoggingLevelInvalid = errors.New("folio config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("folio config: logging format is invalid")

var baseURLPattern = regexp.MustCompile(`^https?://[^\s/]+`)

// Artifact drivers.
const (
	ArtifactsDriverFile   = "file"
	ArtifactsDriverMinIO  = "minio"
	ArtifactsDriverMemory = "memory"
)

// Config aggregates every runtime setting of a folio instance.
type Config struct {
	Site      SiteConfig      `mapstructure:"site"`
	Content   ContentConfig   `mapstructure:"content"`
	Markdown  MarkdownConfig  `mapstructure:"markdown"`
	Listing   ListingConfig   `mapstructure:"listing"`
	Sitemap   SitemapConfig   `mapstructure:"sitemap"`
	Feed      FeedConfig      `mapstructure:"feed"`
	Media     MediaConfig     `mapstructure:"media"`
	Artifacts ArtifactsConfig `mapstructure:"artifacts"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// SiteConfig describes the publication.
type SiteConfig struct {
	Name          string `mapstructure:"name"`
	Description   string `mapstructure:"description"`
	BaseURL       string `mapstructure:"base_url"`
	Language      string `mapstructure:"language"`
	LogoURL       string `mapstructure:"logo_url"`
	DefaultAuthor string `mapstructure:"default_author"`
}

// ContentConfig locates the source tree.
type ContentConfig struct {
	Root     string   `mapstructure:"root"`
	Patterns []string `mapstructure:"patterns"`
	// Workers bounds parse/render concurrency; zero means one per CPU.
	Workers     int  `mapstructure:"workers"`
	StrictSlugs bool `mapstructure:"strict_slugs"`
}

// MarkdownConfig tunes the render stages.
type MarkdownConfig struct {
	Theme string `mapstructure:"theme"`
	// Components allow-lists embedded component names. Empty allows any.
	Components []string `mapstructure:"components"`
}

type ListingConfig struct {
	PerPage    int `mapstructure:"per_page"`
	MaxPerPage int `mapstructure:"max_per_page"`
}

type SitemapConfig struct {
	StaticRoutes []string `mapstructure:"static_routes"`
}

type FeedConfig struct {
	Limit int `mapstructure:"limit"`
}

// MediaConfig holds the transformation service account and upload policy.
type MediaConfig struct {
	CloudinaryURL string        `mapstructure:"cloudinary_url"`
	CloudName     string        `mapstructure:"cloud_name"`
	APIKey        string        `mapstructure:"api_key"`
	APISecret     string        `mapstructure:"api_secret"`
	DefaultFolder string        `mapstructure:"default_folder"`
	Timeout       time.Duration `mapstructure:"timeout"`
	Width         int           `mapstructure:"width"`
	Height        int           `mapstructure:"height"`
	// RateLimit is the sustained uploads per second per client; zero disables limiting.
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
}

// Enabled reports whether credentials are present.
func (m MediaConfig) Enabled() bool {
	return strings.TrimSpace(m.CloudinaryURL) != "" ||
		(m.CloudName != "" && m.APIKey != "" && m.APISecret != "")
}

// ArtifactsConfig selects where published artifacts go.
type ArtifactsConfig struct {
	Driver    string      `mapstructure:"driver"`
	OutputDir string      `mapstructure:"output_dir"`
	MinIO     MinIOConfig `mapstructure:"minio"`
}

type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// HTTPConfig configures the serve command.
type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	JWTSecret       string        `mapstructure:"jwt_secret"`
	JWTIssuer       string        `mapstructure:"jwt_issuer"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig captures go-logger options.
type LoggingConfig struct {
	Level     string   `mapstructure:"level"`
	Format    string   `mapstructure:"format"`
	AddSource bool     `mapstructure:"add_source"`
	Focus     []string `mapstructure:"focus"`
}

// DefaultConfig returns a configuration that builds blog/**/*.mdx under
// ./content into ./dist.
func DefaultConfig() Config {
	return Config{
		Site: SiteConfig{
			Name:          "Blog",
			Description:   "Latest posts",
			BaseURL:       "http://localhost:3000",
			Language:      "pt-BR",
			DefaultAuthor: "Admin",
		},
		Content: ContentConfig{
			Root:     "content",
			Patterns: []string{"blog/**/*.mdx", "blog/**/*.md"},
		},
		Markdown: MarkdownConfig{
			Theme: "github-dark",
		},
		Listing: ListingConfig{
			PerPage:    10,
			MaxPerPage: 50,
		},
		Sitemap: SitemapConfig{
			StaticRoutes: []string{"", "/blog", "/sobre"},
		},
		Media: MediaConfig{
			DefaultFolder: "blog",
			Timeout:       30 * time.Second,
			Width:         1200,
			Height:        630,
			RateLimit:     1,
			RateBurst:     5,
		},
		Artifacts: ArtifactsConfig{
			Driver:    ArtifactsDriverFile,
			OutputDir: "dist",
		},
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks field ranges with ozzo-validation and then the
// cross-field rules.
func (cfg Config) Validate() error {
	err := validation.ValidateStruct(&cfg,
		validation.Field(&cfg.Site),
		validation.Field(&cfg.Content),
		validation.Field(&cfg.Listing),
		validation.Field(&cfg.Feed),
		validation.Field(&cfg.Media),
		validation.Field(&cfg.Artifacts),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Artifacts.Driver)) {
	case ArtifactsDriverFile:
		if strings.TrimSpace(cfg.Artifacts.OutputDir) == "" {
			return ErrArtifactsOutputDirRequired
		}
	case ArtifactsDriverMinIO:
		if cfg.Artifacts.MinIO.Endpoint == "" || cfg.Artifacts.MinIO.Bucket == "" {
			return ErrArtifactsMinIORequired
		}
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
		return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
	}
	return nil
}

func (s SiteConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Name, validation.Required),
		validation.Field(&s.BaseURL, validation.Required, validation.Match(baseURLPattern).Error("must be an absolute http(s) URL")),
		validation.Field(&s.DefaultAuthor, validation.Required),
	)
}

func (c ContentConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Root, validation.Required),
		validation.Field(&c.Patterns, validation.Required),
		validation.Field(&c.Workers, validation.Min(0)),
	)
}

func (l ListingConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.PerPage, validation.Required, validation.Min(1)),
		validation.Field(&l.MaxPerPage, validation.Min(l.PerPage)),
	)
}

func (f FeedConfig) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Limit, validation.Min(0)),
	)
}

func (m MediaConfig) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Timeout, validation.Min(time.Duration(0))),
		validation.Field(&m.Width, validation.Min(0)),
		validation.Field(&m.Height, validation.Min(0)),
		validation.Field(&m.RateLimit, validation.Min(float64(0))),
		validation.Field(&m.RateBurst, validation.Min(0)),
	)
}

func (a ArtifactsConfig) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Driver, validation.In(ArtifactsDriverFile, ArtifactsDriverMinIO, ArtifactsDriverMemory)),
	)
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "text", "pretty":
		return true
	default:
		return false
	}
}
