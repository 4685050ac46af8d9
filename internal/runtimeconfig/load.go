package runtimeconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides: site.base_url is read from
// FOLIO_SITE_BASE_URL.
const EnvPrefix = "FOLIO"

// LoadOptions controls where configuration is read from.
type LoadOptions struct {
	// ConfigFile is an optional YAML, TOML or JSON file.
	ConfigFile string
	// EnvFiles are dotenv files loaded before the environment is read.
	// Missing files are ignored; variables already set are kept.
	EnvFiles []string
}

// Load reads .env, the optional config file and FOLIO_* variables on top
// of DefaultConfig, then validates the result.
func Load(configFile string) (Config, error) {
	return LoadWithOptions(LoadOptions{ConfigFile: configFile, EnvFiles: []string{".env"}})
}

// LoadWithOptions is Load with explicit sources.
func LoadWithOptions(opts LoadOptions) (Config, error) {
	for _, file := range opts.EnvFiles {
		if strings.TrimSpace(file) == "" {
			continue
		}
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("folio config: load env file %s: %w", file, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, DefaultConfig())

	if path := strings.TrimSpace(opts.ConfigFile); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("folio config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("folio config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it during
// Unmarshal.
func setDefaults(v *viper.Viper, d Config) {
	defaults := map[string]any{
		"site.name":           d.Site.Name,
		"site.description":    d.Site.Description,
		"site.base_url":       d.Site.BaseURL,
		"site.language":       d.Site.Language,
		"site.logo_url":       d.Site.LogoURL,
		"site.default_author": d.Site.DefaultAuthor,

		"content.root":         d.Content.Root,
		"content.patterns":     d.Content.Patterns,
		"content.workers":      d.Content.Workers,
		"content.strict_slugs": d.Content.StrictSlugs,

		"markdown.theme":      d.Markdown.Theme,
		"markdown.components": d.Markdown.Components,

		"listing.per_page":      d.Listing.PerPage,
		"listing.max_per_page":  d.Listing.MaxPerPage,
		"sitemap.static_routes": d.Sitemap.StaticRoutes,
		"feed.limit":            d.Feed.Limit,

		"media.cloudinary_url": d.Media.CloudinaryURL,
		"media.cloud_name":     d.Media.CloudName,
		"media.api_key":        d.Media.APIKey,
		"media.api_secret":     d.Media.APISecret,
		"media.default_folder": d.Media.DefaultFolder,
		"media.timeout":        d.Media.Timeout,
		"media.width":          d.Media.Width,
		"media.height":         d.Media.Height,
		"media.rate_limit":     d.Media.RateLimit,
		"media.rate_burst":     d.Media.RateBurst,

		"artifacts.driver":           d.Artifacts.Driver,
		"artifacts.output_dir":       d.Artifacts.OutputDir,
		"artifacts.minio.endpoint":   d.Artifacts.MinIO.Endpoint,
		"artifacts.minio.access_key": d.Artifacts.MinIO.AccessKey,
		"artifacts.minio.secret_key": d.Artifacts.MinIO.SecretKey,
		"artifacts.minio.bucket":     d.Artifacts.MinIO.Bucket,
		"artifacts.minio.prefix":     d.Artifacts.MinIO.Prefix,
		"artifacts.minio.use_ssl":    d.Artifacts.MinIO.UseSSL,

		"http.addr":             d.HTTP.Addr,
		"http.jwt_secret":       d.HTTP.JWTSecret,
		"http.jwt_issuer":       d.HTTP.JWTIssuer,
		"http.read_timeout":     d.HTTP.ReadTimeout,
		"http.write_timeout":    d.HTTP.WriteTimeout,
		"http.shutdown_timeout": d.HTTP.ShutdownTimeout,

		"logging.level":      d.Logging.Level,
		"logging.format":     d.Logging.Format,
		"logging.add_source": d.Logging.AddSource,
		"logging.focus":      d.Logging.Focus,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}
