package di

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/goliatone/go-folio/internal/auth"
	"github.com/goliatone/go-folio/internal/commands"
	buildcmd "github.com/goliatone/go-folio/internal/commands/build"
	mediacmd "github.com/goliatone/go-folio/internal/commands/media"
	"github.com/goliatone/go-folio/internal/content"
	"github.com/goliatone/go-folio/internal/generator"
	foliohttp "github.com/goliatone/go-folio/internal/http"
	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/internal/logging/gologger"
	"github.com/goliatone/go-folio/internal/markdown"
	"github.com/goliatone/go-folio/internal/media"
	"github.com/goliatone/go-folio/internal/metrics"
	"github.com/goliatone/go-folio/internal/pipeline"
	"github.com/goliatone/go-folio/internal/runtimeconfig"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

// ErrNoCollection is returned by accessors that need a completed build.
var ErrNoCollection = errors.New("folio: no collection has been built yet")

// Snapshot is the collection currently served together with the report of
// the run that produced it.
type Snapshot struct {
	Collection *content.Collection
	Report     pipeline.Report
	BuiltAt    time.Time
}

// Container wires the runtime from a Config. Collaborators that reach
// outside the process (filesystem, media service, artifact store,
// authenticator) can be overridden with options.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	filesystem     fs.FS
	uploader       interfaces.AssetUploader
	authenticator  interfaces.Authenticator
	registry       *prometheus.Registry
	clock          func() time.Time

	storeMu sync.Mutex
	store   interfaces.ArtifactStore

	metrics       *metrics.Collectors
	loader        *markdown.Loader
	transformer   *markdown.Transformer
	runner        *pipeline.Runner
	gateway       *media.Gateway
	buildHandler  *buildcmd.BuildCollectionHandler
	ingestHandler *mediacmd.IngestAssetHandler

	snapshot atomic.Pointer[Snapshot]
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the go-logger provider built from Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithFS reads sources from filesystem instead of the working directory.
// Config.Content.Root is resolved inside it.
func WithFS(filesystem fs.FS) Option {
	return func(c *Container) {
		c.filesystem = filesystem
	}
}

// WithAssetUploader overrides the Cloudinary uploader.
func WithAssetUploader(uploader interfaces.AssetUploader) Option {
	return func(c *Container) {
		c.uploader = uploader
	}
}

// WithArtifactStore overrides the store selected by Config.Artifacts.
func WithArtifactStore(store interfaces.ArtifactStore) Option {
	return func(c *Container) {
		c.store = store
	}
}

// WithAuthenticator overrides the JWT authenticator.
func WithAuthenticator(authenticator interfaces.Authenticator) Option {
	return func(c *Container) {
		c.authenticator = authenticator
	}
}

// WithRegistry registers collectors on registry instead of a fresh one.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(c *Container) {
		c.registry = registry
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Container) {
		if now != nil {
			c.clock = now
		}
	}
}

// NewContainer validates cfg and builds every service.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Container{Config: cfg, clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLogger(); err != nil {
		return nil, err
	}
	c.configureMetrics()
	if err := c.configurePipeline(); err != nil {
		return nil, err
	}
	if err := c.configureMedia(); err != nil {
		return nil, err
	}
	if err := c.configureAuth(); err != nil {
		return nil, err
	}
	c.configureCommands()
	return c, nil
}

func (c *Container) configureLogger() error {
	if c.loggerProvider != nil {
		return nil
	}
	provider, err := gologger.NewProvider(gologger.Config{
		Level:     c.Config.Logging.Level,
		Format:    c.Config.Logging.Format,
		AddSource: c.Config.Logging.AddSource,
		Focus:     c.Config.Logging.Focus,
	})
	if err != nil {
		return err
	}
	c.loggerProvider = provider
	return nil
}

func (c *Container) configureMetrics() {
	c.metrics = metrics.New()
	if c.registry == nil {
		c.registry = prometheus.NewRegistry()
		c.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	c.metrics.Register(c.registry)
}

func (c *Container) configurePipeline() error {
	if c.filesystem == nil {
		c.filesystem = os.DirFS(".")
	}
	loader, err := markdown.NewLoader(c.filesystem, markdown.LoaderConfig{
		Root:     c.Config.Content.Root,
		Patterns: c.Config.Content.Patterns,
	})
	if err != nil {
		return err
	}
	stages, err := markdown.DefaultPipeline(markdown.StageOptions{
		Theme:      c.Config.Markdown.Theme,
		Components: c.Config.Markdown.Components,
	})
	if err != nil {
		return err
	}
	transformer, err := markdown.NewTransformer(stages, logging.MarkdownLogger(c.loggerProvider))
	if err != nil {
		return err
	}
	runner, err := pipeline.NewRunner(loader, transformer, pipeline.Config{
		Workers:     c.Config.Content.Workers,
		StrictSlugs: c.Config.Content.StrictSlugs,
		Defaults:    markdown.MetadataDefaults{Author: c.Config.Site.DefaultAuthor},
	},
		pipeline.WithLogger(logging.PipelineLogger(c.loggerProvider)),
		pipeline.WithObserver(c.metrics),
		pipeline.WithClock(c.clock),
	)
	if err != nil {
		return err
	}
	c.loader, c.transformer, c.runner = loader, transformer, runner
	return nil
}

// configureMedia leaves the gateway nil when no uploader is injected and
// no credentials are configured; uploads then answer 503.
func (c *Container) configureMedia() error {
	cloudName := c.Config.Media.CloudName
	if c.uploader == nil && c.Config.Media.Enabled() {
		uploader, err := media.NewCloudinaryUploader(media.CloudinaryConfig{
			URL:       c.Config.Media.CloudinaryURL,
			CloudName: c.Config.Media.CloudName,
			APIKey:    c.Config.Media.APIKey,
			APISecret: c.Config.Media.APISecret,
		})
		if err != nil {
			return err
		}
		if cloudName == "" {
			cloudName = uploader.CloudName()
		}
		c.uploader = uploader
	}
	if c.uploader == nil {
		return nil
	}
	gateway, err := media.NewGateway(c.uploader, media.Config{
		CloudName:     cloudName,
		DefaultFolder: c.Config.Media.DefaultFolder,
		Timeout:       c.Config.Media.Timeout,
		Width:         c.Config.Media.Width,
		Height:        c.Config.Media.Height,
	},
		media.WithLogger(logging.MediaLogger(c.loggerProvider)),
		media.WithObserver(c.metrics),
	)
	if err != nil {
		return err
	}
	c.gateway = gateway
	return nil
}

func (c *Container) configureAuth() error {
	if c.authenticator != nil || strings.TrimSpace(c.Config.HTTP.JWTSecret) == "" {
		return nil
	}
	authenticator, err := auth.NewJWTAuthenticator(c.Config.HTTP.JWTSecret,
		auth.WithIssuer(c.Config.HTTP.JWTIssuer),
		auth.WithClock(c.clock),
	)
	if err != nil {
		return err
	}
	c.authenticator = authenticator
	return nil
}

func (c *Container) configureCommands() {
	c.buildHandler = buildcmd.NewBuildCollectionHandler(buildcmd.Dependencies{
		Runner:  c.runner,
		Publish: c.publish,
		OnBuilt: c.swap,
		Clock:   c.clock,
	}, commands.CommandLogger(c.loggerProvider, "build"))

	if c.gateway != nil {
		c.ingestHandler = mediacmd.NewIngestAssetHandler(c.gateway,
			commands.CommandLogger(c.loggerProvider, "media"),
			commands.WithTimeout[mediacmd.IngestAssetCommand](c.Config.Media.Timeout+5*time.Second),
		)
	}
}

// Site converts the site section for the generators.
func (c *Container) Site() generator.Site {
	s := c.Config.Site
	return generator.Site{
		Name:        s.Name,
		Description: s.Description,
		BaseURL:     s.BaseURL,
		Language:    s.Language,
		LogoURL:     s.LogoURL,
	}
}

func (c *Container) publishOptions() generator.PublishOptions {
	return generator.PublishOptions{
		Feed:    generator.FeedOptions{Limit: c.Config.Feed.Limit},
		Sitemap: generator.SitemapOptions{StaticRoutes: c.Config.Sitemap.StaticRoutes},
		PerPage: c.Config.Listing.PerPage,
		Logger:  logging.GeneratorLogger(c.loggerProvider),
	}
}

func (c *Container) publish(ctx context.Context, coll *content.Collection, generatedAt time.Time) (*generator.PublishResult, error) {
	store, err := c.ArtifactStore(ctx)
	if err != nil {
		return nil, err
	}
	return generator.Publish(ctx, store, coll, c.Site(), generatedAt, c.publishOptions())
}

// ArtifactStore returns the configured store, connecting on first use.
func (c *Container) ArtifactStore(ctx context.Context) (interfaces.ArtifactStore, error) {
	c.storeMu.Lock()
	defer c.storeMu.Unlock()
	if c.store != nil {
		return c.store, nil
	}

	artifacts := c.Config.Artifacts
	var (
		store interfaces.ArtifactStore
		err   error
	)
	switch strings.ToLower(strings.TrimSpace(artifacts.Driver)) {
	case runtimeconfig.ArtifactsDriverMinIO:
		store, err = generator.NewMinIOStore(ctx, generator.MinIOConfig{
			Endpoint:  artifacts.MinIO.Endpoint,
			AccessKey: artifacts.MinIO.AccessKey,
			SecretKey: artifacts.MinIO.SecretKey,
			Bucket:    artifacts.MinIO.Bucket,
			Prefix:    artifacts.MinIO.Prefix,
			UseSSL:    artifacts.MinIO.UseSSL,
		})
	case runtimeconfig.ArtifactsDriverMemory:
		store = generator.NewMemoryStore()
	default:
		store, err = generator.NewFileStore(artifacts.OutputDir)
	}
	if err != nil {
		return nil, fmt.Errorf("folio: artifact store: %w", err)
	}
	c.store = store
	return store, nil
}

func (c *Container) swap(result buildcmd.Result) {
	c.snapshot.Store(&Snapshot{
		Collection: result.Collection,
		Report:     result.Report,
		BuiltAt:    result.Report.CompletedAt,
	})
}

// Build runs the pipeline through the build command and swaps the served
// snapshot on success. A failed build keeps the previous snapshot.
func (c *Container) Build(ctx context.Context, trigger string, publish bool) (buildcmd.Result, error) {
	var result buildcmd.Result
	err := c.buildHandler.Execute(ctx, buildcmd.BuildCollectionCommand{
		Trigger: trigger,
		Publish: publish,
		Result:  func(r buildcmd.Result) { result = r },
	})
	return result, err
}

// Snapshot returns the last successful build, or nil.
func (c *Container) Snapshot() *Snapshot {
	return c.snapshot.Load()
}

// Current satisfies the HTTP collection source.
func (c *Container) Current() (*content.Collection, time.Time) {
	snap := c.snapshot.Load()
	if snap == nil {
		return nil, time.Time{}
	}
	return snap.Collection, snap.BuiltAt
}

// Collection returns the served collection or ErrNoCollection.
func (c *Container) Collection() (*content.Collection, error) {
	coll, _ := c.Current()
	if coll == nil {
		return nil, ErrNoCollection
	}
	return coll, nil
}

// Router builds the gin engine serving the current snapshot.
func (c *Container) Router() (*gin.Engine, error) {
	deps := foliohttp.Dependencies{
		Collections:   c,
		Authenticator: c.authenticator,
		Metrics:       c.metrics,
		Gatherer:      c.registry,
		Logger:        logging.HTTPLogger(c.loggerProvider),
	}
	if c.ingestHandler != nil {
		deps.Uploads = c.ingestHandler
	}
	return foliohttp.NewRouter(foliohttp.Config{
		Site:        c.Site(),
		Feed:        generator.FeedOptions{Limit: c.Config.Feed.Limit},
		Sitemap:     generator.SitemapOptions{StaticRoutes: c.Config.Sitemap.StaticRoutes},
		PerPage:     c.Config.Listing.PerPage,
		MaxPerPage:  c.Config.Listing.MaxPerPage,
		UploadRate:  c.Config.Media.RateLimit,
		UploadBurst: c.Config.Media.RateBurst,
	}, deps)
}

// Server wraps Router in a listener configured from Config.HTTP.
func (c *Container) Server() (*foliohttp.Server, error) {
	router, err := c.Router()
	if err != nil {
		return nil, err
	}
	return foliohttp.NewServer(router, foliohttp.ServerConfig{
		Addr:            c.Config.HTTP.Addr,
		ReadTimeout:     c.Config.HTTP.ReadTimeout,
		WriteTimeout:    c.Config.HTTP.WriteTimeout,
		ShutdownTimeout: c.Config.HTTP.ShutdownTimeout,
	}, logging.HTTPLogger(c.loggerProvider)), nil
}

func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }
func (c *Container) Loader() *markdown.Loader                  { return c.loader }
func (c *Container) Transformer() *markdown.Transformer        { return c.transformer }
func (c *Container) Runner() *pipeline.Runner                  { return c.runner }
func (c *Container) Metrics() *metrics.Collectors              { return c.metrics }
func (c *Container) Registry() *prometheus.Registry            { return c.registry }

// Gateway is nil when media is not configured.
func (c *Container) Gateway() *media.Gateway { return c.gateway }

// Authenticator is nil when no JWT secret is configured.
func (c *Container) Authenticator() interfaces.Authenticator { return c.authenticator }
