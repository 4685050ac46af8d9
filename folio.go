package folio

import (
	"context"
	"io/fs"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	buildcmd "github.com/goliatone/go-folio/internal/commands/build"
	"github.com/goliatone/go-folio/internal/content"
	"github.com/goliatone/go-folio/internal/di"
	"github.com/goliatone/go-folio/internal/generator"
	foliohttp "github.com/goliatone/go-folio/internal/http"
	"github.com/goliatone/go-folio/internal/media"
	"github.com/goliatone/go-folio/internal/pipeline"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

// Collection exports the document collection.
type Collection = content.Collection

// Document exports a document of the collection.
type Document = content.Document

// Report exports the summary of a pipeline run.
type Report = pipeline.Report

// BuildResult exports the outcome of Build.
type BuildResult = buildcmd.Result

// Snapshot exports the collection currently served.
type Snapshot = di.Snapshot

// Site exports the publication settings used by the generators.
type Site = generator.Site

// AssetReference exports a stored media asset.
type AssetReference = media.AssetReference

// Upload exports a media upload.
type Upload = media.Upload

// Build triggers.
const (
	TriggerCLI    = buildcmd.TriggerCLI
	TriggerHTTP   = buildcmd.TriggerHTTP
	TriggerReload = buildcmd.TriggerReload
)

// ErrNoCollection is returned before the first successful build.
var ErrNoCollection = di.ErrNoCollection

// Option overrides a collaborator of the module.
type Option = di.Option

func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return di.WithLoggerProvider(provider)
}

// WithFS reads sources from filesystem; Config.Content.Root is resolved inside it.
func WithFS(filesystem fs.FS) Option { return di.WithFS(filesystem) }

func WithAssetUploader(uploader interfaces.AssetUploader) Option {
	return di.WithAssetUploader(uploader)
}

func WithArtifactStore(store interfaces.ArtifactStore) Option {
	return di.WithArtifactStore(store)
}

func WithAuthenticator(authenticator interfaces.Authenticator) Option {
	return di.WithAuthenticator(authenticator)
}

func WithRegistry(registry *prometheus.Registry) Option { return di.WithRegistry(registry) }

func WithClock(now func() time.Time) Option { return di.WithClock(now) }

// Module represents the top level folio runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a module from cfg.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Build runs the content pipeline and, when publish is set, writes the
// derived artifacts. On success the new collection replaces the served one.
func (m *Module) Build(ctx context.Context, trigger string, publish bool) (BuildResult, error) {
	return m.container.Build(ctx, trigger, publish)
}

// Collection returns the collection of the last successful build.
func (m *Module) Collection() (*Collection, error) {
	return m.container.Collection()
}

// Snapshot returns the last successful build, or nil.
func (m *Module) Snapshot() *Snapshot {
	return m.container.Snapshot()
}

// Site returns the generator view of Config.Site.
func (m *Module) Site() Site {
	return m.container.Site()
}

// Ingest validates and stores one asset. It returns ErrMediaDisabled when
// no media service is configured.
func (m *Module) Ingest(ctx context.Context, upload Upload, folder string) (AssetReference, error) {
	gateway := m.container.Gateway()
	if gateway == nil {
		return AssetReference{}, ErrMediaDisabled
	}
	return gateway.Ingest(ctx, upload, folder)
}

// MediaURL derives a delivery URL for publicID with the default recipe.
func (m *Module) MediaURL(publicID string, opts media.URLOptions) string {
	gateway := m.container.Gateway()
	if gateway == nil {
		return media.BuildURL(m.container.Config.Media.CloudName, publicID, opts)
	}
	return gateway.URL(publicID, opts)
}

// Router returns a gin engine serving the current collection.
func (m *Module) Router() (*gin.Engine, error) {
	return m.container.Router()
}

// Server returns a listener for Router configured from Config.HTTP.
func (m *Module) Server() (*foliohttp.Server, error) {
	return m.container.Server()
}
