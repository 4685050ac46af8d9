package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	command "github.com/goliatone/go-command"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mediacmd "github.com/goliatone/go-folio/internal/commands/media"
	"github.com/goliatone/go-folio/internal/content"
	"github.com/goliatone/go-folio/internal/generator"
	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/internal/media"
	"github.com/goliatone/go-folio/internal/metrics"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

// multipartOverhead is added to the upload size limit to leave room for
// form boundaries and the folder field.
const multipartOverhead = 1 << 20

// CollectionSource returns the collection currently served and the time it
// was built. A nil collection means no build has completed yet.
type CollectionSource interface {
	Current() (*content.Collection, time.Time)
}

// CollectionSourceFunc adapts a function to CollectionSource.
type CollectionSourceFunc func() (*content.Collection, time.Time)

func (f CollectionSourceFunc) Current() (*content.Collection, time.Time) { return f() }

// Config holds presentation settings for the routes.
type Config struct {
	Site       generator.Site
	Feed       generator.FeedOptions
	Sitemap    generator.SitemapOptions
	PerPage    int
	MaxPerPage int
	// UploadRate is uploads per second per caller; zero disables limiting.
	UploadRate  float64
	UploadBurst int
}

// Dependencies are the collaborators behind the routes. Uploads and
// Authenticator may be nil, in which case the upload route answers 503 and
// 401 respectively.
type Dependencies struct {
	Collections   CollectionSource
	Uploads       command.Commander[mediacmd.IngestAssetCommand]
	Authenticator interfaces.Authenticator
	Metrics       *metrics.Collectors
	Gatherer      prometheus.Gatherer
	Logger        interfaces.Logger
}

type routes struct {
	cfg     Config
	deps    Dependencies
	logger  interfaces.Logger
	limiter *rateLimiter
}

// NewRouter builds a gin engine with recovery, request ids and every route.
func NewRouter(cfg Config, deps Dependencies) (*gin.Engine, error) {
	engine := gin.New()
	engine.Use(gin.Recovery())
	if err := RegisterRoutes(engine, cfg, deps); err != nil {
		return nil, err
	}
	return engine, nil
}

// RegisterRoutes mounts the folio routes on router.
func RegisterRoutes(router gin.IRouter, cfg Config, deps Dependencies) error {
	if router == nil {
		return fmt.Errorf("http: router is required")
	}
	if deps.Collections == nil {
		return fmt.Errorf("http: collection source is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	if cfg.PerPage <= 0 {
		cfg.PerPage = generator.DefaultPerPage
	}
	if cfg.MaxPerPage < cfg.PerPage {
		cfg.MaxPerPage = cfg.PerPage
	}

	r := &routes{cfg: cfg, deps: deps, logger: logger}
	router.Use(requestContext(logger))

	router.GET(generator.FeedPath, r.feed)
	router.GET(generator.SitemapPath, r.sitemap)
	router.GET("/robots.txt", r.robots)
	router.GET("/healthz", r.health)

	api := router.Group("/api")
	api.GET("/posts", r.listPosts)
	api.GET("/posts/:slug", r.getPost)
	api.GET("/tags", r.listTags)

	upload := []gin.HandlerFunc{requireIdentity(deps.Authenticator)}
	if cfg.UploadRate > 0 {
		r.limiter = newRateLimiter(cfg.UploadRate, cfg.UploadBurst, deps.Metrics)
		upload = append(upload, r.limiter.middleware())
	}
	upload = append(upload, r.upload)
	api.POST("/upload", upload...)

	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}
	return nil
}

// Server runs a router until its context is cancelled.
type Server struct {
	server          *http.Server
	shutdownTimeout time.Duration
	logger          interfaces.Logger
}

// ServerConfig configures the listener.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

func NewServer(handler http.Handler, cfg ServerConfig, logger interfaces.Logger) *Server {
	if logger == nil {
		logger = logging.NoOp()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	return &Server{
		server: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      cfg.WriteTimeout,
		},
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          logger,
	}
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http.server.listening", "addr", s.server.Addr)
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	s.logger.Info("http.server.shutdown")
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http: shutdown: %w", err)
	}
	return nil
}

func (r *routes) current(c *gin.Context) (*content.Collection, time.Time, bool) {
	coll, builtAt := r.deps.Collections.Current()
	if coll == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, errorResponse{Error: "collection not built yet"})
		return nil, time.Time{}, false
	}
	return coll, builtAt, true
}

func (r *routes) health(c *gin.Context) {
	coll, builtAt := r.deps.Collections.Current()
	payload := gin.H{"status": "ok", "ready": coll != nil}
	if coll != nil {
		payload["documents"] = coll.Len()
		payload["builtAt"] = builtAt
	}
	c.JSON(http.StatusOK, payload)
}

func uploadLimit() int64 {
	return media.MaxUploadBytes + multipartOverhead
}
