package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"sort"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-folio/internal/identity"
	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

const (
	// MaxUploadBytes is the largest accepted asset.
	MaxUploadBytes int64 = 10 << 20
	// DefaultFolder receives uploads that do not name a folder.
	DefaultFolder = "blog"
	// DefaultTimeout bounds a single upstream upload.
	DefaultTimeout = 30 * time.Second
)

// AllowedContentTypes are the raster formats the gateway accepts.
var AllowedContentTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

// Config tunes a Gateway.
type Config struct {
	CloudName     string
	DefaultFolder string
	Timeout       time.Duration
	// Width and Height bound the eager fill transformation.
	Width  int
	Height int
}

// DefaultConfig returns the 1200x630 fill recipe under the blog folder.
func DefaultConfig() Config {
	return Config{
		DefaultFolder: DefaultFolder,
		Timeout:       DefaultTimeout,
		Width:         1200,
		Height:        630,
	}
}

// Upload is an incoming asset.
type Upload struct {
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	Body        io.Reader `json:"file"`
}

// AssetReference points at a stored asset.
type AssetReference struct {
	ID       string `json:"id"`
	PublicID string `json:"publicId"`
	URL      string `json:"url"`
	Format   string `json:"format"`
	Folder   string `json:"folder"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Bytes    int64  `json:"bytes"`
}

// Observer is told about every ingest outcome.
type Observer interface {
	IngestCompleted(outcome string, elapsed time.Duration)
}

// Ingest outcomes reported to observers.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// GatewayOption customises a Gateway.
type GatewayOption func(*Gateway)

// WithLogger sets the gateway logger.
func WithLogger(logger interfaces.Logger) GatewayOption {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithObserver registers an ingest observer.
func WithObserver(observer Observer) GatewayOption {
	return func(g *Gateway) {
		g.observer = observer
	}
}

// Gateway validates uploads and forwards them to an AssetUploader. It keeps
// no per-call state and is safe for concurrent use.
type Gateway struct {
	uploader interfaces.AssetUploader
	cfg      Config
	logger   interfaces.Logger
	observer Observer
	now      func() time.Time
}

// NewGateway binds uploader. Zero config fields take DefaultConfig values.
func NewGateway(uploader interfaces.AssetUploader, cfg Config, opts ...GatewayOption) (*Gateway, error) {
	if uploader == nil {
		return nil, fmt.Errorf("media: asset uploader is required")
	}
	defaults := DefaultConfig()
	if strings.TrimSpace(cfg.DefaultFolder) == "" {
		cfg.DefaultFolder = defaults.DefaultFolder
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.Width <= 0 && cfg.Height <= 0 {
		cfg.Width, cfg.Height = defaults.Width, defaults.Height
	}
	g := &Gateway{
		uploader: uploader,
		cfg:      cfg,
		logger:   logging.NoOp(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Validate checks upload against the gateway preconditions.
func (g *Gateway) Validate(upload Upload) error {
	upload.ContentType = normalizeContentType(upload.ContentType)
	err := validation.ValidateStruct(&upload,
		validation.Field(&upload.Body, validation.Required.Error("no file provided")),
		validation.Field(&upload.ContentType,
			validation.Required.Error("content type is required"),
			validation.In(allowedTypes()...).Error("invalid file type, only JPEG, PNG, WebP and GIF are allowed"),
		),
		validation.Field(&upload.Size,
			validation.Required.Error("file size is required"),
			validation.Min(int64(1)).Error("file size is required"),
			validation.Max(MaxUploadBytes).Error("file too large, maximum size is 10MB"),
		),
	)
	if err == nil {
		return nil
	}
	return toValidationError(err)
}

// Ingest validates upload and stores it under folder, or the default folder
// when folder is blank. The upstream call is attempted once.
func (g *Gateway) Ingest(ctx context.Context, upload Upload, folder string) (AssetReference, error) {
	started := g.now()
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	if folder == "" {
		folder = g.cfg.DefaultFolder
	}
	logger := logging.WithFields(g.logger, map[string]any{"filename": upload.Filename, "folder": folder})
	if ctx != nil {
		logger = logger.WithContext(ctx)
	} else {
		ctx = context.Background()
	}

	if err := g.Validate(upload); err != nil {
		logger.Warn("media.ingest.rejected", "error", err)
		g.observe(OutcomeRejected, started)
		return AssetReference{}, err
	}
	upload, err := readBounded(upload)
	if err != nil {
		logger.Warn("media.ingest.rejected", "error", err)
		g.observe(OutcomeRejected, started)
		return AssetReference{}, err
	}

	uploadCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	result, err := g.uploader.Upload(uploadCtx, interfaces.AssetUploadRequest{
		Body:        upload.Body,
		Filename:    upload.Filename,
		ContentType: normalizeContentType(upload.ContentType),
		Size:        upload.Size,
		Folder:      folder,
		Transformation: interfaces.AssetTransformation{
			Width:   g.cfg.Width,
			Height:  g.cfg.Height,
			Crop:    "fill",
			Quality: "auto",
			Format:  "auto",
		},
	})
	switch {
	case err == nil && uploadCtx.Err() != nil:
		err = uploadCtx.Err()
	case err == nil && (result == nil || strings.TrimSpace(result.PublicID) == ""):
		err = errEmptyPublicID
	}
	if err != nil {
		upstream := &UpstreamError{Folder: folder, Err: err}
		logger.Error("media.ingest.failed", "error", err, "timeout", errors.Is(err, context.DeadlineExceeded))
		g.observe(OutcomeFailed, started)
		return AssetReference{}, upstream
	}

	ref := AssetReference{
		ID:       identity.AssetUUID(result.PublicID).String(),
		PublicID: result.PublicID,
		URL:      result.SecureURL,
		Format:   result.Format,
		Folder:   fallback(result.Folder, folder),
		Width:    result.Width,
		Height:   result.Height,
		Bytes:    result.Bytes,
	}
	if ref.URL == "" {
		ref.URL = g.URL(ref.PublicID, URLOptions{})
	}
	logger.Info("media.ingest.completed", "public_id", ref.PublicID, "bytes", ref.Bytes)
	g.observe(OutcomeAccepted, started)
	return ref, nil
}

// URL derives a delivery URL using the configured cloud name.
func (g *Gateway) URL(publicID string, opts URLOptions) string {
	return BuildURL(g.cfg.CloudName, publicID, opts)
}

func (g *Gateway) observe(outcome string, started time.Time) {
	if g.observer != nil {
		g.observer.IngestCompleted(outcome, g.now().Sub(started))
	}
}

// readBounded buffers the body so the declared size cannot hide an oversized
// file from the ceiling check. The returned upload carries the measured size.
func readBounded(upload Upload) (Upload, error) {
	data, err := io.ReadAll(io.LimitReader(upload.Body, MaxUploadBytes+1))
	if err != nil {
		return upload, &ValidationError{Field: "file", Reason: "could not read file", Cause: err}
	}
	switch {
	case int64(len(data)) > MaxUploadBytes:
		return upload, &ValidationError{Field: "size", Reason: "file too large, maximum size is 10MB"}
	case len(data) == 0:
		return upload, &ValidationError{Field: "file", Reason: "file is empty"}
	}
	upload.Body = bytes.NewReader(data)
	upload.Size = int64(len(data))
	return upload, nil
}

func normalizeContentType(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if parsed, _, err := mime.ParseMediaType(value); err == nil {
		return parsed
	}
	return strings.ToLower(value)
}

func allowedTypes() []any {
	out := make([]any, len(AllowedContentTypes))
	for i, ct := range AllowedContentTypes {
		out[i] = ct
	}
	return out
}

func toValidationError(err error) error {
	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{Reason: err.Error(), Cause: err}
	}
	order := []string{"file", "contentType", "size"}
	fields := make([]string, 0, len(fieldErrs))
	for field := range fieldErrs {
		fields = append(fields, field)
	}
	sort.SliceStable(fields, func(i, j int) bool {
		return rank(order, fields[i]) < rank(order, fields[j])
	})
	first := fields[0]
	return &ValidationError{Field: first, Reason: fieldErrs[first].Error(), Cause: fieldErrs}
}

func rank(order []string, field string) int {
	for i, name := range order {
		if name == field {
			return i
		}
	}
	return len(order)
}
