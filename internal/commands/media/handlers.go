package mediacmd

import (
	"context"
	"errors"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-folio/internal/commands"
	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/internal/media"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

const ingestOperation = "media.ingest"

var errGatewayMissing = errors.New("media command: gateway is not configured")

var _ command.Commander[IngestAssetCommand] = (*IngestAssetHandler)(nil)

// Ingester is satisfied by *media.Gateway.
type Ingester interface {
	Ingest(ctx context.Context, upload media.Upload, folder string) (media.AssetReference, error)
}

// IngestAssetHandler runs media ingestion through the shared command handler.
type IngestAssetHandler struct {
	inner *commands.Handler[IngestAssetCommand]
}

// NewIngestAssetHandler binds gateway.
func NewIngestAssetHandler(gateway Ingester, logger interfaces.Logger, opts ...commands.HandlerOption[IngestAssetCommand]) *IngestAssetHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg IngestAssetCommand) error {
		if gateway == nil {
			return errGatewayMissing
		}
		ref, err := gateway.Ingest(ctx, msg.upload(), msg.Folder)
		if err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{
			"public_id": ref.PublicID,
			"bytes":     ref.Bytes,
		}).Info("media.command.ingest.completed")
		if msg.Result != nil {
			msg.Result(ref)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[IngestAssetCommand]{
		commands.WithLogger[IngestAssetCommand](baseLogger),
		commands.WithOperation[IngestAssetCommand](ingestOperation),
		commands.WithMessageFields(func(msg IngestAssetCommand) map[string]any {
			fields := map[string]any{
				"filename":     msg.Filename,
				"content_type": msg.ContentType,
				"size":         msg.Size,
			}
			if msg.Folder != "" {
				fields["folder"] = msg.Folder
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[IngestAssetCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &IngestAssetHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[IngestAssetCommand].
func (h *IngestAssetHandler) Execute(ctx context.Context, msg IngestAssetCommand) error {
	return h.inner.Execute(ctx, msg)
}
