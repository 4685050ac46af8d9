package buildcmd

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-folio/internal/commands"
	"github.com/goliatone/go-folio/internal/content"
	"github.com/goliatone/go-folio/internal/generator"
	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/internal/pipeline"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

const buildOperation = "build.collection"

var _ command.Commander[BuildCollectionCommand] = (*BuildCollectionHandler)(nil)

// Runner produces a collection.
type Runner interface {
	Run(ctx context.Context) (*pipeline.Result, error)
}

// PublishFunc writes the artifacts derived from coll.
type PublishFunc func(ctx context.Context, coll *content.Collection, generatedAt time.Time) (*generator.PublishResult, error)

// Result is handed to BuildCollectionCommand.Result.
type Result struct {
	Collection *content.Collection
	Report     pipeline.Report
	Published  *generator.PublishResult
}

// Dependencies wires a BuildCollectionHandler.
type Dependencies struct {
	Runner  Runner
	Publish PublishFunc
	// OnBuilt receives every successful build, e.g. to swap the served
	// collection.
	OnBuilt func(Result)
	Clock   func() time.Time
}

// BuildCollectionHandler runs the pipeline through the shared command handler.
type BuildCollectionHandler struct {
	inner *commands.Handler[BuildCollectionCommand]
}

// NewBuildCollectionHandler binds deps. Publish may be nil when artifacts
// are never written.
func NewBuildCollectionHandler(deps Dependencies, logger interfaces.Logger, opts ...commands.HandlerOption[BuildCollectionCommand]) *BuildCollectionHandler {
	baseLogger := commands.EnsureLogger(logger)
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	exec := func(ctx context.Context, msg BuildCollectionCommand) error {
		if deps.Runner == nil {
			return errRunnerMissing
		}
		built, err := deps.Runner.Run(ctx)
		if err != nil {
			return err
		}
		result := Result{Collection: built.Collection, Report: built.Report}

		if msg.Publish {
			if deps.Publish == nil {
				return errPublisherMissing
			}
			generatedAt := msg.GeneratedAt
			if generatedAt.IsZero() {
				generatedAt = clock()
			}
			published, err := deps.Publish(ctx, built.Collection, generatedAt)
			if err != nil {
				return err
			}
			result.Published = published
		}

		logging.WithFields(baseLogger, map[string]any{
			"run_id":    built.Report.RunID,
			"documents": built.Report.Documents,
			"published": built.Report.Published,
			"warnings":  built.Report.Warnings(),
		}).Info("build.command.collection.completed")

		if deps.OnBuilt != nil {
			deps.OnBuilt(result)
		}
		if msg.Result != nil {
			msg.Result(result)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[BuildCollectionCommand]{
		commands.WithLogger[BuildCollectionCommand](baseLogger),
		commands.WithOperation[BuildCollectionCommand](buildOperation),
		commands.WithMessageFields(func(msg BuildCollectionCommand) map[string]any {
			fields := map[string]any{}
			if msg.Trigger != "" {
				fields["trigger"] = msg.Trigger
			}
			if msg.Publish {
				fields["publish"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[BuildCollectionCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &BuildCollectionHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[BuildCollectionCommand].
func (h *BuildCollectionHandler) Execute(ctx context.Context, msg BuildCollectionCommand) error {
	return h.inner.Execute(ctx, msg)
}
