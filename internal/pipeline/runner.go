package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-folio/internal/content"
	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/internal/markdown"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

// SourceLoader discovers the sources of a run.
type SourceLoader interface {
	Load(ctx context.Context) ([]markdown.Source, error)
}

// BodyRenderer renders one document body.
type BodyRenderer interface {
	Render(sourcePath string, body []byte) (content.RenderedBody, error)
}

// Config tunes a Runner.
type Config struct {
	// Workers bounds parse and render concurrency. Zero means NumCPU.
	Workers int
	// StrictSlugs fails the run when two documents share a slug.
	StrictSlugs bool
	// Defaults fill optional metadata.
	Defaults markdown.MetadataDefaults
}

// Result is the outcome of a successful run.
type Result struct {
	Collection *content.Collection
	Report     Report
}

// Runner executes scan, parse, compute, transform and assemble.
type Runner struct {
	loader    SourceLoader
	renderer  BodyRenderer
	cfg       Config
	logger    interfaces.Logger
	observers []Observer
	now       func() time.Time
}

// Option customises a Runner.
type Option func(*Runner)

// WithLogger sets the run logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithObserver registers an observer for run reports.
func WithObserver(observer Observer) Option {
	return func(r *Runner) {
		if observer != nil {
			r.observers = append(r.observers, observer)
		}
	}
}

// WithClock overrides the time source used for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRunner wires a runner.
func NewRunner(loader SourceLoader, renderer BodyRenderer, cfg Config, opts ...Option) (*Runner, error) {
	if loader == nil {
		return nil, fmt.Errorf("pipeline: source loader is required")
	}
	if renderer == nil {
		return nil, fmt.Errorf("pipeline: body renderer is required")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	r := &Runner{
		loader:   loader,
		renderer: renderer,
		cfg:      cfg,
		logger:   logging.NoOp(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

type parsed struct {
	doc      content.Document
	ok       bool
	excluded *Exclusion
	failure  *RenderFailure
}

// Run produces a frozen collection. Any schema violation fails the whole
// run and no collection is returned; the error joins every violation found.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	report := Report{RunID: uuid.NewString(), StartedAt: r.now().UTC()}
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.WithRunContext(r.logger, report.RunID).WithContext(ctx)
	logger.Info("pipeline.run.started", "workers", r.cfg.Workers)

	result, err := r.run(ctx, logger, &report)

	report.CompletedAt = r.now().UTC()
	report.Failed = err != nil
	for _, observer := range r.observers {
		observer.RunCompleted(report)
	}
	if err != nil {
		logger.Error("pipeline.run.failed", "error", err, "schema_errors", report.SchemaErrors)
		return nil, err
	}
	result.Report = report
	logger.Info("pipeline.run.completed",
		"documents", report.Documents,
		"published", report.Published,
		"warnings", report.Warnings(),
		"duration_ms", report.Duration().Milliseconds(),
	)
	return result, nil
}

func (r *Runner) run(ctx context.Context, logger interfaces.Logger, report *Report) (*Result, error) {
	sources, err := r.loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("pipeline: load sources: %w", err)
	}
	report.Sources = len(sources)

	docs, err := r.parseAll(ctx, sources, report)
	if err != nil {
		return nil, err
	}
	if err := r.renderAll(ctx, docs); err != nil {
		return nil, err
	}

	coll := content.NewCollection()
	failures := map[string]*RenderFailure{}
	for _, item := range docs {
		switch {
		case item.excluded != nil:
			report.Excluded = append(report.Excluded, *item.excluded)
			logger.Warn("pipeline.document.excluded", "source_path", item.excluded.Path, "reason", item.excluded.Reason)
			continue
		case !item.ok:
			continue
		}
		if _, exists := coll.Get(item.doc.SourcePath()); exists {
			report.Replaced = append(report.Replaced, item.doc.SourcePath())
			logger.Warn("pipeline.document.replaced", "source_path", item.doc.SourcePath())
		}
		if err := coll.AddOrReplace(item.doc); err != nil {
			return nil, err
		}
		failures[item.doc.SourcePath()] = item.failure
	}
	for _, doc := range coll.All() {
		failure := failures[doc.SourcePath()]
		if failure == nil {
			continue
		}
		report.RenderFailures = append(report.RenderFailures, *failure)
		logger.Warn("pipeline.document.render_failed",
			"source_path", failure.SourcePath,
			"stage", failure.Stage,
			"reason", failure.Reason,
		)
	}

	report.DuplicateSlugs = coll.DuplicateSlugs()
	if len(report.DuplicateSlugs) > 0 {
		if r.cfg.StrictSlugs {
			issues := make([]content.SchemaIssue, 0, len(report.DuplicateSlugs))
			for _, dup := range report.DuplicateSlugs {
				issues = append(issues, content.SchemaIssue{
					Field:   "slug",
					Message: fmt.Sprintf("%q is used by %s", dup.Slug, strings.Join(dup.SourcePaths, ", ")),
				})
			}
			report.SchemaErrors = len(issues)
			return nil, &content.SchemaViolationError{Issues: issues, Err: content.ErrDuplicateSlug}
		}
		for _, dup := range report.DuplicateSlugs {
			logger.Warn("pipeline.slug.duplicate", "slug", dup.Slug, "source_paths", dup.SourcePaths, "winner", dup.SourcePaths[0])
		}
	}

	coll.Freeze()
	report.Documents = coll.Len()
	for range coll.Published() {
		report.Published++
	}
	return &Result{Collection: coll}, nil
}

// parseAll reads metadata and computes fields for every source. Schema
// violations do not stop the other parses so that all of them are reported.
func (r *Runner) parseAll(ctx context.Context, sources []markdown.Source, report *Report) ([]parsed, error) {
	out := make([]parsed, len(sources))
	violations := make([]error, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	for i, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := markdown.BuildDocument(src, r.cfg.Defaults)
			switch {
			case err == nil:
				out[i] = parsed{doc: doc, ok: true}
			case errors.Is(err, content.ErrSchemaViolation):
				violations[i] = err
			case errors.Is(err, content.ErrPathShapeViolation):
				out[i] = parsed{excluded: &Exclusion{Path: src.Path, Reason: err.Error()}}
			default:
				return fmt.Errorf("pipeline: parse %s: %w", src.Path, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var joined []error
	for _, violation := range violations {
		if violation != nil {
			joined = append(joined, violation)
		}
	}
	if len(joined) > 0 {
		report.SchemaErrors = len(joined)
		return nil, errors.Join(joined...)
	}
	return out, nil
}

// renderAll transforms bodies in place. Render failures keep the document.
func (r *Runner) renderAll(ctx context.Context, docs []parsed) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	for i := range docs {
		if !docs[i].ok {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc := docs[i].doc
			rendered, err := r.renderer.Render(doc.SourcePath(), []byte(doc.RawBody()))
			if err != nil {
				failure := &RenderFailure{SourcePath: doc.SourcePath(), Reason: err.Error()}
				var renderErr *content.RenderFailureError
				if errors.As(err, &renderErr) {
					failure.Stage = renderErr.Stage
					failure.Reason = renderErr.Reason
				}
				rendered.Failed = true
				if rendered.FailureReason == "" {
					rendered.FailureReason = failure.Reason
				}
				docs[i].failure = failure
			}
			docs[i].doc = doc.WithRendered(rendered)
			return nil
		})
	}
	return g.Wait()
}
