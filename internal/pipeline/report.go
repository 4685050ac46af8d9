package pipeline

import (
	"time"

	"github.com/goliatone/go-folio/internal/content"
)

// Exclusion is a source left out of the collection.
type Exclusion struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// RenderFailure is a document kept in the collection whose body failed to
// render.
type RenderFailure struct {
	SourcePath string `json:"sourcePath"`
	Stage      string `json:"stage,omitempty"`
	Reason     string `json:"reason"`
}

// Report summarises one pipeline run.
type Report struct {
	RunID          string                  `json:"runId"`
	StartedAt      time.Time               `json:"startedAt"`
	CompletedAt    time.Time               `json:"completedAt"`
	Sources        int                     `json:"sources"`
	Documents      int                     `json:"documents"`
	Published      int                     `json:"published"`
	Excluded       []Exclusion             `json:"excluded,omitempty"`
	RenderFailures []RenderFailure         `json:"renderFailures,omitempty"`
	DuplicateSlugs []content.DuplicateSlug `json:"duplicateSlugs,omitempty"`
	Replaced       []string                `json:"replaced,omitempty"`
	SchemaErrors   int                     `json:"schemaErrors,omitempty"`
	Failed         bool                    `json:"failed"`
}

// Duration is the wall time of the run.
func (r Report) Duration() time.Duration {
	if r.CompletedAt.IsZero() {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}

// Warnings counts the non-fatal findings of the run.
func (r Report) Warnings() int {
	return len(r.Excluded) + len(r.RenderFailures) + len(r.DuplicateSlugs) + len(r.Replaced)
}

// Observer receives the report of every finished run, failed or not.
type Observer interface {
	RunCompleted(Report)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Report)

func (f ObserverFunc) RunCompleted(r Report) { f(r) }
