package buildcmd

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const buildCollectionMessageType = "folio.build.collection"

// Build triggers recorded on the command and in logs.
const (
	TriggerCLI    = "cli"
	TriggerHTTP   = "http"
	TriggerReload = "reload"
)

// BuildCollectionCommand runs the content pipeline and, when Publish is
// set, writes the derived artifacts.
type BuildCollectionCommand struct {
	// Trigger names what started the run.
	Trigger string `json:"trigger,omitempty"`
	// Publish writes feed, sitemap, robots and listing artifacts after a successful run.
	Publish bool `json:"publish,omitempty"`
	// GeneratedAt stamps the artifacts. Zero means the time the run completes.
	GeneratedAt time.Time `json:"generated_at,omitempty"`
	// Result receives the outcome of a successful build.
	Result func(Result) `json:"-"`
}

// Type implements command.Message.
func (BuildCollectionCommand) Type() string { return buildCollectionMessageType }

// Validate rejects unknown triggers.
func (cmd BuildCollectionCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Trigger, validation.In(TriggerCLI, TriggerHTTP, TriggerReload).
			Error("trigger must be one of cli, http, reload")),
	)
}
