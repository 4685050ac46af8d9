package mediacmd

import (
	"io"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-folio/internal/media"
)

const ingestAssetMessageType = "folio.media.asset.ingest"

var folderPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_\-/]*$`)

// IngestAssetCommand forwards one uploaded asset to the media gateway.
type IngestAssetCommand struct {
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Folder      string    `json:"folder,omitempty"`
	Body        io.Reader `json:"-"`
	// Result receives the stored asset reference.
	Result func(media.AssetReference) `json:"-"`
}

// Type implements command.Message.
func (IngestAssetCommand) Type() string { return ingestAssetMessageType }

// Validate checks the command envelope. Asset preconditions (type, size,
// body) are enforced by the gateway so they surface as media validation
// errors.
func (cmd IngestAssetCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Folder,
			validation.Length(0, 128),
			validation.Match(folderPattern).Error("folder may only contain letters, digits, '-', '_' and '/'"),
		),
		validation.Field(&cmd.Size, validation.Min(int64(0))),
	)
}

func (cmd IngestAssetCommand) upload() media.Upload {
	return media.Upload{
		Filename:    cmd.Filename,
		ContentType: cmd.ContentType,
		Size:        cmd.Size,
		Body:        cmd.Body,
	}
}
