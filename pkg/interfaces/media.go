package interfaces

import (
	"context"
	"io"
)

// AssetUploader forwards a binary asset to an external transformation service.
// Implementations perform exactly one attempt per call.
type AssetUploader interface {
	Upload(ctx context.Context, req AssetUploadRequest) (*AssetUploadResult, error)
}

// AssetUploadRequest carries the stream and the transformation recipe applied
// by the service on ingestion.
type AssetUploadRequest struct {
	Body           io.Reader
	Filename       string
	ContentType    string
	Size           int64
	Folder         string
	Transformation AssetTransformation
}

// AssetTransformation is the eager recipe applied to the uploaded asset.
type AssetTransformation struct {
	Width   int
	Height  int
	Crop    string
	Quality string
	Format  string
}

// AssetUploadResult is the service response for a stored asset.
type AssetUploadResult struct {
	PublicID  string
	SecureURL string
	Format    string
	Width     int
	Height    int
	Bytes     int64
	Folder    string
}
