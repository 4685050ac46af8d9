package interfaces

import (
	"context"
	"io"
)

// ArtifactStore persists derived artifacts (feeds, site maps, robots files)
// produced from a document collection.
type ArtifactStore interface {
	Put(ctx context.Context, artifact Artifact) error
}

// Artifact describes a single write routed through an ArtifactStore.
type Artifact struct {
	Path         string
	Content      io.Reader
	Size         int64
	ContentType  string
	CacheControl string
	Checksum     string
	Metadata     map[string]string
}
