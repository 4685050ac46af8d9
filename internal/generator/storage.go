package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/goliatone/go-folio/pkg/interfaces"
)

var errArtifactPath = errors.New("generator: artifact path is required")

func cleanArtifactPath(p string) (string, error) {
	cleaned := strings.TrimPrefix(path.Clean("/"+strings.TrimSpace(p)), "/")
	if cleaned == "" || cleaned == "." {
		return "", errArtifactPath
	}
	return cleaned, nil
}

// FileStore writes artifacts below a local directory. Each write lands in a
// temporary file that is renamed into place.
type FileStore struct {
	root string
}

// NewFileStore creates root when missing.
func NewFileStore(root string) (*FileStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("generator: file store root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("generator: create output dir: %w", err)
	}
	return &FileStore{root: root}, nil
}

// Put satisfies interfaces.ArtifactStore.
func (s *FileStore) Put(ctx context.Context, artifact interfaces.Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if artifact.Content == nil {
		return errors.New("generator: write requires content reader")
	}
	rel, err := cleanArtifactPath(artifact.Path)
	if err != nil {
		return err
	}
	target := filepath.Join(s.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("generator: ensure dir for %s: %w", rel, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".folio-*")
	if err != nil {
		return fmt.Errorf("generator: write %s: %w", rel, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, artifact.Content); err != nil {
		tmp.Close()
		return fmt.Errorf("generator: write %s: %w", rel, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("generator: write %s: %w", rel, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("generator: write %s: %w", rel, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("generator: write %s: %w", rel, err)
	}
	return nil
}

// MinIOConfig addresses the bucket artifacts are published to.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

type objectPutter interface {
	PutObject(ctx context.Context, bucket, key string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// MinIOStore publishes artifacts as objects in an S3 compatible bucket.
type MinIOStore struct {
	client objectPutter
	bucket string
	prefix string
}

// NewMinIOStore connects to the endpoint and ensures the bucket exists.
func NewMinIOStore(ctx context.Context, cfg MinIOConfig) (*MinIOStore, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("generator: minio endpoint and bucket are required")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("generator: minio client: %w", err)
	}

	ensureCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ensureCtx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
		exists, existsErr := mc.BucketExists(ensureCtx, cfg.Bucket)
		if existsErr != nil || !exists {
			return nil, fmt.Errorf("generator: minio bucket ensure: %w", err)
		}
	}
	return newMinIOStore(mc, cfg.Bucket, cfg.Prefix), nil
}

func newMinIOStore(client objectPutter, bucket, prefix string) *MinIOStore {
	return &MinIOStore{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// Put satisfies interfaces.ArtifactStore. The checksum and metadata travel
// as user metadata on the object.
func (s *MinIOStore) Put(ctx context.Context, artifact interfaces.Artifact) error {
	if artifact.Content == nil {
		return errors.New("generator: write requires content reader")
	}
	rel, err := cleanArtifactPath(artifact.Path)
	if err != nil {
		return err
	}
	key := rel
	if s.prefix != "" {
		key = s.prefix + "/" + rel
	}

	meta := make(map[string]string, len(artifact.Metadata)+1)
	for k, v := range artifact.Metadata {
		meta[k] = v
	}
	if artifact.Checksum != "" {
		meta["checksum-sha256"] = artifact.Checksum
	}

	size := artifact.Size
	if size <= 0 {
		size = -1
	}
	_, err = s.client.PutObject(ctx, s.bucket, key, artifact.Content, size, minio.PutObjectOptions{
		ContentType:  artifact.ContentType,
		CacheControl: artifact.CacheControl,
		UserMetadata: meta,
	})
	if err != nil {
		return fmt.Errorf("generator: put %s: %w", key, err)
	}
	return nil
}

// MemoryStore keeps artifacts in memory. It backs dry runs and tests.
type MemoryStore struct {
	Artifacts map[string]StoredArtifact
}

// StoredArtifact is an artifact captured by MemoryStore.
type StoredArtifact struct {
	Data         []byte
	ContentType  string
	CacheControl string
	Checksum     string
	Metadata     map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{Artifacts: map[string]StoredArtifact{}}
}

func (s *MemoryStore) Put(ctx context.Context, artifact interfaces.Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if artifact.Content == nil {
		return errors.New("generator: write requires content reader")
	}
	rel, err := cleanArtifactPath(artifact.Path)
	if err != nil {
		return err
	}
	data, err := io.ReadAll(artifact.Content)
	if err != nil {
		return err
	}
	s.Artifacts[rel] = StoredArtifact{
		Data:         data,
		ContentType:  artifact.ContentType,
		CacheControl: artifact.CacheControl,
		Checksum:     artifact.Checksum,
		Metadata:     artifact.Metadata,
	}
	return nil
}
