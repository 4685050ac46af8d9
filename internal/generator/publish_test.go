package generator

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/minio/minio-go/v7"

	"github.com/goliatone/go-folio/pkg/interfaces"
)

func TestPublishWritesEveryArtifact(t *testing.T) {
	coll := sampleCollection(t)
	store := NewMemoryStore()

	result, err := Publish(context.Background(), store, coll, testSite, generatedAt, PublishOptions{})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(result.Artifacts) != 4 {
		t.Fatalf("expected 4 artifacts, got %+v", result.Artifacts)
	}
	for _, name := range []string{ArtifactFeed, ArtifactSitemap, ArtifactRobots, ArtifactListing} {
		stored, ok := store.Artifacts[name]
		if !ok {
			t.Fatalf("missing artifact %s", name)
		}
		sum := sha256.Sum256(stored.Data)
		if stored.Checksum != hex.EncodeToString(sum[:]) {
			t.Fatalf("checksum mismatch for %s", name)
		}
	}
	if store.Artifacts[ArtifactFeed].CacheControl != FeedCacheControl || store.Artifacts[ArtifactFeed].ContentType != FeedContentType {
		t.Fatalf("unexpected feed headers %+v", store.Artifacts[ArtifactFeed])
	}

	again := NewMemoryStore()
	if _, err := Publish(context.Background(), again, coll, testSite, generatedAt, PublishOptions{}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	for name, stored := range store.Artifacts {
		if !bytes.Equal(stored.Data, again.Artifacts[name].Data) {
			t.Fatalf("expected identical %s across runs", name)
		}
	}
}

type failingStore struct{ calls int }

func (f *failingStore) Put(context.Context, interfaces.Artifact) error {
	f.calls++
	return errors.New("disk full")
}

func TestPublishStopsAtFirstWriteError(t *testing.T) {
	store := &failingStore{}
	_, err := Publish(context.Background(), store, sampleCollection(t), testSite, generatedAt, PublishOptions{})
	if err == nil || store.calls != 1 {
		t.Fatalf("expected failure after first write, got %v (calls=%d)", err, store.calls)
	}
}

func TestFileStorePut(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	err = store.Put(context.Background(), interfaces.Artifact{Path: "/feeds/../rss.xml", Content: bytes.NewReader([]byte("<rss/>"))})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "rss.xml"))
	if err != nil || string(data) != "<rss/>" {
		t.Fatalf("unexpected file %q (%v)", data, err)
	}
	if err := store.Put(context.Background(), interfaces.Artifact{Path: "/", Content: bytes.NewReader(nil)}); !errors.Is(err, errArtifactPath) {
		t.Fatalf("expected path error, got %v", err)
	}
}

type recordingPutter struct {
	bucket string
	key    string
	body   []byte
	opts   minio.PutObjectOptions
}

func (r *recordingPutter) PutObject(_ context.Context, bucket, key string, reader io.Reader, _ int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	r.bucket, r.key, r.opts = bucket, key, opts
	r.body, _ = io.ReadAll(reader)
	return minio.UploadInfo{Bucket: bucket, Key: key}, nil
}

func TestMinIOStorePut(t *testing.T) {
	putter := &recordingPutter{}
	store := newMinIOStore(putter, "artifacts", "/site/")

	err := store.Put(context.Background(), interfaces.Artifact{
		Path:         "sitemap.xml",
		Content:      bytes.NewReader([]byte("<urlset/>")),
		Size:         9,
		ContentType:  SitemapContentType,
		CacheControl: "public",
		Checksum:     "abc",
	})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if putter.bucket != "artifacts" || putter.key != "site/sitemap.xml" || string(putter.body) != "<urlset/>" {
		t.Fatalf("unexpected put %+v", putter)
	}
	if putter.opts.ContentType != SitemapContentType || putter.opts.CacheControl != "public" || putter.opts.UserMetadata["checksum-sha256"] != "abc" {
		t.Fatalf("unexpected options %+v", putter.opts)
	}
}
