package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmcdole/gofeed"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	mediacmd "github.com/goliatone/go-folio/internal/commands/media"
	"github.com/goliatone/go-folio/internal/content"
	"github.com/goliatone/go-folio/internal/generator"
	"github.com/goliatone/go-folio/internal/media"
	"github.com/goliatone/go-folio/internal/metrics"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

var builtAt = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAuthenticator struct{}

func (fakeAuthenticator) Authenticate(_ context.Context, bearer string) (interfaces.Identity, error) {
	if bearer == "Bearer good" {
		return interfaces.Identity{Subject: "user-1"}, nil
	}
	return interfaces.Identity{}, errors.New("invalid token")
}

type fakeUploader struct {
	calls int
	req   interfaces.AssetUploadRequest
	err   error
}

func (f *fakeUploader) Upload(_ context.Context, req interfaces.AssetUploadRequest) (*interfaces.AssetUploadResult, error) {
	f.calls++
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return &interfaces.AssetUploadResult{
		PublicID:  req.Folder + "/cover",
		SecureURL: "https://res.cloudinary.com/demo/image/upload/" + req.Folder + "/cover.jpg",
		Width:     1200,
		Height:    630,
	}, nil
}

func testCollection(t *testing.T) *content.Collection {
	t.Helper()
	coll := content.NewCollection()
	add := func(path, title, date string, published bool, tags ...string) {
		at, err := time.Parse("2006-01-02", date)
		require.NoError(t, err)
		doc, err := content.NewDocument(path, content.Metadata{
			Title:       title,
			Description: "About " + title,
			PublishedAt: at,
			IsPublished: published,
			Author:      "Ana",
			Tags:        tags,
		}, "body words")
		require.NoError(t, err)
		require.NoError(t, coll.AddOrReplace(doc))
	}
	add("blog/first", "First", "2024-01-01", true, "go")
	add("blog/second", "Second", "2024-03-01", true, "go", "web")
	add("blog/draft", "Draft", "2024-05-01", false)
	coll.Freeze()
	return coll
}

type fixture struct {
	engine   *gin.Engine
	uploader *fakeUploader
	metrics  *metrics.Collectors
}

func newFixture(t *testing.T, coll *content.Collection, cfg Config) fixture {
	t.Helper()
	uploader := &fakeUploader{}
	collectors := metrics.New()
	registry := prometheus.NewRegistry()
	collectors.Register(registry)

	gateway, err := media.NewGateway(uploader, media.Config{CloudName: "demo"}, media.WithObserver(collectors))
	require.NoError(t, err)

	if cfg.Site.BaseURL == "" {
		cfg.Site = generator.Site{Name: "Folio", Description: "Notes", BaseURL: "https://example.com", Language: "pt-BR"}
	}
	engine, err := NewRouter(cfg, Dependencies{
		Collections: CollectionSourceFunc(func() (*content.Collection, time.Time) {
			return coll, builtAt
		}),
		Uploads:       mediacmd.NewIngestAssetHandler(gateway, nil),
		Authenticator: fakeAuthenticator{},
		Metrics:       collectors,
		Gatherer:      registry,
	})
	require.NoError(t, err)
	return fixture{engine: engine, uploader: uploader, metrics: collectors}
}

func (f fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)
	return rec
}

func uploadRequest(t *testing.T, filename, contentType string, data []byte, folder string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if filename != "" {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	if folder != "" {
		require.NoError(t, writer.WriteField("folder", folder))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestFeedRoute(t *testing.T) {
	f := newFixture(t, testCollection(t), Config{})
	rec := f.do(httptest.NewRequest(http.MethodGet, "/rss.xml", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, generator.FeedContentType, rec.Header().Get("Content-Type"))
	require.Equal(t, generator.FeedCacheControl, rec.Header().Get("Cache-Control"))
	require.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	feed, err := gofeed.NewParser().ParseString(rec.Body.String())
	require.NoError(t, err)
	require.Len(t, feed.Items, 2)
	require.Equal(t, "Second", feed.Items[0].Title)
}

func TestSitemapAndRobotsRoutes(t *testing.T) {
	f := newFixture(t, testCollection(t), Config{})

	rec := f.do(httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "<loc>https://example.com/blog/first</loc>")
	require.NotContains(t, rec.Body.String(), "draft")

	rec = f.do(httptest.NewRequest(http.MethodGet, "/robots.txt", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Sitemap: https://example.com/sitemap.xml")
}

func TestRoutesAnswerUnavailableBeforeFirstBuild(t *testing.T) {
	f := newFixture(t, nil, Config{})
	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/posts", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"ready":false`)
}

func TestListPostsPaginatesAndFilters(t *testing.T) {
	f := newFixture(t, testCollection(t), Config{PerPage: 1, MaxPerPage: 5})

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/posts?page=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Items []struct {
			Slug string `json:"slug"`
		} `json:"items"`
		Page       int  `json:"page"`
		TotalItems int  `json:"totalItems"`
		TotalPages int  `json:"totalPages"`
		HasPrev    bool `json:"hasPrev"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Equal(t, 2, page.Page)
	require.Equal(t, 2, page.TotalItems)
	require.Equal(t, 2, page.TotalPages)
	require.True(t, page.HasPrev)
	require.Len(t, page.Items, 1)
	require.Equal(t, "first", page.Items[0].Slug)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/posts?tag=web&per_page=50", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Equal(t, 1, page.TotalItems)
	require.Equal(t, "second", page.Items[0].Slug)
}

func TestListPostsFarPageIsEmpty(t *testing.T) {
	f := newFixture(t, testCollection(t), Config{PerPage: 10, MaxPerPage: 50})

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/posts?page=9223372036854775807", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Items      []json.RawMessage `json:"items"`
		TotalItems int               `json:"totalItems"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Empty(t, page.Items)
	require.Equal(t, 2, page.TotalItems)
}

func TestGetPostReturnsStructuredData(t *testing.T) {
	f := newFixture(t, testCollection(t), Config{})
	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/posts/second", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		StructuredData struct {
			Article    map[string]any `json:"article"`
			Breadcrumb map[string]any `json:"breadcrumb"`
		} `json:"structured_data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "BlogPosting", payload.StructuredData.Article["@type"])
	require.Equal(t, "BreadcrumbList", payload.StructuredData.Breadcrumb["@type"])
}

func TestGetPostHidesUnknownAndUnpublished(t *testing.T) {
	f := newFixture(t, testCollection(t), Config{})
	for _, slug := range []string{"missing", "draft"} {
		rec := f.do(httptest.NewRequest(http.MethodGet, "/api/posts/"+slug, nil))
		require.Equal(t, http.StatusNotFound, rec.Code, slug)
	}
}

func TestUploadRequiresIdentity(t *testing.T) {
	f := newFixture(t, testCollection(t), Config{})

	rec := f.do(uploadRequest(t, "cover.jpg", "image/jpeg", []byte("jpeg"), ""))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())

	req := uploadRequest(t, "cover.jpg", "image/jpeg", []byte("jpeg"), "")
	req.Header.Set("Authorization", "Bearer bad")
	rec = f.do(req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Zero(t, f.uploader.calls)
}

func TestUploadStoresAsset(t *testing.T) {
	f := newFixture(t, testCollection(t), Config{})
	req := uploadRequest(t, "cover.jpg", "image/jpeg", []byte("jpeg"), "")
	req.Header.Set("Authorization", "Bearer good")

	rec := f.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload uploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.True(t, payload.Success)
	require.Equal(t, "blog/cover", payload.PublicID)
	require.Equal(t, 1200, payload.Width)
	require.Equal(t, "blog", f.uploader.req.Folder)
	require.Equal(t, 1200, f.uploader.req.Transformation.Width)
	require.Equal(t, 630, f.uploader.req.Transformation.Height)
}

func TestUploadRejectsInvalidInput(t *testing.T) {
	f := newFixture(t, testCollection(t), Config{})

	cases := map[string]*http.Request{
		"missing file": uploadRequest(t, "", "", nil, "covers"),
		"wrong type":   uploadRequest(t, "doc.pdf", "application/pdf", []byte("%PDF"), ""),
		"bad folder":   uploadRequest(t, "cover.png", "image/png", []byte("png"), "../etc"),
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			req.Header.Set("Authorization", "Bearer good")
			rec := f.do(req)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Contains(t, rec.Body.String(), `"error"`)
		})
	}
	require.Zero(t, f.uploader.calls)
}

func TestUploadMapsUpstreamFailure(t *testing.T) {
	f := newFixture(t, testCollection(t), Config{})
	f.uploader.err = errors.New("cloud exploded")

	req := uploadRequest(t, "cover.webp", "image/webp", []byte("webp"), "covers")
	req.Header.Set("Authorization", "Bearer good")
	rec := f.do(req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "exploded")
	require.Equal(t, 1, f.uploader.calls)
}

func TestUploadRateLimit(t *testing.T) {
	f := newFixture(t, testCollection(t), Config{UploadRate: 0.001, UploadBurst: 1})

	send := func() int {
		req := uploadRequest(t, "cover.gif", "image/gif", []byte("gif"), "")
		req.Header.Set("Authorization", "Bearer good")
		return f.do(req).Code
	}
	require.Equal(t, http.StatusOK, send())
	require.Equal(t, http.StatusTooManyRequests, send())
}

func TestMetricsRoute(t *testing.T) {
	f := newFixture(t, testCollection(t), Config{})
	req := uploadRequest(t, "cover.jpg", "image/jpeg", []byte("jpeg"), "")
	req.Header.Set("Authorization", "Bearer good")
	require.Equal(t, http.StatusOK, f.do(req).Code)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), `folio_media_ingests_total{outcome="accepted"} 1`))
}

func TestMapError(t *testing.T) {
	status, _ := mapError(&content.NotFoundError{Slug: "x"})
	require.Equal(t, http.StatusNotFound, status)

	status, body := mapError(&media.ValidationError{Field: "size", Reason: "file too large, maximum size is 10MB"})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "file too large, maximum size is 10MB", body.Error)

	status, _ = mapError(errors.New("boom"))
	require.Equal(t, http.StatusInternalServerError, status)
}
