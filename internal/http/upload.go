package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	mediacmd "github.com/goliatone/go-folio/internal/commands/media"
	"github.com/goliatone/go-folio/internal/media"
)

type uploadResponse struct {
	Success  bool   `json:"success"`
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// upload reads the multipart "file" and optional "folder" fields and runs
// the ingest command. Type and size checks happen in the gateway.
func (r *routes) upload(c *gin.Context) {
	if r.deps.Uploads == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, errorResponse{Error: "uploads are not configured"})
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, uploadLimit())

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "file too large, maximum size is 10MB", Code: "invalid_upload"})
			return
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "no file provided", Code: "invalid_upload"})
		return
	}
	file, err := header.Open()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "no file provided", Code: "invalid_upload"})
		return
	}
	defer file.Close()

	var ref media.AssetReference
	cmd := mediacmd.IngestAssetCommand{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Folder:      strings.TrimSpace(c.PostForm("folder")),
		Body:        file,
		Result:      func(result media.AssetReference) { ref = result },
	}
	if err := r.deps.Uploads.Execute(c.Request.Context(), cmd); err != nil {
		r.logger.WithContext(c.Request.Context()).Warn("http.upload.failed", "error", err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, uploadResponse{
		Success:  true,
		URL:      ref.URL,
		PublicID: ref.PublicID,
		Width:    ref.Width,
		Height:   ref.Height,
	})
}
