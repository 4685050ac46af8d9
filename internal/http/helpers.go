package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-folio/internal/auth"
	"github.com/goliatone/go-folio/internal/content"
	"github.com/goliatone/go-folio/internal/media"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeError(c *gin.Context, err error) {
	status, payload := mapError(err)
	c.AbortWithStatusJSON(status, payload)
}

// mapError translates domain and command errors into a status and a body.
// Upstream and internal details never reach the client.
func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Error: "unknown error"}
	}

	var rejected *media.ValidationError
	if errors.As(err, &rejected) {
		return http.StatusBadRequest, errorResponse{Error: rejected.Reason, Code: "invalid_upload"}
	}

	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized, errorResponse{Error: "Unauthorized"}
	case errors.Is(err, content.ErrDocumentNotFound), goerrors.IsCategory(err, goerrors.CategoryNotFound):
		return http.StatusNotFound, errorResponse{Error: "not found", Code: "not_found"}
	case errors.Is(err, media.ErrUpstream), goerrors.IsCategory(err, goerrors.CategoryExternal):
		return http.StatusInternalServerError, errorResponse{Error: "Failed to upload image", Code: "upstream_failure"}
	case goerrors.IsCategory(err, goerrors.CategoryValidation):
		return http.StatusBadRequest, errorResponse{Error: validationMessage(err), Code: "invalid_request"}
	default:
		return http.StatusInternalServerError, errorResponse{Error: "internal error"}
	}
}

func validationMessage(err error) string {
	if inner := errors.Unwrap(err); inner != nil {
		return inner.Error()
	}
	return err.Error()
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func queryBool(c *gin.Context, key string) bool {
	ok, _ := strconv.ParseBool(strings.TrimSpace(c.Query(key)))
	return ok
}
