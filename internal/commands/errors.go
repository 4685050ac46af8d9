package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-folio/internal/content"
	"github.com/goliatone/go-folio/internal/media"
)

const (
	commandValidationCode   = "COMMAND_VALIDATION_FAILED"
	commandContextCanceled  = "COMMAND_CONTEXT_CANCELED"
	commandContextTimeout   = "COMMAND_CONTEXT_TIMEOUT"
	commandContextErrorCode = "COMMAND_CONTEXT_ERROR"
	commandExecuteFailed    = "COMMAND_EXECUTION_FAILED"

	schemaViolationCode = "CONTENT_SCHEMA_VIOLATION"
	notFoundCode        = "CONTENT_NOT_FOUND"
	mediaRejectedCode   = "MEDIA_VALIDATION_FAILED"
	mediaUpstreamCode   = "MEDIA_UPSTREAM_FAILED"
)

func wrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "command validation failed").
		WithTextCode(commandValidationCode)
}

func wrapContextError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution cancelled").
			WithTextCode(commandContextCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution deadline exceeded").
			WithTextCode(commandContextTimeout)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command context error").
			WithTextCode(commandContextErrorCode)
	}
}

// wrapExecuteError tags domain failures with their go-errors category. The
// original error stays reachable through errors.Is.
func wrapExecuteError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, content.ErrSchemaViolation):
		return goerrors.Wrap(err, goerrors.CategoryValidation, "content schema violation").
			WithTextCode(schemaViolationCode)
	case errors.Is(err, content.ErrDocumentNotFound):
		return goerrors.Wrap(err, goerrors.CategoryNotFound, "document not found").
			WithTextCode(notFoundCode)
	case errors.Is(err, media.ErrValidation):
		return goerrors.Wrap(err, goerrors.CategoryValidation, "media upload rejected").
			WithTextCode(mediaRejectedCode)
	case errors.Is(err, media.ErrUpstream):
		return goerrors.Wrap(err, goerrors.CategoryExternal, "media upstream failure").
			WithTextCode(mediaUpstreamCode)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return wrapContextError(err)
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution failed").
		WithTextCode(commandExecuteFailed)
}
