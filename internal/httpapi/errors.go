package httpapi

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/foxseedlab/kikitori/internal/account"
	"github.com/foxseedlab/kikitori/internal/channel"
	"github.com/foxseedlab/kikitori/internal/credential"
	"github.com/foxseedlab/kikitori/internal/feed"
	"github.com/foxseedlab/kikitori/internal/identity"
	"github.com/foxseedlab/kikitori/internal/pipeline"
	"github.com/foxseedlab/kikitori/internal/transcriber"
	"github.com/foxseedlab/kikitori/internal/translator"
	"github.com/gofiber/fiber/v2"
)

var errUnauthorized = errors.New("unauthorized")

// validationError is a malformed request. Its message is returned as is.
type validationError struct {
	msg string
}

func (e *validationError) Error() string {
	return e.msg
}

func badRequest(msg string) error {
	return &validationError{msg: msg}
}

type errorBody struct {
	Error    string `json:"error"`
	Provider string `json:"provider,omitempty"`
	Details  any    `json:"details,omitempty"`
}

func classify(err error) (int, errorBody) {
	var (
		ve        *validationError
		upstream  *transcriber.UpstreamError
		transport *translator.TransportError
		fe        *fiber.Error
	)
	switch {
	case errors.As(err, &ve):
		return fiber.StatusBadRequest, errorBody{Error: ve.msg}
	case errors.Is(err, errUnauthorized):
		return fiber.StatusUnauthorized, errorBody{Error: "Unauthorized"}
	case errors.Is(err, identity.ErrInvalidLogin):
		return fiber.StatusUnauthorized, errorBody{Error: "login failed", Details: err.Error()}
	case errors.Is(err, credential.ErrSpeechToTextKeyMissing), errors.Is(err, credential.ErrTranslationKeyMissing):
		return fiber.StatusInternalServerError, errorBody{Error: err.Error()}
	case errors.Is(err, transcriber.ErrInvalidAudioURL):
		return fiber.StatusBadRequest, errorBody{Error: "invalid audio url", Details: err.Error()}
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout, errorBody{Error: "request timed out"}
	case errors.As(err, &upstream):
		return fiber.StatusInternalServerError, errorBody{Error: transcriber.ErrUpstream.Error(), Provider: upstream.Provider, Details: rawOrNil(upstream.Payload)}
	case errors.As(err, &transport):
		body := errorBody{Error: "translation request failed", Provider: transport.Provider, Details: rawOrNil(transport.Payload)}
		if body.Details == nil {
			body.Details = transport.Error()
		}
		return fiber.StatusInternalServerError, body
	case errors.Is(err, pipeline.ErrStorage):
		return fiber.StatusInternalServerError, errorBody{Error: pipeline.ErrStorage.Error(), Details: err.Error()}
	case errors.Is(err, feed.ErrEmptyFeed):
		return fiber.StatusBadRequest, errorBody{Error: "No items found in RSS feed"}
	case errors.Is(err, feed.ErrInvalidURL):
		return fiber.StatusBadRequest, errorBody{Error: "Invalid request body", Details: err.Error()}
	case errors.Is(err, channel.ErrNotFound), errors.Is(err, account.ErrUserNotFound):
		return fiber.StatusNotFound, errorBody{Error: err.Error()}
	case errors.As(err, &fe):
		return fe.Code, errorBody{Error: fe.Message}
	default:
		return fiber.StatusInternalServerError, errorBody{Error: "internal server error"}
	}
}

func statusForError(err error) int {
	status, _ := classify(err)
	return status
}

func errorHandler(c *fiber.Ctx, err error) error {
	status, body := classify(err)
	return c.Status(status).JSON(body)
}

func rawOrNil(payload json.RawMessage) any {
	if len(payload) == 0 {
		return nil
	}
	return payload
}
