package translator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnavailable means the provider answered but returned no usable translation.
var ErrUnavailable = errors.New("translation unavailable")

// TransportError means the request itself failed: network, non-2xx status or an
// undecodable body.
type TransportError struct {
	Provider   string
	StatusCode int
	Payload    json.RawMessage
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s translation request failed: %v", e.Provider, e.Err)
	case e.StatusCode > 0:
		return fmt.Sprintf("%s translation request failed with status %d", e.Provider, e.StatusCode)
	default:
		return fmt.Sprintf("%s translation request failed", e.Provider)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Translator returns exactly one string per input text, in input order.
type Translator interface {
	Translate(ctx context.Context, texts []string, apiKey string) ([]string, error)
}
