package transcriber

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrUpstream        = errors.New("upstream transcription failure")
	ErrInvalidAudioURL = errors.New("invalid audio url")
)

// Segment is one time-aligned piece of a transcript. Offsets are seconds.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Result keeps the provider's own transcript as the canonical text; it is not
// rebuilt from Segments.
type Result struct {
	Transcript string
	Segments   []Segment
}

func Texts(segments []Segment) []string {
	texts := make([]string, len(segments))
	for i, s := range segments {
		texts[i] = s.Text
	}
	return texts
}

// UpstreamError carries the provider's error body untouched.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Payload    json.RawMessage
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s transcription failed with status %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s transcription failed", e.Provider)
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

// PayloadJSON wraps a non-JSON provider message as a JSON string.
func PayloadJSON(body []byte) json.RawMessage {
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	quoted, _ := json.Marshal(string(body))
	return quoted
}

// Transcriber builds its provider client from apiKey on every call.
type Transcriber interface {
	Transcribe(ctx context.Context, audioURL, apiKey string) (*Result, error)
}
