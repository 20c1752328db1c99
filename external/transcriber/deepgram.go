package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/foxseedlab/kikitori/internal/transcriber"
)

const (
	deepgramProvider        = "deepgram"
	maxDeepgramResponseSize = 64 << 20
)

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type DeepgramConfig struct {
	BaseURL string
	Model   string
	Client  HTTPDoer
}

type DeepgramTranscriber struct {
	baseURL string
	model   string
	client  HTTPDoer
}

func NewDeepgramTranscriber(cfg DeepgramConfig) transcriber.Transcriber {
	client := cfg.Client
	if client == nil {
		client = http.DefaultClient
	}
	return &DeepgramTranscriber{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		client:  client,
	}
}

type deepgramResponse struct {
	Results *struct {
		Channels []struct {
			Alternatives []deepgramAlternative `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

type deepgramAlternative struct {
	Transcript *string `json:"transcript"`
	Paragraphs *struct {
		Paragraphs []struct {
			Sentences []struct {
				Text  string  `json:"text"`
				Start float64 `json:"start"`
				End   float64 `json:"end"`
			} `json:"sentences"`
		} `json:"paragraphs"`
	} `json:"paragraphs"`
}

func (t *DeepgramTranscriber) Transcribe(ctx context.Context, audioURL, apiKey string) (*transcriber.Result, error) {
	if err := validateAudioURL(audioURL); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("model", t.model)
	q.Set("paragraphs", "true")
	q.Set("diarize", "true")
	endpoint := t.baseURL + "/v1/listen?" + q.Encode()

	body, err := json.Marshal(map[string]string{"url": audioURL})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+apiKey)

	slog.Debug("requesting deepgram transcription", "model", t.model)
	resp, err := t.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &transcriber.UpstreamError{Provider: deepgramProvider, Payload: transcriber.PayloadJSON([]byte(err.Error()))}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxDeepgramResponseSize))
	if err != nil {
		return nil, &transcriber.UpstreamError{Provider: deepgramProvider, StatusCode: resp.StatusCode, Payload: transcriber.PayloadJSON([]byte(err.Error()))}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &transcriber.UpstreamError{Provider: deepgramProvider, StatusCode: resp.StatusCode, Payload: transcriber.PayloadJSON(raw)}
	}

	var parsed deepgramResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &transcriber.UpstreamError{Provider: deepgramProvider, StatusCode: resp.StatusCode, Payload: transcriber.PayloadJSON(raw)}
	}
	alt, err := firstAlternative(parsed)
	if err != nil {
		return nil, &transcriber.UpstreamError{Provider: deepgramProvider, StatusCode: resp.StatusCode, Payload: transcriber.PayloadJSON(raw)}
	}

	segments := []transcriber.Segment{}
	if alt.Paragraphs != nil {
		for _, p := range alt.Paragraphs.Paragraphs {
			for _, s := range p.Sentences {
				segments = append(segments, transcriber.Segment{Start: s.Start, End: s.End, Text: s.Text})
			}
		}
	}
	return &transcriber.Result{Transcript: *alt.Transcript, Segments: segments}, nil
}

func firstAlternative(r deepgramResponse) (*deepgramAlternative, error) {
	if r.Results == nil || len(r.Results.Channels) == 0 {
		return nil, errors.New("response has no channels")
	}
	alts := r.Results.Channels[0].Alternatives
	if len(alts) == 0 {
		return nil, errors.New("response has no alternatives")
	}
	if alts[0].Transcript == nil {
		return nil, errors.New("response has no transcript")
	}
	return &alts[0], nil
}

func validateAudioURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: %q", transcriber.ErrInvalidAudioURL, raw)
	}
	return nil
}
