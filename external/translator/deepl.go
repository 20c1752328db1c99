package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/foxseedlab/kikitori/internal/translator"
)

const (
	deeplProvider        = "deepl"
	maxDeepLResponseSize = 16 << 20
)

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type DeepLConfig struct {
	BaseURL    string
	SourceLang string
	TargetLang string
	Client     HTTPDoer
}

type DeepLTranslator struct {
	baseURL    string
	sourceLang string
	targetLang string
	client     HTTPDoer
}

func NewDeepLTranslator(cfg DeepLConfig) translator.Translator {
	client := cfg.Client
	if client == nil {
		client = http.DefaultClient
	}
	return &DeepLTranslator{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		sourceLang: strings.ToUpper(cfg.SourceLang),
		targetLang: strings.ToUpper(cfg.TargetLang),
		client:     client,
	}
}

type deeplRequest struct {
	Text       []string `json:"text"`
	SourceLang string   `json:"source_lang"`
	TargetLang string   `json:"target_lang"`
}

type deeplResponse struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
	} `json:"translations"`
}

func (t *DeepLTranslator) Translate(ctx context.Context, texts []string, apiKey string) ([]string, error) {
	if len(texts) == 0 {
		return []string{}, nil
	}

	body, err := json.Marshal(deeplRequest{Text: texts, SourceLang: t.sourceLang, TargetLang: t.targetLang})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/v2/translate", bytes.NewReader(body))
	if err != nil {
		return nil, &translator.TransportError{Provider: deeplProvider, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "DeepL-Auth-Key "+apiKey)

	slog.Debug("requesting deepl translation", "texts", len(texts), "target_lang", t.targetLang)
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &translator.TransportError{Provider: deeplProvider, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxDeepLResponseSize))
	if err != nil {
		return nil, &translator.TransportError{Provider: deeplProvider, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &translator.TransportError{Provider: deeplProvider, StatusCode: resp.StatusCode, Payload: payloadJSON(raw)}
	}

	var parsed deeplResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &translator.TransportError{Provider: deeplProvider, StatusCode: resp.StatusCode, Payload: payloadJSON(raw), Err: err}
	}
	if len(parsed.Translations) == 0 || len(parsed.Translations) != len(texts) {
		slog.Warn("deepl returned unusable translation count", "requested", len(texts), "returned", len(parsed.Translations))
		return nil, translator.ErrUnavailable
	}

	out := make([]string, len(parsed.Translations))
	for i, tr := range parsed.Translations {
		out[i] = tr.Text
	}
	return out, nil
}

func payloadJSON(body []byte) json.RawMessage {
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	quoted, _ := json.Marshal(string(body))
	return quoted
}
