package transcriber

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	speech "cloud.google.com/go/speech/apiv2"
	speechpb "cloud.google.com/go/speech/apiv2/speechpb"
	"github.com/foxseedlab/kikitori/internal/transcriber"
	"google.golang.org/api/option"
	"google.golang.org/grpc/status"
)

const (
	cloudSpeechProvider   = "google_speech"
	speechAPIEndpointPort = 443
	maxDiarizationSpeaker = 6
)

var errAudioTooLarge = errors.New("audio exceeds maximum size for synchronous recognition")

type CloudSpeechConfig struct {
	ProjectID     string
	Language      string
	Location      string
	Model         string
	MaxAudioBytes int64
	Client        HTTPDoer
}

// CloudSpeechTranscriber downloads the episode audio and sends it inline to
// Speech-to-Text v2. The caller's key is used as a Google API key.
type CloudSpeechTranscriber struct {
	projectID     string
	language      string
	location      string
	model         string
	maxAudioBytes int64
	client        HTTPDoer
}

func NewCloudSpeechTranscriber(cfg CloudSpeechConfig) transcriber.Transcriber {
	location := strings.TrimSpace(cfg.Location)
	if location == "" {
		location = "global"
	}
	client := cfg.Client
	if client == nil {
		client = http.DefaultClient
	}
	return &CloudSpeechTranscriber{
		projectID:     cfg.ProjectID,
		language:      cfg.Language,
		location:      location,
		model:         strings.TrimSpace(cfg.Model),
		maxAudioBytes: cfg.MaxAudioBytes,
		client:        client,
	}
}

func (t *CloudSpeechTranscriber) Transcribe(ctx context.Context, audioURL, apiKey string) (*transcriber.Result, error) {
	if err := validateAudioURL(audioURL); err != nil {
		return nil, err
	}
	audio, err := t.downloadAudio(ctx, audioURL)
	if err != nil {
		return nil, err
	}

	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if t.location != "global" {
		opts = append(opts, option.WithEndpoint(fmt.Sprintf("%s-speech.googleapis.com:%d", t.location, speechAPIEndpointPort)))
	}
	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create speech client: %w", err)
	}
	defer func() {
		_ = client.Close()
	}()

	slog.Info("requesting cloud speech recognition", "location", t.location, "model", t.model, "audio_bytes", len(audio))
	resp, err := client.Recognize(ctx, t.recognizeRequest(audio))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, grpcUpstreamError(err)
	}
	return resultFromRecognize(resp), nil
}

func (t *CloudSpeechTranscriber) recognizeRequest(audio []byte) *speechpb.RecognizeRequest {
	return &speechpb.RecognizeRequest{
		Recognizer: fmt.Sprintf("projects/%s/locations/%s/recognizers/_", t.projectID, t.location),
		Config: &speechpb.RecognitionConfig{
			Model:         t.model,
			LanguageCodes: []string{t.language},
			DecodingConfig: &speechpb.RecognitionConfig_AutoDecodingConfig{
				AutoDecodingConfig: &speechpb.AutoDetectDecodingConfig{},
			},
			Features: &speechpb.RecognitionFeatures{
				EnableWordTimeOffsets:      true,
				EnableAutomaticPunctuation: true,
				DiarizationConfig: &speechpb.SpeakerDiarizationConfig{
					MinSpeakerCount: 1,
					MaxSpeakerCount: maxDiarizationSpeaker,
				},
			},
		},
		AudioSource: &speechpb.RecognizeRequest_Content{Content: audio},
	}
}

func (t *CloudSpeechTranscriber) downloadAudio(ctx context.Context, audioURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", transcriber.ErrInvalidAudioURL, err)
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, audioDownloadError(ctx, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: audio download returned status %d", transcriber.ErrInvalidAudioURL, resp.StatusCode)
	}
	audio, err := io.ReadAll(io.LimitReader(resp.Body, t.maxAudioBytes+1))
	if err != nil {
		return nil, audioDownloadError(ctx, err)
	}
	if int64(len(audio)) > t.maxAudioBytes {
		return nil, &transcriber.UpstreamError{
			Provider: cloudSpeechProvider,
			Payload:  transcriber.PayloadJSON([]byte(fmt.Sprintf("%s (%d bytes)", errAudioTooLarge, t.maxAudioBytes))),
		}
	}
	return audio, nil
}

// audioDownloadError keeps cancellation visible and otherwise reports the
// transport failure as an upstream error carrying its message.
func audioDownloadError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	payload, _ := json.Marshal(map[string]string{"message": "download audio: " + err.Error()})
	return &transcriber.UpstreamError{Provider: cloudSpeechProvider, Payload: payload}
}

// resultFromRecognize turns each recognition result into one segment running
// from the previous result's end offset to its own.
func resultFromRecognize(resp *speechpb.RecognizeResponse) *transcriber.Result {
	segments := []transcriber.Segment{}
	texts := make([]string, 0, len(resp.GetResults()))
	var prevEnd float64
	for _, r := range resp.GetResults() {
		if len(r.GetAlternatives()) == 0 {
			continue
		}
		text := strings.TrimSpace(r.GetAlternatives()[0].GetTranscript())
		end := prevEnd
		if r.GetResultEndOffset() != nil {
			end = r.GetResultEndOffset().AsDuration().Seconds()
		}
		if text != "" {
			segments = append(segments, transcriber.Segment{Start: prevEnd, End: end, Text: text})
			texts = append(texts, text)
		}
		prevEnd = end
	}
	return &transcriber.Result{Transcript: strings.Join(texts, " "), Segments: segments}
}

func grpcUpstreamError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return &transcriber.UpstreamError{Provider: cloudSpeechProvider, Payload: transcriber.PayloadJSON([]byte(err.Error()))}
	}
	payload, _ := json.Marshal(map[string]string{"code": st.Code().String(), "message": st.Message()})
	return &transcriber.UpstreamError{Provider: cloudSpeechProvider, Payload: payload}
}
