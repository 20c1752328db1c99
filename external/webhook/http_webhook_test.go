package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/foxseedlab/kikitori/internal/webhook"
)

func samplePayload() webhook.TranscriptionCompletedPayload {
	return webhook.TranscriptionCompletedPayload{
		Event:         "transcription.completed",
		ChannelTitle:  "Tech Talk",
		EpisodeTitle:  "Ep 1",
		TranscriptKey: "transcriptions/Tech Talk_Ep 1.txt",
		SegmentCount:  2,
		Transcript:    "Hello world. Goodbye.",
		CompletedAt:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestSendTranscriptionCompleted_EmptyWebhookURL(t *testing.T) {
	sender := NewHTTPSender("", nil)
	if err := sender.SendTranscriptionCompleted(context.Background(), samplePayload()); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestSendTranscriptionCompleted_Success(t *testing.T) {
	var got webhook.TranscriptionCompletedPayload

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("unexpected content type: %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	sender := NewHTTPSender(server.URL, server.Client())
	if err := sender.SendTranscriptionCompleted(context.Background(), samplePayload()); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got.EpisodeTitle != "Ep 1" || got.SegmentCount != 2 || got.TranscriptKey != "transcriptions/Tech Talk_Ep 1.txt" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestSendTranscriptionCompleted_Non2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	sender := NewHTTPSender(server.URL, nil)
	if err := sender.SendTranscriptionCompleted(context.Background(), samplePayload()); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
