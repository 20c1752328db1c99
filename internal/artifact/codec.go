package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/foxseedlab/kikitori/internal/transcriber"
)

// ReadTranscription returns ErrNotFound unless both the transcript and its
// segments are stored.
func ReadTranscription(ctx context.Context, s Store, ref EpisodeRef) (*transcriber.Result, error) {
	text, err := s.Get(ctx, ref.Key(KindTranscript))
	if err != nil {
		return nil, err
	}
	raw, err := s.Get(ctx, ref.Key(KindSegments))
	if err != nil {
		return nil, err
	}
	var segments []transcriber.Segment
	if err := json.Unmarshal(raw, &segments); err != nil {
		return nil, fmt.Errorf("decode %s: %w", ref.Key(KindSegments), err)
	}
	if segments == nil {
		segments = []transcriber.Segment{}
	}
	return &transcriber.Result{Transcript: string(text), Segments: segments}, nil
}

// WriteTranscription stores segments then transcript. When the transcript put
// fails the segments blob is removed so the pair is never half present.
func WriteTranscription(ctx context.Context, s Store, ref EpisodeRef, res *transcriber.Result) error {
	segments := res.Segments
	if segments == nil {
		segments = []transcriber.Segment{}
	}
	raw, err := json.Marshal(segments)
	if err != nil {
		return fmt.Errorf("encode segments: %w", err)
	}
	segKey := ref.Key(KindSegments)
	if err := s.Put(ctx, segKey, raw, ContentTypeJSON); err != nil {
		return fmt.Errorf("put %s: %w", segKey, err)
	}
	textKey := ref.Key(KindTranscript)
	if err := s.Put(ctx, textKey, []byte(res.Transcript), ContentTypeText); err != nil {
		if delErr := s.Delete(context.WithoutCancel(ctx), segKey); delErr != nil && !errors.Is(delErr, ErrNotFound) {
			slog.Error("failed to roll back segments artifact", "key", segKey, "error", delErr)
		}
		return fmt.Errorf("put %s: %w", textKey, err)
	}
	return nil
}

// ReadTranslation returns ErrNotFound when no translation was stored. A stored
// JSON null is treated the same way.
func ReadTranslation(ctx context.Context, s Store, ref EpisodeRef) ([]string, error) {
	raw, err := s.Get(ctx, ref.Key(KindTranslatedSegments))
	if err != nil {
		return nil, err
	}
	var translation []string
	if err := json.Unmarshal(raw, &translation); err != nil {
		return nil, fmt.Errorf("decode %s: %w", ref.Key(KindTranslatedSegments), err)
	}
	if translation == nil {
		return nil, ErrNotFound
	}
	return translation, nil
}

func WriteTranslation(ctx context.Context, s Store, ref EpisodeRef, translation []string) error {
	if translation == nil {
		translation = []string{}
	}
	raw, err := json.Marshal(translation)
	if err != nil {
		return fmt.Errorf("encode translation: %w", err)
	}
	key := ref.Key(KindTranslatedSegments)
	if err := s.Put(ctx, key, raw, ContentTypeJSON); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// DeleteTranslation drops a stored translation. A missing one is not an error.
func DeleteTranslation(ctx context.Context, s Store, ref EpisodeRef) error {
	key := ref.Key(KindTranslatedSegments)
	if err := s.Delete(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
