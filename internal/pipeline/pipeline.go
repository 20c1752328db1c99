package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/foxseedlab/kikitori/internal/artifact"
	"github.com/foxseedlab/kikitori/internal/transcriber"
	"github.com/foxseedlab/kikitori/internal/translator"
)

// KeySource yields the caller's provider keys. Implementations return a
// distinct error when a key is not configured.
type KeySource interface {
	SpeechToTextKey(ctx context.Context) (string, error)
	TranslationKey(ctx context.Context) (string, error)
}

const notifyTimeout = 2 * time.Minute

// Notifier is told about every fresh transcription. It runs in the background,
// outside the request and its episode lock; its errors are logged only.
type Notifier interface {
	NotifyTranscribed(ctx context.Context, ref artifact.EpisodeRef, result *transcriber.Result) error
}

type Request struct {
	ChannelTitle string
	EpisodeTitle string
	AudioURL     string
	Translate    bool
	Keys         KeySource
}

func (r Request) Ref() artifact.EpisodeRef {
	return artifact.EpisodeRef{ChannelTitle: r.ChannelTitle, EpisodeTitle: r.EpisodeTitle}
}

// Result is what every pipeline operation returns. Translation is nil when no
// translation is available; TranslationError explains why when one was asked for.
type Result struct {
	Original         string
	Segments         []transcriber.Segment
	Translation      []string
	TranslationError string
}

type Orchestrator struct {
	store       artifact.Store
	transcriber transcriber.Transcriber
	translator  translator.Translator
	notifier    Notifier
	locks       *keyLock
	pending     sync.WaitGroup
}

func New(store artifact.Store, tr transcriber.Transcriber, tl translator.Translator, notifier Notifier) *Orchestrator {
	return &Orchestrator{
		store:       store,
		transcriber: tr,
		translator:  tl,
		notifier:    notifier,
		locks:       newKeyLock(),
	}
}

// ReadCached returns nil without an error when nothing was transcribed yet.
func (o *Orchestrator) ReadCached(ctx context.Context, ref artifact.EpisodeRef) (*Result, error) {
	cached, err := o.readTranscription(ctx, ref)
	if err != nil || cached == nil {
		return nil, err
	}
	res := &Result{Original: cached.Transcript, Segments: cached.Segments}
	translation, err := o.readTranslation(ctx, ref)
	if err != nil {
		return nil, err
	}
	res.Translation = translation
	return res, nil
}

// ForceCompute transcribes regardless of cached artifacts and overwrites them.
func (o *Orchestrator) ForceCompute(ctx context.Context, req Request) (*Result, error) {
	speechKey, err := req.Keys.SpeechToTextKey(ctx)
	if err != nil {
		return nil, err
	}
	var translationKey string
	if req.Translate {
		if translationKey, err = req.Keys.TranslationKey(ctx); err != nil {
			return nil, err
		}
	}

	ref := req.Ref()
	unlock, err := o.locks.Lock(ctx, ref.Key(artifact.KindTranscript))
	if err != nil {
		return nil, err
	}
	defer unlock()

	transcribed, err := o.transcribe(ctx, req, speechKey)
	if err != nil {
		return nil, err
	}
	res := &Result{Original: transcribed.Transcript, Segments: transcribed.Segments}
	if !req.Translate {
		return res, nil
	}
	if err := o.translate(ctx, ref, res, translationKey); err != nil {
		return nil, err
	}
	return res, nil
}

// ComputeIfAbsent transcribes only on a cache miss and reuses a cached
// translation when there is one.
func (o *Orchestrator) ComputeIfAbsent(ctx context.Context, req Request) (*Result, error) {
	ref := req.Ref()
	cached, err := o.readTranscription(ctx, ref)
	if err != nil {
		return nil, err
	}
	var translationKey string
	if cached == nil {
		unlock, err := o.locks.Lock(ctx, ref.Key(artifact.KindTranscript))
		if err != nil {
			return nil, err
		}
		defer unlock()

		// Another request may have filled the cache while we waited.
		if cached, err = o.readTranscription(ctx, ref); err != nil {
			return nil, err
		}
		if cached == nil {
			speechKey, err := req.Keys.SpeechToTextKey(ctx)
			if err != nil {
				return nil, err
			}
			if req.Translate {
				if translationKey, err = req.Keys.TranslationKey(ctx); err != nil {
					return nil, err
				}
			}
			if cached, err = o.transcribe(ctx, req, speechKey); err != nil {
				return nil, err
			}
		}
	} else {
		slog.Debug("transcription cache hit", "channel_title", ref.ChannelTitle, "episode_title", ref.EpisodeTitle)
	}

	res := &Result{Original: cached.Transcript, Segments: cached.Segments}
	if !req.Translate {
		return res, nil
	}
	translation, err := o.readTranslation(ctx, ref)
	if err != nil {
		return nil, err
	}
	if translation != nil {
		res.Translation = translation
		return res, nil
	}
	if translationKey == "" {
		if translationKey, err = req.Keys.TranslationKey(ctx); err != nil {
			return nil, err
		}
	}
	if err := o.translate(ctx, ref, res, translationKey); err != nil {
		return nil, err
	}
	return res, nil
}

func (o *Orchestrator) transcribe(ctx context.Context, req Request, apiKey string) (*transcriber.Result, error) {
	ref := req.Ref()
	slog.Info("transcribing episode", "channel_title", ref.ChannelTitle, "episode_title", ref.EpisodeTitle)
	transcribed, err := o.transcriber.Transcribe(ctx, req.AudioURL, apiKey)
	if err != nil {
		return nil, err
	}
	if transcribed.Segments == nil {
		transcribed.Segments = []transcriber.Segment{}
	}
	// A translation of the previous transcript would no longer line up with
	// the new segments.
	if err := artifact.DeleteTranslation(ctx, o.store, ref); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if err := artifact.WriteTranscription(ctx, o.store, ref, transcribed); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	slog.Info("transcription stored", "channel_title", ref.ChannelTitle, "episode_title", ref.EpisodeTitle, "segments", len(transcribed.Segments))

	o.notify(ctx, ref, transcribed)
	return transcribed, nil
}

func (o *Orchestrator) notify(ctx context.Context, ref artifact.EpisodeRef, transcribed *transcriber.Result) {
	if o.notifier == nil {
		return
	}
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	o.pending.Add(1)
	go func() {
		defer o.pending.Done()
		defer cancel()
		if err := o.notifier.NotifyTranscribed(notifyCtx, ref, transcribed); err != nil {
			slog.Warn("failed to send transcription notification", "channel_title", ref.ChannelTitle, "episode_title", ref.EpisodeTitle, "error", err)
		}
	}()
}

// Wait blocks until every background notification has finished.
func (o *Orchestrator) Wait() {
	o.pending.Wait()
}

// translate fills res.Translation. A provider that answers without usable
// translations leaves the result untranslated; a failed request fails it.
func (o *Orchestrator) translate(ctx context.Context, ref artifact.EpisodeRef, res *Result, apiKey string) error {
	translation := []string{}
	if len(res.Segments) > 0 {
		out, err := o.translator.Translate(ctx, transcriber.Texts(res.Segments), apiKey)
		if errors.Is(err, translator.ErrUnavailable) {
			slog.Warn("translation unavailable", "channel_title", ref.ChannelTitle, "episode_title", ref.EpisodeTitle)
			res.TranslationError = err.Error()
			return nil
		}
		if err != nil {
			return err
		}
		translation = out
	}
	if err := artifact.WriteTranslation(ctx, o.store, ref, translation); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	res.Translation = translation
	return nil
}

func (o *Orchestrator) readTranscription(ctx context.Context, ref artifact.EpisodeRef) (*transcriber.Result, error) {
	cached, err := artifact.ReadTranscription(ctx, o.store, ref)
	if errors.Is(err, artifact.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return cached, nil
}

func (o *Orchestrator) readTranslation(ctx context.Context, ref artifact.EpisodeRef) ([]string, error) {
	translation, err := artifact.ReadTranslation(ctx, o.store, ref)
	if errors.Is(err, artifact.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return translation, nil
}
