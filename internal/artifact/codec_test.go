package artifact

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/foxseedlab/kikitori/internal/transcriber"
)

type memoryStore struct {
	mu       sync.Mutex
	blobs    map[string][]byte
	types    map[string]string
	failPuts map[string]error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{blobs: map[string][]byte{}, types: map[string]string{}, failPuts: map[string]error{}}
}

func (m *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blobs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return b, nil
}

func (m *memoryStore) Put(_ context.Context, key string, body []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failPuts[key]; err != nil {
		return err
	}
	m.blobs[key] = body
	m.types[key] = contentType
	return nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
	return nil
}

var ref = EpisodeRef{ChannelTitle: "Tech Talk", EpisodeTitle: "Ep 1"}

func TestKeyLayout(t *testing.T) {
	cases := map[Kind]string{
		KindTranscript:         "transcriptions/Tech Talk_Ep 1.txt",
		KindSegments:           "transcriptions_segments/Tech Talk_Ep 1_segments.json",
		KindTranslatedSegments: "translations_segments/Tech Talk_Ep 1_segments.json",
	}
	for kind, want := range cases {
		if got := ref.Key(kind); got != want {
			t.Fatalf("%s: expected %q, got %q", kind, want, got)
		}
	}
}

func TestTranscriptionRoundTrip(t *testing.T) {
	s := newMemoryStore()
	res := &transcriber.Result{
		Transcript: "Hello world. Goodbye.",
		Segments:   []transcriber.Segment{{Start: 0, End: 1, Text: "Hello world."}, {Start: 1, End: 2, Text: "Goodbye."}},
	}
	if err := WriteTranscription(context.Background(), s, ref, res); err != nil {
		t.Fatalf("write: %v", err)
	}
	if s.types[ref.Key(KindTranscript)] != ContentTypeText || s.types[ref.Key(KindSegments)] != ContentTypeJSON {
		t.Fatalf("unexpected content types: %+v", s.types)
	}
	got, err := ReadTranscription(context.Background(), s, ref)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Transcript != res.Transcript || len(got.Segments) != 2 || got.Segments[1].Text != "Goodbye." {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestReadTranscription_Miss(t *testing.T) {
	if _, err := ReadTranscription(context.Background(), newMemoryStore(), ref); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReadTranscription_NullSegments(t *testing.T) {
	s := newMemoryStore()
	s.blobs[ref.Key(KindTranscript)] = []byte("hi")
	s.blobs[ref.Key(KindSegments)] = []byte("null")
	got, err := ReadTranscription(context.Background(), s, ref)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Segments == nil || len(got.Segments) != 0 {
		t.Fatalf("expected empty segments, got %#v", got.Segments)
	}
}

func TestWriteTranscription_RollsBackSegments(t *testing.T) {
	s := newMemoryStore()
	s.failPuts[ref.Key(KindTranscript)] = errors.New("bucket unavailable")
	err := WriteTranscription(context.Background(), s, ref, &transcriber.Result{Transcript: "x"})
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := s.blobs[ref.Key(KindSegments)]; ok {
		t.Fatal("segments must not remain without transcript")
	}
}

func TestTranslationRoundTrip(t *testing.T) {
	s := newMemoryStore()
	if _, err := ReadTranslation(context.Background(), s, ref); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := WriteTranslation(context.Background(), s, ref, []string{"こんにちは世界。", "さようなら。"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadTranslation(context.Background(), s, ref)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 2 || got[0] != "こんにちは世界。" {
		t.Fatalf("unexpected translation: %v", got)
	}
}

func TestReadTranslation_NullIsAbsent(t *testing.T) {
	s := newMemoryStore()
	s.blobs[ref.Key(KindTranslatedSegments)] = []byte("null")
	if _, err := ReadTranslation(context.Background(), s, ref); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

type notFoundDeleteStore struct {
	*memoryStore
}

func (s notFoundDeleteStore) Delete(context.Context, string) error {
	return ErrNotFound
}

func TestDeleteTranslation(t *testing.T) {
	s := newMemoryStore()
	if err := WriteTranslation(context.Background(), s, ref, []string{"一。"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := DeleteTranslation(context.Background(), s, ref); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := ReadTranslation(context.Background(), s, ref); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := DeleteTranslation(context.Background(), notFoundDeleteStore{newMemoryStore()}, ref); err != nil {
		t.Fatalf("missing translation must not be an error, got %v", err)
	}
}
