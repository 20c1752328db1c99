package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/foxseedlab/kikitori/internal/artifact"
	storage_go "github.com/supabase-community/storage-go"
)

type fakeBucket struct {
	objects     map[string][]byte
	contentType map[string]string
	upserts     map[string]bool
	uploadErr   error
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{objects: map[string][]byte{}, contentType: map[string]string{}, upserts: map[string]bool{}}
}

func (f *fakeBucket) UploadFile(bucketID, path string, data io.Reader, opts storage_go.FileOptions) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	body, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.objects[bucketID+"/"+path] = body
	if opts.ContentType != nil {
		f.contentType[path] = *opts.ContentType
	}
	if opts.Upsert != nil {
		f.upserts[path] = *opts.Upsert
	}
	return nil
}

func (f *fakeBucket) DownloadFile(bucketID, path string) ([]byte, error) {
	body, ok := f.objects[bucketID+"/"+path]
	if !ok {
		return nil, errors.New(`{"statusCode":"404","error":"not_found","message":"Object not found"}`)
	}
	return body, nil
}

func (f *fakeBucket) RemoveFile(bucketID string, paths []string) error {
	for _, p := range paths {
		delete(f.objects, bucketID+"/"+p)
	}
	return nil
}

func storeWith(bucketID string, bucket objectBucket) *SupabaseStore {
	return &SupabaseStore{bucket: bucketID, open: func() (objectBucket, error) { return bucket, nil }}
}

func TestSupabaseStore_PutGet(t *testing.T) {
	bucket := newFakeBucket()
	s := storeWith("transcription-bucket", bucket)
	key := "transcriptions/A_B.txt"

	if err := s.Put(context.Background(), key, []byte("hello"), artifact.ContentTypeText); err != nil {
		t.Fatalf("put: %v", err)
	}
	if bucket.contentType[key] != artifact.ContentTypeText || !bucket.upserts[key] {
		t.Fatalf("expected upsert with content type, got %q upsert=%v", bucket.contentType[key], bucket.upserts[key])
	}
	got, err := s.Get(context.Background(), key)
	if err != nil || string(got) != "hello" {
		t.Fatalf("got %q err=%v", got, err)
	}
}

func TestSupabaseStore_MissIsNotFound(t *testing.T) {
	s := storeWith("b", newFakeBucket())
	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, artifact.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSupabaseStore_UploadError(t *testing.T) {
	bucket := newFakeBucket()
	bucket.uploadErr = errors.New("permission denied")
	s := storeWith("b", bucket)
	err := s.Put(context.Background(), "k", []byte("x"), artifact.ContentTypeJSON)
	if err == nil || errors.Is(err, artifact.ErrNotFound) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

// storageServer mimics the Supabase Storage object endpoints and records the
// decoded object path of every request.
type storageServer struct {
	mu           sync.Mutex
	objects      map[string][]byte
	paths        []string
	typeMismatch []string
}

func newStorageServer(t *testing.T) (*storageServer, *httptest.Server) {
	t.Helper()
	ss := &storageServer{objects: map[string][]byte{}}
	srv := httptest.NewServer(http.HandlerFunc(ss.handle))
	t.Cleanup(srv.Close)
	return ss, srv
}

func (s *storageServer) handle(w http.ResponseWriter, r *http.Request) {
	const prefix = "/storage/v1/object/b/"
	s.mu.Lock()
	defer s.mu.Unlock()
	switch r.Method {
	case http.MethodPost:
		name := strings.TrimPrefix(r.URL.Path, prefix)
		s.paths = append(s.paths, name)
		want := artifact.ContentTypeText
		if strings.HasSuffix(name, ".json") {
			want = artifact.ContentTypeJSON
		}
		if got := r.Header.Get("Content-Type"); got != want {
			s.typeMismatch = append(s.typeMismatch, fmt.Sprintf("%s: %s", name, got))
		}
		body, _ := io.ReadAll(r.Body)
		s.objects[name] = body
		_, _ = fmt.Fprintf(w, `{"Key":%q}`, "b/"+name)
	case http.MethodGet:
		name := strings.TrimPrefix(r.URL.Path, prefix)
		s.paths = append(s.paths, name)
		body, ok := s.objects[name]
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"statusCode":"404","error":"not_found","message":"Object not found"}`))
			return
		}
		_, _ = w.Write(body)
	case http.MethodDelete:
		var req struct {
			Prefixes []string `json:"prefixes"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		for _, p := range req.Prefixes {
			delete(s.objects, p)
		}
		_, _ = w.Write([]byte(`[]`))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestSupabaseStore_KeysKeepSpecialCharacters(t *testing.T) {
	ss, srv := newStorageServer(t)
	s, err := NewSupabaseStore(SupabaseConfig{URL: srv.URL, ServiceKey: "service-key", Bucket: "b"})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()
	first := artifact.EpisodeRef{ChannelTitle: "Show", EpisodeTitle: "Episode #12"}.Key(artifact.KindTranscript)
	second := artifact.EpisodeRef{ChannelTitle: "Show?", EpisodeTitle: "Episode #13 100%"}.Key(artifact.KindTranscript)

	if err := s.Put(ctx, first, []byte("twelve"), artifact.ContentTypeText); err != nil {
		t.Fatalf("put first: %v", err)
	}
	if err := s.Put(ctx, second, []byte("thirteen"), artifact.ContentTypeText); err != nil {
		t.Fatalf("put second: %v", err)
	}
	ss.mu.Lock()
	paths := append([]string(nil), ss.paths...)
	ss.mu.Unlock()
	if len(paths) != 2 || paths[0] != first || paths[1] != second {
		t.Fatalf("object paths = %q, want %q and %q", paths, first, second)
	}

	got, err := s.Get(ctx, first)
	if err != nil || string(got) != "twelve" {
		t.Fatalf("get first = %q, %v", got, err)
	}
	got, err = s.Get(ctx, second)
	if err != nil || string(got) != "thirteen" {
		t.Fatalf("get second = %q, %v", got, err)
	}

	if err := s.Delete(ctx, first); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, first); !errors.Is(err, artifact.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestSupabaseStore_ConcurrentPutsKeepTheirContentType(t *testing.T) {
	ss, srv := newStorageServer(t)
	s, err := NewSupabaseStore(SupabaseConfig{URL: srv.URL, ServiceKey: "service-key", Bucket: "b"})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key, contentType := fmt.Sprintf("transcriptions/ep%d.txt", i), artifact.ContentTypeText
			if i%2 == 1 {
				key, contentType = fmt.Sprintf("transcriptions_segments/ep%d_segments.json", i), artifact.ContentTypeJSON
			}
			errs <- s.Put(context.Background(), key, []byte("x"), contentType)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("put: %v", err)
		}
	}

	ss.mu.Lock()
	defer ss.mu.Unlock()
	if len(ss.objects) != 8 {
		t.Fatalf("expected 8 objects, got %d", len(ss.objects))
	}
	if len(ss.typeMismatch) > 0 {
		t.Fatalf("uploads sent the wrong content type: %v", ss.typeMismatch)
	}
}
