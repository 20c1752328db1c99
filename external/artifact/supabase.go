package artifact

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/foxseedlab/kikitori/internal/artifact"
	storage_go "github.com/supabase-community/storage-go"
	supabase "github.com/supabase-community/supabase-go"
)

// objectBucket is the subset of the Supabase Storage client the store needs.
type objectBucket interface {
	UploadFile(bucketID, path string, data io.Reader, opts storage_go.FileOptions) error
	DownloadFile(bucketID, path string) ([]byte, error)
	RemoveFile(bucketID string, paths []string) error
}

type storageClient struct {
	c *storage_go.Client
}

func (s storageClient) UploadFile(bucketID, path string, data io.Reader, opts storage_go.FileOptions) error {
	_, err := s.c.UploadFile(bucketID, path, data, opts)
	return err
}

func (s storageClient) DownloadFile(bucketID, path string) ([]byte, error) {
	return s.c.DownloadFile(bucketID, path)
}

func (s storageClient) RemoveFile(bucketID string, paths []string) error {
	_, err := s.c.RemoveFile(bucketID, paths)
	return err
}

type SupabaseConfig struct {
	URL        string
	ServiceKey string
	Bucket     string
}

// SupabaseStore opens a new storage client for every call. storage-go keeps
// upload options in client-wide headers, so a shared client is not safe for
// concurrent uploads.
type SupabaseStore struct {
	bucket string
	open   func() (objectBucket, error)
}

func NewSupabaseStore(cfg SupabaseConfig) (*SupabaseStore, error) {
	if _, err := supabase.NewClient(cfg.URL, cfg.ServiceKey, nil); err != nil {
		return nil, fmt.Errorf("initialize supabase SDK: %w", err)
	}
	open := func() (objectBucket, error) {
		sdk, err := supabase.NewClient(cfg.URL, cfg.ServiceKey, nil)
		if err != nil {
			return nil, fmt.Errorf("initialize supabase SDK: %w", err)
		}
		return storageClient{c: sdk.Storage}, nil
	}
	return &SupabaseStore{bucket: cfg.Bucket, open: open}, nil
}

// The storage client is synchronous; ctx is only checked before each call.
func (s *SupabaseStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	client, err := s.open()
	if err != nil {
		return nil, err
	}
	body, err := client.DownloadFile(s.bucket, objectPath(key))
	if err != nil {
		if isObjectNotFound(err) {
			return nil, artifact.ErrNotFound
		}
		return nil, fmt.Errorf("download %s: %w", key, err)
	}
	return body, nil
}

func (s *SupabaseStore) Put(ctx context.Context, key string, body []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	upsert := true
	opts := storage_go.FileOptions{ContentType: &contentType, Upsert: &upsert}
	client, err := s.open()
	if err != nil {
		return err
	}
	if err := client.UploadFile(s.bucket, objectPath(key), bytes.NewReader(body), opts); err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

func (s *SupabaseStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	client, err := s.open()
	if err != nil {
		return err
	}
	// Removal sends object names in a JSON body, so the key stays unescaped.
	if err := client.RemoveFile(s.bucket, []string{key}); err != nil {
		if isObjectNotFound(err) {
			return artifact.ErrNotFound
		}
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// objectPath escapes each segment of key for the object URL. storage-go joins
// it into the URL as is, and titles may contain '#', '?' or '%'.
func objectPath(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func isObjectNotFound(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") || strings.Contains(msg, "not_found") || strings.Contains(msg, "404")
}
