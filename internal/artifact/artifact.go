package artifact

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("artifact not found")

const (
	ContentTypeText = "text/plain"
	ContentTypeJSON = "application/json"
)

type Kind int

const (
	KindTranscript Kind = iota
	KindSegments
	KindTranslatedSegments
)

func (k Kind) String() string {
	switch k {
	case KindTranscript:
		return "transcript"
	case KindSegments:
		return "segments"
	case KindTranslatedSegments:
		return "translated-segments"
	default:
		return "unknown"
	}
}

// Store is a flat blob store. Put overwrites, Get returns ErrNotFound on a miss.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, body []byte, contentType string) error
	Delete(ctx context.Context, key string) error
}
