package feed

import (
	"context"
	"errors"
)

var (
	ErrEmptyFeed  = errors.New("no items found in RSS feed")
	ErrInvalidURL = errors.New("invalid feed url")
)

// Episode is derived from the feed on every request and never stored.
type Episode struct {
	Title           string `json:"title"`
	AudioURL        string `json:"audioUrl"`
	Description     string `json:"description"`
	DescriptionText string `json:"descriptionText"`
	PubDate         string `json:"pubDate"`
	Duration        string `json:"duration,omitempty"`
}

type Feed struct {
	Title       string
	Description string
	ImageURL    string
	Episodes    []Episode
}

// Fetcher returns ErrEmptyFeed when the feed has no items.
type Fetcher interface {
	Fetch(ctx context.Context, feedURL string) (*Feed, error)
}
