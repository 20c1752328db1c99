package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/foxseedlab/kikitori/internal/feed"
	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/singleflight"
)

type GofeedFetcher struct {
	parser *gofeed.Parser
	group  singleflight.Group
}

func NewGofeedFetcher(client *http.Client) *GofeedFetcher {
	p := gofeed.NewParser()
	if client != nil {
		p.Client = client
	}
	return &GofeedFetcher{parser: p}
}

// Fetch collapses concurrent fetches of the same URL into one request.
func (f *GofeedFetcher) Fetch(ctx context.Context, feedURL string) (*feed.Feed, error) {
	if err := validateFeedURL(feedURL); err != nil {
		return nil, err
	}
	v, err, shared := f.group.Do(feedURL, func() (any, error) {
		return f.fetch(context.WithoutCancel(ctx), feedURL)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		slog.Debug("shared feed fetch", "feed_url", feedURL)
	}
	return v.(*feed.Feed), nil
}

func (f *GofeedFetcher) fetch(ctx context.Context, feedURL string) (*feed.Feed, error) {
	parsed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		var httpErr gofeed.HTTPError
		if errors.As(err, &httpErr) {
			return nil, fmt.Errorf("failed to fetch RSS feed: status %d", httpErr.StatusCode)
		}
		return nil, fmt.Errorf("failed to parse RSS feed: %w", err)
	}
	if parsed == nil || len(parsed.Items) == 0 {
		return nil, feed.ErrEmptyFeed
	}
	return convertFeed(parsed), nil
}

func convertFeed(parsed *gofeed.Feed) *feed.Feed {
	out := &feed.Feed{
		Title:       parsed.Title,
		Description: parsed.Description,
		ImageURL:    feedImageURL(parsed),
		Episodes:    make([]feed.Episode, 0, len(parsed.Items)),
	}
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		ep := feed.Episode{
			Title:           item.Title,
			Description:     item.Description,
			DescriptionText: plainText(item.Description),
			PubDate:         item.Published,
		}
		if len(item.Enclosures) > 0 && item.Enclosures[0] != nil {
			ep.AudioURL = item.Enclosures[0].URL
		}
		if item.ITunesExt != nil {
			ep.Duration = item.ITunesExt.Duration
		}
		out.Episodes = append(out.Episodes, ep)
	}
	return out
}

func feedImageURL(parsed *gofeed.Feed) string {
	if parsed.Image != nil && parsed.Image.URL != "" {
		return parsed.Image.URL
	}
	if parsed.ITunesExt != nil {
		return parsed.ITunesExt.Image
	}
	return ""
}

// plainText strips markup from show notes. Plain descriptions pass through.
func plainText(description string) string {
	if !strings.Contains(description, "<") {
		return strings.TrimSpace(description)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(description))
	if err != nil {
		return strings.TrimSpace(description)
	}
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	lines := strings.Split(doc.Text(), "\n")
	kept := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}

func validateFeedURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: %q", feed.ErrInvalidURL, raw)
	}
	return nil
}
