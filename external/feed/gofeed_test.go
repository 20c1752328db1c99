package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/foxseedlab/kikitori/internal/feed"
)

const podcastRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd">
  <channel>
    <title>Tech Talk</title>
    <description>Weekly tech news</description>
    <itunes:image href="https://cdn.example.com/cover.jpg"/>
    <item>
      <title>Ep 2</title>
      <description><![CDATA[<p>Second <b>episode</b></p><p>More notes</p>]]></description>
      <pubDate>Tue, 07 Jan 2025 10:00:00 +0000</pubDate>
      <enclosure url="https://cdn.example.com/ep2.mp3" length="123" type="audio/mpeg"/>
      <itunes:duration>00:42:10</itunes:duration>
    </item>
    <item>
      <title>Ep 1</title>
      <description>First episode</description>
      <pubDate>Tue, 31 Dec 2024 10:00:00 +0000</pubDate>
      <enclosure url="https://cdn.example.com/ep1.mp3" length="123" type="audio/mpeg"/>
    </item>
  </channel>
</rss>`

const emptyRSS = `<?xml version="1.0"?><rss version="2.0"><channel><title>Empty</title></channel></rss>`

func TestFetch_ParsesPodcastFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(podcastRSS))
	}))
	defer server.Close()

	got, err := NewGofeedFetcher(server.Client()).Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got.Title != "Tech Talk" || got.Description != "Weekly tech news" {
		t.Fatalf("unexpected feed: %+v", got)
	}
	if got.ImageURL != "https://cdn.example.com/cover.jpg" {
		t.Fatalf("expected itunes image fallback, got %q", got.ImageURL)
	}
	if len(got.Episodes) != 2 {
		t.Fatalf("expected 2 episodes, got %d", len(got.Episodes))
	}
	ep := got.Episodes[0]
	if ep.Title != "Ep 2" || ep.AudioURL != "https://cdn.example.com/ep2.mp3" || ep.Duration != "00:42:10" {
		t.Fatalf("unexpected episode: %+v", ep)
	}
	if ep.PubDate != "Tue, 07 Jan 2025 10:00:00 +0000" {
		t.Fatalf("unexpected pubDate: %q", ep.PubDate)
	}
	if ep.DescriptionText != "Second episode\nMore notes" {
		t.Fatalf("unexpected description text: %q", ep.DescriptionText)
	}
	if got.Episodes[1].Duration != "" || got.Episodes[1].DescriptionText != "First episode" {
		t.Fatalf("unexpected second episode: %+v", got.Episodes[1])
	}
}

func TestFetch_EmptyFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(emptyRSS))
	}))
	defer server.Close()

	_, err := NewGofeedFetcher(server.Client()).Fetch(context.Background(), server.URL)
	if !errors.Is(err, feed.ErrEmptyFeed) {
		t.Fatalf("expected ErrEmptyFeed, got %v", err)
	}
}

func TestFetch_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewGofeedFetcher(server.Client()).Fetch(context.Background(), server.URL)
	if err == nil || errors.Is(err, feed.ErrEmptyFeed) {
		t.Fatalf("expected fetch error, got %v", err)
	}
}

func TestFetch_InvalidURL(t *testing.T) {
	_, err := NewGofeedFetcher(nil).Fetch(context.Background(), "not-a-url")
	if !errors.Is(err, feed.ErrInvalidURL) {
		t.Fatalf("expected ErrInvalidURL, got %v", err)
	}
}

func TestFetch_ConcurrentRequestsShareOneFetch(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		time.Sleep(50 * time.Millisecond)
		_, _ = w.Write([]byte(podcastRSS))
	}))
	defer server.Close()

	f := NewGofeedFetcher(server.Client())
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.Fetch(context.Background(), server.URL); err != nil {
				t.Errorf("fetch: %v", err)
			}
		}()
	}
	wg.Wait()
	if got := hits.Load(); got != 1 {
		t.Fatalf("expected a single upstream fetch, got %d", got)
	}
}

func TestPlainText(t *testing.T) {
	cases := map[string]string{
		"plain text":                       "plain text",
		"line one<br>line two":             "line one\nline two",
		`<a href="https://x">link</a> tail`: "link tail",
	}
	for in, want := range cases {
		if got := plainText(in); got != want {
			t.Fatalf("%q: expected %q, got %q", in, want, got)
		}
	}
}
