package channel

import (
	"context"
	"errors"
	"testing"

	"github.com/foxseedlab/kikitori/internal/feed"
	"github.com/foxseedlab/kikitori/internal/repository"
)

type memoryRepo struct {
	nextID int64
	rows   []repository.Channel
}

func (m *memoryRepo) CreateChannel(_ context.Context, in repository.CreateChannelInput) (*repository.Channel, error) {
	m.nextID++
	c := repository.Channel{ID: m.nextID, UserID: in.UserID, FeedURL: in.FeedURL, Title: in.Title, ImageURL: in.ImageURL, Description: in.Description}
	m.rows = append(m.rows, c)
	return &c, nil
}

func (m *memoryRepo) ListChannelsByUser(_ context.Context, userID string) ([]repository.Channel, error) {
	var out []repository.Channel
	for i := len(m.rows) - 1; i >= 0; i-- {
		if m.rows[i].UserID == userID {
			out = append(out, m.rows[i])
		}
	}
	return out, nil
}

func (m *memoryRepo) DeleteChannel(_ context.Context, userID string, id int64) (bool, error) {
	for i, c := range m.rows {
		if c.ID == id && c.UserID == userID {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type fakeFetcher struct {
	feed *feed.Feed
	err  error
}

func (f *fakeFetcher) Fetch(context.Context, string) (*feed.Feed, error) {
	return f.feed, f.err
}

func techTalk() *feed.Feed {
	return &feed.Feed{
		Title:       "Tech Talk",
		Description: "Weekly",
		ImageURL:    "https://cdn.example.com/cover.jpg",
		Episodes:    []feed.Episode{{Title: "Ep 1", AudioURL: "https://cdn.example.com/ep1.mp3"}},
	}
}

func TestRegister_SameFeedDifferentUsers(t *testing.T) {
	repo := &memoryRepo{}
	s := NewService(repo, &fakeFetcher{feed: techTalk()})

	a, err := s.Register(context.Background(), "user-a", "https://example.com/rss")
	if err != nil {
		t.Fatalf("register a: %v", err)
	}
	b, err := s.Register(context.Background(), "user-b", "https://example.com/rss")
	if err != nil {
		t.Fatalf("register b: %v", err)
	}
	if a.ID == b.ID || len(repo.rows) != 2 {
		t.Fatalf("expected two records, got %+v", repo.rows)
	}
	if a.Title != "Tech Talk" || a.ImageURL != "https://cdn.example.com/cover.jpg" {
		t.Fatalf("unexpected channel: %+v", a)
	}
}

func TestRegister_EmptyFeed(t *testing.T) {
	repo := &memoryRepo{}
	s := NewService(repo, &fakeFetcher{err: feed.ErrEmptyFeed})
	if _, err := s.Register(context.Background(), "u", "https://example.com/rss"); !errors.Is(err, feed.ErrEmptyFeed) {
		t.Fatalf("expected ErrEmptyFeed, got %v", err)
	}
	if len(repo.rows) != 0 {
		t.Fatal("nothing must be stored for an empty feed")
	}
}

func TestListAndDeleteAreOwnerScoped(t *testing.T) {
	repo := &memoryRepo{}
	s := NewService(repo, &fakeFetcher{feed: techTalk()})
	first, _ := s.Register(context.Background(), "user-a", "https://example.com/1")
	second, _ := s.Register(context.Background(), "user-a", "https://example.com/2")
	other, _ := s.Register(context.Background(), "user-b", "https://example.com/1")

	list, err := s.List(context.Background(), "user-a")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("expected newest first, got %+v", list)
	}

	if err := s.Delete(context.Background(), "user-a", other.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting another user's channel, got %v", err)
	}
	if err := s.Delete(context.Background(), "user-a", first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	list, _ = s.List(context.Background(), "user-a")
	if len(list) != 1 {
		t.Fatalf("expected one remaining channel, got %d", len(list))
	}
}

func TestEpisodes(t *testing.T) {
	s := NewService(&memoryRepo{}, &fakeFetcher{feed: techTalk()})
	eps, err := s.Episodes(context.Background(), "https://example.com/rss")
	if err != nil {
		t.Fatalf("episodes: %v", err)
	}
	if len(eps) != 1 || eps[0].AudioURL != "https://cdn.example.com/ep1.mp3" {
		t.Fatalf("unexpected episodes: %+v", eps)
	}
}
