package channel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/foxseedlab/kikitori/internal/feed"
	"github.com/foxseedlab/kikitori/internal/repository"
)

var ErrNotFound = errors.New("channel not found")

type Service struct {
	repo    repository.ChannelRepository
	fetcher feed.Fetcher
}

func NewService(repo repository.ChannelRepository, fetcher feed.Fetcher) *Service {
	return &Service{repo: repo, fetcher: fetcher}
}

// Register stores the feed for userID. The same feed may be registered by
// several users; each gets its own record.
func (s *Service) Register(ctx context.Context, userID, feedURL string) (*repository.Channel, error) {
	f, err := s.fetcher.Fetch(ctx, feedURL)
	if err != nil {
		return nil, err
	}
	ch, err := s.repo.CreateChannel(ctx, repository.CreateChannelInput{
		UserID:      userID,
		FeedURL:     feedURL,
		Title:       f.Title,
		ImageURL:    f.ImageURL,
		Description: f.Description,
	})
	if err != nil {
		return nil, fmt.Errorf("create channel: %w", err)
	}
	slog.Info("channel registered", "user_id", userID, "channel_id", ch.ID, "feed_url", feedURL)
	return ch, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]repository.Channel, error) {
	return s.repo.ListChannelsByUser(ctx, userID)
}

func (s *Service) Delete(ctx context.Context, userID string, channelID int64) error {
	deleted, err := s.repo.DeleteChannel(ctx, userID, channelID)
	if err != nil {
		return fmt.Errorf("delete channel: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}
	slog.Info("channel deleted", "user_id", userID, "channel_id", channelID)
	return nil
}

func (s *Service) Episodes(ctx context.Context, feedURL string) ([]feed.Episode, error) {
	f, err := s.fetcher.Fetch(ctx, feedURL)
	if err != nil {
		return nil, err
	}
	return f.Episodes, nil
}
