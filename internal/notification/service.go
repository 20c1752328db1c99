package notification

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/foxseedlab/kikitori/internal/artifact"
	"github.com/foxseedlab/kikitori/internal/discord"
	"github.com/foxseedlab/kikitori/internal/transcriber"
	"github.com/foxseedlab/kikitori/internal/webhook"
)

type Config struct {
	DiscordChannelID     string
	DiscordShowPoweredBy bool
}

// Service fans a finished transcription out to the webhook and Discord.
// A nil discord client or empty channel id disables Discord.
type Service struct {
	cfg     Config
	webhook webhook.Sender
	discord discord.Client
	now     func() time.Time
}

func NewService(cfg Config, sender webhook.Sender, client discord.Client, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{cfg: cfg, webhook: sender, discord: client, now: now}
}

func (s *Service) NotifyTranscribed(ctx context.Context, ref artifact.EpisodeRef, result *transcriber.Result) error {
	var errs []error
	if s.webhook != nil {
		if err := s.webhook.SendTranscriptionCompleted(ctx, buildWebhookPayload(ref, result, s.now())); err != nil {
			errs = append(errs, err)
		}
	}
	if s.discord != nil && s.cfg.DiscordChannelID != "" {
		if err := s.postToDiscord(ctx, ref, result); err != nil {
			errs = append(errs, err)
		} else {
			slog.Debug("posted transcription to discord", "channel_id", s.cfg.DiscordChannelID)
		}
	}
	return errors.Join(errs...)
}

// postToDiscord attaches the transcript as a file unless there is nothing to attach.
func (s *Service) postToDiscord(ctx context.Context, ref artifact.EpisodeRef, result *transcriber.Result) error {
	content := buildCompletedMessage(ref, result, s.cfg.DiscordShowPoweredBy)
	if isEmptyTranscript(result) {
		return s.discord.SendChannelMessage(ctx, s.cfg.DiscordChannelID, content)
	}
	return s.discord.SendChannelMessageWithFile(ctx, discord.FileMessage{
		ChannelID: s.cfg.DiscordChannelID,
		Content:   content,
		Filename:  transcriptFilename(ref),
		FileBody:  buildTranscriptText(ref, result),
	})
}

// ChannelName resolves the configured Discord channel for startup logging.
func (s *Service) ChannelName() string {
	if s.discord == nil || s.cfg.DiscordChannelID == "" {
		return ""
	}
	return s.discord.ChannelName(s.cfg.DiscordChannelID)
}
