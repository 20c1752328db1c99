package httpapi

import (
	"context"
	"net/url"
	"strings"

	"github.com/foxseedlab/kikitori/internal/artifact"
	"github.com/foxseedlab/kikitori/internal/feed"
	"github.com/foxseedlab/kikitori/internal/pipeline"
	"github.com/foxseedlab/kikitori/internal/transcriber"
	"github.com/gofiber/fiber/v2"
)

type channelPayload struct {
	ID          int64  `json:"id"`
	RSSURL      string `json:"rss_url"`
	Title       string `json:"title"`
	ImageURL    string `json:"image_url"`
	Description string `json:"description"`
}

type episodePayload struct {
	AudioURL    string `json:"audioUrl"`
	Title       string `json:"title"`
	Description string `json:"description"`
	PubDate     string `json:"pubDate"`
	Duration    string `json:"duration"`
}

type transcriptionRequest struct {
	Episode         *episodePayload `json:"episode"`
	Channel         *channelPayload `json:"channel"`
	ShouldTranslate bool            `json:"shouldTranslate"`
}

type transcriptionBody struct {
	Original         string                `json:"original"`
	Segments         []transcriber.Segment `json:"segments"`
	Translation      *[]string             `json:"translation,omitempty"`
	TranslationError string                `json:"translationError,omitempty"`
}

type transcriptionResponse struct {
	Transcription *transcriptionBody `json:"transcription,omitempty"`
}

type episodesRequest struct {
	Channel *channelPayload `json:"channel"`
}

type episodesResponse struct {
	Episodes []feed.Episode `json:"episodes"`
}

func (s *Server) handleEpisodes(c *fiber.Ctx) error {
	var req episodesRequest
	if err := c.BodyParser(&req); err != nil || req.Channel == nil || strings.TrimSpace(req.Channel.RSSURL) == "" {
		return badRequest("Invalid request body")
	}
	episodes, err := s.channels.Episodes(c.UserContext(), req.Channel.RSSURL)
	if err != nil {
		return err
	}
	return c.JSON(episodesResponse{Episodes: episodes})
}

func (s *Server) handleSavedTranscription(c *fiber.Ctx) error {
	req, err := parseTranscriptionRequest(c, false)
	if err != nil {
		return err
	}
	ctx, cancel := s.pipelineContext(c)
	defer cancel()

	res, err := s.pipeline.ReadCached(ctx, artifact.EpisodeRef{ChannelTitle: req.Channel.Title, EpisodeTitle: req.Episode.Title})
	if err != nil {
		return err
	}
	return c.JSON(newTranscriptionResponse(res))
}

func (s *Server) handleNewTranscription(c *fiber.Ctx) error {
	return s.compute(c, s.pipeline.ForceCompute)
}

func (s *Server) handleTranscribe(c *fiber.Ctx) error {
	return s.compute(c, s.pipeline.ComputeIfAbsent)
}

type computeFunc func(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)

func (s *Server) compute(c *fiber.Ctx, run computeFunc) error {
	req, err := parseTranscriptionRequest(c, true)
	if err != nil {
		return err
	}
	ctx, cancel := s.pipelineContext(c)
	defer cancel()

	res, err := run(ctx, pipeline.Request{
		ChannelTitle: req.Channel.Title,
		EpisodeTitle: req.Episode.Title,
		AudioURL:     req.Episode.AudioURL,
		Translate:    req.ShouldTranslate,
		Keys:         s.resolver.For(identityFrom(c)),
	})
	if err != nil {
		return err
	}
	return c.JSON(newTranscriptionResponse(res))
}

func (s *Server) pipelineContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	if s.cfg.PipelineTimeout <= 0 {
		return context.WithCancel(c.UserContext())
	}
	return context.WithTimeout(c.UserContext(), s.cfg.PipelineTimeout)
}

func parseTranscriptionRequest(c *fiber.Ctx, needAudio bool) (*transcriptionRequest, error) {
	var req transcriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, badRequest("Invalid request body")
	}
	if req.Episode == nil || req.Channel == nil || req.Episode.Title == "" || req.Channel.Title == "" {
		return nil, badRequest("episode.title and channel.title are required")
	}
	if needAudio && !isHTTPURL(req.Episode.AudioURL) {
		return nil, badRequest("episode.audioUrl must be an http(s) url")
	}
	return &req, nil
}

func newTranscriptionResponse(res *pipeline.Result) transcriptionResponse {
	if res == nil {
		return transcriptionResponse{}
	}
	body := &transcriptionBody{
		Original:         res.Original,
		Segments:         res.Segments,
		TranslationError: res.TranslationError,
	}
	if body.Segments == nil {
		body.Segments = []transcriber.Segment{}
	}
	if res.Translation != nil {
		translation := res.Translation
		body.Translation = &translation
	}
	return transcriptionResponse{Transcription: body}
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	return err == nil && u.Host != "" && (u.Scheme == "http" || u.Scheme == "https")
}
