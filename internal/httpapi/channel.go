package httpapi

import (
	"strconv"
	"strings"

	"github.com/foxseedlab/kikitori/internal/repository"
	"github.com/gofiber/fiber/v2"
)

type channelRegisterRequest struct {
	NewRSSURL string `json:"newRssUrl"`
}

// channelDeleteRequest accepts the id as a number or a numeric string.
type channelDeleteRequest struct {
	DelRSSID any `json:"delRssId"`
}

type channelListResponse struct {
	ChannelList []channelPayload `json:"channelList,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (s *Server) handleChannelRegister(c *fiber.Ctx) error {
	var req channelRegisterRequest
	if err := c.BodyParser(&req); err != nil || !isHTTPURL(req.NewRSSURL) {
		return badRequest("Invalid request body")
	}
	if _, err := s.channels.Register(c.UserContext(), identityFrom(c).UserID, strings.TrimSpace(req.NewRSSURL)); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(messageResponse{Message: "Podcast registered"})
}

func (s *Server) handleChannelDelete(c *fiber.Ctx) error {
	var req channelDeleteRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("Invalid request body")
	}
	id, ok := parseChannelID(req.DelRSSID)
	if !ok {
		return badRequest("delRssId must be a channel id")
	}
	if err := s.channels.Delete(c.UserContext(), identityFrom(c).UserID, id); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(messageResponse{Message: "Podcast deleted"})
}

func (s *Server) handleChannelList(c *fiber.Ctx) error {
	channels, err := s.channels.List(c.UserContext(), identityFrom(c).UserID)
	if err != nil {
		return err
	}
	return c.JSON(channelListResponse{ChannelList: toChannelPayloads(channels)})
}

func toChannelPayloads(channels []repository.Channel) []channelPayload {
	if len(channels) == 0 {
		return nil
	}
	out := make([]channelPayload, 0, len(channels))
	for _, ch := range channels {
		out = append(out, channelPayload{
			ID:          ch.ID,
			RSSURL:      ch.FeedURL,
			Title:       ch.Title,
			ImageURL:    ch.ImageURL,
			Description: ch.Description,
		})
	}
	return out
}

func parseChannelID(v any) (int64, bool) {
	switch id := v.(type) {
	case float64:
		if id != float64(int64(id)) || id <= 0 {
			return 0, false
		}
		return int64(id), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
		return n, err == nil && n > 0
	default:
		return 0, false
	}
}
