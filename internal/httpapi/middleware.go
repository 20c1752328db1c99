package httpapi

import (
	"log/slog"
	"time"

	"github.com/foxseedlab/kikitori/internal/credential"
	"github.com/gofiber/fiber/v2"
)

const identityLocalKey = "identity"

func accessLog() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			status = statusForError(err)
		}
		attrs := []any{
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
		}
		if id := identityFrom(c); id != nil {
			attrs = append(attrs, "user_id", id.UserID)
		}
		if status >= fiber.StatusInternalServerError {
			slog.Error("request failed", append(attrs, "error", err)...)
		} else {
			slog.Info("request", attrs...)
		}
		return err
	}
}

// resolveSession attaches the caller's identity when the cookie names a live
// session. It never rejects; routes that need an identity use requireIdentity.
func (s *Server) resolveSession(c *fiber.Ctx) error {
	token := c.Cookies(s.cfg.SessionCookieName)
	if token == "" {
		return c.Next()
	}
	identity, err := s.resolver.Resolve(c.UserContext(), token)
	if err != nil {
		return err
	}
	if identity != nil {
		c.Locals(identityLocalKey, identity)
	}
	return c.Next()
}

func requireIdentity(c *fiber.Ctx) error {
	if identityFrom(c) == nil {
		return errUnauthorized
	}
	return c.Next()
}

func identityFrom(c *fiber.Ctx) *credential.Identity {
	id, _ := c.Locals(identityLocalKey).(*credential.Identity)
	return id
}
