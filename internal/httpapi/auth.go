package httpapi

import (
	"time"

	"github.com/foxseedlab/kikitori/internal/account"
	"github.com/gofiber/fiber/v2"
)

const (
	oauthStateCookieName = "oauth_state"
	oauthStateTTL        = 10 * time.Minute
)

type successResponse struct {
	Success bool `json:"success"`
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	state, redirectURL := s.accounts.BeginLogin()
	s.setCookie(c, oauthStateCookieName, state, time.Now().Add(oauthStateTTL))
	return c.Redirect(redirectURL, fiber.StatusFound)
}

func (s *Server) handleCallback(c *fiber.Ctx) error {
	state := c.Query("state")
	if state == "" || state != c.Cookies(oauthStateCookieName) {
		return badRequest("invalid oauth state")
	}
	s.clearCookie(c, oauthStateCookieName)

	session, err := s.accounts.CompleteLogin(c.UserContext(), c.Query("code"))
	if err != nil {
		return err
	}
	s.setCookie(c, s.cfg.SessionCookieName, session.ID, session.ExpiresAt)
	return c.Redirect(s.cfg.FrontendURL, fiber.StatusFound)
}

func (s *Server) handleLogout(c *fiber.Ctx) error {
	token := c.Cookies(s.cfg.SessionCookieName)
	if token != "" {
		if err := s.accounts.Logout(c.UserContext(), token); err != nil {
			return err
		}
		s.clearCookie(c, s.cfg.SessionCookieName)
	}
	return c.JSON(successResponse{Success: true})
}

func (s *Server) handleMe(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"userId": identityFrom(c).UserID})
}

func (s *Server) handleUserInfo(c *fiber.Ctx) error {
	info, err := s.accounts.UserInfo(c.UserContext(), identityFrom(c).UserID)
	if err != nil {
		return err
	}
	return c.JSON(info)
}

func (s *Server) handleSaveAPIKeys(c *fiber.Ctx) error {
	var keys account.APIKeys
	if err := c.BodyParser(&keys); err != nil {
		return badRequest("Invalid request body")
	}
	if err := s.accounts.SaveAPIKeys(c.UserContext(), identityFrom(c).UserID, keys); err != nil {
		return err
	}
	return c.JSON(successResponse{Success: true})
}

func (s *Server) setCookie(c *fiber.Ctx, name, value string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: s.sameSite(),
	})
}

func (s *Server) clearCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: s.sameSite(),
	})
}

// Browsers drop SameSite=None cookies that are not Secure.
func (s *Server) sameSite() string {
	if s.cfg.CookieSecure {
		return fiber.CookieSameSiteNoneMode
	}
	return fiber.CookieSameSiteLaxMode
}
