package httpapi

import (
	"context"
	"time"

	"github.com/foxseedlab/kikitori/internal/account"
	"github.com/foxseedlab/kikitori/internal/artifact"
	"github.com/foxseedlab/kikitori/internal/credential"
	"github.com/foxseedlab/kikitori/internal/feed"
	"github.com/foxseedlab/kikitori/internal/pipeline"
	"github.com/foxseedlab/kikitori/internal/repository"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const bodyLimitBytes = 1 << 20

type Pipeline interface {
	ReadCached(ctx context.Context, ref artifact.EpisodeRef) (*pipeline.Result, error)
	ForceCompute(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
	ComputeIfAbsent(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

type ChannelService interface {
	Register(ctx context.Context, userID, feedURL string) (*repository.Channel, error)
	List(ctx context.Context, userID string) ([]repository.Channel, error)
	Delete(ctx context.Context, userID string, channelID int64) error
	Episodes(ctx context.Context, feedURL string) ([]feed.Episode, error)
}

type AccountService interface {
	BeginLogin() (state, redirectURL string)
	CompleteLogin(ctx context.Context, code string) (*repository.Session, error)
	Logout(ctx context.Context, token string) error
	UserInfo(ctx context.Context, userID string) (*account.UserInfo, error)
	SaveAPIKeys(ctx context.Context, userID string, keys account.APIKeys) error
}

type Config struct {
	FrontendURL       string
	SessionCookieName string
	CookieSecure      bool
	PipelineTimeout   time.Duration
}

type Server struct {
	cfg      Config
	resolver *credential.Resolver
	pipeline Pipeline
	channels ChannelService
	accounts AccountService
}

func NewServer(cfg Config, resolver *credential.Resolver, p Pipeline, channels ChannelService, accounts AccountService) *Server {
	return &Server{cfg: cfg, resolver: resolver, pipeline: p, channels: channels, accounts: accounts}
}

func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "kikitori",
		BodyLimit:             bodyLimitBytes,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New())
	app.Use(accessLog())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.FrontendURL,
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowMethods:     "GET, POST, OPTIONS",
		AllowCredentials: true,
	}))
	app.Use(s.resolveSession)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Post("/episodes", s.handleEpisodes)
	app.Post("/get-saved-transcription", s.handleSavedTranscription)
	app.Post("/get-new-transcription", requireIdentity, s.handleNewTranscription)
	app.Post("/transcribe", requireIdentity, s.handleTranscribe)

	app.Post("/channel-register", requireIdentity, s.handleChannelRegister)
	app.Post("/channel-delete", requireIdentity, s.handleChannelDelete)
	app.Post("/channel-list", requireIdentity, s.handleChannelList)
	app.Get("/channel-list", requireIdentity, s.handleChannelList)

	auth := app.Group("/auth")
	auth.Get("/login", s.handleLogin)
	auth.Get("/callback", s.handleCallback)
	auth.Get("/logout", s.handleLogout)
	auth.Get("/me", requireIdentity, s.handleMe)
	auth.Get("/userInfo", requireIdentity, s.handleUserInfo)
	auth.Post("/saveApiKeys", requireIdentity, s.handleSaveAPIKeys)

	return app
}
