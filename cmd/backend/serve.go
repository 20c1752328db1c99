package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	artifactimpl "github.com/foxseedlab/kikitori/external/artifact"
	"github.com/foxseedlab/kikitori/external/discord"
	feedimpl "github.com/foxseedlab/kikitori/external/feed"
	identityimpl "github.com/foxseedlab/kikitori/external/identity"
	repositoryimpl "github.com/foxseedlab/kikitori/external/repository"
	transcriberimpl "github.com/foxseedlab/kikitori/external/transcriber"
	translatorimpl "github.com/foxseedlab/kikitori/external/translator"
	webhookimpl "github.com/foxseedlab/kikitori/external/webhook"
	"github.com/foxseedlab/kikitori/internal/account"
	"github.com/foxseedlab/kikitori/internal/artifact"
	"github.com/foxseedlab/kikitori/internal/channel"
	"github.com/foxseedlab/kikitori/internal/config"
	"github.com/foxseedlab/kikitori/internal/credential"
	"github.com/foxseedlab/kikitori/internal/feed"
	"github.com/foxseedlab/kikitori/internal/httpapi"
	"github.com/foxseedlab/kikitori/internal/identity"
	"github.com/foxseedlab/kikitori/internal/notification"
	"github.com/foxseedlab/kikitori/internal/pipeline"
	"github.com/foxseedlab/kikitori/internal/repository"
	"github.com/foxseedlab/kikitori/internal/transcriber"
	"github.com/foxseedlab/kikitori/internal/translator"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

func newServeCommand(loaded func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loaded()
			slog.Info("startup: configuration loaded", "env", cfg.Env, "transcription_provider", cfg.TranscriptionProvider, "artifact_backend", cfg.ArtifactBackend)

			slog.Info("startup: building dependency graph")
			injector := setupDI(cfg)
			server, orchestrator, err := buildServer(cfg, injector)
			if err != nil {
				return err
			}
			defer closeResources(injector)

			err = runServer(cmd.Context(), cfg, server)
			slog.Info("waiting for pending notifications")
			orchestrator.Wait()
			return err
		},
	}
}

func setupDI(cfg *config.Config) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	repositoryimpl.RegisterDI(injector)
	artifactimpl.RegisterDI(injector)
	transcriberimpl.RegisterDI(injector)
	translatorimpl.RegisterDI(injector)
	feedimpl.RegisterDI(injector)
	identityimpl.RegisterDI(injector)
	webhookimpl.RegisterDI(injector)
	discord.RegisterDI(injector)
	notification.RegisterDI(injector)

	return injector
}

func buildServer(cfg *config.Config, injector do.Injector) (*httpapi.Server, *pipeline.Orchestrator, error) {
	repo, err := do.Invoke[repository.Repository](injector)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve repository: %w", err)
	}
	store, err := do.Invoke[artifact.Store](injector)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve artifact store: %w", err)
	}
	notifier, err := do.Invoke[*notification.Service](injector)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve notifier: %w", err)
	}
	if cfg.DiscordEnabled() {
		slog.Info("startup: discord notifications enabled", "discord_channel", notifier.ChannelName())
	}

	now := time.Now
	resolver := credential.NewResolver(repo, now)
	orchestrator := pipeline.New(
		store,
		do.MustInvoke[transcriber.Transcriber](injector),
		do.MustInvoke[translator.Translator](injector),
		notifier,
	)
	channels := channel.NewService(repo, do.MustInvoke[feed.Fetcher](injector))
	accounts := account.NewService(repo, do.MustInvoke[identity.Provider](injector), cfg.SessionTTL, now)

	return httpapi.NewServer(httpapi.Config{
		FrontendURL:       cfg.FrontendURL,
		SessionCookieName: cfg.SessionCookieName,
		CookieSecure:      cfg.CookieSecure,
		PipelineTimeout:   cfg.PipelineTimeout,
	}, resolver, orchestrator, channels, accounts), orchestrator, nil
}

func runServer(ctx context.Context, cfg *config.Config, server *httpapi.Server) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := server.App()
	errCh := make(chan error, 1)
	go func() {
		slog.Info("startup: listening", "addr", cfg.HTTPAddr)
		errCh <- app.Listen(cfg.HTTPAddr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		slog.Info("shutting down")
	}
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func closeResources(injector do.Injector) {
	if store, ok := do.MustInvoke[artifact.Store](injector).(interface{ Close() error }); ok {
		if err := store.Close(); err != nil {
			slog.Error("artifact store close failed", "error", err)
		}
	}
	do.MustInvoke[*pgxpool.Pool](injector).Close()
}
