// recruitbot - Discord group recruitment bot
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ashureev/recruitbot/internal/api"
	"github.com/ashureev/recruitbot/internal/config"
	"github.com/ashureev/recruitbot/internal/discord"
	"github.com/ashureev/recruitbot/internal/keepalive"
	"github.com/ashureev/recruitbot/internal/recruit"
	"github.com/ashureev/recruitbot/internal/store"
	"github.com/ashureev/recruitbot/internal/voiceroom"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

const draftSweepInterval = 30 * time.Second

func main() {
	var level slog.LevelVar
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: &level,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	level.Set(cfg.SlogLevel())

	if err := run(cfg); err != nil {
		slog.Error("Bot stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("Bot stopped successfully")
}

func run(cfg *config.Config) error {
	slog.Info("Starting bot", "port", cfg.Port, "grpc_port", cfg.GRPCPort, "max_capacity", cfg.MaxCapacity)

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		return fmt.Errorf("database health check: %w", err)
	}
	slog.Info("Database connected")

	session, err := discord.NewSession(cfg.Token)
	if err != nil {
		return err
	}
	guild := discord.NewGuild(session)

	// Initialize services.
	ctrl := recruit.NewController(recruit.Options{
		Transport:   discord.NewTransport(session),
		Settings:    repo,
		Voice:       guild,
		MaxCapacity: cfg.MaxCapacity,
	})
	drafts := recruit.NewDrafts(cfg.DraftTTL)
	bot := discord.NewBot(session, discord.Options{
		GuildID:    cfg.GuildID,
		Controller: ctrl,
		Drafts:     drafts,
		Watcher:    recruit.NewWatcher(ctrl),
		Rooms:      voiceroom.NewManager(guild, repo, cfg.VoiceRoomPrefix),
		Settings:   repo,
	})

	healthHandler := api.NewHealthHandler(repo, bot, ctrl.Len)

	var grpcHealth *api.GRPCHealth
	if cfg.GRPCPort != "" {
		grpcHealth, err = api.NewGRPCHealth(":"+cfg.GRPCPort, bot)
		if err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return bot.Run(gctx)
	})
	g.Go(func() error {
		return api.ServeHTTP(gctx, ":"+cfg.Port, api.NewRouter(healthHandler), cfg.ShutdownTimeout)
	})
	if grpcHealth != nil {
		g.Go(func() error {
			return grpcHealth.Serve(gctx)
		})
	}
	g.Go(func() error {
		return keepalive.New(cfg.KeepaliveURL, cfg.KeepaliveInterval).Run(gctx)
	})
	g.Go(func() error {
		drafts.Run(gctx, draftSweepInterval)
		return nil
	})
	g.Go(func() error {
		ctrl.RunPruner(gctx, recruit.DefaultPruneInterval)
		return nil
	})

	<-gctx.Done()
	slog.Info("Shutting down gracefully...")
	return g.Wait()
}
