package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"calbot/internal/adapters/discord"
	"calbot/internal/application"
	"calbot/internal/config"
	"calbot/internal/infrastructure/database"
	"calbot/internal/infrastructure/i18n"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load configuration")
	}
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Error().Err(err).Msg("bot stopped")
		os.Exit(1)
	}
	log.Info().Msg("bot shut down gracefully")
}

func setupLogging(cfg *config.Config) {
	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

func run(ctx context.Context, cfg *config.Config) error {
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return err
	}
	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	bot, err := discord.NewBot(cfg.Token)
	if err != nil {
		return err
	}

	settings := application.Settings{
		DefaultTimeZone: cfg.DefaultTimeZone,
		Language:        cfg.DefaultLanguage,
		SessionTimeout:  cfg.SessionTimeout(),
		IOTimeout:       cfg.IOTimeout,
	}
	events := database.NewEventRepository(pool)
	users := database.NewUserRepository(pool)
	translator := i18n.NewTranslator(cfg.DefaultLanguage)
	messenger := discord.NewMessenger(bot.Session())

	renderer := application.NewRenderer(messenger, translator, settings.Language)
	tracker := application.NewRegistrationTracker(events, messenger, messenger, renderer, translator, settings)
	dispatcher := application.NewDispatcher(
		application.NewSessionStore(),
		application.NewSessionTimers(),
		users, messenger, tracker, translator, settings,
		application.NewCreationWorkflow(events, users, messenger, messenger, renderer, translator, settings.Language),
		application.NewModificationWorkflow(events, messenger, renderer, translator, settings.Language),
	)
	reminders := application.NewReminderService(events, messenger, translator, settings.Language)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return bot.Run(ctx, discord.NewHandler(ctx, dispatcher, dispatcher))
	})
	g.Go(func() error {
		return discord.RunReminders(ctx, reminders, cfg.ReminderInterval, cfg.IOTimeout)
	})
	return g.Wait()
}
