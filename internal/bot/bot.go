package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/sleepymaid/sleepymaid/internal/config"
	"github.com/sleepymaid/sleepymaid/internal/handler"
	"github.com/sleepymaid/sleepymaid/internal/status"
)

// Bot manages the lifecycle of one service: its session, handler client
// and status server.
type Bot struct {
	config  *config.Config
	service Service
	log     *slog.Logger

	session *discordgo.Session
	client  *handler.Client
	status  *status.Server
}

// NewBot creates a new Bot running svc.
func NewBot(cfg *config.Config, svc Service, log *slog.Logger) *Bot {
	if log == nil {
		log = slog.Default()
	}
	return &Bot{
		config:  cfg,
		service: svc,
		log:     log.With("service", svc.Name()),
	}
}

// Client returns the handler client once Start has created it.
func (b *Bot) Client() *handler.Client {
	return b.client
}

// Start initializes the service, loads its handlers and connects to Discord.
// Commands are published by the handler client on every Ready.
func (b *Bot) Start(ctx context.Context) error {
	if c, ok := b.service.(ConfigurableService); ok {
		if err := c.LoadConfig(); err != nil {
			return fmt.Errorf("failed to load %s config: %w", b.service.Name(), err)
		}
	}

	session, err := discordgo.New("Bot " + b.config.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create Discord session: %w", err)
	}
	session.Identify.Intents = b.service.Intents()
	b.session = session

	b.client = handler.NewClient(session, handler.Options{
		Env:         b.config.Env,
		DevServerID: b.config.DevServerID,
		Logger:      b.log,
	})
	handler.Provide(b.client.Container, b.config)

	if err := b.service.Init(Dependencies{
		Client: b.client,
		Config: b.config,
		Logger: b.log,
	}); err != nil {
		return fmt.Errorf("failed to initialize %s service: %w", b.service.Name(), err)
	}
	b.log.Debug("initialized service")

	// a manager that fails to load is already logged, the others still run
	if err := b.client.LoadHandlers(ctx, b.service.Handlers()); err != nil {
		b.log.Warn("started with missing handlers", "error", err)
	}

	if b.config.StatusAddr != "" {
		b.status = status.NewServer(b.config.StatusAddr, b.client.Commands, b.log)
		if err := b.status.Start(); err != nil {
			return fmt.Errorf("failed to start status server: %w", err)
		}
	}

	return b.client.Start(ctx)
}

// Stop gracefully shuts down the bot.
func (b *Bot) Stop() error {
	if b.status != nil {
		b.status.Stop()
	}

	if err := b.service.Shutdown(); err != nil {
		b.log.Warn("failed to shutdown service", "error", err)
	}

	if b.client != nil {
		return b.client.Close()
	}
	return nil
}
