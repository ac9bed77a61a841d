package logchannel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

// Repository is the persistent store of log channels. *Store satisfies it.
type Repository interface {
	ListByGuild(ctx context.Context, guildID string) ([]LogChannel, error)
	Get(ctx context.Context, guildID, channelID string) (LogChannel, error)
	Insert(ctx context.Context, c LogChannel) (LogChannel, error)
	Delete(ctx context.Context, id int64) error
}

// Cache holds recently read log channels. *RedisCache satisfies it.
type Cache interface {
	Get(ctx context.Context, guildID string) ([]LogChannel, bool, error)
	Set(ctx context.Context, guildID string, channels []LogChannel) error
}

// Discord is the webhook API used by the manager. *discordgo.Session
// satisfies it.
type Discord interface {
	WebhookCreate(channelID, name, avatar string, options ...discordgo.RequestOption) (*discordgo.Webhook, error)
	WebhookDelete(webhookID string, options ...discordgo.RequestOption) error
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
	WebhookThreadExecute(webhookID, token string, wait bool, threadID string, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Manager reads log channels through the cache and forwards logs to them.
type Manager struct {
	repo    Repository
	cache   Cache
	discord Discord
	self    func() *discordgo.User
	log     *slog.Logger
}

// NewManager creates a Manager. self returns the bot user, whose name and
// avatar are used for forwarded logs; it may return nil before login.
func NewManager(repo Repository, cache Cache, discord Discord, self func() *discordgo.User, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	if self == nil {
		self = func() *discordgo.User { return nil }
	}
	return &Manager{repo: repo, cache: cache, discord: discord, self: self, log: log}
}

// GetLogChannels returns the log channels of a guild, preferring the cache.
// A cache miss loads the channels from the store and caches them.
func (m *Manager) GetLogChannels(ctx context.Context, guildID string) ([]LogChannel, error) {
	channels, ok, err := m.cache.Get(ctx, guildID)
	if err != nil {
		m.log.Warn("failed to read log channel cache", "guild_id", guildID, "error", err)
	}
	if ok {
		return channels, nil
	}

	return m.UpdateLogChannels(ctx, guildID)
}

// UpdateLogChannels reloads the log channels of a guild from the store and
// overwrites the cached entry.
func (m *Manager) UpdateLogChannels(ctx context.Context, guildID string) ([]LogChannel, error) {
	channels, err := m.repo.ListByGuild(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to load log channels: %w", err)
	}

	if err := m.cache.Set(ctx, guildID, channels); err != nil {
		m.log.Warn("failed to cache log channels", "guild_id", guildID, "error", err)
	}
	return channels, nil
}

// SendLog posts params to the channel's webhook. Failures are logged and
// never returned.
func (m *Manager) SendLog(ctx context.Context, c LogChannel, params *discordgo.WebhookParams) {
	msg := *params
	if u := m.self(); u != nil {
		if msg.Username == "" {
			msg.Username = u.DisplayName()
		}
		if msg.AvatarURL == "" {
			msg.AvatarURL = u.AvatarURL("")
		}
	}

	var err error
	if c.ThreadID != "" {
		_, err = m.discord.WebhookThreadExecute(c.WebhookID, c.WebhookToken, false, c.ThreadID, &msg, discordgo.WithContext(ctx))
	} else {
		_, err = m.discord.WebhookExecute(c.WebhookID, c.WebhookToken, false, &msg, discordgo.WithContext(ctx))
	}
	if err != nil {
		m.log.Error("failed to send log",
			"log_channel_id", c.ID,
			"channel_id", c.ChannelID,
			"guild_id", c.GuildID,
			"error", err,
		)
	}
}

// Broadcast sends params to every log channel of a guild.
func (m *Manager) Broadcast(ctx context.Context, guildID string, params *discordgo.WebhookParams) error {
	channels, err := m.GetLogChannels(ctx, guildID)
	if err != nil {
		return err
	}
	for _, c := range channels {
		m.SendLog(ctx, c, params)
	}
	return nil
}

// AddLogChannel creates a webhook in channelID and stores it as a log
// channel of guildID. threadID is optional.
func (m *Manager) AddLogChannel(ctx context.Context, guildID, channelID, threadID string) (LogChannel, error) {
	_, err := m.repo.Get(ctx, guildID, channelID)
	if err == nil {
		return LogChannel{}, ErrLogChannelExists
	}
	if !errors.Is(err, ErrLogChannelNotFound) {
		return LogChannel{}, err
	}

	name := "Sleepy Maid Logs"
	if u := m.self(); u != nil {
		name = u.DisplayName()
	}
	hook, err := m.discord.WebhookCreate(channelID, name, "", discordgo.WithContext(ctx))
	if err != nil {
		return LogChannel{}, fmt.Errorf("failed to create webhook: %w", err)
	}

	c, err := m.repo.Insert(ctx, LogChannel{
		GuildID:      guildID,
		ChannelID:    channelID,
		WebhookID:    hook.ID,
		WebhookToken: hook.Token,
		ThreadID:     threadID,
	})
	if err != nil {
		if derr := m.discord.WebhookDelete(hook.ID, discordgo.WithContext(ctx)); derr != nil {
			m.log.Warn("failed to delete orphaned webhook", "webhook_id", hook.ID, "error", derr)
		}
		return LogChannel{}, err
	}

	if _, err := m.UpdateLogChannels(ctx, guildID); err != nil {
		m.log.Warn("failed to refresh log channels", "guild_id", guildID, "error", err)
	}
	return c, nil
}

// RemoveLogChannel deletes the log channel and its webhook.
func (m *Manager) RemoveLogChannel(ctx context.Context, guildID, channelID string) error {
	c, err := m.repo.Get(ctx, guildID, channelID)
	if err != nil {
		return err
	}
	if err := m.repo.Delete(ctx, c.ID); err != nil {
		return err
	}

	// the webhook may already be gone
	if err := m.discord.WebhookDelete(c.WebhookID, discordgo.WithContext(ctx)); err != nil {
		m.log.Warn("failed to delete webhook", "webhook_id", c.WebhookID, "error", err)
	}

	if _, err := m.UpdateLogChannels(ctx, guildID); err != nil {
		m.log.Warn("failed to refresh log channels", "guild_id", guildID, "error", err)
	}
	return nil
}
