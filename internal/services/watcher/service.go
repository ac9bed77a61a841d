// Package watcher is the moderation bot. It forwards guild events to the
// log channels configured with /logs.
package watcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/redis/go-redis/v9"

	"github.com/sleepymaid/sleepymaid/internal/bot"
	"github.com/sleepymaid/sleepymaid/internal/handler"
	"github.com/sleepymaid/sleepymaid/internal/services/watcher/logchannel"
)

// Registry folders of the service.
const (
	CommandsFolder  = "watcher/commands"
	ListenersFolder = "watcher/listeners"
)

// messageCacheSize bounds the state's per-channel message cache. Deleted
// messages carry their author and content only when they were cached.
const messageCacheSize = 200

func init() {
	Register(handler.Default())
	bot.Register(&Service{})
}

// Register adds the service's modules to reg.
func Register(reg *handler.Registry) {
	reg.RegisterCommand(CommandsFolder+"/chat/logs", LogsCommand())
	reg.RegisterListener(ListenersFolder+"/ready", handler.Once(onReady))
	reg.RegisterListener(ListenersFolder+"/guild/memberAdd", handler.On(onMemberAdd))
	reg.RegisterListener(ListenersFolder+"/guild/memberRemove", handler.On(onMemberRemove))
	reg.RegisterListener(ListenersFolder+"/message/messageDelete", handler.On(onMessageDelete))
}

// Service is the watcher bot.
type Service struct {
	store *logchannel.Store
	redis *redis.Client
}

// Name returns the service name.
func (s *Service) Name() string {
	return "watcher"
}

// Intents returns the gateway intents of the watcher.
func (s *Service) Intents() discordgo.Intent {
	return discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsGuildWebhooks |
		discordgo.IntentsMessageContent |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsGuildInvites |
		discordgo.IntentsGuildBans |
		discordgo.IntentsGuildIntegrations
}

// Handlers returns the folders the watcher loads.
func (s *Service) Handlers() handler.LoadOptions {
	return handler.LoadOptions{
		Commands:  &handler.FolderOptions{Folder: CommandsFolder},
		Listeners: &handler.FolderOptions{Folder: ListenersFolder},
	}
}

// Init opens the database and the cache and provides the log channel
// manager to the modules.
func (s *Service) Init(deps bot.Dependencies) error {
	if deps.Config.RedisURL == "" {
		return errors.New("REDIS_URL is required")
	}

	session := deps.Client.Session
	if session != nil && session.State != nil {
		session.State.MaxMessageCount = messageCacheSize
	}

	store, err := logchannel.NewStore(deps.Config.DatabaseURL)
	if err != nil {
		return err
	}
	s.store = store

	client, err := logchannel.NewRedisClient(context.Background(), deps.Config.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	s.redis = client

	manager := logchannel.NewManager(store, logchannel.NewRedisCache(client), session, func() *discordgo.User {
		if session == nil || session.State == nil {
			return nil
		}
		return session.State.User
	}, deps.Logger)

	handler.Provide[LogChannels](deps.Client.Container, manager)
	handler.Provide(deps.Client.Container, manager)
	return nil
}

// Shutdown closes the cache and the database.
func (s *Service) Shutdown() error {
	var errs []error
	if s.redis != nil {
		errs = append(errs, s.redis.Close())
	}
	if s.store != nil {
		errs = append(errs, s.store.Close())
	}
	return errors.Join(errs...)
}
