// Package testbot is a small service used to try the handler layer against
// a development guild.
package testbot

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/sleepymaid/sleepymaid/internal/bot"
	"github.com/sleepymaid/sleepymaid/internal/handler"
	"github.com/sleepymaid/sleepymaid/internal/services/testbot/presentation"
)

// Registry folders of the service.
const (
	CommandsFolder  = "testbot/commands"
	ListenersFolder = "testbot/listeners"
	TasksFolder     = "testbot/tasks"
)

func init() {
	Register(handler.Default())
	bot.Register(&Service{})
}

// Register adds the service's modules to reg.
func Register(reg *handler.Registry) {
	reg.RegisterCommand(CommandsFolder+"/chat/ping", presentation.NewPingHandler().Command())
	reg.RegisterListener(ListenersFolder+"/pong", presentation.NewPongHandler().Listener())
	reg.RegisterListener(ListenersFolder+"/ready", handler.Once(onReady))
	reg.RegisterTask(TasksFolder+"/heartbeat", &handler.Task{Spec: "@every 5m", Run: heartbeat})
}

// Service is the test bot.
type Service struct{}

// Name returns the service name.
func (s *Service) Name() string {
	return "testbot"
}

// Intents returns the gateway intents of the test bot.
func (s *Service) Intents() discordgo.Intent {
	return discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildBans |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent
}

// Handlers returns the folders the test bot loads.
func (s *Service) Handlers() handler.LoadOptions {
	return handler.LoadOptions{
		Commands:  &handler.FolderOptions{Folder: CommandsFolder},
		Listeners: &handler.FolderOptions{Folder: ListenersFolder},
		Tasks:     &handler.FolderOptions{Folder: TasksFolder},
	}
}

// Init does nothing; the test bot has no collaborators.
func (s *Service) Init(bot.Dependencies) error {
	return nil
}

// Shutdown does nothing.
func (s *Service) Shutdown() error {
	return nil
}

func onReady(c *handler.Client, _ *discordgo.Session, r *discordgo.Ready) error {
	c.Logger.Info("logged in", "user", r.User.Username, "guilds", len(r.Guilds))
	return nil
}

func heartbeat(_ context.Context, c *handler.Client) error {
	if c.Session == nil {
		return nil
	}
	c.Logger.Info("heartbeat", "latency", c.Session.HeartbeatLatency())
	return nil
}
