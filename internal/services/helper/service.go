// Package helper is the bot that keeps the community guild tidy.
package helper

import (
	"github.com/bwmarrin/discordgo"

	"github.com/sleepymaid/sleepymaid/internal/bot"
	"github.com/sleepymaid/sleepymaid/internal/config"
	"github.com/sleepymaid/sleepymaid/internal/handler"
)

// Registry folders of the service.
const (
	ListenersFolder = "helper/listeners"
	TasksFolder     = "helper/tasks"
)

func init() {
	bot.Register(&Service{})
}

// Config holds the service-specific settings.
type Config struct {
	TopicGuardGuildID string `env:"HELPER_TOPIC_GUARD_GUILD_ID" envDefault:"1131653884377579651"`
	Status            string `env:"HELPER_STATUS" envDefault:"Helping out"`
}

// Service is the helper bot.
type Service struct {
	config *Config
}

// Name returns the service name.
func (s *Service) Name() string {
	return "helper"
}

// Intents returns the gateway intents of the helper bot.
func (s *Service) Intents() discordgo.Intent {
	return discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsMessageContent
}

// Handlers returns the folders the helper bot loads.
func (s *Service) Handlers() handler.LoadOptions {
	return handler.LoadOptions{
		Listeners: &handler.FolderOptions{Folder: ListenersFolder},
		Tasks:     &handler.FolderOptions{Folder: TasksFolder},
	}
}

// LoadConfig parses the service configuration from the environment.
func (s *Service) LoadConfig() error {
	cfg, err := config.Parse[Config]()
	if err != nil {
		return err
	}
	s.config = cfg
	return nil
}

// Init registers the listeners and tasks built from configuration.
func (s *Service) Init(deps bot.Dependencies) error {
	if s.config == nil {
		s.config = &Config{}
	}

	reg := deps.Client.Registry()
	reg.RegisterListener(ListenersFolder+"/ready", presenceOnReady(s.config.Status))
	reg.RegisterTask(TasksFolder+"/presence", presenceTask(s.config.Status))
	if s.config.TopicGuardGuildID != "" {
		guard := NewTopicGuard(s.config.TopicGuardGuildID, deps.Logger)
		reg.RegisterListener(ListenersFolder+"/topicGuard", guard.Listener())
	}
	return nil
}

// Shutdown does nothing.
func (s *Service) Shutdown() error {
	return nil
}
