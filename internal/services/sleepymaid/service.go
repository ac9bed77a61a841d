// Package sleepymaid is the general purpose bot.
package sleepymaid

import (
	"github.com/bwmarrin/discordgo"

	"github.com/sleepymaid/sleepymaid/internal/bot"
	"github.com/sleepymaid/sleepymaid/internal/config"
	"github.com/sleepymaid/sleepymaid/internal/handler"
)

// CommandsFolder is the registry folder of the service's commands.
const CommandsFolder = "sleepymaid/commands"

func init() {
	bot.Register(&Service{})
}

// Config holds the service-specific settings.
type Config struct {
	RatioGuildIDs []string `env:"RATIO_GUILD_IDS" envSeparator:","`
}

// Service is the general purpose bot.
type Service struct {
	config *Config
}

// Name returns the service name.
func (s *Service) Name() string {
	return "sleepymaid"
}

// Intents returns the gateway intents of the service.
func (s *Service) Intents() discordgo.Intent {
	return discordgo.IntentsGuilds | discordgo.IntentsGuildMembers
}

// Handlers returns the folders the service loads.
func (s *Service) Handlers() handler.LoadOptions {
	return handler.LoadOptions{
		Commands: &handler.FolderOptions{Folder: CommandsFolder},
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

// Init registers the commands whose scope depends on configuration.
func (s *Service) Init(deps bot.Dependencies) error {
	if s.config == nil {
		s.config = &Config{}
	}
	if len(s.config.RatioGuildIDs) == 0 {
		deps.Logger.Warn("RATIO_GUILD_IDS is empty, ratio will be registered globally")
	}

	deps.Client.Registry().RegisterCommand(CommandsFolder+"/user/ratio", NewRatioCommand(s.config.RatioGuildIDs))
	return nil
}

// Shutdown does nothing.
func (s *Service) Shutdown() error {
	return nil
}
