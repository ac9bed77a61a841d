package bot

import (
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/sleepymaid/sleepymaid/internal/config"
	"github.com/sleepymaid/sleepymaid/internal/handler"
)

// Dependencies provides what services may need during initialization.
type Dependencies struct {
	Client *handler.Client
	Config *config.Config
	Logger *slog.Logger
}

// Service defines the interface that every bot service must implement.
type Service interface {
	// Name returns the unique identifier for this service.
	Name() string

	// Intents returns the gateway intents the service needs.
	Intents() discordgo.Intent

	// Handlers returns the registry folders loaded by the handler client.
	Handlers() handler.LoadOptions

	// Init initializes the service before the gateway connection opens.
	// Services expose their collaborators through deps.Client.Container.
	Init(deps Dependencies) error

	// Shutdown releases the resources acquired by Init.
	Shutdown() error
}

// ConfigurableService is an optional interface for services that need
// configuration of their own. LoadConfig is called before Init.
type ConfigurableService interface {
	// LoadConfig loads and validates service-specific configuration.
	// Should return an error if required configuration is missing or invalid.
	LoadConfig() error
}
