package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

// Options configures a Client.
type Options struct {
	// Env is the runtime environment, e.g. "production" or "development".
	Env string

	// DevServerID is the guild that receives global commands in development.
	DevServerID string

	Logger   *slog.Logger
	Registry *Registry

	// Publisher overrides the session for command publishing. Used in tests.
	Publisher CommandPublisher

	// Binder overrides the session for event handler attachment. Used in tests.
	Binder EventBinder
}

// LoadOptions selects the registry folders each manager loads from.
// A nil entry skips that manager.
type LoadOptions struct {
	Commands  *FolderOptions
	Listeners *FolderOptions
	Tasks     *FolderOptions
}

// Client ties a Discord session to the command, listener and task managers.
type Client struct {
	Session     *discordgo.Session
	Logger      *slog.Logger
	Env         string
	DevServerID string
	Container   *Container

	Commands  *CommandManager
	Listeners *ListenerManager
	Tasks     *TaskManager

	reg *Registry
	bnd EventBinder
}

// NewClient creates a Client around session. session may be nil in tests
// when opts provides a Publisher and a Binder.
func NewClient(session *discordgo.Session, opts Options) *Client {
	c := &Client{
		Session:     session,
		Logger:      opts.Logger,
		Env:         opts.Env,
		DevServerID: opts.DevServerID,
		Container:   NewContainer(),
		reg:         opts.Registry,
		bnd:         opts.Binder,
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.reg == nil {
		c.reg = Default()
	}
	if c.bnd == nil && session != nil {
		c.bnd = session
	}

	var publisher CommandPublisher = opts.Publisher
	if publisher == nil && session != nil {
		publisher = session
	}

	c.Commands = NewCommandManager(c, publisher)
	c.Listeners = NewListenerManager(c)
	c.Tasks = NewTaskManager(c)
	return c
}

// Development reports whether the client runs in a development environment.
func (c *Client) Development() bool {
	return c.Env == "development" || c.Env == "dev"
}

// LoadHandlers starts every configured manager. A manager that fails to load
// is logged and does not prevent the others from starting.
func (c *Client) LoadHandlers(ctx context.Context, opts LoadOptions) error {
	var errs []error

	load := func(kind string, fn func() error) {
		if err := fn(); err != nil {
			c.Logger.Error("unable to load "+kind, "error", err)
			errs = append(errs, fmt.Errorf("failed to load %s: %w", kind, err))
			return
		}
		c.Logger.Info("successfully loaded " + kind)
	}

	if opts.Commands != nil {
		load("commands", func() error { return c.Commands.StartAll(ctx, *opts.Commands) })
	}
	if opts.Listeners != nil {
		load("listeners", func() error { return c.Listeners.StartAll(*opts.Listeners) })
	}
	if opts.Tasks != nil {
		load("tasks", func() error { return c.Tasks.StartAll(ctx, *opts.Tasks) })
	}

	return errors.Join(errs...)
}

// Start opens the gateway connection.
func (c *Client) Start(ctx context.Context) error {
	if c.Session == nil {
		return errors.New("client has no session")
	}
	if err := c.Session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	c.Logger.Info("started bot",
		"user_id", c.Session.State.User.ID,
		"username", c.Session.State.User.Username,
	)
	return nil
}

// Close stops tasks, detaches listeners and closes the gateway connection.
func (c *Client) Close() error {
	c.Tasks.Stop()
	c.Listeners.Close()

	if c.Session != nil {
		return c.Session.Close()
	}
	return nil
}

func (c *Client) logger() *slog.Logger {
	return c.Logger
}

// Registry returns the registry the managers load from.
func (c *Client) Registry() *Registry {
	return c.reg
}

func (c *Client) binder() EventBinder {
	return c.bnd
}

func (c *Client) guildName(guildID string) string {
	if c.Session == nil || c.Session.State == nil || guildID == "" {
		return ""
	}
	g, err := c.Session.State.Guild(guildID)
	if err != nil {
		return ""
	}
	return g.Name
}
