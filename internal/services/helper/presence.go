package helper

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/sleepymaid/sleepymaid/internal/handler"
)

// StatusUpdater sets the bot's custom status. *discordgo.Session satisfies it.
type StatusUpdater interface {
	UpdateCustomStatus(state string) error
}

// presenceTask re-applies the custom status, which Discord drops after
// some reconnects.
func presenceTask(status string) *handler.Task {
	return &handler.Task{
		Spec: "@every 30m",
		Run: func(_ context.Context, c *handler.Client) error {
			if c.Session == nil {
				return nil
			}
			return setPresence(c.Session, status)
		},
	}
}

func presenceOnReady(status string) *handler.Listener {
	return handler.Once(func(c *handler.Client, s *discordgo.Session, r *discordgo.Ready) error {
		c.Logger.Info("logged in", "user", r.User.Username)
		return setPresence(s, status)
	})
}

func setPresence(u StatusUpdater, status string) error {
	if status == "" {
		return nil
	}
	return u.UpdateCustomStatus(status)
}
