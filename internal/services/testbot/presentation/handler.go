package presentation

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/sleepymaid/sleepymaid/internal/handler"
	"github.com/sleepymaid/sleepymaid/internal/services/testbot/application"
)

// PingHandler handles the /ping command.
type PingHandler struct {
	interactor *application.PingInteractor
}

// NewPingHandler creates a new PingHandler.
func NewPingHandler() *PingHandler {
	return &PingHandler{
		interactor: application.NewPingInteractor(),
	}
}

// Command returns the /ping command module.
func (h *PingHandler) Command() *handler.Command {
	return &handler.Command{
		Data: &discordgo.ApplicationCommand{
			Name:        "ping",
			Description: "Replies with Pong!",
		},
		Execute: h.Handle,
	}
}

// Handle processes the ping command and sends the response.
func (h *PingHandler) Handle(ctx *handler.Context) error {
	var src application.LatencySource
	if ctx.Session != nil {
		src = ctx.Session
	}
	result := h.interactor.Execute(src)

	return ctx.Responder.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: result.Message,
		},
	})
}

// MessageSender sends channel messages. *discordgo.Session satisfies it.
type MessageSender interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// PongHandler handles messages containing the 🏓 emoji.
type PongHandler struct {
	interactor *application.PongInteractor
}

// NewPongHandler creates a new PongHandler.
func NewPongHandler() *PongHandler {
	return &PongHandler{
		interactor: application.NewPongInteractor(),
	}
}

// Listener returns the messageCreate listener module.
func (h *PongHandler) Listener() *handler.Listener {
	return handler.On(h.HandleMessage)
}

// HandleMessage is the listener body for MessageCreate events.
func (h *PongHandler) HandleMessage(_ *handler.Client, s *discordgo.Session, m *discordgo.MessageCreate) error {
	return h.Reply(s, m)
}

// Reply answers m through sender when it contains the trigger.
func (h *PongHandler) Reply(sender MessageSender, m *discordgo.MessageCreate) error {
	fromBot := m.Author != nil && m.Author.Bot

	result := h.interactor.Execute(m.Content, fromBot)
	if !result.ShouldRespond {
		return nil
	}

	if _, err := sender.ChannelMessageSend(m.ChannelID, result.Response); err != nil {
		return fmt.Errorf("failed to send message to %s: %w", m.ChannelID, err)
	}
	return nil
}
