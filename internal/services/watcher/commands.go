package watcher

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/sleepymaid/sleepymaid/internal/handler"
	"github.com/sleepymaid/sleepymaid/internal/services/watcher/logchannel"
)

// LogChannels is what the watcher modules need from the log channel
// manager. *logchannel.Manager satisfies it.
type LogChannels interface {
	GetLogChannels(ctx context.Context, guildID string) ([]logchannel.LogChannel, error)
	AddLogChannel(ctx context.Context, guildID, channelID, threadID string) (logchannel.LogChannel, error)
	RemoveLogChannel(ctx context.Context, guildID, channelID string) error
	Broadcast(ctx context.Context, guildID string, params *discordgo.WebhookParams) error
}

var manageGuild int64 = discordgo.PermissionManageGuild

// LogsCommand returns the /logs command.
func LogsCommand() *handler.Command {
	channelOption := &discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionChannel,
		Name:         "channel",
		Description:  "The channel that receives the logs",
		Required:     true,
		ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
	}

	return &handler.Command{
		Data: &discordgo.ApplicationCommand{
			Name:                     "logs",
			Description:              "Manage the log channels of this server",
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add",
					Description: "Send logs to a channel",
					Options: []*discordgo.ApplicationCommandOption{
						channelOption,
						{
							Type:        discordgo.ApplicationCommandOptionChannel,
							Name:        "thread",
							Description: "Post into this thread of the channel",
							ChannelTypes: []discordgo.ChannelType{
								discordgo.ChannelTypeGuildPublicThread,
								discordgo.ChannelTypeGuildPrivateThread,
							},
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Stop sending logs to a channel",
					Options:     []*discordgo.ApplicationCommandOption{channelOption},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "List the log channels",
				},
			},
		},
		Execute: executeLogs,
	}
}

func executeLogs(ctx *handler.Context) error {
	logs, err := handler.Resolve[LogChannels](ctx.Client.Container)
	if err != nil {
		return err
	}

	i := ctx.Interaction
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return errors.New("missing subcommand")
	}
	sub := data.Options[0]
	opts := optionMap(sub.Options)

	reqCtx := context.Background()

	var reply string
	switch sub.Name {
	case "add":
		channelID := opts["channel"].ChannelValue(nil).ID
		threadID := ""
		if opt, ok := opts["thread"]; ok {
			threadID = opt.ChannelValue(nil).ID
		}

		_, err := logs.AddLogChannel(reqCtx, i.GuildID, channelID, threadID)
		switch {
		case errors.Is(err, logchannel.ErrLogChannelExists):
			reply = fmt.Sprintf("<#%s> is already a log channel.", channelID)
		case err != nil:
			return err
		default:
			reply = fmt.Sprintf("Logs will now be sent to <#%s>.", channelID)
		}

	case "remove":
		channelID := opts["channel"].ChannelValue(nil).ID

		err := logs.RemoveLogChannel(reqCtx, i.GuildID, channelID)
		switch {
		case errors.Is(err, logchannel.ErrLogChannelNotFound):
			reply = fmt.Sprintf("<#%s> is not a log channel.", channelID)
		case err != nil:
			return err
		default:
			reply = fmt.Sprintf("Logs will no longer be sent to <#%s>.", channelID)
		}

	case "list":
		channels, err := logs.GetLogChannels(reqCtx, i.GuildID)
		if err != nil {
			return err
		}
		reply = formatLogChannels(channels)

	default:
		return fmt.Errorf("unknown subcommand %q", sub.Name)
	}

	return ctx.Responder.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: reply,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

func optionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, o := range opts {
		m[o.Name] = o
	}
	return m
}

func formatLogChannels(channels []logchannel.LogChannel) string {
	if len(channels) == 0 {
		return "No log channels are configured."
	}

	var b strings.Builder
	b.WriteString("Log channels:")
	for _, c := range channels {
		fmt.Fprintf(&b, "\n- <#%s>", c.ChannelID)
		if c.ThreadID != "" {
			fmt.Fprintf(&b, " (thread <#%s>)", c.ThreadID)
		}
	}
	return b.String()
}
