package sleepymaid

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/sleepymaid/sleepymaid/internal/handler"
)

var ratioReplies = map[discordgo.Locale]string{
	discordgo.EnglishUS: "<@%[2]s> just got ratioed by <@%[1]s>!",
	discordgo.French:    "<@%[2]s> vient de se faire ratio par <@%[1]s> !",
}

// NewRatioCommand returns the "Ratio" user context-menu command, limited
// to guildIDs.
func NewRatioCommand(guildIDs []string) *handler.Command {
	return &handler.Command{
		Data: &discordgo.ApplicationCommand{
			Name: "Ratio",
			NameLocalizations: &map[discordgo.Locale]string{
				discordgo.French: "Ratio",
			},
			Type: discordgo.UserApplicationCommand,
		},
		GuildIDs: guildIDs,
		Execute:  ratio,
	}
}

func ratio(ctx *handler.Context) error {
	i := ctx.Interaction
	target := i.ApplicationCommandData().TargetID

	author := ""
	if i.Member != nil && i.Member.User != nil {
		author = i.Member.User.ID
	} else if i.User != nil {
		author = i.User.ID
	}

	return ctx.Responder.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: ratioReply(i.Locale, author, target),
			AllowedMentions: &discordgo.MessageAllowedMentions{
				Users: []string{target},
			},
		},
	})
}

func ratioReply(locale discordgo.Locale, author, target string) string {
	format, ok := ratioReplies[locale]
	if !ok {
		format = ratioReplies[discordgo.EnglishUS]
	}
	return fmt.Sprintf(format, author, target)
}
