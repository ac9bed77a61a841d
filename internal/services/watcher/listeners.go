package watcher

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/sleepymaid/sleepymaid/internal/handler"
)

// Embed colors of the log messages.
const (
	colorGreen  = 0x57F287
	colorRed    = 0xED4245
	colorYellow = 0xFEE75C
)

const broadcastTimeout = 10 * time.Second

func onReady(c *handler.Client, _ *discordgo.Session, r *discordgo.Ready) error {
	c.Logger.Info("logged in", "user", r.User.Username, "guilds", len(r.Guilds))
	return nil
}

func onMemberAdd(c *handler.Client, _ *discordgo.Session, e *discordgo.GuildMemberAdd) error {
	if e.Member == nil || e.User == nil {
		return nil
	}
	return broadcast(c, e.GuildID, memberJoinEmbed(e.Member))
}

func onMemberRemove(c *handler.Client, _ *discordgo.Session, e *discordgo.GuildMemberRemove) error {
	if e.Member == nil || e.User == nil {
		return nil
	}
	return broadcast(c, e.GuildID, memberLeaveEmbed(e.Member))
}

func onMessageDelete(c *handler.Client, _ *discordgo.Session, e *discordgo.MessageDelete) error {
	if e.GuildID == "" {
		return nil
	}
	// the content is only known when the message was cached
	before := e.BeforeDelete
	if before != nil && before.Author != nil && before.Author.Bot {
		return nil
	}
	return broadcast(c, e.GuildID, messageDeleteEmbed(e.ChannelID, before))
}

func broadcast(c *handler.Client, guildID string, embed *discordgo.MessageEmbed) error {
	logs, err := handler.Resolve[LogChannels](c.Container)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), broadcastTimeout)
	defer cancel()

	return logs.Broadcast(ctx, guildID, &discordgo.WebhookParams{
		Embeds:          []*discordgo.MessageEmbed{embed},
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	})
}

func memberJoinEmbed(m *discordgo.Member) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Member joined",
		Description: fmt.Sprintf("%s (%s)", m.User.Mention(), m.User.Username),
		Color:       colorGreen,
		Thumbnail:   &discordgo.MessageEmbedThumbnail{URL: m.User.AvatarURL("")},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Account created", Value: accountCreated(m.User.ID), Inline: true},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: "ID: " + m.User.ID},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

func memberLeaveEmbed(m *discordgo.Member) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Member left",
		Description: fmt.Sprintf("%s (%s)", m.User.Mention(), m.User.Username),
		Color:       colorRed,
		Thumbnail:   &discordgo.MessageEmbedThumbnail{URL: m.User.AvatarURL("")},
		Footer:      &discordgo.MessageEmbedFooter{Text: "ID: " + m.User.ID},
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}

func messageDeleteEmbed(channelID string, before *discordgo.Message) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "Message deleted",
		Description: fmt.Sprintf("A message was deleted in <#%s>.", channelID),
		Color:       colorYellow,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	if before == nil {
		return embed
	}

	if before.Author != nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Author", Value: before.Author.Mention(), Inline: true,
		})
	}
	if before.Content != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Content", Value: truncate(before.Content, 1024),
		})
	}
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "Message ID: " + before.ID}
	return embed
}

func accountCreated(userID string) string {
	ts, err := discordgo.SnowflakeTimestamp(userID)
	if err != nil {
		return "unknown"
	}
	return fmt.Sprintf("<t:%d:R>", ts.Unix())
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
