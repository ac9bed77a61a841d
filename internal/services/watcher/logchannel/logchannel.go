// Package logchannel keeps track of the webhook-backed log channels of each
// guild and forwards moderation logs to them.
package logchannel

import "errors"

// ErrLogChannelNotFound is returned when a guild has no log channel for the
// requested channel.
var ErrLogChannelNotFound = errors.New("log channel not found")

// ErrLogChannelExists is returned when a channel is already a log channel.
var ErrLogChannelExists = errors.New("log channel already exists")

// LogChannel is a channel that receives logs through a webhook.
type LogChannel struct {
	ID           int64  `json:"id"`
	GuildID      string `json:"guildId"`
	ChannelID    string `json:"channelId"`
	WebhookID    string `json:"webhookId"`
	WebhookToken string `json:"webhookToken"`
	ThreadID     string `json:"threadId,omitempty"`
}
