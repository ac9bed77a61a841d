package handler

import (
	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
)

// InteractionHandler handles an application command or autocomplete interaction.
type InteractionHandler func(ctx *Context) error

// Context is handed to a command when it runs.
type Context struct {
	Client      *Client
	Session     *discordgo.Session
	Interaction *discordgo.InteractionCreate
	Responder   Responder
}

// Command is a command module.
type Command struct {
	// Data is the definition published to Discord.
	Data *discordgo.ApplicationCommand

	// GuildIDs restricts the command to the listed guilds.
	// An empty list registers the command globally.
	GuildIDs []string

	// Execute runs the command.
	Execute InteractionHandler

	// Autocomplete answers autocomplete requests. Optional.
	Autocomplete InteractionHandler
}

// Command folders. The folder a command lives in decides its type.
const (
	FolderChat    = "chat"
	FolderMessage = "message"
	FolderUser    = "user"
)

var folderTypes = map[string]discordgo.ApplicationCommandType{
	FolderChat:    discordgo.ChatApplicationCommand,
	FolderMessage: discordgo.MessageApplicationCommand,
	FolderUser:    discordgo.UserApplicationCommand,
}

// Record is the bookkeeping row of one command in one scope.
type Record struct {
	Name    string                           `json:"name"`
	Type    discordgo.ApplicationCommandType `json:"type"`
	File    string                           `json:"file"`
	GuildID snowflake.ID                     `json:"guild_id,omitempty"`
	ID      snowflake.ID                     `json:"id,omitempty"`

	Data *discordgo.ApplicationCommand `json:"-"`
}

// Global reports whether the record belongs to the global command set.
func (r Record) Global() bool {
	return r.GuildID == 0
}

// FolderOptions points a manager at a folder of the registry.
type FolderOptions struct {
	Folder string
}
