package helper

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/sleepymaid/sleepymaid/internal/handler"
)

// eventTopicUpdate is sent when a voice channel status changes. discordgo
// does not model it, so it arrives as a raw event.
const eventTopicUpdate = "CHANNEL_TOPIC_UPDATE"

// ChannelAPI is the part of the REST API the topic guard needs.
// *discordgo.Session satisfies it.
type ChannelAPI interface {
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	RequestWithBucketID(method, urlStr string, data any, bucketID string, options ...discordgo.RequestOption) ([]byte, error)
}

// ChannelCache looks channels up without a request. *discordgo.State
// satisfies it.
type ChannelCache interface {
	Channel(channelID string) (*discordgo.Channel, error)
}

type topicUpdate struct {
	ID      string  `json:"id"`
	GuildID string  `json:"guild_id"`
	Topic   *string `json:"topic"`
}

// TopicGuard clears the topic of voice channels in one guild.
type TopicGuard struct {
	guildID string
	log     *slog.Logger
}

// NewTopicGuard creates a guard for guildID.
func NewTopicGuard(guildID string, log *slog.Logger) *TopicGuard {
	return &TopicGuard{guildID: guildID, log: log}
}

// Listener returns the raw event listener module.
func (g *TopicGuard) Listener() *handler.Listener {
	return handler.On(func(_ *handler.Client, s *discordgo.Session, e *discordgo.Event) error {
		var cache ChannelCache
		if s.State != nil {
			cache = s.State
		}
		return g.Handle(s, cache, e)
	})
}

// Handle inspects a raw gateway event and clears the topic when needed.
// The channel is read from cache when possible; cache may be nil.
func (g *TopicGuard) Handle(api ChannelAPI, cache ChannelCache, e *discordgo.Event) error {
	if e.Type != eventTopicUpdate {
		return nil
	}

	var u topicUpdate
	if err := json.Unmarshal(e.RawData, &u); err != nil {
		return fmt.Errorf("failed to decode %s: %w", eventTopicUpdate, err)
	}
	if u.Topic == nil || u.GuildID != g.guildID {
		return nil
	}

	ch, err := channel(api, cache, u.ID)
	if err != nil {
		return err
	}
	if !shouldClearTopic(u, g.guildID, ch) {
		return nil
	}

	endpoint := discordgo.EndpointChannel(u.ID)
	if _, err := api.RequestWithBucketID(http.MethodPatch, endpoint, map[string]any{"topic": nil}, endpoint); err != nil {
		return fmt.Errorf("failed to clear topic of %s: %w", u.ID, err)
	}

	g.log.Info("cleared voice channel topic", "guild_id", u.GuildID, "channel_id", u.ID)
	return nil
}

func channel(api ChannelAPI, cache ChannelCache, channelID string) (*discordgo.Channel, error) {
	if cache != nil {
		if ch, err := cache.Channel(channelID); err == nil && ch != nil {
			return ch, nil
		}
	}

	ch, err := api.Channel(channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch channel %s: %w", channelID, err)
	}
	return ch, nil
}

func shouldClearTopic(u topicUpdate, guildID string, ch *discordgo.Channel) bool {
	if u.Topic == nil || u.GuildID != guildID || ch == nil {
		return false
	}
	return ch.Type == discordgo.ChannelTypeGuildVoice || ch.Type == discordgo.ChannelTypeGuildStageVoice
}
