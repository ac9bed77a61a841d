package watcher

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/sleepymaid/sleepymaid/internal/handler"
	"github.com/sleepymaid/sleepymaid/internal/services/watcher/logchannel"
)

// fakeLogChannels is an in-memory LogChannels.
type fakeLogChannels struct {
	channels  map[string][]logchannel.LogChannel
	broadcast []*discordgo.WebhookParams
	err       error
}

func newFakeLogChannels() *fakeLogChannels {
	return &fakeLogChannels{channels: make(map[string][]logchannel.LogChannel)}
}

func (f *fakeLogChannels) GetLogChannels(_ context.Context, guildID string) ([]logchannel.LogChannel, error) {
	return f.channels[guildID], f.err
}

func (f *fakeLogChannels) AddLogChannel(_ context.Context, guildID, channelID, threadID string) (logchannel.LogChannel, error) {
	if f.err != nil {
		return logchannel.LogChannel{}, f.err
	}
	for _, c := range f.channels[guildID] {
		if c.ChannelID == channelID {
			return logchannel.LogChannel{}, logchannel.ErrLogChannelExists
		}
	}
	c := logchannel.LogChannel{GuildID: guildID, ChannelID: channelID, ThreadID: threadID}
	f.channels[guildID] = append(f.channels[guildID], c)
	return c, nil
}

func (f *fakeLogChannels) RemoveLogChannel(_ context.Context, guildID, channelID string) error {
	if f.err != nil {
		return f.err
	}
	for i, c := range f.channels[guildID] {
		if c.ChannelID == channelID {
			f.channels[guildID] = append(f.channels[guildID][:i], f.channels[guildID][i+1:]...)
			return nil
		}
	}
	return logchannel.ErrLogChannelNotFound
}

func (f *fakeLogChannels) Broadcast(_ context.Context, _ string, params *discordgo.WebhookParams) error {
	f.broadcast = append(f.broadcast, params)
	return f.err
}

func newTestClient(t *testing.T, logs LogChannels) *handler.Client {
	t.Helper()
	c := handler.NewClient(nil, handler.Options{
		Registry: handler.NewRegistry(),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if logs != nil {
		handler.Provide(c.Container, logs)
	}
	return c
}
