package watcher

import (
	"errors"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/sleepymaid/sleepymaid/internal/handler"
)

func TestOnMemberAdd_Broadcasts(t *testing.T) {
	logs := newFakeLogChannels()
	c := newTestClient(t, logs)

	err := onMemberAdd(c, nil, &discordgo.GuildMemberAdd{Member: &discordgo.Member{
		GuildID: "1",
		User:    &discordgo.User{ID: "80351110224678912", Username: "maid"},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(logs.broadcast) != 1 {
		t.Fatalf("expected 1 broadcast, got %d", len(logs.broadcast))
	}
	embed := logs.broadcast[0].Embeds[0]
	if embed.Title != "Member joined" || !strings.Contains(embed.Description, "<@80351110224678912>") {
		t.Errorf("unexpected embed %+v", embed)
	}
	if !strings.HasPrefix(embed.Fields[0].Value, "<t:") {
		t.Errorf("expected a relative timestamp, got %q", embed.Fields[0].Value)
	}
	if logs.broadcast[0].AllowedMentions == nil {
		t.Error("expected mentions to be disabled")
	}
}

func TestOnMemberRemove_Broadcasts(t *testing.T) {
	logs := newFakeLogChannels()
	c := newTestClient(t, logs)

	err := onMemberRemove(c, nil, &discordgo.GuildMemberRemove{Member: &discordgo.Member{
		GuildID: "1",
		User:    &discordgo.User{ID: "42", Username: "maid"},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(logs.broadcast) != 1 || logs.broadcast[0].Embeds[0].Title != "Member left" {
		t.Errorf("unexpected broadcasts %+v", logs.broadcast)
	}
}

func TestOnMemberAdd_WithoutUser(t *testing.T) {
	logs := newFakeLogChannels()

	if err := onMemberAdd(newTestClient(t, logs), nil, &discordgo.GuildMemberAdd{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(logs.broadcast) != 0 {
		t.Error("expected nothing to be broadcast")
	}
}

func TestOnMessageDelete(t *testing.T) {
	logs := newFakeLogChannels()
	c := newTestClient(t, logs)

	err := onMessageDelete(c, nil, &discordgo.MessageDelete{
		Message: &discordgo.Message{ID: "5", ChannelID: "10", GuildID: "1"},
		BeforeDelete: &discordgo.Message{
			ID:      "5",
			Content: "secret",
			Author:  &discordgo.User{ID: "42"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(logs.broadcast) != 1 {
		t.Fatalf("expected 1 broadcast, got %d", len(logs.broadcast))
	}
	embed := logs.broadcast[0].Embeds[0]
	if len(embed.Fields) != 2 || embed.Fields[1].Value != "secret" {
		t.Errorf("unexpected fields %+v", embed.Fields)
	}
}

func TestOnMessageDelete_Skips(t *testing.T) {
	logs := newFakeLogChannels()
	c := newTestClient(t, logs)

	// direct message
	if err := onMessageDelete(c, nil, &discordgo.MessageDelete{Message: &discordgo.Message{ID: "5"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// bot author
	if err := onMessageDelete(c, nil, &discordgo.MessageDelete{
		Message:      &discordgo.Message{ID: "6", GuildID: "1"},
		BeforeDelete: &discordgo.Message{Author: &discordgo.User{Bot: true}},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(logs.broadcast) != 0 {
		t.Errorf("expected nothing to be broadcast, got %d", len(logs.broadcast))
	}
}

func TestBroadcast_Errors(t *testing.T) {
	expectedErr := errors.New("cache down")
	logs := newFakeLogChannels()
	logs.err = expectedErr

	err := onMemberRemove(newTestClient(t, logs), nil, &discordgo.GuildMemberRemove{Member: &discordgo.Member{
		GuildID: "1",
		User:    &discordgo.User{ID: "42"},
	}})
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}

	err = onMemberRemove(newTestClient(t, nil), nil, &discordgo.GuildMemberRemove{Member: &discordgo.Member{
		GuildID: "1",
		User:    &discordgo.User{ID: "42"},
	}})
	if !errors.Is(err, handler.ErrNotProvided) {
		t.Errorf("expected ErrNotProvided, got %v", err)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("héllo", 10); got != "héllo" {
		t.Errorf("unexpected %q", got)
	}
	if got := truncate("héllo", 3); got != "hé…" {
		t.Errorf("unexpected %q", got)
	}
}
