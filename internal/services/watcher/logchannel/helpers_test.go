package logchannel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/bwmarrin/discordgo"
	"github.com/redis/go-redis/v9"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCache(client), mr
}

type execCall struct {
	webhookID string
	threadID  string
	params    *discordgo.WebhookParams
}

// fakeDiscord records webhook calls.
type fakeDiscord struct {
	mu        sync.Mutex
	nextID    int
	created   []string
	deleted   []string
	executed  []execCall
	createErr error
	execErr   error
}

func (f *fakeDiscord) WebhookCreate(channelID, name, _ string, _ ...discordgo.RequestOption) (*discordgo.Webhook, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	id := fmt.Sprintf("hook-%d", f.nextID)
	f.created = append(f.created, channelID)
	return &discordgo.Webhook{ID: id, Token: "token-" + id, ChannelID: channelID, Name: name}, nil
}

func (f *fakeDiscord) WebhookDelete(webhookID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, webhookID)
	return nil
}

func (f *fakeDiscord) WebhookExecute(webhookID, _ string, _ bool, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.executed = append(f.executed, execCall{webhookID: webhookID, params: data})
	return nil, f.execErr
}

func (f *fakeDiscord) WebhookThreadExecute(webhookID, _ string, _ bool, threadID string, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.executed = append(f.executed, execCall{webhookID: webhookID, threadID: threadID, params: data})
	return nil, f.execErr
}

// failingCache always errors.
type failingCache struct{}

func (failingCache) Get(context.Context, string) ([]LogChannel, bool, error) {
	return nil, false, errors.New("cache down")
}

func (failingCache) Set(context.Context, string, []LogChannel) error {
	return errors.New("cache down")
}
