package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"
)

// fakePublisher is an in-memory stand-in for the Discord command API.
type fakePublisher struct {
	mu           sync.Mutex
	existing     map[string][]*discordgo.ApplicationCommand
	overwritten  map[string]int
	overwriteErr map[string]error
	guilds       map[string]*discordgo.Guild
	nextID       int
}

func newFakePublisher(guildIDs ...string) *fakePublisher {
	p := &fakePublisher{
		existing:     make(map[string][]*discordgo.ApplicationCommand),
		overwritten:  make(map[string]int),
		overwriteErr: make(map[string]error),
		guilds:       make(map[string]*discordgo.Guild),
		nextID:       1000,
	}
	for _, id := range guildIDs {
		p.guilds[id] = &discordgo.Guild{ID: id, Name: "guild-" + id}
	}
	return p
}

func (p *fakePublisher) ApplicationCommands(_, guildID string, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.existing[guildID], nil
}

func (p *fakePublisher) ApplicationCommandBulkOverwrite(appID, guildID string, commands []*discordgo.ApplicationCommand, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.overwriteErr[guildID]; err != nil {
		return nil, err
	}

	out := make([]*discordgo.ApplicationCommand, len(commands))
	for i, c := range commands {
		cp := *c
		p.nextID++
		cp.ID = fmt.Sprint(p.nextID)
		cp.ApplicationID = appID
		cp.GuildID = guildID
		out[i] = &cp
	}
	p.existing[guildID] = out
	p.overwritten[guildID]++
	return out, nil
}

func (p *fakePublisher) Guild(guildID string, _ ...discordgo.RequestOption) (*discordgo.Guild, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	g, ok := p.guilds[guildID]
	if !ok {
		return nil, errors.New("unknown guild")
	}
	return g, nil
}

func (p *fakePublisher) overwrites(guildID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.overwritten[guildID]
}

// fakeBinder records attached handlers instead of wiring them to a gateway.
type fakeBinder struct {
	handlers []any
	once     []any
	removed  int
}

func (b *fakeBinder) AddHandler(h any) func() {
	b.handlers = append(b.handlers, h)
	return func() { b.removed++ }
}

func (b *fakeBinder) AddHandlerOnce(h any) func() {
	b.once = append(b.once, h)
	return func() { b.removed++ }
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, reg *Registry, pub *fakePublisher) (*Client, *fakeBinder) {
	t.Helper()

	binder := &fakeBinder{}
	c := NewClient(nil, Options{
		Registry:  reg,
		Publisher: pub,
		Binder:    binder,
		Logger:    discardLogger(),
	})
	c.Commands.limiter = rate.NewLimiter(rate.Inf, 1)
	return c, binder
}

func commandInteraction(typ discordgo.InteractionType, commandID, name, guildID string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type:    typ,
			GuildID: guildID,
			Member: &discordgo.Member{
				User: &discordgo.User{ID: "42", Username: "maid"},
			},
			Data: discordgo.ApplicationCommandInteractionData{
				ID:   commandID,
				Name: name,
			},
		},
	}
}

// boundID returns the remote id bound to name in guildID ("" for global).
func boundID(t *testing.T, m *CommandManager, name, guildID string) string {
	t.Helper()
	for _, rec := range m.Records() {
		scope := ""
		if !rec.Global() {
			scope = rec.GuildID.String()
		}
		if rec.Name == name && scope == guildID {
			return rec.ID.String()
		}
	}
	t.Fatalf("no bound record for %s in %q", name, guildID)
	return ""
}
