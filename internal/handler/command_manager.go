package handler

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"golang.org/x/time/rate"
)

// Errors returned while loading commands.
var (
	ErrNoFolder       = errors.New("no folder path provided")
	ErrFolderNotFound = errors.New("folder not found")
)

const errorReply = "There was an error while executing this command!"

// CommandPublisher is the part of the Discord API the command manager needs.
// *discordgo.Session satisfies it.
type CommandPublisher interface {
	ApplicationCommands(appID, guildID string, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
	ApplicationCommandBulkOverwrite(appID, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
	Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error)
}

// CommandManager loads command modules, publishes them to Discord and
// routes interactions to them.
type CommandManager struct {
	client    *Client
	publisher CommandPublisher
	limiter   *rate.Limiter

	mu     sync.RWMutex
	loaded []Record
	bound  map[snowflake.ID]Record

	ctx context.Context
}

// NewCommandManager creates a CommandManager.
func NewCommandManager(c *Client, publisher CommandPublisher) *CommandManager {
	return &CommandManager{
		client:    c,
		publisher: publisher,
		// guild publishes share a bucket, stay well under it
		limiter: rate.NewLimiter(rate.Limit(5), 1),
		bound:   make(map[snowflake.ID]Record),
		ctx:     context.Background(),
	}
}

// StartAll loads the commands below opts.Folder and hooks the manager into
// the session: interactions are routed, and every Ready publishes the
// commands.
func (m *CommandManager) StartAll(ctx context.Context, opts FolderOptions) error {
	if opts.Folder == "" {
		return ErrNoFolder
	}
	if err := m.Load(opts.Folder); err != nil {
		return err
	}

	m.ctx = ctx
	if b := m.client.binder(); b != nil {
		b.AddHandler(m.HandleInteraction)
		b.AddHandler(m.handleReady)
	}
	return nil
}

// Load fills the local command cache from the registry.
func (m *CommandManager) Load(folder string) error {
	log := m.client.logger()
	log.Info("registering application commands", "folder", folder)

	reg := m.client.Registry()
	entries := reg.Entries(folder)
	if len(entries) == 0 {
		return fmt.Errorf("%w: %s", ErrFolderNotFound, folder)
	}

	var loaded []Record
	for _, name := range entries {
		typ, ok := folderTypes[name]
		if !ok {
			log.Info("unknown folder", "folder", name)
			continue
		}
		loaded = append(loaded, m.loadCommands(reg, folder+"/"+name, typ)...)
	}

	m.mu.Lock()
	m.loaded = loaded
	m.mu.Unlock()

	log.Info("found application commands", "count", len(loaded))
	return nil
}

func (m *CommandManager) loadCommands(reg *Registry, folder string, typ discordgo.ApplicationCommandType) []Record {
	log := m.client.logger()

	var records []Record
	for _, file := range reg.CommandFiles(folder) {
		cmd, _ := reg.Command(file)
		if cmd == nil || cmd.Data == nil || cmd.Execute == nil {
			log.Warn("skipping incomplete command", "file", file)
			continue
		}
		if cmd.Data.Type == 0 {
			cmd.Data.Type = typ
		}
		if cmd.Data.Type != typ {
			log.Warn("command type does not match its folder", "file", file, "command", cmd.Data.Name)
			continue
		}

		if len(cmd.GuildIDs) == 0 {
			records = append(records, Record{Name: cmd.Data.Name, Type: typ, File: file, Data: cmd.Data})
		}
		for _, raw := range cmd.GuildIDs {
			guildID, err := snowflake.Parse(raw)
			if err != nil {
				log.Warn("invalid guild id", "file", file, "guild_id", raw, "error", err)
				continue
			}
			records = append(records, Record{Name: cmd.Data.Name, Type: typ, File: file, GuildID: guildID, Data: cmd.Data})
		}

		log.Info("command loaded", "command", cmd.Data.Name, "file", file)
	}
	return records
}

// Loaded returns a snapshot of the local command cache.
func (m *CommandManager) Loaded() []Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.loaded)
}

// Records returns a snapshot of the commands bound to remote ids.
func (m *CommandManager) Records() []Record {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := slices.Collect(maps.Values(m.bound))
	slices.SortFunc(records, func(a, b Record) int {
		return cmp.Or(
			cmp.Compare(a.GuildID, b.GuildID),
			cmp.Compare(a.Name, b.Name),
			cmp.Compare(a.Type, b.Type),
		)
	})
	return records
}

func (m *CommandManager) handleReady(_ *discordgo.Session, r *discordgo.Ready) {
	appID := ""
	if r.Application != nil {
		appID = r.Application.ID
	}
	if appID == "" && r.User != nil {
		appID = r.User.ID
	}
	if err := m.RegisterApplicationCommands(m.ctx, appID); err != nil {
		m.client.logger().Error("failed to register application commands", "error", err)
	}
}

// RegisterApplicationCommands publishes the local cache and binds every
// command to the id Discord assigned it. The routing table is replaced only
// after every scope finished.
func (m *CommandManager) RegisterApplicationCommands(ctx context.Context, appID string) error {
	log := m.client.logger()
	loaded := m.Loaded()

	devGuild, err := m.devGuild()
	if err != nil {
		log.Warn("ignoring invalid dev server id", "error", err)
	}

	var (
		global  []Record
		byGuild = make(map[snowflake.ID][]Record)
		order   []snowflake.ID
	)
	for _, rec := range loaded {
		if rec.Global() && devGuild != 0 {
			rec.GuildID = devGuild
		}
		if rec.Global() {
			global = append(global, rec)
			continue
		}
		if _, seen := byGuild[rec.GuildID]; !seen {
			order = append(order, rec.GuildID)
		}
		byGuild[rec.GuildID] = append(byGuild[rec.GuildID], rec)
	}

	m.mu.RLock()
	previous := maps.Clone(m.bound)
	m.mu.RUnlock()

	bound := make(map[snowflake.ID]Record, len(loaded))
	var errs []error

	// keep carries a scope's previous bindings over when it could not be
	// registered this time; its remote ids are still live.
	keep := func(scope snowflake.ID) {
		for id, rec := range previous {
			if rec.GuildID == scope {
				bound[id] = rec
			}
		}
	}

	if len(global) > 0 || devGuild == 0 {
		remote, err := m.publish(ctx, appID, "", global)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to register global commands: %w", err))
			keep(0)
		} else {
			bindRemote(bound, remote, global)
			log.Info("registered global commands", "count", len(remote))
		}
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for i, guildID := range order {
		records := byGuild[guildID]

		if err := m.limiter.Wait(ctx); err != nil {
			mu.Lock()
			errs = append(errs, err)
			for _, rest := range order[i:] {
				keep(rest)
			}
			mu.Unlock()
			break
		}

		guild, err := m.publisher.Guild(guildID.String(), discordgo.WithContext(ctx))
		if err != nil || guild == nil {
			log.Warn("skipping unavailable guild", "guild_id", guildID, "error", err)
			mu.Lock()
			keep(guildID)
			mu.Unlock()
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()

			remote, err := m.publish(ctx, appID, guild.ID, records)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("failed to register commands for guild %s: %w", guild.ID, err))
				keep(guildID)
				return
			}
			bindRemote(bound, remote, records)
			log.Info("registered guild commands",
				"count", len(remote),
				"guild", guild.Name,
				"guild_id", guild.ID,
			)
		}()
	}
	wg.Wait()

	m.mu.Lock()
	m.bound = bound
	m.mu.Unlock()

	return errors.Join(errs...)
}

// publish reconciles one scope. The remote set is reused untouched when it
// already matches; otherwise it is overwritten.
func (m *CommandManager) publish(ctx context.Context, appID, guildID string, records []Record) ([]*discordgo.ApplicationCommand, error) {
	defs := make([]*discordgo.ApplicationCommand, len(records))
	for i, rec := range records {
		defs[i] = rec.Data
	}

	existing, err := m.publisher.ApplicationCommands(appID, guildID, discordgo.WithContext(ctx))
	if err == nil && sameCommandSet(existing, defs) {
		m.client.logger().Debug("remote commands up to date", "guild_id", guildID, "count", len(existing))
		return existing, nil
	}

	return m.publisher.ApplicationCommandBulkOverwrite(appID, guildID, defs, discordgo.WithContext(ctx))
}

func bindRemote(bound map[snowflake.ID]Record, remote []*discordgo.ApplicationCommand, records []Record) {
	for _, rc := range remote {
		id, err := snowflake.Parse(rc.ID)
		if err != nil {
			continue
		}
		typ := rc.Type
		if typ == 0 {
			typ = discordgo.ChatApplicationCommand
		}
		for _, rec := range records {
			if rec.Name == rc.Name && rec.Type == typ {
				rec.ID = id
				bound[id] = rec
				break
			}
		}
	}
}

func (m *CommandManager) devGuild() (snowflake.ID, error) {
	if !m.client.Development() || m.client.DevServerID == "" {
		return 0, nil
	}
	return snowflake.Parse(m.client.DevServerID)
}

func (m *CommandManager) lookup(commandID string) (*Command, Record, bool) {
	id, err := snowflake.Parse(commandID)
	if err != nil {
		return nil, Record{}, false
	}

	m.mu.RLock()
	rec, ok := m.bound[id]
	m.mu.RUnlock()
	if !ok {
		return nil, Record{}, false
	}

	cmd, ok := m.client.Registry().Command(rec.File)
	if !ok {
		return nil, Record{}, false
	}
	return cmd, rec, true
}

// HandleInteraction is the discordgo handler for InteractionCreate events.
func (m *CommandManager) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	r := NewDiscordResponder(s, i.Interaction)

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		m.dispatchCommand(s, i, r)
	case discordgo.InteractionApplicationCommandAutocomplete:
		m.dispatchAutocomplete(s, i, r)
	}
}

func (m *CommandManager) dispatchCommand(s *discordgo.Session, i *discordgo.InteractionCreate, r Responder) {
	log := m.client.logger()
	data := i.ApplicationCommandData()

	log.Info("application command",
		"guild", m.client.guildName(i.GuildID),
		"guild_id", i.GuildID,
		"user", interactionUser(i).Username,
		"user_id", interactionUser(i).ID,
		"command", data.Name,
		"command_id", data.ID,
	)

	cmd, rec, ok := m.lookup(data.ID)
	if !ok {
		return
	}
	if i.GuildID == "" {
		return
	}

	err := run(cmd.Execute, &Context{Client: m.client, Session: s, Interaction: i, Responder: r})
	if err == nil {
		return
	}

	log.Error("failed to execute command", "command", rec.Name, "file", rec.File, "error", err)

	if rerr := r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: errorReply,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}); rerr == nil {
		return
	}

	content := errorReply
	if eerr := r.Edit(&discordgo.WebhookEdit{Content: &content}); eerr != nil {
		log.Error("failed to report command error", "command", rec.Name, "error", eerr)
	}
}

func (m *CommandManager) dispatchAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate, r Responder) {
	log := m.client.logger()
	data := i.ApplicationCommandData()

	cmd, rec, ok := m.lookup(data.ID)
	if !ok {
		return
	}
	if i.GuildID == "" || cmd.Autocomplete == nil {
		return
	}

	err := run(cmd.Autocomplete, &Context{Client: m.client, Session: s, Interaction: i, Responder: r})
	if err == nil {
		return
	}

	log.Error("failed to autocomplete command", "command", rec.Name, "file", rec.File, "error", err)

	empty := &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{
			Choices: []*discordgo.ApplicationCommandOptionChoice{},
		},
	}
	if r.Respond(empty) == nil {
		return
	}
	if rerr := r.Respond(empty); rerr != nil {
		log.Error("failed to answer autocomplete", "command", rec.Name, "error", rerr)
	}
}

// run calls h and turns a panic into an error.
func run(h InteractionHandler, ctx *Context) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return h(ctx)
}

func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	if i.User != nil {
		return i.User
	}
	return &discordgo.User{}
}
