package logger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
)

const (
	queueSize    = 64
	maxContent   = 2000
	flushTimeout = 5 * time.Second

	openFence  = "\n```\n"
	closeFence = "\n```"
)

// ErrInvalidWebhookURL is returned for URLs that are not Discord webhook URLs.
var ErrInvalidWebhookURL = errors.New("invalid webhook url")

// WebhookSender executes Discord webhooks. *discordgo.Session satisfies it.
type WebhookSender interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// ParseWebhookURL extracts the id and token from a Discord webhook URL of
// the form https://discord.com/api/webhooks/<id>/<token>.
func ParseWebhookURL(raw string) (id, token string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrInvalidWebhookURL, err)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, p := range parts {
		if p == "webhooks" && i+2 < len(parts) {
			return parts[i+1], parts[i+2], nil
		}
	}
	return "", "", fmt.Errorf("%w: %s", ErrInvalidWebhookURL, u.Redacted())
}

// webhookSink posts messages from a bounded queue on its own goroutine.
// A full queue drops the message.
type webhookSink struct {
	sender WebhookSender
	id     string
	token  string
	warn   *slog.Logger

	mu     sync.Mutex
	closed bool
	queue  chan string
	done   chan struct{}
}

func newWebhookSink(sender WebhookSender, id, token string, warn *slog.Logger) *webhookSink {
	if sender == nil {
		// webhook execution needs no bot token
		s, _ := discordgo.New("")
		sender = s
	}

	sink := &webhookSink{
		sender: sender,
		id:     id,
		token:  token,
		warn:   warn,
		queue:  make(chan string, queueSize),
		done:   make(chan struct{}),
	}
	go sink.run()
	return sink
}

func (s *webhookSink) run() {
	defer close(s.done)
	for content := range s.queue {
		if _, err := s.sender.WebhookExecute(s.id, s.token, false, &discordgo.WebhookParams{
			Content:         content,
			AllowedMentions: &discordgo.MessageAllowedMentions{},
		}); err != nil {
			s.warn.Warn("failed to forward log to webhook", "error", err)
		}
	}
}

// enqueue drops content once the sink is closed.
func (s *webhookSink) enqueue(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	select {
	case s.queue <- content:
	default:
		s.warn.Warn("webhook log queue full, dropping record")
	}
}

// Close stops accepting messages and waits for the queue to drain.
func (s *webhookSink) Close() error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()

	select {
	case <-s.done:
		return nil
	case <-time.After(flushTimeout):
		return errors.New("timed out flushing webhook logs")
	}
}

// webhookHandler formats records as Discord messages.
type webhookHandler struct {
	sink   *webhookSink
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string
}

func newWebhookHandler(sink *webhookSink, level slog.Leveler) *webhookHandler {
	return &webhookHandler{sink: sink, level: level}
}

func (h *webhookHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *webhookHandler) Handle(_ context.Context, r slog.Record) error {
	h.sink.enqueue(format(r, h.attrs, h.groups))
	return nil
}

func (h *webhookHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	prefixed := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		prefixed[i] = slog.Attr{Key: qualify(h.groups, a.Key), Value: a.Value}
	}
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), prefixed...)
	return &clone
}

func (h *webhookHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string{}, h.groups...), name)
	return &clone
}

func format(r slog.Record, attrs []slog.Attr, groups []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** %s", r.Level, r.Message)

	var fields []string
	for _, a := range attrs {
		fields = append(fields, fmt.Sprintf("%s=%v", a.Key, a.Value))
	}
	r.Attrs(func(a slog.Attr) bool {
		fields = append(fields, fmt.Sprintf("%s=%v", qualify(groups, a.Key), a.Value))
		return true
	})

	fenceAt := -1
	if len(fields) > 0 {
		fenceAt = b.Len()
		b.WriteString(openFence)
		b.WriteString(strings.Join(fields, "\n"))
		b.WriteString(closeFence)
	}

	return truncate(b.String(), fenceAt)
}

// truncate cuts content to maxContent bytes on a rune boundary. A code
// block opened at fenceAt is closed again if the cut lands inside it.
func truncate(content string, fenceAt int) string {
	if len(content) <= maxContent {
		return content
	}

	n := maxContent
	if fenceAt >= 0 {
		n -= len(closeFence)
	}
	for n > 0 && !utf8.RuneStart(content[n]) {
		n--
	}

	content = content[:n]
	if fenceAt >= 0 && n >= fenceAt+len(openFence) {
		content += closeFence
	}
	return content
}

func qualify(groups []string, key string) string {
	if len(groups) == 0 {
		return key
	}
	return strings.Join(groups, ".") + "." + key
}
