package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// ErrUnsupportedEvent is returned for listeners whose event type discordgo
// cannot dispatch.
var ErrUnsupportedEvent = errors.New("unsupported event type")

// EventBinder attaches discordgo event handlers. *discordgo.Session satisfies it.
type EventBinder interface {
	AddHandler(handler any) func()
	AddHandlerOnce(handler any) func()
}

// Listener is an event listener module.
type Listener struct {
	event     string
	once      bool
	supported bool
	build     func(c *Client) any
}

// On creates a listener that runs on every event of type E.
// E must be a discordgo event pointer type such as *discordgo.MessageCreate.
func On[E any](fn func(c *Client, s *discordgo.Session, e E) error) *Listener {
	return newListener(false, fn)
}

// Once creates a listener that runs on the first event of type E only.
func Once[E any](fn func(c *Client, s *discordgo.Session, e E) error) *Listener {
	return newListener(true, fn)
}

func newListener[E any](once bool, fn func(c *Client, s *discordgo.Session, e E) error) *Listener {
	typ := reflect.TypeFor[E]()
	event := eventName(typ)
	return &Listener{
		event:     event,
		once:      once,
		supported: dispatchable(typ),
		build: func(c *Client) any {
			return func(s *discordgo.Session, e E) {
				defer func() {
					if p := recover(); p != nil {
						c.logger().Error("listener panicked", "event", event, "panic", p)
					}
				}()
				if err := fn(c, s, e); err != nil {
					c.logger().Error("listener failed", "event", event, "error", err)
				}
			}
		},
	}
}

// Event returns the name of the event the listener handles.
func (l *Listener) Event() string {
	return l.event
}

// IsOnce reports whether the listener detaches after its first run.
func (l *Listener) IsOnce() bool {
	return l.once
}

// Handler returns the discordgo handler bound to c.
func (l *Listener) Handler(c *Client) any {
	return l.build(c)
}

// dispatchable reports whether discordgo can deliver events of type t:
// a pointer to one of its structs or an interface. discordgo only logs
// other handler types and never calls them.
func dispatchable(t reflect.Type) bool {
	if t.Kind() == reflect.Interface {
		return true
	}
	if t.Kind() != reflect.Pointer {
		return false
	}
	elem := t.Elem()
	return elem.Kind() == reflect.Struct && elem.PkgPath() == discordgoPkg
}

var discordgoPkg = reflect.TypeFor[discordgo.Event]().PkgPath()

// eventName turns *discordgo.MessageCreate into "messageCreate".
func eventName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	name := t.Name()
	if name == "" {
		return t.String()
	}
	return strings.ToLower(name[:1]) + name[1:]
}

// ListenerManager attaches listener modules to the session.
type ListenerManager struct {
	client  *Client
	removes []func()
}

// NewListenerManager creates a ListenerManager.
func NewListenerManager(c *Client) *ListenerManager {
	return &ListenerManager{client: c}
}

// StartAll attaches every listener below opts.Folder.
func (m *ListenerManager) StartAll(opts FolderOptions) error {
	if opts.Folder == "" {
		return ErrNoFolder
	}

	log := m.client.logger()
	reg := m.client.Registry()
	files := reg.ListenerFiles(opts.Folder)
	if len(files) == 0 {
		return fmt.Errorf("%w: %s", ErrFolderNotFound, opts.Folder)
	}

	b := m.client.binder()
	count := 0
	for _, file := range files {
		l, _ := reg.Listener(file)
		if l == nil {
			continue
		}
		if b != nil {
			if err := m.attach(b, l); err != nil {
				log.Error("failed to attach listener", "file", file, "error", err)
				continue
			}
		}
		count++
		log.Info("loaded listener", "listener", baseName(file), "event", l.Event(), "once", l.IsOnce())
	}

	log.Info("loaded listeners", "count", count)
	return nil
}

func (m *ListenerManager) attach(b EventBinder, l *Listener) error {
	if !l.supported {
		return fmt.Errorf("%w: %s", ErrUnsupportedEvent, l.event)
	}

	h := l.Handler(m.client)
	if l.IsOnce() {
		m.removes = append(m.removes, b.AddHandlerOnce(h))
	} else {
		m.removes = append(m.removes, b.AddHandler(h))
	}
	return nil
}

// Close detaches every listener attached by StartAll.
func (m *ListenerManager) Close() {
	for _, remove := range m.removes {
		if remove != nil {
			remove()
		}
	}
	m.removes = nil
}

func baseName(file string) string {
	if i := strings.LastIndex(file, "/"); i >= 0 {
		return file[i+1:]
	}
	return file
}
