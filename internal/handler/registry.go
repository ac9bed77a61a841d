package handler

import (
	"path"
	"slices"
	"strings"
	"sync"
)

// Registry holds command, listener and task modules keyed by their file path.
// Paths are slash separated, e.g. "watcher/commands/chat/logs".
type Registry struct {
	mu        sync.RWMutex
	commands  map[string]*Command
	listeners map[string]*Listener
	tasks     map[string]*Task
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands:  make(map[string]*Command),
		listeners: make(map[string]*Listener),
		tasks:     make(map[string]*Task),
	}
}

// RegisterCommand adds a command module. Registering the same file again
// replaces the previous module.
func (r *Registry) RegisterCommand(file string, cmd *Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[clean(file)] = cmd
}

// RegisterListener adds a listener module.
func (r *Registry) RegisterListener(file string, l *Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners[clean(file)] = l
}

// RegisterTask adds a task module.
func (r *Registry) RegisterTask(file string, t *Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[clean(file)] = t
}

// Command returns the command module registered at file.
func (r *Registry) Command(file string) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[clean(file)]
	return cmd, ok
}

// Listener returns the listener module registered at file.
func (r *Registry) Listener(file string) (*Listener, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.listeners[clean(file)]
	return l, ok
}

// Task returns the task module registered at file.
func (r *Registry) Task(file string) (*Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[clean(file)]
	return t, ok
}

// Entries returns the sorted names of the immediate children of folder,
// across all module kinds.
func (r *Registry) Entries(folder string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	prefix := clean(folder) + "/"
	seen := make(map[string]struct{})
	collect := func(file string) {
		rest, ok := strings.CutPrefix(file, prefix)
		if !ok || rest == "" {
			return
		}
		name, _, _ := strings.Cut(rest, "/")
		seen[name] = struct{}{}
	}
	for file := range r.commands {
		collect(file)
	}
	for file := range r.listeners {
		collect(file)
	}
	for file := range r.tasks {
		collect(file)
	}

	entries := make([]string, 0, len(seen))
	for name := range seen {
		entries = append(entries, name)
	}
	slices.Sort(entries)
	return entries
}

// CommandFiles returns every command file below folder, sorted.
func (r *Registry) CommandFiles(folder string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return filesBelow(r.commands, folder)
}

// ListenerFiles returns every listener file below folder, sorted.
func (r *Registry) ListenerFiles(folder string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return filesBelow(r.listeners, folder)
}

// TaskFiles returns every task file below folder, sorted.
func (r *Registry) TaskFiles(folder string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return filesBelow(r.tasks, folder)
}

func filesBelow[T any](modules map[string]T, folder string) []string {
	prefix := clean(folder) + "/"
	var files []string
	for file := range modules {
		if strings.HasPrefix(file, prefix) {
			files = append(files, file)
		}
	}
	slices.Sort(files)
	return files
}

func clean(p string) string {
	return strings.TrimPrefix(path.Clean("/"+p), "/")
}

// Default registry instance for module self-registration via init()
var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}

// RegisterCommand adds a command to the default registry.
// This is typically called from package init() functions.
func RegisterCommand(file string, cmd *Command) {
	defaultRegistry.RegisterCommand(file, cmd)
}

// RegisterListener adds a listener to the default registry.
func RegisterListener(file string, l *Listener) {
	defaultRegistry.RegisterListener(file, l)
}

// RegisterTask adds a task to the default registry.
func RegisterTask(file string, t *Task) {
	defaultRegistry.RegisterTask(file, t)
}

// ResetDefault resets the default registry.
// This is intended for testing purposes only.
func ResetDefault() {
	defaultRegistry = NewRegistry()
}
