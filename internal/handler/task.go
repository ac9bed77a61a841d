package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Task is a scheduled task module.
type Task struct {
	// Spec is a cron expression; descriptors like "@every 5m" are accepted.
	Spec string

	// Run is invoked on every tick.
	Run func(ctx context.Context, c *Client) error
}

// TaskManager schedules task modules.
type TaskManager struct {
	client *Client
	cron   *cron.Cron
}

// NewTaskManager creates a TaskManager.
func NewTaskManager(c *Client) *TaskManager {
	return &TaskManager{
		client: c,
		cron:   cron.New(),
	}
}

// StartAll schedules every task below opts.Folder and starts the scheduler.
func (m *TaskManager) StartAll(ctx context.Context, opts FolderOptions) error {
	if opts.Folder == "" {
		return ErrNoFolder
	}

	log := m.client.logger()
	reg := m.client.Registry()
	files := reg.TaskFiles(opts.Folder)
	if len(files) == 0 {
		return fmt.Errorf("%w: %s", ErrFolderNotFound, opts.Folder)
	}

	count := 0
	for _, file := range files {
		t, _ := reg.Task(file)
		if t == nil || t.Run == nil {
			continue
		}
		if _, err := m.cron.AddFunc(t.Spec, m.job(ctx, file, t)); err != nil {
			log.Error("failed to schedule task", "task", baseName(file), "spec", t.Spec, "error", err)
			continue
		}
		count++
		log.Info("loaded task", "task", baseName(file), "spec", t.Spec)
	}

	m.cron.Start()
	log.Info("loaded tasks", "count", count)
	return nil
}

func (m *TaskManager) job(ctx context.Context, file string, t *Task) func() {
	return func() {
		log := m.client.logger()
		defer func() {
			if p := recover(); p != nil {
				log.Error("task panicked", "task", baseName(file), "panic", p)
			}
		}()

		start := time.Now()
		if err := t.Run(ctx, m.client); err != nil {
			log.Error("task failed", "task", baseName(file), "error", err)
			return
		}
		log.Debug("task finished", "task", baseName(file), "duration", time.Since(start))
	}
}

// Entries returns the number of scheduled tasks.
func (m *TaskManager) Entries() int {
	return len(m.cron.Entries())
}

// Stop stops the scheduler and waits for running tasks to finish.
func (m *TaskManager) Stop() {
	<-m.cron.Stop().Done()
}
