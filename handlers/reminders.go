package handlers

import (
	"context"
	"fmt"
	"log"
	"time"

	"annah-server/models"
)

// TaskLister is the store surface the scanner needs: the full task set,
// across all users.
type TaskLister interface {
	GetAllTasks() ([]models.Task, error)
}

// Broadcaster fans a notification out to connected subscribers.
type Broadcaster interface {
	BroadcastAll(models.Notification)
}

// ReminderScanner periodically selects tasks entering the due window and
// broadcasts one reminder per matching task per tick. It records no
// "already notified" state, so a task keeps reminding on every tick until it
// is completed or its due time passes.
type ReminderScanner struct {
	tasks    TaskLister
	hub      Broadcaster
	interval time.Duration
	window   time.Duration
}

func NewReminderScanner(tasks TaskLister, hub Broadcaster, interval, window time.Duration) *ReminderScanner {
	return &ReminderScanner{
		tasks:    tasks,
		hub:      hub,
		interval: interval,
		window:   window,
	}
}

// Start runs the scan loop until ctx is cancelled.
func (s *ReminderScanner) Start(ctx context.Context) {
	go func() {
		log.Printf("[SCAN] Reminder scanner started (interval: %v, window: %v)", s.interval, s.window)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Printf("[SCAN] Reminder scanner stopped")
				return
			case <-ticker.C:
				s.Tick(time.Now())
			}
		}
	}()
}

// Tick performs one scan pass against the given clock reading. A failed
// store read skips the pass; the next tick retries naturally.
func (s *ReminderScanner) Tick(now time.Time) {
	tasks, err := s.tasks.GetAllTasks()
	if err != nil {
		log.Printf("[SCAN] Skipping tick, task read failed: %v", err)
		return
	}

	for _, task := range tasks {
		if !dueSoon(task, now, s.window) {
			continue
		}
		s.hub.BroadcastAll(models.Notification{
			Type:                    models.NotificationTypeReminder,
			Message:                 fmt.Sprintf("Task %q is due in less than %d minutes", task.Title, int(s.window.Minutes())),
			ShowBrowserNotification: true,
		})
	}
}

// dueSoon reports whether a task falls inside the due window (now, now+window]
// and still needs doing. Tasks without a due date never qualify.
func dueSoon(task models.Task, now time.Time, window time.Duration) bool {
	if task.Completed || task.DueDate == nil {
		return false
	}
	due := *task.DueDate
	return due.After(now) && !due.After(now.Add(window))
}
