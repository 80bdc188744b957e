package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tempo/internal/amqp"
	"tempo/internal/core"
	"tempo/internal/log"
	"tempo/internal/store"
)

// Timer implements the per-task start/stop state machine. Stopped means
// isRunning=false with no open entry; Running means isRunning=true with one
// open entry. Running tasks are independent of each other: starting one task
// does not stop another.
type Timer struct {
	store  store.Store
	events ActivityPublisher
	logger *log.Logger
	newID  func() string
	now    func() time.Time
}

func NewTimer(s store.Store, events ActivityPublisher, logger *log.Logger) *Timer {
	return &Timer{
		store:  s,
		events: events,
		logger: logger.WithComponent(log.ComponentTimer),
		newID:  uuid.NewString,
		now:    time.Now,
	}
}

// TimerState is what start/stop hands back: the task after the transition
// and the entry the transition touched. Entry is nil when a stop found no
// open entry to close.
type TimerState struct {
	Task  core.Task       `json:"task"`
	Entry *core.TimeEntry `json:"entry,omitempty"`
}

// Start opens a time entry for the task and marks it running.
func (t *Timer) Start(ctx context.Context, ownerID, taskID string) (TimerState, error) {
	tasks, err := store.Load[core.Task](ctx, t.store, ownerID, store.Tasks)
	if err != nil {
		return TimerState{}, err
	}
	idx := indexByID(tasks, taskID, func(tk core.Task) string { return tk.ID })
	if idx < 0 {
		return TimerState{}, fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}
	if tasks[idx].IsRunning {
		return TimerState{}, fmt.Errorf("task %s: %w", taskID, ErrTimerRunning)
	}

	now := t.now()
	entry := core.TimeEntry{
		ID:        t.newID(),
		TaskID:    taskID,
		OwnerID:   ownerID,
		StartTime: now,
		Duration:  0,
		Date:      core.DateOf(now),
	}

	entries, err := store.Load[core.TimeEntry](ctx, t.store, ownerID, store.TimeEntries)
	if err != nil {
		return TimerState{}, err
	}
	entries = append(entries, entry)

	// Entries first: failing between the writes leaves an orphan open entry
	// on a stopped task, which stop() tolerates, instead of a running task
	// with nothing to close.
	if err := store.Save(ctx, t.store, ownerID, store.TimeEntries, entries); err != nil {
		return TimerState{}, err
	}

	tasks[idx].IsRunning = true
	if err := store.Save(ctx, t.store, ownerID, store.Tasks, tasks); err != nil {
		return TimerState{}, err
	}

	t.logger.InfoContext(ctx, "Timer started",
		log.FieldOwnerID, ownerID,
		log.FieldTaskID, taskID,
		log.FieldEntryID, entry.ID,
		log.FieldOperation, log.OpStart)
	publishActivity(ctx, t.events, t.logger, amqp.NewActivityMessage(amqp.KindTimerStarted, ownerID, taskID, tasks[idx].Name))

	return TimerState{Task: tasks[idx], Entry: &entry}, nil
}

// Stop closes the most recently opened open entry for the task and clears
// the running flag. If the persisted flag says running but no open entry
// exists (a crash between the two start writes, or legacy data), the flag is
// cleared anyway and no entry is returned.
func (t *Timer) Stop(ctx context.Context, ownerID, taskID string) (TimerState, error) {
	tasks, err := store.Load[core.Task](ctx, t.store, ownerID, store.Tasks)
	if err != nil {
		return TimerState{}, err
	}
	idx := indexByID(tasks, taskID, func(tk core.Task) string { return tk.ID })
	if idx < 0 {
		return TimerState{}, fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}
	if !tasks[idx].IsRunning {
		return TimerState{}, fmt.Errorf("task %s: %w", taskID, ErrTimerStopped)
	}

	entries, err := store.Load[core.TimeEntry](ctx, t.store, ownerID, store.TimeEntries)
	if err != nil {
		return TimerState{}, err
	}

	open := -1
	for i, entry := range entries {
		if entry.TaskID != taskID || !entry.Open() {
			continue
		}
		if open < 0 || entry.StartTime.After(entries[open].StartTime) {
			open = i
		}
	}

	now := t.now()
	var closed *core.TimeEntry
	if open >= 0 {
		entries[open].Close(now)
		if err := store.Save(ctx, t.store, ownerID, store.TimeEntries, entries); err != nil {
			return TimerState{}, err
		}
		closed = &entries[open]
	} else {
		t.logger.WarnContext(ctx, "Running task had no open entry, clearing flag",
			log.FieldOwnerID, ownerID,
			log.FieldTaskID, taskID)
	}

	tasks[idx].IsRunning = false
	if err := store.Save(ctx, t.store, ownerID, store.Tasks, tasks); err != nil {
		return TimerState{}, err
	}

	msg := amqp.NewActivityMessage(amqp.KindTimerStopped, ownerID, taskID, tasks[idx].Name)
	if closed != nil {
		msg.Duration = closed.Duration
	}
	t.logger.InfoContext(ctx, "Timer stopped",
		log.FieldOwnerID, ownerID,
		log.FieldTaskID, taskID,
		"duration_s", msg.Duration,
		log.FieldOperation, log.OpStop)
	publishActivity(ctx, t.events, t.logger, msg)

	return TimerState{Task: tasks[idx], Entry: closed}, nil
}
