package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"tempo/internal/amqp"
	"tempo/internal/core"
	"tempo/internal/store"
	"tempo/internal/store/memory"
)

// clock is a settable time source for timer tests.
type clock struct {
	t time.Time
}

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestTimer(t *testing.T) (*Timer, *Entities, *clock, *capturingPublisher) {
	t.Helper()
	mem := memory.New()
	pub := &capturingPublisher{}
	clk := &clock{t: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)}

	entities := NewEntities(mem, pub, testLogger())
	entities.newID = seqIDs("ent")
	entities.now = clk.now

	timer := NewTimer(mem, pub, testLogger())
	timer.newID = seqIDs("tmr")
	timer.now = clk.now

	return timer, entities, clk, pub
}

func TestStartCreatesOpenEntry(t *testing.T) {
	timer, entities, clk, pub := newTestTimer(t)
	ctx := context.Background()

	task, _ := entities.CreateTask(ctx, "alice@example.com", "Build", "", "")

	state, err := timer.Start(ctx, "alice@example.com", task.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !state.Task.IsRunning {
		t.Errorf("task not marked running")
	}
	if state.Entry == nil {
		t.Fatalf("start returned no entry")
	}
	if !state.Entry.Open() {
		t.Errorf("entry should be open")
	}
	if !state.Entry.StartTime.Equal(clk.t) {
		t.Errorf("startTime = %v, want %v", state.Entry.StartTime, clk.t)
	}
	if state.Entry.Date != "2024-03-15" {
		t.Errorf("date = %q", state.Entry.Date)
	}

	entries, _ := entities.ListEntries(ctx, "alice@example.com", EntryFilter{TaskID: task.ID})
	if len(entries) != 1 {
		t.Fatalf("expected exactly one entry, got %d", len(entries))
	}

	tasks, _ := entities.ListTasks(ctx, "alice@example.com")
	if !tasks[0].IsRunning {
		t.Errorf("running flag not persisted")
	}

	kinds := pub.kinds()
	if kinds[len(kinds)-1] != amqp.KindTimerStarted {
		t.Errorf("last published kind = %q", kinds[len(kinds)-1])
	}
}

func TestStartUnknownTask(t *testing.T) {
	timer, _, _, _ := newTestTimer(t)

	if _, err := timer.Start(context.Background(), "alice@example.com", "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStartWhileRunning(t *testing.T) {
	timer, entities, _, _ := newTestTimer(t)
	ctx := context.Background()

	task, _ := entities.CreateTask(ctx, "alice@example.com", "Build", "", "")
	if _, err := timer.Start(ctx, "alice@example.com", task.ID); err != nil {
		t.Fatalf("first start: %v", err)
	}

	if _, err := timer.Start(ctx, "alice@example.com", task.ID); !errors.Is(err, ErrTimerRunning) {
		t.Fatalf("expected ErrTimerRunning, got %v", err)
	}

	entries, _ := entities.ListEntries(ctx, "alice@example.com", EntryFilter{TaskID: task.ID})
	if len(entries) != 1 {
		t.Errorf("rejected start created an entry, now %d", len(entries))
	}
}

func TestStopClosesEntryWithFlooredDuration(t *testing.T) {
	timer, entities, clk, pub := newTestTimer(t)
	ctx := context.Background()

	task, _ := entities.CreateTask(ctx, "alice@example.com", "Build", "", "")
	started, _ := timer.Start(ctx, "alice@example.com", task.ID)

	clk.advance(90*time.Second + 700*time.Millisecond)

	state, err := timer.Stop(ctx, "alice@example.com", task.ID)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if state.Task.IsRunning {
		t.Errorf("task still running")
	}
	if state.Entry == nil {
		t.Fatalf("stop returned no entry")
	}
	if state.Entry.ID != started.Entry.ID {
		t.Errorf("closed entry %q, want %q", state.Entry.ID, started.Entry.ID)
	}
	if state.Entry.Open() {
		t.Errorf("entry still open")
	}
	if state.Entry.Duration != 90 {
		t.Errorf("duration = %d, want 90 (floored)", state.Entry.Duration)
	}

	entries, _ := entities.ListEntries(ctx, "alice@example.com", EntryFilter{TaskID: task.ID})
	if entries[0].Duration != 90 || entries[0].EndTime == nil {
		t.Errorf("close not persisted: %+v", entries[0])
	}

	last := pub.msgs[len(pub.msgs)-1]
	if last.Kind != amqp.KindTimerStopped || last.Duration != 90 {
		t.Errorf("stop event = %+v", last)
	}
}

func TestStopWhileStopped(t *testing.T) {
	timer, entities, _, _ := newTestTimer(t)
	ctx := context.Background()

	task, _ := entities.CreateTask(ctx, "alice@example.com", "Build", "", "")

	if _, err := timer.Stop(ctx, "alice@example.com", task.ID); !errors.Is(err, ErrTimerStopped) {
		t.Errorf("expected ErrTimerStopped, got %v", err)
	}
}

func TestStopClosesMostRecentlyOpenedEntry(t *testing.T) {
	timer, entities, clk, _ := newTestTimer(t)
	ctx := context.Background()

	task, _ := entities.CreateTask(ctx, "alice@example.com", "Build", "", "")

	// An older orphan open entry left behind by a past crash.
	orphanStart := clk.t.Add(-2 * time.Hour)
	if _, err := entities.CreateEntry(ctx, "alice@example.com", NewEntry{
		TaskID: task.ID, StartTime: orphanStart,
	}); err != nil {
		t.Fatalf("seed orphan: %v", err)
	}

	started, _ := timer.Start(ctx, "alice@example.com", task.ID)
	clk.advance(time.Minute)

	state, err := timer.Stop(ctx, "alice@example.com", task.ID)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if state.Entry.ID != started.Entry.ID {
		t.Errorf("closed %q, want the newest open entry %q", state.Entry.ID, started.Entry.ID)
	}
	if state.Entry.Duration != 60 {
		t.Errorf("duration = %d, want 60", state.Entry.Duration)
	}

	entries, _ := entities.ListEntries(ctx, "alice@example.com", EntryFilter{TaskID: task.ID})
	open := 0
	for _, e := range entries {
		if e.Open() {
			open++
		}
	}
	if open != 1 {
		t.Errorf("expected the orphan to stay open, %d open entries", open)
	}
}

func TestStopRecoversDriftedRunningFlag(t *testing.T) {
	timer, entities, _, _ := newTestTimer(t)
	ctx := context.Background()

	task, _ := entities.CreateTask(ctx, "alice@example.com", "Build", "", "")
	running := true
	if _, err := entities.UpdateTask(ctx, "alice@example.com", task.ID, TaskPatch{IsRunning: &running}); err != nil {
		t.Fatalf("seed drifted flag: %v", err)
	}

	state, err := timer.Stop(ctx, "alice@example.com", task.ID)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if state.Task.IsRunning {
		t.Errorf("flag not cleared")
	}
	if state.Entry != nil {
		t.Errorf("no entry existed, got %+v", state.Entry)
	}

	tasks, _ := entities.ListTasks(ctx, "alice@example.com")
	if tasks[0].IsRunning {
		t.Errorf("cleared flag not persisted")
	}
}

func TestRunningTasksAreIndependent(t *testing.T) {
	timer, entities, _, _ := newTestTimer(t)
	ctx := context.Background()

	a, _ := entities.CreateTask(ctx, "alice@example.com", "A", "", "")
	b, _ := entities.CreateTask(ctx, "alice@example.com", "B", "", "")

	if _, err := timer.Start(ctx, "alice@example.com", a.ID); err != nil {
		t.Fatalf("start a: %v", err)
	}
	if _, err := timer.Start(ctx, "alice@example.com", b.ID); err != nil {
		t.Fatalf("start b: %v", err)
	}

	tasks, _ := entities.ListTasks(ctx, "alice@example.com")
	for _, task := range tasks {
		if !task.IsRunning {
			t.Errorf("task %s stopped by sibling start", task.ID)
		}
	}
}

func TestTimerStoreErrorsPropagate(t *testing.T) {
	timer := NewTimer(failingStore{}, nil, testLogger())

	if _, err := timer.Start(context.Background(), "alice@example.com", "t1"); !errors.Is(err, store.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestStartStopRoundTripSummarizes(t *testing.T) {
	timer, entities, clk, _ := newTestTimer(t)
	ctx := context.Background()

	project, _ := entities.CreateProject(ctx, "alice@example.com", "Site", 60)
	task, _ := entities.CreateTask(ctx, "alice@example.com", "Build", project.ID, "")

	if _, err := timer.Start(ctx, "alice@example.com", task.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	clk.advance(30 * time.Minute)
	if _, err := timer.Stop(ctx, "alice@example.com", task.ID); err != nil {
		t.Fatalf("stop: %v", err)
	}

	entries, _ := entities.ListEntries(ctx, "alice@example.com", EntryFilter{})
	tasks, _ := entities.ListTasks(ctx, "alice@example.com")
	projects, _ := entities.ListProjects(ctx, "alice@example.com")

	summary := core.Summarize(entries, tasks, projects, nil, core.Filter{})
	if summary.TotalTime != 1800 {
		t.Errorf("totalTime = %d, want 1800", summary.TotalTime)
	}
	if summary.TotalEarnings != 30 {
		t.Errorf("totalEarnings = %v, want 30", summary.TotalEarnings)
	}
}
