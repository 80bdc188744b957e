package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"tempo/internal/amqp"
	"tempo/internal/core"
	"tempo/internal/log"
	"tempo/internal/store"
)

// Entities is the CRUD gateway: every mutation reads the caller's full
// collection, applies the change and writes the whole array back. Ownership
// is enforced by keying the store with the session identity, so records from
// other owners are never even loaded.
type Entities struct {
	store  store.Store
	events ActivityPublisher
	logger *log.Logger
	newID  func() string
	now    func() time.Time
}

func NewEntities(s store.Store, events ActivityPublisher, logger *log.Logger) *Entities {
	return &Entities{
		store:  s,
		events: events,
		logger: logger.WithComponent(log.ComponentEntities),
		newID:  uuid.NewString,
		now:    time.Now,
	}
}

type (
	// ProjectPatch merges non-nil fields into an existing project.
	ProjectPatch struct {
		Name       *string  `json:"name"`
		HourlyRate *float64 `json:"hourlyRate"`
	}

	// TaskPatch merges non-nil fields into an existing task.
	TaskPatch struct {
		Name      *string `json:"name"`
		ProjectID *string `json:"projectId"`
		ClientID  *string `json:"clientId"`
		IsRunning *bool   `json:"isRunning"`
	}

	// EntryFilter narrows ListEntries. Date bounds are inclusive and compared
	// as YYYY-MM-DD strings.
	EntryFilter struct {
		StartDate string
		EndDate   string
		TaskID    string
	}

	// NewEntry is a direct time-entry creation request. Open entries omit
	// EndTime and carry zero duration.
	NewEntry struct {
		TaskID    string
		StartTime time.Time
		EndTime   *time.Time
		Duration  int64
	}
)

// Clients

func (e *Entities) ListClients(ctx context.Context, ownerID string) ([]core.Client, error) {
	return store.Load[core.Client](ctx, e.store, ownerID, store.Clients)
}

func (e *Entities) CreateClient(ctx context.Context, ownerID, name string) (core.Client, error) {
	client := core.Client{ID: e.newID(), Name: strings.TrimSpace(name), OwnerID: ownerID}
	if err := client.Validate(); err != nil {
		return core.Client{}, err
	}

	clients, err := store.Load[core.Client](ctx, e.store, ownerID, store.Clients)
	if err != nil {
		return core.Client{}, err
	}
	clients = append(clients, client)
	if err := store.Save(ctx, e.store, ownerID, store.Clients, clients); err != nil {
		return core.Client{}, err
	}

	e.logger.InfoContext(ctx, "Client created",
		log.FieldOwnerID, ownerID,
		log.FieldEntityID, client.ID,
		log.FieldOperation, log.OpCreate)
	publishActivity(ctx, e.events, e.logger, amqp.NewActivityMessage(amqp.KindClientCreated, ownerID, client.ID, client.Name))
	return client, nil
}

func (e *Entities) DeleteClient(ctx context.Context, ownerID, id string) (core.Client, error) {
	clients, err := store.Load[core.Client](ctx, e.store, ownerID, store.Clients)
	if err != nil {
		return core.Client{}, err
	}
	idx := indexByID(clients, id, func(c core.Client) string { return c.ID })
	if idx < 0 {
		return core.Client{}, fmt.Errorf("client %s: %w", id, ErrNotFound)
	}

	deleted := clients[idx]
	clients = append(clients[:idx], clients[idx+1:]...)
	if err := store.Save(ctx, e.store, ownerID, store.Clients, clients); err != nil {
		return core.Client{}, err
	}

	// Tasks referencing the client keep their clientId; the dangling
	// reference just drops out of client-keyed aggregation.
	e.logger.InfoContext(ctx, "Client deleted",
		log.FieldOwnerID, ownerID,
		log.FieldEntityID, id,
		log.FieldOperation, log.OpDelete)
	publishActivity(ctx, e.events, e.logger, amqp.NewActivityMessage(amqp.KindClientDeleted, ownerID, deleted.ID, deleted.Name))
	return deleted, nil
}

// Projects

func (e *Entities) ListProjects(ctx context.Context, ownerID string) ([]core.Project, error) {
	return store.Load[core.Project](ctx, e.store, ownerID, store.Projects)
}

func (e *Entities) CreateProject(ctx context.Context, ownerID, name string, hourlyRate float64) (core.Project, error) {
	project := core.Project{
		ID:         e.newID(),
		Name:       strings.TrimSpace(name),
		HourlyRate: hourlyRate,
		OwnerID:    ownerID,
	}
	if err := project.Validate(); err != nil {
		return core.Project{}, err
	}

	projects, err := store.Load[core.Project](ctx, e.store, ownerID, store.Projects)
	if err != nil {
		return core.Project{}, err
	}
	projects = append(projects, project)
	if err := store.Save(ctx, e.store, ownerID, store.Projects, projects); err != nil {
		return core.Project{}, err
	}

	e.logger.InfoContext(ctx, "Project created",
		log.FieldOwnerID, ownerID,
		log.FieldEntityID, project.ID,
		log.FieldOperation, log.OpCreate)
	publishActivity(ctx, e.events, e.logger, amqp.NewActivityMessage(amqp.KindProjectCreated, ownerID, project.ID, project.Name))
	return project, nil
}

func (e *Entities) UpdateProject(ctx context.Context, ownerID, id string, patch ProjectPatch) (core.Project, error) {
	projects, err := store.Load[core.Project](ctx, e.store, ownerID, store.Projects)
	if err != nil {
		return core.Project{}, err
	}
	idx := indexByID(projects, id, func(p core.Project) string { return p.ID })
	if idx < 0 {
		return core.Project{}, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}

	updated := projects[idx]
	if patch.Name != nil {
		updated.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.HourlyRate != nil {
		updated.HourlyRate = *patch.HourlyRate
	}
	if err := updated.Validate(); err != nil {
		return core.Project{}, err
	}

	projects[idx] = updated
	if err := store.Save(ctx, e.store, ownerID, store.Projects, projects); err != nil {
		return core.Project{}, err
	}

	e.logger.InfoContext(ctx, "Project updated",
		log.FieldOwnerID, ownerID,
		log.FieldEntityID, id,
		log.FieldOperation, log.OpUpdate)
	publishActivity(ctx, e.events, e.logger, amqp.NewActivityMessage(amqp.KindProjectUpdated, ownerID, updated.ID, updated.Name))
	return updated, nil
}

func (e *Entities) DeleteProject(ctx context.Context, ownerID, id string) (core.Project, error) {
	projects, err := store.Load[core.Project](ctx, e.store, ownerID, store.Projects)
	if err != nil {
		return core.Project{}, err
	}
	idx := indexByID(projects, id, func(p core.Project) string { return p.ID })
	if idx < 0 {
		return core.Project{}, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}

	deleted := projects[idx]
	projects = append(projects[:idx], projects[idx+1:]...)
	if err := store.Save(ctx, e.store, ownerID, store.Projects, projects); err != nil {
		return core.Project{}, err
	}

	e.logger.InfoContext(ctx, "Project deleted",
		log.FieldOwnerID, ownerID,
		log.FieldEntityID, id,
		log.FieldOperation, log.OpDelete)
	publishActivity(ctx, e.events, e.logger, amqp.NewActivityMessage(amqp.KindProjectDeleted, ownerID, deleted.ID, deleted.Name))
	return deleted, nil
}

// Tasks

func (e *Entities) ListTasks(ctx context.Context, ownerID string) ([]core.Task, error) {
	return store.Load[core.Task](ctx, e.store, ownerID, store.Tasks)
}

func (e *Entities) CreateTask(ctx context.Context, ownerID, name, projectID, clientID string) (core.Task, error) {
	task := core.Task{
		ID:        e.newID(),
		Name:      strings.TrimSpace(name),
		ProjectID: projectID,
		ClientID:  clientID,
		OwnerID:   ownerID,
	}
	if err := task.Validate(); err != nil {
		return core.Task{}, err
	}

	tasks, err := store.Load[core.Task](ctx, e.store, ownerID, store.Tasks)
	if err != nil {
		return core.Task{}, err
	}
	tasks = append(tasks, task)
	if err := store.Save(ctx, e.store, ownerID, store.Tasks, tasks); err != nil {
		return core.Task{}, err
	}

	e.logger.InfoContext(ctx, "Task created",
		log.FieldOwnerID, ownerID,
		log.FieldTaskID, task.ID,
		log.FieldOperation, log.OpCreate)
	publishActivity(ctx, e.events, e.logger, amqp.NewActivityMessage(amqp.KindTaskCreated, ownerID, task.ID, task.Name))
	return task, nil
}

func (e *Entities) UpdateTask(ctx context.Context, ownerID, id string, patch TaskPatch) (core.Task, error) {
	tasks, err := store.Load[core.Task](ctx, e.store, ownerID, store.Tasks)
	if err != nil {
		return core.Task{}, err
	}
	idx := indexByID(tasks, id, func(t core.Task) string { return t.ID })
	if idx < 0 {
		return core.Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}

	updated := tasks[idx]
	if patch.Name != nil {
		updated.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.ProjectID != nil {
		updated.ProjectID = *patch.ProjectID
	}
	if patch.ClientID != nil {
		updated.ClientID = *patch.ClientID
	}
	if patch.IsRunning != nil {
		updated.IsRunning = *patch.IsRunning
	}
	if err := updated.Validate(); err != nil {
		return core.Task{}, err
	}

	tasks[idx] = updated
	if err := store.Save(ctx, e.store, ownerID, store.Tasks, tasks); err != nil {
		return core.Task{}, err
	}

	e.logger.InfoContext(ctx, "Task updated",
		log.FieldOwnerID, ownerID,
		log.FieldTaskID, id,
		log.FieldOperation, log.OpUpdate)
	publishActivity(ctx, e.events, e.logger, amqp.NewActivityMessage(amqp.KindTaskUpdated, ownerID, updated.ID, updated.Name))
	return updated, nil
}

// DeleteTask removes the task and cascades its time entries in a second
// whole-array write.
func (e *Entities) DeleteTask(ctx context.Context, ownerID, id string) (core.Task, error) {
	tasks, err := store.Load[core.Task](ctx, e.store, ownerID, store.Tasks)
	if err != nil {
		return core.Task{}, err
	}
	idx := indexByID(tasks, id, func(t core.Task) string { return t.ID })
	if idx < 0 {
		return core.Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}

	deleted := tasks[idx]
	tasks = append(tasks[:idx], tasks[idx+1:]...)
	if err := store.Save(ctx, e.store, ownerID, store.Tasks, tasks); err != nil {
		return core.Task{}, err
	}

	entries, err := store.Load[core.TimeEntry](ctx, e.store, ownerID, store.TimeEntries)
	if err != nil {
		return core.Task{}, err
	}
	kept := entries[:0]
	for _, entry := range entries {
		if entry.TaskID != id {
			kept = append(kept, entry)
		}
	}
	if len(kept) != len(entries) {
		if err := store.Save(ctx, e.store, ownerID, store.TimeEntries, kept); err != nil {
			return core.Task{}, err
		}
	}

	e.logger.InfoContext(ctx, "Task deleted",
		log.FieldOwnerID, ownerID,
		log.FieldTaskID, id,
		"entries_removed", len(entries)-len(kept),
		log.FieldOperation, log.OpDelete)
	publishActivity(ctx, e.events, e.logger, amqp.NewActivityMessage(amqp.KindTaskDeleted, ownerID, deleted.ID, deleted.Name))
	return deleted, nil
}

// Time entries

func (e *Entities) ListEntries(ctx context.Context, ownerID string, f EntryFilter) ([]core.TimeEntry, error) {
	entries, err := store.Load[core.TimeEntry](ctx, e.store, ownerID, store.TimeEntries)
	if err != nil {
		return nil, err
	}

	var out []core.TimeEntry
	for _, entry := range entries {
		if f.TaskID != "" && entry.TaskID != f.TaskID {
			continue
		}
		if f.StartDate != "" && entry.Date < f.StartDate {
			continue
		}
		if f.EndDate != "" && entry.Date > f.EndDate {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

func (e *Entities) CreateEntry(ctx context.Context, ownerID string, req NewEntry) (core.TimeEntry, error) {
	entry := core.TimeEntry{
		ID:        e.newID(),
		TaskID:    req.TaskID,
		OwnerID:   ownerID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Duration:  req.Duration,
		Date:      core.DateOf(req.StartTime),
	}
	if err := entry.Validate(); err != nil {
		return core.TimeEntry{}, err
	}

	entries, err := store.Load[core.TimeEntry](ctx, e.store, ownerID, store.TimeEntries)
	if err != nil {
		return core.TimeEntry{}, err
	}
	entries = append(entries, entry)
	if err := store.Save(ctx, e.store, ownerID, store.TimeEntries, entries); err != nil {
		return core.TimeEntry{}, err
	}

	e.logger.InfoContext(ctx, "Time entry created",
		log.FieldOwnerID, ownerID,
		log.FieldEntryID, entry.ID,
		log.FieldTaskID, entry.TaskID,
		log.FieldOperation, log.OpCreate)
	publishActivity(ctx, e.events, e.logger, amqp.NewActivityMessage(amqp.KindEntryCreated, ownerID, entry.ID, ""))
	return entry, nil
}

func indexByID[T any](items []T, id string, idOf func(T) string) int {
	for i, item := range items {
		if idOf(item) == id {
			return i
		}
	}
	return -1
}
