package core

import (
	"errors"
	"strings"
	"time"
)

type (
	// Client is a billable counterparty. Tasks may reference it; deleting a
	// client leaves those references dangling on purpose.
	Client struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		OwnerID string `json:"ownerId"`
	}

	// Project carries the hourly rate used to derive earnings.
	Project struct {
		ID         string  `json:"id"`
		Name       string  `json:"name"`
		HourlyRate float64 `json:"hourlyRate"`
		OwnerID    string  `json:"ownerId"`
	}

	Task struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		ProjectID string `json:"projectId,omitempty"`
		ClientID  string `json:"clientId,omitempty"`
		OwnerID   string `json:"ownerId"`
		IsRunning bool   `json:"isRunning"`
	}

	// TimeEntry records one timing session for a task. An entry with no
	// EndTime is open; Duration stays 0 until the entry is closed.
	TimeEntry struct {
		ID        string     `json:"id"`
		TaskID    string     `json:"taskId"`
		OwnerID   string     `json:"ownerId"`
		StartTime time.Time  `json:"startTime"`
		EndTime   *time.Time `json:"endTime,omitempty"`
		Duration  int64      `json:"duration"`
		Date      string     `json:"date"`
	}

	// Activity is one line of the recent-activity feed, written by the worker
	// from published mutation events. Newest first in storage.
	Activity struct {
		ID         string    `json:"id"`
		Kind       string    `json:"kind"`
		OwnerID    string    `json:"ownerId"`
		EntityID   string    `json:"entityId,omitempty"`
		EntityName string    `json:"entityName,omitempty"`
		Duration   int64     `json:"duration,omitempty"`
		Timestamp  time.Time `json:"timestamp"`
	}
)

var (
	ErrEmptyName       = errors.New("name is required")
	ErrNegativeRate    = errors.New("hourly rate cannot be negative")
	ErrEmptyTaskID     = errors.New("task id is required")
	ErrZeroStartTime   = errors.New("start time is required")
	ErrEndBeforeStart  = errors.New("end time precedes start time")
	ErrNegativeSeconds = errors.New("duration cannot be negative")
)

// DateOf derives the calendar day (UTC) a time entry belongs to.
func DateOf(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func (c Client) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (p Project) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if p.HourlyRate < 0 {
		return ErrNegativeRate
	}
	return nil
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (e TimeEntry) Validate() error {
	if strings.TrimSpace(e.TaskID) == "" {
		return ErrEmptyTaskID
	}
	if e.StartTime.IsZero() {
		return ErrZeroStartTime
	}
	if e.EndTime != nil && e.EndTime.Before(e.StartTime) {
		return ErrEndBeforeStart
	}
	if e.Duration < 0 {
		return ErrNegativeSeconds
	}
	return nil
}

// Open reports whether the entry is still being timed.
func (e TimeEntry) Open() bool {
	return e.EndTime == nil
}

// Close stamps the end time and the elapsed whole seconds, floored.
func (e *TimeEntry) Close(now time.Time) {
	end := now
	e.EndTime = &end
	e.Duration = int64(now.Sub(e.StartTime) / time.Second)
	if e.Duration < 0 {
		e.Duration = 0
	}
}
