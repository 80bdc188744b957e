package services

import "errors"

var (
	// ErrNotFound means the targeted record does not exist in the caller's
	// collection. Failed deletes and updates leave the collection unchanged.
	ErrNotFound = errors.New("record not found")

	// ErrTimerRunning rejects starting a task whose timer is already running,
	// preserving the one-open-entry-per-task property.
	ErrTimerRunning = errors.New("timer already running for task")

	// ErrTimerStopped rejects stopping a task whose timer is not running.
	ErrTimerStopped = errors.New("timer is not running for task")
)
