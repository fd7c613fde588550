package api

import "time"

type (
	// EventType identifies the kind of change a SetupEvent describes
	EventType string

	// SetupEvent is published whenever a setup object changes
	SetupEvent struct {
		Timestamp time.Time  `json:"timestamp"`
		Type      EventType  `json:"type"`
		Kind      ObjectKind `json:"kind"`
		Label     string     `json:"label"`
		ID        int64      `json:"id"`
	}
)

const (
	EventTypeCreated EventType = "created"
	EventTypeUpdated EventType = "updated"
	EventTypeDeleted EventType = "deleted"
)
