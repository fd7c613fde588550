package api

import "time"

type (
	// ObjectKind names a kind of setup object
	ObjectKind string

	// State is a named workflow state definition
	State struct {
		CreatedAt   time.Time `json:"created_at"`
		UpdatedAt   time.Time `json:"updated_at"`
		Label       string    `json:"label"`
		Description string    `json:"description,omitempty"`
		ID          StateID   `json:"id"`
	}

	// Workflow is a named workflow definition with an optional initial state
	Workflow struct {
		CreatedAt    time.Time  `json:"created_at"`
		UpdatedAt    time.Time  `json:"updated_at"`
		InitialState *StateID   `json:"initial_state,omitempty"`
		Label        string     `json:"label"`
		ID           WorkflowID `json:"id"`
	}

	// WorkflowState attaches a state definition to a workflow
	WorkflowState struct {
		Description string     `json:"description,omitempty"`
		WorkflowID  WorkflowID `json:"workflow_id"`
		StateID     StateID    `json:"state_id"`
	}
)

const (
	KindWorkflow ObjectKind = "workflow"
	KindState    ObjectKind = "state"
	KindUser     ObjectKind = "user"
)

func (s *State) String() string {
	return s.Label
}

// AccessKey identifies the state for object-level access entries
func (s *State) AccessKey() string {
	return string(KindState) + ":" + s.ID.String()
}

func (w *Workflow) String() string {
	return w.Label
}

// AccessKey identifies the workflow for object-level access entries
func (w *Workflow) AccessKey() string {
	return string(KindWorkflow) + ":" + w.ID.String()
}

// HasInitialState reports whether the workflow starts in the given state
func (w *Workflow) HasInitialState(id StateID) bool {
	return w.InitialState != nil && *w.InitialState == id
}
