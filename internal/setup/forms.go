package setup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/nadwiabd/insight-edms/internal/store"
	"github.com/nadwiabd/insight-edms/pkg/api"
)

type (
	// FieldErrors maps a form field name to its validation message
	FieldErrors map[string]string

	// StateGetter resolves state references made by forms
	StateGetter interface {
		GetState(ctx context.Context, id api.StateID) (*api.State, error)
	}

	// WorkflowForm is the create and edit form of a workflow
	WorkflowForm struct {
		Errors       FieldErrors `form:"-"`
		initialState *api.StateID
		Label        string `form:"label"`
		InitialState string `form:"initial_state"`
	}

	// StateForm is the create and edit form of a state
	StateForm struct {
		Errors      FieldErrors `form:"-"`
		Label       string      `form:"label"`
		Description string      `form:"description"`
	}

	// WorkflowStateForm attaches a state to a workflow
	WorkflowStateForm struct {
		Errors      FieldErrors `form:"-"`
		State       string      `form:"state"`
		Description string      `form:"description"`
		stateID     api.StateID
	}
)

const (
	MaxLabelLength       = 128
	MaxDescriptionLength = 2048

	msgRequired      = "This field is required."
	msgInvalidChoice = "Select a valid choice. That choice is not one of " +
		"the available choices."
)

// NewWorkflowForm creates a form bound to an existing workflow, or an
// empty one when wf is nil
func NewWorkflowForm(wf *api.Workflow) *WorkflowForm {
	f := &WorkflowForm{}
	if wf != nil {
		f.Label = wf.Label
		if wf.InitialState != nil {
			f.InitialState = wf.InitialState.String()
		}
	}
	return f
}

// Validate normalizes the form and records field errors. The error return
// is reserved for lookup failures
func (f *WorkflowForm) Validate(
	ctx context.Context, states StateGetter,
) (bool, error) {
	f.Errors = FieldErrors{}
	f.Label = strings.TrimSpace(f.Label)
	validateLabel(f.Errors, f.Label)

	f.initialState = nil
	f.InitialState = strings.TrimSpace(f.InitialState)
	if f.InitialState != "" {
		id, err := lookupState(ctx, states, f.InitialState)
		switch {
		case errors.Is(err, errInvalidChoice):
			f.Errors["initial_state"] = msgInvalidChoice
		case err != nil:
			return false, err
		default:
			f.initialState = &id
		}
	}
	return len(f.Errors) == 0, nil
}

// Apply copies validated values onto a workflow
func (f *WorkflowForm) Apply(wf *api.Workflow) {
	wf.Label = f.Label
	wf.InitialState = f.initialState
}

// NewStateForm creates a form bound to an existing state, or an empty one
// when st is nil
func NewStateForm(st *api.State) *StateForm {
	f := &StateForm{}
	if st != nil {
		f.Label = st.Label
		f.Description = st.Description
	}
	return f
}

// Validate normalizes the form and records field errors
func (f *StateForm) Validate() bool {
	f.Errors = FieldErrors{}
	f.Label = strings.TrimSpace(f.Label)
	f.Description = strings.TrimSpace(f.Description)
	validateLabel(f.Errors, f.Label)
	if n := utf8.RuneCountInString(f.Description); n > MaxDescriptionLength {
		f.Errors["description"] = tooLong(MaxDescriptionLength, n)
	}
	return len(f.Errors) == 0
}

// Apply copies validated values onto a state
func (f *StateForm) Apply(st *api.State) {
	st.Label = f.Label
	st.Description = f.Description
}

// Validate checks that the selected state exists
func (f *WorkflowStateForm) Validate(
	ctx context.Context, states StateGetter,
) (bool, error) {
	f.Errors = FieldErrors{}
	f.State = strings.TrimSpace(f.State)
	f.Description = strings.TrimSpace(f.Description)

	if f.State == "" {
		f.Errors["state"] = msgRequired
	} else {
		id, err := lookupState(ctx, states, f.State)
		switch {
		case errors.Is(err, errInvalidChoice):
			f.Errors["state"] = msgInvalidChoice
		case err != nil:
			return false, err
		default:
			f.stateID = id
		}
	}
	if n := utf8.RuneCountInString(f.Description); n > MaxDescriptionLength {
		f.Errors["description"] = tooLong(MaxDescriptionLength, n)
	}
	return len(f.Errors) == 0, nil
}

// Membership builds the attachment described by a validated form
func (f *WorkflowStateForm) Membership(id api.WorkflowID) *api.WorkflowState {
	return &api.WorkflowState{
		WorkflowID:  id,
		StateID:     f.stateID,
		Description: f.Description,
	}
}

var errInvalidChoice = errors.New("invalid choice")

func lookupState(
	ctx context.Context, states StateGetter, raw string,
) (api.StateID, error) {
	id, err := api.ParseID[api.StateID](raw)
	if err != nil {
		return 0, errInvalidChoice
	}
	if _, err := states.GetState(ctx, id); err != nil {
		if errors.Is(err, store.ErrStateNotFound) {
			return 0, errInvalidChoice
		}
		return 0, err
	}
	return id, nil
}

func validateLabel(errs FieldErrors, label string) {
	if label == "" {
		errs["label"] = msgRequired
		return
	}
	if n := utf8.RuneCountInString(label); n > MaxLabelLength {
		errs["label"] = tooLong(MaxLabelLength, n)
	}
}

func tooLong(limit, n int) string {
	return fmt.Sprintf(
		"Ensure this value has at most %d characters (it has %d).", limit, n,
	)
}
