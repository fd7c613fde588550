package setup_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadwiabd/insight-edms/internal/assert/helpers"
	"github.com/nadwiabd/insight-edms/internal/setup"
	"github.com/nadwiabd/insight-edms/pkg/api"
)

func TestWorkflowFormValidate(t *testing.T) {
	env := helpers.NewTestStore(t)
	defer env.Cleanup()
	ctx := context.Background()
	st := env.CreateState(t, "Draft")

	t.Run("trims and accepts", func(t *testing.T) {
		f := &setup.WorkflowForm{Label: "  Publishing  ", InitialState: st.ID.String()}
		ok, err := f.Validate(ctx, env.Store)
		require.NoError(t, err)
		assert.True(t, ok)

		wf := &api.Workflow{}
		f.Apply(wf)
		assert.Equal(t, "Publishing", wf.Label)
		require.NotNil(t, wf.InitialState)
		assert.Equal(t, st.ID, *wf.InitialState)
	})

	t.Run("initial state is optional", func(t *testing.T) {
		f := &setup.WorkflowForm{Label: "Publishing"}
		ok, err := f.Validate(ctx, env.Store)
		require.NoError(t, err)
		assert.True(t, ok)

		wf := &api.Workflow{InitialState: &st.ID}
		f.Apply(wf)
		assert.Nil(t, wf.InitialState)
	})

	t.Run("label is required", func(t *testing.T) {
		f := &setup.WorkflowForm{Label: "   "}
		ok, err := f.Validate(ctx, env.Store)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, "This field is required.", f.Errors["label"])
	})

	t.Run("label length is limited", func(t *testing.T) {
		f := &setup.WorkflowForm{Label: strings.Repeat("é", 129)}
		ok, err := f.Validate(ctx, env.Store)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Contains(t, f.Errors["label"], "at most 128 characters")

		f = &setup.WorkflowForm{Label: strings.Repeat("é", 128)}
		ok, err = f.Validate(ctx, env.Store)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("initial state must exist", func(t *testing.T) {
		for _, raw := range []string{"99", "abc", "-1"} {
			f := &setup.WorkflowForm{Label: "Publishing", InitialState: raw}
			ok, err := f.Validate(ctx, env.Store)
			require.NoError(t, err)
			assert.False(t, ok, raw)
			assert.Contains(t, f.Errors["initial_state"], "Select a valid choice")
		}
	})
}

func TestNewWorkflowForm(t *testing.T) {
	id := api.StateID(7)
	f := setup.NewWorkflowForm(&api.Workflow{Label: "Publishing", InitialState: &id})
	assert.Equal(t, "Publishing", f.Label)
	assert.Equal(t, "7", f.InitialState)

	empty := setup.NewWorkflowForm(nil)
	assert.Empty(t, empty.Label)
	assert.Empty(t, empty.InitialState)
}

func TestStateFormValidate(t *testing.T) {
	f := setup.NewStateForm(&api.State{Label: " Draft ", Description: " text "})
	assert.True(t, f.Validate())

	st := &api.State{}
	f.Apply(st)
	assert.Equal(t, "Draft", st.Label)
	assert.Equal(t, "text", st.Description)

	f = &setup.StateForm{}
	assert.False(t, f.Validate())
	assert.Contains(t, f.Errors, "label")

	f = &setup.StateForm{Label: "Draft", Description: strings.Repeat("x", 2049)}
	assert.False(t, f.Validate())
	assert.Contains(t, f.Errors["description"], "at most 2048 characters")
}

func TestWorkflowStateFormValidate(t *testing.T) {
	env := helpers.NewTestStore(t)
	defer env.Cleanup()
	ctx := context.Background()
	st := env.CreateState(t, "Draft")

	f := &setup.WorkflowStateForm{State: st.ID.String(), Description: " first "}
	ok, err := f.Validate(ctx, env.Store)
	require.NoError(t, err)
	assert.True(t, ok)
	m := f.Membership(3)
	assert.Equal(t, api.WorkflowID(3), m.WorkflowID)
	assert.Equal(t, st.ID, m.StateID)
	assert.Equal(t, "first", m.Description)

	f = &setup.WorkflowStateForm{}
	ok, err = f.Validate(ctx, env.Store)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "This field is required.", f.Errors["state"])

	f = &setup.WorkflowStateForm{State: "42"}
	ok, err = f.Validate(ctx, env.Store)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, f.Errors["state"], "Select a valid choice")
}
