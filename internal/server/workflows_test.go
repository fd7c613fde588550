package server_test

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	as "github.com/nadwiabd/insight-edms/internal/assert"
	"github.com/nadwiabd/insight-edms/internal/assert/helpers"
	"github.com/nadwiabd/insight-edms/internal/setup"
)

func TestListWorkflows(t *testing.T) {
	env := helpers.NewTestServer(t)
	defer env.Cleanup()

	draft := env.CreateState(t, "Draft")
	env.CreateWorkflow(t, "publishing", &draft.ID)
	env.CreateWorkflow(t, "Archiving", nil)

	t.Run("forbidden without permission", func(t *testing.T) {
		u := env.CreateUser(t, "nobody")
		w := env.Get("/setup/workflows", env.Login(t, u))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("lists with initial state", func(t *testing.T) {
		u := env.CreateUser(t, "viewer", setup.PermissionWorkflowSetupView)
		w := env.Get("/setup/workflows", env.Login(t, u))
		require.Equal(t, http.StatusOK, w.Code)

		body := w.Body.String()
		assert.Contains(t, body, "<th>Initial state</th>")
		assert.Contains(t, body, "<td>Draft</td>")
		assert.Contains(t, body, "<td>None</td>")
		assert.Less(t,
			strings.Index(body, "<td>Archiving</td>"),
			strings.Index(body, "<td>publishing</td>"),
		)
		assert.NotContains(t, body, "Delete selected")
		assert.NotContains(t, body, `href="/setup/workflows/create"`)
	})

	t.Run("superuser sees actions", func(t *testing.T) {
		u := env.CreateSuperuser(t, "root")
		w := env.Get("/setup/workflows", env.Login(t, u))
		require.Equal(t, http.StatusOK, w.Code)

		body := w.Body.String()
		assert.Contains(t, body, "Delete selected")
		assert.Contains(t, body, `href="/setup/workflows/create"`)
		assert.Contains(t, body, `href="/setup/workflows/1/edit"`)
		assert.Contains(t, body, `href="/setup/workflows/1/delete"`)
	})
}

func TestCreateWorkflow(t *testing.T) {
	env := helpers.NewTestServer(t)
	defer env.Cleanup()
	a := as.New(t)

	draft := env.CreateState(t, "Draft")
	u := env.CreateUser(t, "creator", setup.PermissionWorkflowSetupCreate)
	cookie := env.Login(t, u)

	t.Run("form", func(t *testing.T) {
		w := env.Get("/setup/workflows/create", cookie)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `name="label"`)
		assert.Contains(t, w.Body.String(), `<option value="1">Draft</option>`)
	})

	t.Run("invalid", func(t *testing.T) {
		w := env.PostForm("/setup/workflows/create", cookie, url.Values{
			"label":         {"  "},
			"initial_state": {"99"},
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "This field is required.")
		assert.Contains(t, w.Body.String(), "Select a valid choice.")

		list, err := env.Store.ListWorkflows(context.Background())
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("valid", func(t *testing.T) {
		w := env.PostForm("/setup/workflows/create", cookie, url.Values{
			"label":         {"Review"},
			"initial_state": {draft.ID.String()},
		})
		a.Redirect(w, "/setup/workflows")
		assert.Equal(t,
			[]string{"Workflow created successfully."},
			env.Messages(t, cookie),
		)

		list, err := env.Store.ListWorkflows(context.Background())
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Review", list[0].Label)
		require.NotNil(t, list[0].InitialState)
		assert.Equal(t, draft.ID, *list[0].InitialState)
	})

	t.Run("needs create permission", func(t *testing.T) {
		viewer := env.CreateUser(t, "viewer", setup.PermissionWorkflowSetupView)
		w := env.PostForm("/setup/workflows/create", env.Login(t, viewer),
			url.Values{"label": {"Sneaky"}},
		)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestEditWorkflow(t *testing.T) {
	env := helpers.NewTestServer(t)
	defer env.Cleanup()

	draft := env.CreateState(t, "Draft")
	wf := env.CreateWorkflow(t, "Review", &draft.ID)
	u := env.CreateUser(t, "editor", setup.PermissionWorkflowSetupEdit)
	cookie := env.Login(t, u)

	t.Run("missing", func(t *testing.T) {
		w := env.Get("/setup/workflows/42/edit", cookie)
		assert.Equal(t, http.StatusNotFound, w.Code)
		w = env.Get("/setup/workflows/abc/edit", cookie)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("form shows current values", func(t *testing.T) {
		w := env.Get("/setup/workflows/1/edit", cookie)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `value="Review"`)
		assert.Contains(t, w.Body.String(),
			`<option value="1" selected>Draft</option>`)
	})

	t.Run("saves", func(t *testing.T) {
		w := env.PostForm("/setup/workflows/1/edit", cookie, url.Values{
			"label":         {"Peer review"},
			"initial_state": {""},
		})
		as.New(t).Redirect(w, "/setup/workflows")
		assert.Equal(t,
			[]string{`Workflow "Peer review" updated successfully.`},
			env.Messages(t, cookie),
		)

		got, err := env.Store.GetWorkflow(context.Background(), wf.ID)
		require.NoError(t, err)
		assert.Equal(t, "Peer review", got.Label)
		assert.Nil(t, got.InitialState)
	})

	t.Run("invalid keeps record", func(t *testing.T) {
		w := env.PostForm("/setup/workflows/1/edit", cookie, url.Values{
			"label": {""},
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "This field is required.")

		got, err := env.Store.GetWorkflow(context.Background(), wf.ID)
		require.NoError(t, err)
		assert.Equal(t, "Peer review", got.Label)
	})
}

func TestWorkflowStates(t *testing.T) {
	env := helpers.NewTestServer(t)
	defer env.Cleanup()
	a := as.New(t)
	ctx := context.Background()

	draft := env.CreateState(t, "Draft")
	final := env.CreateState(t, "Final")
	wf := env.CreateWorkflow(t, "Review", nil)
	u := env.CreateUser(t, "editor", setup.PermissionWorkflowSetupEdit)
	cookie := env.Login(t, u)

	w := env.Get("/setup/workflows/7/states", cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.Get("/setup/workflows/1/states", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "There are no states.")
	assert.Contains(t, w.Body.String(), "Add state")

	w = env.PostForm("/setup/workflows/1/states/add", cookie, url.Values{
		"state":       {draft.ID.String()},
		"description": {"Starting point"},
	})
	a.Redirect(w, "/setup/workflows/1/states")
	assert.Equal(t,
		[]string{`State "Draft" added to workflow "Review".`},
		env.Messages(t, cookie),
	)

	w = env.PostForm("/setup/workflows/1/states/add", cookie, url.Values{
		"state": {draft.ID.String()},
	})
	a.Redirect(w, "/setup/workflows/1/states")
	assert.Equal(t,
		[]string{"State is already part of this workflow."},
		env.Messages(t, cookie),
	)

	w = env.Get("/setup/workflows/1/states", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "<td>Starting point</td>")
	assert.Contains(t, body, `formaction="/setup/workflows/1/states/1/remove"`)
	assert.Contains(t, body,
		`<option value="`+final.ID.String()+`">Final</option>`)
	assert.NotContains(t, body, `<option value="1">Draft</option>`)

	w = env.PostForm("/setup/workflows/1/states/1/remove", cookie, nil)
	a.Redirect(w, "/setup/workflows/1/states")
	assert.Equal(t,
		[]string{`State "Draft" removed from workflow "Review".`},
		env.Messages(t, cookie),
	)

	members, err := env.Store.WorkflowStates(ctx, wf.ID)
	require.NoError(t, err)
	assert.Empty(t, members)

	w = env.PostForm("/setup/workflows/1/states/1/remove", cookie, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWorkflowStatesForbidden(t *testing.T) {
	env := helpers.NewTestServer(t)
	defer env.Cleanup()

	env.CreateWorkflow(t, "Review", nil)
	u := env.CreateUser(t, "viewer", setup.PermissionWorkflowSetupView)
	cookie := env.Login(t, u)

	w := env.Get("/setup/workflows/1/states", cookie)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.PostForm("/setup/workflows/1/states/add", cookie, url.Values{
		"state": {"1"},
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}
