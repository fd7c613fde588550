package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nadwiabd/insight-edms/internal/navigation"
	"github.com/nadwiabd/insight-edms/internal/setup"
	"github.com/nadwiabd/insight-edms/internal/store"
	"github.com/nadwiabd/insight-edms/pkg/api"
)

func (s *Server) workflowDeleteFlow() *deleteFlow[api.WorkflowID, *api.Workflow] {
	return &deleteFlow[api.WorkflowID, *api.Workflow]{
		get:        s.setup.GetWorkflow,
		remove:     s.setup.DeleteWorkflow,
		permission: setup.PermissionWorkflowSetupDelete,
		object:     "workflow",
		objects:    "workflows",
		listView:   setup.ViewWorkflowList,
		icon:       "sitemap_delete",
	}
}

func (s *Server) listWorkflows(c *gin.Context) {
	if !s.requirePermission(c, setup.PermissionWorkflowSetupView) {
		return
	}
	rows, err := s.setup.ListWorkflows(c.Request.Context())
	if err != nil {
		s.handleError(c, err)
		return
	}

	objectLinks := s.allowedLinks(
		c, s.nav.Links(setup.ViewWorkflowList, navigation.ObjectMenu),
	)
	list := make([]listRow, len(rows))
	for i, row := range rows {
		list[i] = listRow{
			ID:    int64(row.ID),
			Cells: []string{row.Label, row.InitialStateLabel},
			Links: s.links(c, setup.ViewWorkflowList, objectLinks, row.ID),
		}
	}

	data := gin.H{
		"Title":   "Workflows",
		"Objects": "workflows",
		"Columns": []string{"Label", "Initial state"},
		"Rows":    list,
	}
	if s.checker.Allowed(
		c.Request.Context(), currentUser(c), setup.PermissionWorkflowSetupDelete,
	) {
		data["MultiAction"] = reverse(setup.ViewWorkflowMultipleDelete)
		data["MultiText"] = "Delete selected"
	}
	s.render(c, http.StatusOK, setup.ViewWorkflowList, "generic_list.html", data)
}

func (s *Server) createWorkflowForm(c *gin.Context) {
	if !s.requirePermission(c, setup.PermissionWorkflowSetupCreate) {
		return
	}
	s.renderWorkflowForm(c, http.StatusOK, setup.ViewWorkflowCreate,
		"Create workflow", setup.NewWorkflowForm(nil))
}

func (s *Server) createWorkflow(c *gin.Context) {
	if !s.requirePermission(c, setup.PermissionWorkflowSetupCreate) {
		return
	}
	ctx := c.Request.Context()
	form := setup.NewWorkflowForm(nil)
	if !s.bindWorkflowForm(c, form) {
		s.renderWorkflowForm(c, http.StatusOK, setup.ViewWorkflowCreate,
			"Create workflow", form)
		return
	}
	if _, err := s.setup.CreateWorkflow(ctx, form); err != nil {
		s.handleError(c, err)
		return
	}
	s.flash(c, api.MessageSuccess, "Workflow created successfully.")
	c.Redirect(http.StatusFound, reverse(setup.ViewWorkflowList))
}

func (s *Server) editWorkflowForm(c *gin.Context) {
	if !s.requirePermission(c, setup.PermissionWorkflowSetupEdit) {
		return
	}
	wf, ok := s.workflowParam(c)
	if !ok {
		return
	}
	s.renderWorkflowForm(c, http.StatusOK, setup.ViewWorkflowEdit,
		fmt.Sprintf("Edit workflow: %s", wf), setup.NewWorkflowForm(wf), wf.ID)
}

func (s *Server) editWorkflow(c *gin.Context) {
	if !s.requirePermission(c, setup.PermissionWorkflowSetupEdit) {
		return
	}
	wf, ok := s.workflowParam(c)
	if !ok {
		return
	}
	title := fmt.Sprintf("Edit workflow: %s", wf)
	form := &setup.WorkflowForm{}
	if !s.bindWorkflowForm(c, form) {
		s.renderWorkflowForm(c, http.StatusOK, setup.ViewWorkflowEdit,
			title, form, wf.ID)
		return
	}
	if err := s.setup.UpdateWorkflow(c.Request.Context(), wf, form); err != nil {
		s.handleError(c, err)
		return
	}
	s.flash(c, api.MessageSuccess,
		fmt.Sprintf("Workflow \"%s\" updated successfully.", wf))
	c.Redirect(http.StatusFound, reverse(setup.ViewWorkflowList))
}

func (s *Server) deleteWorkflow(c *gin.Context) {
	s.workflowDeleteFlow().serveSingle(s, c)
}

func (s *Server) deleteWorkflows(c *gin.Context) {
	s.workflowDeleteFlow().serveMultiple(s, c)
}

func (s *Server) listWorkflowStates(c *gin.Context) {
	if !s.requirePermission(c, setup.PermissionWorkflowSetupEdit) {
		return
	}
	wf, ok := s.workflowParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	rows, err := s.setup.WorkflowStates(ctx, wf.ID)
	if err != nil {
		s.handleError(c, err)
		return
	}
	states, err := s.setup.ListStates(ctx)
	if err != nil {
		s.handleError(c, err)
		return
	}

	attached := make(map[api.StateID]bool, len(rows))
	list := make([]listRow, len(rows))
	for i, row := range rows {
		attached[row.State.ID] = true
		list[i] = listRow{
			ID:    int64(row.State.ID),
			Cells: []string{row.State.Label, row.Description},
			Actions: []menuLink{{
				Text: "Remove",
				URL: reverse(
					setup.ViewWorkflowStateRemove, wf.ID, row.State.ID,
				),
			}},
		}
	}
	var available []*api.State
	for _, st := range states {
		if !attached[st.ID] {
			available = append(available, st)
		}
	}

	data := gin.H{
		"Title":   fmt.Sprintf("States of workflow: %s", wf),
		"Object":  wf,
		"Objects": "states",
		"Columns": []string{"State", "Description"},
		"Rows":    list,
	}
	if len(available) > 0 {
		data["AddForm"] = gin.H{
			"Action": reverse(setup.ViewWorkflowStateAdd, wf.ID),
			"Submit": "Add state",
			"Fields": []formField{
				{
					Name:     "state",
					Label:    "State",
					Type:     "select",
					Options:  stateOptions(available, "", false),
					Required: true,
				},
				{
					Name:  "description",
					Label: "Description",
					Type:  "text",
				},
			},
		}
	}
	s.render(c, http.StatusOK, setup.ViewWorkflowStates, "generic_list.html", data)
}

func (s *Server) addWorkflowState(c *gin.Context) {
	if !s.requirePermission(c, setup.PermissionWorkflowSetupEdit) {
		return
	}
	wf, ok := s.workflowParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	target := reverse(setup.ViewWorkflowStates, wf.ID)

	var form setup.WorkflowStateForm
	if err := c.ShouldBind(&form); err != nil {
		s.handleError(c, err)
		return
	}
	valid, err := form.Validate(ctx, s.setup)
	if err != nil {
		s.handleError(c, err)
		return
	}
	if !valid {
		for field, msg := range form.Errors {
			s.flash(c, api.MessageError, fmt.Sprintf("%s: %s", field, msg))
		}
		c.Redirect(http.StatusFound, target)
		return
	}

	err = s.setup.AddWorkflowState(ctx, wf, &form)
	if errors.Is(err, store.ErrWorkflowStateExists) {
		s.flash(c, api.MessageError, "State is already part of this workflow.")
		c.Redirect(http.StatusFound, target)
		return
	}
	if err != nil {
		s.handleError(c, err)
		return
	}
	st, err := s.setup.GetState(ctx, form.Membership(wf.ID).StateID)
	if err != nil {
		s.handleError(c, err)
		return
	}
	s.flash(c, api.MessageSuccess, fmt.Sprintf(
		"State \"%s\" added to workflow \"%s\".", st, wf,
	))
	c.Redirect(http.StatusFound, target)
}

func (s *Server) removeWorkflowState(c *gin.Context) {
	if !s.requirePermission(c, setup.PermissionWorkflowSetupEdit) {
		return
	}
	wf, ok := s.workflowParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	id, err := api.ParseID[api.StateID](c.Param("state"))
	if err != nil {
		s.handleError(c, err)
		return
	}
	st, err := s.setup.GetState(ctx, id)
	if err != nil {
		s.handleError(c, err)
		return
	}
	if err := s.setup.RemoveWorkflowState(ctx, wf, id); err != nil {
		s.handleError(c, err)
		return
	}
	s.flash(c, api.MessageSuccess, fmt.Sprintf(
		"State \"%s\" removed from workflow \"%s\".", st, wf,
	))
	c.Redirect(http.StatusFound, reverse(setup.ViewWorkflowStates, wf.ID))
}

func (s *Server) workflowParam(c *gin.Context) (*api.Workflow, bool) {
	return loadParam(c, s, "pk", s.setup.GetWorkflow)
}

// bindWorkflowForm binds and validates a posted workflow form, reporting
// whether it may be saved. Lookup failures render an error page
func (s *Server) bindWorkflowForm(c *gin.Context, form *setup.WorkflowForm) bool {
	if err := c.ShouldBind(form); err != nil {
		s.handleError(c, err)
		return false
	}
	valid, err := form.Validate(c.Request.Context(), s.setup)
	if err != nil {
		s.handleError(c, err)
		return false
	}
	return valid
}

func (s *Server) renderWorkflowForm(
	c *gin.Context, status int, view, title string, form *setup.WorkflowForm,
	args ...any,
) {
	if c.IsAborted() {
		return
	}
	states, err := s.setup.ListStates(c.Request.Context())
	if err != nil {
		s.handleError(c, err)
		return
	}
	s.render(c, status, view, "generic_form.html", gin.H{
		"Title":  title,
		"Action": reverse(view, args...),
		"Cancel": reverse(setup.ViewWorkflowList),
		"Submit": "Save",
		"Fields": []formField{
			labelField(form.Label, form.Errors),
			{
				Name:    "initial_state",
				Label:   "Initial state",
				Type:    "select",
				Value:   form.InitialState,
				Error:   form.Errors["initial_state"],
				Options: stateOptions(states, form.InitialState, true),
			},
		},
	})
}

func loadParam[ID ~int64, T any](
	c *gin.Context, s *Server, name string,
	get func(context.Context, ID) (T, error),
) (T, bool) {
	var zero T
	id, err := api.ParseID[ID](c.Param(name))
	if err != nil {
		s.handleError(c, err)
		return zero, false
	}
	obj, err := get(c.Request.Context(), id)
	if err != nil {
		s.handleError(c, err)
		return zero, false
	}
	return obj, true
}
