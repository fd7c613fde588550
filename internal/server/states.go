package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nadwiabd/insight-edms/internal/navigation"
	"github.com/nadwiabd/insight-edms/internal/setup"
	"github.com/nadwiabd/insight-edms/pkg/api"
)

func (s *Server) stateDeleteFlow() *deleteFlow[api.StateID, *api.State] {
	return &deleteFlow[api.StateID, *api.State]{
		get:        s.setup.GetState,
		remove:     s.setup.DeleteState,
		permission: setup.PermissionStateSetupDelete,
		object:     "state",
		objects:    "states",
		listView:   setup.ViewStateList,
		icon:       "tag_delete",
	}
}

func (s *Server) listStates(c *gin.Context) {
	if !s.requirePermission(c, setup.PermissionStateSetupView) {
		return
	}
	states, err := s.setup.ListStates(c.Request.Context())
	if err != nil {
		s.handleError(c, err)
		return
	}

	objectLinks := s.allowedLinks(
		c, s.nav.Links(setup.ViewStateList, navigation.ObjectMenu),
	)
	list := make([]listRow, len(states))
	for i, st := range states {
		list[i] = listRow{
			ID:    int64(st.ID),
			Cells: []string{st.Label, st.Description},
			Links: s.links(c, setup.ViewStateList, objectLinks, st.ID),
		}
	}

	data := gin.H{
		"Title":   "States",
		"Objects": "states",
		"Columns": []string{"Label", "Description"},
		"Rows":    list,
	}
	if s.checker.Allowed(
		c.Request.Context(), currentUser(c), setup.PermissionStateSetupDelete,
	) {
		data["MultiAction"] = reverse(setup.ViewStateMultipleDelete)
		data["MultiText"] = "Delete selected"
	}
	s.render(c, http.StatusOK, setup.ViewStateList, "generic_list.html", data)
}

func (s *Server) createStateForm(c *gin.Context) {
	if !s.requirePermission(c, setup.PermissionStateSetupCreate) {
		return
	}
	s.renderStateForm(c, setup.ViewStateCreate, "Create state",
		setup.NewStateForm(nil))
}

func (s *Server) createState(c *gin.Context) {
	if !s.requirePermission(c, setup.PermissionStateSetupCreate) {
		return
	}
	var form setup.StateForm
	if err := c.ShouldBind(&form); err != nil {
		s.handleError(c, err)
		return
	}
	if !form.Validate() {
		s.renderStateForm(c, setup.ViewStateCreate, "Create state", &form)
		return
	}
	if _, err := s.setup.CreateState(c.Request.Context(), &form); err != nil {
		s.handleError(c, err)
		return
	}
	s.flash(c, api.MessageSuccess, "State created successfully.")
	c.Redirect(http.StatusFound, reverse(setup.ViewStateList))
}

func (s *Server) editStateForm(c *gin.Context) {
	if !s.requirePermission(c, setup.PermissionStateSetupEdit) {
		return
	}
	st, ok := s.stateParam(c)
	if !ok {
		return
	}
	s.renderStateForm(c, setup.ViewStateEdit,
		fmt.Sprintf("Edit state: %s", st), setup.NewStateForm(st), st.ID)
}

func (s *Server) editState(c *gin.Context) {
	if !s.requirePermission(c, setup.PermissionStateSetupEdit) {
		return
	}
	st, ok := s.stateParam(c)
	if !ok {
		return
	}
	var form setup.StateForm
	if err := c.ShouldBind(&form); err != nil {
		s.handleError(c, err)
		return
	}
	if !form.Validate() {
		s.renderStateForm(c, setup.ViewStateEdit,
			fmt.Sprintf("Edit state: %s", st), &form, st.ID)
		return
	}
	if err := s.setup.UpdateState(c.Request.Context(), st, &form); err != nil {
		s.handleError(c, err)
		return
	}
	s.flash(c, api.MessageSuccess,
		fmt.Sprintf("State \"%s\" updated successfully.", st))
	c.Redirect(http.StatusFound, reverse(setup.ViewStateList))
}

func (s *Server) deleteState(c *gin.Context) {
	s.stateDeleteFlow().serveSingle(s, c)
}

func (s *Server) deleteStates(c *gin.Context) {
	s.stateDeleteFlow().serveMultiple(s, c)
}

func (s *Server) stateParam(c *gin.Context) (*api.State, bool) {
	return loadParam(c, s, "pk", s.setup.GetState)
}

func (s *Server) renderStateForm(
	c *gin.Context, view, title string, form *setup.StateForm, args ...any,
) {
	s.render(c, http.StatusOK, view, "generic_form.html", gin.H{
		"Title":  title,
		"Action": reverse(view, args...),
		"Cancel": reverse(setup.ViewStateList),
		"Submit": "Save",
		"Fields": []formField{
			labelField(form.Label, form.Errors),
			{
				Name:  "description",
				Label: "Description",
				Type:  "textarea",
				Value: form.Description,
				Error: form.Errors["description"],
			},
		},
	})
}
