package setup

import (
	"github.com/nadwiabd/insight-edms/internal/navigation"
	"github.com/nadwiabd/insight-edms/pkg/api"
)

// View names of the setup pages
const (
	ViewWorkflowList           = "setup_workflow_list"
	ViewWorkflowCreate         = "setup_workflow_create"
	ViewWorkflowEdit           = "setup_workflow_edit"
	ViewWorkflowDelete         = "setup_workflow_delete"
	ViewWorkflowMultipleDelete = "setup_workflow_multiple_delete"
	ViewWorkflowStates         = "setup_workflow_states_list"
	ViewWorkflowStateAdd       = "setup_workflow_state_add"
	ViewWorkflowStateRemove    = "setup_workflow_state_remove"

	ViewStateList           = "setup_state_list"
	ViewStateCreate         = "setup_state_create"
	ViewStateEdit           = "setup_state_edit"
	ViewStateDelete         = "setup_state_delete"
	ViewStateMultipleDelete = "setup_state_multiple_delete"
)

var (
	LinkSetupWorkflows = navigation.Link{
		Text:        "Workflows",
		View:        ViewWorkflowList,
		Icon:        "sitemap",
		Permissions: []api.Permission{PermissionWorkflowSetupView},
	}
	LinkSetupWorkflowCreate = navigation.Link{
		Text:        "Create new workflow",
		View:        ViewWorkflowCreate,
		Icon:        "add",
		Permissions: []api.Permission{PermissionWorkflowSetupCreate},
	}
	LinkSetupWorkflowEdit = navigation.Link{
		Text:        "Edit",
		View:        ViewWorkflowEdit,
		Icon:        "pencil",
		Permissions: []api.Permission{PermissionWorkflowSetupEdit},
		Object:      true,
	}
	LinkSetupWorkflowStates = navigation.Link{
		Text:        "States",
		View:        ViewWorkflowStates,
		Icon:        "list",
		Permissions: []api.Permission{PermissionWorkflowSetupEdit},
		Object:      true,
	}
	LinkSetupWorkflowDelete = navigation.Link{
		Text:        "Delete",
		View:        ViewWorkflowDelete,
		Icon:        "delete",
		Permissions: []api.Permission{PermissionWorkflowSetupDelete},
		Object:      true,
	}

	LinkSetupStates = navigation.Link{
		Text:        "States",
		View:        ViewStateList,
		Icon:        "tag",
		Permissions: []api.Permission{PermissionStateSetupView},
	}
	LinkSetupStateCreate = navigation.Link{
		Text:        "Create new state",
		View:        ViewStateCreate,
		Icon:        "add",
		Permissions: []api.Permission{PermissionStateSetupCreate},
	}
	LinkSetupStateEdit = navigation.Link{
		Text:        "Edit",
		View:        ViewStateEdit,
		Icon:        "pencil",
		Permissions: []api.Permission{PermissionStateSetupEdit},
		Object:      true,
	}
	LinkSetupStateDelete = navigation.Link{
		Text:        "Delete",
		View:        ViewStateDelete,
		Icon:        "delete",
		Permissions: []api.Permission{PermissionStateSetupDelete},
		Object:      true,
	}
)

// RegisterLinks adds the setup menu entries and the links shown around the
// setup views
func RegisterLinks(r *navigation.Registry) {
	workflowViews := []string{
		ViewWorkflowList, ViewWorkflowCreate, ViewWorkflowEdit,
		ViewWorkflowDelete, ViewWorkflowStates,
	}
	stateViews := []string{
		ViewStateList, ViewStateCreate, ViewStateEdit, ViewStateDelete,
	}

	r.RegisterLinks(
		workflowViews,
		[]navigation.Link{LinkSetupWorkflows, LinkSetupWorkflowCreate},
		navigation.SecondaryMenu,
	)
	r.RegisterLinks(
		[]string{ViewWorkflowList},
		[]navigation.Link{
			LinkSetupWorkflowEdit, LinkSetupWorkflowStates,
			LinkSetupWorkflowDelete,
		},
		navigation.ObjectMenu,
	)
	r.RegisterLinks(
		stateViews,
		[]navigation.Link{LinkSetupStates, LinkSetupStateCreate},
		navigation.SecondaryMenu,
	)
	r.RegisterLinks(
		[]string{ViewStateList},
		[]navigation.Link{LinkSetupStateEdit, LinkSetupStateDelete},
		navigation.ObjectMenu,
	)
	r.RegisterSetup(LinkSetupWorkflows, LinkSetupStates)
}
