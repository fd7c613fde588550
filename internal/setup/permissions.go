package setup

import (
	"github.com/nadwiabd/insight-edms/internal/permission"
	"github.com/nadwiabd/insight-edms/pkg/api"
)

// Namespace groups the workflow setup permissions
const Namespace = "workflows"

var (
	PermissionWorkflowSetupView = api.Permission{
		Namespace: Namespace,
		Name:      "workflow_setup_view",
		Label:     "View existing workflows",
	}
	PermissionWorkflowSetupCreate = api.Permission{
		Namespace: Namespace,
		Name:      "workflow_setup_create",
		Label:     "Create new workflows",
	}
	PermissionWorkflowSetupEdit = api.Permission{
		Namespace: Namespace,
		Name:      "workflow_setup_edit",
		Label:     "Edit existing workflows",
	}
	PermissionWorkflowSetupDelete = api.Permission{
		Namespace: Namespace,
		Name:      "workflow_setup_delete",
		Label:     "Delete existing workflows",
	}

	PermissionStateSetupView = api.Permission{
		Namespace: Namespace,
		Name:      "state_setup_view",
		Label:     "View existing states",
	}
	PermissionStateSetupCreate = api.Permission{
		Namespace: Namespace,
		Name:      "state_setup_create",
		Label:     "Create new states",
	}
	PermissionStateSetupEdit = api.Permission{
		Namespace: Namespace,
		Name:      "state_setup_edit",
		Label:     "Edit existing states",
	}
	PermissionStateSetupDelete = api.Permission{
		Namespace: Namespace,
		Name:      "state_setup_delete",
		Label:     "Delete existing states",
	}
)

// RegisterPermissions adds the workflow setup permissions to a registry
func RegisterPermissions(r *permission.Registry) {
	r.Register(
		PermissionWorkflowSetupView,
		PermissionWorkflowSetupCreate,
		PermissionWorkflowSetupEdit,
		PermissionWorkflowSetupDelete,
		PermissionStateSetupView,
		PermissionStateSetupCreate,
		PermissionStateSetupEdit,
		PermissionStateSetupDelete,
	)
}
