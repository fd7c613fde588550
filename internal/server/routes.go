package server

import (
	"fmt"
	"strings"

	"github.com/nadwiabd/insight-edms/internal/setup"
)

const (
	viewHealth         = "health"
	viewLogin          = "login_view"
	viewLogout         = "logout_view"
	viewHome           = "home"
	viewAbout          = "about_view"
	viewLicense        = "license_view"
	viewUserDetails    = "current_user_details"
	viewUserEdit       = "current_user_edit"
	viewPasswordChange = "password_change_view"
	viewSetupEvents    = "setup_events"
)

var viewPaths = map[string]string{
	viewHealth:         "/health",
	viewLogin:          "/login",
	viewLogout:         "/logout",
	viewHome:           "/",
	viewAbout:          "/about",
	viewLicense:        "/license",
	viewUserDetails:    "/account",
	viewUserEdit:       "/account/edit",
	viewPasswordChange: "/account/password",
	viewSetupEvents:    "/setup/events",

	setup.ViewWorkflowList:           "/setup/workflows",
	setup.ViewWorkflowCreate:         "/setup/workflows/create",
	setup.ViewWorkflowEdit:           "/setup/workflows/:pk/edit",
	setup.ViewWorkflowDelete:         "/setup/workflows/:pk/delete",
	setup.ViewWorkflowMultipleDelete: "/setup/workflows/multiple/delete",
	setup.ViewWorkflowStates:         "/setup/workflows/:pk/states",
	setup.ViewWorkflowStateAdd:       "/setup/workflows/:pk/states/add",
	setup.ViewWorkflowStateRemove:    "/setup/workflows/:pk/states/:state/remove",

	setup.ViewStateList:           "/setup/states",
	setup.ViewStateCreate:         "/setup/states/create",
	setup.ViewStateEdit:           "/setup/states/:pk/edit",
	setup.ViewStateDelete:         "/setup/states/:pk/delete",
	setup.ViewStateMultipleDelete: "/setup/states/multiple/delete",
}

func path(view string) string {
	p, ok := viewPaths[view]
	if !ok {
		panic(fmt.Sprintf("unknown view: %s", view))
	}
	return p
}

// reverse builds the URL of a view, filling its path parameters in order
func reverse(view string, args ...any) string {
	parts := strings.Split(path(view), "/")
	for i, part := range parts {
		if !strings.HasPrefix(part, ":") || len(args) == 0 {
			continue
		}
		parts[i] = fmt.Sprint(args[0])
		args = args[1:]
	}
	return strings.Join(parts, "/")
}
