package server

import (
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nadwiabd/insight-edms/internal/navigation"
	"github.com/nadwiabd/insight-edms/internal/permission"
	"github.com/nadwiabd/insight-edms/internal/setup"
	"github.com/nadwiabd/insight-edms/internal/store"
	"github.com/nadwiabd/insight-edms/pkg/api"
	"github.com/nadwiabd/insight-edms/pkg/log"
)

type (
	menuLink struct {
		Text   string
		URL    string
		Icon   string
		Active bool
	}

	formField struct {
		Name     string
		Label    string
		Type     string
		Value    string
		Error    string
		Options  []formOption
		Required bool
	}

	formOption struct {
		Value    string
		Label    string
		Selected bool
	}

	listRow struct {
		Cells   []string
		Links   []menuLink
		Actions []menuLink
		ID      int64
	}
)

const (
	autoAdminNotice = "This is the first time you log in with the " +
		"automatically created administrator account. Please change the " +
		"password to ensure security and remove this notice."
)

var (
	//go:embed templates/*.html
	templateFS embed.FS

	templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))
)

// render executes a page template with the data every page shares
func (s *Server) render(
	c *gin.Context, status int, view, name string, data gin.H,
) {
	ctx := c.Request.Context()
	u := currentUser(c)

	data["View"] = view
	data["User"] = u
	data["TopMenu"] = s.topMenu(c, view)
	data["Menu"] = s.links(c, view, s.allowedLinks(c, s.nav.Links(view, "")))
	if token := sessionToken(c); token != "" {
		msgs, err := s.store.PopMessages(ctx, token)
		if err != nil {
			slog.Warn("Failed to load messages", log.Error(err))
		}
		data["Messages"] = msgs
	}
	if u != nil {
		if aa, err := s.store.GetAutoAdmin(ctx); err == nil && aa.Account == u.ID {
			data["Notice"] = autoAdminNotice
		}
	}
	c.HTML(status, name, data)
}

func (s *Server) renderError(c *gin.Context, status int, msg string) {
	s.render(c, status, "", "error.html", gin.H{
		"Title":   http.StatusText(status),
		"Status":  status,
		"Message": msg,
	})
	c.Abort()
}

// handleError maps a failed operation to its error page
func (s *Server) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, permission.ErrNotAuthenticated):
		s.redirectToLogin(c)
	case errors.Is(err, permission.ErrPermissionDenied):
		s.renderError(c, http.StatusForbidden, "Insufficient permissions.")
	case isNotFound(err):
		s.renderError(c, http.StatusNotFound, "")
	default:
		slog.Error("Request failed",
			slog.String("path", c.Request.URL.Path),
			log.Error(err))
		s.renderError(c, http.StatusInternalServerError, "")
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrWorkflowNotFound) ||
		errors.Is(err, store.ErrStateNotFound) ||
		errors.Is(err, store.ErrWorkflowStateNotFound) ||
		errors.Is(err, store.ErrUserNotFound) ||
		errors.Is(err, api.ErrInvalidID) ||
		errors.Is(err, api.ErrNonPositiveID)
}

func (s *Server) requirePermission(c *gin.Context, perms ...api.Permission) bool {
	err := s.checker.CheckPermissions(c.Request.Context(), currentUser(c), perms...)
	if err != nil {
		s.handleError(c, err)
		return false
	}
	return true
}

// flash queues a message shown on the next rendered page
func (s *Server) flash(c *gin.Context, level api.MessageLevel, text string) {
	token := sessionToken(c)
	if token == "" {
		return
	}
	err := s.store.AddMessage(c.Request.Context(), token, api.Message{
		Level: level,
		Text:  text,
	})
	if err != nil {
		slog.Warn("Failed to queue message", log.Error(err))
	}
}

func (s *Server) allowedLinks(
	c *gin.Context, links []navigation.Link,
) []navigation.Link {
	ctx := c.Request.Context()
	u := currentUser(c)
	res := make([]navigation.Link, 0, len(links))
	for _, l := range links {
		if u == nil {
			continue
		}
		if len(l.Permissions) > 0 && !s.checker.Allowed(ctx, u, l.Permissions...) {
			continue
		}
		res = append(res, l)
	}
	return res
}

// links resolves navigation links to URLs. Object links are only resolved
// when an object is given
func (s *Server) links(
	c *gin.Context, view string, links []navigation.Link, args ...any,
) []menuLink {
	res := make([]menuLink, 0, len(links))
	for _, l := range links {
		if l.Object && len(args) == 0 {
			continue
		}
		var url string
		if l.Object {
			url = reverse(l.View, args...)
		} else {
			url = reverse(l.View)
		}
		res = append(res, menuLink{
			Text:   l.Text,
			URL:    url,
			Icon:   l.Icon,
			Active: l.View == view || url == c.Request.URL.Path,
		})
	}
	return res
}

func (s *Server) topMenu(c *gin.Context, view string) []menuLink {
	entries := s.nav.TopMenu()
	links := make([]navigation.Link, len(entries))
	for i, e := range entries {
		links[i] = e.Link
	}
	return s.links(c, view, s.allowedLinks(c, links))
}

func stateOptions(states []*api.State, selected string, blank bool) []formOption {
	res := make([]formOption, 0, len(states)+1)
	if blank {
		res = append(res, formOption{Label: "---------", Selected: selected == ""})
	}
	for _, st := range states {
		id := st.ID.String()
		res = append(res, formOption{
			Value:    id,
			Label:    st.Label,
			Selected: id == selected,
		})
	}
	return res
}

func labelField(value string, errs setup.FieldErrors) formField {
	return formField{
		Name:     "label",
		Label:    "Label",
		Type:     "text",
		Value:    value,
		Error:    errs["label"],
		Required: true,
	}
}
