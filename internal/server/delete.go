package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nadwiabd/insight-edms/internal/permission"
	"github.com/nadwiabd/insight-edms/pkg/api"
)

type (
	deletable interface {
		permission.Object
		fmt.Stringer
	}

	// deleteFlow describes how one kind of object is deleted by the
	// single and multiple delete views
	deleteFlow[ID ~int64, T deletable] struct {
		get        func(context.Context, ID) (T, error)
		remove     func(context.Context, *api.User, T) error
		permission api.Permission
		object     string
		objects    string
		listView   string
		icon       string
	}

	deletePlan[T deletable] struct {
		targets      []T
		postRedirect string
	}
)

const (
	idListParam    = "id_list"
	deleteMessage  = "Will be removed from all documents."
	previousParam  = "previous"
	nextParam      = "next"
	fallbackTarget = "/"
)

// serveSingle runs the flow for the object named by the pk path parameter
func (f *deleteFlow[ID, T]) serveSingle(s *Server, c *gin.Context) {
	id, err := api.ParseID[ID](c.Param("pk"))
	if err != nil {
		s.handleError(c, err)
		return
	}
	obj, err := f.get(c.Request.Context(), id)
	if err != nil {
		s.handleError(c, err)
		return
	}
	f.serve(s, c, &deletePlan[T]{
		targets:      []T{obj},
		postRedirect: reverse(f.listView),
	})
}

// serveMultiple runs the flow for the objects named by the id_list
// parameter, given either comma separated or repeated
func (f *deleteFlow[ID, T]) serveMultiple(s *Server, c *gin.Context) {
	raw := strings.Join(idListValues(c), api.IDListSeparator)
	ids, err := api.ParseIDList[ID](raw)
	if errors.Is(err, api.ErrEmptyIDList) {
		s.flash(c, api.MessageError,
			fmt.Sprintf("Must provide at least one %s.", f.object))
		c.Redirect(http.StatusFound, referer(c))
		return
	}
	if err != nil {
		s.handleError(c, err)
		return
	}

	targets := make([]T, 0, len(ids))
	for _, id := range ids {
		obj, err := f.get(c.Request.Context(), id)
		if err != nil {
			s.handleError(c, err)
			return
		}
		targets = append(targets, obj)
	}
	f.serve(s, c, &deletePlan[T]{targets: targets})
}

func (f *deleteFlow[ID, T]) serve(s *Server, c *gin.Context, p *deletePlan[T]) {
	ctx := c.Request.Context()
	u := currentUser(c)

	targets := p.targets
	err := s.checker.CheckPermissions(ctx, u, f.permission)
	if errors.Is(err, permission.ErrPermissionDenied) {
		targets, err = permission.FilterByAccess(
			ctx, s.checker, f.permission, u, targets,
		)
	}
	if err != nil {
		s.handleError(c, err)
		return
	}

	previous, next := redirectTargets(c, p.postRedirect)

	if c.Request.Method == http.MethodPost {
		for _, obj := range targets {
			if err := f.remove(ctx, u, obj); err != nil {
				s.flash(c, api.MessageError, fmt.Sprintf(
					"Error deleting %s \"%s\": %s", f.object, obj.String(), err,
				))
				continue
			}
			s.flash(c, api.MessageSuccess, fmt.Sprintf(
				"%s \"%s\" deleted successfully.", capitalize(f.object),
					obj.String(),
			))
		}
		c.Redirect(http.StatusFound, next)
		return
	}

	data := gin.H{
		"ObjectName": f.object,
		"Previous":   previous,
		"Next":       next,
		"Action":     c.Request.URL.RequestURI(),
		"Icon":       f.icon,
	}
	labels := make([]string, len(targets))
	for i, obj := range targets {
		labels[i] = obj.String()
	}
	switch len(targets) {
	case 0:
	case 1:
		data["Object"] = targets[0]
		data["Title"] = fmt.Sprintf(
			"Are you sure you wish to delete the %s: %s?",
			f.object, labels[0],
		)
		data["Message"] = deleteMessage
	default:
		data["Title"] = fmt.Sprintf(
			"Are you sure you wish to delete the %s: %s?",
			f.objects, strings.Join(labels, ", "),
		)
		data["Message"] = deleteMessage
	}
	s.render(c, http.StatusOK, f.listView, "generic_confirm.html", data)
}

// redirectTargets resolves the previous and next URLs of a confirmation.
// A parameter counts once it is present, even when empty
func redirectTargets(c *gin.Context, postRedirect string) (string, string) {
	ref := referer(c)
	previous := paramOr(c, previousParam, ref)
	nextDefault := ref
	if postRedirect != "" {
		nextDefault = postRedirect
	}
	next := paramOr(c, nextParam, nextDefault)
	return localURL(c, previous, fallbackTarget),
		localURL(c, next, fallbackTarget)
}

func paramOr(c *gin.Context, key, def string) string {
	if v, ok := c.GetPostForm(key); ok {
		return v
	}
	if v, ok := c.GetQuery(key); ok {
		return v
	}
	return def
}

func idListValues(c *gin.Context) []string {
	if vs, ok := c.GetPostFormArray(idListParam); ok {
		return vs
	}
	return c.QueryArray(idListParam)
}

func referer(c *gin.Context) string {
	return localURL(c, c.Request.Referer(), fallbackTarget)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
