// Package permission implements the permission gate guarding setup views
//
// Users pass a check when they are superusers or staff, or when they hold
// any of the requested permissions. Object-level access entries narrow a
// set of objects to those a user may act on without a blanket grant
package permission

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/nadwiabd/insight-edms/pkg/api"
)

type (
	// Registry holds every permission known to the service
	Registry struct {
		perms map[api.PermissionKey]api.Permission
		order []api.PermissionKey
		mu    sync.RWMutex
	}

	// Store resolves blanket grants and object-level access entries
	Store interface {
		HasAnyPermission(
			ctx context.Context, id api.UserID, perms ...api.PermissionKey,
		) (bool, error)
		AccessibleKeys(
			ctx context.Context, perm api.PermissionKey, id api.UserID,
			objectKeys []string,
		) (map[string]bool, error)
	}

	// Checker evaluates permission checks against a Store
	Checker struct {
		store Store
	}

	// Object is anything that can carry object-level access entries
	Object interface {
		AccessKey() string
	}
)

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotAuthenticated = errors.New("not authenticated")
)

// NewRegistry creates an empty permission registry
func NewRegistry() *Registry {
	return &Registry{
		perms: map[api.PermissionKey]api.Permission{},
	}
}

// Register adds permissions to the registry. Registering the same key
// again replaces its label
func (r *Registry) Register(perms ...api.Permission) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range perms {
		key := p.Key()
		if _, ok := r.perms[key]; !ok {
			r.order = append(r.order, key)
		}
		r.perms[key] = p
	}
}

// Get looks up a registered permission by key
func (r *Registry) Get(key api.PermissionKey) (api.Permission, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.perms[key]
	return p, ok
}

// List returns every registered permission in registration order
func (r *Registry) List() []api.Permission {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]api.Permission, 0, len(r.order))
	for _, key := range r.order {
		res = append(res, r.perms[key])
	}
	return res
}

// Namespace returns the registered permissions of one namespace
func (r *Registry) Namespace(ns string) []api.Permission {
	return slices.DeleteFunc(r.List(), func(p api.Permission) bool {
		return p.Namespace != ns
	})
}

// NewChecker creates a Checker backed by the given store
func NewChecker(st Store) *Checker {
	return &Checker{store: st}
}

// CheckPermissions returns nil when the user may use any of the given
// permissions, and ErrPermissionDenied otherwise
func (c *Checker) CheckPermissions(
	ctx context.Context, u *api.User, perms ...api.Permission,
) error {
	if u == nil {
		return ErrNotAuthenticated
	}
	if u.IsSuperuser || u.IsStaff {
		return nil
	}

	keys := make([]api.PermissionKey, len(perms))
	for i, p := range perms {
		keys[i] = p.Key()
	}
	ok, err := c.store.HasAnyPermission(ctx, u.ID, keys...)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %v", ErrPermissionDenied, keys)
	}
	return nil
}

// Allowed is CheckPermissions reduced to a boolean. Lookup failures deny
func (c *Checker) Allowed(
	ctx context.Context, u *api.User, perms ...api.Permission,
) bool {
	return c.CheckPermissions(ctx, u, perms...) == nil
}

// FilterByAccess keeps the objects on which the user holds perm through
// an object-level access entry, preserving their order
func FilterByAccess[T Object](
	ctx context.Context, c *Checker, perm api.Permission, u *api.User,
	objects []T,
) ([]T, error) {
	if u == nil {
		return nil, ErrNotAuthenticated
	}
	keys := make([]string, len(objects))
	for i, obj := range objects {
		keys[i] = obj.AccessKey()
	}
	allowed, err := c.store.AccessibleKeys(ctx, perm.Key(), u.ID, keys)
	if err != nil {
		return nil, err
	}

	res := make([]T, 0, len(objects))
	for _, obj := range objects {
		if allowed[obj.AccessKey()] {
			res = append(res, obj)
		}
	}
	return res, nil
}
