package store

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/nadwiabd/insight-edms/pkg/api"
)

func (s *Store) userPermsKey(id api.UserID) string {
	return s.key(string(api.KindUser), formatID(id), "perms")
}

func (s *Store) aclKey(perm api.PermissionKey, objectKey string) string {
	return s.key("acl", string(perm), objectKey)
}

// GrantPermission gives a user a blanket permission
func (s *Store) GrantPermission(
	ctx context.Context, id api.UserID, perm api.PermissionKey,
) error {
	if _, err := s.GetUser(ctx, id); err != nil {
		return err
	}
	return s.client.SAdd(ctx, s.userPermsKey(id), string(perm)).Err()
}

// RevokePermission removes a blanket permission from a user
func (s *Store) RevokePermission(
	ctx context.Context, id api.UserID, perm api.PermissionKey,
) error {
	return s.client.SRem(ctx, s.userPermsKey(id), string(perm)).Err()
}

// UserPermissions lists the blanket permissions granted to a user
func (s *Store) UserPermissions(
	ctx context.Context, id api.UserID,
) ([]api.PermissionKey, error) {
	perms, err := s.client.SMembers(ctx, s.userPermsKey(id)).Result()
	if err != nil {
		return nil, err
	}
	res := make([]api.PermissionKey, len(perms))
	for i, p := range perms {
		res[i] = api.PermissionKey(p)
	}
	return res, nil
}

// HasAnyPermission reports whether the user holds at least one of perms
func (s *Store) HasAnyPermission(
	ctx context.Context, id api.UserID, perms ...api.PermissionKey,
) (bool, error) {
	if len(perms) == 0 {
		return false, nil
	}
	cmds := make([]*redis.BoolCmd, len(perms))
	_, err := s.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for i, perm := range perms {
			cmds[i] = p.SIsMember(ctx, s.userPermsKey(id), string(perm))
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	for _, cmd := range cmds {
		if cmd.Val() {
			return true, nil
		}
	}
	return false, nil
}

// GrantAccess gives a user a permission on a single object
func (s *Store) GrantAccess(
	ctx context.Context, perm api.PermissionKey, objectKey string,
	id api.UserID,
) error {
	if _, err := s.GetUser(ctx, id); err != nil {
		return err
	}
	return s.client.SAdd(ctx, s.aclKey(perm, objectKey), formatID(id)).Err()
}

// RevokeAccess removes a user's permission on a single object
func (s *Store) RevokeAccess(
	ctx context.Context, perm api.PermissionKey, objectKey string,
	id api.UserID,
) error {
	return s.client.SRem(ctx, s.aclKey(perm, objectKey), formatID(id)).Err()
}

// AccessibleKeys returns which of the object keys the user may act on
// under perm through object-level access entries
func (s *Store) AccessibleKeys(
	ctx context.Context, perm api.PermissionKey, id api.UserID,
	objectKeys []string,
) (map[string]bool, error) {
	res := make(map[string]bool, len(objectKeys))
	if len(objectKeys) == 0 {
		return res, nil
	}
	cmds := make([]*redis.BoolCmd, len(objectKeys))
	_, err := s.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for i, key := range objectKeys {
			cmds[i] = p.SIsMember(ctx, s.aclKey(perm, key), formatID(id))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for i, key := range objectKeys {
		res[key] = cmds[i].Val()
	}
	return res, nil
}
