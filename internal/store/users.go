package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/nadwiabd/insight-edms/pkg/api"
)

// UnusablePassword marks an account that cannot sign in with a password
const UnusablePassword = "!"

var ErrAutoAdminNotFound = errors.New("auto admin record not found")

func (s *Store) userKey(id string) string {
	return s.key(string(api.KindUser), id)
}

func (s *Store) usernameKey(username string) string {
	return s.key(string(api.KindUser), "name", username)
}

// OnUserSaved registers a hook called after every user write
func (s *Store) OnUserSaved(hook UserSaveHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userHooks = append(s.userHooks, hook)
}

// HashPassword hashes a raw password with the store's bcrypt cost
func (s *Store) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.passwordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the user's hash
func CheckPassword(u *api.User, password string) bool {
	if u.PasswordHash == "" || u.PasswordHash == UnusablePassword {
		return false
	}
	err := bcrypt.CompareHashAndPassword(
		[]byte(u.PasswordHash), []byte(password),
	)
	return err == nil
}

// CreateUser persists a new account. An empty password leaves the account
// without a usable password
func (s *Store) CreateUser(
	ctx context.Context, u *api.User, password string,
) error {
	u.PasswordHash = UnusablePassword
	if password != "" {
		hash, err := s.HashPassword(password)
		if err != nil {
			return err
		}
		u.PasswordHash = hash
	}

	id, err := s.nextID(ctx, api.KindUser)
	if err != nil {
		return err
	}
	ok, err := s.client.SetNX(ctx, s.usernameKey(u.Username), id, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrUserExists, u.Username)
	}

	u.ID = api.UserID(id)
	u.DateJoined = s.now()
	if err := s.putUser(ctx, u); err != nil {
		return err
	}
	s.userSaved(ctx, u)
	return nil
}

// SaveUser overwrites an existing account. Usernames cannot be changed
func (s *Store) SaveUser(ctx context.Context, u *api.User) error {
	existing, err := s.GetUser(ctx, u.ID)
	if err != nil {
		return err
	}
	u.Username = existing.Username
	u.DateJoined = existing.DateJoined
	if err := s.putUser(ctx, u); err != nil {
		return err
	}
	s.userSaved(ctx, u)
	return nil
}

// SetPassword hashes and stores a new password for the account
func (s *Store) SetPassword(
	ctx context.Context, u *api.User, password string,
) error {
	hash, err := s.HashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return s.SaveUser(ctx, u)
}

// GetUser loads an account by primary key
func (s *Store) GetUser(ctx context.Context, id api.UserID) (*api.User, error) {
	u, err := getJSON[api.User](ctx, s.client, s.userKey(formatID(id)))
	if isNil(err) {
		return nil, fmt.Errorf("%w: %d", ErrUserNotFound, id)
	}
	return u, err
}

// GetUserByUsername loads an account by its username
func (s *Store) GetUserByUsername(
	ctx context.Context, username string,
) (*api.User, error) {
	raw, err := s.client.Get(ctx, s.usernameKey(username)).Result()
	if isNil(err) {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, username)
	}
	if err != nil {
		return nil, err
	}
	id, err := api.ParseID[api.UserID](raw)
	if err != nil {
		return nil, err
	}
	return s.GetUser(ctx, id)
}

// ListUsers returns every account ordered by username
func (s *Store) ListUsers(ctx context.Context) ([]*api.User, error) {
	res, err := listJSON[api.User](ctx, s.client, s.key("users"), s.userKey)
	if err != nil {
		return nil, err
	}
	sortByLabel(res,
		func(u *api.User) string { return u.Username },
		func(u *api.User) int64 { return int64(u.ID) },
	)
	return res, nil
}

// Authenticate verifies credentials and records the login time
func (s *Store) Authenticate(
	ctx context.Context, username, password string,
) (*api.User, error) {
	u, err := s.GetUserByUsername(ctx, username)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive || !CheckPassword(u, password) {
		return nil, ErrInvalidCredentials
	}
	u.LastLogin = s.now()
	if err := s.SaveUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// GetAutoAdmin loads the auto admin record, if present
func (s *Store) GetAutoAdmin(ctx context.Context) (*api.AutoAdmin, error) {
	aa, err := getJSON[api.AutoAdmin](ctx, s.client, s.key("autoadmin"))
	if isNil(err) {
		return nil, ErrAutoAdminNotFound
	}
	return aa, err
}

// SaveAutoAdmin writes the auto admin record
func (s *Store) SaveAutoAdmin(ctx context.Context, aa *api.AutoAdmin) error {
	data, err := json.Marshal(aa)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key("autoadmin"), data, 0).Err()
}

// DeleteAutoAdmin removes the auto admin record
func (s *Store) DeleteAutoAdmin(ctx context.Context) error {
	return s.client.Del(ctx, s.key("autoadmin")).Err()
}

func (s *Store) putUser(ctx context.Context, u *api.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, s.userKey(formatID(u.ID)), data, 0)
		p.SAdd(ctx, s.key("users"), formatID(u.ID))
		return nil
	})
	return err
}

func (s *Store) userSaved(ctx context.Context, u *api.User) {
	s.mu.RLock()
	hooks := make([]UserSaveHook, len(s.userHooks))
	copy(hooks, s.userHooks)
	s.mu.RUnlock()

	for _, hook := range hooks {
		hook(ctx, u)
	}
}
