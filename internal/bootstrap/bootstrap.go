// Package bootstrap prepares a fresh installation: it creates the initial
// administrator after migrations and forgets its generated credentials once
// the password has been changed
package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/nadwiabd/insight-edms/internal/config"
	"github.com/nadwiabd/insight-edms/internal/store"
	"github.com/nadwiabd/insight-edms/pkg/api"
	"github.com/nadwiabd/insight-edms/pkg/log"
)

type (
	// Bootstrap owns the auto admin lifecycle
	Bootstrap struct {
		store    *store.Store
		cfg      *config.Config
		announce Announcer
	}

	// Announcer presents freshly created admin credentials to the operator
	Announcer func(username, password string)

	// Option customizes a Bootstrap
	Option func(*Bootstrap)
)

const (
	// AppCommon is the application whose migration creates the admin
	AppCommon = "common"

	// AutoAdminEmail is the address given to the created admin
	AutoAdminEmail = "autoadmin@autoadmin.com"

	temporaryDirectoryPattern = "edms-"
)

// New creates a Bootstrap for the given store and configuration
func New(st *store.Store, cfg *config.Config, opts ...Option) *Bootstrap {
	b := &Bootstrap{
		store:    st,
		cfg:      cfg,
		announce: func(string, string) {},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// WithAnnouncer sets how created credentials are presented
func WithAnnouncer(a Announcer) Option {
	return func(b *Bootstrap) {
		b.announce = a
	}
}

// Register installs the post-migrate and user post-save hooks on the store
func (b *Bootstrap) Register() {
	b.store.OnPostMigrate(b.CreateAutoAdmin)
	b.store.OnUserSaved(b.SyncAutoAdminPassword)
}

// CreateAutoAdmin creates the configured superuser after the common
// application has been migrated, unless an account with that username
// already exists
func (b *Bootstrap) CreateAutoAdmin(ctx context.Context, app string) error {
	if app != AppCommon || !b.cfg.AutoCreateAdmin {
		return nil
	}

	username := b.cfg.AutoAdminUsername
	_, err := b.store.GetUserByUsername(ctx, username)
	if err == nil {
		slog.Info("Super admin user already exists",
			log.Username(username))
		return nil
	}
	if !errors.Is(err, store.ErrUserNotFound) {
		return err
	}

	password := b.cfg.AutoAdminPassword
	u := &api.User{
		Username:    username,
		Email:       AutoAdminEmail,
		IsSuperuser: true,
		IsStaff:     true,
		IsActive:    true,
	}
	if err := b.store.CreateUser(ctx, u, password); err != nil {
		if errors.Is(err, store.ErrUserExists) {
			slog.Info("Super admin user already exists",
				log.Username(username))
			return nil
		}
		return err
	}

	if err := b.store.SaveAutoAdmin(ctx, &api.AutoAdmin{
		Account:      u.ID,
		Password:     password,
		PasswordHash: u.PasswordHash,
	}); err != nil {
		return err
	}

	slog.Info("Created super admin user",
		log.Username(username),
		log.UserID(u.ID))
	b.announce(username, password)
	return nil
}

// SyncAutoAdminPassword drops the auto admin record once the tracked
// account's password no longer matches the generated one. Failures are
// logged and otherwise ignored
func (b *Bootstrap) SyncAutoAdminPassword(ctx context.Context, u *api.User) {
	aa, err := b.store.GetAutoAdmin(ctx)
	if errors.Is(err, store.ErrAutoAdminNotFound) {
		return
	}
	if err != nil {
		slog.Warn("Failed to load auto admin record",
			log.UserID(u.ID),
			log.Error(err))
		return
	}
	if aa.Account != u.ID || aa.PasswordHash == u.PasswordHash {
		return
	}

	if err := b.store.DeleteAutoAdmin(ctx); err != nil {
		slog.Warn("Failed to delete auto admin record",
			log.UserID(u.ID),
			log.Error(err))
		return
	}
	slog.Info("Auto admin password changed",
		log.Username(u.Username))
}

// TemporaryDirectory returns path when it names a writable directory, and
// a newly created temporary directory otherwise
func TemporaryDirectory(path string) (string, error) {
	if path != "" && writableDir(path) {
		return path, nil
	}
	dir, err := os.MkdirTemp("", temporaryDirectoryPattern)
	if err != nil {
		return "", err
	}
	if path != "" {
		slog.Warn("Temporary directory is not usable, using a new one",
			slog.String("configured", path),
			slog.String("path", dir))
	}
	return dir, nil
}

func writableDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}
	f, err := os.CreateTemp(path, ".probe-")
	if err != nil {
		return false
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return true
}
