package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nadwiabd/insight-edms/pkg/log"
)

// Migration is the schema version an application expects
type Migration struct {
	App     string
	Version int
}

// Migrations lists the applications managed by this store, in the order
// they are migrated
var Migrations = []Migration{
	{App: "common", Version: 1},
	{App: "permissions", Version: 1},
	{App: "acls", Version: 1},
	{App: "workflows", Version: 1},
}

// OnPostMigrate registers a hook called for every application after
// Migrate has brought the schema up to date
func (s *Store) OnPostMigrate(hook PostMigrateHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.migrateHooks = append(s.migrateHooks, hook)
}

// Migrate records each application's schema version and then runs the
// post-migrate hooks for every application. It returns the applications
// whose version changed
func (s *Store) Migrate(ctx context.Context) ([]string, error) {
	var applied []string
	for _, m := range Migrations {
		cur, err := s.client.HGet(ctx, s.key("migrations"), m.App).Int()
		if err != nil && !isNil(err) {
			return applied, err
		}
		if cur >= m.Version {
			continue
		}
		err = s.client.HSet(ctx, s.key("migrations"), m.App, m.Version).Err()
		if err != nil {
			return applied, err
		}
		slog.Info("Applied migration",
			log.App(m.App),
			slog.Int("version", m.Version))
		applied = append(applied, m.App)
	}

	s.mu.RLock()
	hooks := make([]PostMigrateHook, len(s.migrateHooks))
	copy(hooks, s.migrateHooks)
	s.mu.RUnlock()

	for _, m := range Migrations {
		for _, hook := range hooks {
			if err := hook(ctx, m.App); err != nil {
				return applied, fmt.Errorf("post-migrate %s: %w", m.App, err)
			}
		}
	}
	return applied, nil
}

// SchemaVersion returns the recorded schema version of an application
func (s *Store) SchemaVersion(ctx context.Context, app string) (int, error) {
	v, err := s.client.HGet(ctx, s.key("migrations"), app).Int()
	if isNil(err) {
		return 0, nil
	}
	return v, err
}
