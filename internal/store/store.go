package store

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/nadwiabd/insight-edms/internal/config"
	"github.com/nadwiabd/insight-edms/pkg/api"
	"github.com/nadwiabd/insight-edms/pkg/log"
)

type (
	// Store persists setup objects, accounts, grants, and sessions in Redis
	Store struct {
		client       *redis.Client
		now          func() time.Time
		prefix       string
		userHooks    []UserSaveHook
		migrateHooks []PostMigrateHook
		sessionTTL   time.Duration
		passwordCost int
		mu           sync.RWMutex
	}

	// Option customizes a Store
	Option func(*Store)

	// UserSaveHook is called after a user record has been written
	UserSaveHook func(ctx context.Context, user *api.User)

	// PostMigrateHook is called once per application after migrations ran
	PostMigrateHook func(ctx context.Context, app string) error
)

var (
	ErrWorkflowNotFound      = errors.New("workflow not found")
	ErrStateNotFound         = errors.New("state not found")
	ErrStateInUse            = errors.New("state is in use by a workflow")
	ErrWorkflowStateExists   = errors.New("state already attached to workflow")
	ErrWorkflowStateNotFound = errors.New("state not attached to workflow")
	ErrUserNotFound          = errors.New("user not found")
	ErrUserExists            = errors.New("user exists")
	ErrInvalidCredentials    = errors.New("invalid username or password")
	ErrSessionNotFound       = errors.New("session not found")
	ErrCreateClient          = errors.New("failed to connect to redis")
)

// New wraps an existing Redis client
func New(client *redis.Client, prefix string, opts ...Option) *Store {
	s := &Store{
		client:       client,
		prefix:       prefix,
		now:          time.Now,
		sessionTTL:   config.DefaultSessionTTL,
		passwordCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open connects to Redis using the given settings and verifies the
// connection
func Open(
	ctx context.Context, cfg config.StoreConfig, opts ...Option,
) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %w", ErrCreateClient, err)
	}
	return New(client, cfg.Prefix, opts...), nil
}

// WithSessionTTL sets how long sessions and their messages live
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.sessionTTL = ttl
	}
}

// WithPasswordCost sets the bcrypt cost used when hashing passwords
func WithPasswordCost(cost int) Option {
	return func(s *Store) {
		s.passwordCost = cost
	}
}

// WithClock replaces the time source used for timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Ping checks the Redis connection
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(parts ...string) string {
	return s.prefix + ":" + strings.Join(parts, ":")
}

func (s *Store) nextID(ctx context.Context, kind api.ObjectKind) (int64, error) {
	return s.client.Incr(ctx, s.key(string(kind), "seq")).Result()
}

func (s *Store) publish(
	ctx context.Context, typ api.EventType, kind api.ObjectKind, id int64,
	label string,
) {
	ev := api.SetupEvent{
		Timestamp: s.now(),
		Type:      typ,
		Kind:      kind,
		ID:        id,
		Label:     label,
	}
	data, err := json.Marshal(ev)
	if err == nil {
		err = s.client.Publish(ctx, s.EventsChannel(), data).Err()
	}
	if err != nil {
		slog.Warn("Failed to publish setup event",
			slog.String("kind", string(kind)),
			slog.Int64("id", id),
			log.Error(err))
	}
}

// EventsChannel is the Pub/Sub channel setup events are published on
func (s *Store) EventsChannel() string {
	return s.key("events")
}

// Subscribe opens a Pub/Sub subscription to setup events
func (s *Store) Subscribe(ctx context.Context) *redis.PubSub {
	return s.client.Subscribe(ctx, s.EventsChannel())
}

func getJSON[T any](ctx context.Context, c redis.Cmdable, key string) (*T, error) {
	data, err := c.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}
	var res T
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func listJSON[T any](
	ctx context.Context, c redis.Cmdable, index string,
	keyFor func(string) string,
) ([]*T, error) {
	ids, err := c.SMembers(ctx, index).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*T{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = keyFor(id)
	}
	vals, err := c.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	res := make([]*T, 0, len(vals))
	for _, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var item T
		if err := json.Unmarshal([]byte(str), &item); err != nil {
			return nil, err
		}
		res = append(res, &item)
	}
	return res, nil
}

func sortByLabel[T any](items []*T, label func(*T) string, id func(*T) int64) {
	slices.SortFunc(items, func(a, b *T) int {
		la := strings.ToLower(label(a))
		lb := strings.ToLower(label(b))
		if c := strings.Compare(la, lb); c != 0 {
			return c
		}
		return cmp.Compare(id(a), id(b))
	})
}

func formatID[T ~int64](id T) string {
	return strconv.FormatInt(int64(id), 10)
}

func isNil(err error) bool {
	return errors.Is(err, redis.Nil)
}
