package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/nadwiabd/insight-edms/pkg/api"
)

func (s *Store) sessionKey(token string) string {
	return s.key("session", token)
}

func (s *Store) messagesKey(token string) string {
	return s.key("session", token, "messages")
}

// CreateSession starts a new signed-in session for the user
func (s *Store) CreateSession(
	ctx context.Context, id api.UserID,
) (string, error) {
	token := uuid.NewString()
	err := s.client.Set(ctx, s.sessionKey(token), formatID(id), s.sessionTTL).Err()
	if err != nil {
		return "", err
	}
	return token, nil
}

// SessionUser resolves a session token to its user and extends the
// session lifetime
func (s *Store) SessionUser(
	ctx context.Context, token string,
) (*api.User, error) {
	raw, err := s.client.Get(ctx, s.sessionKey(token)).Result()
	if isNil(err) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	id, err := api.ParseID[api.UserID](raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSessionNotFound, err)
	}
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrSessionNotFound
	}
	_ = s.client.Expire(ctx, s.sessionKey(token), s.sessionTTL).Err()
	return u, nil
}

// DeleteSession ends a session and drops its pending messages
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	return s.client.Del(ctx, s.sessionKey(token), s.messagesKey(token)).Err()
}

// AddMessage queues a flash message for the session
func (s *Store) AddMessage(
	ctx context.Context, token string, msg api.Message,
) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.RPush(ctx, s.messagesKey(token), data)
		p.Expire(ctx, s.messagesKey(token), s.sessionTTL)
		return nil
	})
	return err
}

// PopMessages returns and clears the session's queued flash messages
func (s *Store) PopMessages(
	ctx context.Context, token string,
) ([]api.Message, error) {
	var rng *redis.StringSliceCmd
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		rng = p.LRange(ctx, s.messagesKey(token), 0, -1)
		p.Del(ctx, s.messagesKey(token))
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := make([]api.Message, 0, len(rng.Val()))
	for _, raw := range rng.Val() {
		var msg api.Message
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			return nil, err
		}
		res = append(res, msg)
	}
	return res, nil
}
