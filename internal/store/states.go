package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/nadwiabd/insight-edms/pkg/api"
)

func (s *Store) stateKey(id string) string {
	return s.key(string(api.KindState), id)
}

// ListStates returns every state definition ordered by label
func (s *Store) ListStates(ctx context.Context) ([]*api.State, error) {
	res, err := listJSON[api.State](ctx, s.client, s.key("states"), s.stateKey)
	if err != nil {
		return nil, err
	}
	sortByLabel(res,
		func(st *api.State) string { return st.Label },
		func(st *api.State) int64 { return int64(st.ID) },
	)
	return res, nil
}

// GetState loads a single state definition
func (s *Store) GetState(ctx context.Context, id api.StateID) (*api.State, error) {
	st, err := getJSON[api.State](ctx, s.client, s.stateKey(formatID(id)))
	if isNil(err) {
		return nil, fmt.Errorf("%w: %d", ErrStateNotFound, id)
	}
	return st, err
}

// CreateState assigns an identifier to a new state and persists it
func (s *Store) CreateState(ctx context.Context, st *api.State) error {
	id, err := s.nextID(ctx, api.KindState)
	if err != nil {
		return err
	}
	now := s.now()
	st.ID = api.StateID(id)
	st.CreatedAt = now
	st.UpdatedAt = now
	if err := s.putState(ctx, st); err != nil {
		return err
	}
	s.publish(ctx, api.EventTypeCreated, api.KindState, id, st.Label)
	return nil
}

// UpdateState overwrites an existing state definition
func (s *Store) UpdateState(ctx context.Context, st *api.State) error {
	existing, err := s.GetState(ctx, st.ID)
	if err != nil {
		return err
	}
	st.CreatedAt = existing.CreatedAt
	st.UpdatedAt = s.now()
	if err := s.putState(ctx, st); err != nil {
		return err
	}
	s.publish(ctx, api.EventTypeUpdated, api.KindState, int64(st.ID), st.Label)
	return nil
}

// DeleteState removes a state definition. A state that is the initial
// state of a workflow, or attached to one, cannot be deleted
func (s *Store) DeleteState(ctx context.Context, id api.StateID) error {
	st, err := s.GetState(ctx, id)
	if err != nil {
		return err
	}

	users, err := s.StateWorkflows(ctx, id)
	if err != nil {
		return err
	}
	if len(users) > 0 {
		return fmt.Errorf("%w: %s", ErrStateInUse, users[0].Label)
	}

	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, s.stateKey(formatID(id)))
		p.SRem(ctx, s.key("states"), formatID(id))
		return nil
	})
	if err != nil {
		return err
	}
	s.publish(ctx, api.EventTypeDeleted, api.KindState, int64(id), st.Label)
	return nil
}

// StateWorkflows returns the workflows that start in or include a state
func (s *Store) StateWorkflows(
	ctx context.Context, id api.StateID,
) ([]*api.Workflow, error) {
	workflows, err := s.ListWorkflows(ctx)
	if err != nil {
		return nil, err
	}

	var res []*api.Workflow
	for _, wf := range workflows {
		if wf.HasInitialState(id) {
			res = append(res, wf)
			continue
		}
		attached, err := s.client.HExists(
			ctx, s.workflowStatesKey(wf.ID), formatID(id),
		).Result()
		if err != nil {
			return nil, err
		}
		if attached {
			res = append(res, wf)
		}
	}
	return res, nil
}

func (s *Store) putState(ctx context.Context, st *api.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, s.stateKey(formatID(st.ID)), data, 0)
		p.SAdd(ctx, s.key("states"), formatID(st.ID))
		return nil
	})
	return err
}
