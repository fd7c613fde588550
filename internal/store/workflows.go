package store

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"

	"github.com/nadwiabd/insight-edms/pkg/api"
)

func (s *Store) workflowKey(id string) string {
	return s.key(string(api.KindWorkflow), id)
}

func (s *Store) workflowStatesKey(id api.WorkflowID) string {
	return s.key(string(api.KindWorkflow), formatID(id), "states")
}

// ListWorkflows returns every workflow definition ordered by label
func (s *Store) ListWorkflows(ctx context.Context) ([]*api.Workflow, error) {
	res, err := listJSON[api.Workflow](
		ctx, s.client, s.key("workflows"), s.workflowKey,
	)
	if err != nil {
		return nil, err
	}
	sortByLabel(res,
		func(wf *api.Workflow) string { return wf.Label },
		func(wf *api.Workflow) int64 { return int64(wf.ID) },
	)
	return res, nil
}

// GetWorkflow loads a single workflow definition
func (s *Store) GetWorkflow(
	ctx context.Context, id api.WorkflowID,
) (*api.Workflow, error) {
	wf, err := getJSON[api.Workflow](ctx, s.client, s.workflowKey(formatID(id)))
	if isNil(err) {
		return nil, fmt.Errorf("%w: %d", ErrWorkflowNotFound, id)
	}
	return wf, err
}

// CreateWorkflow assigns an identifier to a new workflow and persists it
func (s *Store) CreateWorkflow(ctx context.Context, wf *api.Workflow) error {
	if err := s.checkInitialState(ctx, wf); err != nil {
		return err
	}
	id, err := s.nextID(ctx, api.KindWorkflow)
	if err != nil {
		return err
	}
	now := s.now()
	wf.ID = api.WorkflowID(id)
	wf.CreatedAt = now
	wf.UpdatedAt = now
	if err := s.putWorkflow(ctx, wf); err != nil {
		return err
	}
	s.publish(ctx, api.EventTypeCreated, api.KindWorkflow, id, wf.Label)
	return nil
}

// UpdateWorkflow overwrites an existing workflow definition
func (s *Store) UpdateWorkflow(ctx context.Context, wf *api.Workflow) error {
	existing, err := s.GetWorkflow(ctx, wf.ID)
	if err != nil {
		return err
	}
	if err := s.checkInitialState(ctx, wf); err != nil {
		return err
	}
	wf.CreatedAt = existing.CreatedAt
	wf.UpdatedAt = s.now()
	if err := s.putWorkflow(ctx, wf); err != nil {
		return err
	}
	s.publish(
		ctx, api.EventTypeUpdated, api.KindWorkflow, int64(wf.ID), wf.Label,
	)
	return nil
}

// DeleteWorkflow removes a workflow definition along with its state
// attachments
func (s *Store) DeleteWorkflow(ctx context.Context, id api.WorkflowID) error {
	wf, err := s.GetWorkflow(ctx, id)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, s.workflowKey(formatID(id)), s.workflowStatesKey(id))
		p.SRem(ctx, s.key("workflows"), formatID(id))
		return nil
	})
	if err != nil {
		return err
	}
	s.publish(ctx, api.EventTypeDeleted, api.KindWorkflow, int64(id), wf.Label)
	return nil
}

// WorkflowStates returns the states attached to a workflow, ordered by
// state label
func (s *Store) WorkflowStates(
	ctx context.Context, id api.WorkflowID,
) ([]*api.WorkflowState, error) {
	if _, err := s.GetWorkflow(ctx, id); err != nil {
		return nil, err
	}
	entries, err := s.client.HGetAll(ctx, s.workflowStatesKey(id)).Result()
	if err != nil {
		return nil, err
	}

	res := make([]*api.WorkflowState, 0, len(entries))
	labels := make(map[api.StateID]string, len(entries))
	for field, desc := range entries {
		stateID, err := api.ParseID[api.StateID](field)
		if err != nil {
			return nil, err
		}
		st, err := s.GetState(ctx, stateID)
		if err != nil {
			return nil, err
		}
		labels[stateID] = st.Label
		res = append(res, &api.WorkflowState{
			WorkflowID:  id,
			StateID:     stateID,
			Description: desc,
		})
	}
	slices.SortFunc(res, func(a, b *api.WorkflowState) int {
		if c := cmp.Compare(labels[a.StateID], labels[b.StateID]); c != 0 {
			return c
		}
		return cmp.Compare(a.StateID, b.StateID)
	})
	return res, nil
}

// AddWorkflowState attaches an existing state to a workflow
func (s *Store) AddWorkflowState(
	ctx context.Context, ws *api.WorkflowState,
) error {
	wf, err := s.GetWorkflow(ctx, ws.WorkflowID)
	if err != nil {
		return err
	}
	if _, err := s.GetState(ctx, ws.StateID); err != nil {
		return err
	}
	added, err := s.client.HSetNX(
		ctx, s.workflowStatesKey(ws.WorkflowID), formatID(ws.StateID),
		ws.Description,
	).Result()
	if err != nil {
		return err
	}
	if !added {
		return fmt.Errorf("%w: %d", ErrWorkflowStateExists, ws.StateID)
	}
	s.publish(
		ctx, api.EventTypeUpdated, api.KindWorkflow, int64(wf.ID), wf.Label,
	)
	return nil
}

// RemoveWorkflowState detaches a state from a workflow
func (s *Store) RemoveWorkflowState(
	ctx context.Context, id api.WorkflowID, stateID api.StateID,
) error {
	wf, err := s.GetWorkflow(ctx, id)
	if err != nil {
		return err
	}
	n, err := s.client.HDel(
		ctx, s.workflowStatesKey(id), formatID(stateID),
	).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrWorkflowStateNotFound, stateID)
	}
	s.publish(
		ctx, api.EventTypeUpdated, api.KindWorkflow, int64(wf.ID), wf.Label,
	)
	return nil
}

func (s *Store) checkInitialState(ctx context.Context, wf *api.Workflow) error {
	if wf.InitialState == nil {
		return nil
	}
	_, err := s.GetState(ctx, *wf.InitialState)
	return err
}

func (s *Store) putWorkflow(ctx context.Context, wf *api.Workflow) error {
	data, err := json.Marshal(wf)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, s.workflowKey(formatID(wf.ID)), data, 0)
		p.SAdd(ctx, s.key("workflows"), formatID(wf.ID))
		return nil
	})
	return err
}
