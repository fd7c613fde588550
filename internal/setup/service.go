// Package setup implements workflow and state administration: the
// permissions guarding it, its forms, and the operations behind its views
package setup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nadwiabd/insight-edms/internal/archive"
	"github.com/nadwiabd/insight-edms/internal/store"
	"github.com/nadwiabd/insight-edms/pkg/api"
	"github.com/nadwiabd/insight-edms/pkg/log"
)

type (
	// Archiver keeps a tombstone of every deleted object
	Archiver interface {
		Put(ctx context.Context, rec *archive.Record) error
	}

	// Service performs setup operations against the store
	Service struct {
		store   *store.Store
		archive Archiver
	}

	// WorkflowRow is a workflow as shown by the workflow list
	WorkflowRow struct {
		*api.Workflow
		InitialStateLabel string
	}

	// WorkflowStateRow is a state attached to a workflow
	WorkflowStateRow struct {
		State       *api.State
		Description string
	}
)

// NoneLabel is rendered for an unset initial state
const NoneLabel = "None"

var ErrArchive = errors.New("failed to archive object")

// NewService creates a setup Service
func NewService(st *store.Store, ar Archiver) *Service {
	return &Service{store: st, archive: ar}
}

// ListWorkflows returns every workflow with its initial state resolved
func (s *Service) ListWorkflows(ctx context.Context) ([]*WorkflowRow, error) {
	workflows, err := s.store.ListWorkflows(ctx)
	if err != nil {
		return nil, err
	}
	states, err := s.store.ListStates(ctx)
	if err != nil {
		return nil, err
	}
	labels := make(map[api.StateID]string, len(states))
	for _, st := range states {
		labels[st.ID] = st.Label
	}

	res := make([]*WorkflowRow, len(workflows))
	for i, wf := range workflows {
		row := &WorkflowRow{Workflow: wf, InitialStateLabel: NoneLabel}
		if wf.InitialState != nil {
			if label, ok := labels[*wf.InitialState]; ok {
				row.InitialStateLabel = label
			}
		}
		res[i] = row
	}
	return res, nil
}

// GetWorkflow loads one workflow
func (s *Service) GetWorkflow(
	ctx context.Context, id api.WorkflowID,
) (*api.Workflow, error) {
	return s.store.GetWorkflow(ctx, id)
}

// CreateWorkflow persists the workflow described by a validated form
func (s *Service) CreateWorkflow(
	ctx context.Context, f *WorkflowForm,
) (*api.Workflow, error) {
	wf := &api.Workflow{}
	f.Apply(wf)
	if err := s.store.CreateWorkflow(ctx, wf); err != nil {
		return nil, err
	}
	slog.Info("Workflow created",
		log.WorkflowID(wf.ID),
		slog.String("label", wf.Label))
	return wf, nil
}

// UpdateWorkflow applies a validated form to an existing workflow
func (s *Service) UpdateWorkflow(
	ctx context.Context, wf *api.Workflow, f *WorkflowForm,
) error {
	f.Apply(wf)
	return s.store.UpdateWorkflow(ctx, wf)
}

// DeleteWorkflow archives and removes a workflow
func (s *Service) DeleteWorkflow(
	ctx context.Context, by *api.User, wf *api.Workflow,
) error {
	if err := s.tombstone(
		ctx, by, api.KindWorkflow, int64(wf.ID), wf.Label, wf,
	); err != nil {
		return err
	}
	if err := s.store.DeleteWorkflow(ctx, wf.ID); err != nil {
		return err
	}
	slog.Info("Workflow deleted",
		log.WorkflowID(wf.ID),
		log.Username(by.Username))
	return nil
}

// WorkflowStates returns the states attached to a workflow
func (s *Service) WorkflowStates(
	ctx context.Context, id api.WorkflowID,
) ([]*WorkflowStateRow, error) {
	members, err := s.store.WorkflowStates(ctx, id)
	if err != nil {
		return nil, err
	}
	res := make([]*WorkflowStateRow, 0, len(members))
	for _, m := range members {
		st, err := s.store.GetState(ctx, m.StateID)
		if err != nil {
			return nil, err
		}
		res = append(res, &WorkflowStateRow{
			State:       st,
			Description: m.Description,
		})
	}
	return res, nil
}

// AddWorkflowState attaches the state selected by a validated form
func (s *Service) AddWorkflowState(
	ctx context.Context, wf *api.Workflow, f *WorkflowStateForm,
) error {
	return s.store.AddWorkflowState(ctx, f.Membership(wf.ID))
}

// RemoveWorkflowState detaches a state from a workflow
func (s *Service) RemoveWorkflowState(
	ctx context.Context, wf *api.Workflow, id api.StateID,
) error {
	return s.store.RemoveWorkflowState(ctx, wf.ID, id)
}

// ListStates returns every state definition
func (s *Service) ListStates(ctx context.Context) ([]*api.State, error) {
	return s.store.ListStates(ctx)
}

// GetState loads one state
func (s *Service) GetState(
	ctx context.Context, id api.StateID,
) (*api.State, error) {
	return s.store.GetState(ctx, id)
}

// CreateState persists the state described by a validated form
func (s *Service) CreateState(
	ctx context.Context, f *StateForm,
) (*api.State, error) {
	st := &api.State{}
	f.Apply(st)
	if err := s.store.CreateState(ctx, st); err != nil {
		return nil, err
	}
	slog.Info("State created",
		log.StateID(st.ID),
		slog.String("label", st.Label))
	return st, nil
}

// UpdateState applies a validated form to an existing state
func (s *Service) UpdateState(
	ctx context.Context, st *api.State, f *StateForm,
) error {
	f.Apply(st)
	return s.store.UpdateState(ctx, st)
}

// DeleteState archives and removes a state. States still referenced by a
// workflow are left alone
func (s *Service) DeleteState(
	ctx context.Context, by *api.User, st *api.State,
) error {
	users, err := s.store.StateWorkflows(ctx, st.ID)
	if err != nil {
		return err
	}
	if len(users) > 0 {
		return fmt.Errorf("%w: %s", store.ErrStateInUse, users[0].Label)
	}
	if err := s.tombstone(
		ctx, by, api.KindState, int64(st.ID), st.Label, st,
	); err != nil {
		return err
	}
	if err := s.store.DeleteState(ctx, st.ID); err != nil {
		return err
	}
	slog.Info("State deleted",
		log.StateID(st.ID),
		log.Username(by.Username))
	return nil
}

func (s *Service) tombstone(
	ctx context.Context, by *api.User, kind api.ObjectKind, id int64,
	label string, obj any,
) error {
	rec, err := archive.NewRecord(kind, id, label, by.Username, obj)
	if err == nil {
		err = s.archive.Put(ctx, rec)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrArchive, err)
	}
	return nil
}
