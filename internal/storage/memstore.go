package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DRNaser/shift-optimizer-sub005/internal/model"
	"github.com/DRNaser/shift-optimizer-sub005/internal/version"
)

// MemStore is an in-process Store, used by the CLI's dry-run mode and by
// engine-level tests that want the full contract (including lock
// enforcement) without a database.
type MemStore struct {
	mu sync.Mutex

	forecasts       map[string]model.ForecastVersion
	forecastsByHash map[string]string // input_hash -> id
	instances       map[string][]model.TourInstance // forecast_id -> instances
	plans           map[string]model.PlanVersion
	assignments     map[string][]model.Assignment // plan_id -> rows
	audits          []model.AuditRecord
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		forecasts:       map[string]model.ForecastVersion{},
		forecastsByHash: map[string]string{},
		instances:       map[string][]model.TourInstance{},
		plans:           map[string]model.PlanVersion{},
		assignments:     map[string][]model.Assignment{},
	}
}

func (s *MemStore) CreateForecastVersion(ctx context.Context, fv model.ForecastVersion) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.forecastsByHash[fv.InputHash]; ok {
		return id, nil
	}
	if fv.ID == "" {
		fv.ID = uuid.NewString()
	}
	s.forecasts[fv.ID] = fv
	s.forecastsByHash[fv.InputHash] = fv.ID
	return fv.ID, nil
}

func (s *MemStore) CreateTourInstances(ctx context.Context, forecastID string, instances []model.TourInstance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.forecasts[forecastID]; !ok {
		return errNotFound("forecast", forecastID)
	}
	cp := append([]model.TourInstance(nil), instances...)
	s.instances[forecastID] = cp
	return nil
}

func (s *MemStore) CreatePlanVersion(ctx context.Context, pv model.PlanVersion) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pv.ID == "" {
		pv.ID = uuid.NewString()
	}
	s.plans[pv.ID] = pv
	return pv.ID, nil
}

func (s *MemStore) AssignmentsBatchInsert(ctx context.Context, planID string, rows []model.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	plan, ok := s.plans[planID]
	if !ok {
		return errNotFound("plan", planID)
	}
	if err := version.CheckMutationAllowed(plan.Status); err != nil {
		return err
	}
	// all-or-nothing: validate every row belongs to this plan before
	// writing any of them.
	for _, r := range rows {
		if r.PlanVersionID != "" && r.PlanVersionID != planID {
			return errMismatchedPlan(planID, r.PlanVersionID)
		}
	}
	cp := append([]model.Assignment(nil), rows...)
	s.assignments[planID] = cp
	return nil
}

func (s *MemStore) UpdatePlanStatus(ctx context.Context, planID string, newStatus model.PlanStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	plan, ok := s.plans[planID]
	if !ok {
		return errNotFound("plan", planID)
	}
	if err := version.TransitionPlan(plan.Status, newStatus); err != nil {
		return err
	}
	plan.Status = newStatus
	if newStatus == model.PlanLockedSt {
		now := time.Now()
		plan.LockedAt = &now
	}
	s.plans[planID] = plan
	return nil
}

func (s *MemStore) UpdatePlanOutputHash(ctx context.Context, planID string, outputHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	plan, ok := s.plans[planID]
	if !ok {
		return errNotFound("plan", planID)
	}
	plan.OutputHash = outputHash
	s.plans[planID] = plan
	return nil
}

func (s *MemStore) AppendAudit(ctx context.Context, records []model.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audits = append(s.audits, records...)
	return nil
}

func (s *MemStore) StalePlanSweep(ctx context.Context, olderThan time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, plan := range s.plans {
		if plan.Status != model.PlanSolving {
			continue
		}
		if plan.CreatedAt.After(olderThan) {
			continue
		}
		plan.Status = model.PlanFailed
		s.plans[id] = plan
		n++
	}
	return n, nil
}

func (s *MemStore) PlanByID(ctx context.Context, planID string) (model.PlanVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	plan, ok := s.plans[planID]
	if !ok {
		return model.PlanVersion{}, errNotFound("plan", planID)
	}
	return plan, nil
}

func (s *MemStore) InstancesByForecast(ctx context.Context, forecastID string) ([]model.TourInstance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, ok := s.instances[forecastID]
	if !ok {
		return nil, errNotFound("forecast", forecastID)
	}
	out := append([]model.TourInstance(nil), list...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) AssignmentsByPlan(ctx context.Context, planID string) ([]model.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.plans[planID]; !ok {
		return nil, errNotFound("plan", planID)
	}
	rows := s.assignments[planID]
	out := append([]model.Assignment(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].TourInstanceID < out[j].TourInstanceID })
	return out, nil
}
