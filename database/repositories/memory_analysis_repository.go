package repositories

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/l3montree-dev/sbomguard/database/models"
	"github.com/l3montree-dev/sbomguard/shared"
	"github.com/pkg/errors"
)

// memoryAnalysisRepository keeps analyses in process memory.
// It is used by the cli and in tests and behaves like the gorm implementation.
type memoryAnalysisRepository struct {
	mu       sync.RWMutex
	analyses map[uuid.UUID]models.Analysis
	now      func() time.Time
}

var _ shared.AnalysisRepository = (*memoryAnalysisRepository)(nil)

func NewMemoryAnalysisRepository() *memoryAnalysisRepository {
	return &memoryAnalysisRepository{
		analyses: make(map[uuid.UUID]models.Analysis),
		now:      time.Now,
	}
}

func copyAnalysis(a models.Analysis) models.Analysis {
	a.ComponentResults = slices.Clone(a.ComponentResults)
	a.LookupFailures = slices.Clone(a.LookupFailures)
	return a
}

func (r *memoryAnalysisRepository) Create(ctx context.Context, analysis *models.Analysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if analysis.ID == uuid.Nil {
		analysis.ID = uuid.New()
	}
	if _, ok := r.analyses[analysis.ID]; ok {
		return errors.Errorf("analysis %s already exists", analysis.ID)
	}
	now := r.now()
	if analysis.CreatedAt.IsZero() {
		analysis.CreatedAt = now
	}
	analysis.UpdatedAt = now
	if analysis.Status == "" {
		analysis.Status = models.AnalysisStatusPending
	}
	r.analyses[analysis.ID] = copyAnalysis(*analysis)
	return nil
}

func (r *memoryAnalysisRepository) Read(ctx context.Context, id uuid.UUID) (models.Analysis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.analyses[id]
	if !ok {
		return models.Analysis{}, errors.Wrap(shared.ErrNotFound, "analyses")
	}
	return copyAnalysis(a), nil
}

func (r *memoryAnalysisRepository) FindLatestComplete(ctx context.Context, tenantID, contentHash string) (models.Analysis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *models.Analysis
	for _, a := range r.analyses {
		if a.TenantID != tenantID || a.ContentHash != contentHash || a.Status != models.AnalysisStatusComplete {
			continue
		}
		if latest == nil || completedAfter(a, *latest) {
			latest = &a
		}
	}
	if latest == nil {
		return models.Analysis{}, errors.Wrap(shared.ErrNotFound, "no completed analysis")
	}
	return copyAnalysis(*latest), nil
}

func (r *memoryAnalysisRepository) ListByTenant(ctx context.Context, tenantID string) ([]models.Analysis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make([]models.Analysis, 0)
	for _, a := range r.analyses {
		if a.TenantID != tenantID {
			continue
		}
		a.ComponentResults = nil
		a.LookupFailures = nil
		res = append(res, a)
	}
	slices.SortFunc(res, func(a, b models.Analysis) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return res, nil
}

func (r *memoryAnalysisRepository) Transition(ctx context.Context, id uuid.UUID, from, to models.AnalysisStatus) error {
	if !from.CanTransitionTo(to) {
		return errors.Wrapf(shared.ErrInvalidTransition, "%s -> %s", from, to)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.analyses[id]
	if !ok {
		return errors.Wrap(shared.ErrNotFound, "analyses")
	}
	if a.Status != from {
		return errors.Wrapf(shared.ErrInvalidTransition, "analysis %s is %s, expected %s for transition to %s", id, a.Status, from, to)
	}
	a.Status = to
	a.UpdatedAt = r.now()
	r.analyses[id] = a
	return nil
}

func (r *memoryAnalysisRepository) Finish(ctx context.Context, analysis *models.Analysis) error {
	if !models.AnalysisStatusRunning.CanTransitionTo(analysis.Status) {
		return errors.Wrapf(shared.ErrInvalidTransition, "can not finish with status %s", analysis.Status)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.analyses[analysis.ID]
	if !ok {
		return errors.Wrap(shared.ErrNotFound, "analyses")
	}
	if stored.Status != models.AnalysisStatusRunning {
		return errors.Wrapf(shared.ErrInvalidTransition, "analysis %s is %s, expected %s for transition to %s", analysis.ID, stored.Status, models.AnalysisStatusRunning, analysis.Status)
	}

	analysis.UpdatedAt = r.now()
	stored.Status = analysis.Status
	stored.TotalComponents = analysis.TotalComponents
	stored.TotalVulnerabilities = analysis.TotalVulnerabilities
	stored.OverallRiskScore = analysis.OverallRiskScore
	stored.ComponentResults = slices.Clone(analysis.ComponentResults)
	stored.LookupFailures = slices.Clone(analysis.LookupFailures)
	stored.Error = analysis.Error
	stored.ErrorKind = analysis.ErrorKind
	stored.CompletedAt = analysis.CompletedAt
	stored.UpdatedAt = analysis.UpdatedAt
	r.analyses[analysis.ID] = stored
	return nil
}

func (r *memoryAnalysisRepository) CountConsumingSince(ctx context.Context, tenantID string, since time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, a := range r.analyses {
		if a.TenantID != tenantID {
			continue
		}
		switch a.Status {
		case models.AnalysisStatusPending, models.AnalysisStatusRunning:
			count++
		case models.AnalysisStatusComplete:
			if a.CompletedAt != nil && !a.CompletedAt.Before(since) {
				count++
			}
		}
	}
	return count, nil
}

func (r *memoryAnalysisRepository) FindUnfinishedBefore(ctx context.Context, before time.Time) ([]models.Analysis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make([]models.Analysis, 0)
	for _, a := range r.analyses {
		if !a.Status.IsTerminal() && a.CreatedAt.Before(before) {
			a.ComponentResults = nil
			a.LookupFailures = nil
			res = append(res, a)
		}
	}
	slices.SortFunc(res, func(a, b models.Analysis) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return res, nil
}

func completedAfter(a, b models.Analysis) bool {
	if a.CompletedAt == nil || b.CompletedAt == nil {
		return b.CompletedAt == nil && a.CompletedAt != nil
	}
	return a.CompletedAt.After(*b.CompletedAt)
}
