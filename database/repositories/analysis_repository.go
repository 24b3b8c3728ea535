// Copyright (C) 2026 l3montree GmbH
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/l3montree-dev/sbomguard/database/models"
	"github.com/l3montree-dev/sbomguard/shared"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// columns written when an analysis reaches a terminal status
var finishColumns = []string{
	"status",
	"total_components",
	"total_vulnerabilities",
	"overall_risk_score",
	"component_results",
	"lookup_failures",
	"error",
	"error_kind",
	"completed_at",
	"updated_at",
}

type gormAnalysisRepository struct {
	base *GormRepository[uuid.UUID, models.Analysis]
	db   *gorm.DB
}

var _ shared.AnalysisRepository = (*gormAnalysisRepository)(nil)

func NewAnalysisRepository(db *gorm.DB) *gormAnalysisRepository {
	return &gormAnalysisRepository{
		base: newGormRepository[uuid.UUID, models.Analysis](db),
		db:   db,
	}
}

func (r *gormAnalysisRepository) Create(ctx context.Context, analysis *models.Analysis) error {
	if analysis.ID == uuid.Nil {
		analysis.ID = uuid.New()
	}
	return r.base.Create(ctx, nil, analysis)
}

func (r *gormAnalysisRepository) Read(ctx context.Context, id uuid.UUID) (models.Analysis, error) {
	return r.base.Read(ctx, id)
}

func (r *gormAnalysisRepository) FindLatestComplete(ctx context.Context, tenantID, contentHash string) (models.Analysis, error) {
	var analysis models.Analysis
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND content_hash = ? AND status = ?", tenantID, contentHash, models.AnalysisStatusComplete).
		Order("completed_at DESC").
		First(&analysis).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Analysis{}, errors.Wrap(shared.ErrNotFound, "no completed analysis")
	}
	return analysis, err
}

func (r *gormAnalysisRepository) ListByTenant(ctx context.Context, tenantID string) ([]models.Analysis, error) {
	var analyses []models.Analysis
	err := r.db.WithContext(ctx).
		Omit("component_results", "lookup_failures").
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&analyses).Error
	return analyses, err
}

func (r *gormAnalysisRepository) Transition(ctx context.Context, id uuid.UUID, from, to models.AnalysisStatus) error {
	if !from.CanTransitionTo(to) {
		return errors.Wrapf(shared.ErrInvalidTransition, "%s -> %s", from, to)
	}

	res := r.db.WithContext(ctx).Model(&models.Analysis{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.missingOrMoved(ctx, id, from, to)
	}
	return nil
}

func (r *gormAnalysisRepository) Finish(ctx context.Context, analysis *models.Analysis) error {
	if !models.AnalysisStatusRunning.CanTransitionTo(analysis.Status) {
		return errors.Wrapf(shared.ErrInvalidTransition, "can not finish with status %s", analysis.Status)
	}
	analysis.UpdatedAt = time.Now()

	res := r.db.WithContext(ctx).Model(&models.Analysis{}).
		Where("id = ? AND status = ?", analysis.ID, models.AnalysisStatusRunning).
		Select(finishColumns).
		Updates(analysis)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.missingOrMoved(ctx, analysis.ID, models.AnalysisStatusRunning, analysis.Status)
	}
	return nil
}

func (r *gormAnalysisRepository) CountConsumingSince(ctx context.Context, tenantID string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Analysis{}).
		Where("tenant_id = ?", tenantID).
		Where(
			r.db.Where("status IN ?", []models.AnalysisStatus{models.AnalysisStatusPending, models.AnalysisStatusRunning}).
				Or("status = ? AND completed_at >= ?", models.AnalysisStatusComplete, since),
		).
		Count(&count).Error
	return count, err
}

func (r *gormAnalysisRepository) FindUnfinishedBefore(ctx context.Context, before time.Time) ([]models.Analysis, error) {
	var analyses []models.Analysis
	err := r.db.WithContext(ctx).
		Omit("component_results", "lookup_failures").
		Where("status IN ? AND created_at < ?", []models.AnalysisStatus{models.AnalysisStatusPending, models.AnalysisStatusRunning}, before).
		Order("created_at ASC").
		Find(&analyses).Error
	return analyses, err
}

func (r *gormAnalysisRepository) missingOrMoved(ctx context.Context, id uuid.UUID, from, to models.AnalysisStatus) error {
	current, err := r.Read(ctx, id)
	if err != nil {
		return err
	}
	return errors.Wrapf(shared.ErrInvalidTransition, "analysis %s is %s, expected %s for transition to %s", id, current.Status, from, to)
}
