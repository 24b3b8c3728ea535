package repositories

import (
	"context"
	"time"

	"github.com/l3montree-dev/sbomguard/database/models"
	"github.com/l3montree-dev/sbomguard/shared"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormTierRepository struct {
	tiers       *GormRepository[string, models.Tier]
	assignments *GormRepository[string, models.TenantTier]
	db          *gorm.DB
}

var _ shared.TierRepository = (*gormTierRepository)(nil)

func NewTierRepository(db *gorm.DB) *gormTierRepository {
	return &gormTierRepository{
		tiers:       newGormRepository[string, models.Tier](db),
		assignments: newGormRepository[string, models.TenantTier](db),
		db:          db,
	}
}

func (r *gormTierRepository) Read(ctx context.Context, name string) (models.Tier, error) {
	return r.tiers.ReadBy(ctx, "name = ?", name)
}

// FindByTenant returns the tier assigned to the tenant or shared.ErrNotFound.
func (r *gormTierRepository) FindByTenant(ctx context.Context, tenantID string) (models.Tier, error) {
	var assignment models.TenantTier
	err := r.db.WithContext(ctx).Preload("Tier").Where("tenant_id = ?", tenantID).First(&assignment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Tier{}, errors.Wrapf(shared.ErrNotFound, "tenant %s has no tier", tenantID)
	}
	if err != nil {
		return models.Tier{}, err
	}
	return assignment.Tier, nil
}

func (r *gormTierRepository) AssignTenant(ctx context.Context, tenantID, tierName string) error {
	if _, err := r.Read(ctx, tierName); err != nil {
		return err
	}
	return r.assignments.Upsert(ctx, nil, &models.TenantTier{
		TenantID:  tenantID,
		TierName:  tierName,
		UpdatedAt: time.Now(),
	}, []clause.Column{{Name: "tenant_id"}}, []string{"tier_name", "updated_at"})
}
