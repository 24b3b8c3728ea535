package models

import (
	"time"

	"github.com/l3montree-dev/sbomguard/dtos"
)

type Tier struct {
	Name                     string `json:"name" gorm:"primaryKey;type:text"`
	MaxAnalysesPerMonth      int    `json:"maxAnalysesPerMonth" gorm:"not null;default:0"`
	MaxComponentsPerAnalysis int    `json:"maxComponentsPerAnalysis" gorm:"not null;default:0"`
}

func (t Tier) TableName() string {
	return "tiers"
}

func (t Tier) Limits() dtos.TierLimits {
	return dtos.TierLimits{
		Tier:                     t.Name,
		MaxAnalysesPerMonth:      t.MaxAnalysesPerMonth,
		MaxComponentsPerAnalysis: t.MaxComponentsPerAnalysis,
	}
}

// TenantTier assigns a tenant to a tier. tenants without a row use the default tier.
type TenantTier struct {
	TenantID  string    `json:"tenantId" gorm:"primaryKey;type:text"`
	TierName  string    `json:"tierName" gorm:"type:text;not null"`
	Tier      Tier      `json:"tier" gorm:"foreignKey:TierName;references:Name"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (t TenantTier) TableName() string {
	return "tenant_tiers"
}
