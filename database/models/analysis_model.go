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

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/l3montree-dev/sbomguard/dtos"
	"gorm.io/datatypes"
)

type AnalysisStatus string

const (
	AnalysisStatusPending  AnalysisStatus = "PENDING"
	AnalysisStatusRunning  AnalysisStatus = "RUNNING"
	AnalysisStatusComplete AnalysisStatus = "COMPLETE"
	AnalysisStatusFailed   AnalysisStatus = "FAILED"
)

func (s AnalysisStatus) IsTerminal() bool {
	return s == AnalysisStatusComplete || s == AnalysisStatusFailed
}

// CanTransitionTo only allows PENDING -> RUNNING -> COMPLETE|FAILED.
func (s AnalysisStatus) CanTransitionTo(next AnalysisStatus) bool {
	switch s {
	case AnalysisStatusPending:
		return next == AnalysisStatusRunning
	case AnalysisStatusRunning:
		return next == AnalysisStatusComplete || next == AnalysisStatusFailed
	}
	return false
}

type Analysis struct {
	ID             uuid.UUID      `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	TenantID       string         `json:"tenantId" gorm:"type:text;not null"`
	VendorID       *string        `json:"vendorId,omitempty" gorm:"type:text"`
	SourceFilename string         `json:"sourceFilename" gorm:"type:text"`
	ContentHash    string         `json:"contentHash" gorm:"type:text;not null"`
	Format         string         `json:"format" gorm:"type:text"`
	Status         AnalysisStatus `json:"status" gorm:"type:text;not null;default:'PENDING'"`

	DeclaredComponents   int     `json:"declaredComponents"`
	SkippedComponents    int     `json:"skippedComponents"`
	TotalComponents      int     `json:"totalComponents"`
	TotalVulnerabilities int     `json:"totalVulnerabilities"`
	OverallRiskScore     float64 `json:"overallRiskScore"`

	ComponentResults datatypes.JSONSlice[dtos.ComponentRiskResult]    `json:"componentResults" gorm:"type:jsonb"`
	LookupFailures   datatypes.JSONSlice[dtos.ComponentLookupFailure] `json:"lookupFailures,omitempty" gorm:"type:jsonb"`

	Error     *string `json:"error,omitempty" gorm:"type:text"`
	ErrorKind *string `json:"errorKind,omitempty" gorm:"type:text"`

	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func (a Analysis) TableName() string {
	return "analyses"
}

func (a Analysis) Summary() dtos.AnalysisSummary {
	return dtos.AnalysisSummary{
		ID:                   a.ID,
		TenantID:             a.TenantID,
		VendorID:             a.VendorID,
		SourceFilename:       a.SourceFilename,
		Format:               a.Format,
		Status:               string(a.Status),
		TotalComponents:      a.TotalComponents,
		TotalVulnerabilities: a.TotalVulnerabilities,
		OverallRiskScore:     a.OverallRiskScore,
		ErrorKind:            a.ErrorKind,
		CreatedAt:            a.CreatedAt,
		CompletedAt:          a.CompletedAt,
	}
}
