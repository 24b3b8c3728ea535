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

package dtos

import (
	"time"

	"github.com/google/uuid"
)

type SubmitAnalysisRequest struct {
	TenantID       string  `json:"tenantId" validate:"required"`
	VendorID       *string `json:"vendorId,omitempty"`
	SourceFilename string  `json:"sourceFilename"`
	RawDocument    []byte  `json:"-" validate:"required"`
}

type SubmitAnalysisResponse struct {
	ID     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

type AnalysisSummary struct {
	ID                   uuid.UUID  `json:"id"`
	TenantID             string     `json:"tenantId"`
	VendorID             *string    `json:"vendorId,omitempty"`
	SourceFilename       string     `json:"sourceFilename"`
	Format               string     `json:"format"`
	Status               string     `json:"status"`
	TotalComponents      int        `json:"totalComponents"`
	TotalVulnerabilities int        `json:"totalVulnerabilities"`
	OverallRiskScore     float64    `json:"overallRiskScore"`
	ErrorKind            *string    `json:"errorKind,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
	CompletedAt          *time.Time `json:"completedAt,omitempty"`
}

// TierLimits are the usage limits of a subscription tier. zero means unlimited.
type TierLimits struct {
	Tier                     string `json:"tier"`
	MaxAnalysesPerMonth      int    `json:"maxAnalysesPerMonth"`
	MaxComponentsPerAnalysis int    `json:"maxComponentsPerAnalysis"`
}
