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
	"strings"
	"time"
)

type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Rank orders severities, unknown values rank lowest.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

func (s Severity) IsValid() bool {
	return s.Rank() > 0
}

// ParseSeverity maps the textual levels used by the different advisory databases.
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CRITICAL":
		return SeverityCritical, true
	case "HIGH", "IMPORTANT":
		return SeverityHigh, true
	case "MEDIUM", "MODERATE":
		return SeverityMedium, true
	case "LOW", "NEGLIGIBLE", "MINOR":
		return SeverityLow, true
	}
	return "", false
}

// SeverityFromCVSS uses the qualitative rating bands of cvss v3.
// a score of 0 still maps to LOW, findings are never "none".
func SeverityFromCVSS(score float64) Severity {
	switch {
	case score >= 9.0:
		return SeverityCritical
	case score >= 7.0:
		return SeverityHigh
	case score >= 4.0:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

type VulnerabilityFinding struct {
	ID                string       `json:"id"`
	Severity          Severity     `json:"severity"`
	CVSSScore         *float64     `json:"cvssScore,omitempty"`
	CVSSVector        string       `json:"cvssVector,omitempty"`
	Summary           string       `json:"summary"`
	PublishedAt       time.Time    `json:"publishedAt"`
	Aliases           []string     `json:"aliases,omitempty"`
	AffectedComponent ComponentRef `json:"affectedComponent"`
}

type ComponentRiskResult struct {
	Component        Component              `json:"component"`
	Findings         []VulnerabilityFinding `json:"findings"`
	RiskScore        float64                `json:"riskScore"`
	LookupIncomplete bool                   `json:"lookupIncomplete,omitempty"`
}

type ComponentLookupFailure struct {
	Component Component `json:"component"`
	Reason    string    `json:"reason"`
}

type CorrelationResult struct {
	Results       []ComponentRiskResult
	Failures      []ComponentLookupFailure
	UniqueLookups int
}
