// Copyright (C) 2024 Tim Bastin, l3montree GmbH
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

package vulndb

import (
	"cmp"
	"slices"

	"github.com/l3montree-dev/sbomguard/dtos"
	"github.com/l3montree-dev/sbomguard/utils"
)

var severityWeights = map[dtos.Severity]float64{
	dtos.SeverityCritical: 40,
	dtos.SeverityHigh:     25,
	dtos.SeverityMedium:   10,
	dtos.SeverityLow:      3,
}

const (
	// findings of the same severity above this count only add half their weight
	fullWeightFindings = 3
	diminishedWeight   = 0.5
	maxScore           = 100

	severityBlend = 0.7
	cvssBlend     = 0.3
)

// Score calculates the risk score of a single component in [0, 100].
func Score(findings []dtos.VulnerabilityFinding) float64 {
	if len(findings) == 0 {
		return 0
	}

	sevScore := severityScore(findings)

	var maxCVSS *float64
	withoutCVSS := make([]dtos.VulnerabilityFinding, 0, len(findings))
	for _, f := range findings {
		if f.CVSSScore == nil {
			withoutCVSS = append(withoutCVSS, f)
			continue
		}
		if maxCVSS == nil || *f.CVSSScore > *maxCVSS {
			maxCVSS = f.CVSSScore
		}
	}

	if maxCVSS == nil {
		return utils.RoundTwoDecimals(sevScore)
	}

	cvss := utils.Clamp(*maxCVSS, 0, 10)
	blended := severityBlend*sevScore + cvssBlend*(cvss/10*100)
	// findings without a cvss score are never discounted by the blend
	score := max(blended, severityScore(withoutCVSS))

	return utils.RoundTwoDecimals(utils.Clamp(score, 0, maxScore))
}

func severityScore(findings []dtos.VulnerabilityFinding) float64 {
	counts := make(map[dtos.Severity]int, len(severityWeights))
	score := 0.0
	for _, f := range findings {
		weight, ok := severityWeights[f.Severity]
		if !ok {
			continue
		}
		counts[f.Severity]++
		if counts[f.Severity] > fullWeightFindings {
			weight *= diminishedWeight
		}
		score += weight
	}
	return min(score, maxScore)
}

// OverallScore is the highest component score. A single critical component drives the result.
func OverallScore(results []dtos.ComponentRiskResult) float64 {
	overall := 0.0
	for _, r := range results {
		overall = max(overall, r.RiskScore)
	}
	return overall
}

// ScoreResults sorts the findings of every result and sets its risk score.
func ScoreResults(results []dtos.ComponentRiskResult) {
	for i := range results {
		SortFindings(results[i].Findings)
		results[i].RiskScore = Score(results[i].Findings)
	}
}

// SortFindings orders by severity desc, cvss score desc (missing last) and id.
func SortFindings(findings []dtos.VulnerabilityFinding) {
	slices.SortStableFunc(findings, func(a, b dtos.VulnerabilityFinding) int {
		if c := cmp.Compare(b.Severity.Rank(), a.Severity.Rank()); c != 0 {
			return c
		}
		switch {
		case a.CVSSScore != nil && b.CVSSScore == nil:
			return -1
		case a.CVSSScore == nil && b.CVSSScore != nil:
			return 1
		case a.CVSSScore != nil && b.CVSSScore != nil:
			if c := cmp.Compare(*b.CVSSScore, *a.CVSSScore); c != 0 {
				return c
			}
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
