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

package transformer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/l3montree-dev/sbomguard/database/models"
	"github.com/l3montree-dev/sbomguard/dtos"
)

func componentBOMRef(c dtos.ComponentRef) string {
	if c.PackageID != "" {
		return c.PackageID
	}
	return c.Ecosystem + "/" + c.Name + "@" + c.Version
}

func severityToCDX(s dtos.Severity) cdx.Severity {
	switch s {
	case dtos.SeverityCritical:
		return cdx.SeverityCritical
	case dtos.SeverityHigh:
		return cdx.SeverityHigh
	case dtos.SeverityMedium:
		return cdx.SeverityMedium
	case dtos.SeverityLow:
		return cdx.SeverityLow
	}
	return cdx.SeverityUnknown
}

func scoringMethod(vector string) cdx.ScoringMethod {
	switch {
	case strings.HasPrefix(vector, "CVSS:4.0"):
		return cdx.ScoringMethodCVSSv4
	case strings.HasPrefix(vector, "CVSS:3.1"):
		return cdx.ScoringMethodCVSSv31
	case strings.HasPrefix(vector, "CVSS:3.0"):
		return cdx.ScoringMethodCVSSv3
	case vector != "":
		return cdx.ScoringMethodCVSSv2
	}
	return cdx.ScoringMethodOther
}

func findingToRating(f dtos.VulnerabilityFinding) cdx.VulnerabilityRating {
	rating := cdx.VulnerabilityRating{
		Severity: severityToCDX(f.Severity),
		Method:   scoringMethod(f.CVSSVector),
		Vector:   f.CVSSVector,
	}
	if f.CVSSScore != nil {
		score := *f.CVSSScore
		rating.Score = &score
	}
	return rating
}

// AnalysisToCycloneDX renders the components of an analysis together with their findings.
// A finding reported for several components becomes one vulnerability affecting all of them.
func AnalysisToCycloneDX(analysis models.Analysis) *cdx.BOM {
	bom := cdx.NewBOM()
	bom.SerialNumber = "urn:uuid:" + analysis.ID.String()
	bom.Metadata = &cdx.Metadata{
		Timestamp: analysis.CreatedAt.UTC().Format(time.RFC3339),
		Component: &cdx.Component{
			BOMRef: analysis.ID.String(),
			Type:   cdx.ComponentTypeApplication,
			Name:   analysis.SourceFilename,
		},
		Properties: &[]cdx.Property{
			{Name: "sbomguard:status", Value: string(analysis.Status)},
			{Name: "sbomguard:overallRiskScore", Value: strconv.FormatFloat(analysis.OverallRiskScore, 'f', 2, 64)},
		},
	}

	components := make([]cdx.Component, 0, len(analysis.ComponentResults))
	seenComponents := make(map[string]struct{}, len(analysis.ComponentResults))
	vulnerabilities := make([]cdx.Vulnerability, 0)
	vulnIndex := make(map[string]int)

	for _, result := range analysis.ComponentResults {
		ref := componentBOMRef(result.Component.Ref())
		if _, ok := seenComponents[ref]; !ok {
			seenComponents[ref] = struct{}{}
			component := cdx.Component{
				BOMRef:     ref,
				Type:       cdx.ComponentTypeLibrary,
				Name:       result.Component.Name,
				Version:    result.Component.Version,
				PackageURL: result.Component.PackageID,
				Properties: &[]cdx.Property{
					{Name: "sbomguard:riskScore", Value: strconv.FormatFloat(result.RiskScore, 'f', 2, 64)},
				},
			}
			if result.LookupIncomplete {
				*component.Properties = append(*component.Properties, cdx.Property{Name: "sbomguard:lookupIncomplete", Value: "true"})
			}
			components = append(components, component)
		}

		for _, finding := range result.Findings {
			if i, ok := vulnIndex[finding.ID]; ok {
				affects := vulnerabilities[i].Affects
				if !containsRef(*affects, ref) {
					*affects = append(*affects, cdx.Affects{Ref: ref})
				}
				continue
			}

			vuln := cdx.Vulnerability{
				BOMRef:      finding.ID,
				ID:          finding.ID,
				Source:      &cdx.Source{Name: "OSV", URL: fmt.Sprintf("https://osv.dev/vulnerability/%s", finding.ID)},
				Description: finding.Summary,
				Ratings:     &[]cdx.VulnerabilityRating{findingToRating(finding)},
				Affects:     &[]cdx.Affects{{Ref: ref}},
			}
			if !finding.PublishedAt.IsZero() {
				vuln.Published = finding.PublishedAt.UTC().Format(time.RFC3339)
			}
			if len(finding.Aliases) > 0 {
				references := make([]cdx.VulnerabilityReference, 0, len(finding.Aliases))
				for _, alias := range finding.Aliases {
					references = append(references, cdx.VulnerabilityReference{ID: alias, Source: &cdx.Source{URL: fmt.Sprintf("https://osv.dev/vulnerability/%s", alias)}})
				}
				vuln.References = &references
			}
			vulnIndex[finding.ID] = len(vulnerabilities)
			vulnerabilities = append(vulnerabilities, vuln)
		}
	}

	bom.Components = &components
	bom.Vulnerabilities = &vulnerabilities
	return bom
}

func containsRef(affects []cdx.Affects, ref string) bool {
	for _, a := range affects {
		if a.Ref == ref {
			return true
		}
	}
	return false
}
