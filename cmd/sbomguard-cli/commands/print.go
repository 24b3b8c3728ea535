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

package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/l3montree-dev/sbomguard/database/models"
	"github.com/l3montree-dev/sbomguard/dtos"
	"github.com/l3montree-dev/sbomguard/transformer"
	"github.com/l3montree-dev/sbomguard/utils"
)

func render(w io.Writer, analysis models.Analysis, output string) error {
	switch output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(analysis)
	case "cyclonedx":
		return cdx.NewBOMEncoder(w, cdx.BOMFileFormatJSON).SetPretty(true).Encode(transformer.AnalysisToCycloneDX(analysis))
	default:
		_, err := fmt.Fprintln(w, renderTable(analysis))
		return err
	}
}

func severityColor(s dtos.Severity) text.Colors {
	switch s {
	case dtos.SeverityCritical:
		return text.Colors{text.FgRed, text.Bold}
	case dtos.SeverityHigh:
		return text.Colors{text.FgRed}
	case dtos.SeverityMedium:
		return text.Colors{text.FgYellow}
	default:
		return text.Colors{text.FgHiBlack}
	}
}

// highestSeverity returns the most severe finding of a component.
func highestSeverity(findings []dtos.VulnerabilityFinding) dtos.Severity {
	var highest dtos.Severity
	for _, f := range findings {
		if f.Severity.Rank() > highest.Rank() {
			highest = f.Severity
		}
	}
	return highest
}

func renderTable(analysis models.Analysis) string {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Component", "Version", "Ecosystem", "Risk", "Severity", "Vulnerabilities"})
	tw.AppendRows(utils.Map(analysis.ComponentResults, func(r dtos.ComponentRiskResult) table.Row {
		ids := utils.Map(r.Findings, func(f dtos.VulnerabilityFinding) string {
			return f.ID
		})
		risk := fmt.Sprintf("%.1f", r.RiskScore)
		if r.LookupIncomplete {
			risk += " (incomplete)"
		}
		severity := highestSeverity(r.Findings)
		return table.Row{r.Component.Name, r.Component.Version, r.Component.Ecosystem, risk, severityColor(severity).Sprint(string(severity)), text.WrapSoft(strings.Join(ids, ", "), 60)}
	}))
	tw.AppendFooter(table.Row{"", "", "Total", fmt.Sprintf("%.1f", analysis.OverallRiskScore), "", fmt.Sprintf("%d in %d components", analysis.TotalVulnerabilities, analysis.TotalComponents)})

	out := tw.Render()
	if len(analysis.LookupFailures) > 0 {
		out += fmt.Sprintf("\n%d lookups failed:", len(analysis.LookupFailures))
		for _, failure := range analysis.LookupFailures {
			out += fmt.Sprintf("\n  %s@%s: %s", failure.Component.Name, failure.Component.Version, failure.Reason)
		}
	}
	return out
}
