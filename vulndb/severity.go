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
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/l3montree-dev/sbomguard/dtos"
	gocvss20 "github.com/pandatix/go-cvss/20"
	gocvss30 "github.com/pandatix/go-cvss/30"
	gocvss31 "github.com/pandatix/go-cvss/31"
	gocvss40 "github.com/pandatix/go-cvss/40"
	"github.com/pkg/errors"
)

type SeverityPrecedence string

const (
	// the severity field of the advisory wins over database specific ratings
	SeverityPrecedenceCanonicalFirst SeverityPrecedence = "canonical-first"
	// the rating of the originating database wins over the severity field
	SeverityPrecedenceDatabaseSpecificFirst SeverityPrecedence = "database-specific-first"
)

func ParseSeverityPrecedence(s string) (SeverityPrecedence, error) {
	switch SeverityPrecedence(strings.ToLower(strings.TrimSpace(s))) {
	case "", SeverityPrecedenceCanonicalFirst:
		return SeverityPrecedenceCanonicalFirst, nil
	case SeverityPrecedenceDatabaseSpecificFirst:
		return SeverityPrecedenceDatabaseSpecificFirst, nil
	}
	return "", fmt.Errorf("unknown severity precedence %q", s)
}

// FallbackSeverity is used if an advisory carries no usable severity information at all.
const FallbackSeverity = dtos.SeverityMedium

type resolvedSeverity struct {
	Severity   dtos.Severity
	CVSSScore  *float64
	CVSSVector string
}

type SeverityResolver struct {
	precedence SeverityPrecedence
}

func NewSeverityResolver(precedence SeverityPrecedence) SeverityResolver {
	if precedence == "" {
		precedence = SeverityPrecedenceCanonicalFirst
	}
	return SeverityResolver{precedence: precedence}
}

// Resolve determines the severity of an advisory.
// The cvss score is always the highest parseable score of the advisory, independent of the precedence.
func (r SeverityResolver) Resolve(osv dtos.OSV) resolvedSeverity {
	res := resolvedSeverity{}
	for _, s := range osv.Severity.Scores {
		score, err := ParseCVSS(s.Type, s.Score)
		if err != nil {
			slog.Warn("Error parsing CVSS vector", "vector", s.Score, "error", err, "osv", osv.ID)
			continue
		}
		if res.CVSSScore == nil || score > *res.CVSSScore {
			res.CVSSScore = &score
			res.CVSSVector = s.Score
		}
	}

	canonical := canonicalSeverity(osv.Severity.Level, res.CVSSScore)
	databaseSpecific := databaseSpecificSeverity(osv)

	candidates := []dtos.Severity{canonical, databaseSpecific}
	if r.precedence == SeverityPrecedenceDatabaseSpecificFirst {
		candidates = []dtos.Severity{databaseSpecific, canonical}
	}

	res.Severity = FallbackSeverity
	for _, c := range candidates {
		if c.IsValid() {
			res.Severity = c
			break
		}
	}
	return res
}

func canonicalSeverity(level string, cvss *float64) dtos.Severity {
	if s, ok := dtos.ParseSeverity(level); ok {
		return s
	}
	if cvss != nil {
		return dtos.SeverityFromCVSS(*cvss)
	}
	return ""
}

// databaseSpecificSeverity looks at the advisory level database_specific block first,
// afterwards at the affected entries. github and most distro databases put it there.
func databaseSpecificSeverity(osv dtos.OSV) dtos.Severity {
	if s, ok := severityFromMap(osv.DatabaseSpecific); ok {
		return s
	}
	for _, affected := range osv.Affected {
		if s, ok := severityFromMap(affected.DatabaseSpecific); ok {
			return s
		}
		if s, ok := severityFromMap(affected.EcosystemSpecific); ok {
			return s
		}
	}
	return ""
}

func severityFromMap(m map[string]any) (dtos.Severity, bool) {
	if m == nil {
		return "", false
	}
	raw, ok := m["severity"].(string)
	if !ok {
		return "", false
	}
	return dtos.ParseSeverity(raw)
}

type cvssInterface interface {
	BaseScore() float64
}

// ParseCVSS returns the base score of a cvss vector.
// Some databases put the plain numeric score into the severity array, those are accepted as well.
func ParseCVSS(scoreType, vector string) (float64, error) {
	vector = strings.TrimSpace(vector)
	var score float64
	switch {
	case strings.HasPrefix(vector, "CVSS:3.0") || strings.HasPrefix(vector, "CVSS:3.1"):
		var cvss cvssInterface
		var err error
		if strings.HasPrefix(vector, "CVSS:3.0") {
			cvss, err = gocvss30.ParseVector(vector)
		} else {
			cvss, err = gocvss31.ParseVector(vector)
		}
		if err != nil {
			return 0, err
		}
		score = cvss.BaseScore()
	case strings.HasPrefix(vector, "CVSS:4.0"):
		cvss, err := gocvss40.ParseVector(vector)
		if err != nil {
			return 0, err
		}
		score = cvss.Score()
	default:
		cvss, err := gocvss20.ParseVector(vector)
		if err == nil {
			score = cvss.BaseScore()
			break
		}
		numeric, parseErr := strconv.ParseFloat(vector, 64)
		if parseErr != nil {
			return 0, errors.Wrapf(err, "could not parse %s score", scoreType)
		}
		score = numeric
	}

	if score < 0 || score > 10 {
		return 0, fmt.Errorf("cvss score %v out of range", score)
	}
	return score, nil
}
