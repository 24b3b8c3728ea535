package dtos

import (
	"encoding/json"
	"strings"
	"time"
)

type Package struct {
	Name      string `json:"name,omitempty"`
	Ecosystem string `json:"ecosystem,omitempty"`
	Purl      string `json:"purl,omitempty"`
}

type SemverEvent struct {
	Introduced string `json:"introduced,omitempty"`
	Fixed      string `json:"fixed,omitempty"`
}

type Range struct {
	Type   string        `json:"type"`
	Repo   string        `json:"repo"`
	Events []SemverEvent `json:"events"`
}

type Affected struct {
	Package           Package        `json:"package"`
	Ranges            []Range        `json:"ranges"`
	Versions          []string       `json:"versions"`
	DatabaseSpecific  map[string]any `json:"database_specific"`
	EcosystemSpecific map[string]any `json:"ecosystem_specific"`
}

type OSVSeverityScore struct {
	Type  string `json:"type"`
	Score string `json:"score"`
}

// OSVSeverity is the canonical severity of an advisory.
// Most databases send the OSV array of scores, some send a plain level.
type OSVSeverity struct {
	Level  string
	Scores []OSVSeverityScore
}

func (s *OSVSeverity) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	if strings.HasPrefix(trimmed, "\"") {
		return json.Unmarshal(data, &s.Level)
	}
	return json.Unmarshal(data, &s.Scores)
}

func (s OSVSeverity) MarshalJSON() ([]byte, error) {
	if s.Level != "" {
		return json.Marshal(s.Level)
	}
	if s.Scores == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.Scores)
}

func (s OSVSeverity) IsEmpty() bool {
	return s.Level == "" && len(s.Scores) == 0
}

type OSV struct {
	ID               string         `json:"id"`
	Summary          string         `json:"summary"`
	Details          string         `json:"details"`
	Modified         time.Time      `json:"modified"`
	Published        time.Time      `json:"published"`
	Withdrawn        *time.Time     `json:"withdrawn,omitempty"`
	Related          []string       `json:"related"`
	Aliases          []string       `json:"aliases"`
	Upstream         []string       `json:"upstream"`
	Affected         []Affected     `json:"affected"`
	SchemaVersion    string         `json:"schema_version"`
	Severity         OSVSeverity    `json:"severity"`
	DatabaseSpecific map[string]any `json:"database_specific"`
}

func (osv OSV) GetAssociatedCVEs() []string {
	cves := make([]string, 0)
	for _, alias := range osv.Aliases {
		if strings.HasPrefix(alias, "CVE-") {
			cves = append(cves, alias)
		}
	}

	for _, upstream := range osv.Upstream {
		if strings.HasPrefix(upstream, "CVE-") {
			cves = append(cves, upstream)
		}
	}

	return cves
}

func (osv OSV) IsWithdrawn() bool {
	return osv.Withdrawn != nil && !osv.Withdrawn.IsZero()
}

type OSVQuery struct {
	Package   Package `json:"package"`
	Version   string  `json:"version,omitempty"`
	PageToken string  `json:"page_token,omitempty"`
}

type OSVQueryResponse struct {
	Vulns         []OSV  `json:"vulns"`
	NextPageToken string `json:"next_page_token,omitempty"`
}
