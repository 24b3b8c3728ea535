package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAnalysisStatusTransitions(t *testing.T) {
	statuses := []AnalysisStatus{AnalysisStatusPending, AnalysisStatusRunning, AnalysisStatusComplete, AnalysisStatusFailed}
	allowed := map[AnalysisStatus][]AnalysisStatus{
		AnalysisStatusPending: {AnalysisStatusRunning},
		AnalysisStatusRunning: {AnalysisStatusComplete, AnalysisStatusFailed},
	}

	for _, from := range statuses {
		for _, to := range statuses {
			expected := false
			for _, s := range allowed[from] {
				if s == to {
					expected = true
				}
			}
			assert.Equal(t, expected, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestAnalysisStatusIsTerminal(t *testing.T) {
	assert.False(t, AnalysisStatusPending.IsTerminal())
	assert.False(t, AnalysisStatusRunning.IsTerminal())
	assert.True(t, AnalysisStatusComplete.IsTerminal())
	assert.True(t, AnalysisStatusFailed.IsTerminal())
}

func TestAnalysisSummary(t *testing.T) {
	completedAt := time.Now()
	kind := "CorrelationDegraded"
	analysis := Analysis{
		ID:                   uuid.New(),
		TenantID:             "acme",
		SourceFilename:       "bom.json",
		Format:               "cyclonedx",
		Status:               AnalysisStatusFailed,
		TotalComponents:      12,
		TotalVulnerabilities: 3,
		OverallRiskScore:     42.5,
		ErrorKind:            &kind,
		CompletedAt:          &completedAt,
	}

	summary := analysis.Summary()
	assert.Equal(t, analysis.ID, summary.ID)
	assert.Equal(t, "FAILED", summary.Status)
	assert.Equal(t, 12, summary.TotalComponents)
	assert.Equal(t, 42.5, summary.OverallRiskScore)
	assert.Equal(t, &kind, summary.ErrorKind)
}
