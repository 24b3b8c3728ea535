package commands

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/l3montree-dev/sbomguard/dtos"
	"github.com/l3montree-dev/sbomguard/mocks"
	"github.com/l3montree-dev/sbomguard/shared"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const analyzeSBOM = `{"bomFormat":"CycloneDX","specVersion":"1.5","components":[
  {"type":"library","name":"lodash","version":"4.17.10","purl":"pkg:npm/lodash@4.17.10"},
  {"type":"library","name":"left-pad","version":"1.0.0","purl":"pkg:npm/left-pad@1.0.0"}
]}`

var analyzeTestConfig = shared.Config{
	CorrelationConcurrency:     2,
	CorrelationMaxFailureRatio: 0.5,
	PipelineTimeout:            time.Minute,
}

func TestAnalyzeDocument(t *testing.T) {
	t.Run("should render a complete analysis", func(t *testing.T) {
		client := mocks.NewVulnerabilityClient(t)
		client.On("Lookup", mock.Anything, mock.Anything).Return([]dtos.VulnerabilityFinding{}, nil)

		var buf bytes.Buffer
		require.NoError(t, analyzeDocument(context.Background(), &buf, analyzeTestConfig, client, []byte(analyzeSBOM), "bom.json", "table", 0))
		assert.Contains(t, buf.String(), "lodash")
		assert.Contains(t, buf.String(), "left-pad")
	})

	t.Run("should render the partial results of a degraded analysis and return an error", func(t *testing.T) {
		client := mocks.NewVulnerabilityClient(t)
		client.On("Lookup", mock.Anything, mock.Anything).Return(nil, errors.Wrap(shared.ErrUpstreamUnavailable, "status 503"))

		var buf bytes.Buffer
		err := analyzeDocument(context.Background(), &buf, analyzeTestConfig, client, []byte(analyzeSBOM), "bom.json", "table", 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), string(shared.ErrorKindCorrelationDegraded))

		out := buf.String()
		assert.Contains(t, out, "lodash")
		assert.Contains(t, out, "(incomplete)")
		assert.Contains(t, out, "2 lookups failed")
	})

	t.Run("should fail if the risk reaches the threshold", func(t *testing.T) {
		score := 9.8
		client := mocks.NewVulnerabilityClient(t)
		client.On("Lookup", mock.Anything, mock.MatchedBy(func(c dtos.Component) bool { return c.Name == "lodash" })).
			Return([]dtos.VulnerabilityFinding{{ID: "GHSA-35jh-r3h4-6jhm", Severity: dtos.SeverityCritical, CVSSScore: &score}}, nil)
		client.On("Lookup", mock.Anything, mock.Anything).Return([]dtos.VulnerabilityFinding{}, nil)

		var buf bytes.Buffer
		err := analyzeDocument(context.Background(), &buf, analyzeTestConfig, client, []byte(analyzeSBOM), "bom.json", "json", 1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds threshold")
		assert.Contains(t, buf.String(), "GHSA-35jh-r3h4-6jhm")
	})
}
