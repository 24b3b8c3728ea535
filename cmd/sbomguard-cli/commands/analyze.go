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
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/l3montree-dev/sbomguard/database/models"
	"github.com/l3montree-dev/sbomguard/database/repositories"
	"github.com/l3montree-dev/sbomguard/dtos"
	"github.com/l3montree-dev/sbomguard/normalize"
	"github.com/l3montree-dev/sbomguard/services"
	"github.com/l3montree-dev/sbomguard/shared"
	"github.com/l3montree-dev/sbomguard/utils"
	"github.com/l3montree-dev/sbomguard/vulndb"
	"github.com/l3montree-dev/sbomguard/vulndb/scan"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

const localTenant = "local"

// progressClient advances a progress bar after every finished lookup.
type progressClient struct {
	shared.VulnerabilityClient
	bar *progressbar.ProgressBar
}

func (c progressClient) Lookup(ctx context.Context, component dtos.Component) ([]dtos.VulnerabilityFinding, error) {
	findings, err := c.VulnerabilityClient.Lookup(ctx, component)
	c.bar.Add(1) // nolint: errcheck
	return findings, err
}

func NewAnalyzeCommand() *cobra.Command {
	analyze := &cobra.Command{
		Use:   "analyze <sbom.json|->",
		Short: "Analyze a CycloneDX or SPDX json document",
		Long:  `Parses the document, looks up every distinct component in the OSV database and prints the risk of every component. Use - to read the document from stdin.`,
		Args:  cobra.ExactArgs(1),
		RunE:  runAnalyze,
	}

	analyze.Flags().StringP("output", "o", "table", "Output format. Options: table, json, cyclonedx")
	analyze.Flags().String("osv-url", "", "Base url of the OSV api (defaults to OSV_API_URL)")
	analyze.Flags().Float64("rate-limit", 0, "Maximum OSV requests per second (defaults to OSV_RATE_LIMIT)")
	analyze.Flags().Int("concurrency", 0, "Number of parallel lookups (defaults to CORRELATION_CONCURRENCY)")
	analyze.Flags().String("severity-precedence", "", "canonical-first or database-specific-first")
	analyze.Flags().Float64("fail-on-risk", 0, "Exit with an error if the overall risk score reaches this value. 0 disables the check")
	analyze.Flags().Bool("no-progress", false, "Do not render a progress bar")

	return analyze
}

func readInput(path string) ([]byte, string, error) {
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		return b, "stdin", err
	}
	b, err := os.ReadFile(path)
	return b, filepath.Base(path), err
}

// analyzeConfig overlays the flags on the server configuration.
func analyzeConfig(cmd *cobra.Command) (shared.Config, error) {
	cfg, err := shared.ConfigFromEnv()
	if err != nil {
		return cfg, err
	}

	if osvURL, _ := cmd.Flags().GetString("osv-url"); osvURL != "" {
		cfg.OSVAPIURL = osvURL
	}
	if rateLimit, _ := cmd.Flags().GetFloat64("rate-limit"); rateLimit > 0 {
		cfg.OSVRateLimit = rateLimit
	}
	if concurrency, _ := cmd.Flags().GetInt("concurrency"); concurrency > 0 {
		cfg.CorrelationConcurrency = concurrency
	}
	if precedence, _ := cmd.Flags().GetString("severity-precedence"); precedence != "" {
		cfg.SeverityPrecedence = precedence
	}
	return cfg, shared.V.Struct(cfg)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	if output != "table" && output != "json" && output != "cyclonedx" {
		return fmt.Errorf("unknown output format %q", output)
	}
	failOnRisk, _ := cmd.Flags().GetFloat64("fail-on-risk")
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	cfg, err := analyzeConfig(cmd)
	if err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	raw, filename, err := readInput(args[0])
	if err != nil {
		return errors.Wrap(err, "could not read document")
	}

	// parsed twice, the service does it again. the count sizes the progress bar
	parsed, err := normalize.ParseSBOM(raw)
	if err != nil {
		return err
	}

	osvClient, err := vulndb.NewOSVClientFromConfig(cfg)
	if err != nil {
		return err
	}
	var client shared.VulnerabilityClient = osvClient
	if !noProgress {
		bar := progressbar.NewOptions(parsed.DistinctCount(),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("looking up components"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		client = progressClient{VulnerabilityClient: osvClient, bar: bar}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return analyzeDocument(ctx, os.Stdout, cfg, client, raw, filename, output, failOnRisk)
}

// analyzeDocument runs the pipeline locally and renders the result. Failed analyses are rendered
// as well, their partial results and lookup failures are what the user needs to see.
func analyzeDocument(ctx context.Context, w io.Writer, cfg shared.Config, client shared.VulnerabilityClient, raw []byte, filename, output string, failOnRisk float64) error {
	repository := repositories.NewMemoryAnalysisRepository()
	clock := utils.NewRealClock()
	service := services.NewAnalysisService(
		services.NewAnalysisStore(repository, nil, clock),
		services.NewUsageGuard(services.NewStaticTierService(dtos.TierLimits{Tier: localTenant}), repository, clock),
		scan.NewCorrelatorFromConfig(cfg),
		client,
		cfg,
	)

	handle, err := service.SubmitAnalysis(ctx, dtos.SubmitAnalysisRequest{
		TenantID:       localTenant,
		SourceFilename: filename,
		RawDocument:    raw,
	})
	if err != nil {
		return err
	}

	analysis, err := handle.Wait(ctx)
	if ctx.Err() != nil {
		// the run is bound to ctx, let it persist its cancellation
		<-handle.Done()
		return errors.Wrap(ctx.Err(), "analysis interrupted")
	}
	if err != nil {
		slog.Debug("analysis run returned an error", "err", err)
	}
	slog.Debug("analysis finished", "id", analysis.ID, "status", analysis.Status, "components", analysis.TotalComponents)

	if err := render(w, analysis, output); err != nil {
		return err
	}

	if analysis.Status == models.AnalysisStatusFailed {
		return fmt.Errorf("analysis failed (%s): %s", utils.SafeDereference(analysis.ErrorKind), utils.SafeDereference(analysis.Error))
	}
	if failOnRisk > 0 && analysis.OverallRiskScore >= failOnRisk {
		return fmt.Errorf("overall risk %.1f exceeds threshold %.1f", analysis.OverallRiskScore, failOnRisk)
	}
	return nil
}
