// Copyright 2026 l3montree GmbH.
// SPDX-License-Identifier: 	AGPL-3.0-or-later

package daemons

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/l3montree-dev/sbomguard/database/models"
	"github.com/l3montree-dev/sbomguard/monitoring"
	"github.com/l3montree-dev/sbomguard/shared"
	"github.com/l3montree-dev/sbomguard/utils"
	"github.com/pkg/errors"
)

const interruptedMessage = "interrupted"

// StaleAnalysisReaper fails analyses which were left PENDING or RUNNING by a process
// that went away. Everything older than twice the pipeline timeout can not be running anymore.
type StaleAnalysisReaper struct {
	repository shared.AnalysisRepository
	clock      utils.Clock
	threshold  time.Duration
}

func NewStaleAnalysisReaper(repository shared.AnalysisRepository, clock utils.Clock, cfg shared.Config) *StaleAnalysisReaper {
	return &StaleAnalysisReaper{
		repository: repository,
		clock:      clock,
		threshold:  2 * cfg.PipelineTimeout,
	}
}

// Reap returns the number of analyses marked as FAILED.
func (r *StaleAnalysisReaper) Reap(ctx context.Context) (int, error) {
	stale, err := r.repository.FindUnfinishedBefore(ctx, r.clock.Now().Add(-r.threshold))
	if err != nil {
		return 0, errors.Wrap(err, "could not find unfinished analyses")
	}

	reaped := 0
	for _, analysis := range stale {
		if err := r.fail(ctx, analysis); err != nil {
			// another instance might have finished or reaped it in the meantime
			if shared.IsKind(err, shared.ErrorKindInvalidTransition) {
				slog.Debug("analysis changed while reaping", "analysisID", analysis.ID, "err", err)
				continue
			}
			return reaped, err
		}
		reaped++
		monitoring.StaleAnalysesReapedTotal.Inc()
	}
	return reaped, nil
}

func (r *StaleAnalysisReaper) fail(ctx context.Context, analysis models.Analysis) error {
	if analysis.Status == models.AnalysisStatusPending {
		if err := r.repository.Transition(ctx, analysis.ID, models.AnalysisStatusPending, models.AnalysisStatusRunning); err != nil {
			return err
		}
	}

	now := r.clock.Now()
	analysis.Status = models.AnalysisStatusFailed
	analysis.Error = utils.Ptr(interruptedMessage)
	analysis.ErrorKind = utils.Ptr(string(shared.ErrorKindCancelled))
	analysis.CompletedAt = &now
	analysis.ComponentResults = nil
	analysis.LookupFailures = nil
	analysis.TotalVulnerabilities = 0
	analysis.OverallRiskScore = 0

	if err := r.repository.Finish(ctx, &analysis); err != nil {
		return errors.Wrapf(err, "could not fail analysis %s", analysis.ID)
	}
	return nil
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}
