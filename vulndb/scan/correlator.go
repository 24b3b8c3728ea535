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
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package scan

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/l3montree-dev/sbomguard/dtos"
	"github.com/l3montree-dev/sbomguard/shared"
	"github.com/l3montree-dev/sbomguard/utils"
	"github.com/pkg/errors"
)

const (
	DefaultConcurrency     = 8
	DefaultMaxFailureRatio = 0.5
)

type correlator struct {
	maxFailureRatio float64
}

var _ shared.Correlator = (*correlator)(nil)

func NewCorrelator(maxFailureRatio float64) *correlator {
	return &correlator{maxFailureRatio: maxFailureRatio}
}

func NewCorrelatorFromConfig(cfg shared.Config) *correlator {
	return NewCorrelator(cfg.CorrelationMaxFailureRatio)
}

type lookupOutcome struct {
	slot     int
	findings []dtos.VulnerabilityFinding
	err      error
}

// Correlate looks up every distinct component identity exactly once and fans the
// findings back out to every declared occurrence. Results keep the declared order.
//
// A failing lookup does not abort the batch. The affected components are marked as
// incomplete and reported as failures. If more than maxFailureRatio of the distinct
// lookups fail, ErrCorrelationDegraded is returned together with the partial result.
func (c *correlator) Correlate(ctx context.Context, components []dtos.Component, client shared.VulnerabilityClient, concurrency int) (dtos.CorrelationResult, error) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	unique := make([]dtos.Component, 0, len(components))
	slotOf := make(map[dtos.ComponentIdentity]int, len(components))
	for _, component := range components {
		id := component.Identity()
		if _, ok := slotOf[id]; ok {
			continue
		}
		slotOf[id] = len(unique)
		unique = append(unique, component)
	}

	group := utils.ErrGroup[lookupOutcome](concurrency)
	for i, component := range unique {
		group.Go(func() (lookupOutcome, error) {
			if err := ctx.Err(); err != nil {
				return lookupOutcome{slot: i, err: err}, nil
			}
			findings, err := client.Lookup(ctx, component)
			return lookupOutcome{slot: i, findings: findings, err: err}, nil
		})
	}
	// lookups never fail the group, errors are carried in the outcome
	outcomes, _ := group.WaitAndCollect()

	if err := ctx.Err(); err != nil {
		return dtos.CorrelationResult{}, errors.Wrap(shared.ErrCancelled, err.Error())
	}

	findingsBySlot := make([][]dtos.VulnerabilityFinding, len(unique))
	errBySlot := make([]error, len(unique))
	for _, o := range outcomes {
		findingsBySlot[o.slot] = o.findings
		errBySlot[o.slot] = o.err
	}

	res := dtos.CorrelationResult{
		Results:       make([]dtos.ComponentRiskResult, 0, len(components)),
		Failures:      make([]dtos.ComponentLookupFailure, 0),
		UniqueLookups: len(unique),
	}

	failed := 0
	for i, err := range errBySlot {
		if err == nil {
			continue
		}
		failed++
		slog.Warn("could not look up vulnerabilities", "component", unique[i].Identity().String(), "err", err)
		res.Failures = append(res.Failures, dtos.ComponentLookupFailure{
			Component: unique[i],
			Reason:    err.Error(),
		})
	}

	for _, component := range components {
		slot := slotOf[component.Identity()]
		result := dtos.ComponentRiskResult{
			Component: component,
			Findings:  make([]dtos.VulnerabilityFinding, 0, len(findingsBySlot[slot])),
		}
		if errBySlot[slot] != nil {
			result.LookupIncomplete = true
		} else {
			for _, f := range findingsBySlot[slot] {
				f.AffectedComponent = component.Ref()
				result.Findings = append(result.Findings, f)
			}
		}
		res.Results = append(res.Results, result)
	}

	if len(unique) > 0 && float64(failed)/float64(len(unique)) > c.maxFailureRatio {
		return res, errors.Wrap(shared.ErrCorrelationDegraded, fmt.Sprintf("%d of %d lookups failed", failed, len(unique)))
	}
	return res, nil
}
