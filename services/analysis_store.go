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

package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/l3montree-dev/sbomguard/database/models"
	"github.com/l3montree-dev/sbomguard/monitoring"
	"github.com/l3montree-dev/sbomguard/shared"
	"github.com/l3montree-dev/sbomguard/utils"
	"github.com/pkg/errors"
)

// RunFunc executes the pipeline for a RUNNING analysis and returns it with its results filled in.
// A returned error marks the analysis as FAILED.
type RunFunc func(ctx context.Context, analysis models.Analysis) (models.Analysis, error)

type analysisRun struct {
	id     uuid.UUID
	done   chan struct{}
	cancel context.CancelFunc
	cached bool

	// written before done is closed
	result models.Analysis
	err    error
}

var _ shared.AnalysisHandle = (*analysisRun)(nil)

func completedRun(analysis models.Analysis) *analysisRun {
	done := make(chan struct{})
	close(done)
	return &analysisRun{
		id:     analysis.ID,
		done:   done,
		cancel: func() {},
		cached: true,
		result: analysis,
	}
}

func (r *analysisRun) ID() uuid.UUID {
	return r.id
}

func (r *analysisRun) Done() <-chan struct{} {
	return r.done
}

func (r *analysisRun) Cached() bool {
	return r.cached
}

func (r *analysisRun) Cancel() {
	r.cancel()
}

// Wait returns the terminal analysis together with the error which made it fail.
func (r *analysisRun) Wait(ctx context.Context) (models.Analysis, error) {
	select {
	case <-r.done:
		return r.result, r.err
	case <-ctx.Done():
		return models.Analysis{}, errors.Wrap(shared.ErrCancelled, ctx.Err().Error())
	}
}

// AnalysisStore owns the lifecycle of analyses. It makes sure that at most one run per
// tenant and content hash is in flight on this instance and persists every status change.
type AnalysisStore struct {
	repository shared.AnalysisRepository
	broker     shared.PubSubBroker
	clock      utils.Clock

	locks *utils.KeyedMutex

	mu       sync.Mutex
	inFlight map[string]*analysisRun
	byID     map[uuid.UUID]*analysisRun

	wg sync.WaitGroup
}

// NewAnalysisStore creates a store. The broker is optional.
func NewAnalysisStore(repository shared.AnalysisRepository, broker shared.PubSubBroker, clock utils.Clock) *AnalysisStore {
	if clock == nil {
		clock = utils.NewRealClock()
	}
	return &AnalysisStore{
		repository: repository,
		broker:     broker,
		clock:      clock,
		locks:      utils.NewKeyedMutex(),
		inFlight:   make(map[string]*analysisRun),
		byID:       make(map[uuid.UUID]*analysisRun),
	}
}

func runKey(tenantID, contentHash string) string {
	return tenantID + "\x00" + contentHash
}

// Existing returns the in-flight run or the latest completed analysis for the content hash.
func (s *AnalysisStore) Existing(ctx context.Context, tenantID, contentHash string) (shared.AnalysisHandle, bool, error) {
	s.mu.Lock()
	run, ok := s.inFlight[runKey(tenantID, contentHash)]
	s.mu.Unlock()
	if ok {
		return run, true, nil
	}

	cached, err := s.repository.FindLatestComplete(ctx, tenantID, contentHash)
	if err != nil {
		if shared.IsKind(err, shared.ErrorKindNotFound) {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, "could not look up completed analysis")
	}
	monitoring.AnalysisCacheHitsTotal.Inc()
	return completedRun(cached), true, nil
}

// GetOrCreate returns the existing run for tenant and content hash or persists the analysis
// built by factory as PENDING and dispatches run asynchronously.
// The run is bound to ctx, cancelling ctx cancels the run.
func (s *AnalysisStore) GetOrCreate(ctx context.Context, tenantID, contentHash string, factory func() models.Analysis, run RunFunc) (shared.AnalysisHandle, error) {
	key := runKey(tenantID, contentHash)
	unlock := s.locks.Lock(key)
	defer unlock()

	if existing, ok, err := s.Existing(ctx, tenantID, contentHash); err != nil || ok {
		return existing, err
	}

	analysis := factory()
	analysis.TenantID = tenantID
	analysis.ContentHash = contentHash
	analysis.Status = models.AnalysisStatusPending
	analysis.CreatedAt = s.clock.Now()
	if err := s.repository.Create(ctx, &analysis); err != nil {
		return nil, errors.Wrap(err, "could not persist analysis")
	}

	runCtx, cancel := context.WithCancel(ctx)
	r := &analysisRun{
		id:     analysis.ID,
		done:   make(chan struct{}),
		cancel: cancel,
	}

	s.mu.Lock()
	s.inFlight[key] = r
	s.byID[analysis.ID] = r
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.execute(runCtx, key, r, analysis, run)
	}()

	return r, nil
}

func (s *AnalysisStore) execute(ctx context.Context, key string, r *analysisRun, analysis models.Analysis, run RunFunc) {
	// persistence must succeed even if the run itself got cancelled
	persistCtx := context.WithoutCancel(ctx)
	start := time.Now()
	started := false

	monitoring.AnalysesInFlight.Inc()
	defer func() {
		if p := recover(); p != nil {
			panicErr := errors.Wrap(&internalError{msg: fmt.Sprintf("%v", p)}, "analysis run panicked")
			monitoring.RecoverAndAlert("analysis run panicked", panicErr)
			if started {
				analysis = s.finish(persistCtx, analysis, panicErr)
			}
			r.err = panicErr
		}

		r.result = analysis
		s.mu.Lock()
		delete(s.inFlight, key)
		delete(s.byID, r.id)
		s.mu.Unlock()
		r.cancel()
		close(r.done)

		monitoring.AnalysesInFlight.Dec()
		monitoring.AnalysisDuration.Observe(time.Since(start).Seconds())
	}()

	if err := s.repository.Transition(persistCtx, analysis.ID, models.AnalysisStatusPending, models.AnalysisStatusRunning); err != nil {
		// somebody else (the reaper) already moved the analysis
		slog.Warn("could not start analysis", "analysisID", analysis.ID, "err", err)
		r.err = err
		if current, readErr := s.repository.Read(persistCtx, analysis.ID); readErr == nil {
			analysis = current
		}
		return
	}
	started = true
	analysis.Status = models.AnalysisStatusRunning

	result, err := run(ctx, analysis)
	analysis = s.finish(persistCtx, result, err)
	r.err = err
}

// finish persists the terminal state of a running analysis and publishes the matching event.
func (s *AnalysisStore) finish(ctx context.Context, analysis models.Analysis, runErr error) models.Analysis {
	now := s.clock.Now()
	analysis.CompletedAt = &now
	if runErr != nil {
		kind := string(shared.KindOf(runErr))
		analysis.Status = models.AnalysisStatusFailed
		analysis.Error = utils.Ptr(runErr.Error())
		analysis.ErrorKind = &kind
		if kind == string(shared.ErrorKindCancelled) {
			// cancelled runs keep no partial results
			analysis.ComponentResults = nil
			analysis.LookupFailures = nil
			analysis.TotalVulnerabilities = 0
			analysis.OverallRiskScore = 0
		}
	} else {
		analysis.Status = models.AnalysisStatusComplete
		analysis.Error = nil
		analysis.ErrorKind = nil
	}

	if err := s.repository.Finish(ctx, &analysis); err != nil {
		monitoring.Alert("could not persist finished analysis", err)
	}

	monitoring.AnalysesTotal.WithLabelValues(string(analysis.Status), utils.SafeDereference(analysis.ErrorKind)).Inc()
	s.publish(ctx, analysis)
	return analysis
}

func (s *AnalysisStore) publish(ctx context.Context, analysis models.Analysis) {
	if s.broker == nil {
		return
	}
	msg := shared.NewAnalysisEventMessage(shared.AnalysisEvent{
		AnalysisID:       analysis.ID.String(),
		TenantID:         analysis.TenantID,
		Status:           string(analysis.Status),
		OverallRiskScore: analysis.OverallRiskScore,
		ErrorKind:        utils.SafeDereference(analysis.ErrorKind),
	}, analysis.Status == models.AnalysisStatusFailed)
	if err := s.broker.Publish(ctx, msg); err != nil {
		slog.Warn("could not publish analysis event", "analysisID", analysis.ID, "err", err)
	}
}

func (s *AnalysisStore) Get(ctx context.Context, id uuid.UUID) (models.Analysis, error) {
	return s.repository.Read(ctx, id)
}

func (s *AnalysisStore) List(ctx context.Context, tenantID string) ([]models.Analysis, error) {
	return s.repository.ListByTenant(ctx, tenantID)
}

// Cancel cancels a run of this instance. It reports false if the analysis is not running here.
func (s *AnalysisStore) Cancel(id uuid.UUID) bool {
	s.mu.Lock()
	r, ok := s.byID[id]
	s.mu.Unlock()
	if ok {
		r.Cancel()
	}
	return ok
}

// RequestCancel cancels the run locally or asks the other instances to do so.
func (s *AnalysisStore) RequestCancel(ctx context.Context, id uuid.UUID) error {
	if s.Cancel(id) {
		return nil
	}
	if s.broker == nil {
		return errors.Wrapf(shared.ErrInvalidTransition, "analysis %s is not running", id)
	}
	return s.broker.Publish(ctx, shared.NewCancelRequestMessage(id.String()))
}

// ListenForCancellation cancels local runs requested by other instances until ctx is done.
func (s *AnalysisStore) ListenForCancellation(ctx context.Context) error {
	if s.broker == nil {
		return nil
	}
	messages, err := s.broker.Subscribe(shared.AnalysisCancelRequested)
	if err != nil {
		return errors.Wrap(err, "could not subscribe to cancellation requests")
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case payload, ok := <-messages:
				if !ok {
					return
				}
				raw, _ := shared.AnalysisIDFromPayload(payload)
				id, err := uuid.Parse(raw)
				if err != nil {
					slog.Warn("received invalid cancellation request", "payload", payload)
					continue
				}
				if s.Cancel(id) {
					slog.Info("cancelled analysis on request", "analysisID", id)
				}
			}
		}
	}()
	return nil
}

// Shutdown cancels all local runs and waits for them to persist their terminal state.
func (s *AnalysisStore) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for _, r := range s.byID {
		r.Cancel()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type internalError struct {
	msg string
}

func (e *internalError) Error() string {
	return e.msg
}
