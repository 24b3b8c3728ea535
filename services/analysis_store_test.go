package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/l3montree-dev/sbomguard/database/models"
	"github.com/l3montree-dev/sbomguard/database/repositories"
	"github.com/l3montree-dev/sbomguard/dtos"
	"github.com/l3montree-dev/sbomguard/mocks"
	"github.com/l3montree-dev/sbomguard/shared"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAnalysis() models.Analysis {
	return models.Analysis{Format: "cyclonedx", TotalComponents: 1}
}

func waitDone(t *testing.T, handle shared.AnalysisHandle) models.Analysis {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	analysis, _ := handle.Wait(ctx)
	require.NoError(t, ctx.Err(), "analysis did not finish in time")
	return analysis
}

func completeRun(ctx context.Context, analysis models.Analysis) (models.Analysis, error) {
	analysis.ComponentResults = []dtos.ComponentRiskResult{{Component: dtos.Component{Name: "lodash", Version: "4.17.20", Ecosystem: "npm"}, Findings: []dtos.VulnerabilityFinding{}}}
	return analysis, nil
}

func TestAnalysisStore(t *testing.T) {
	t.Run("should run at most one analysis per tenant and content hash", func(t *testing.T) {
		repo := repositories.NewMemoryAnalysisRepository()
		store := NewAnalysisStore(repo, nil, nil)

		release := make(chan struct{})
		var runs atomic.Int32
		run := func(ctx context.Context, analysis models.Analysis) (models.Analysis, error) {
			runs.Add(1)
			<-release
			return analysis, nil
		}

		handles := make([]shared.AnalysisHandle, 10)
		var wg sync.WaitGroup
		for i := range handles {
			wg.Add(1)
			go func() {
				defer wg.Done()
				h, err := store.GetOrCreate(context.Background(), "tenant", "hash", newAnalysis, run)
				assert.NoError(t, err)
				handles[i] = h
			}()
		}
		wg.Wait()
		close(release)

		for _, h := range handles {
			require.NotNil(t, h)
			assert.Equal(t, handles[0].ID(), h.ID())
		}
		analysis := waitDone(t, handles[0])
		assert.Equal(t, models.AnalysisStatusComplete, analysis.Status)
		assert.EqualValues(t, 1, runs.Load())

		all, err := repo.ListByTenant(context.Background(), "tenant")
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("should persist a completed analysis and serve resubmissions from it", func(t *testing.T) {
		repo := repositories.NewMemoryAnalysisRepository()
		store := NewAnalysisStore(repo, nil, nil)

		h, err := store.GetOrCreate(context.Background(), "tenant", "hash", newAnalysis, completeRun)
		require.NoError(t, err)
		assert.False(t, h.Cached())
		analysis := waitDone(t, h)
		assert.Equal(t, models.AnalysisStatusComplete, analysis.Status)
		assert.NotNil(t, analysis.CompletedAt)

		persisted, err := repo.Read(context.Background(), h.ID())
		require.NoError(t, err)
		assert.Equal(t, models.AnalysisStatusComplete, persisted.Status)
		assert.Len(t, persisted.ComponentResults, 1)

		again, err := store.GetOrCreate(context.Background(), "tenant", "hash", newAnalysis, func(ctx context.Context, analysis models.Analysis) (models.Analysis, error) {
			t.Error("a completed analysis must not run again")
			return analysis, nil
		})
		require.NoError(t, err)
		assert.True(t, again.Cached())
		assert.Equal(t, h.ID(), again.ID())

		// other tenants do not share results
		other, err := store.GetOrCreate(context.Background(), "other-tenant", "hash", newAnalysis, completeRun)
		require.NoError(t, err)
		assert.NotEqual(t, h.ID(), other.ID())
		waitDone(t, other)
	})

	t.Run("should mark a failed run and rerun it on resubmission", func(t *testing.T) {
		repo := repositories.NewMemoryAnalysisRepository()
		store := NewAnalysisStore(repo, nil, nil)

		h, err := store.GetOrCreate(context.Background(), "tenant", "hash", newAnalysis, func(ctx context.Context, analysis models.Analysis) (models.Analysis, error) {
			return analysis, errors.Wrap(shared.ErrUpstreamUnavailable, "osv is down")
		})
		require.NoError(t, err)
		analysis := waitDone(t, h)
		assert.Equal(t, models.AnalysisStatusFailed, analysis.Status)
		assert.Equal(t, string(shared.ErrorKindUpstreamUnavailable), *analysis.ErrorKind)

		_, err = h.Wait(context.Background())
		assert.ErrorIs(t, err, shared.ErrUpstreamUnavailable)

		again, err := store.GetOrCreate(context.Background(), "tenant", "hash", newAnalysis, completeRun)
		require.NoError(t, err)
		assert.NotEqual(t, h.ID(), again.ID())
		assert.Equal(t, models.AnalysisStatusComplete, waitDone(t, again).Status)
	})

	t.Run("should keep partial results of a degraded run", func(t *testing.T) {
		repo := repositories.NewMemoryAnalysisRepository()
		store := NewAnalysisStore(repo, nil, nil)

		h, err := store.GetOrCreate(context.Background(), "tenant", "hash", newAnalysis, func(ctx context.Context, analysis models.Analysis) (models.Analysis, error) {
			analysis, _ = completeRun(ctx, analysis)
			analysis.LookupFailures = []dtos.ComponentLookupFailure{{Component: dtos.Component{Name: "left-pad"}, Reason: "timeout"}}
			return analysis, shared.ErrCorrelationDegraded
		})
		require.NoError(t, err)
		waitDone(t, h)

		persisted, err := repo.Read(context.Background(), h.ID())
		require.NoError(t, err)
		assert.Equal(t, models.AnalysisStatusFailed, persisted.Status)
		assert.Equal(t, string(shared.ErrorKindCorrelationDegraded), *persisted.ErrorKind)
		assert.Len(t, persisted.ComponentResults, 1)
		assert.Len(t, persisted.LookupFailures, 1)
	})

	t.Run("should cancel a run and drop its results", func(t *testing.T) {
		repo := repositories.NewMemoryAnalysisRepository()
		store := NewAnalysisStore(repo, nil, nil)

		started := make(chan struct{})
		h, err := store.GetOrCreate(context.Background(), "tenant", "hash", newAnalysis, func(ctx context.Context, analysis models.Analysis) (models.Analysis, error) {
			analysis, _ = completeRun(ctx, analysis)
			close(started)
			<-ctx.Done()
			return analysis, errors.Wrap(shared.ErrCancelled, ctx.Err().Error())
		})
		require.NoError(t, err)

		<-started
		assert.True(t, store.Cancel(h.ID()))
		analysis := waitDone(t, h)

		assert.Equal(t, models.AnalysisStatusFailed, analysis.Status)
		assert.Equal(t, string(shared.ErrorKindCancelled), *analysis.ErrorKind)
		persisted, err := repo.Read(context.Background(), h.ID())
		require.NoError(t, err)
		assert.Empty(t, persisted.ComponentResults)
		assert.False(t, store.Cancel(h.ID()))
	})

	t.Run("should cancel the run when the submitting context is cancelled", func(t *testing.T) {
		repo := repositories.NewMemoryAnalysisRepository()
		store := NewAnalysisStore(repo, nil, nil)

		ctx, cancel := context.WithCancel(context.Background())
		h, err := store.GetOrCreate(ctx, "tenant", "hash", newAnalysis, func(ctx context.Context, analysis models.Analysis) (models.Analysis, error) {
			<-ctx.Done()
			return analysis, ctx.Err()
		})
		require.NoError(t, err)
		cancel()

		analysis := waitDone(t, h)
		assert.Equal(t, models.AnalysisStatusFailed, analysis.Status)
		assert.Equal(t, string(shared.ErrorKindCancelled), *analysis.ErrorKind)
	})

	t.Run("should mark a panicking run as failed", func(t *testing.T) {
		repo := repositories.NewMemoryAnalysisRepository()
		store := NewAnalysisStore(repo, nil, nil)

		h, err := store.GetOrCreate(context.Background(), "tenant", "hash", newAnalysis, func(ctx context.Context, analysis models.Analysis) (models.Analysis, error) {
			panic("boom")
		})
		require.NoError(t, err)
		analysis := waitDone(t, h)
		assert.Equal(t, models.AnalysisStatusFailed, analysis.Status)
		assert.Equal(t, string(shared.ErrorKindInternal), *analysis.ErrorKind)
	})

	t.Run("should publish the outcome of a run", func(t *testing.T) {
		repo := repositories.NewMemoryAnalysisRepository()
		broker := mocks.NewPubSubBroker(t)
		broker.On("Publish", mock.Anything, mock.MatchedBy(func(msg shared.PubSubMessage) bool {
			return msg.GetChannel() == shared.AnalysisCompleted && msg.GetPayload()["tenantId"] == "tenant"
		})).Return(nil).Once()

		store := NewAnalysisStore(repo, broker, nil)
		h, err := store.GetOrCreate(context.Background(), "tenant", "hash", newAnalysis, completeRun)
		require.NoError(t, err)
		waitDone(t, h)
	})

	t.Run("should forward cancellation of runs it does not own", func(t *testing.T) {
		repo := repositories.NewMemoryAnalysisRepository()
		broker := mocks.NewPubSubBroker(t)
		store := NewAnalysisStore(repo, broker, nil)

		id := uuid.New()
		broker.On("Publish", mock.Anything, mock.MatchedBy(func(msg shared.PubSubMessage) bool {
			return msg.GetChannel() == shared.AnalysisCancelRequested && msg.GetPayload()["analysisId"] == id.String()
		})).Return(nil).Once()

		require.NoError(t, store.RequestCancel(context.Background(), id))
	})

	t.Run("should cancel local runs requested through the broker", func(t *testing.T) {
		repo := repositories.NewMemoryAnalysisRepository()
		broker := mocks.NewPubSubBroker(t)
		requests := make(chan map[string]any, 1)
		broker.On("Subscribe", shared.AnalysisCancelRequested).Return((<-chan map[string]any)(requests), nil)
		broker.On("Publish", mock.Anything, mock.Anything).Return(nil)

		store := NewAnalysisStore(repo, broker, nil)
		ctx, stop := context.WithCancel(context.Background())
		defer stop()
		require.NoError(t, store.ListenForCancellation(ctx))

		started := make(chan struct{})
		h, err := store.GetOrCreate(context.Background(), "tenant", "hash", newAnalysis, func(ctx context.Context, analysis models.Analysis) (models.Analysis, error) {
			close(started)
			<-ctx.Done()
			return analysis, ctx.Err()
		})
		require.NoError(t, err)
		<-started

		requests <- map[string]any{"analysisId": h.ID().String()}
		analysis := waitDone(t, h)
		assert.Equal(t, string(shared.ErrorKindCancelled), *analysis.ErrorKind)
	})

	t.Run("should cancel every run on shutdown", func(t *testing.T) {
		repo := repositories.NewMemoryAnalysisRepository()
		store := NewAnalysisStore(repo, nil, nil)

		started := make(chan struct{})
		h, err := store.GetOrCreate(context.Background(), "tenant", "hash", newAnalysis, func(ctx context.Context, analysis models.Analysis) (models.Analysis, error) {
			close(started)
			<-ctx.Done()
			return analysis, ctx.Err()
		})
		require.NoError(t, err)
		<-started

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, store.Shutdown(ctx))

		persisted, err := repo.Read(context.Background(), h.ID())
		require.NoError(t, err)
		assert.Equal(t, models.AnalysisStatusFailed, persisted.Status)
	})
}
