package daemons

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/l3montree-dev/sbomguard/database/models"
	"github.com/l3montree-dev/sbomguard/database/repositories"
	"github.com/l3montree-dev/sbomguard/mocks"
	"github.com/l3montree-dev/sbomguard/shared"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func (c fixedClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

func TestStaleAnalysisReaper(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	cfg := shared.Config{PipelineTimeout: 10 * time.Minute}

	create := func(t *testing.T, repo shared.AnalysisRepository, createdAt time.Time, status models.AnalysisStatus) uuid.UUID {
		t.Helper()
		analysis := models.Analysis{ID: uuid.New(), TenantID: "acme", ContentHash: uuid.NewString(), CreatedAt: createdAt}
		require.NoError(t, repo.Create(context.Background(), &analysis))
		if status != models.AnalysisStatusPending {
			require.NoError(t, repo.Transition(context.Background(), analysis.ID, models.AnalysisStatusPending, models.AnalysisStatusRunning))
		}
		if status.IsTerminal() {
			analysis.Status = status
			analysis.CompletedAt = &createdAt
			require.NoError(t, repo.Finish(context.Background(), &analysis))
		}
		return analysis.ID
	}

	t.Run("should fail pending and running analyses older than twice the pipeline timeout", func(t *testing.T) {
		repo := repositories.NewMemoryAnalysisRepository()
		stalePending := create(t, repo, now.Add(-time.Hour), models.AnalysisStatusPending)
		staleRunning := create(t, repo, now.Add(-21*time.Minute), models.AnalysisStatusRunning)
		fresh := create(t, repo, now.Add(-5*time.Minute), models.AnalysisStatusRunning)
		done := create(t, repo, now.Add(-time.Hour), models.AnalysisStatusComplete)

		reaper := NewStaleAnalysisReaper(repo, fixedClock{now}, cfg)
		reaped, err := reaper.Reap(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, reaped)

		for _, id := range []uuid.UUID{stalePending, staleRunning} {
			analysis, err := repo.Read(context.Background(), id)
			require.NoError(t, err)
			assert.Equal(t, models.AnalysisStatusFailed, analysis.Status)
			assert.Equal(t, "interrupted", *analysis.Error)
			assert.Equal(t, string(shared.ErrorKindCancelled), *analysis.ErrorKind)
			assert.Empty(t, analysis.ComponentResults)
		}

		analysis, err := repo.Read(context.Background(), fresh)
		require.NoError(t, err)
		assert.Equal(t, models.AnalysisStatusRunning, analysis.Status)

		analysis, err = repo.Read(context.Background(), done)
		require.NoError(t, err)
		assert.Equal(t, models.AnalysisStatusComplete, analysis.Status)
	})

	t.Run("should skip analyses which finished in the meantime", func(t *testing.T) {
		repo := mocks.NewAnalysisRepository(t)
		analysis := models.Analysis{ID: uuid.New(), Status: models.AnalysisStatusRunning}
		repo.On("FindUnfinishedBefore", mock.Anything, now.Add(-20*time.Minute)).Return([]models.Analysis{analysis}, nil)
		repo.On("Finish", mock.Anything, mock.Anything).Return(errors.Wrap(shared.ErrInvalidTransition, "already complete"))

		reaped, err := NewStaleAnalysisReaper(repo, fixedClock{now}, cfg).Reap(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, reaped)
	})

	t.Run("should return repository errors", func(t *testing.T) {
		repo := mocks.NewAnalysisRepository(t)
		repo.On("FindUnfinishedBefore", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

		_, err := NewStaleAnalysisReaper(repo, fixedClock{now}, cfg).Reap(context.Background())
		assert.Error(t, err)
	})
}
