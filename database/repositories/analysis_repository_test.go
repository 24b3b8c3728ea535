package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/l3montree-dev/sbomguard/database/models"
	"github.com/l3montree-dev/sbomguard/dtos"
	"github.com/l3montree-dev/sbomguard/integrationtestutil"
	"github.com/l3montree-dev/sbomguard/shared"
	"github.com/l3montree-dev/sbomguard/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPendingAnalysis(tenantID, hash string) *models.Analysis {
	return &models.Analysis{
		TenantID:       tenantID,
		ContentHash:    hash,
		SourceFilename: "bom.json",
		Format:         "cyclonedx",
		Status:         models.AnalysisStatusPending,
	}
}

func complete(t *testing.T, repo shared.AnalysisRepository, a *models.Analysis, completedAt time.Time) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, repo.Transition(ctx, a.ID, models.AnalysisStatusPending, models.AnalysisStatusRunning))
	a.Status = models.AnalysisStatusComplete
	a.TotalComponents = 1
	a.TotalVulnerabilities = 1
	a.OverallRiskScore = 40
	a.CompletedAt = &completedAt
	a.ComponentResults = []dtos.ComponentRiskResult{{
		Component: dtos.Component{Name: "lodash", Version: "4.17.10", Ecosystem: "npm"},
		Findings:  []dtos.VulnerabilityFinding{{ID: "GHSA-1", Severity: dtos.SeverityCritical}},
		RiskScore: 40,
	}}
	require.NoError(t, repo.Finish(ctx, a))
}

func fail(t *testing.T, repo shared.AnalysisRepository, a *models.Analysis) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, repo.Transition(ctx, a.ID, models.AnalysisStatusPending, models.AnalysisStatusRunning))
	now := time.Now()
	a.Status = models.AnalysisStatusFailed
	a.CompletedAt = &now
	a.Error = utils.Ptr("lookup failures exceeded the threshold")
	a.ErrorKind = utils.Ptr(string(shared.ErrorKindCorrelationDegraded))
	require.NoError(t, repo.Finish(ctx, a))
}

func runAnalysisRepositoryTests(t *testing.T, repo shared.AnalysisRepository) {
	ctx := context.Background()
	tenant := "tenant-" + uuid.NewString()

	t.Run("should create and read an analysis", func(t *testing.T) {
		a := newPendingAnalysis(tenant, "hash-read")
		require.NoError(t, repo.Create(ctx, a))
		assert.NotEqual(t, uuid.Nil, a.ID)

		read, err := repo.Read(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, models.AnalysisStatusPending, read.Status)
		assert.Equal(t, "hash-read", read.ContentHash)
	})

	t.Run("should return not found for unknown ids", func(t *testing.T) {
		_, err := repo.Read(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("should only allow forward transitions", func(t *testing.T) {
		a := newPendingAnalysis(tenant, "hash-transition")
		require.NoError(t, repo.Create(ctx, a))

		err := repo.Transition(ctx, a.ID, models.AnalysisStatusPending, models.AnalysisStatusComplete)
		assert.ErrorIs(t, err, shared.ErrInvalidTransition)

		require.NoError(t, repo.Transition(ctx, a.ID, models.AnalysisStatusPending, models.AnalysisStatusRunning))
		// a second caller loses the race
		err = repo.Transition(ctx, a.ID, models.AnalysisStatusPending, models.AnalysisStatusRunning)
		assert.ErrorIs(t, err, shared.ErrInvalidTransition)

		a.Status = models.AnalysisStatusFailed
		a.Error = utils.Ptr("boom")
		a.ErrorKind = utils.Ptr(string(shared.ErrorKindInternal))
		require.NoError(t, repo.Finish(ctx, a))

		// terminal analyses are never touched again
		a.Status = models.AnalysisStatusComplete
		assert.ErrorIs(t, repo.Finish(ctx, a), shared.ErrInvalidTransition)

		read, err := repo.Read(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, models.AnalysisStatusFailed, read.Status)
		assert.Equal(t, "boom", *read.Error)
	})

	t.Run("should find the latest completed analysis by content hash", func(t *testing.T) {
		_, err := repo.FindLatestComplete(ctx, tenant, "hash-cache")
		assert.ErrorIs(t, err, shared.ErrNotFound)

		older := newPendingAnalysis(tenant, "hash-cache")
		require.NoError(t, repo.Create(ctx, older))
		complete(t, repo, older, time.Now().Add(-time.Hour))

		newer := newPendingAnalysis(tenant, "hash-cache")
		require.NoError(t, repo.Create(ctx, newer))
		complete(t, repo, newer, time.Now())

		pending := newPendingAnalysis(tenant, "hash-cache")
		require.NoError(t, repo.Create(ctx, pending))

		found, err := repo.FindLatestComplete(ctx, tenant, "hash-cache")
		require.NoError(t, err)
		assert.Equal(t, newer.ID, found.ID)
		require.Len(t, found.ComponentResults, 1)
		assert.Equal(t, "GHSA-1", found.ComponentResults[0].Findings[0].ID)

		_, err = repo.FindLatestComplete(ctx, "other-tenant", "hash-cache")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("should count recently completed and in flight analyses against the quota", func(t *testing.T) {
		other := "tenant-" + uuid.NewString()
		a := newPendingAnalysis(other, "hash-a")
		require.NoError(t, repo.Create(ctx, a))
		complete(t, repo, a, time.Now())

		b := newPendingAnalysis(other, "hash-b")
		require.NoError(t, repo.Create(ctx, b))
		complete(t, repo, b, time.Now().AddDate(0, -2, 0))

		// pending
		require.NoError(t, repo.Create(ctx, newPendingAnalysis(other, "hash-c")))

		running := newPendingAnalysis(other, "hash-d")
		require.NoError(t, repo.Create(ctx, running))
		require.NoError(t, repo.Transition(ctx, running.ID, models.AnalysisStatusPending, models.AnalysisStatusRunning))

		failed := newPendingAnalysis(other, "hash-e")
		require.NoError(t, repo.Create(ctx, failed))
		fail(t, repo, failed)

		count, err := repo.CountConsumingSince(ctx, other, time.Now().AddDate(0, -1, 0))
		require.NoError(t, err)
		assert.EqualValues(t, 3, count)
	})

	t.Run("should list the analyses of a tenant newest first", func(t *testing.T) {
		other := "tenant-" + uuid.NewString()
		first := newPendingAnalysis(other, "hash-1")
		first.CreatedAt = time.Now().Add(-time.Minute)
		require.NoError(t, repo.Create(ctx, first))
		second := newPendingAnalysis(other, "hash-2")
		require.NoError(t, repo.Create(ctx, second))

		list, err := repo.ListByTenant(ctx, other)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, second.ID, list[0].ID)
		assert.Equal(t, first.ID, list[1].ID)
	})

	t.Run("should find unfinished analyses created before a deadline", func(t *testing.T) {
		stale := newPendingAnalysis(tenant, "hash-stale")
		stale.CreatedAt = time.Now().Add(-2 * time.Hour)
		require.NoError(t, repo.Create(ctx, stale))

		found, err := repo.FindUnfinishedBefore(ctx, time.Now().Add(-time.Hour))
		require.NoError(t, err)
		ids := utils.Map(found, func(a models.Analysis) uuid.UUID { return a.ID })
		assert.Contains(t, ids, stale.ID)
	})
}

func TestMemoryAnalysisRepository(t *testing.T) {
	runAnalysisRepositoryTests(t, NewMemoryAnalysisRepository())
}

func TestGormAnalysisRepository(t *testing.T) {
	db, terminate := integrationtestutil.InitDatabaseContainer(t)
	defer terminate()

	runAnalysisRepositoryTests(t, NewAnalysisRepository(db))
}

func TestGormTierRepository(t *testing.T) {
	db, terminate := integrationtestutil.InitDatabaseContainer(t)
	defer terminate()

	ctx := context.Background()
	repo := NewTierRepository(db)

	t.Run("should read the seeded tiers", func(t *testing.T) {
		tier, err := repo.Read(ctx, "free")
		require.NoError(t, err)
		assert.Equal(t, 10, tier.MaxAnalysesPerMonth)
	})

	t.Run("should return not found for tenants without an assignment", func(t *testing.T) {
		_, err := repo.FindByTenant(ctx, "unassigned")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("should assign and reassign tenants", func(t *testing.T) {
		require.NoError(t, repo.AssignTenant(ctx, "acme", "pro"))
		tier, err := repo.FindByTenant(ctx, "acme")
		require.NoError(t, err)
		assert.Equal(t, "pro", tier.Name)

		require.NoError(t, repo.AssignTenant(ctx, "acme", "enterprise"))
		tier, err = repo.FindByTenant(ctx, "acme")
		require.NoError(t, err)
		assert.Equal(t, "enterprise", tier.Name)
	})

	t.Run("should reject unknown tiers", func(t *testing.T) {
		assert.ErrorIs(t, repo.AssignTenant(ctx, "acme", "platinum"), shared.ErrNotFound)
	})
}
