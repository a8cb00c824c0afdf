package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"txguard/internal/model"
)

// startPostgres runs a throwaway PostgreSQL container with the journal schema
// migrated and returns a pool connected to it.
func startPostgres(t *testing.T, ctx context.Context) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "testuser",
				"POSTGRES_PASSWORD": "testpass",
				"POSTGRES_DB":       "testdb",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())
	require.NoError(t, RunMigrations(ctx, dsn, "up", zap.NewNop()))

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestOutcomeRepo_SaveAndRecent(t *testing.T) {
	ctx := context.Background()
	repo := NewOutcomeRepo(startPostgres(t, ctx))

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	auditID := uuid.NewString()

	single := model.OutcomeEvent{
		ID:            uuid.NewString(),
		Operation:     model.OpWithdraw,
		Accepted:      false,
		RejectionKind: model.RejectInsufficientFunds,
		Message:       "insufficient funds",
		CreatedAt:     base,
	}
	record := model.OutcomeEvent{
		ID:          uuid.NewString(),
		Operation:   model.OpAuditRecord,
		AuditID:     auditID,
		RecordIndex: 3,
		Accepted:    true,
		CreatedAt:   base.Add(time.Second),
	}
	require.NoError(t, repo.Save(ctx, single))
	require.NoError(t, repo.Save(ctx, record))

	// Redelivery of a known ID is ignored and keeps the first row.
	dup := single
	dup.Message = "changed"
	dup.CreatedAt = base.Add(time.Hour)
	require.NoError(t, repo.Save(ctx, dup))

	events, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, record.ID, events[0].ID)
	assert.Equal(t, auditID, events[0].AuditID)
	assert.Equal(t, 3, events[0].RecordIndex)
	assert.True(t, events[0].Accepted)
	assert.Empty(t, events[0].RejectionKind)

	assert.Equal(t, single.ID, events[1].ID)
	assert.Empty(t, events[1].AuditID)
	assert.Equal(t, model.OpWithdraw, events[1].Operation)
	assert.Equal(t, model.RejectInsufficientFunds, events[1].RejectionKind)
	assert.Equal(t, "insufficient funds", events[1].Message)
	assert.True(t, events[1].CreatedAt.Equal(base))

	events, err = repo.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, record.ID, events[0].ID)
}

func TestOutcomeRepo_SaveRejectsMalformedID(t *testing.T) {
	ctx := context.Background()
	repo := NewOutcomeRepo(startPostgres(t, ctx))

	err := repo.Save(ctx, model.OutcomeEvent{ID: "not-a-uuid", Operation: model.OpDeposit, CreatedAt: time.Now()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert outcome not-a-uuid")
}
