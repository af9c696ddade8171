//go:build integration

package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/fitcoach/backend/internal/domain/prospect"
	"github.com/fitcoach/backend/internal/domain/purchase"
	"github.com/fitcoach/backend/internal/domain/shared"
	"github.com/fitcoach/backend/internal/infrastructure/migration"
	"github.com/fitcoach/backend/migrations"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newPostgresDB starts a throwaway postgres, applies the SQL migrations and
// returns a GORM handle on it
func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("fitcoach_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	sqlDB, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	m, err := migration.NewFromFS(sqlDB, migrations.FS, nil)
	require.NoError(t, err)
	require.NoError(t, m.Up())

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db
}

func TestPostgres_PurchaseUpsert(t *testing.T) {
	db := newPostgresDB(t)
	repo := NewGormPurchaseRepository(db)
	ctx := context.Background()

	p, err := purchase.NewPurchase(purchase.SourceCheckoutSession, "cs_live_1")
	require.NoError(t, err)
	p.ApplyMetadata(map[string]string{"campaign": "spring"})
	require.NoError(t, repo.Save(ctx, p))

	replay, err := purchase.NewPurchase(purchase.SourceCheckoutSession, "cs_live_1")
	require.NoError(t, err)
	replay.MarkPaid(9900, "eur")
	require.NoError(t, repo.Save(ctx, replay))

	got, err := repo.FindByExternalID(ctx, "cs_live_1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, purchase.StatusPaid, got.Status)
	assert.Equal(t, int64(9900), got.AmountTotal)
}

func TestPostgres_ProspectRepository(t *testing.T) {
	db := newPostgresDB(t)
	repo := NewGormProspectRepository(db)
	ctx := context.Background()

	p, err := prospect.NewProspect("Sam", "sam@example.com")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, p))

	items, total, err := repo.List(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "sam@example.com", items[0].Email)
}
