package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/fitcoach/backend/internal/domain/prospect"
	"github.com/fitcoach/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormProspectRepository_UpsertByEmail(t *testing.T) {
	repo := NewGormProspectRepository(newTestDB(t))
	ctx := context.Background()

	p, err := prospect.NewProspect("Jane", "jane@example.com")
	require.NoError(t, err)
	p.Source = "footer"
	require.NoError(t, repo.Save(ctx, p))

	found, err := repo.FindByEmail(ctx, " JANE@example.com")
	require.NoError(t, err)
	assert.Equal(t, p.ID, found.ID)

	second, err := prospect.NewProspect("Jane Doe", "jane@example.com")
	require.NoError(t, err)
	second.Goal = "run a marathon"
	require.NoError(t, repo.Save(ctx, second))

	items, total, err := repo.List(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, p.ID, items[0].ID)
	assert.Equal(t, "Jane Doe", items[0].Name)
	assert.Equal(t, "run a marathon", items[0].Goal)
}

func TestGormProspectRepository_ListPaging(t *testing.T) {
	repo := NewGormProspectRepository(newTestDB(t))
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := range 5 {
		p, err := prospect.NewProspect(fmt.Sprintf("Lead %d", i), fmt.Sprintf("lead%d@example.com", i))
		require.NoError(t, err)
		p.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, repo.Save(ctx, p))
	}

	items, total, err := repo.List(ctx, shared.Filter{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, items, 2)
	assert.Equal(t, "lead4@example.com", items[0].Email, "newest first")

	items, _, err = repo.List(ctx, shared.Filter{Page: 3, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "lead0@example.com", items[0].Email)

	items, _, err = repo.List(ctx, shared.Filter{Page: 1, PageSize: 10, OrderBy: "email; DROP TABLE prospects", OrderDir: "asc"})
	require.NoError(t, err)
	assert.Len(t, items, 5, "unknown sort fields fall back to the default")
	assert.Equal(t, "lead0@example.com", items[0].Email)
}

func TestGormProspectRepository_NotFound(t *testing.T) {
	repo := NewGormProspectRepository(newTestDB(t))
	_, err := repo.FindByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
