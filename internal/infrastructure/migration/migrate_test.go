package migration

import (
	"testing"

	"github.com/fitcoach/backend/migrations"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	src, err := iofs.New(migrations.FS, ".")
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)

	count := 1
	for v := first; ; count++ {
		next, err := src.Next(v)
		if err != nil {
			break
		}
		v = next
	}
	assert.Equal(t, 4, count)
}
