package database

import (
	"testing"

	"github.com/gdg-garage/training-calculator/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedActivities(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)

	n, err := SeedActivities(db)
	require.NoError(t, err)
	assert.Equal(t, len(models.DefaultActivities), n)

	// Second run is a no-op.
	n, err = SeedActivities(db)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	var count int64
	db.Model(&models.Activity{}).Count(&count)
	assert.Equal(t, int64(len(models.DefaultActivities)), count)

	var first models.Activity
	require.NoError(t, db.Order("id asc").First(&first).Error)
	assert.Equal(t, models.DefaultActivities[0].NameEn, first.NameEn)
}
