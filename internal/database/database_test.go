package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestAdminDSNFor(t *testing.T) {
	name, admin, err := adminDSNFor("postgres://u:p@db:5432/destiny_sync?sslmode=disable")
	require.NoError(t, err)
	assert.Equal(t, "destiny_sync", name)
	assert.Equal(t, "postgres://u:p@db:5432/postgres?sslmode=disable", admin)

	name, admin, err = adminDSNFor("postgres://u:p@db:5432/postgres")
	require.NoError(t, err)
	assert.Empty(t, name)
	assert.Empty(t, admin)
}

func TestGormLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, gormLogLevel("silent"))
	assert.Equal(t, logger.Info, gormLogLevel(" INFO "))
	assert.Equal(t, logger.Warn, gormLogLevel(""))
}
