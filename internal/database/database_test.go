package database

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect_RequiresURL(t *testing.T) {
	_, err := Connect("")
	assert.ErrorIs(t, err, ErrNoDatabaseURL)
}

func TestConnectAndMigrate(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database test")
	}

	db, err := Connect(url)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	// Migrating twice is a no-op
	require.NoError(t, Migrate(db))
}
