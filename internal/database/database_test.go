package database

import (
	"path/filepath"
	"testing"

	"devpulse-api/internal/models"

	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesAndMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devpulse.db")
	db, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	require.True(t, db.Migrator().HasTable(&models.User{}))
	require.NoError(t, db.Create(&models.User{ID: "u-1", Username: "alice", PasswordHash: "x"}).Error)

	var got models.User
	require.NoError(t, db.First(&got, "username = ?", "alice").Error)
	require.Equal(t, "u-1", got.ID)
}
