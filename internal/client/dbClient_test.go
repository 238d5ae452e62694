package client

import (
	"path/filepath"
	"testing"

	"emall-backend/internal/config"
	"emall-backend/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenDatabase_SQLite(t *testing.T) {
	cfg := config.Database{
		Driver:      "sqlite",
		URL:         filepath.Join(t.TempDir(), "client.db"),
		AutoMigrate: true,
		LogLevel:    "silent",
	}

	db, err := OpenDatabase(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer CloseDatabase(db)

	for _, m := range model.AllModels() {
		assert.True(t, db.Migrator().HasTable(m))
	}

	require.NoError(t, db.Create(&model.User{FullName: "a", Email: "a@x.io", Password: "x"}).Error)
	require.NoError(t, Reset(db))

	var count int64
	require.NoError(t, db.Model(&model.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestOpenDatabase_Errors(t *testing.T) {
	_, err := OpenDatabase(config.Database{Driver: "sqlite"}, zerolog.Nop())
	assert.ErrorContains(t, err, "empty")

	_, err = OpenDatabase(config.Database{Driver: "oracle", URL: "x"}, zerolog.Nop())
	assert.ErrorContains(t, err, "unsupported")
}
