package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GDRIVE_FILE_ID", "")
	t.Setenv("DATA_CACHE_PATH", "")
	t.Setenv("TOP_N", "")

	cfg := Load()
	assert.Equal(t, "1IKme2tIvwZOhFUxwVBEMwItx2-coVNVY", cfg.GDriveFileID)
	assert.Equal(t, "nypd_data.csv", cfg.CachePath)
	assert.Equal(t, 32768, cfg.ChunkSize)
	assert.Equal(t, 10, cfg.TopN)
	assert.Equal(t, time.Duration(0), cfg.HTTPTimeout)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TOP_N", "5")
	t.Setenv("HTTP_TIMEOUT_SEC", "30")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg := Load()
	assert.Equal(t, 5, cfg.TopN)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadIgnoresBadInt(t *testing.T) {
	t.Setenv("PREVIEW_ROWS", "lots")
	assert.Equal(t, 5, Load().PreviewRows)
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		PostgresHost: "db", PostgresPort: "5433", PostgresUser: "u",
		PostgresPassword: "p", PostgresDB: "nypd", PostgresSSLMode: "disable",
	}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=nypd sslmode=disable", cfg.DSN())
}

func TestLoadClampsTopN(t *testing.T) {
	t.Setenv("TOP_N", "25")
	assert.Equal(t, MaxTopN, Load().TopN)

	t.Setenv("TOP_N", "0")
	assert.Equal(t, MaxTopN, Load().TopN)
}
