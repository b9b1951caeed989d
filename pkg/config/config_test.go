package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMemoryBackendDefaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", BackendMemory)
	t.Setenv("FIREBASE_PROJECT_ID", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.Equal(t, 12, cfg.CatalogPageSize)
	assert.Equal(t, 5*time.Second, cfg.ReadyTimeout)
	assert.Equal(t, "pt-BR", cfg.Locale)
	assert.Equal(t, "BR", cfg.PostalCountry)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", BackendMemory)
	t.Setenv("CATALOG_PAGE_SIZE", "8")
	t.Setenv("READY_TIMEOUT_MS", "250")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.CatalogPageSize)
	assert.Equal(t, 250*time.Millisecond, cfg.ReadyTimeout)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
}

func TestLoadRejectsFirestoreWithoutProject(t *testing.T) {
	t.Setenv("STORE_BACKEND", BackendFirestore)
	t.Setenv("FIREBASE_PROJECT_ID", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "mongo")

	_, err := Load()
	assert.ErrorContains(t, err, "unknown STORE_BACKEND")
}

func TestLoadRejectsBadPageSize(t *testing.T) {
	t.Setenv("STORE_BACKEND", BackendMemory)
	t.Setenv("CATALOG_PAGE_SIZE", "0")

	_, err := Load()
	assert.Error(t, err)
}
