package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 5432, cfg.Postgres.Port)
	assert.Equal(t, "disable", cfg.Postgres.SSLMode)
	assert.Equal(t, "modal_options_change", cfg.Listener.Channel)
	assert.True(t, cfg.Policy.RequirePrivilege)
	assert.Equal(t, "configs/modal.yaml", cfg.Seed.Path)
	assert.False(t, cfg.UsePostgres())
	assert.Equal(t, 5*time.Second, cfg.Backoff())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_SERVER_ADDR", ":9090")
	t.Setenv("APP_POSTGRES_HOST", "db")
	t.Setenv("APP_POLICY_REQUIRE_PRIVILEGE", "false")
	t.Setenv("APP_LISTENER_RECONNECT_SECONDS", "2")

	cfg := Load()

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.True(t, cfg.UsePostgres())
	assert.False(t, cfg.Policy.RequirePrivilege)
	assert.Equal(t, 2*time.Second, cfg.Backoff())
	assert.Equal(t, "postgres://:@db:5432/?sslmode=disable", cfg.DSN())
}
