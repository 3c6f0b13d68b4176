package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "postgres", cfg.Database.User)
	assert.Equal(t, "paynest", cfg.Database.DBName)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, int32(20), cfg.Database.MaxConns)
	assert.Equal(t, int32(5), cfg.Database.MinConns)

	assert.Equal(t, "localhost", cfg.Redis.Host)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, 0, cfg.Redis.DB)

	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, "paynest", cfg.JWT.Issuer)

	assert.Equal(t, "0.015", cfg.Ledger.FeeRatio)
	assert.Equal(t, 24*time.Hour, cfg.Settlement.ProofTimeout)
	assert.Equal(t, time.Minute, cfg.Settlement.SweepInterval)
	assert.Equal(t, 3, cfg.Settlement.MaxProofRejects)
	assert.Empty(t, cfg.Settlement.VerifierKey)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.Pretty)
}

func TestLoad_FromYAMLFile(t *testing.T) {
	content := []byte(`
server:
  host: "127.0.0.1"
  port: 9090
  mode: "release"
database:
  host: "db.example.com"
  port: 5433
  dbname: "ledger_test"
ledger:
  fee_ratio: "0.02"
settlement:
  proof_timeout: "48h"
  sweep_interval: "30s"
  max_proof_rejects: 5
  verifier_key: "vk_test"
`)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, "db.example.com", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "ledger_test", cfg.Database.DBName)
	assert.Equal(t, "0.02", cfg.Ledger.FeeRatio)
	assert.Equal(t, 48*time.Hour, cfg.Settlement.ProofTimeout)
	assert.Equal(t, 30*time.Second, cfg.Settlement.SweepInterval)
	assert.Equal(t, 5, cfg.Settlement.MaxProofRejects)
	assert.Equal(t, "vk_test", cfg.Settlement.VerifierKey)

	// Unspecified keys keep their defaults
	assert.Equal(t, "postgres", cfg.Database.User)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PN_SERVER_PORT", "7070")
	t.Setenv("PN_SETTLEMENT_VERIFIER_KEY", "vk_from_env")
	t.Setenv("PN_LEDGER_FEE_RATIO", "0.025")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "vk_from_env", cfg.Settlement.VerifierKey)
	assert.Equal(t, "0.025", cfg.Ledger.FeeRatio)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "localhost", Port: 5432, User: "postgres",
		Password: "pw", DBName: "paynest", SSLMode: "disable",
	}
	assert.Equal(t, "postgres://postgres:pw@localhost:5432/paynest?sslmode=disable", d.DSN())
}

func TestRedisConfig_Addr(t *testing.T) {
	r := RedisConfig{Host: "redis.internal", Port: 6380}
	assert.Equal(t, "redis.internal:6380", r.Addr())
}
