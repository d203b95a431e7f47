package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestParse_AppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
database:
  user: distributor
`))
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	require.Equal(t, "localhost", cfg.Database.Host)
	require.Equal(t, "disable", cfg.Database.SSLMode)
	require.Equal(t, "solana", cfg.Distribution.Network)
	require.Equal(t, "json", cfg.Logging.Format)
	require.True(t, cfg.Monitoring.Enabled)

	tol, err := cfg.Distribution.Tolerances()
	require.NoError(t, err)
	require.True(t, tol.USD.Equal(decimal.RequireFromString("0.01")))
	require.True(t, tol.MEGY.Equal(decimal.RequireFromString("0.0001")))
	require.True(t, tol.Share.Equal(decimal.RequireFromString("0.0001")))
}

func TestParse_ExpandsEnvironment(t *testing.T) {
	t.Setenv("DISTRIBUTOR_DB_PASSWORD", "s3cret")

	cfg, err := Parse([]byte(`
server:
  port: 9000
  read_timeout: 5s
database:
  user: distributor
  password: ${DISTRIBUTOR_DB_PASSWORD}
`))
	require.NoError(t, err)
	require.Equal(t, "s3cret", cfg.Database.Password)
	require.Equal(t, 9000, cfg.Server.Port)
	require.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	require.Equal(t, "0.0.0.0:9000", cfg.Server.Address())
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "missing db user", raw: `database: {host: db}`},
		{name: "bad log level", raw: "database: {user: u}\nlogging: {level: loud}"},
		{name: "bad epsilon", raw: "database: {user: u}\ndistribution: {usd_epsilon: abc}"},
		{name: "bad port", raw: "database: {user: u}\nserver: {port: 70000}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.raw))
			require.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  user: reader\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "reader", cfg.Database.User)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(LoggingConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	require.NotNil(t, logger)

	_, err = NewLogger(LoggingConfig{Level: "nope", Format: "json"})
	require.Error(t, err)
}
