package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, 30*time.Second, cfg.Ledger.DuplicateWindow)
	assert.Equal(t, 10*time.Second, cfg.Ledger.SubmissionLockTTL)
	assert.True(t, cfg.Ledger.FailOpenOnMissingFields)
	assert.True(t, cfg.Ledger.FailOpenOnMissingKeyCol)
	assert.Equal(t, 5*time.Second, cfg.DB.AcquireTimeout)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("LEDGER_DUPLICATE_WINDOW", "45s")
	v.Set("LEDGER_FAIL_OPEN_SIMILARITY", "false")
	v.Set("REDIS_ADDR", "localhost:6379")
	v.Set("DB_PORT", "6543")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, 45*time.Second, cfg.Ledger.DuplicateWindow)
	assert.False(t, cfg.Ledger.FailOpenOnMissingFields)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 6543, cfg.DB.Port)
}

func TestFromViper_VentanaInvalida(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("LEDGER_DUPLICATE_WINDOW", "0s")

	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestDSN_EscapaPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss/word", DBName: "ledger", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%2Fword@db:5432/ledger?sslmode=disable", c.DSN())
	assert.Equal(t, c.DSN(), c.ConnectionString())
}
