package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sylistock-api/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.StorePostgres, cfg.Store.Driver)
	assert.Equal(t, config.UnknownBarcodeAutoCreate, cfg.Ledger.OnUnknownBarcode)
	assert.Equal(t, config.RecomputeInline, cfg.Score.RecomputeMode)
	assert.Equal(t, 30, cfg.Score.ActivityWindowDays)
	assert.Equal(t, time.Duration(0), cfg.Ledger.LockTimeout)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestLoad_EnvSobrescribe(t *testing.T) {
	t.Setenv("STORE_DRIVER", "MEMORY")
	t.Setenv("LEDGER_ON_UNKNOWN_BARCODE", "reject")
	t.Setenv("LEDGER_LOCK_TIMEOUT", "1500")
	t.Setenv("SCORE_RECOMPUTE_MODE", "kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("HTTP_PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.StoreMemory, cfg.Store.Driver)
	assert.Equal(t, config.UnknownBarcodeReject, cfg.Ledger.OnUnknownBarcode)
	assert.Equal(t, 1500*time.Millisecond, cfg.Ledger.LockTimeout)
	assert.Equal(t, config.RecomputeKafka, cfg.Score.RecomputeMode)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 9090, cfg.HTTP.Port)
}

func TestLoad_DuracionConUnidad(t *testing.T) {
	t.Setenv("LEDGER_LOCK_TIMEOUT", "2s")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Ledger.LockTimeout)
}

func TestLoad_PoliticaInvalida(t *testing.T) {
	t.Setenv("LEDGER_ON_UNKNOWN_BARCODE", "ignore")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:word", DBName: "stock", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/stock?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
