package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/nfse-emissor/internal/domain"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto")
	t.Setenv("NFSE_CERT_PATH", "/certs/a1.pfx")
	t.Setenv("NFSE_BASE_URL", "http://localhost:9999/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "2", cfg.NFSe.Environment, "por defecto producción restringida")
	assert.Equal(t, 30*time.Second, cfg.NFSe.Timeout)
	assert.Equal(t, 3, cfg.NFSe.MaxRetries)
	assert.Equal(t, "/certs/a1.pfx", cfg.NFSe.CertPath)
	assert.Equal(t, "http://localhost:9999", cfg.NFSe.BaseURL, "sin barra final")
	assert.Equal(t, "1", cfg.NFSe.TaxDefaults().ISSQNTreatment)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.False(t, cfg.DB.Enabled())
}

func TestLoad_VariablesDeEntorno(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto")
	t.Setenv("API_CLIENTS", "erp:$2a$10$hash:11222333000181")
	t.Setenv("NFSE_ENVIRONMENT", "1")
	t.Setenv("NFSE_TIMEOUT_SECONDS", "5")
	t.Setenv("DB_HOST", "db")
	t.Setenv("HTTP_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "1", cfg.NFSe.Environment)
	assert.Equal(t, 5*time.Second, cfg.NFSe.Timeout)
	assert.True(t, cfg.DB.Enabled())
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
	assert.Equal(t, "erp:$2a$10$hash:11222333000181", cfg.JWT.APIClients)
}

func TestFromViper_Invalida(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("NFSE_ENVIRONMENT", "3")
	v.Set("NFSE_TIMEOUT_SECONDS", 0)
	v.Set("NFSE_MAX_RETRIES", -1)

	_, err := fromViper(v)
	require.ErrorIs(t, err, domain.ErrConfiguration)
	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, []string{"NFSE_ENVIRONMENT", "NFSE_TIMEOUT_SECONDS", "NFSE_MAX_RETRIES", "JWT_SECRET"}, cfgErr.Fields)
}

func TestDBConfig_DSN(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "nfse", Password: "p@ss/word", DBName: "nfse", SSLMode: "disable"}
	assert.Equal(t, "postgres://nfse:p%40ss%2Fword@db:5432/nfse?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://u:p@h/d"
	assert.Equal(t, "postgres://u:p@h/d", c.ConnectionString())
}
