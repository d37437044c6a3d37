package config

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5050", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "IN", cfg.Notify.DefaultRegion)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SMS_GATEWAY_URL", "http://localhost:9000/sms")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "http://localhost:9000/sms", cfg.Notify.SMSGatewayURL)
}

func TestParseLevel(t *testing.T) {
	cfg := &Config{Server: ServerConfig{LogLevel: "warn"}}
	assert.Equal(t, logrus.WarnLevel, cfg.ParseLevel())

	cfg.Server.LogLevel = "nonsense"
	assert.Equal(t, logrus.InfoLevel, cfg.ParseLevel())
}
