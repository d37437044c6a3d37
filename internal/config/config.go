package config

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config carries every runtime setting the binaries need. Values come from a
// .env file when present, with OS environment variables taking precedence.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Notify   NotifyConfig
}

type ServerConfig struct {
	Port           string
	AllowedOrigins string // comma-separated list; empty disables CORS
	LogLevel       string
}

type DatabaseConfig struct {
	URL string
}

// NotifyConfig points at the external SMS/WhatsApp gateways. Either URL may
// be empty, which disables that channel.
type NotifyConfig struct {
	SMSGatewayURL      string
	WhatsAppGatewayURL string
	DefaultRegion      string // ISO region for parsing local phone numbers, e.g. "IN"
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		logrus.Debugf("no .env file found, using environment variables: %v", err)
	}
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "5050")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("NOTIFY_DEFAULT_REGION", "IN")

	cfg := &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			AllowedOrigins: viper.GetString("ALLOWED_ORIGINS"),
			LogLevel:       viper.GetString("LOG_LEVEL"),
		},
		Database: DatabaseConfig{
			URL: viper.GetString("DATABASE_URL"),
		},
		Notify: NotifyConfig{
			SMSGatewayURL:      viper.GetString("SMS_GATEWAY_URL"),
			WhatsAppGatewayURL: viper.GetString("WHATSAPP_GATEWAY_URL"),
			DefaultRegion:      viper.GetString("NOTIFY_DEFAULT_REGION"),
		},
	}
	return cfg, nil
}

// ParseLevel converts the configured log level to a logrus level, falling
// back to Info on unknown values.
func (c *Config) ParseLevel() logrus.Level {
	level, err := logrus.ParseLevel(c.Server.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}
