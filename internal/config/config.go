package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

var singleConfig *Config = nil

type Config struct {
	Database *dbConfig
	Service  *svcConfig
}

type dbConfig struct {
	Type     string `envconfig:"DB_TYPE" default:"pgsql"`
	Hostname string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"capture"`
	User     string `envconfig:"DB_USER" default:"admin"`
	Password string `envconfig:"DB_PASS" default:"adminpass"`
}

type svcConfig struct {
	Address         string        `envconfig:"CAPTURE_ADDRESS" default:":3333"`
	BaseUrl         string        `envconfig:"CAPTURE_BASE_URL" default:"http://localhost:3333"`
	ConsoleOrigin   string        `envconfig:"CAPTURE_CONSOLE_ORIGIN" default:"http://localhost:5173"`
	LogLevel        string        `envconfig:"CAPTURE_LOG_LEVEL" default:"info"`
	QRSecret        string        `envconfig:"CAPTURE_QR_SECRET" default:"qr-secret-change"`
	ScanDedupWindow time.Duration `envconfig:"CAPTURE_SCAN_DEDUP_WINDOW" default:"5s"`
	Auth            Auth
}

type Auth struct {
	AuthenticationType string        `envconfig:"CAPTURE_AUTH" default:"local"`
	TokenSigningKey    string        `envconfig:"CAPTURE_TOKEN_SIGNING_KEY" default:"replace-me-with-secure-secret"`
	TokenValidity      time.Duration `envconfig:"CAPTURE_TOKEN_VALIDITY" default:"24h"`
}

func New() (*Config, error) {
	if singleConfig == nil {
		singleConfig = new(Config)
		if err := envconfig.Process("", singleConfig); err != nil {
			return nil, err
		}
	}
	return singleConfig, nil
}

// NewDefault returns a config backed by a local sqlite file. Used by tests.
func NewDefault() *Config {
	return &Config{
		Database: &dbConfig{
			Type: "sqlite",
			Name: "/tmp/capture.db",
		},
		Service: &svcConfig{
			Address:         ":3333",
			LogLevel:        "info",
			QRSecret:        "qr-secret-test",
			ScanDedupWindow: 5 * time.Second,
			Auth: Auth{
				AuthenticationType: "none",
				TokenSigningKey:    "test-signing-key",
				TokenValidity:      time.Hour,
			},
		},
	}
}
