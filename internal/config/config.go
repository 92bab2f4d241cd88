// Package config reads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"
)

// Config holds all configuration for the server.
type Config struct {
	Port      string
	DBPath    string
	LogLevel  string
	LogFormat string
	// SecureCookies marks the session cookie Secure. Enable behind TLS.
	SecureCookies bool

	Alert    AlertConfig
	WhatsApp WhatsAppConfig
	Backup   BackupConfig
	Push     PushConfig

	// RabbitMQURL enables order event publishing when set.
	RabbitMQURL string
}

type AlertConfig struct {
	Schedule     string
	DefaultPhone string
}

type WhatsAppConfig struct {
	PhoneNumberID string
	AccessToken   string
	APIVersion    string
	BaseURL       string
}

type PushConfig struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
}

type BackupConfig struct {
	Endpoint   string
	Bucket     string
	Region     string
	AccessKey  string
	SecretKey  string
	Passphrase string
	Schedule   string
}

// Load reads the process environment.
func Load() (*Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Port:          get("SMARTKITCHEN_PORT", "8080"),
		DBPath:        get("SMARTKITCHEN_DB_PATH", "smartkitchen.db"),
		LogLevel:      get("SMARTKITCHEN_LOG_LEVEL", "info"),
		LogFormat:     strings.ToLower(get("SMARTKITCHEN_LOG_FORMAT", "")),
		SecureCookies: get("SMARTKITCHEN_SECURE_COOKIES", "") == "true",
		Alert: AlertConfig{
			Schedule:     get("INVENTORY_ALERT_CRON", "@every 1h"),
			DefaultPhone: get("INVENTORY_ALERT_PHONE", ""),
		},
		WhatsApp: WhatsAppConfig{
			PhoneNumberID: get("WHATSAPP_PHONE_NUMBER_ID", ""),
			AccessToken:   get("WHATSAPP_ACCESS_TOKEN", ""),
			APIVersion:    get("WHATSAPP_API_VERSION", "v21.0"),
			BaseURL:       get("WHATSAPP_API_BASE_URL", "https://graph.facebook.com"),
		},
		Backup: BackupConfig{
			Endpoint:   get("BACKUP_S3_ENDPOINT", ""),
			Bucket:     get("BACKUP_S3_BUCKET", ""),
			Region:     get("BACKUP_S3_REGION", "us-east-1"),
			AccessKey:  get("BACKUP_S3_ACCESS_KEY", ""),
			SecretKey:  get("BACKUP_S3_SECRET_KEY", ""),
			Passphrase: getenv("BACKUP_PASSPHRASE"),
			Schedule:   get("BACKUP_CRON", "@daily"),
		},
		Push: PushConfig{
			VAPIDPublicKey:  get("VAPID_PUBLIC_KEY", ""),
			VAPIDPrivateKey: get("VAPID_PRIVATE_KEY", ""),
		},
		RabbitMQURL: get("RABBITMQ_URL", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error

	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Errorf("SMARTKITCHEN_PORT: invalid port %q", c.Port))
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("SMARTKITCHEN_LOG_FORMAT: want text or json, got %q", c.LogFormat))
	}
	if _, err := cron.ParseStandard(c.Alert.Schedule); err != nil {
		errs = append(errs, fmt.Errorf("INVENTORY_ALERT_CRON: %w", err))
	}
	if _, err := cron.ParseStandard(c.Backup.Schedule); err != nil {
		errs = append(errs, fmt.Errorf("BACKUP_CRON: %w", err))
	}
	if (c.Push.VAPIDPublicKey == "") != (c.Push.VAPIDPrivateKey == "") {
		errs = append(errs, errors.New("VAPID_PUBLIC_KEY and VAPID_PRIVATE_KEY must be set together"))
	}

	return errors.Join(errs...)
}
