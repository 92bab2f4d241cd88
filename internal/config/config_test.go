package config

import (
	"strings"
	"testing"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(env(nil))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.DBPath != "smartkitchen.db" {
		t.Errorf("db path = %q, want %q", cfg.DBPath, "smartkitchen.db")
	}
	if cfg.Alert.Schedule != "@every 1h" {
		t.Errorf("alert schedule = %q, want %q", cfg.Alert.Schedule, "@every 1h")
	}
	if cfg.Backup.Schedule != "@daily" {
		t.Errorf("backup schedule = %q, want %q", cfg.Backup.Schedule, "@daily")
	}
	if cfg.WhatsApp.APIVersion != "v21.0" {
		t.Errorf("api version = %q, want %q", cfg.WhatsApp.APIVersion, "v21.0")
	}
	if cfg.SecureCookies {
		t.Error("secure cookies enabled by default")
	}
	if cfg.RabbitMQURL != "" {
		t.Errorf("rabbitmq url = %q, want empty", cfg.RabbitMQURL)
	}
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := load(env(map[string]string{
		"SMARTKITCHEN_PORT":        "9090",
		"SMARTKITCHEN_LOG_FORMAT":  "JSON",
		"INVENTORY_ALERT_CRON":     "*/15 * * * *",
		"INVENTORY_ALERT_PHONE":    "+1 555 0100",
		"WHATSAPP_PHONE_NUMBER_ID": "12345",
		"BACKUP_S3_BUCKET":         "snapshots",
		"BACKUP_PASSPHRASE":        " spaced ",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("port = %q, want %q", cfg.Port, "9090")
	}
	if cfg.LogFormat != "json" {
		t.Errorf("log format = %q, want %q", cfg.LogFormat, "json")
	}
	if cfg.Alert.Schedule != "*/15 * * * *" {
		t.Errorf("schedule = %q", cfg.Alert.Schedule)
	}
	if cfg.Alert.DefaultPhone != "+1 555 0100" {
		t.Errorf("default phone = %q", cfg.Alert.DefaultPhone)
	}
	if cfg.Backup.Bucket != "snapshots" {
		t.Errorf("bucket = %q", cfg.Backup.Bucket)
	}
	if cfg.Backup.Passphrase != " spaced " {
		t.Errorf("passphrase = %q, want it untrimmed", cfg.Backup.Passphrase)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"port", map[string]string{"SMARTKITCHEN_PORT": "http"}, "SMARTKITCHEN_PORT"},
		{"port range", map[string]string{"SMARTKITCHEN_PORT": "70000"}, "SMARTKITCHEN_PORT"},
		{"log format", map[string]string{"SMARTKITCHEN_LOG_FORMAT": "xml"}, "SMARTKITCHEN_LOG_FORMAT"},
		{"alert cron", map[string]string{"INVENTORY_ALERT_CRON": "sometimes"}, "INVENTORY_ALERT_CRON"},
		{"backup cron", map[string]string{"BACKUP_CRON": "@fortnightly"}, "BACKUP_CRON"},
		{"vapid", map[string]string{"VAPID_PUBLIC_KEY": "abc"}, "VAPID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(env(tt.env))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}
