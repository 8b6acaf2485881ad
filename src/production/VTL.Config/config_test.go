package config

import (
	"testing"
	"time"
)

func TestLoadApiConfigDefaults(t *testing.T) {
	t.Setenv("DEVICE_API_KEY", "test-device-key")

	cfg, err := LoadApiConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != "9002" {
		t.Errorf("expected default port 9002, got %s", cfg.Server.Port)
	}
	if cfg.Database.DBName != "vitals" {
		t.Errorf("expected default db name vitals, got %s", cfg.Database.DBName)
	}
	if cfg.Auth.SessionTokenDuration != 30*24*time.Hour {
		t.Errorf("expected 30d session duration, got %v", cfg.Auth.SessionTokenDuration)
	}
	if cfg.Auth.PasswordMinLength != 6 {
		t.Errorf("expected min password length 6, got %d", cfg.Auth.PasswordMinLength)
	}
	if cfg.Auth.DeviceAPIKey != "test-device-key" {
		t.Errorf("expected device key from env, got %s", cfg.Auth.DeviceAPIKey)
	}
}

func TestLoadApiConfigOverrides(t *testing.T) {
	t.Setenv("DEVICE_API_KEY", "test-device-key")
	t.Setenv("PORT", "8080")
	t.Setenv("MONGODB_DB", "vitals_test")
	t.Setenv("JWT_SESSION_TOKEN_DURATION", "1h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadApiConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Database.DBName != "vitals_test" {
		t.Errorf("expected db name vitals_test, got %s", cfg.Database.DBName)
	}
	if cfg.Auth.SessionTokenDuration != time.Hour {
		t.Errorf("expected 1h session duration, got %v", cfg.Auth.SessionTokenDuration)
	}
	origins := cfg.CORS.AllowedOrigins
	if len(origins) != 2 || origins[0] != "https://a.example" || origins[1] != "https://b.example" {
		t.Errorf("unexpected origins: %v", origins)
	}
}

func TestValidateRejectsShortPasswordMinimum(t *testing.T) {
	t.Setenv("DEVICE_API_KEY", "test-device-key")
	t.Setenv("PASSWORD_MIN_LENGTH", "3")

	if _, err := LoadApiConfig(); err == nil {
		t.Fatal("expected validation error for PASSWORD_MIN_LENGTH below 6")
	}
}

func TestGetMQTTBrokerURL(t *testing.T) {
	cfg := &GatewayConfig{MQTT: MQTTConfig{BrokerHost: "broker.local", BrokerPort: 1883}}
	if got := cfg.GetMQTTBrokerURL(); got != "tcp://broker.local:1883" {
		t.Errorf("unexpected broker url %s", got)
	}

	cfg.MQTT.UseTLS = true
	cfg.MQTT.BrokerPort = 8883
	if got := cfg.GetMQTTBrokerURL(); got != "tcps://broker.local:8883" {
		t.Errorf("unexpected broker url %s", got)
	}
}
