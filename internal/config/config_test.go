package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Port != "8082" {
		t.Fatalf("Port = %q, want 8082", cfg.Port)
	}
	if cfg.HouseholdID != "default" {
		t.Fatalf("HouseholdID = %q, want default", cfg.HouseholdID)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := &Config{
		Port:           "not-a-port",
		SQLiteDBPath:   "",
		AMQPURL:        "http://wrong-scheme",
		AllowedEmails:  []string{"no-at-sign"},
		MirrorInterval: time.Millisecond,
		HouseholdID:    "",
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"invalid port", "SQLite", "AMQP URL scheme", "allowed email", "mirror interval", "household id"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q missing %q", err.Error(), want)
		}
	}
}

func TestAllowedEmailsFromEnv(t *testing.T) {
	t.Setenv("ALLOWED_EMAILS", "A@example.com, b@example.com ,")
	cfg := Load()
	if len(cfg.AllowedEmails) != 2 {
		t.Fatalf("AllowedEmails = %v, want 2 entries", cfg.AllowedEmails)
	}
	if cfg.AllowedEmails[0] != "a@example.com" {
		t.Fatalf("expected lowercased email, got %q", cfg.AllowedEmails[0])
	}
}
