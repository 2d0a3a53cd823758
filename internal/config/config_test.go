package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.ServerPort == "" {
		t.Fatalf("expected default server port")
	}
	if cfg.PostgresURL == "" {
		t.Fatalf("expected default postgres url")
	}
	if cfg.ActivityStore != "postgres" || cfg.AccuracyPolicy != "accept" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.StaleAfter != 2*time.Minute {
		t.Fatalf("expected 2m stale window, got %v", cfg.StaleAfter)
	}
	if cfg.LiveTickInterval != time.Second {
		t.Fatalf("expected 1s live refresh, got %v", cfg.LiveTickInterval)
	}
	if len(cfg.KafkaBrokers) != 0 {
		t.Fatalf("expected kafka disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", ":9000")
	t.Setenv("POSTGRES_URL", "postgres://example")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ACTIVITY_STORE", "redis")
	t.Setenv("MIN_MOVEMENT_METERS", "4.5")
	t.Setenv("STALE_AFTER", "90s")
	t.Setenv("ACCURACY_POLICY", "gate")
	t.Setenv("ELEVATION_WINDOW", "5")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")

	cfg := Load()
	if cfg.ServerPort != ":9000" || cfg.PostgresURL != "postgres://example" {
		t.Fatalf("expected server overrides")
	}
	if cfg.RedisAddr != "redis:6379" || cfg.JWTSecret != "secret" {
		t.Fatalf("expected redis and secret overrides")
	}
	if cfg.ActivityStore != "redis" || cfg.AccuracyPolicy != "gate" {
		t.Fatalf("expected store and policy overrides")
	}
	if cfg.MinMovementMeters != 4.5 || cfg.StaleAfter != 90*time.Second || cfg.ElevationWindow != 5 {
		t.Fatalf("expected tracking overrides, got %+v", cfg)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("expected two brokers, got %v", cfg.KafkaBrokers)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("overrides should validate: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Load()
	cfg.AccuracyPolicy = "maybe"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unknown policy to fail")
	}

	cfg = Load()
	cfg.MinMovementMeters = -1
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected negative threshold to fail")
	}

	cfg = Load()
	cfg.ActivityStore = "firestore"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unknown store to fail")
	}
}
