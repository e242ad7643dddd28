package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := "server:\n  port: \"9090\"\nsession:\n  ttl: 1h\nauth:\n  jwtSecret: from-file\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("QUIZ_JWT_SECRET", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Session.Cookie != "quiz_session" || cfg.Auth.JWTSecret != "from-file" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if got := TTLDuration(cfg.Session.TTL, time.Minute); got != time.Hour {
		t.Fatalf("expected 1h, got %v", got)
	}

	t.Setenv("QUIZ_JWT_SECRET", "from-env")
	cfg, _ = Load(path)
	if cfg.Auth.JWTSecret != "from-env" {
		t.Fatalf("expected env secret, got %q", cfg.Auth.JWTSecret)
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if got := TTLDuration("", 5*time.Second); got != 5*time.Second {
		t.Fatalf("expected fallback, got %v", got)
	}
	if got := TTLDuration("soon", 5*time.Second); got != 5*time.Second {
		t.Fatalf("expected fallback for bad value, got %v", got)
	}
}
