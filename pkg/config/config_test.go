package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadParsesWrappers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
server:
  address: "127.0.0.1"
  port: 9090
  db_path: "/tmp/burrow-db"
auth:
  jwt_secret: "s"
  access_ttl: "15m"
  refresh_ttl: 3600
blob:
  enabled: true
  endpoint: "minio:9000"
  max_upload: "64MB"
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr() != "127.0.0.1:9090" {
		t.Fatalf("unexpected addr %s", cfg.Addr())
	}
	if cfg.Auth.AccessTTL.Duration() != 15*time.Minute {
		t.Fatalf("access_ttl: %v", cfg.Auth.AccessTTL.Duration())
	}
	// bare numbers are seconds
	if cfg.Auth.RefreshTTL.Duration() != time.Hour {
		t.Fatalf("refresh_ttl: %v", cfg.Auth.RefreshTTL.Duration())
	}
	if cfg.Blob.MaxUpload.Int64() != 64*1000*1000 {
		t.Fatalf("max_upload: %d", cfg.Blob.MaxUpload.Int64())
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Server.DBPath == "" || cfg.Auth.RedisURL == "" || cfg.Logging.Level != "info" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.RateLimit.RPS != 5 || cfg.RateLimit.Burst != 10 {
		t.Fatalf("rate limit defaults: %+v", cfg.RateLimit)
	}
	if cfg.Fanout.QueueCapacity != 16*1024 {
		t.Fatalf("queue default: %d", cfg.Fanout.QueueCapacity)
	}
	if cfg.Addr() != "0.0.0.0:8080" {
		t.Fatalf("addr default: %s", cfg.Addr())
	}
}

func TestValidateRequiresSecret(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err == nil {
		t.Fatal("missing jwt secret must fail validation")
	}
	cfg.Auth.JWTSecret = "s"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	cfg.Blob.Enabled = true
	if err := cfg.Validate(); err == nil {
		t.Fatal("enabled blob without endpoint must fail validation")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("BURROW_ADDR", "10.0.0.1:9000")
	t.Setenv("BURROW_JWT_SECRET", "env-secret")
	t.Setenv("BURROW_RATE_RPS", "2.5")
	t.Setenv("BURROW_JANITOR_ENABLED", "true")
	t.Setenv("BURROW_BLOB_MAX_UPLOAD", "1MB")

	var cfg Config
	if !ApplyEnvOverrides(&cfg) {
		t.Fatal("env overrides must be reported as used")
	}
	if cfg.Server.Address != "10.0.0.1" || cfg.Server.Port != 9000 {
		t.Fatalf("addr override: %+v", cfg.Server)
	}
	if cfg.Auth.JWTSecret != "env-secret" || cfg.RateLimit.RPS != 2.5 {
		t.Fatalf("override values: %+v", cfg)
	}
	if !cfg.Janitor.Enabled {
		t.Fatal("janitor enabled override lost")
	}
	if cfg.Blob.MaxUpload.Int64() != 1000*1000 {
		t.Fatalf("max upload override: %d", cfg.Blob.MaxUpload.Int64())
	}
}
