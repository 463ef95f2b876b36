package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
listen: " :9100 "
auth:
  jwt_secret: "topsecret"
  admin_subjects: [" trove-manager ", " "]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ListenAddress != ":9100" {
		t.Fatalf("unexpected listen address: %q", cfg.ListenAddress)
	}
	if cfg.DataDir == "" {
		t.Fatal("expected a default data dir")
	}
	if len(cfg.Auth.AdminSubs) != 1 {
		t.Fatalf("expected 1 trimmed admin subject, got %d", len(cfg.Auth.AdminSubs))
	}
	if cfg.Issuance.LOANSupplyCap == "" {
		t.Fatal("expected a default LOAN supply cap")
	}
}

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	path := writeConfig(t, `
listen: ":9100"
auth:
  admin_subjects: [trove-manager]
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error when jwt_secret is missing")
	}
}

func TestLoadConfigRequiresAdminSubjects(t *testing.T) {
	path := writeConfig(t, `
listen: ":9100"
auth:
  jwt_secret: topsecret
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error when no admin subjects are configured")
	}
}

func TestLoadConfigRejectsNegativeDeployment(t *testing.T) {
	path := writeConfig(t, `
listen: ":9100"
auth:
  jwt_secret: topsecret
  admin_subjects: [trove-manager]
issuance:
  deployment_unix_seconds: -1
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for a negative deployment timestamp")
	}
}
