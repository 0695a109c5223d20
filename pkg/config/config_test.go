package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeConfig writes a config.yaml into a temp dir and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoadFile_EnvOverridesYAML(t *testing.T) {
	path := writeConfig(t, `
port: "9090"
env: "test"
auth:
  enable_verification: false
database:
  host: "db.example.com"
  port: 5432
  user: "testuser"
  database: "testdb"
upload:
  max_bytes: 2048
`)

	t.Setenv("PORT", "9191")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("PGPASSWORD", "secret")

	cfg, err := LoadFile(path, "test-version")
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}

	if cfg.Port != "9191" {
		t.Errorf("expected Port=9191 (from env), got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Errorf("expected Env=production (from env), got %s", cfg.Env)
	}
	if cfg.Database.Host != "db.example.com" {
		t.Errorf("expected Database.Host from YAML, got %s", cfg.Database.Host)
	}
	if cfg.Database.Password != "secret" {
		t.Errorf("expected Database.Password from env, got %q", cfg.Database.Password)
	}
	if cfg.Upload.MaxBytes != 2048 {
		t.Errorf("expected Upload.MaxBytes=2048, got %d", cfg.Upload.MaxBytes)
	}
	if cfg.Version != "test-version" {
		t.Errorf("expected Version=test-version, got %s", cfg.Version)
	}
}

func TestLoadFile_Defaults(t *testing.T) {
	path := writeConfig(t, `
auth:
  enable_verification: false
`)

	cfg, err := LoadFile(path, "dev")
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected default Port=8080, got %s", cfg.Port)
	}
	if cfg.Upload.MaxBytes != 10<<20 {
		t.Errorf("expected default Upload.MaxBytes=10MiB, got %d", cfg.Upload.MaxBytes)
	}
	if cfg.Auth.Audience != "manpower-engine" {
		t.Errorf("expected default audience, got %s", cfg.Auth.Audience)
	}
	if !cfg.MCP.Enabled {
		t.Error("expected MCP enabled by default")
	}
	if !cfg.IsLocal() {
		t.Error("expected local environment by default")
	}
}

func TestLoadFile_ExplicitFalseIsHonoured(t *testing.T) {
	path := writeConfig(t, `
auth:
  enable_verification: false
mcp:
  enabled: false
`)

	cfg, err := LoadFile(path, "dev")
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}
	if cfg.Auth.EnableVerification {
		t.Error("expected auth verification disabled from YAML")
	}
	if cfg.MCP.Enabled {
		t.Error("expected MCP disabled from YAML")
	}
}

func TestLoadFile_AbsentBoolsDefaultToTrue(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwks_endpoints: "https://issuer.example.com=https://issuer.example.com/jwks.json"
`)

	cfg, err := LoadFile(path, "dev")
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}
	if !cfg.Auth.EnableVerification {
		t.Error("expected auth verification enabled by default")
	}
	if !cfg.MCP.Enabled {
		t.Error("expected MCP enabled by default")
	}
}

func TestLoadFile_EnvDisablesMCP(t *testing.T) {
	path := writeConfig(t, `
auth:
  enable_verification: false
`)
	t.Setenv("MCP_ENABLED", "false")

	cfg, err := LoadFile(path, "dev")
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}
	if cfg.MCP.Enabled {
		t.Error("expected MCP disabled from env")
	}
}

func TestLoadFile_ExampleConfigLoads(t *testing.T) {
	cfg, err := LoadFile(filepath.Join("..", "..", "config.yaml.example"), "dev")
	if err != nil {
		t.Fatalf("LoadFile() failed on config.yaml.example: %v", err)
	}
	if cfg.Auth.EnableVerification {
		t.Error("expected example config to disable verification")
	}
}

func TestLoadFile_MissingFileUsesEnv(t *testing.T) {
	t.Setenv("AUTH_ENABLE_VERIFICATION", "false")
	t.Setenv("PGDATABASE", "from_env")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"), "dev")
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}
	if cfg.Database.Database != "from_env" {
		t.Errorf("expected database from env, got %s", cfg.Database.Database)
	}
}

func TestLoadFile_VerificationRequiresEndpoints(t *testing.T) {
	path := writeConfig(t, `
auth:
  enable_verification: true
  jwks_endpoints: ""
`)

	_, err := LoadFile(path, "dev")
	if err == nil {
		t.Fatal("expected error when verification is enabled without JWKS endpoints")
	}
	if !strings.Contains(err.Error(), "jwks_endpoints") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadFile_InvalidUploadLimit(t *testing.T) {
	path := writeConfig(t, `
auth:
  enable_verification: false
upload:
  max_bytes: 0
`)

	if _, err := LoadFile(path, "dev"); err == nil {
		t.Fatal("expected error for zero upload limit")
	}
}

func TestValidateTLS_OnlyCertProvided(t *testing.T) {
	cert := filepath.Join(t.TempDir(), "cert.pem")
	if err := os.WriteFile(cert, []byte("cert"), 0644); err != nil {
		t.Fatalf("failed to write cert: %v", err)
	}

	cfg := &Config{TLSCertPath: cert}
	if err := cfg.validateTLS(); err == nil {
		t.Error("expected error when only cert is provided")
	}
}

func TestValidateTLS_BothProvided(t *testing.T) {
	dir := t.TempDir()
	cert := filepath.Join(dir, "cert.pem")
	key := filepath.Join(dir, "key.pem")
	for _, p := range []string{cert, key} {
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", p, err)
		}
	}

	cfg := &Config{TLSCertPath: cert, TLSKeyPath: key}
	if err := cfg.validateTLS(); err != nil {
		t.Errorf("expected valid TLS config, got %v", err)
	}

	cfg.TLSKeyPath = filepath.Join(dir, "missing.pem")
	if err := cfg.validateTLS(); err == nil {
		t.Error("expected error for missing key file")
	}
}

func TestParseJWKSEndpoints(t *testing.T) {
	got := parseJWKSEndpoints("https://a.example.com=https://a.example.com/jwks.json?v=1, https://b.example.com = https://b.example.com/jwks ,broken")

	if len(got) != 2 {
		t.Fatalf("expected 2 endpoints, got %d: %v", len(got), got)
	}
	if got["https://a.example.com"] != "https://a.example.com/jwks.json?v=1" {
		t.Errorf("unexpected endpoint for a: %q", got["https://a.example.com"])
	}
	if got["https://b.example.com"] != "https://b.example.com/jwks" {
		t.Errorf("unexpected endpoint for b: %q", got["https://b.example.com"])
	}

	if len(parseJWKSEndpoints("")) != 0 {
		t.Error("expected empty map for empty input")
	}
}

func TestDatabaseConfig_ConnectionString(t *testing.T) {
	c := &DatabaseConfig{
		Host:     "db",
		Port:     5433,
		User:     "planner",
		Password: "p@ss word",
		Database: "plans",
		SSLMode:  "require",
	}

	got := c.ConnectionString()
	want := "postgres://planner:p%40ss%20word@db:5433/plans?sslmode=require"
	if got != want {
		t.Errorf("ConnectionString() = %q, want %q", got, want)
	}
}
