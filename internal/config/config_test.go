package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigWithInfo_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("FRACHTRECHNER_PORT", "")
	t.Setenv("FRACHTRECHNER_CURRENCY", "")
	t.Setenv("FRACHTRECHNER_DEV", "")

	cfg, info, err := LoadConfigWithInfo(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("LoadConfigWithInfo failed: %v", err)
	}
	if info.PortSpecified {
		t.Errorf("PortSpecified should be false")
	}
	if cfg.Server.Port != DefaultConfig().Server.Port {
		t.Errorf("Port=%d, want default", cfg.Server.Port)
	}
	if cfg.Display.Currency != "EUR" {
		t.Errorf("Currency=%q, want EUR", cfg.Display.Currency)
	}
}

func TestLoadConfigWithInfo_File(t *testing.T) {
	t.Setenv("FRACHTRECHNER_PORT", "")
	t.Setenv("FRACHTRECHNER_CURRENCY", "")
	t.Setenv("FRACHTRECHNER_DEV", "")

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
port = 8088
dev_mode = true

[upload]
max_size_mb = -1

[session]
ttl_minutes = 15
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, info, err := LoadConfigWithInfo(path)
	if err != nil {
		t.Fatalf("LoadConfigWithInfo failed: %v", err)
	}
	if !info.PortSpecified || cfg.Server.Port != 8088 {
		t.Errorf("port=%d specified=%v", cfg.Server.Port, info.PortSpecified)
	}
	if !cfg.Server.DevMode {
		t.Errorf("DevMode should be true")
	}
	if cfg.Upload.MaxSizeMB != 10 {
		t.Errorf("MaxSizeMB=%d, want default 10 for invalid value", cfg.Upload.MaxSizeMB)
	}
	if got := cfg.SessionTTL().Minutes(); got != 15 {
		t.Errorf("SessionTTL=%v min, want 15", got)
	}
	if cfg.Session.MaxSessions != 100 {
		t.Errorf("MaxSessions=%d, want default 100", cfg.Session.MaxSessions)
	}
}

func TestLoadConfigWithInfo_EnvOverride(t *testing.T) {
	t.Setenv("FRACHTRECHNER_PORT", "9000")
	t.Setenv("FRACHTRECHNER_CURRENCY", "CHF")
	t.Setenv("FRACHTRECHNER_DEV", "true")

	cfg, info, err := LoadConfigWithInfo(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadConfigWithInfo failed: %v", err)
	}
	if cfg.Server.Port != 9000 || !info.PortSpecified {
		t.Errorf("port=%d specified=%v", cfg.Server.Port, info.PortSpecified)
	}
	if cfg.Display.Currency != "CHF" {
		t.Errorf("Currency=%q, want CHF", cfg.Display.Currency)
	}
	if !cfg.Server.DevMode {
		t.Errorf("DevMode should be enabled by FRACHTRECHNER_DEV")
	}
}

func TestLoadConfigWithInfo_EnvDisablesDevMode(t *testing.T) {
	t.Setenv("FRACHTRECHNER_PORT", "")
	t.Setenv("FRACHTRECHNER_CURRENCY", "")
	t.Setenv("FRACHTRECHNER_DEV", "false")

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[server]\ndev_mode = true\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, err := LoadConfigWithInfo(path)
	if err != nil {
		t.Fatalf("LoadConfigWithInfo failed: %v", err)
	}
	if cfg.Server.DevMode {
		t.Errorf("FRACHTRECHNER_DEV=false should override dev_mode = true")
	}

	t.Setenv("FRACHTRECHNER_DEV", "vielleicht")
	if _, _, err := LoadConfigWithInfo(path); err == nil {
		t.Fatal("expected error for invalid FRACHTRECHNER_DEV")
	}
}

func TestLoadConfigWithInfo_InvalidEnv(t *testing.T) {
	t.Setenv("FRACHTRECHNER_PORT", "abc")

	if _, _, err := LoadConfigWithInfo(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error for non-numeric FRACHTRECHNER_PORT")
	}
}

func TestLoadConfigWithInfo_InvalidToml(t *testing.T) {
	t.Setenv("FRACHTRECHNER_PORT", "")
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[server\nport = "), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, err := LoadConfigWithInfo(path); err == nil {
		t.Fatal("expected error for invalid toml")
	}
}
