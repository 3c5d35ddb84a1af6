package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefaultFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RPCAddress != ":8645" || cfg.DataDir != "./curio-data" || cfg.DefaultGrowthBps != 10_000 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default file not written: %v", err)
	}
	// The written file loads back identically.
	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.RPCAddress != cfg.RPCAddress || reloaded.DataDir != cfg.DataDir ||
		reloaded.DefaultGrowthBps != cfg.DefaultGrowthBps || reloaded.AdminAddress != cfg.AdminAddress {
		t.Fatalf("reload mismatch: %+v vs %+v", reloaded, cfg)
	}
	if len(reloaded.PausedModules) != 0 {
		t.Fatalf("default must pause nothing, got %v", reloaded.PausedModules)
	}
}

func TestLoadAppliesDefaultsToPartialFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := "AdminAddress = \"0x00000000000000000000000000000000000000aa\"\nPausedModules = [\"market\"]\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RPCAddress != ":8645" || cfg.DefaultGrowthBps != 10_000 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	admin, err := cfg.Admin()
	if err != nil {
		t.Fatalf("admin: %v", err)
	}
	if admin[19] != 0xaa {
		t.Fatalf("admin not parsed: %x", admin)
	}
	if len(cfg.PausedModules) != 1 || cfg.PausedModules[0] != "market" {
		t.Fatalf("paused modules not parsed: %v", cfg.PausedModules)
	}
}

func TestLoadRejectsBadAdminAddress(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("AdminAddress = \"0x1234\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("short admin address must be rejected")
	}
}

func TestAdminUnsetIsZero(t *testing.T) {
	cfg := &Config{}
	admin, err := cfg.Admin()
	if err != nil {
		t.Fatalf("admin: %v", err)
	}
	if admin != ([20]byte{}) {
		t.Fatalf("expected zero admin, got %x", admin)
	}
}

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("0X00000000000000000000000000000000000000Ff")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if addr[19] != 0xff {
		t.Fatalf("unexpected parse result: %x", addr)
	}
	if _, err := ParseAddress("not-hex"); err == nil {
		t.Fatal("invalid hex must be rejected")
	}
	if _, err := ParseAddress("0xabcd"); err == nil {
		t.Fatal("short address must be rejected")
	}
}
