package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config carries the daemon settings loaded from TOML.
type Config struct {
	RPCAddress       string   `toml:"RPCAddress"`
	DataDir          string   `toml:"DataDir"`
	AdminAddress     string   `toml:"AdminAddress"`
	RolesFile        string   `toml:"RolesFile"`
	DefaultGrowthBps uint32   `toml:"DefaultGrowthBps"`
	Env              string   `toml:"Env"`
	PausedModules    []string `toml:"PausedModules"`
}

// Load loads the configuration from the given path, writing defaults when the
// file does not exist yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = ":8645"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./curio-data"
	}
	if cfg.DefaultGrowthBps == 0 {
		cfg.DefaultGrowthBps = 10_000
	}
}

// Validate checks the address fields and multiplier default.
func (c *Config) Validate() error {
	if trimmed := strings.TrimSpace(c.AdminAddress); trimmed != "" {
		if _, err := ParseAddress(trimmed); err != nil {
			return fmt.Errorf("config: AdminAddress: %w", err)
		}
	}
	return nil
}

// Admin returns the parsed administrator address, zero when unset.
func (c *Config) Admin() ([20]byte, error) {
	trimmed := strings.TrimSpace(c.AdminAddress)
	if trimmed == "" {
		return [20]byte{}, nil
	}
	return ParseAddress(trimmed)
}

// ParseAddress decodes a 0x-prefixed 20-byte hex address.
func ParseAddress(raw string) ([20]byte, error) {
	var addr [20]byte
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(strings.TrimPrefix(trimmed, "0x"), "0X")
	decoded, err := hex.DecodeString(trimmed)
	if err != nil {
		return addr, fmt.Errorf("invalid address %q: %w", raw, err)
	}
	if len(decoded) != 20 {
		return addr, fmt.Errorf("invalid address %q: want 20 bytes, got %d", raw, len(decoded))
	}
	copy(addr[:], decoded)
	return addr, nil
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := &Config{
		RPCAddress:       ":8645",
		DataDir:          "./curio-data",
		DefaultGrowthBps: 10_000,
	}
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
