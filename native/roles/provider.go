package roles

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// CapabilityAssetCreate gates token creation.
const CapabilityAssetCreate = "asset.create"

// CapabilityProvider reports the capability names held by an address.
type CapabilityProvider interface {
	Capabilities(addr [20]byte) []string
}

// HasCapability is the gate predicate: whether the provider reports the
// required name for the address. A nil provider permits every caller.
func HasCapability(provider CapabilityProvider, addr [20]byte, name string) bool {
	if provider == nil {
		return true
	}
	for _, capability := range provider.Capabilities(addr) {
		if capability == name {
			return true
		}
	}
	return false
}

// AllowAll is the default provider substituted when none is configured. It
// grants every capability to every address.
type AllowAll struct{}

// Capabilities implements CapabilityProvider.
func (AllowAll) Capabilities([20]byte) []string { return []string{CapabilityAssetCreate} }

// Static serves capability sets loaded from a fixed table.
type Static struct {
	grants map[[20]byte][]string
}

// NewStatic builds a provider over the supplied grant table.
func NewStatic(grants map[[20]byte][]string) *Static {
	copied := make(map[[20]byte][]string, len(grants))
	for addr, caps := range grants {
		copied[addr] = append([]string(nil), caps...)
	}
	return &Static{grants: copied}
}

// Capabilities implements CapabilityProvider.
func (s *Static) Capabilities(addr [20]byte) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.grants[addr]...)
}

type grantsFile struct {
	Grants map[string][]string `yaml:"grants"`
}

// LoadStatic reads a YAML grants file mapping 0x-hex addresses to capability
// name lists.
func LoadStatic(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file grantsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("roles: parse %s: %w", path, err)
	}
	grants := make(map[[20]byte][]string, len(file.Grants))
	for raw, caps := range file.Grants {
		addr, err := parseAddress(raw)
		if err != nil {
			return nil, fmt.Errorf("roles: %s: %w", path, err)
		}
		grants[addr] = append([]string(nil), caps...)
	}
	return NewStatic(grants), nil
}

func parseAddress(raw string) ([20]byte, error) {
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
