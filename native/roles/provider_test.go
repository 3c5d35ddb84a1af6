package roles

import (
	"os"
	"path/filepath"
	"testing"
)

func addr(last byte) [20]byte {
	var out [20]byte
	out[19] = last
	return out
}

func TestHasCapability(t *testing.T) {
	granted := addr(0x01)
	other := addr(0x02)

	if !HasCapability(nil, other, CapabilityAssetCreate) {
		t.Fatal("nil provider must allow everyone")
	}
	provider := NewStatic(map[[20]byte][]string{
		granted: {CapabilityAssetCreate},
	})
	if !HasCapability(provider, granted, CapabilityAssetCreate) {
		t.Fatal("grant not honored")
	}
	if HasCapability(provider, other, CapabilityAssetCreate) {
		t.Fatal("ungranted address must be rejected")
	}
	if !HasCapability(AllowAll{}, other, CapabilityAssetCreate) {
		t.Fatal("allow-all must grant")
	}
}

func TestNewStaticCopiesGrants(t *testing.T) {
	grants := map[[20]byte][]string{addr(0x01): {CapabilityAssetCreate}}
	provider := NewStatic(grants)
	grants[addr(0x01)][0] = "mutated"
	caps := provider.Capabilities(addr(0x01))
	if len(caps) != 1 || caps[0] != CapabilityAssetCreate {
		t.Fatalf("grant table must be copied, got %v", caps)
	}
}

func TestLoadStatic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roles.yaml")
	content := "grants:\n  \"0x0000000000000000000000000000000000000001\":\n    - asset.create\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write roles file: %v", err)
	}
	provider, err := LoadStatic(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !HasCapability(provider, addr(0x01), CapabilityAssetCreate) {
		t.Fatal("loaded grant not honored")
	}
	if HasCapability(provider, addr(0x02), CapabilityAssetCreate) {
		t.Fatal("unlisted address must be rejected")
	}
}

func TestLoadStaticRejectsBadAddress(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roles.yaml")
	if err := os.WriteFile(path, []byte("grants:\n  \"0x1234\": [asset.create]\n"), 0o600); err != nil {
		t.Fatalf("write roles file: %v", err)
	}
	if _, err := LoadStatic(path); err == nil {
		t.Fatal("short address must be rejected")
	}
}
