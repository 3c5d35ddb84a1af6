package common

import ethcrypto "github.com/ethereum/go-ethereum/crypto"

// ModuleAddress derives the deterministic account address used by a native
// module to hold pooled funds. The address has no known private key.
func ModuleAddress(name string) [20]byte {
	hash := ethcrypto.Keccak256([]byte("curio/module/" + name))
	var addr [20]byte
	copy(addr[:], hash[12:])
	return addr
}
