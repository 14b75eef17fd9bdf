package wallet

import (
	"crypto/ecdsa"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/crypto"
)

// LoadKeystore decrypts an encrypted key JSON file (Web3 Secret Storage).
func LoadKeystore(path, password string) (*ecdsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("wallet: failed to read keystore: %w", err)
	}
	key, err := keystore.DecryptKey(data, password)
	if err != nil {
		return nil, fmt.Errorf("wallet: failed to decrypt keystore: %w", err)
	}
	return key.PrivateKey, nil
}

// ReadPassword reads a password file, dropping the trailing newline.
func ReadPassword(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("wallet: failed to read password file: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

// KeyFromHex parses a hex private key, with or without the 0x prefix.
func KeyFromHex(s string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return nil, fmt.Errorf("wallet: invalid private key: %w", err)
	}
	return key, nil
}

// KeyFromEnv reads a hex private key from the named environment variable.
func KeyFromEnv(name string) (*ecdsa.PrivateKey, error) {
	v := os.Getenv(name)
	if name == "" || v == "" {
		return nil, fmt.Errorf("wallet: %s is not set: %w", name, ErrNoAccount)
	}
	return KeyFromHex(v)
}
