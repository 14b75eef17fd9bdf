package wallet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeyHex = "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291"

func TestKeyFromHex(t *testing.T) {
	key, err := KeyFromHex("0x" + testKeyHex)
	require.NoError(t, err)

	plain, err := KeyFromHex(testKeyHex)
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), crypto.PubkeyToAddress(plain.PublicKey))

	_, err = KeyFromHex("zz")
	assert.Error(t, err)
}

func TestKeyFromEnv(t *testing.T) {
	t.Setenv("TRUSTSNAKE_TEST_KEY", testKeyHex)
	_, err := KeyFromEnv("TRUSTSNAKE_TEST_KEY")
	require.NoError(t, err)

	_, err = KeyFromEnv("TRUSTSNAKE_TEST_KEY_UNSET")
	assert.ErrorIs(t, err, ErrNoAccount)
}

func TestLoadKeystore(t *testing.T) {
	dir := t.TempDir()
	acct, err := keystore.StoreKey(dir, "secret", keystore.LightScryptN, keystore.LightScryptP)
	require.NoError(t, err)

	pwFile := filepath.Join(dir, "password.txt")
	require.NoError(t, os.WriteFile(pwFile, []byte("secret\n"), 0o600))
	password, err := ReadPassword(pwFile)
	require.NoError(t, err)
	assert.Equal(t, "secret", password)

	key, err := LoadKeystore(acct.URL.Path, password)
	require.NoError(t, err)
	assert.Equal(t, acct.Address, crypto.PubkeyToAddress(key.PublicKey))

	_, err = LoadKeystore(acct.URL.Path, "wrong")
	assert.Error(t, err)
}
