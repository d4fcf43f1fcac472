package keystore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMnemonic = "legal winner thank year wave sausage worth useful legal winner thank yellow"

func TestEncryptDecryptRoundTrip(t *testing.T) {
	v, err := EncryptMnemonic(testMnemonic, "correct horse battery staple")
	require.NoError(t, err)
	assert.Equal(t, 3, v.Version)
	assert.Equal(t, "aes-256-gcm", v.Crypto.Cipher)
	assert.Equal(t, "scrypt", v.Crypto.KDF)
	assert.NotEmpty(t, v.Id)

	got, err := DecryptMnemonic(v, "correct horse battery staple")
	require.NoError(t, err)
	assert.Equal(t, testMnemonic, got)
}

func TestDecryptWrongPassword(t *testing.T) {
	v, err := EncryptMnemonic(testMnemonic, "right")
	require.NoError(t, err)

	_, err = DecryptMnemonic(v, "wrong")
	assert.ErrorIs(t, err, ErrMACMismatch)
}

func TestSaveAndLoadFile(t *testing.T) {
	v, err := EncryptMnemonic(testMnemonic, "pw123456")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "wallet.json")
	require.NoError(t, v.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, v.Id, loaded.Id)

	got, err := DecryptMnemonic(loaded, "pw123456")
	require.NoError(t, err)
	assert.Equal(t, testMnemonic, got)
}
