package secret

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKey(t *testing.T, passphrase string) (Key, []byte) {
	t.Helper()
	salt, err := NewSalt()
	require.NoError(t, err)
	return DeriveKey(passphrase, salt), salt
}

func TestSealOpen(t *testing.T) {
	key, _ := newKey(t, "terminal-passphrase")

	sealed, err := Seal(key, []byte(`{"access_token":"a"}`))
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "access_token")

	plain, err := Open(key, sealed)
	require.NoError(t, err)
	assert.Equal(t, `{"access_token":"a"}`, string(plain))
}

func TestOpen_WrongKey(t *testing.T) {
	key, salt := newKey(t, "one")
	sealed, err := Seal(key, []byte("payload"))
	require.NoError(t, err)

	_, err = Open(DeriveKey("two", salt), sealed)
	assert.ErrorIs(t, err, ErrOpen)

	_, err = Open(key, []byte("short"))
	assert.ErrorIs(t, err, ErrOpen)
}

func TestDeriveKey(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)
	require.Len(t, salt, SaltSize)

	other, err := NewSalt()
	require.NoError(t, err)
	assert.NotEqual(t, salt, other)

	assert.Equal(t, DeriveKey("pass", salt), DeriveKey("pass", salt), "same passphrase and salt")
	assert.NotEqual(t, DeriveKey("pass", salt), DeriveKey("pass", other), "salt changes the key")
	assert.NotEqual(t, DeriveKey("pass", salt), DeriveKey("Pass", salt))
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, "-", Fingerprint(""))
	assert.Len(t, Fingerprint("token"), 8)
	assert.Equal(t, Fingerprint("token"), Fingerprint("token"))
	assert.NotEqual(t, Fingerprint("token"), Fingerprint("other"))
}
