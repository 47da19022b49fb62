package secret

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// SaltSize is the length of the salt stored next to sealed data
const SaltSize = 16

// Argon2id parameters for key derivation
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

var ErrOpen = errors.New("sealed data cannot be opened")

// Key is a secretbox key
type Key [32]byte

// NewSalt returns a random salt for DeriveKey
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// DeriveKey derives a secretbox key from a configured passphrase with Argon2id
func DeriveKey(passphrase string, salt []byte) Key {
	var key Key
	copy(key[:], argon2.IDKey([]byte(passphrase), salt, argonTime, argonMemory, argonThreads, uint32(len(key))))
	return key
}

// Seal encrypts and authenticates plaintext, prefixing the random nonce
func Seal(key Key, plaintext []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, err
	}
	k := [32]byte(key)
	return secretbox.Seal(nonce[:], plaintext, &nonce, &k), nil
}

// Open reverses Seal
func Open(key Key, sealed []byte) ([]byte, error) {
	if len(sealed) < nonceSize+secretbox.Overhead {
		return nil, ErrOpen
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	k := [32]byte(key)
	out, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &k)
	if !ok {
		return nil, ErrOpen
	}
	return out, nil
}

// Fingerprint returns a short SHA256 prefix of a token, safe to log
func Fingerprint(token string) string {
	if token == "" {
		return "-"
	}
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:4])
}
