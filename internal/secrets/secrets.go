package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"
)

// sealedPrefix marks values produced by Seal so plaintext rows written before
// a key was configured keep working.
const sealedPrefix = "sb1:"

var (
	// ErrInvalidKey is returned when the key is not 32 bytes
	ErrInvalidKey = errors.New("secret key must be 32 bytes")

	// ErrOpenFailed is returned when a sealed value cannot be authenticated
	ErrOpenFailed = errors.New("failed to open sealed value")

	// ErrNoKey is returned when a sealed value is read without a key configured
	ErrNoKey = errors.New("sealed value found but no key configured")
)

// Box seals and opens stored credentials. A Box without a key passes values
// through unchanged.
type Box struct {
	key *[32]byte
}

// NewBox creates a Box. A nil or empty key disables sealing.
func NewBox(key []byte) (*Box, error) {
	if len(key) == 0 {
		return &Box{}, nil
	}
	if len(key) != 32 {
		return nil, ErrInvalidKey
	}
	var k [32]byte
	copy(k[:], key)
	return &Box{key: &k}, nil
}

// Enabled reports whether values are sealed
func (b *Box) Enabled() bool {
	return b != nil && b.key != nil
}

// Seal encrypts plaintext
func (b *Box) Seal(plaintext string) (string, error) {
	if !b.Enabled() {
		return plaintext, nil
	}

	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, b.key)
	return sealedPrefix + base64.RawStdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a value produced by Seal. Unsealed values are returned as-is.
func (b *Box) Open(value string) (string, error) {
	if !strings.HasPrefix(value, sealedPrefix) {
		return value, nil
	}
	if !b.Enabled() {
		return "", ErrNoKey
	}

	raw, err := base64.RawStdEncoding.DecodeString(strings.TrimPrefix(value, sealedPrefix))
	if err != nil || len(raw) < 24+secretbox.Overhead {
		return "", ErrOpenFailed
	}

	var nonce [24]byte
	copy(nonce[:], raw[:24])
	plain, ok := secretbox.Open(nil, raw[24:], &nonce, b.key)
	if !ok {
		return "", ErrOpenFailed
	}
	return string(plain), nil
}
