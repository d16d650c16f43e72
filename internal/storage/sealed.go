package storage

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// Sealed encrypts snapshots with XChaCha20-Poly1305 before handing them to
// the inner Storage. The storage key is bound as additional data, so a
// snapshot copied under another session's key does not open.
type Sealed struct {
	inner Storage
	aead  cipher.AEAD
}

var _ Storage = (*Sealed)(nil)

// NewSealed wraps inner with a 32 byte key.
func NewSealed(inner Storage, key []byte) (*Sealed, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("snapshot key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return &Sealed{inner: inner, aead: aead}, nil
}

// NewSealedHex wraps inner with a hex encoded 32 byte key.
func NewSealedHex(inner Storage, hexKey string) (*Sealed, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("snapshot key is not valid hex: %w", err)
	}
	return NewSealed(inner, key)
}

// Load implements Storage.
func (s *Sealed) Load(ctx context.Context, key string) ([]byte, bool, error) {
	data, found, err := s.inner.Load(ctx, key)
	if err != nil || !found {
		return nil, found, err
	}

	nonceSize := s.aead.NonceSize()
	if len(data) < nonceSize {
		return nil, false, &Error{Op: "open", Key: key, Message: "ciphertext too short", Cause: ErrTampered}
	}
	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plain, err := s.aead.Open(nil, nonce, ciphertext, []byte(key))
	if err != nil {
		return nil, false, &Error{Op: "open", Key: key, Cause: ErrTampered}
	}
	return plain, true, nil
}

// Save implements Storage.
func (s *Sealed) Save(ctx context.Context, key string, data []byte) error {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(data)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return &Error{Op: "seal", Key: key, Cause: err}
	}
	return s.inner.Save(ctx, key, s.aead.Seal(nonce, nonce, data, []byte(key)))
}

// Delete implements Storage.
func (s *Sealed) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}
