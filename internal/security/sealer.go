// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"github.com/nvakumar/ssfrontend/internal/util"
)

// SealedPrefix marks a sealed value: ENC:base64(nonce|ciphertext|tag).
const SealedPrefix = "ENC:"

const (
	keySize  = 32
	saltSize = 32

	// PBKDF2Iterations follows the OWASP 2023 recommendation for SHA-256.
	PBKDF2Iterations = 600000
)

var (
	// ErrInvalidSealed indicates the sealed value is malformed.
	ErrInvalidSealed = errors.New("invalid sealed value")
	// ErrOpenFailed indicates the key is wrong or the value was tampered with.
	ErrOpenFailed = errors.New("unseal failed: authentication tag mismatch")
)

// =============================================================================
// SEALER
// =============================================================================

// Sealer encrypts and decrypts short strings with AES-256-GCM.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer builds a Sealer from a raw 32-byte key.
func NewSealer(key []byte) (*Sealer, error) {
	if len(key) != keySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", keySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM cipher: %w", err)
	}
	return &Sealer{aead: gcm}, nil
}

// NewPassphraseSealer derives the key from passphrase and the salt stored at
// saltPath, creating the salt on first use.
func NewPassphraseSealer(passphrase, saltPath string) (*Sealer, error) {
	if passphrase == "" {
		return nil, errors.New("empty passphrase")
	}
	salt, err := loadOrCreate(saltPath, saltSize)
	if err != nil {
		return nil, fmt.Errorf("salt: %w", err)
	}
	key := DeriveKey(passphrase, salt)
	defer zero(key)
	return NewSealer(key)
}

// NewKeyFileSealer uses a random key stored at keyPath, creating it on first
// use.
func NewKeyFileSealer(keyPath string) (*Sealer, error) {
	key, err := loadOrCreate(keyPath, keySize)
	if err != nil {
		return nil, fmt.Errorf("key file: %w", err)
	}
	defer zero(key)
	return NewSealer(key)
}

// DeriveKey stretches a passphrase with PBKDF2-SHA-256.
func DeriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, PBKDF2Iterations, keySize, sha256.New)
}

// Seal encrypts plaintext and returns it with SealedPrefix.
func (s *Sealer) Seal(plaintext string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	out := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return SealedPrefix + base64.StdEncoding.EncodeToString(out), nil
}

// Open reverses Seal. Values without SealedPrefix are returned unchanged so
// plaintext written before sealing was enabled stays readable.
func (s *Sealer) Open(value string) (string, error) {
	if !IsSealed(value) {
		return value, nil
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, SealedPrefix))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSealed, err)
	}
	n := s.aead.NonceSize()
	if len(data) < n {
		return "", ErrInvalidSealed
	}
	plain, err := s.aead.Open(nil, data[:n], data[n:], nil)
	if err != nil {
		return "", ErrOpenFailed
	}
	return string(plain), nil
}

// IsSealed reports whether value carries SealedPrefix.
func IsSealed(value string) bool {
	return strings.HasPrefix(value, SealedPrefix)
}

func loadOrCreate(path string, size int) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		if len(data) != size {
			return nil, fmt.Errorf("%s: expected %d bytes, found %d", path, size, len(data))
		}
		return data, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	data = make([]byte, size)
	if _, err := rand.Read(data); err != nil {
		return nil, err
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return nil, err
	}
	return data, nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
