// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"golang.org/x/crypto/hkdf"
)

const (
	decrypterSalt = "witchframe-config-value"
	decrypterInfo = "config-value-encryption-v1"
	aesKeySize    = 32
	gcmNonceSize  = 12
)

var (
	// ErrEmptyKey is returned when an empty key is provided to NewDecrypter.
	ErrEmptyKey = errors.New("config: encryption key cannot be empty")

	// ErrDecryptionFailed is returned when a value fails to decrypt,
	// meaning it was truncated, corrupted, or encrypted under a different key.
	ErrDecryptionFailed = errors.New("config: decryption failed: invalid ciphertext or authentication tag")
)

// encValuePattern matches the `enc:<base64>` token witchcraft-style config
// files use to mark an individual scalar value as encrypted. Only the
// base64 payload after the prefix is captured.
var encValuePattern = regexp.MustCompile(`enc:([A-Za-z0-9+/=]+)`)

// Decrypter transparently decrypts `enc:`-prefixed scalar values embedded
// in install.yml/runtime.yml using a symmetric key loaded from
// var/conf/encrypted-config-value.key. It is AES-256-GCM under a key
// derived from the raw key-file bytes via HKDF-SHA256, mirroring the
// credential-encryption scheme this package previously used for stored
// API tokens, but keyed from a dedicated key file rather than a
// JWT secret.
type Decrypter struct {
	gcm cipher.AEAD
}

// NewDecrypter derives an AES-256-GCM cipher from the bytes of the key
// file at path. If the file does not exist, NewDecrypter returns (nil,
// nil): encrypted config values are an optional feature, not a required
// one, and callers should treat a nil *Decrypter as "no decryption
// configured".
func NewDecrypter(keyPath string) (*Decrypter, error) {
	raw, err := os.ReadFile(keyPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: read encryption key %s: %w", keyPath, err)
	}
	return NewDecrypterFromKey(raw)
}

// NewDecrypterFromKey derives a Decrypter directly from raw key bytes,
// primarily for tests.
func NewDecrypterFromKey(raw []byte) (*Decrypter, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyKey
	}

	key, err := deriveKey(raw)
	if err != nil {
		return nil, fmt.Errorf("config: derive encryption key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("config: create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("config: create GCM: %w", err)
	}
	return &Decrypter{gcm: gcm}, nil
}

// DecryptDocument scans raw YAML bytes for `enc:<base64>` tokens and
// replaces each with its decrypted plaintext, leaving everything else
// untouched. Values that fail to decrypt cause the whole call to fail,
// since a partially-decrypted config file is worse than none.
func (d *Decrypter) DecryptDocument(raw []byte) ([]byte, error) {
	var decryptErr error
	out := encValuePattern.ReplaceAllFunc(raw, func(match []byte) []byte {
		if decryptErr != nil {
			return match
		}
		sub := encValuePattern.FindSubmatch(match)
		plaintext, err := d.decrypt(string(sub[1]))
		if err != nil {
			decryptErr = err
			return match
		}
		return []byte(plaintext)
	})
	if decryptErr != nil {
		return nil, decryptErr
	}
	return out, nil
}

// Encrypt encrypts plaintext and returns an `enc:`-prefixed token suitable
// for embedding directly into a YAML config file.
func (d *Decrypter) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, gcmNonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("config: generate nonce: %w", err)
	}
	ciphertext := d.gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return "enc:" + base64.StdEncoding.EncodeToString(ciphertext), nil
}

func (d *Decrypter) decrypt(b64 string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", fmt.Errorf("%w: base64 decode: %s", ErrDecryptionFailed, err)
	}
	if len(data) < gcmNonceSize+d.gcm.Overhead() {
		return "", ErrDecryptionFailed
	}
	nonce, ciphertext := data[:gcmNonceSize], data[gcmNonceSize:]
	plaintext, err := d.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plaintext), nil
}

func deriveKey(secret []byte) ([]byte, error) {
	r := hkdf.New(sha256.New, secret, []byte(decrypterSalt), []byte(decrypterInfo))
	key := make([]byte, aesKeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("read HKDF output: %w", err)
	}
	return key, nil
}
