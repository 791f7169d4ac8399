// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

package config

import "testing"

func TestDecrypterRoundTrip(t *testing.T) {
	d, err := NewDecrypterFromKey([]byte("test-key-material-not-for-production"))
	if err != nil {
		t.Fatalf("NewDecrypterFromKey: %v", err)
	}

	token, err := d.Encrypt("s3cr3t-api-token")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	doc := []byte("api-key: " + token + "\nother: plain-value\n")
	decrypted, err := d.DecryptDocument(doc)
	if err != nil {
		t.Fatalf("DecryptDocument: %v", err)
	}

	want := "api-key: s3cr3t-api-token\nother: plain-value\n"
	if string(decrypted) != want {
		t.Fatalf("expected %q, got %q", want, string(decrypted))
	}
}

func TestDecrypterLeavesPlainDocumentsUntouched(t *testing.T) {
	d, err := NewDecrypterFromKey([]byte("another-test-key"))
	if err != nil {
		t.Fatalf("NewDecrypterFromKey: %v", err)
	}

	doc := []byte("server:\n  port: 8443\n")
	out, err := d.DecryptDocument(doc)
	if err != nil {
		t.Fatalf("DecryptDocument: %v", err)
	}
	if string(out) != string(doc) {
		t.Fatalf("expected document unchanged, got %q", string(out))
	}
}

func TestDecrypterRejectsTamperedCiphertext(t *testing.T) {
	d, err := NewDecrypterFromKey([]byte("yet-another-key"))
	if err != nil {
		t.Fatalf("NewDecrypterFromKey: %v", err)
	}

	token, err := d.Encrypt("value")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	tampered := token[:len(token)-2] + "AA"
	_, err = d.DecryptDocument([]byte("k: " + tampered))
	if err == nil {
		t.Fatal("expected tampered ciphertext to fail decryption")
	}
}

func TestNewDecrypterMissingFileReturnsNil(t *testing.T) {
	d, err := NewDecrypter("/nonexistent/path/encrypted-config-value.key")
	if err != nil {
		t.Fatalf("expected no error for missing key file, got %v", err)
	}
	if d != nil {
		t.Fatal("expected nil decrypter when key file does not exist")
	}
}

func TestNewDecrypterFromKeyRejectsEmpty(t *testing.T) {
	if _, err := NewDecrypterFromKey(nil); err != ErrEmptyKey {
		t.Fatalf("expected ErrEmptyKey, got %v", err)
	}
}
