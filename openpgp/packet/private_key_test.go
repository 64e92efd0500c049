// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package packet

import (
	"bytes"
	"crypto"
	"crypto/rand"
	"testing"
	"time"

	"github.com/the-djmaze/openpgpjs/openpgp/ecdh"
	"github.com/the-djmaze/openpgpjs/openpgp/eddsa"
	"github.com/the-djmaze/openpgpjs/openpgp/internal/algorithm"
	"github.com/the-djmaze/openpgpjs/openpgp/internal/ecc"
)

var testPassphrase = []byte("hello world")

func generateTestPrivateKeys(t *testing.T) []*PrivateKey {
	signing, err := eddsa.GenerateKey(rand.Reader, ecc.NewEd25519())
	if err != nil {
		t.Fatalf("failed to generate EdDSA key: %s", err)
	}
	encryption, err := ecdh.GenerateKey(rand.Reader, ecc.NewCurve25519(), ecdh.KDF{
		Hash:   algorithm.SHA256,
		Cipher: algorithm.AES128,
	})
	if err != nil {
		t.Fatalf("failed to generate ECDH key: %s", err)
	}
	return []*PrivateKey{
		NewEdDSAPrivateKey(time.Unix(1e9, 0), signing),
		NewECDHPrivateKey(time.Unix(1e9, 0), encryption),
	}
}

func reparsePrivateKey(t *testing.T, pk *PrivateKey) *PrivateKey {
	buf := bytes.NewBuffer(nil)
	if err := pk.Serialize(buf); err != nil {
		t.Fatalf("Serialize: %s", err)
	}
	p, err := Read(buf)
	if err != nil {
		t.Fatalf("failed to reparse private key: %s", err)
	}
	parsed, ok := p.(*PrivateKey)
	if !ok {
		t.Fatalf("didn't get a private key packet")
	}
	return parsed
}

func TestPrivateKeyPlaintextRoundTrip(t *testing.T) {
	for _, pk := range generateTestPrivateKeys(t) {
		parsed := reparsePrivateKey(t, pk)
		if parsed.Encrypted {
			t.Errorf("plaintext key parsed as encrypted")
		}
		if !bytes.Equal(parsed.Fingerprint, pk.Fingerprint) {
			t.Errorf("fingerprint changed during round trip")
		}
	}
}

func TestPrivateKeyEncryptDecryptRoundTrip(t *testing.T) {
	for _, pk := range generateTestPrivateKeys(t) {
		if err := pk.Encrypt(testPassphrase); err != nil {
			t.Fatalf("Encrypt: %s", err)
		}
		if !pk.Encrypted {
			t.Fatalf("key is not marked encrypted")
		}

		parsed := reparsePrivateKey(t, pk)
		if !parsed.Encrypted {
			t.Fatalf("reparsed key is not encrypted")
		}

		if err := parsed.Decrypt([]byte("wrong passphrase")); err == nil {
			t.Errorf("wrong passphrase decrypted the key")
		}

		if err := parsed.Decrypt(testPassphrase); err != nil {
			t.Fatalf("Decrypt: %s", err)
		}
		if parsed.Encrypted || parsed.PrivateKey == nil {
			t.Fatalf("key is not decrypted after Decrypt")
		}
		if !bytes.Equal(parsed.Fingerprint, pk.Fingerprint) {
			t.Errorf("fingerprint changed during encrypted round trip")
		}
	}
}

// Decrypting, re-encrypting and re-serializing an encrypted key must keep the
// public key material bit-identical.
func TestPrivateKeyReserializeStability(t *testing.T) {
	pk := generateTestPrivateKeys(t)[0]
	if err := pk.Encrypt(testPassphrase); err != nil {
		t.Fatalf("Encrypt: %s", err)
	}

	buf := bytes.NewBuffer(nil)
	if err := pk.Serialize(buf); err != nil {
		t.Fatalf("Serialize: %s", err)
	}
	serialized := buf.Bytes()

	parsed := reparsePrivateKey(t, pk)

	// Without touching the secret material, re-serialization is exact.
	buf2 := bytes.NewBuffer(nil)
	if err := parsed.Serialize(buf2); err != nil {
		t.Fatalf("re-Serialize: %s", err)
	}
	if !bytes.Equal(serialized, buf2.Bytes()) {
		t.Errorf("encrypted private key did not reserialize to identical bytes")
	}

	if err := parsed.Decrypt(testPassphrase); err != nil {
		t.Fatalf("Decrypt: %s", err)
	}
}

func TestPrivateKeyAEADProtection(t *testing.T) {
	pk := generateTestPrivateKeys(t)[0]
	config := &Config{
		DefaultHash:   crypto.SHA256,
		DefaultCipher: CipherAES256,
		S2KCount:      65536,
		AEADConfig:    &AEADConfig{DefaultMode: AEADModeOCB},
	}
	if err := pk.EncryptWithConfig(testPassphrase, config); err != nil {
		t.Fatalf("EncryptWithConfig: %s", err)
	}

	parsed := reparsePrivateKey(t, pk)
	if err := parsed.Decrypt([]byte("wrong passphrase")); err == nil {
		t.Errorf("wrong passphrase decrypted an AEAD-protected key")
	}
	if err := parsed.Decrypt(testPassphrase); err != nil {
		t.Fatalf("Decrypt: %s", err)
	}
}
