// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package packet

import (
	"bytes"
	"testing"
)

func roundTripSymmetricKeyEncrypted(t *testing.T, config *Config) {
	passphrase := []byte("hello world")

	buf := bytes.NewBuffer(nil)
	key, err := SerializeSymmetricKeyEncrypted(buf, passphrase, config)
	if err != nil {
		t.Fatalf("SerializeSymmetricKeyEncrypted: %s", err)
	}

	p, err := Read(buf)
	if err != nil {
		t.Fatalf("failed to reparse SKESK: %s", err)
	}
	ske, ok := p.(*SymmetricKeyEncrypted)
	if !ok {
		t.Fatalf("parsed a different packet type: %#v", p)
	}

	parsedKey, parsedCipherFunc, err := ske.Decrypt(passphrase)
	if err != nil {
		t.Fatalf("failed to decrypt reparsed SKESK: %s", err)
	}
	if !bytes.Equal(key, parsedKey) {
		t.Errorf("keys don't match after Decrypt: %x (original) vs %x (parsed)", key, parsedKey)
	}
	if ske.Version == 4 && parsedCipherFunc != config.Cipher() {
		t.Errorf("cipher function doesn't match after Decrypt: %d vs %d", config.Cipher(), parsedCipherFunc)
	}

	wrongKey, _, err := ske.Decrypt([]byte("wrong passphrase"))
	if err == nil && bytes.Equal(wrongKey, key) {
		t.Errorf("wrong passphrase produced the correct session key")
	}
}

func TestSymmetricKeyEncryptedV4RoundTrip(t *testing.T) {
	ciphers := []CipherFunction{Cipher3DES, CipherCAST5, CipherAES128, CipherAES256}
	for _, cipher := range ciphers {
		roundTripSymmetricKeyEncrypted(t, &Config{DefaultCipher: cipher, S2KCount: 65536})
	}
}

func TestSymmetricKeyEncryptedV5RoundTrip(t *testing.T) {
	for _, mode := range []AEADMode{AEADModeEAX, AEADModeOCB} {
		config := &Config{
			DefaultCipher: CipherAES256,
			S2KCount:      65536,
			AEADConfig:    &AEADConfig{DefaultMode: mode},
		}
		roundTripSymmetricKeyEncrypted(t, config)
	}
}
