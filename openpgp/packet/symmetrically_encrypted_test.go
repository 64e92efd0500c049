// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package packet

import (
	"bytes"
	"crypto/rand"
	"io"
	"testing"

	"github.com/the-djmaze/openpgpjs/openpgp/errors"
)

func encryptSEIPD(t *testing.T, cipherFunc CipherFunction, key, plaintext []byte) []byte {
	buf := bytes.NewBuffer(nil)
	w, err := SerializeSymmetricallyEncrypted(buf, cipherFunc, key, nil)
	if err != nil {
		t.Fatalf("SerializeSymmetricallyEncrypted: %s", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		t.Fatalf("writing plaintext: %s", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %s", err)
	}
	return buf.Bytes()
}

func decryptSEIPD(t *testing.T, serialized []byte, cipherFunc CipherFunction, key []byte) ([]byte, error) {
	p, err := Read(bytes.NewBuffer(serialized))
	if err != nil {
		t.Fatalf("Read: %s", err)
	}
	se, ok := p.(*SymmetricallyEncrypted)
	if !ok {
		t.Fatalf("didn't find SymmetricallyEncrypted packet")
	}
	if !se.IntegrityProtected {
		t.Fatalf("packet is not integrity protected")
	}
	r, err := se.Decrypt(cipherFunc, key)
	if err != nil {
		t.Fatalf("Decrypt: %s", err)
	}
	contents, err := io.ReadAll(r)
	if err != nil && err != io.EOF {
		return contents, err
	}
	return contents, r.Close()
}

func TestSymmetricallyEncryptedRoundTrip(t *testing.T) {
	for _, cipherFunc := range []CipherFunction{Cipher3DES, CipherCAST5, CipherAES128, CipherAES192, CipherAES256, CipherTwofish, CipherBlowfish} {
		key := make([]byte, cipherFunc.KeySize())
		rand.Read(key)
		plaintext := make([]byte, 503)
		rand.Read(plaintext)

		serialized := encryptSEIPD(t, cipherFunc, key, plaintext)
		contents, err := decryptSEIPD(t, serialized, cipherFunc, key)
		if err != nil {
			t.Errorf("cipher %d: MDC rejected valid data: %s", cipherFunc, err)
			continue
		}
		if !bytes.Equal(contents, plaintext) {
			t.Errorf("cipher %d: bad contents got:%x want:%x", cipherFunc, contents, plaintext)
		}
	}
}

func TestSymmetricallyEncryptedTamperedMDC(t *testing.T) {
	key := make([]byte, 32)
	rand.Read(key)
	plaintext := make([]byte, 100)
	rand.Read(plaintext)

	serialized := encryptSEIPD(t, CipherAES256, key, plaintext)
	// The last ciphertext byte maps onto the final byte of the SHA-1 MDC
	// trailer.
	serialized[len(serialized)-1] ^= 0x40

	_, err := decryptSEIPD(t, serialized, CipherAES256, key)
	if err != errors.ErrMDCHashMismatch {
		t.Errorf("expected ErrMDCHashMismatch, got %v", err)
	}
}

func TestSymmetricallyEncryptedTruncated(t *testing.T) {
	key := make([]byte, 32)
	rand.Read(key)
	plaintext := make([]byte, 100)
	rand.Read(plaintext)

	serialized := encryptSEIPD(t, CipherAES256, key, plaintext)

	// Reparse a body that is too short to even contain the MDC trailer.
	p, err := Read(bytes.NewBuffer(serialized[:20]))
	if err != nil {
		// The truncation may already surface while reading the packet.
		return
	}
	se := p.(*SymmetricallyEncrypted)
	r, err := se.Decrypt(CipherAES256, key)
	if err != nil {
		return
	}
	if _, err := io.ReadAll(r); err == nil {
		if err := r.Close(); err == nil {
			t.Errorf("truncated SEIPD packet was accepted")
		}
	}
}
