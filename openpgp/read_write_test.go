// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package openpgp

import (
	"bytes"
	"io"
	"testing"

	"github.com/the-djmaze/openpgpjs/openpgp/packet"
)

func readMessage(t *testing.T, message []byte, keyring KeyRing, prompt PromptFunction, config *packet.Config) (*MessageDetails, []byte, error) {
	md, err := ReadMessage(bytes.NewBuffer(message), keyring, prompt, config)
	if err != nil {
		return nil, nil, err
	}
	contents, err := io.ReadAll(md.UnverifiedBody)
	return md, contents, err
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	recipient := newTestEntity(t)
	plaintext := []byte("Hello, World!\n")

	for _, withAEAD := range []bool{false, true} {
		config := ed25519Config()
		if withAEAD {
			config.AEADConfig = &packet.AEADConfig{DefaultMode: packet.AEADModeEAX}
		}

		buf := bytes.NewBuffer(nil)
		w, err := Encrypt(buf, []*Entity{recipient}, nil, nil, config)
		if err != nil {
			t.Fatalf("Encrypt (aead: %t): %s", withAEAD, err)
		}
		if _, err := w.Write(plaintext); err != nil {
			t.Fatalf("writing plaintext: %s", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("Close: %s", err)
		}

		md, contents, err := readMessage(t, buf.Bytes(), EntityList{recipient}, nil, config)
		if err != nil {
			t.Fatalf("reading message back (aead: %t): %s", withAEAD, err)
		}
		if !md.IsEncrypted {
			t.Errorf("message is not reported as encrypted")
		}
		if !bytes.Equal(contents, plaintext) {
			t.Errorf("got %q, want %q", contents, plaintext)
		}
	}
}

func TestEncryptSignDecryptVerifyRoundTrip(t *testing.T) {
	recipient := newTestEntity(t)
	signer := newTestEntity(t)
	plaintext := []byte("signed and encrypted message")

	config := ed25519Config()
	buf := bytes.NewBuffer(nil)
	w, err := Encrypt(buf, []*Entity{recipient}, signer, nil, config)
	if err != nil {
		t.Fatalf("Encrypt: %s", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		t.Fatalf("writing plaintext: %s", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %s", err)
	}

	keyring := EntityList{recipient, signer}
	md, contents, err := readMessage(t, buf.Bytes(), keyring, nil, config)
	if err != nil {
		t.Fatalf("reading message back: %s", err)
	}
	if !bytes.Equal(contents, plaintext) {
		t.Errorf("got %q, want %q", contents, plaintext)
	}
	if !md.IsSigned {
		t.Fatalf("message is not reported as signed")
	}
	if md.SignedBy == nil {
		t.Fatalf("signer key not found in keyring")
	}
	if md.SignatureError != nil {
		t.Errorf("signature error: %s", md.SignatureError)
	}
	if md.Signature == nil {
		t.Errorf("no signature packet found")
	}
}

// Sign the message 0x00..0xff, verify it, then flip byte 17 and check that
// verification fails.
func TestOnePassSignedMessage(t *testing.T) {
	signer := newTestEntity(t)
	plaintext := make([]byte, 256)
	for i := range plaintext {
		plaintext[i] = byte(i)
	}

	buf := bytes.NewBuffer(nil)
	w, err := Sign(buf, signer, nil, ed25519Config())
	if err != nil {
		t.Fatalf("Sign: %s", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		t.Fatalf("writing plaintext: %s", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %s", err)
	}
	signed := buf.Bytes()

	md, contents, err := readMessage(t, signed, EntityList{signer}, nil, nil)
	if err != nil {
		t.Fatalf("reading message back: %s", err)
	}
	if !bytes.Equal(contents, plaintext) {
		t.Errorf("content mismatch")
	}
	if !md.IsSigned || md.SignatureError != nil {
		t.Fatalf("good signature did not verify: %v", md.SignatureError)
	}

	// Mutating one byte of the literal data must break the signature. The
	// literal packet header spans the first few bytes, so find the byte
	// corresponding to plaintext[17] by searching for the run 16, 17, 18.
	tampered := make([]byte, len(signed))
	copy(tampered, signed)
	idx := bytes.Index(tampered, []byte{16, 17, 18})
	if idx < 0 {
		t.Fatalf("could not locate plaintext in message")
	}
	tampered[idx+1] ^= 0x01

	md, _, err = readMessage(t, tampered, EntityList{signer}, nil, nil)
	if err != nil {
		t.Fatalf("reading tampered message: %s", err)
	}
	if md.SignatureError == nil {
		t.Errorf("signature over tampered message verified")
	}
}

// Nested one-pass signature pairs form a stack: the first signer produces the
// outermost pair, and the trailing signatures appear in reverse order.
func TestNestedSignedMessage(t *testing.T) {
	outer := newTestEntity(t)
	inner := newTestEntity(t)
	plaintext := []byte("message signed by two entities")

	buf := bytes.NewBuffer(nil)
	w, err := SignNested(buf, []*Entity{outer, inner}, nil, ed25519Config())
	if err != nil {
		t.Fatalf("SignNested: %s", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		t.Fatalf("writing plaintext: %s", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %s", err)
	}
	signed := buf.Bytes()

	keyring := EntityList{outer, inner}
	md, contents, err := readMessage(t, signed, keyring, nil, nil)
	if err != nil {
		t.Fatalf("reading message back: %s", err)
	}
	if !bytes.Equal(contents, plaintext) {
		t.Errorf("content mismatch")
	}
	if !md.IsSigned {
		t.Fatalf("message is not reported as signed")
	}
	if md.SignatureError != nil {
		t.Fatalf("nested signatures did not verify: %s", md.SignatureError)
	}
	// The innermost pair belongs to the last signer.
	if md.SignedByKeyId != inner.PrimaryKey.KeyId {
		t.Errorf("SignedByKeyId is not the innermost signer")
	}
	if md.Signature == nil || md.Signature.IssuerKeyId == nil || *md.Signature.IssuerKeyId != inner.PrimaryKey.KeyId {
		t.Errorf("Signature is not the innermost signature")
	}

	// Mutating the literal data must break both signatures.
	tampered := make([]byte, len(signed))
	copy(tampered, signed)
	idx := bytes.Index(tampered, plaintext)
	if idx < 0 {
		t.Fatalf("could not locate plaintext in message")
	}
	tampered[idx] ^= 0x01
	md, _, err = readMessage(t, tampered, keyring, nil, nil)
	if err != nil {
		t.Fatalf("reading tampered message: %s", err)
	}
	if md.SignatureError == nil {
		t.Errorf("nested signatures over tampered message verified")
	}

	// Dropping the keyring entry for the outer signer must surface an
	// unknown issuer error even though the inner signature verifies.
	md, _, err = readMessage(t, signed, EntityList{inner}, nil, nil)
	if err != nil {
		t.Fatalf("reading message with partial keyring: %s", err)
	}
	if md.SignatureError == nil {
		t.Errorf("missing outer signer was not reported")
	}
}

func TestDetachedSignature(t *testing.T) {
	signer := newTestEntity(t)
	message := []byte("detached message body")

	buf := bytes.NewBuffer(nil)
	if err := DetachSign(buf, signer, bytes.NewBuffer(message), nil); err != nil {
		t.Fatalf("DetachSign: %s", err)
	}
	sig := buf.Bytes()

	if _, err := CheckDetachedSignature(EntityList{signer}, bytes.NewBuffer(message), bytes.NewBuffer(sig), nil); err != nil {
		t.Errorf("good detached signature rejected: %s", err)
	}

	tampered := append([]byte{}, message...)
	tampered[0] ^= 0x01
	if _, err := CheckDetachedSignature(EntityList{signer}, bytes.NewBuffer(tampered), bytes.NewBuffer(sig), nil); err == nil {
		t.Errorf("detached signature over modified message verified")
	}
}

func TestSymmetricallyEncryptedMessage(t *testing.T) {
	passphrase := []byte("hello world")
	plaintext := []byte("Hello, World!\n")

	for _, withAEAD := range []bool{false, true} {
		config := &packet.Config{S2KCount: 65536}
		if withAEAD {
			config.AEADConfig = &packet.AEADConfig{DefaultMode: packet.AEADModeEAX, ChunkSize: 1 << 20}
		}

		buf := bytes.NewBuffer(nil)
		w, err := SymmetricallyEncrypt(buf, passphrase, nil, config)
		if err != nil {
			t.Fatalf("SymmetricallyEncrypt (aead %t): %s", withAEAD, err)
		}
		if _, err := w.Write(plaintext); err != nil {
			t.Fatalf("writing plaintext: %s", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("Close: %s", err)
		}

		prompt := func(keys []Key, symmetric bool) ([]byte, error) {
			if !symmetric {
				t.Errorf("prompt: message was not symmetric")
			}
			return passphrase, nil
		}

		md, contents, err := readMessage(t, buf.Bytes(), nil, prompt, config)
		if err != nil {
			t.Fatalf("reading message back (aead %t): %s", withAEAD, err)
		}
		if !md.IsSymmetricallyEncrypted {
			t.Errorf("message is not reported as symmetrically encrypted")
		}
		if !bytes.Equal(contents, plaintext) {
			t.Errorf("got %q, want %q", contents, plaintext)
		}
	}
}

func TestMessageWithoutIntegrityProtection(t *testing.T) {
	// Build an old-style symmetrically encrypted message (tag 9, no MDC)
	// by hand and check the policy gate.
	passphrase := []byte("hunter2")
	buf := bytes.NewBuffer(nil)
	if _, err := packet.SerializeSymmetricKeyEncrypted(buf, passphrase, &packet.Config{S2KCount: 65536}); err != nil {
		t.Fatalf("SerializeSymmetricKeyEncrypted: %s", err)
	}
	// tag 9 packet with a dummy body
	buf.Write([]byte{0x80 | 0x40 | 9, 0x02, 0x00, 0x00})

	prompt := func(keys []Key, symmetric bool) ([]byte, error) {
		return passphrase, nil
	}
	if _, err := ReadMessage(bytes.NewBuffer(buf.Bytes()), nil, prompt, nil); err == nil {
		t.Errorf("unauthenticated message was not refused")
	}
}

func TestCompressedMessageRoundTrip(t *testing.T) {
	recipient := newTestEntity(t)
	plaintext := bytes.Repeat([]byte("compressible content "), 100)

	config := ed25519Config()
	config.DefaultCompressionAlgo = packet.CompressionZLIB

	// NewEntity must have advertised the compression preference for it to
	// be used.
	recipient2, err := NewEntity("Bob", "", "bob@example.com", config)
	if err != nil {
		t.Fatalf("NewEntity: %s", err)
	}

	buf := bytes.NewBuffer(nil)
	w, err := Encrypt(buf, []*Entity{recipient2}, nil, nil, config)
	if err != nil {
		t.Fatalf("Encrypt: %s", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		t.Fatalf("writing plaintext: %s", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %s", err)
	}

	_, contents, err := readMessage(t, buf.Bytes(), EntityList{recipient, recipient2}, nil, config)
	if err != nil {
		t.Fatalf("reading message back: %s", err)
	}
	if !bytes.Equal(contents, plaintext) {
		t.Errorf("compressed message did not round-trip")
	}
}
