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

	"github.com/the-djmaze/openpgpjs/openpgp/eddsa"
	"github.com/the-djmaze/openpgpjs/openpgp/internal/ecc"
)

func generateEdDSASigner(t *testing.T) *PrivateKey {
	priv, err := eddsa.GenerateKey(rand.Reader, ecc.NewEd25519())
	if err != nil {
		t.Fatalf("failed to generate EdDSA key: %s", err)
	}
	return NewEdDSAPrivateKey(time.Unix(1e9, 0), priv)
}

func signAndVerify(t *testing.T, priv *PrivateKey, message []byte) *Signature {
	sig := &Signature{
		Version:      4,
		SigType:      SigTypeBinary,
		PubKeyAlgo:   priv.PubKeyAlgo,
		Hash:         crypto.SHA256,
		CreationTime: time.Unix(1e9, 0),
		IssuerKeyId:  &priv.KeyId,
	}

	h := sig.Hash.New()
	h.Write(message)
	if err := sig.Sign(h, priv, nil); err != nil {
		t.Fatalf("Sign: %s", err)
	}

	h = sig.Hash.New()
	h.Write(message)
	if err := priv.PublicKey.VerifySignature(h, sig); err != nil {
		t.Fatalf("VerifySignature: %s", err)
	}
	return sig
}

func TestSignatureSignVerifyRoundTrip(t *testing.T) {
	priv := generateEdDSASigner(t)
	message := []byte("test message for signing")
	sig := signAndVerify(t, priv, message)

	// Serialize and reparse, then verify again.
	buf := bytes.NewBuffer(nil)
	if err := sig.Serialize(buf); err != nil {
		t.Fatalf("Serialize: %s", err)
	}
	serialized := buf.Bytes()

	p, err := Read(bytes.NewBuffer(serialized))
	if err != nil {
		t.Fatalf("failed to reparse signature: %s", err)
	}
	parsed, ok := p.(*Signature)
	if !ok {
		t.Fatalf("didn't get a signature packet")
	}
	if parsed.SigType != SigTypeBinary || parsed.PubKeyAlgo != priv.PubKeyAlgo || parsed.Hash != crypto.SHA256 {
		t.Errorf("signature fields did not survive a round trip")
	}
	if parsed.IssuerKeyId == nil || *parsed.IssuerKeyId != priv.KeyId {
		t.Errorf("issuer key id did not survive a round trip")
	}

	h := parsed.Hash.New()
	h.Write(message)
	if err := priv.PublicKey.VerifySignature(h, parsed); err != nil {
		t.Errorf("reparsed signature fails to verify: %s", err)
	}

	// A reserialization must be byte-identical.
	buf2 := bytes.NewBuffer(nil)
	if err := parsed.Serialize(buf2); err != nil {
		t.Fatalf("re-Serialize: %s", err)
	}
	if !bytes.Equal(serialized, buf2.Bytes()) {
		t.Errorf("signature did not reserialize to identical bytes")
	}
}

func TestSignatureVerifyRejectsModifiedMessage(t *testing.T) {
	priv := generateEdDSASigner(t)
	message := make([]byte, 256)
	for i := range message {
		message[i] = byte(i)
	}
	sig := signAndVerify(t, priv, message)

	message[17] ^= 0x01
	h := sig.Hash.New()
	h.Write(message)
	if err := priv.PublicKey.VerifySignature(h, sig); err == nil {
		t.Errorf("signature over modified message verified")
	}
}

func TestSignatureUnknownCriticalSubpacket(t *testing.T) {
	sig := &Signature{}
	// creation time subpacket followed by an unknown critical subpacket of
	// type 100.
	subpackets := []byte{
		5, byte(creationTimeSubpacket), 0x0, 0x0, 0x0, 0x1,
		2, 0x80 | 100, 0x0,
	}
	err := parseSignatureSubpackets(sig, subpackets, true)
	if err == nil {
		t.Errorf("unknown critical subpacket was accepted")
	}

	// The same subpacket without the critical bit must parse.
	subpackets[7] = 100
	sig = &Signature{}
	if err := parseSignatureSubpackets(sig, subpackets, true); err != nil {
		t.Errorf("unknown non-critical subpacket was rejected: %s", err)
	}
}

func TestSignatureExpiry(t *testing.T) {
	lifetime := uint32(3600)
	sig := &Signature{
		CreationTime:    time.Unix(1e9, 0),
		SigLifetimeSecs: &lifetime,
	}
	if sig.SigExpired(time.Unix(1e9+60, 0)) {
		t.Errorf("fresh signature is reported as expired")
	}
	if !sig.SigExpired(time.Unix(1e9+3601, 0)) {
		t.Errorf("expired signature is not reported as expired")
	}
	if !sig.SigExpired(time.Unix(1e9-60, 0)) {
		t.Errorf("future signature is not rejected")
	}
}
