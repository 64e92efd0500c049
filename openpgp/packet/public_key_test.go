// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package packet

import (
	"bytes"
	"crypto/rand"
	"crypto/sha1"
	"testing"
	"time"

	"github.com/the-djmaze/openpgpjs/openpgp/ecdsa"
	"github.com/the-djmaze/openpgpjs/openpgp/eddsa"
	"github.com/the-djmaze/openpgpjs/openpgp/internal/ecc"
)

func roundTripPublicKey(t *testing.T, pk *PublicKey) *PublicKey {
	buf := bytes.NewBuffer(nil)
	if err := pk.Serialize(buf); err != nil {
		t.Fatalf("Serialize: %s", err)
	}
	serialized := buf.Bytes()

	p, err := Read(bytes.NewBuffer(serialized))
	if err != nil {
		t.Fatalf("failed to reparse public key: %s", err)
	}
	parsed, ok := p.(*PublicKey)
	if !ok {
		t.Fatalf("didn't get a public key packet")
	}

	if !bytes.Equal(parsed.Fingerprint, pk.Fingerprint) {
		t.Errorf("fingerprint changed during round trip: %x vs %x", parsed.Fingerprint, pk.Fingerprint)
	}
	if parsed.KeyId != pk.KeyId {
		t.Errorf("key id changed during round trip: %x vs %x", parsed.KeyId, pk.KeyId)
	}

	// Serializing the parsed key must reproduce the original bytes.
	buf2 := bytes.NewBuffer(nil)
	if err := parsed.Serialize(buf2); err != nil {
		t.Fatalf("re-Serialize: %s", err)
	}
	if !bytes.Equal(serialized, buf2.Bytes()) {
		t.Errorf("public key did not reserialize to identical bytes")
	}
	return parsed
}

func TestEdDSAPublicKeyRoundTrip(t *testing.T) {
	priv, err := eddsa.GenerateKey(rand.Reader, ecc.NewEd25519())
	if err != nil {
		t.Fatalf("failed to generate key: %s", err)
	}
	pk := NewEdDSAPublicKey(time.Unix(1e9, 0), &priv.PublicKey)
	roundTripPublicKey(t, pk)
}

func TestECDSAPublicKeyRoundTrip(t *testing.T) {
	for _, name := range []string{"P256", "P384", "P521"} {
		curve := ecc.FindECDSAByGenName(name)
		if curve == nil {
			t.Fatalf("unknown curve %s", name)
		}
		priv, err := ecdsa.GenerateKey(rand.Reader, curve)
		if err != nil {
			t.Fatalf("failed to generate %s key: %s", name, err)
		}
		pk := NewECDSAPublicKey(time.Unix(1e9, 0), &priv.PublicKey)
		parsed := roundTripPublicKey(t, pk)
		if curveName, err := parsed.Curve(); err != nil || string(curveName) != name {
			t.Errorf("parsed curve %q (err %v), want %q", curveName, err, name)
		}
	}
}

// The V4 fingerprint must be the SHA-1 of 0x99, a two-octet length, and the
// public key body, no matter how the key was constructed.
func TestFingerprintDefinition(t *testing.T) {
	priv, err := eddsa.GenerateKey(rand.Reader, ecc.NewEd25519())
	if err != nil {
		t.Fatalf("failed to generate key: %s", err)
	}
	pk := NewEdDSAPublicKey(time.Unix(1e9, 0), &priv.PublicKey)

	body := bytes.NewBuffer(nil)
	if err := pk.serializeWithoutHeaders(body); err != nil {
		t.Fatalf("serializeWithoutHeaders: %s", err)
	}
	h := sha1.New()
	h.Write([]byte{0x99, byte(body.Len() >> 8), byte(body.Len())})
	h.Write(body.Bytes())
	if !bytes.Equal(h.Sum(nil), pk.Fingerprint) {
		t.Errorf("fingerprint is not the SHA-1 of the canonical prefix")
	}
}

func TestKeyIdStrings(t *testing.T) {
	priv, err := eddsa.GenerateKey(rand.Reader, ecc.NewEd25519())
	if err != nil {
		t.Fatalf("failed to generate key: %s", err)
	}
	pk := NewEdDSAPublicKey(time.Unix(1e9, 0), &priv.PublicKey)
	long := pk.KeyIdString()
	short := pk.KeyIdShortString()
	if len(long) != 16 || len(short) != 8 {
		t.Fatalf("unexpected id lengths: %q %q", long, short)
	}
	if long[8:] != short {
		t.Errorf("short id %q is not the tail of %q", short, long)
	}
}
