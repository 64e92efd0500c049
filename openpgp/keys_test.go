// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package openpgp

import (
	"bytes"
	"testing"
	"time"

	"github.com/the-djmaze/openpgpjs/openpgp/packet"
)

func ed25519Config() *packet.Config {
	return &packet.Config{
		Algorithm: packet.PubKeyAlgoEdDSA,
		Curve:     packet.Curve25519,
	}
}

func newTestEntity(t *testing.T) *Entity {
	e, err := NewEntity("Alice", "", "alice@example.com", ed25519Config())
	if err != nil {
		t.Fatalf("NewEntity: %s", err)
	}
	return e
}

func TestNewEntityStructure(t *testing.T) {
	e := newTestEntity(t)
	if e.PrimaryKey.PubKeyAlgo != packet.PubKeyAlgoEdDSA {
		t.Errorf("primary key algorithm: got %d", e.PrimaryKey.PubKeyAlgo)
	}
	if len(e.Subkeys) != 1 {
		t.Fatalf("expected 1 subkey, got %d", len(e.Subkeys))
	}
	if e.Subkeys[0].PublicKey.PubKeyAlgo != packet.PubKeyAlgoECDH {
		t.Errorf("subkey algorithm: got %d", e.Subkeys[0].PublicKey.PubKeyAlgo)
	}
	ident := e.PrimaryIdentity()
	if ident == nil || ident.UserId.Email != "alice@example.com" {
		t.Errorf("missing or wrong primary identity")
	}
}

func TestKeySelection(t *testing.T) {
	e := newTestEntity(t)
	if err := e.AddSigningSubkey(ed25519Config()); err != nil {
		t.Fatalf("AddSigningSubkey: %s", err)
	}

	now := time.Now()

	encKey, ok := e.EncryptionKey(now)
	if !ok {
		t.Fatalf("no encryption key found")
	}
	if encKey.PublicKey.PubKeyAlgo != packet.PubKeyAlgoECDH || !encKey.PublicKey.IsSubkey {
		t.Errorf("EncryptionKey did not select the encryption subkey")
	}

	signKey, ok := e.SigningKey(now)
	if !ok {
		t.Fatalf("no signing key found")
	}
	if !signKey.PublicKey.IsSubkey {
		t.Errorf("SigningKey did not select the signing subkey")
	}
	if signKey.SelfSignature.EmbeddedSignature == nil {
		t.Errorf("signing subkey binding lacks a cross-signature")
	}
}

func TestKeySerializeRoundTrip(t *testing.T) {
	e := newTestEntity(t)
	if err := e.AddSigningSubkey(ed25519Config()); err != nil {
		t.Fatalf("AddSigningSubkey: %s", err)
	}

	buf := bytes.NewBuffer(nil)
	if err := e.Serialize(buf); err != nil {
		t.Fatalf("Serialize: %s", err)
	}

	el, err := ReadKeyRing(bytes.NewBuffer(buf.Bytes()))
	if err != nil {
		t.Fatalf("ReadKeyRing: %s", err)
	}
	if len(el) != 1 {
		t.Fatalf("expected 1 entity, got %d", len(el))
	}
	parsed := el[0]
	if !bytes.Equal(parsed.PrimaryKey.Fingerprint, e.PrimaryKey.Fingerprint) {
		t.Errorf("primary fingerprint changed during round trip")
	}
	if len(parsed.Subkeys) != len(e.Subkeys) {
		t.Fatalf("expected %d subkeys, got %d", len(e.Subkeys), len(parsed.Subkeys))
	}
	for i := range parsed.Subkeys {
		if !bytes.Equal(parsed.Subkeys[i].PublicKey.Fingerprint, e.Subkeys[i].PublicKey.Fingerprint) {
			t.Errorf("subkey %d fingerprint changed during round trip", i)
		}
	}

	// A second serialization must be byte identical.
	buf2 := bytes.NewBuffer(nil)
	if err := parsed.Serialize(buf2); err != nil {
		t.Fatalf("re-Serialize: %s", err)
	}
	if !bytes.Equal(buf.Bytes(), buf2.Bytes()) {
		t.Errorf("keyring did not reserialize to identical bytes")
	}
}

func TestPrivateKeySerializeRoundTrip(t *testing.T) {
	e := newTestEntity(t)

	buf := bytes.NewBuffer(nil)
	if err := e.SerializePrivateWithoutSigning(buf, nil); err != nil {
		t.Fatalf("SerializePrivateWithoutSigning: %s", err)
	}

	el, err := ReadKeyRing(buf)
	if err != nil {
		t.Fatalf("ReadKeyRing: %s", err)
	}
	parsed := el[0]
	if parsed.PrivateKey == nil || parsed.Subkeys[0].PrivateKey == nil {
		t.Fatalf("private key material was lost")
	}
	if !bytes.Equal(parsed.PrimaryKey.Fingerprint, e.PrimaryKey.Fingerprint) {
		t.Errorf("primary fingerprint changed during round trip")
	}
}

func TestRevokedIdentity(t *testing.T) {
	e := newTestEntity(t)
	if err := e.AddUserId("Alice", "work", "alice@corp.example", ed25519Config()); err != nil {
		t.Fatalf("AddUserId: %s", err)
	}

	revokedName := ""
	for name := range e.Identities {
		if e.Identities[name].UserId.Email == "alice@corp.example" {
			revokedName = name
		}
	}
	ident := e.Identities[revokedName]

	revocation := &packet.Signature{
		Version:      4,
		SigType:      packet.SigTypeCertificationRevocation,
		PubKeyAlgo:   e.PrimaryKey.PubKeyAlgo,
		Hash:         ed25519Config().Hash(),
		CreationTime: time.Now(),
		IssuerKeyId:  &e.PrimaryKey.KeyId,
	}
	if err := revocation.SignUserId(ident.UserId.Id, e.PrimaryKey, e.PrivateKey, nil); err != nil {
		t.Fatalf("signing revocation: %s", err)
	}
	ident.Revocations = append(ident.Revocations, revocation)
	ident.Signatures = append(ident.Signatures, revocation)

	now := time.Now().Add(time.Second)
	var valid []*Identity
	for _, id := range e.Identities {
		if !id.Revoked(now) {
			valid = append(valid, id)
		}
	}
	if len(valid) != 1 || valid[0].UserId.Email != "alice@example.com" {
		t.Errorf("expected exactly the non-revoked identity to remain valid")
	}

	// The revocation must survive a serialization round trip.
	buf := bytes.NewBuffer(nil)
	if err := e.Serialize(buf); err != nil {
		t.Fatalf("Serialize: %s", err)
	}
	el, err := ReadKeyRing(buf)
	if err != nil {
		t.Fatalf("ReadKeyRing: %s", err)
	}
	parsedIdent, ok := el[0].Identities[revokedName]
	if !ok {
		t.Fatalf("revoked identity disappeared")
	}
	if !parsedIdent.Revoked(now) {
		t.Errorf("identity revocation was lost in serialization")
	}
}

func TestEntityRevocation(t *testing.T) {
	e := newTestEntity(t)
	now := time.Now()
	if e.Revoked(now) {
		t.Fatalf("fresh entity is reported revoked")
	}
	if err := e.Revoke(packet.KeyRetired, "retired", ed25519Config()); err != nil {
		t.Fatalf("Revoke: %s", err)
	}
	if !e.Revoked(now.Add(time.Second)) {
		t.Errorf("revoked entity is not reported revoked")
	}
	if _, ok := e.EncryptionKey(now.Add(time.Second)); ok {
		t.Errorf("revoked entity still offers an encryption key")
	}
}

func TestEntityUpdateMerge(t *testing.T) {
	e := newTestEntity(t)

	buf := bytes.NewBuffer(nil)
	if err := e.Serialize(buf); err != nil {
		t.Fatalf("Serialize: %s", err)
	}
	el, err := ReadKeyRing(buf)
	if err != nil {
		t.Fatalf("ReadKeyRing: %s", err)
	}
	copied := el[0]

	// Grow the copy with an extra identity, then merge it back.
	if err := e.AddUserId("Alice", "work", "alice@corp.example", ed25519Config()); err != nil {
		t.Fatalf("AddUserId: %s", err)
	}
	if err := copied.Update(e); err != nil {
		t.Fatalf("Update: %s", err)
	}
	if len(copied.Identities) != 2 {
		t.Errorf("expected 2 identities after merge, got %d", len(copied.Identities))
	}

	// Merging the same data twice must not duplicate signatures.
	before := len(copied.PrimaryIdentity().Signatures)
	if err := copied.Update(e); err != nil {
		t.Fatalf("second Update: %s", err)
	}
	if got := len(copied.PrimaryIdentity().Signatures); got != before {
		t.Errorf("merge duplicated signatures: %d vs %d", got, before)
	}

	// Entities with different primary keys must not merge.
	other := newTestEntity(t)
	if err := copied.Update(other); err == nil {
		t.Errorf("merge of different primary keys was accepted")
	}
}
