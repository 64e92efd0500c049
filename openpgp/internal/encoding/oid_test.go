// Copyright 2017 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package encoding

import (
	"bytes"
	"testing"
)

var oidTests = []struct {
	encoded []byte
	bytes   []byte
}{
	// NIST P-256
	{
		encoded: []byte{0x8, 0x2A, 0x86, 0x48, 0xCE, 0x3D, 0x03, 0x01, 0x07},
		bytes:   []byte{0x2A, 0x86, 0x48, 0xCE, 0x3D, 0x03, 0x01, 0x07},
	},
	// Ed25519
	{
		encoded: []byte{0x9, 0x2B, 0x06, 0x01, 0x04, 0x01, 0xDA, 0x47, 0x0F, 0x01},
		bytes:   []byte{0x2B, 0x06, 0x01, 0x04, 0x01, 0xDA, 0x47, 0x0F, 0x01},
	},
}

func TestNewOID(t *testing.T) {
	for i, test := range oidTests {
		oid := NewOID(test.bytes)
		if !bytes.Equal(oid.Bytes(), test.bytes) {
			t.Errorf("#%d: got %v, want %v", i, oid.Bytes(), test.bytes)
		}
		if !bytes.Equal(oid.EncodedBytes(), test.encoded) {
			t.Errorf("#%d: got encoding %v, want %v", i, oid.EncodedBytes(), test.encoded)
		}
		if int(oid.EncodedLength()) != len(test.encoded) {
			t.Errorf("#%d: got encoded length %d, want %d", i, oid.EncodedLength(), len(test.encoded))
		}
	}
}

func TestOIDReadFrom(t *testing.T) {
	for i, test := range oidTests {
		oid := new(OID)
		if _, err := oid.ReadFrom(bytes.NewBuffer(test.encoded)); err != nil {
			t.Errorf("#%d: ReadFrom error: %s", i, err)
			continue
		}
		if !bytes.Equal(oid.Bytes(), test.bytes) {
			t.Errorf("#%d: got %v, want %v", i, oid.Bytes(), test.bytes)
		}
		if !bytes.Equal(oid.EncodedBytes(), test.encoded) {
			t.Errorf("#%d: got re-encoding %v, want %v", i, oid.EncodedBytes(), test.encoded)
		}
	}
}

func TestOIDReservedLength(t *testing.T) {
	if _, err := new(OID).ReadFrom(bytes.NewBuffer([]byte{0x0})); err == nil {
		t.Errorf("reserved zero length was accepted")
	}
	if _, err := new(OID).ReadFrom(bytes.NewBuffer([]byte{0xff, 0x1})); err == nil {
		t.Errorf("reserved 0xff length was accepted")
	}
}
