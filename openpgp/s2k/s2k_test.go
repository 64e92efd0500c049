// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package s2k

import (
	"bytes"
	"crypto"
	"crypto/rand"
	"crypto/sha1"
	_ "crypto/sha256"
	_ "crypto/sha512"
	"encoding/hex"
	"testing"

	_ "golang.org/x/crypto/ripemd160"
)

var saltedTests = []struct {
	in, out string
}{
	{"hello", "10295ac1"},
	{"world", "ac587a5e"},
	{"foo", "4dda8077"},
	{"bar", "bd8aac6b9ea9cae04eae6a91c6133b58b5d9a61c14f355516ed9370456"},
	{"x", "f1d3f289"},
	{"xxxxxxxxxxxxxxxxxxxxxxx", "e00d7b45"},
}

func TestSalted(t *testing.T) {
	h := sha1.New()
	salt := [4]byte{1, 2, 3, 4}

	for i, test := range saltedTests {
		expected, _ := hex.DecodeString(test.out)
		out := make([]byte, len(expected))
		Salted(out, h, []byte(test.in), salt[:])
		if !bytes.Equal(expected, out) {
			t.Errorf("#%d, got: %x want: %x", i, out, expected)
		}
	}
}

var iteratedTests = []struct {
	in, out string
}{
	{"hello", "83126105"},
	{"world", "6fa317f9"},
	{"foo", "8fbc35b9"},
	{"bar", "2af5a99b54f093789fd657f19bd245af7604d0f6ae06f66602a46a08ae"},
	{"x", "5a684dfe"},
	{"xxxxxxxxxxxxxxxxxxxxxxx", "18955174"},
}

func TestIterated(t *testing.T) {
	h := sha1.New()
	salt := [4]byte{4, 3, 2, 1}

	for i, test := range iteratedTests {
		expected, _ := hex.DecodeString(test.out)
		out := make([]byte, len(expected))
		Iterated(out, h, []byte(test.in), salt[:], 31)
		if !bytes.Equal(expected, out) {
			t.Errorf("#%d, got: %x want: %x", i, out, expected)
		}
	}
}

func TestSerializeOK(t *testing.T) {
	hashes := []crypto.Hash{crypto.SHA1, crypto.SHA256, crypto.SHA384, crypto.SHA512, crypto.SHA224}
	for _, h := range hashes {
		for _, count := range []int{-1, 0, 1024, 65536, 4096, 65011712} {
			testSerializeConfigOK(t, &Config{Hash: h, S2KCount: count})
		}
	}
}

func testSerializeConfigOK(t *testing.T, c *Config) {
	buf := bytes.NewBuffer(nil)
	key := make([]byte, 16)
	passphrase := []byte("testing")
	err := Serialize(buf, key, rand.Reader, passphrase, c)
	if err != nil {
		t.Errorf("failed to serialize with config %+v: %s", c, err)
		return
	}

	f, err := Parse(buf)
	if err != nil {
		t.Errorf("failed to reparse: %s", err)
		return
	}
	key2 := make([]byte, len(key))
	f(key2, passphrase)
	if !bytes.Equal(key2, key) {
		t.Errorf("keys don't match: %x (serialied) vs %x (parsed)", key, key2)
	}
}

func TestEncodeDecodeCount(t *testing.T) {
	if decodeCount(224) != 16777216 {
		t.Errorf("the common default count does not decode to 16777216, got %d", decodeCount(224))
	}
	for _, count := range []int{65536, 1048576, 65011712, 1000000} {
		encoded := encodeCount(count)
		if decodeCount(encoded) < count {
			t.Errorf("encoded count %d is not rounded up: got %d", count, decodeCount(encoded))
		}
	}
}

func TestParseGnuDummy(t *testing.T) {
	// mode 101, SHA1, "GNU" + 1
	spec := []byte{101, 2, 'G', 'N', 'U', 1}
	params, err := ParseIntoParams(bytes.NewBuffer(spec))
	if err != nil {
		t.Fatalf("failed to parse GNU dummy s2k: %s", err)
	}
	if !params.Dummy() {
		t.Errorf("GNU dummy s2k not recognized as dummy")
	}
	if _, err := params.Function(); err == nil {
		t.Errorf("GNU dummy s2k returned a key derivation function")
	}
}

func TestParamsRoundTrip(t *testing.T) {
	params, err := Generate(rand.Reader, &Config{Hash: crypto.SHA256, S2KCount: 65536})
	if err != nil {
		t.Fatalf("failed to generate params: %s", err)
	}
	buf := bytes.NewBuffer(nil)
	if err := params.Serialize(buf); err != nil {
		t.Fatalf("failed to serialize: %s", err)
	}
	parsed, err := ParseIntoParams(buf)
	if err != nil {
		t.Fatalf("failed to reparse: %s", err)
	}
	if *parsed != *params {
		t.Errorf("parameters do not round-trip: %+v vs %+v", parsed, params)
	}
}
