// Copyright 2014 Matthew Endsley
// All rights reserved
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted providing that the following conditions
// are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.

package keywrap

import (
	"bytes"
	"encoding/hex"
	"testing"
)

// Test vectors from RFC 3394, section 4.
var wrapTests = []struct {
	kek     string
	plain   string
	wrapped string
}{
	{
		// 4.1 Wrap 128 bits of Key Data with a 128-bit KEK
		"000102030405060708090a0b0c0d0e0f",
		"00112233445566778899aabbccddeeff",
		"1fa68b0a8112b447aef34bd8fb5a7b829d3e862371d2cfe5",
	},
	{
		// 4.3 Wrap 128 bits of Key Data with a 256-bit KEK
		"000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f",
		"00112233445566778899aabbccddeeff",
		"64e8c3f9ce0f5ba263e9777905818a2a93c8191e7d6e8ae7",
	},
	{
		// 4.6 Wrap 256 bits of Key Data with a 256-bit KEK
		"000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f",
		"00112233445566778899aabbccddeeff000102030405060708090a0b0c0d0e0f",
		"28c9f404c4b810f4cbccb35cfb87f8263f5786e2d80ed326cbc7f0e71a99f43bfb988b9b7a02dd21",
	},
}

func TestWrap(t *testing.T) {
	for i, test := range wrapTests {
		kek, _ := hex.DecodeString(test.kek)
		plain, _ := hex.DecodeString(test.plain)
		expected, _ := hex.DecodeString(test.wrapped)

		wrapped, err := Wrap(kek, plain)
		if err != nil {
			t.Errorf("#%d: failed to wrap: %s", i, err)
			continue
		}
		if !bytes.Equal(wrapped, expected) {
			t.Errorf("#%d: got %x, want %x", i, wrapped, expected)
		}
	}
}

func TestUnwrap(t *testing.T) {
	for i, test := range wrapTests {
		kek, _ := hex.DecodeString(test.kek)
		expected, _ := hex.DecodeString(test.plain)
		wrapped, _ := hex.DecodeString(test.wrapped)

		plain, err := Unwrap(kek, wrapped)
		if err != nil {
			t.Errorf("#%d: failed to unwrap: %s", i, err)
			continue
		}
		if !bytes.Equal(plain, expected) {
			t.Errorf("#%d: got %x, want %x", i, plain, expected)
		}
	}
}

func TestUnwrapCorrupted(t *testing.T) {
	kek, _ := hex.DecodeString(wrapTests[0].kek)
	wrapped, _ := hex.DecodeString(wrapTests[0].wrapped)
	wrapped[len(wrapped)-1] ^= 0x01
	if _, err := Unwrap(kek, wrapped); err != ErrUnwrapFailed {
		t.Errorf("corrupted ciphertext was unwrapped: %v", err)
	}
}

func TestWrapBadLengths(t *testing.T) {
	kek, _ := hex.DecodeString(wrapTests[0].kek)
	if _, err := Wrap(kek, make([]byte, 9)); err != ErrWrapPlaintext {
		t.Errorf("expected ErrWrapPlaintext, got %v", err)
	}
	if _, err := Unwrap(kek, make([]byte, 9)); err != ErrUnwrapCiphertext {
		t.Errorf("expected ErrUnwrapCiphertext, got %v", err)
	}
	if _, err := Wrap(make([]byte, 7), make([]byte, 16)); err != ErrInvalidKey {
		t.Errorf("expected ErrInvalidKey, got %v", err)
	}
}
