// Copyright (C) 2019 ProtonTech AG

package packet

import (
	"bytes"
	"crypto/rand"
	"io"
	mathrand "math/rand"
	"testing"
)

var aeadTestModes = []AEADMode{AEADModeEAX, AEADModeOCB, AEADModeExperimentalGCM}

func aeadConfig(mode AEADMode, chunkSize uint64) *Config {
	return &Config{
		AEADConfig:           &AEADConfig{DefaultMode: mode, ChunkSize: chunkSize},
		AllowExperimentalGCM: true,
	}
}

func encryptAEAD(t *testing.T, plaintext, key []byte, mode AEADMode, chunkSize uint64) []byte {
	config := aeadConfig(mode, chunkSize)
	buf := bytes.NewBuffer(nil)
	w, err := SerializeAEADEncrypted(buf, key, CipherAES256, mode, config)
	if err != nil {
		t.Fatalf("SerializeAEADEncrypted: %s", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		t.Fatalf("writing plaintext: %s", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %s", err)
	}
	return buf.Bytes()
}

func decryptAEAD(t *testing.T, serialized, key []byte) ([]byte, error) {
	p, err := Read(bytes.NewBuffer(serialized))
	if err != nil {
		t.Fatalf("Read: %s", err)
	}
	ae, ok := p.(*AEADEncrypted)
	if !ok {
		t.Fatalf("didn't find AEADEncrypted packet")
	}
	r, err := ae.Decrypt(CipherAES256, key)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

func TestAEADEncryptedRoundTrip(t *testing.T) {
	for _, mode := range aeadTestModes {
		for _, plaintextLen := range []int{0, 1, 63, 64, 65, 1000} {
			key := make([]byte, 32)
			rand.Read(key)
			plaintext := make([]byte, plaintextLen)
			rand.Read(plaintext)

			serialized := encryptAEAD(t, plaintext, key, mode, 64)
			decrypted, err := decryptAEAD(t, serialized, key)
			if err != nil {
				t.Errorf("mode %d len %d: decryption failed: %s", mode, plaintextLen, err)
				continue
			}
			if !bytes.Equal(decrypted, plaintext) {
				t.Errorf("mode %d len %d: plaintexts don't match", mode, plaintextLen)
			}
		}
	}
}

// Encrypting the same plaintext with two different chunk sizes must give
// different ciphertexts that both decrypt to the original data.
func TestAEADChunkSizeIndependence(t *testing.T) {
	key := make([]byte, 32)
	rand.Read(key)
	plaintext := make([]byte, 4000)
	rand.Read(plaintext)

	first := encryptAEAD(t, plaintext, key, AEADModeEAX, 64)
	second := encryptAEAD(t, plaintext, key, AEADModeEAX, 4096)

	if bytes.Equal(first, second) {
		t.Errorf("different chunk sizes produced identical ciphertexts")
	}

	for i, serialized := range [][]byte{first, second} {
		decrypted, err := decryptAEAD(t, serialized, key)
		if err != nil {
			t.Fatalf("#%d: decryption failed: %s", i, err)
		}
		if !bytes.Equal(decrypted, plaintext) {
			t.Errorf("#%d: plaintexts don't match", i)
		}
	}
}

func TestAEADTamperedCiphertext(t *testing.T) {
	key := make([]byte, 32)
	rand.Read(key)
	plaintext := make([]byte, 2000)
	rand.Read(plaintext)

	serialized := encryptAEAD(t, plaintext, key, AEADModeOCB, 64)

	tampered := make([]byte, len(serialized))
	copy(tampered, serialized)
	// Flip a byte somewhere inside the encrypted chunks, past the headers.
	offset := len(tampered)/2 + mathrand.Intn(len(tampered)/4)
	tampered[offset] ^= 0xff

	if _, err := decryptAEAD(t, tampered, key); err == nil {
		t.Errorf("tampered chunk was not rejected")
	}
}

// A final tag failure must abort the stream even though earlier chunks have
// already been emitted.
func TestAEADTamperedFinalTag(t *testing.T) {
	key := make([]byte, 32)
	rand.Read(key)
	plaintext := make([]byte, 150)
	rand.Read(plaintext)

	serialized := encryptAEAD(t, plaintext, key, AEADModeEAX, 64)

	tampered := make([]byte, len(serialized))
	copy(tampered, serialized)
	tampered[len(tampered)-1] ^= 0x01

	if _, err := decryptAEAD(t, tampered, key); err == nil {
		t.Fatalf("tampered final tag was not rejected")
	}
}

func TestAEADGCMRequiresConfig(t *testing.T) {
	key := make([]byte, 32)
	rand.Read(key)
	buf := bytes.NewBuffer(nil)
	config := &Config{AEADConfig: &AEADConfig{DefaultMode: AEADModeExperimentalGCM}}
	if _, err := SerializeAEADEncrypted(buf, key, CipherAES256, AEADModeExperimentalGCM, config); err == nil {
		t.Errorf("experimental GCM write was allowed without the config flag")
	}
}
