// Copyright 2019 ProtonTech AG.

package ocb

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	mathrand "math/rand"
	"testing"
)

const (
	blockLength = 16
	iterations  = 20
	maxLength   = 16384
)

// A subset of the AES-128 test vectors from RFC 7253, appendix A.
var rfc7253TestVectors = []struct {
	nonce, header, plaintext, ciphertext string
}{
	{
		"BBAA99887766554433221100",
		"",
		"",
		"785407BFFFC8AD9EDCC5520AC9111EE6",
	},
	{
		"BBAA99887766554433221101",
		"0001020304050607",
		"0001020304050607",
		"6820B3657B6F615A5725BDA0D3B4EB3A257C9AF1F8F03009",
	},
}

var rfc7253Key = "000102030405060708090A0B0C0D0E0F"

func aesCipher(key []byte) cipher.Block {
	block, err := aes.NewCipher(key)
	if err != nil {
		panic(err)
	}
	return block
}

func TestOCBImplementsAEADInterface(t *testing.T) {
	var ocbInstance ocb
	var aux interface{} = &ocbInstance
	_, ok := aux.(cipher.AEAD)
	if !ok {
		t.Errorf("Error: OCB does not implement AEAD interface")
	}
}

func TestEncryptDecryptRFC7253TestVectors(t *testing.T) {
	key, _ := hex.DecodeString(rfc7253Key)
	ocbInstance, errOcb := NewOCB(aesCipher(key))
	if errOcb != nil {
		panic(errOcb)
	}
	for _, test := range rfc7253TestVectors {
		nonce, _ := hex.DecodeString(test.nonce)
		adata, _ := hex.DecodeString(test.header)
		targetPt, _ := hex.DecodeString(test.plaintext)
		targetCt, _ := hex.DecodeString(test.ciphertext)

		ct := ocbInstance.Seal(nil, nonce, targetPt, adata)
		if !bytes.Equal(ct, targetCt) {
			t.Errorf(
				`RFC7253 Encrypt error (ciphertexts don't match):
				Got:  %X
				Want: %X`, ct, targetCt)
		}
		pt, err := ocbInstance.Open(nil, nonce, ct, adata)
		if err != nil {
			t.Errorf(`RFC7253 Decrypt refused valid tag`)
		}
		if !bytes.Equal(pt, targetPt) {
			t.Errorf(
				`RFC7253 Decrypt error (plaintexts don't match):
				Got:  %X
				Want: %X`, pt, targetPt)
		}
	}
}

func TestEncryptDecryptRandomVectors(t *testing.T) {
	allowedKeyLengths := []int{16, 24, 32}
	for _, keyLength := range allowedKeyLengths {
		for i := 0; i < iterations; i++ {
			pt := make([]byte, mathrand.Intn(maxLength))
			header := make([]byte, mathrand.Intn(maxLength))
			key := make([]byte, keyLength)
			nonce := make([]byte, defaultNonceSize)
			rand.Read(pt)
			rand.Read(header)
			rand.Read(key)
			rand.Read(nonce)

			ocbInstance, errOcb := NewOCB(aesCipher(key))
			if errOcb != nil {
				panic(errOcb)
			}
			ct := ocbInstance.Seal(nil, nonce, pt, header)
			decrypted, err := ocbInstance.Open(nil, nonce, ct, header)
			if err != nil {
				t.Errorf(`Decrypt refused valid tag (not displaying long output)`)
				break
			}
			if !bytes.Equal(pt, decrypted) {
				t.Errorf(`Random Encrypt/Decrypt error (plaintexts don't match)`)
				break
			}
		}
	}
}

func TestRejectTamperedCiphertext(t *testing.T) {
	for i := 0; i < iterations; i++ {
		pt := make([]byte, 1+mathrand.Intn(maxLength))
		header := make([]byte, mathrand.Intn(maxLength))
		key := make([]byte, blockLength)
		nonce := make([]byte, defaultNonceSize)
		rand.Read(pt)
		rand.Read(header)
		rand.Read(key)
		rand.Read(nonce)
		ocbInstance, errOcb := NewOCB(aesCipher(key))
		if errOcb != nil {
			panic(errOcb)
		}
		ct := ocbInstance.Seal(nil, nonce, pt, header)
		tampered := make([]byte, len(ct))
		copy(tampered, ct)
		for bytes.Equal(tampered, ct) {
			tampered[mathrand.Intn(len(ct))] = byte(mathrand.Intn(256))
		}
		_, err := ocbInstance.Open(nil, nonce, tampered, header)
		if err == nil {
			t.Errorf(`Tampered ciphertext was not refused decryption`)
			break
		}
	}
}

func TestParameters(t *testing.T) {
	key := make([]byte, blockLength)
	t.Run("Should return error on too long tagSize", func(st *testing.T) {
		if _, err := NewOCBWithNonceAndTagSize(aesCipher(key), 15, blockLength+1); err == nil {
			st.Errorf("No error was given")
		}
	})
	t.Run("Should return error on too long nonceSize", func(st *testing.T) {
		if _, err := NewOCBWithNonceAndTagSize(aesCipher(key), blockLength, 16); err == nil {
			st.Errorf("No error was given")
		}
	})
}
