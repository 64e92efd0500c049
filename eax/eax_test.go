// Copyright 2019 ProtonTech AG.
//
// This file only tests EAX mode when instantiated with AES-128.

package eax

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

// Test vectors from https://web.cs.ucdavis.edu/~rogaway/papers/eax.pdf
var testVectors = []struct {
	msg, key, nonce, header, ciphertext string
}{
	{
		"",
		"233952DEE4D5ED5F9B9C6D6FF80FF478",
		"62EC67F9C3A4A407FCB2A8C49031A8B3",
		"6BFB914FD07EAE6B",
		"E037830E8389F27B025A2D6527E79D01",
	},
	{
		"F7FB",
		"91945D3F4DCBEE0BF45EF52255F095A4",
		"BECAF043B0A23D843194BA972C66DEBD",
		"FA3BFD4806EB53FA",
		"19DD5C4C9331049D0BDAB0277408F67967E5",
	},
	{
		"1A47CB4933",
		"01F74AD64077F2E704C0F60ADA3DD523",
		"70C3DB4F0D26368400A10ED05D2BFF5E",
		"234A3463C1264AC6",
		"D851D5BAE03A59F238A23E39199DC9266626C40F80",
	},
	{
		"481C9E39B1",
		"D07CF6CBB7F313BDDE66B727AFD3C5E8",
		"8408DFFF3C1A2B1292DC199E46B7D617",
		"33CCE2EABFF5A79D",
		"632A9D131AD4C168A4225D8E1FF755939974A7BEDE",
	},
	{
		"40D0C07DA5E4",
		"35B6D0580005BBC12B0587124557D2C2",
		"FDB6B06676EEDC5C61D74276E1F8E816",
		"AEB96EAEBE2970E9",
		"071DFE16C675CB0677E536F73AFE6A14B74EE49844DD",
	},
	{
		"4DE3B35C3FC039245BD1FB7D",
		"BD8E6E11475E60B268784C38C62FEB22",
		"6EAC5C93072D8E8513F750935E46DA1B",
		"D4482D1CA78DCE0F",
		"835BB4F15D743E350E728414ABB8644FD6CCB86947C5E10590210A4F",
	},
	{
		"8B0A79306C9CE7ED99DAE4F87F8DD61636",
		"7C77D6E813BED5AC98BAA417477A2E7D",
		"1A8C98DCD73D38393B2BF1569DEEFC19",
		"65D2017990D62528",
		"02083E3979DA014812F59F11D52630DA30137327D10649B0AA6E1C181DB617D7F2",
	},
	{
		"1BDA122BCE8A8DBAF1877D962B8592DD2D56",
		"5FFF20CAFAB119CA2FC73549E20F5B0D",
		"DDE59B97D722156D4D9AFF2BC7559826",
		"54B9F04E6A09189A",
		"2EC47B2C4954A489AFC7BA4897EDCDAE8CC33B60450599BD02C96382902AEE7F0B",
	},
	{
		"6CF36720872B8513F6EAB1A8A44438D5EF11",
		"A4A4782BCFFD3EC5E7EF6D8C34A56123",
		"B781FCF2F75FA5A8DE97A9CA48E522EC",
		"899A175897561D7E",
		"0DE18FD0FDD91E7AF19F1D8EE8733938B1E8E7F6D2231618102FDB7FE55FF1991700",
	},
	{
		"CA40D7446E545FFAED3BD12A740A659FFBBB3CEAB7",
		"8395FCF1E95BEBD697BD010BC766AAC3",
		"22E7ADD93CFC6393C57EC0B3C17D6B44",
		"126735FCC320D25A",
		"CB8920F87A6C75CFF39627B56E3ED197C552D295A7CFC46AFC253B4652B1AF3795B124AB6E",
	},
}

func aesCipher(key []byte) cipher.Block {
	block, err := aes.NewCipher(key)
	if err != nil {
		panic(err)
	}
	return block
}

func TestEAXImplementsAEADInterface(t *testing.T) {
	var eaxInstance eax
	var aux interface{} = &eaxInstance
	_, ok := aux.(cipher.AEAD)
	if !ok {
		t.Errorf("Error: EAX does not implement AEAD interface")
	}
}

// Test vectors from the EAX paper
func TestEncryptDecryptEAXTestVectors(t *testing.T) {
	for _, test := range testVectors {
		adata, _ := hex.DecodeString(test.header)
		key, _ := hex.DecodeString(test.key)
		nonce, _ := hex.DecodeString(test.nonce)
		targetPt, _ := hex.DecodeString(test.msg)
		targetCt, _ := hex.DecodeString(test.ciphertext)
		eax, errEax := NewEAX(aesCipher(key))
		if errEax != nil {
			panic(errEax)
		}

		ct := eax.Seal(nil, nonce, targetPt, adata)
		if !bytes.Equal(ct, targetCt) {
			t.Errorf(
				`Test vectors Encrypt error (ciphertexts don't match):
				Got:  %X
				Want: %X`, ct, targetCt)
		}
		pt, err := eax.Open(nil, nonce, ct, adata)
		if err != nil {
			t.Errorf(
				`Decrypt refused valid tag:
				ciphertext %X
				key %X
				nonce %X
				header %X`, ct, key, nonce, adata)
		}
		if !bytes.Equal(pt, targetPt) {
			t.Errorf(
				`Test vectors Decrypt error (plaintexts don't match):
				Got:  %X
				Want: %X`, pt, targetPt)
		}
	}
}

// Generates random examples and tests correctness
func TestEncryptDecryptRandomVectorsWithPreviousData(t *testing.T) {
	// Considering AES
	allowedKeyLengths := []int{16, 24, 32}
	for _, keyLength := range allowedKeyLengths {
		for i := 0; i < iterations; i++ {
			pt := make([]byte, mathrand.Intn(maxLength))
			header := make([]byte, mathrand.Intn(maxLength))
			key := make([]byte, keyLength)
			nonce := make([]byte, 1+mathrand.Intn(blockLength))
			previousData := make([]byte, mathrand.Intn(maxLength))
			// Populate items with crypto/rand
			rand.Read(pt)
			rand.Read(header)
			rand.Read(key)
			rand.Read(nonce)
			rand.Read(previousData)

			eax, errEax := NewEAX(aesCipher(key))
			if errEax != nil {
				panic(errEax)
			}
			newData := eax.Seal(previousData, nonce, pt, header)
			ct := newData[len(previousData):]
			decrypted, err := eax.Open(nil, nonce, ct, header)
			if err != nil {
				t.Errorf(
					`Decrypt refused valid tag (not displaying long output)`)
				break
			}
			if !bytes.Equal(pt, decrypted) {
				t.Errorf(
					`Random Encrypt/Decrypt error (plaintexts don't match)`)
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
		nonce := make([]byte, blockLength)
		rand.Read(pt)
		rand.Read(header)
		rand.Read(key)
		rand.Read(nonce)
		eax, errEax := NewEAX(aesCipher(key))
		if errEax != nil {
			panic(errEax)
		}
		ct := eax.Seal(nil, nonce, pt, header)
		// Change one byte of ct (could affect either the tag or the ciphertext)
		tampered := make([]byte, len(ct))
		copy(tampered, ct)
		for bytes.Equal(tampered, ct) {
			tampered[mathrand.Intn(len(ct))] = byte(mathrand.Intn(256))
		}
		_, err := eax.Open(nil, nonce, tampered, header)
		if err == nil {
			t.Errorf(`Tampered ciphertext was not refused decryption`)
			break
		}
	}
}

func TestParameters(t *testing.T) {
	t.Run("Should return error on too long tagSize", func(st *testing.T) {
		tagSize := blockLength + 1 + mathrand.Intn(12)
		nonceSize := 1 + mathrand.Intn(16)
		key := make([]byte, blockLength)
		_, err := NewEAXWithNonceAndTagSize(aesCipher(key), nonceSize, tagSize)
		if err == nil {
			st.Errorf("No error was given")
		}
	})
	t.Run("Should not give error with allowed custom parameters", func(st *testing.T) {
		key := make([]byte, blockLength)
		nonceSize := mathrand.Intn(32) + 1
		tagSize := 12 + mathrand.Intn(blockLength-11)
		_, err := NewEAXWithNonceAndTagSize(aesCipher(key), nonceSize, tagSize)
		if err != nil {
			st.Errorf("An error was returned")
		}
	})
}
