// Copyright 2012 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package packet

import (
	"crypto"
	"crypto/rand"
	"io"
	"math/big"
	"time"

	"github.com/the-djmaze/openpgpjs/openpgp/s2k"
)

var (
	defaultRejectPublicKeyAlgorithms = map[PublicKeyAlgorithm]bool{
		PubKeyAlgoElGamal: true,
		PubKeyAlgoDSA:     true,
	}
	defaultRejectHashAlgorithms = map[crypto.Hash]bool{
		crypto.MD5:       true,
		crypto.RIPEMD160: true,
	}
	defaultRejectMessageHashAlgorithms = map[crypto.Hash]bool{
		crypto.SHA1:      true,
		crypto.MD5:       true,
		crypto.RIPEMD160: true,
	}
	defaultRejectCurves = map[Curve]bool{
		CurveSecP256k1: true,
	}
)

// Config collects a number of parameters along with sensible defaults.
// A nil *Config is valid and results in all default values.
type Config struct {
	// Rand provides the source of entropy.
	// If nil, the crypto/rand Reader is used.
	Rand io.Reader
	// DefaultHash is the default hash function to be used.
	// If zero, SHA-256 is used.
	DefaultHash crypto.Hash
	// DefaultCipher is the cipher to be used.
	// If zero, AES-256 is used.
	DefaultCipher CipherFunction
	// Time returns the current time as the number of seconds since the
	// epoch. If Time is nil, time.Now is used.
	Time func() time.Time
	// DefaultCompressionAlgo is the compression algorithm to be
	// applied to the plaintext before encryption. If zero, no
	// compression is done.
	DefaultCompressionAlgo CompressionAlgo
	// CompressionConfig configures the compression settings.
	CompressionConfig *CompressionConfig
	// S2KCount is only used for symmetric encryption. It
	// determines the strength of the passphrase stretching when
	// the said passphrase is hashed to produce a key. S2KCount
	// should be between 65536 and 65011712, inclusive. If Config
	// is nil or S2KCount is 0, the value 16777216 used. Not all
	// values in the above range can be represented. S2KCount will
	// be rounded up to the next representable value if it cannot
	// be encoded exactly. See RFC 4880 Section 3.7.1.3.
	S2KCount int
	// RSABits is the number of bits in new RSA keys made with NewEntity.
	// If zero, then 2048 bit keys are created.
	RSABits int
	// The public key algorithm to use - will always create a signing primary
	// key and encryption subkey.
	Algorithm PublicKeyAlgorithm
	// RSAPrimes contains known primes that, when set, are used instead of
	// freshly generated ones when creating RSA keys. Intended for tests.
	RSAPrimes []*big.Int
	// Curve configures the desired packet.Curve if the Algorithm is
	// PubKeyAlgoECDSA, PubKeyAlgoEdDSA, or PubKeyAlgoECDH. If empty
	// Curve25519 is used.
	Curve Curve
	// AEADConfig configures the use of the new AEAD Encrypted Data Packet,
	// defined in the yet to be finalized RFC4880bis. If nil, the Symmetrically
	// Encrypted Integrity Protected Data Packet (with MDC) is used instead.
	// Note that, because this feature is not yet part of the final RFC, the
	// packet is not compatible with other OpenPGP implementations.
	AEADConfig *AEADConfig
	// V5Keys configures version 5 key generation. Version 5 keys are
	// always accepted on parsing.
	V5Keys bool
	// "The validity period of the key. This is the number of seconds after
	// the key creation time that the key expires. If this is not present
	// or has a value of zero, the key never expires. This is found only on
	// a self-signature.""
	// https://tools.ietf.org/html/rfc4880#section-5.2.3.6
	KeyLifetimeSecs uint32
	// "The validity period of the signature. This is the number of seconds
	// after the signature creation time that the signature expires. If
	// this is not present or has a value of zero, it never expires."
	// https://tools.ietf.org/html/rfc4880#section-5.2.3.10
	SigLifetimeSecs uint32
	// SigningKeyId is used to specify the signing key to use (by Key ID).
	// By default, the signing key is selected automatically, preferring
	// signing subkeys if available.
	SigningKeyId uint64
	// MinRSABits is the minimum RSA key size, in bits, that is accepted
	// for signing and encrypting. If zero, 2047 bits is required.
	MinRSABits uint16
	// RejectPublicKeyAlgorithms is the set of public key algorithms that
	// are not accepted.
	RejectPublicKeyAlgorithms map[PublicKeyAlgorithm]bool
	// RejectHashAlgorithms is the set of hash algorithms that are not
	// accepted in any signature.
	RejectHashAlgorithms map[crypto.Hash]bool
	// RejectMessageHashAlgorithms is the set of hash algorithms that are
	// not accepted in message signatures, in addition to
	// RejectHashAlgorithms.
	RejectMessageHashAlgorithms map[crypto.Hash]bool
	// RejectCurves is the set of elliptic curves that are not accepted.
	RejectCurves map[Curve]bool
	// InsecureAllowUnauthenticatedMessages controls, whether it is tolerated to read
	// encrypted messages without Modification Detection Code (MDC).
	// MDC is mandated by the IETF OpenPGP Crypto Refresh draft and has long been implemented
	// in most OpenPGP implementations. Messages without MDC are considered unnecessarily
	// insecure and should be prevented whenever possible.
	// In case one needs to deal with messages from very old OpenPGP implementations, there
	// might be no other way than to tolerate the missing MDC. Setting this flag, allows this
	// mode of operation. It should be considered a measure of last resort.
	InsecureAllowUnauthenticatedMessages bool
	// InsecureAllowDecryptionWithSigningKeys allows decryption with keys marked as signing keys.
	// This setting is potentially insecure, but it is needed as some libraries
	// ignored key flags when selecting a key for encryption.
	// Without it, keys whose self-signature flags permit neither kind of encryption are skipped when decrypting.
	InsecureAllowDecryptionWithSigningKeys bool
	// ConstantTimePKCS1Decryption of RSA (PKCS#1 v1.5) session keys replaces a
	// failed decryption with a pseudo-random session key, so that the
	// decryption error surfaces later as an integrity failure in constant
	// time. See "Chosen Ciphertext Attacks Against Protocols Based on the
	// RSA Encryption Standard PKCS #1", Bleichenbacher, Crypto '98.
	ConstantTimePKCS1Decryption bool
	// ConstantTimePKCS1DecryptionSupportedSymmetricAlgorithms is the set of
	// symmetric algorithms a random session key may be generated for when
	// ConstantTimePKCS1Decryption is enabled. All algorithms in the set must
	// share the same key size.
	ConstantTimePKCS1DecryptionSupportedSymmetricAlgorithms map[CipherFunction]bool
	// AllowExperimentalGCM permits writing AEAD packets with the
	// non-standard, private-use GCM mode id; packets with that id are read
	// whatever this setting is. Because the id is from the
	// private/experimental range, future registry revisions may reassign it.
	AllowExperimentalGCM bool
}

// CompressionConfig contains compressor configuration settings.
type CompressionConfig struct {
	// Level is the compression level to use. It must be set to
	// between -1 and 9, with -1 causing the compressor to use the
	// default compression level, 0 causing the compressor to use
	// no compression and 1 to 9 representing increasing (better,
	// slower) compression levels. If Level is less than -1 or
	// more then 9, a non-nil error will be returned during
	// encryption. See the constants above for convenient common
	// settings for Level.
	Level int
}

func (c *Config) Random() io.Reader {
	if c == nil || c.Rand == nil {
		return rand.Reader
	}
	return c.Rand
}

func (c *Config) Hash() crypto.Hash {
	if c == nil || uint(c.DefaultHash) == 0 {
		return crypto.SHA256
	}
	return c.DefaultHash
}

func (c *Config) Cipher() CipherFunction {
	if c == nil || uint8(c.DefaultCipher) == 0 {
		return CipherAES256
	}
	return c.DefaultCipher
}

func (c *Config) Now() time.Time {
	if c == nil || c.Time == nil {
		return time.Now().Truncate(time.Second)
	}
	return c.Time().Truncate(time.Second)
}

// KeyLifetime returns the validity period of the key.
func (c *Config) KeyLifetime() uint32 {
	if c == nil {
		return 0
	}
	return c.KeyLifetimeSecs
}

// SigLifetime returns the validity period of the signature.
func (c *Config) SigLifetime() uint32 {
	if c == nil {
		return 0
	}
	return c.SigLifetimeSecs
}

func (c *Config) Compression() CompressionAlgo {
	if c == nil {
		return CompressionNone
	}
	return c.DefaultCompressionAlgo
}

func (c *Config) PasswordHashIterations() int {
	if c == nil || c.S2KCount == 0 {
		return 0
	}
	return c.S2KCount
}

func (c *Config) RSAModulusBits() int {
	if c == nil || c.RSABits == 0 {
		return 2048
	}
	return c.RSABits
}

func (c *Config) PublicKeyAlgorithm() PublicKeyAlgorithm {
	if c == nil || c.Algorithm == 0 {
		return PubKeyAlgoRSA
	}
	return c.Algorithm
}

func (c *Config) CurveName() Curve {
	if c == nil || c.Curve == "" {
		return Curve25519
	}
	return c.Curve
}

func (c *Config) AEAD() *AEADConfig {
	if c == nil {
		return nil
	}
	return c.AEADConfig
}

func (c *Config) S2K() *s2k.Config {
	if c == nil {
		return nil
	}
	return &s2k.Config{
		Hash:     c.Hash(),
		S2KCount: c.S2KCount,
	}
}

func (c *Config) SigningKey() uint64 {
	if c == nil {
		return 0
	}
	return c.SigningKeyId
}

func (c *Config) MinimumRSABits() uint16 {
	if c == nil || c.MinRSABits == 0 {
		return 2047
	}
	return c.MinRSABits
}

func (c *Config) RejectPublicKeyAlgorithm(alg PublicKeyAlgorithm) bool {
	var rejectedAlgorithms map[PublicKeyAlgorithm]bool
	if c == nil || c.RejectPublicKeyAlgorithms == nil {
		// Default
		rejectedAlgorithms = defaultRejectPublicKeyAlgorithms
	} else {
		rejectedAlgorithms = c.RejectPublicKeyAlgorithms
	}
	return rejectedAlgorithms[alg]
}

func (c *Config) RejectHashAlgorithm(hash crypto.Hash) bool {
	var rejectedAlgorithms map[crypto.Hash]bool
	if c == nil || c.RejectHashAlgorithms == nil {
		// Default
		rejectedAlgorithms = defaultRejectHashAlgorithms
	} else {
		rejectedAlgorithms = c.RejectHashAlgorithms
	}
	return rejectedAlgorithms[hash]
}

func (c *Config) RejectMessageHashAlgorithm(hash crypto.Hash) bool {
	var rejectedAlgorithms map[crypto.Hash]bool
	if c == nil || c.RejectMessageHashAlgorithms == nil {
		// Default
		rejectedAlgorithms = defaultRejectMessageHashAlgorithms
	} else {
		rejectedAlgorithms = c.RejectMessageHashAlgorithms
	}
	return rejectedAlgorithms[hash]
}

func (c *Config) RejectCurve(curve Curve) bool {
	var rejectedCurves map[Curve]bool
	if c == nil || c.RejectCurves == nil {
		// Default
		rejectedCurves = defaultRejectCurves
	} else {
		rejectedCurves = c.RejectCurves
	}
	return rejectedCurves[curve]
}

func (c *Config) AllowUnauthenticatedMessages() bool {
	if c == nil {
		return false
	}
	return c.InsecureAllowUnauthenticatedMessages
}

func (c *Config) AllowDecryptionWithSigningKeys() bool {
	if c == nil {
		return false
	}
	return c.InsecureAllowDecryptionWithSigningKeys
}

func (c *Config) AllowedExperimentalGCM() bool {
	if c == nil {
		return false
	}
	return c.AllowExperimentalGCM
}

func (c *Config) V5() bool {
	if c == nil {
		return false
	}
	return c.V5Keys
}

func (c *Config) ConstantTimePKCS1DecryptionEnabled() bool {
	if c == nil {
		return false
	}
	return c.ConstantTimePKCS1Decryption
}

func (c *Config) ConstantTimePKCS1DecryptionSupportedCiphers() map[CipherFunction]bool {
	if c == nil || c.ConstantTimePKCS1DecryptionSupportedSymmetricAlgorithms == nil {
		// Default cipher for the constant-time processing is AES-256.
		return map[CipherFunction]bool{
			CipherAES256: true,
		}
	}
	return c.ConstantTimePKCS1DecryptionSupportedSymmetricAlgorithms
}
