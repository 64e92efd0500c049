// Package ecc implements a generic interface for ECDH, ECDSA, and EdDSA.
package ecc

import (
	"crypto/subtle"
	"io"
	"math/big"

	x25519lib "github.com/cloudflare/circl/dh/x25519"
	"github.com/the-djmaze/openpgpjs/openpgp/errors"
)

type curve25519 struct{}

func NewCurve25519() *curve25519 {
	return &curve25519{}
}

func (c *curve25519) GetCurveType() CurveType {
	return Curve25519
}

func (c *curve25519) GetCurveName() string {
	return "curve25519"
}

// GetBuildKeyAttempts covers old OpenPGP.js / go crypto interoperability
// quirks in the RFC 6637 KDF input, see ecdh.buildKey.
func (c *curve25519) GetBuildKeyAttempts() int {
	return 3
}

// MarshalPoint emits the public point in the prefixed native wire format,
// 0x40 || native bytes, so that the leading bit survives MPI encoding.
func (c *curve25519) MarshalPoint(x, y *big.Int) []byte {
	encodedKey := make([]byte, 1+x25519lib.Size)
	encodedKey[0] = 0x40
	xBytes := x.Bytes()
	copy(encodedKey[1+x25519lib.Size-len(xBytes):], xBytes)
	return encodedKey
}

func (c *curve25519) UnmarshalPoint(point []byte) (x, y *big.Int) {
	if len(point) != 1+x25519lib.Size || point[0] != 0x40 {
		return nil, nil
	}
	return new(big.Int).SetBytes(point[1:]), new(big.Int)
}

// MarshalByteSecret reverses the little-endian scalar into the big-endian
// order that the wire MPI uses.
func (c *curve25519) MarshalByteSecret(d []byte) []byte {
	out := make([]byte, x25519lib.Size)
	copyReversed(out, d)
	return out
}

func (c *curve25519) UnmarshalByteSecret(d []byte) []byte {
	if len(d) > x25519lib.Size {
		return nil
	}
	// Handle stripped leading zeroes
	out := make([]byte, x25519lib.Size)
	copyReversed(out, d)
	return out
}

// generateKeyPairBytes generates a private-public key-pair. 'priv' is a
// private key; a little-endian scalar belonging to the set
// 2^{254} + 8 * [0, 2^{251}), in order to avoid the small subgroup of the
// curve. 'pub' is simply 'priv' * G where G is the base point.
// See https://cr.yp.to/ecdh.html and RFC7748, sec 5.
func (c *curve25519) generateKeyPairBytes(rand io.Reader) (priv, pub x25519lib.Key, err error) {
	_, err = io.ReadFull(rand, priv[:])
	if err != nil {
		return
	}

	// The masking is done internally by KeyGen, but OpenPGP implementations
	// require that private keys be pre-masked.
	priv[0] &= 248
	priv[31] &= 127
	priv[31] |= 64

	x25519lib.KeyGen(&pub, &priv)
	return
}

func (c *curve25519) GenerateECDH(rand io.Reader) (x, y *big.Int, secret []byte, err error) {
	priv, pub, err := c.generateKeyPairBytes(rand)
	if err != nil {
		return
	}

	secret = make([]byte, x25519lib.Size)
	copyReversed(secret, priv[:])

	x = new(big.Int).SetBytes(pub[:])
	y = new(big.Int)
	return
}

func (c *curve25519) Encaps(rand io.Reader, x, y *big.Int) (ephemeral, sharedSecret []byte, err error) {
	// RFC6637 §8: "Generate an ephemeral key pair {v, V=vG}"
	ephemeralPrivate, ephemeralPublic, err := c.generateKeyPairBytes(rand)
	if err != nil {
		return nil, nil, err
	}

	// RFC6637 §8: "Obtain the authenticated recipient public key R"
	var pubKey x25519lib.Key
	xBytes := x.Bytes()
	if len(xBytes) > x25519lib.Size {
		return nil, nil, errors.KeyInvalidError("ecc: invalid curve25519 public point")
	}
	copy(pubKey[x25519lib.Size-len(xBytes):], xBytes)

	// RFC6637 §8: "Compute the shared point S = vR"
	var sharedPoint x25519lib.Key
	x25519lib.Shared(&sharedPoint, &ephemeralPrivate, &pubKey)

	// RFC6637 §8: "VB = convert point V to the octet string", in the
	// prefixed native wire format 0x40 || bytes.
	var vsG [1 + x25519lib.Size]byte
	vsG[0] = 0x40
	copy(vsG[1:], ephemeralPublic[:])

	return vsG[:], sharedPoint[:], nil
}

func (c *curve25519) Decaps(vsG, secret []byte) (sharedSecret []byte, err error) {
	// vsG must be an elliptic curve point in the prefixed native wire
	// format, 0x40 || bytes.
	if len(vsG) != 1+x25519lib.Size || vsG[0] != 0x40 {
		return nil, errors.KeyInvalidError("ecc: invalid curve25519 ephemeral point")
	}
	var ephemeralPublic x25519lib.Key
	copy(ephemeralPublic[:], vsG[1:])

	// The secret is stored big-endian in the wire MPI; reverse it back into
	// the native little-endian scalar.
	var decodedPrivate x25519lib.Key
	copyReversed(decodedPrivate[:], secret)

	// RFC6637 §8: "the recipient obtains the shared secret by calculating
	// S = rV = rvG, where (r,R) is the recipient's key pair."
	var sharedPoint x25519lib.Key
	x25519lib.Shared(&sharedPoint, &decodedPrivate, &ephemeralPublic)

	return sharedPoint[:], nil
}

func (c *curve25519) Validate(x, y *big.Int, secret []byte) (err error) {
	var pk, sk x25519lib.Key
	copyReversed(sk[:], secret)
	x25519lib.KeyGen(&pk, &sk)

	xBytes := x.Bytes()
	var publicPoint x25519lib.Key
	copy(publicPoint[x25519lib.Size-len(xBytes):], xBytes)

	if subtle.ConstantTimeCompare(publicPoint[:], pk[:]) == 0 {
		return errors.KeyInvalidError("ecc: invalid curve25519 public point")
	}

	return nil
}

func copyReversed(out []byte, in []byte) {
	l := len(in)
	for i := 0; i < l; i++ {
		out[i] = in[l-i-1]
	}
}
