// Package ecc implements a generic interface for ECDH, ECDSA, and EdDSA.
package ecc

import (
	"bytes"
	"crypto/elliptic"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/keybase/go-crypto/brainpool"
	"github.com/the-djmaze/openpgpjs/openpgp/internal/encoding"
)

type CurveInfo struct {
	GenName string
	Oid     *encoding.OID
	Curve   Curve
}

var Curves = []CurveInfo{
	{
		// NIST curve P-256
		GenName: "P256",
		Oid:     encoding.NewOID([]byte{0x2A, 0x86, 0x48, 0xCE, 0x3D, 0x03, 0x01, 0x07}),
		Curve:   NewGenericCurve(elliptic.P256(), NISTCurve),
	},
	{
		// NIST curve P-384
		GenName: "P384",
		Oid:     encoding.NewOID([]byte{0x2B, 0x81, 0x04, 0x00, 0x22}),
		Curve:   NewGenericCurve(elliptic.P384(), NISTCurve),
	},
	{
		// NIST curve P-521
		GenName: "P521",
		Oid:     encoding.NewOID([]byte{0x2B, 0x81, 0x04, 0x00, 0x23}),
		Curve:   NewGenericCurve(elliptic.P521(), NISTCurve),
	},
	{
		// SecP256k1
		GenName: "SecP256k1",
		Oid:     encoding.NewOID([]byte{0x2B, 0x81, 0x04, 0x00, 0x0A}),
		Curve:   NewGenericCurve(btcec.S256(), BitCurve),
	},
	{
		// Curve25519
		GenName: "Curve25519",
		Oid:     encoding.NewOID([]byte{0x2B, 0x06, 0x01, 0x04, 0x01, 0x97, 0x55, 0x01, 0x05, 0x01}),
		Curve:   NewCurve25519(),
	},
	{
		// Ed25519
		GenName: "Curve25519",
		Oid:     encoding.NewOID([]byte{0x2B, 0x06, 0x01, 0x04, 0x01, 0xDA, 0x47, 0x0F, 0x01}),
		Curve:   NewEd25519(),
	},
	{
		// BrainpoolP256r1
		GenName: "BrainpoolP256",
		Oid:     encoding.NewOID([]byte{0x2B, 0x24, 0x03, 0x03, 0x02, 0x08, 0x01, 0x01, 0x07}),
		Curve:   NewGenericCurve(brainpool.P256r1(), BrainpoolCurve),
	},
	{
		// BrainpoolP384r1
		GenName: "BrainpoolP384",
		Oid:     encoding.NewOID([]byte{0x2B, 0x24, 0x03, 0x03, 0x02, 0x08, 0x01, 0x01, 0x0B}),
		Curve:   NewGenericCurve(brainpool.P384r1(), BrainpoolCurve),
	},
	{
		// BrainpoolP512r1
		GenName: "BrainpoolP512",
		Oid:     encoding.NewOID([]byte{0x2B, 0x24, 0x03, 0x03, 0x02, 0x08, 0x01, 0x01, 0x0D}),
		Curve:   NewGenericCurve(brainpool.P512r1(), BrainpoolCurve),
	},
}

func FindByCurve(curve Curve) *CurveInfo {
	for idx := range Curves {
		curveInfo := &Curves[idx]
		if curveInfo.Curve.GetCurveType() != curve.GetCurveType() {
			continue
		}
		// The underlying elliptic.Curve implementations are singletons, so
		// generic curves can be told apart by identity rather than by name.
		registered, registeredGeneric := curveInfo.Curve.(*genericCurve)
		candidate, candidateGeneric := curve.(*genericCurve)
		if registeredGeneric != candidateGeneric {
			continue
		}
		if registeredGeneric && registered.Curve != candidate.Curve {
			continue
		}
		return curveInfo
	}
	return nil
}

func FindByOid(oid encoding.Field) *CurveInfo {
	var rawBytes = oid.Bytes()
	for idx := range Curves {
		curveInfo := &Curves[idx]
		if bytes.Equal(curveInfo.Oid.Bytes(), rawBytes) {
			return curveInfo
		}
	}
	return nil
}
