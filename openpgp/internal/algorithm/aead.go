// Copyright (C) 2019 ProtonTech AG
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package algorithm

import (
	"crypto/cipher"

	"github.com/the-djmaze/openpgpjs/eax"
	"github.com/the-djmaze/openpgpjs/ocb"
)

// AEADMode defines the Authenticated Encryption with Associated Data mode of
// operation.
type AEADMode uint8

// Supported modes of operation (see RFC4880bis [EAX] and RFC7253). The id
// 100 is a private/experimental allocation for AES-GCM, kept for
// compatibility with implementations that emitted it; its use should be
// gated by configuration.
const (
	AEADModeEAX             = AEADMode(1)
	AEADModeOCB             = AEADMode(2)
	AEADModeExperimentalGCM = AEADMode(100)
)

// TagLength returns the length in bytes of authentication tags, or 0 for an
// unknown mode.
func (mode AEADMode) TagLength() int {
	switch mode {
	case AEADModeEAX, AEADModeOCB, AEADModeExperimentalGCM:
		return 16
	}
	return 0
}

// NonceLength returns the length in bytes of nonces, or 0 for an unknown
// mode.
func (mode AEADMode) NonceLength() int {
	switch mode {
	case AEADModeEAX:
		return 16
	case AEADModeOCB:
		return 15
	case AEADModeExperimentalGCM:
		return 12
	}
	return 0
}

// New returns a fresh instance of the given mode.
func (mode AEADMode) New(block cipher.Block) (alg cipher.AEAD) {
	var err error
	switch mode {
	case AEADModeEAX:
		alg, err = eax.NewEAX(block)
	case AEADModeOCB:
		alg, err = ocb.NewOCB(block)
	case AEADModeExperimentalGCM:
		alg, err = cipher.NewGCM(block)
	default:
		panic("Unsupported AEAD mode")
	}
	if err != nil {
		panic(err.Error())
	}
	return alg
}
