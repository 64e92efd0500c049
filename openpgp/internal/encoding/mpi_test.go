// Copyright 2017 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package encoding

import (
	"bytes"
	"math/big"
	"testing"
)

var mpiTests = []struct {
	encoded   []byte
	bytes     []byte
	bitLength uint16
}{
	// RFC 4880, Section 3.2: the string of octets [00 01 01] forms an
	// MPI with the value 1, and the string [00 09 01 FF] forms an MPI with
	// the value of 511.
	{
		encoded:   []byte{0x0, 0x1, 0x1},
		bytes:     []byte{0x1},
		bitLength: 1,
	},
	{
		encoded:   []byte{0x0, 0x9, 0x1, 0xff},
		bytes:     []byte{0x1, 0xff},
		bitLength: 9,
	},
	// Leading zero bytes are stripped on write.
	{
		encoded:   []byte{0x0, 0x8, 0xff},
		bytes:     []byte{0xff},
		bitLength: 8,
	},
}

func TestNewMPI(t *testing.T) {
	for i, test := range mpiTests {
		mpi := NewMPI(append([]byte{0x0, 0x0}, test.bytes...))
		if !bytes.Equal(mpi.bytes, test.bytes) {
			t.Errorf("#%d: got %v, want %v", i, mpi.bytes, test.bytes)
		}
		if mpi.bitLength != test.bitLength {
			t.Errorf("#%d: got bit length %d, want %d", i, mpi.bitLength, test.bitLength)
		}
		if !bytes.Equal(mpi.EncodedBytes(), test.encoded) {
			t.Errorf("#%d: got encoding %v, want %v", i, mpi.EncodedBytes(), test.encoded)
		}
	}
}

func TestMPIReadFrom(t *testing.T) {
	for i, test := range mpiTests {
		mpi := new(MPI)
		if _, err := mpi.ReadFrom(bytes.NewBuffer(test.encoded)); err != nil {
			t.Errorf("#%d: ReadFrom error: %s", i, err)
			continue
		}
		if mpi.BitLength() != test.bitLength {
			t.Errorf("#%d: got bit length %d, want %d", i, mpi.BitLength(), test.bitLength)
		}
		if !bytes.Equal(mpi.EncodedBytes(), test.encoded) {
			t.Errorf("#%d: got re-encoding %v, want %v", i, mpi.EncodedBytes(), test.encoded)
		}
	}
}

func TestMPISetBig(t *testing.T) {
	n := new(big.Int).SetInt64(0x1ffff)
	mpi := new(MPI).SetBig(n)
	if mpi.BitLength() != 17 {
		t.Errorf("got bit length %d, want 17", mpi.BitLength())
	}
	round := new(MPI)
	if _, err := round.ReadFrom(bytes.NewBuffer(mpi.EncodedBytes())); err != nil {
		t.Fatalf("ReadFrom error: %s", err)
	}
	if new(big.Int).SetBytes(round.Bytes()).Cmp(n) != 0 {
		t.Errorf("MPI did not round-trip through its encoding")
	}
}
