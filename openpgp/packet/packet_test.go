// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package packet

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"io"
	"testing"

	"github.com/the-djmaze/openpgpjs/openpgp/errors"
)

var readLengthTests = []struct {
	hexInput  string
	length    int64
	isPartial bool
	err       error
}{
	{"", 0, false, io.ErrUnexpectedEOF},
	{"1f", 31, false, nil},
	{"c0", 0, false, io.ErrUnexpectedEOF},
	{"c101", 449, false, nil},
	{"e0", 1, true, nil},
	{"e1", 2, true, nil},
	{"e2", 4, true, nil},
	{"ff", 0, false, io.ErrUnexpectedEOF},
	{"ff00", 0, false, io.ErrUnexpectedEOF},
	{"ff0000", 0, false, io.ErrUnexpectedEOF},
	{"ff000000", 0, false, io.ErrUnexpectedEOF},
	{"ff00000000", 0, false, nil},
	{"ff12345678", 305419896, false, nil},
}

func TestReadLength(t *testing.T) {
	for i, test := range readLengthTests {
		input, _ := hex.DecodeString(test.hexInput)
		length, isPartial, err := readLength(bytes.NewBuffer(input))
		if test.err != nil {
			if err != test.err {
				t.Errorf("%d: expected different error got: %s", i, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%d: unexpected error: %s", i, err)
			continue
		}
		if length != test.length || isPartial != test.isPartial {
			t.Errorf("%d: bad result got:(%d,%t) want:(%d,%t)", i, length, isPartial, test.length, test.isPartial)
		}
	}
}

func TestSerializeLengthRoundTrip(t *testing.T) {
	lengths := []int{0, 1, 191, 192, 193, 8383, 8384, 8385, 65536, 1 << 20}
	for _, l := range lengths {
		buf := bytes.NewBuffer(nil)
		if err := serializeLength(buf, l); err != nil {
			t.Fatalf("serializeLength(%d): %s", l, err)
		}
		got, isPartial, err := readLength(buf)
		if err != nil {
			t.Fatalf("readLength after serializeLength(%d): %s", l, err)
		}
		if isPartial {
			t.Errorf("serializeLength(%d) produced a partial length", l)
		}
		if got != int64(l) {
			t.Errorf("length %d round-tripped to %d", l, got)
		}
	}
}

var partialLengthReaderTests = []struct {
	hexInput  string
	err       error
	hexOutput string
}{
	{"e0", io.ErrUnexpectedEOF, ""},
	{"e001", io.ErrUnexpectedEOF, ""},
	{"e0010102", nil, "0102"},
	{"ff00000000", nil, ""},
	{"e10102e1030400", nil, "01020304"},
	{"e101", io.ErrUnexpectedEOF, ""},
}

func TestPartialLengthReader(t *testing.T) {
	for i, test := range partialLengthReaderTests {
		input, _ := hex.DecodeString(test.hexInput)
		r := &partialLengthReader{bytes.NewBuffer(input), 0, true}
		out, err := io.ReadAll(r)
		if test.err != nil {
			if err != test.err {
				t.Errorf("%d: expected %s got: %s", i, test.err, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%d: unexpected error: %s", i, err)
			continue
		}

		got := hex.EncodeToString(out)
		if got != test.hexOutput {
			t.Errorf("%d: got: %s want: %s", i, got, test.hexOutput)
		}
	}
}

func TestPartialLengthWriterRoundTrip(t *testing.T) {
	for _, plaintextLen := range []int{0, 1, 511, 512, 513, 4096, 76543} {
		plaintext := make([]byte, plaintextLen)
		rand.Read(plaintext)

		buf := bytes.NewBuffer(nil)
		w := &partialLengthWriter{w: noOpCloser{buf}}
		if _, err := w.Write(plaintext); err != nil {
			t.Fatalf("Write: %s", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("Close: %s", err)
		}

		r := &partialLengthReader{bytes.NewBuffer(buf.Bytes()), 0, true}
		out, err := io.ReadAll(r)
		if err != nil {
			t.Fatalf("read back: %s", err)
		}
		if !bytes.Equal(out, plaintext) {
			t.Errorf("%d bytes did not round-trip through partial lengths", plaintextLen)
		}
	}
}

func TestReadHeaderOldFormat(t *testing.T) {
	// Old format literal data packet (tag 11), one-byte length.
	input, _ := hex.DecodeString("ac06620005414243")
	tag, length, contents, err := readHeader(bytes.NewBuffer(input))
	if err != nil {
		t.Fatalf("readHeader: %s", err)
	}
	if tag != packetTypeLiteralData {
		t.Errorf("got tag %d, want %d", tag, packetTypeLiteralData)
	}
	if length != 6 {
		t.Errorf("got length %d, want 6", length)
	}
	body, err := io.ReadAll(contents)
	if err != nil {
		t.Fatalf("reading contents: %s", err)
	}
	if len(body) != 6 {
		t.Errorf("got %d content bytes, want 6", len(body))
	}
}

func TestUnknownCriticalPacket(t *testing.T) {
	// New format packet with an unassigned critical tag (39).
	input := []byte{0x80 | 0x40 | 39, 0x01, 0x00}
	_, err := Read(bytes.NewBuffer(input))
	if _, ok := err.(errors.CriticalUnknownPacketTypeError); !ok {
		t.Errorf("expected CriticalUnknownPacketTypeError, got %v", err)
	}

	// Packet tags from 40 to 63 are non-critical.
	input = []byte{0x80 | 0x40 | 41, 0x01, 0x00}
	_, err = Read(bytes.NewBuffer(input))
	if _, ok := err.(errors.UnknownPacketTypeError); !ok {
		t.Errorf("expected UnknownPacketTypeError, got %v", err)
	}
}

