package packet

import (
	"io"

	"github.com/the-djmaze/openpgpjs/openpgp/errors"
)

type Marker struct{}

const markerString = "PGP"

// parse just checks the expected content of a marker packet. The packet
// MUST be ignored when received, see RFC 4880, section 5.8.
func (m *Marker) parse(r io.Reader) error {
	var buf [3]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return err
	}
	if string(buf[:]) != markerString {
		return errors.StructuralError("invalid marker packet")
	}
	return nil
}

// SerializeMarker writes a marker packet to w.
func SerializeMarker(w io.Writer) error {
	err := serializeHeader(w, packetTypeMarker, len(markerString))
	if err != nil {
		return err
	}
	_, err = w.Write([]byte(markerString))
	return err
}
