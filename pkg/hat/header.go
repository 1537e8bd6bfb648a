package hat

import (
	"encoding/binary"
	"fmt"
)

const (
	// HeaderSize is the length of the image header.
	HeaderSize = 12
	// AtomHeaderSize is the length of an atom record header.
	AtomHeaderSize = 8
	// CRCSize is the length of the checksum trailing each atom.
	CRCSize = 2

	// FormatVersion is the header version written by the board firmware.
	FormatVersion = 1
)

// Signature is the "R-Pi" tag, 0x69502d52 read little-endian.
var Signature = [4]byte{'R', '-', 'P', 'i'}

// Header is the fixed image prologue.
type Header struct {
	Signature   [4]byte
	Version     uint8
	Reserved    uint8
	AtomCount   uint16
	TotalLength uint32
}

// SignatureString returns the signature as text.
func (h Header) SignatureString() string {
	return string(h.Signature[:])
}

// HasSignature reports whether the image carries the "R-Pi" tag.
func (h Header) HasSignature() bool {
	return h.Signature == Signature
}

func (h Header) String() string {
	return fmt.Sprintf("signature=%q version=%d atoms=%d length=%d",
		h.SignatureString(), h.Version, h.AtomCount, h.TotalLength)
}

func parseHeader(b []byte) Header {
	var h Header
	copy(h.Signature[:], b[0:4])
	h.Version = b[4]
	h.Reserved = b[5]
	h.AtomCount = binary.LittleEndian.Uint16(b[6:8])
	h.TotalLength = binary.LittleEndian.Uint32(b[8:12])
	return h
}

func (h Header) appendTo(b []byte) []byte {
	b = append(b, h.Signature[:]...)
	b = append(b, h.Version, h.Reserved)
	b = binary.LittleEndian.AppendUint16(b, h.AtomCount)
	return binary.LittleEndian.AppendUint32(b, h.TotalLength)
}
