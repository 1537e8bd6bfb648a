package hat

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Image is a decoded EEPROM image.
type Image struct {
	Header Header
	Atoms  []*Atom
	// Consumed is the offset just past the last atom.
	Consumed int
}

// Decode parses b into a header and exactly Header.AtomCount atoms. Bytes
// past the last atom are ignored.
func Decode(b []byte) (*Image, error) {
	if len(b) < HeaderSize {
		return nil, &TruncatedImageError{What: "header", Need: HeaderSize, Have: len(b)}
	}
	img := &Image{Header: parseHeader(b)}

	cur := HeaderSize
	for i := 0; i < int(img.Header.AtomCount); i++ {
		if len(b)-cur < AtomHeaderSize {
			return nil, &TruncatedImageError{
				What:   fmt.Sprintf("atom %d header", i),
				Offset: cur,
				Need:   AtomHeaderSize,
				Have:   len(b) - cur,
			}
		}
		hdr := b[cur : cur+AtomHeaderSize]
		a := &Atom{
			Type:       AtomType(binary.LittleEndian.Uint16(hdr[0:2])),
			Count:      binary.LittleEndian.Uint16(hdr[2:4]),
			DataLength: binary.LittleEndian.Uint32(hdr[4:8]),
			Offset:     cur,
		}
		if a.DataLength < CRCSize {
			return nil, &MalformedAtomError{
				Index:  i,
				Offset: cur,
				Type:   a.Type,
				Reason: fmt.Sprintf("data length %d is shorter than the checksum", a.DataLength),
			}
		}
		avail := len(b) - cur - AtomHeaderSize
		if uint64(a.DataLength) > uint64(avail) {
			return nil, &TruncatedImageError{
				What:   fmt.Sprintf("atom %d data", i),
				Offset: cur + AtomHeaderSize,
				Need:   int(a.DataLength),
				Have:   avail,
			}
		}

		end := cur + AtomHeaderSize + int(a.DataLength)
		payloadEnd := end - CRCSize
		a.Data = b[cur+AtomHeaderSize : payloadEnd : payloadEnd]
		a.CRC = binary.LittleEndian.Uint16(b[payloadEnd:end])
		a.Computed = Checksum(b[cur:payloadEnd])
		a.Raw = b[cur:end:end]

		img.Atoms = append(img.Atoms, a)
		cur = end
	}
	img.Consumed = cur
	return img, nil
}

// DecodeReader reads r to EOF and decodes the result.
func DecodeReader(r io.Reader) (*Image, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("hat: read image: %w", err)
	}
	return Decode(b)
}

// Mismatches returns the atoms whose checksum does not match.
func (img *Image) Mismatches() []*Atom {
	var out []*Atom
	for _, a := range img.Atoms {
		if a.ChecksumMismatch() {
			out = append(out, a)
		}
	}
	return out
}

// Verify returns a *ChecksumError if any atom fails its checksum.
func (img *Image) Verify() error {
	if bad := img.Mismatches(); len(bad) > 0 {
		return &ChecksumError{Atoms: bad}
	}
	return nil
}

// Overrun reports whether the atoms extend past Header.TotalLength.
func (img *Image) Overrun() bool {
	return img.Consumed > int(img.Header.TotalLength)
}

// Atom returns the first atom of type t, or nil.
func (img *Image) Atom(t AtomType) *Atom {
	for _, a := range img.Atoms {
		if a.Type == t {
			return a
		}
	}
	return nil
}

// NewImage returns an empty image with the "R-Pi" signature.
func NewImage(version uint8) *Image {
	img := &Image{Header: Header{Signature: Signature, Version: version, TotalLength: HeaderSize}}
	img.Consumed = HeaderSize
	return img
}

// AddAtom appends an atom with a valid checksum and keeps the header counts
// in step.
func (img *Image) AddAtom(t AtomType, data []byte) *Atom {
	a := &Atom{
		Type:       t,
		Count:      uint16(len(img.Atoms)),
		DataLength: uint32(len(data) + CRCSize),
		Data:       append([]byte(nil), data...),
		Offset:     img.Consumed,
	}
	hdr := a.headerBytes()
	a.CRC = Checksum(hdr, a.Data)
	a.Computed = a.CRC
	a.Raw = binary.LittleEndian.AppendUint16(append(hdr, a.Data...), a.CRC)

	img.Atoms = append(img.Atoms, a)
	img.Consumed += len(a.Raw)
	img.Header.AtomCount = uint16(len(img.Atoms))
	img.Header.TotalLength = uint32(img.Consumed)
	return a
}

// Bytes serialises the image. Atoms are written with their stored CRC, so a
// deliberately corrupted CRC survives the round trip.
func (img *Image) Bytes() []byte {
	h := img.Header
	if h.Signature == ([4]byte{}) {
		h.Signature = Signature
	}
	h.AtomCount = uint16(len(img.Atoms))
	total := HeaderSize
	for _, a := range img.Atoms {
		total += AtomHeaderSize + len(a.Data) + CRCSize
	}
	h.TotalLength = uint32(total)

	out := h.appendTo(make([]byte, 0, total))
	for _, a := range img.Atoms {
		out = append(out, a.headerBytes()...)
		out = append(out, a.Data...)
		out = binary.LittleEndian.AppendUint16(out, a.CRC)
	}
	return out
}
