package hat

import (
	"fmt"
	"strings"
)

// TruncatedImageError indicates the image ended before a declared length.
type TruncatedImageError struct {
	What   string // "header", "atom 2 header", ...
	Offset int
	Need   int
	Have   int
}

func (e *TruncatedImageError) Error() string {
	return fmt.Sprintf("hat: truncated image: %s at 0x%04X needs %d bytes, %d available",
		e.What, e.Offset, e.Need, e.Have)
}

// MalformedAtomError indicates an atom whose fields describe an impossible
// layout. Index is -1 when the payload was parsed outside an image.
type MalformedAtomError struct {
	Index  int
	Offset int
	Type   AtomType
	Reason string
}

func (e *MalformedAtomError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("hat: malformed %s atom: %s", e.Type, e.Reason)
	}
	return fmt.Sprintf("hat: malformed atom %d (%s) at 0x%04X: %s", e.Index, e.Type, e.Offset, e.Reason)
}

func payloadError(t AtomType, format string, args ...interface{}) error {
	return &MalformedAtomError{Index: -1, Offset: -1, Type: t, Reason: fmt.Sprintf(format, args...)}
}

// ChecksumError lists every atom whose stored CRC disagrees with its
// contents. Decode never returns it; Image.Verify does.
type ChecksumError struct {
	Atoms []*Atom
}

func (e *ChecksumError) Error() string {
	parts := make([]string, len(e.Atoms))
	for i, a := range e.Atoms {
		parts[i] = fmt.Sprintf("atom %d (%s) stored 0x%04X computed 0x%04X", a.Count, a.Type, a.CRC, a.Computed)
	}
	return fmt.Sprintf("hat: %d checksum mismatch(es): %s", len(e.Atoms), strings.Join(parts, "; "))
}
