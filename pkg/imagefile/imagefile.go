// Package imagefile loads and saves EEPROM images as raw binary or Intel HEX.
package imagefile

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/marcinbor85/gohex"
)

// Format selects the on-disk encoding.
type Format int

const (
	FormatRaw Format = iota
	FormatIntelHex
)

func (f Format) String() string {
	if f == FormatIntelHex {
		return "ihex"
	}
	return "raw"
}

// Fill is the value of bytes not covered by any Intel HEX record, the same
// as an erased EEPROM cell.
const Fill = 0xFF

// MaxImageSize is the size of the 16-bit EEPROM address space. Intel HEX
// records beyond it cannot belong to an EEPROM image.
const MaxImageSize = 0x10000

// hexLineLength is the number of data bytes per Intel HEX record.
const hexLineLength = 16

// FormatOf picks the format from the file extension.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hex", ".ihex", ".ihx":
		return FormatIntelHex
	default:
		return FormatRaw
	}
}

// Load reads the image at path.
func Load(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	if FormatOf(path) == FormatIntelHex {
		data, err := ReadIntelHex(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return data, nil
	}
	return io.ReadAll(f)
}

// Save writes data to path in the format implied by its extension.
func Save(path string, data []byte) error {
	if FormatOf(path) == FormatRaw {
		return os.WriteFile(path, data, 0o644)
	}

	var buf bytes.Buffer
	if err := WriteIntelHex(&buf, data); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// ReadIntelHex flattens the data records of r into one image starting at
// address zero.
func ReadIntelHex(r io.Reader) ([]byte, error) {
	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(r); err != nil {
		return nil, fmt.Errorf("parse intel hex: %w", err)
	}
	var end uint64
	for _, seg := range mem.GetDataSegments() {
		if e := uint64(seg.Address) + uint64(len(seg.Data)); e > end {
			end = e
		}
	}
	if end == 0 {
		return []byte{}, nil
	}
	if end > MaxImageSize {
		return nil, fmt.Errorf("intel hex data ends at 0x%X, past the 0x%X byte EEPROM address space", end, MaxImageSize)
	}
	return mem.ToBinary(0, uint32(end), Fill), nil
}

// WriteIntelHex encodes data as Intel HEX records from address zero.
func WriteIntelHex(w io.Writer, data []byte) error {
	mem := gohex.NewMemory()
	if len(data) > 0 {
		if err := mem.AddBinary(0, data); err != nil {
			return fmt.Errorf("build intel hex: %w", err)
		}
	}
	if err := mem.DumpIntelHex(w, hexLineLength); err != nil {
		return fmt.Errorf("write intel hex: %w", err)
	}
	return nil
}
