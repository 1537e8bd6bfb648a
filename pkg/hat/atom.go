package hat

import (
	"encoding/binary"
	"fmt"
)

// AtomType identifies the payload of an atom.
type AtomType uint16

const (
	AtomInvalid    AtomType = 0x0000
	AtomVendorInfo AtomType = 0x0001
	AtomGPIOMap    AtomType = 0x0002
	AtomLinuxDTB   AtomType = 0x0003
	AtomCustom     AtomType = 0x0004
	AtomInvalid2   AtomType = 0xFFFF
)

func (t AtomType) String() string {
	switch t {
	case AtomInvalid, AtomInvalid2:
		return "invalid"
	case AtomVendorInfo:
		return "vendor info"
	case AtomGPIOMap:
		return "GPIO map"
	case AtomLinuxDTB:
		return "Linux DT blob"
	case AtomCustom:
		return "custom"
	default:
		return fmt.Sprintf("unknown(0x%04X)", uint16(t))
	}
}

// Atom is one checksummed record. Data and Raw alias the decoded image.
type Atom struct {
	Type       AtomType
	Count      uint16
	DataLength uint32
	Data       []byte
	CRC        uint16 // stored
	Computed   uint16 // over header and Data

	Offset int    // image offset of the record
	Raw    []byte // the full 8+DataLength record
}

// ChecksumMismatch reports whether the stored CRC disagrees with the data.
func (a *Atom) ChecksumMismatch() bool {
	return a.CRC != a.Computed
}

func (a *Atom) headerBytes() []byte {
	b := make([]byte, 0, AtomHeaderSize)
	b = binary.LittleEndian.AppendUint16(b, uint16(a.Type))
	b = binary.LittleEndian.AppendUint16(b, a.Count)
	return binary.LittleEndian.AppendUint32(b, a.DataLength)
}

// Decode parses the payload into its typed form: *VendorInfo, *GPIOMap or
// *CalibrationMap. Other types yield (nil, nil).
func (a *Atom) Decode() (interface{}, error) {
	var (
		v   interface{}
		err error
	)
	switch a.Type {
	case AtomVendorInfo:
		v, err = ParseVendorInfo(a.Data)
	case AtomGPIOMap:
		v, err = ParseGPIOMap(a.Data)
	case AtomCustom:
		v, err = ParseCalibrationMap(a.Data)
	default:
		return nil, nil
	}
	if err != nil {
		if me, ok := err.(*MalformedAtomError); ok {
			me.Index, me.Offset = int(a.Count), a.Offset
		}
		return nil, err
	}
	return v, nil
}
