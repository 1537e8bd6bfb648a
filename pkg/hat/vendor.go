package hat

import (
	"encoding/binary"
	"fmt"
)

const vendorInfoFixedSize = 22

// UUID is the board serial as four little-endian words, least significant
// word first.
type UUID [4]uint32

func (u UUID) String() string {
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%04x%08x",
		u[3], u[2]>>16, u[2]&0xffff, u[1]>>16, u[1]&0xffff, u[0])
}

// VendorInfo is the payload of a vendor info atom.
type VendorInfo struct {
	UUID           UUID
	ProductID      uint16
	ProductVersion uint16
	Vendor         string
	Product        string
}

// ParseVendorInfo decodes a vendor info payload.
func ParseVendorInfo(data []byte) (*VendorInfo, error) {
	if len(data) < vendorInfoFixedSize {
		return nil, payloadError(AtomVendorInfo, "need at least %d bytes, have %d", vendorInfoFixedSize, len(data))
	}
	v := &VendorInfo{}
	for i := range v.UUID {
		v.UUID[i] = binary.LittleEndian.Uint32(data[4*i:])
	}
	v.ProductID = binary.LittleEndian.Uint16(data[16:18])
	v.ProductVersion = binary.LittleEndian.Uint16(data[18:20])
	vslen, pslen := int(data[20]), int(data[21])
	if need := vendorInfoFixedSize + vslen + pslen; len(data) < need {
		return nil, payloadError(AtomVendorInfo, "strings need %d bytes, have %d", need, len(data))
	}
	v.Vendor = string(data[22 : 22+vslen])
	v.Product = string(data[22+vslen : 22+vslen+pslen])
	return v, nil
}

// Bytes encodes the payload. Strings longer than 255 bytes are cut.
func (v *VendorInfo) Bytes() []byte {
	vs, ps := clip255(v.Vendor), clip255(v.Product)
	b := make([]byte, 0, vendorInfoFixedSize+len(vs)+len(ps))
	for _, w := range v.UUID {
		b = binary.LittleEndian.AppendUint32(b, w)
	}
	b = binary.LittleEndian.AppendUint16(b, v.ProductID)
	b = binary.LittleEndian.AppendUint16(b, v.ProductVersion)
	b = append(b, byte(len(vs)), byte(len(ps)))
	b = append(b, vs...)
	return append(b, ps...)
}

func clip255(s string) string {
	if len(s) > 255 {
		return s[:255]
	}
	return s
}
