package hat

import (
	"encoding/binary"
	"fmt"
	"math"
)

const (
	calibrationHeaderSize = 15 // cversion u8, timestamp u64, numcatoms u16, callen u32
	calibrationEntrySize  = 8  // type u16, count u16, dlen u32
	calibrationPairSize   = 6  // m float32, b u16 as stored
	// calibrationPairStride is the size the firmware counts per pair in dlen,
	// its in-memory struct including two bytes of padding.
	calibrationPairStride = 8
)

// CalibrationType identifies a calibrated channel.
type CalibrationType uint16

const (
	CalVIn1    CalibrationType = 0x0001
	CalVIn2    CalibrationType = 0x0002
	CalVIn3    CalibrationType = 0x0003
	CalVIn4    CalibrationType = 0x0004
	CalVSupply CalibrationType = 0x0005
	CalCIn1    CalibrationType = 0x0006
	CalCIn2    CalibrationType = 0x0007
	CalCIn3    CalibrationType = 0x0008
	CalCIn4    CalibrationType = 0x0009
	CalAnaOut  CalibrationType = 0x000A
)

var calibrationNames = map[CalibrationType]string{
	CalVIn1:    "V_In1",
	CalVIn2:    "V_In2",
	CalVIn3:    "V_In3",
	CalVIn4:    "V_In4",
	CalVSupply: "V_supply",
	CalCIn1:    "C_In1",
	CalCIn2:    "C_In2",
	CalCIn3:    "C_In3",
	CalCIn4:    "C_In4",
	CalAnaOut:  "Ana_Out",
}

func (t CalibrationType) String() string {
	if s, ok := calibrationNames[t]; ok {
		return s
	}
	return fmt.Sprintf("cal(0x%04X)", uint16(t))
}

// CalibrationPair is one linear correction y = M*x + B.
type CalibrationPair struct {
	M float32
	B uint16
}

// Calibration holds the pairs of one channel.
type Calibration struct {
	Type  CalibrationType
	Pairs []CalibrationPair
}

// CalibrationMap is the custom atom payload written by the board firmware.
type CalibrationMap struct {
	Version   uint8
	Timestamp uint64
	// Length is the callen field: the header plus every entry, with dlen
	// counted at the firmware's 8 bytes per pair.
	Length  uint32
	Entries []Calibration
}

// ParseCalibrationMap decodes a calibration map payload.
func ParseCalibrationMap(data []byte) (*CalibrationMap, error) {
	if len(data) < calibrationHeaderSize {
		return nil, payloadError(AtomCustom, "calibration header needs %d bytes, have %d", calibrationHeaderSize, len(data))
	}
	m := &CalibrationMap{
		Version:   data[0],
		Timestamp: binary.LittleEndian.Uint64(data[1:9]),
		Length:    binary.LittleEndian.Uint32(data[11:15]),
	}
	n := int(binary.LittleEndian.Uint16(data[9:11]))

	cur := calibrationHeaderSize
	for i := 0; i < n; i++ {
		if len(data)-cur < calibrationEntrySize {
			return nil, payloadError(AtomCustom, "calibration entry %d header truncated at %d", i, cur)
		}
		e := Calibration{Type: CalibrationType(binary.LittleEndian.Uint16(data[cur:]))}
		count := int(binary.LittleEndian.Uint16(data[cur+2:]))
		dlen := binary.LittleEndian.Uint32(data[cur+4:])
		if uint64(dlen) != uint64(count)*calibrationPairStride {
			return nil, payloadError(AtomCustom, "calibration entry %d: dlen %d does not match %d pairs", i, dlen, count)
		}
		cur += calibrationEntrySize
		if need := count * calibrationPairSize; len(data)-cur < need {
			return nil, payloadError(AtomCustom, "calibration entry %d data truncated: need %d, have %d", i, need, len(data)-cur)
		}
		e.Pairs = make([]CalibrationPair, count)
		for j := range e.Pairs {
			e.Pairs[j] = CalibrationPair{
				M: math.Float32frombits(binary.LittleEndian.Uint32(data[cur:])),
				B: binary.LittleEndian.Uint16(data[cur+4:]),
			}
			cur += calibrationPairSize
		}
		m.Entries = append(m.Entries, e)
	}
	return m, nil
}

// Entry returns the calibration of channel t, or nil.
func (m *CalibrationMap) Entry(t CalibrationType) *Calibration {
	for i := range m.Entries {
		if m.Entries[i].Type == t {
			return &m.Entries[i]
		}
	}
	return nil
}

// Bytes encodes the payload in the firmware layout, recomputing Length.
func (m *CalibrationMap) Bytes() []byte {
	var body []byte
	callen := calibrationHeaderSize
	for _, e := range m.Entries {
		dlen := len(e.Pairs) * calibrationPairStride
		callen += calibrationEntrySize + dlen
		body = binary.LittleEndian.AppendUint16(body, uint16(e.Type))
		body = binary.LittleEndian.AppendUint16(body, uint16(len(e.Pairs)))
		body = binary.LittleEndian.AppendUint32(body, uint32(dlen))
		for _, p := range e.Pairs {
			body = binary.LittleEndian.AppendUint32(body, math.Float32bits(p.M))
			body = binary.LittleEndian.AppendUint16(body, p.B)
		}
	}

	b := make([]byte, 0, calibrationHeaderSize+len(body))
	b = append(b, m.Version)
	b = binary.LittleEndian.AppendUint64(b, m.Timestamp)
	b = binary.LittleEndian.AppendUint16(b, uint16(len(m.Entries)))
	b = binary.LittleEndian.AppendUint32(b, uint32(callen))
	return append(b, body...)
}
