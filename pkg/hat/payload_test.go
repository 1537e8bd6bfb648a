package hat

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVendorInfoRoundTrip(t *testing.T) {
	in := &VendorInfo{
		UUID:           UUID{0x89abcdef, 0x01234567, 0xdeadbeef, 0xcafef00d},
		ProductID:      0x1234,
		ProductVersion: 3,
		Vendor:         "PANDA GmbH",
		Product:        "TimeSwipe",
	}
	out, err := ParseVendorInfo(in.Bytes())
	require.NoError(t, err)
	require.Equal(t, in, out)
	require.Equal(t, "cafef00d-dead-beef-0123-456789abcdef", out.UUID.String())
}

func TestVendorInfoShort(t *testing.T) {
	_, err := ParseVendorInfo(make([]byte, 21))
	var me *MalformedAtomError
	require.True(t, errors.As(err, &me))
	require.Equal(t, -1, me.Index)

	b := (&VendorInfo{Vendor: "abc", Product: "de"}).Bytes()
	_, err = ParseVendorInfo(b[:len(b)-1])
	require.Error(t, err)
}

func TestGPIOMapRoundTrip(t *testing.T) {
	in := &GPIOMap{Drive: 0x0A, Slew: 2, Hysteresis: 1, BackPower: true}
	in.Pins[0] = GPIO{FuncSel: 4, Pull: PullDown, Used: true}
	in.Pins[27] = GPIO{FuncSel: 7, Pull: PullNone, Used: true}

	raw := in.Bytes()
	require.Len(t, raw, GPIOMapSize)
	require.Equal(t, byte(0x6A), raw[0])
	require.Equal(t, byte(0x01), raw[1])
	require.Equal(t, byte(0xC4), raw[2])

	out, err := ParseGPIOMap(raw)
	require.NoError(t, err)
	require.Equal(t, in, out)
	require.Equal(t, []int{0, 27}, out.Used())

	_, err = ParseGPIOMap(raw[:29])
	require.Error(t, err)
}

func TestCalibrationMapRoundTrip(t *testing.T) {
	in := &CalibrationMap{
		Version:   1,
		Timestamp: 1700000000,
		Entries: []Calibration{
			{Type: CalVIn1, Pairs: []CalibrationPair{{M: 1.5, B: 2048}, {M: -0.25, B: 7}}},
			{Type: CalAnaOut, Pairs: []CalibrationPair{{M: 1, B: 0}}},
		},
	}
	raw := in.Bytes()
	require.Len(t, raw, 15+8+12+8+6)

	out, err := ParseCalibrationMap(raw)
	require.NoError(t, err)
	require.Equal(t, uint32(15+8+16+8+8), out.Length)
	require.Equal(t, in.Entries, out.Entries)
	require.Equal(t, float32(-0.25), out.Entry(CalVIn1).Pairs[1].M)
	require.Nil(t, out.Entry(CalCIn4))
	require.Equal(t, "Ana_Out", CalAnaOut.String())

	_, err = ParseCalibrationMap(raw[:len(raw)-1])
	require.Error(t, err)
}

// firmwareCalibration lays out a calibration map byte by byte as the board
// firmware stores it: dlen counts 8 bytes per pair, each pair is written as
// 6 bytes and callen includes the 15 byte header.
func firmwareCalibration() []byte {
	b := []byte{0x01}
	b = binary.LittleEndian.AppendUint64(b, 0)
	b = binary.LittleEndian.AppendUint16(b, 1)
	b = binary.LittleEndian.AppendUint32(b, 39)

	b = binary.LittleEndian.AppendUint16(b, uint16(CalVIn2))
	b = binary.LittleEndian.AppendUint16(b, 2)
	b = binary.LittleEndian.AppendUint32(b, 16)
	b = binary.LittleEndian.AppendUint32(b, math.Float32bits(1))
	b = binary.LittleEndian.AppendUint16(b, 0)
	b = binary.LittleEndian.AppendUint32(b, math.Float32bits(2.5))
	return binary.LittleEndian.AppendUint16(b, 100)
}

func TestCalibrationMapFirmwareLayout(t *testing.T) {
	raw := firmwareCalibration()
	require.Len(t, raw, 15+8+12)

	m, err := ParseCalibrationMap(raw)
	require.NoError(t, err)
	require.Equal(t, uint8(1), m.Version)
	require.Equal(t, uint32(39), m.Length)
	require.Equal(t, []Calibration{
		{Type: CalVIn2, Pairs: []CalibrationPair{{M: 1, B: 0}, {M: 2.5, B: 100}}},
	}, m.Entries)

	require.Equal(t, raw, m.Bytes())

	// A dlen counting 6 bytes per pair is not what the firmware writes.
	bad := append([]byte(nil), raw...)
	binary.LittleEndian.PutUint32(bad[19:], 12)
	_, err = ParseCalibrationMap(bad)
	require.Error(t, err)
}

func TestAtomDecodeDispatch(t *testing.T) {
	img := sampleImage()

	v, err := img.Atoms[0].Decode()
	require.NoError(t, err)
	require.Equal(t, "TimeSwipe", v.(*VendorInfo).Product)

	v, err = img.Atoms[1].Decode()
	require.NoError(t, err)
	require.True(t, v.(*GPIOMap).BackPower)

	v, err = img.Atoms[2].Decode()
	require.NoError(t, err)
	require.Nil(t, v)

	// The empty custom atom is not a calibration map.
	_, err = img.Atoms[3].Decode()
	var me *MalformedAtomError
	require.True(t, errors.As(err, &me))
	require.Equal(t, 3, me.Index)
	require.Equal(t, img.Atoms[3].Offset, me.Offset)
}
