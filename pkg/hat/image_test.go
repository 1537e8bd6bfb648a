package hat

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChecksumCheckValue(t *testing.T) {
	require.Equal(t, uint16(0xBB3D), Checksum([]byte("123456789")))
	require.Equal(t, Checksum([]byte("123456789")), Checksum([]byte("1234"), []byte("56789")))
}

// rpiScenario builds a one-atom image by hand, independent of the encoder.
func rpiScenario() []byte {
	b := []byte{'R', '-', 'P', 'i', 0x00, 0x00}
	b = binary.LittleEndian.AppendUint16(b, 1)
	b = binary.LittleEndian.AppendUint32(b, 22)

	b = binary.LittleEndian.AppendUint16(b, 0x0001)
	b = binary.LittleEndian.AppendUint16(b, 0x0000)
	b = binary.LittleEndian.AppendUint32(b, 0x0000000A)
	b = append(b, 0xDE, 0xAD, 0xBE, 0xEF, 0x01, 0x02, 0x03, 0x04)
	return binary.LittleEndian.AppendUint16(b, Checksum(b[12:28]))
}

func TestDecodeRPiScenario(t *testing.T) {
	raw := rpiScenario()
	img, err := Decode(raw)
	require.NoError(t, err)

	require.True(t, img.Header.HasSignature())
	require.Equal(t, "R-Pi", img.Header.SignatureString())
	require.Equal(t, uint8(0), img.Header.Version)
	require.Equal(t, uint16(1), img.Header.AtomCount)
	require.Equal(t, uint32(22), img.Header.TotalLength)

	require.Len(t, img.Atoms, 1)
	a := img.Atoms[0]
	require.Equal(t, AtomVendorInfo, a.Type)
	require.Equal(t, uint16(0), a.Count)
	require.Equal(t, uint32(10), a.DataLength)
	require.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x01, 0x02, 0x03, 0x04}, a.Data)
	require.Equal(t, a.CRC, a.Computed)
	require.False(t, a.ChecksumMismatch())
	require.Equal(t, 12, a.Offset)
	require.Equal(t, raw[12:], a.Raw)
	require.Equal(t, 30, img.Consumed)
	require.NoError(t, img.Verify())
}

func TestDecodeIgnoresTrailingBytes(t *testing.T) {
	raw := append(rpiScenario(), bytes.Repeat([]byte{0xFF}, 4066)...)
	img, err := Decode(raw)
	require.NoError(t, err)
	require.Len(t, img.Atoms, 1)
	require.Equal(t, 30, img.Consumed)
}

func TestDecodeReader(t *testing.T) {
	img, err := DecodeReader(bytes.NewReader(rpiScenario()))
	require.NoError(t, err)
	require.Len(t, img.Atoms, 1)
}

func sampleImage() *Image {
	img := NewImage(FormatVersion)
	vi := &VendorInfo{
		UUID:           UUID{0x11111111, 0x22223333, 0x44445555, 0x66667777},
		ProductID:      0x0001,
		ProductVersion: 0x0002,
		Vendor:         "PANDA",
		Product:        "TimeSwipe",
	}
	img.AddAtom(AtomVendorInfo, vi.Bytes())

	gm := &GPIOMap{Drive: 8, BackPower: true}
	gm.Pins[4] = GPIO{FuncSel: 1, Pull: PullUp, Used: true}
	img.AddAtom(AtomGPIOMap, gm.Bytes())

	img.AddAtom(AtomLinuxDTB, []byte("timeswipe-overlay"))
	img.AddAtom(AtomCustom, []byte{})
	return img
}

func requireSameAtoms(t *testing.T, want, got []*Atom) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		w, g := want[i], got[i]
		require.Equal(t, w.Type, g.Type, "atom %d", i)
		require.Equal(t, w.Count, g.Count, "atom %d", i)
		require.Equal(t, w.DataLength, g.DataLength, "atom %d", i)
		require.True(t, bytes.Equal(w.Data, g.Data), "atom %d data", i)
		require.Equal(t, w.CRC, g.CRC, "atom %d", i)
		require.Equal(t, w.Computed, g.Computed, "atom %d", i)
		require.Equal(t, w.Offset, g.Offset, "atom %d", i)
		require.True(t, bytes.Equal(w.Raw, g.Raw), "atom %d raw", i)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	img := sampleImage()
	raw := img.Bytes()

	got, err := Decode(raw)
	require.NoError(t, err)
	require.Equal(t, img.Header, got.Header)
	require.Equal(t, uint16(4), got.Header.AtomCount)
	require.Equal(t, uint32(len(raw)), got.Header.TotalLength)
	require.Equal(t, len(raw), got.Consumed)
	require.False(t, got.Overrun())
	requireSameAtoms(t, img.Atoms, got.Atoms)

	// Zero-length payload decodes to an empty atom.
	require.Empty(t, got.Atoms[3].Data)
	require.Equal(t, uint32(2), got.Atoms[3].DataLength)
}

func TestFlippedChecksumIsReported(t *testing.T) {
	img := sampleImage()
	good := img.Atoms[1].CRC
	img.Atoms[1].CRC ^= 0xFFFF

	got, err := Decode(img.Bytes())
	require.NoError(t, err)
	require.Len(t, got.Atoms, 4)

	a := got.Atoms[1]
	require.True(t, a.ChecksumMismatch())
	require.Equal(t, good, a.Computed)
	require.Equal(t, good^0xFFFF, a.CRC)
	require.Equal(t, []*Atom{a}, got.Mismatches())

	err = got.Verify()
	var ce *ChecksumError
	require.True(t, errors.As(err, &ce))
	require.Len(t, ce.Atoms, 1)
	require.Contains(t, err.Error(), "atom 1")
}

func TestTruncatedMidAtom(t *testing.T) {
	raw := sampleImage().Bytes()
	for _, cut := range []int{3, 13, len(raw) - 1} {
		_, err := Decode(raw[:len(raw)-cut])
		var te *TruncatedImageError
		require.True(t, errors.As(err, &te), "cut %d: %v", cut, err)
	}
}

func TestTruncatedHeader(t *testing.T) {
	_, err := Decode([]byte{'R', '-', 'P', 'i', 1})
	var te *TruncatedImageError
	require.True(t, errors.As(err, &te))
	require.Equal(t, "header", te.What)
	require.Equal(t, 5, te.Have)
}

func TestTruncatedAtomHeader(t *testing.T) {
	raw := rpiScenario()
	raw[6] = 2 // claim a second atom that is not there
	_, err := Decode(raw)
	var te *TruncatedImageError
	require.True(t, errors.As(err, &te))
	require.Equal(t, "atom 1 header", te.What)
	require.Equal(t, 30, te.Offset)
}

func TestMalformedDataLength(t *testing.T) {
	for _, dl := range []uint32{0, 1} {
		raw := rpiScenario()
		binary.LittleEndian.PutUint32(raw[16:20], dl)
		_, err := Decode(raw)
		var me *MalformedAtomError
		require.True(t, errors.As(err, &me), "dataLength %d: %v", dl, err)
		require.Equal(t, 0, me.Index)
		require.Equal(t, 12, me.Offset)
	}
}

func TestHugeDataLengthIsTruncation(t *testing.T) {
	raw := rpiScenario()
	binary.LittleEndian.PutUint32(raw[16:20], 0xFFFFFFFF)
	_, err := Decode(raw)
	var te *TruncatedImageError
	require.True(t, errors.As(err, &te))
}

func TestOverrunAgainstTotalLength(t *testing.T) {
	raw := rpiScenario()
	img, err := Decode(raw)
	require.NoError(t, err)
	require.True(t, img.Overrun())
}

func TestImageAtomLookup(t *testing.T) {
	img := sampleImage()
	require.Equal(t, AtomGPIOMap, img.Atom(AtomGPIOMap).Type)
	require.Nil(t, img.Atom(AtomInvalid2))
	require.Equal(t, "GPIO map", AtomGPIOMap.String())
	require.Equal(t, "unknown(0x0042)", AtomType(0x42).String())
}
