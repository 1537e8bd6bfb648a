package cmd

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/OpenTraceLab/OpenTraceEEPROM/pkg/hat"
	"github.com/OpenTraceLab/OpenTraceEEPROM/pkg/nvm"
)

const dumpColumns = 16

// writeHexDump prints data 16 bytes per row with an ASCII column. The last
// row is padded with "--".
func writeHexDump(w io.Writer, data []byte) {
	var b strings.Builder
	b.WriteString("      ")
	for i := 0; i < dumpColumns; i++ {
		fmt.Fprintf(&b, " %02x", i)
	}
	b.WriteString("    ")
	for i := 0; i < dumpColumns; i++ {
		fmt.Fprintf(&b, "%x", i)
	}
	head := b.String()
	fmt.Fprintln(w, head)
	fmt.Fprintln(w, strings.Repeat("-", len(head)))

	for row := 0; row*dumpColumns < len(data); row++ {
		b.Reset()
		base := row * dumpColumns
		for j := 0; j < dumpColumns; j++ {
			if base+j < len(data) {
				fmt.Fprintf(&b, " %02X", data[base+j])
			} else {
				b.WriteString(" --")
			}
		}
		b.WriteString(" |  ")
		for j := 0; j < dumpColumns; j++ {
			if base+j >= len(data) {
				b.WriteByte('-')
				continue
			}
			c := data[base+j]
			if c < 0x20 || c > 0x7E {
				c = '.'
			}
			b.WriteByte(c)
		}
		fmt.Fprintf(w, "%04X: %s\n", base, b.String())
	}
}

// writeImageReport prints the header and every atom with both checksums.
func writeImageReport(w io.Writer, img *hat.Image) {
	h := img.Header
	fmt.Fprintln(w, style.title.Render("EEPROM Header:"))
	fmt.Fprintf(w, " sig:\t\t%s\n", h.SignatureString())
	fmt.Fprintf(w, " version:\t0x%02X\n", h.Version)
	fmt.Fprintf(w, " numAtoms:\t0x%04X\n", h.AtomCount)
	fmt.Fprintf(w, " eepLen:\t0x%08X\n", h.TotalLength)
	if !h.HasSignature() {
		fmt.Fprintln(w, style.mismatch.Render(" signature is not \"R-Pi\""))
	}
	if img.Overrun() {
		fmt.Fprintln(w, style.note.Render(fmt.Sprintf(" atoms end at 0x%X, past eepLen", img.Consumed)))
	}

	for _, a := range img.Atoms {
		fmt.Fprintln(w, style.title.Render("Atom"))
		fmt.Fprintf(w, " unparsed:\t%s\n", unparsedAtom(a))
		fmt.Fprintf(w, " type:\t\t0x%04X (%s)\n", uint16(a.Type), a.Type)
		fmt.Fprintf(w, " count:\t\t0x%04X\n", a.Count)
		fmt.Fprintf(w, " dataLen:\t0x%08X\n", a.DataLength)
		fmt.Fprintf(w, " data:%s\n", dataRows(a.Data))
		fmt.Fprintf(w, " CRC:\t\t0x%04X\n", a.CRC)
		if a.ChecksumMismatch() {
			fmt.Fprintf(w, " calcCRC:\t0x%04X %s\n", a.Computed, style.mismatch.Render("CHECKSUM MISMATCH"))
		} else {
			fmt.Fprintf(w, " calcCRC:\t0x%04X %s\n", a.Computed, style.ok.Render("OK"))
		}
		writeDecodedAtom(w, a)
	}
}

// unparsedAtom renders the header fields as big-endian hex followed by the
// payload and stored CRC bytes.
func unparsedAtom(a *hat.Atom) string {
	s := fmt.Sprintf("%04X%04X%08X", uint16(a.Type), a.Count, a.DataLength)
	if len(a.Raw) > hat.AtomHeaderSize {
		s += strings.ToUpper(hex.EncodeToString(a.Raw[hat.AtomHeaderSize:]))
	}
	return s
}

func dataRows(data []byte) string {
	var b strings.Builder
	for i, c := range data {
		if i%8 == 0 {
			b.WriteString("\n\t\t")
		}
		fmt.Fprintf(&b, "%02X", c)
	}
	return b.String()
}

func writeDecodedAtom(w io.Writer, a *hat.Atom) {
	v, err := a.Decode()
	if err != nil {
		// Custom atoms are not required to be calibration maps.
		fmt.Fprintln(w, style.note.Render(" "+err.Error()))
		return
	}
	switch p := v.(type) {
	case *hat.VendorInfo:
		fmt.Fprintf(w, " %s\t%s\n", style.label.Render("uuid:"), p.UUID)
		fmt.Fprintf(w, " %s\t0x%04X\n", style.label.Render("pid:"), p.ProductID)
		fmt.Fprintf(w, " %s\t0x%04X\n", style.label.Render("pver:"), p.ProductVersion)
		fmt.Fprintf(w, " %s\t%q\n", style.label.Render("vendor:"), p.Vendor)
		fmt.Fprintf(w, " %s\t%q\n", style.label.Render("product:"), p.Product)
	case *hat.GPIOMap:
		fmt.Fprintf(w, " %s\tdrive=%d slew=%d hysteresis=%d back_power=%t\n",
			style.label.Render("bank:"), p.Drive, p.Slew, p.Hysteresis, p.BackPower)
		for _, i := range p.Used() {
			g := p.Pins[i]
			fmt.Fprintf(w, " %s\tfunc=%d pull=%d\n", style.label.Render(fmt.Sprintf("gpio%d:", i)), g.FuncSel, g.Pull)
		}
	case *hat.CalibrationMap:
		fmt.Fprintf(w, " %s\tversion=%d timestamp=%d entries=%d\n",
			style.label.Render("calibration:"), p.Version, p.Timestamp, len(p.Entries))
		for _, e := range p.Entries {
			fmt.Fprintf(w, "  %-9s", e.Type)
			for _, pair := range e.Pairs {
				fmt.Fprintf(w, " (%g, %d)", pair.M, pair.B)
			}
			fmt.Fprintln(w)
		}
	}
}

// imageJSON is the --json form of a decoded image.
type imageJSON struct {
	Header     headerJSON `json:"header"`
	Atoms      []atomJSON `json:"atoms"`
	Mismatches int        `json:"mismatches"`
}

type headerJSON struct {
	Signature   string `json:"signature"`
	Valid       bool   `json:"valid_signature"`
	Version     uint8  `json:"version"`
	AtomCount   uint16 `json:"atom_count"`
	TotalLength uint32 `json:"total_length"`
	Consumed    int    `json:"consumed"`
}

type atomJSON struct {
	Offset     int         `json:"offset"`
	Type       uint16      `json:"type"`
	TypeName   string      `json:"type_name"`
	Count      uint16      `json:"count"`
	DataLength uint32      `json:"data_length"`
	Data       string      `json:"data"`
	CRC        uint16      `json:"crc"`
	Computed   uint16      `json:"computed_crc"`
	Mismatch   bool        `json:"checksum_mismatch"`
	Decoded    interface{} `json:"decoded,omitempty"`
	DecodeErr  string      `json:"decode_error,omitempty"`
}

func imageToJSON(img *hat.Image) imageJSON {
	out := imageJSON{
		Header: headerJSON{
			Signature:   img.Header.SignatureString(),
			Valid:       img.Header.HasSignature(),
			Version:     img.Header.Version,
			AtomCount:   img.Header.AtomCount,
			TotalLength: img.Header.TotalLength,
			Consumed:    img.Consumed,
		},
		Atoms:      make([]atomJSON, 0, len(img.Atoms)),
		Mismatches: len(img.Mismatches()),
	}
	for _, a := range img.Atoms {
		aj := atomJSON{
			Offset:     a.Offset,
			Type:       uint16(a.Type),
			TypeName:   a.Type.String(),
			Count:      a.Count,
			DataLength: a.DataLength,
			Data:       hex.EncodeToString(a.Data),
			CRC:        a.CRC,
			Computed:   a.Computed,
			Mismatch:   a.ChecksumMismatch(),
		}
		if v, err := a.Decode(); err != nil {
			aj.DecodeErr = err.Error()
		} else if v != nil {
			if vi, ok := v.(*hat.VendorInfo); ok {
				aj.Decoded = vendorInfoJSON{UUID: vi.UUID.String(), VendorInfo: vi}
			} else {
				aj.Decoded = v
			}
		}
		out.Atoms = append(out.Atoms, aj)
	}
	return out
}

type vendorInfoJSON struct {
	UUID string `json:"UUID"`
	*hat.VendorInfo
}

func outputJSONFormat(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// writeNVMJSON prints the fields as a JSON object of hex strings in schema
// order.
func writeNVMJSON(w io.Writer, vs nvm.Values) error {
	var b strings.Builder
	b.WriteString("{\n")
	for i, v := range vs {
		key, err := json.Marshal(v.Name)
		if err != nil {
			return err
		}
		fmt.Fprintf(&b, "    %s: \"0x%x\"", key, v.Value)
		if i < len(vs)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func writeNVMTable(w io.Writer, vs nvm.Values) {
	width := 0
	for _, v := range vs {
		if len(v.Name) > width {
			width = len(v.Name)
		}
	}
	for _, v := range vs {
		fmt.Fprintf(w, "%-*s  u%-2d  0x%-5x %d\n", width, v.Name, v.Width, v.Value, v.Value)
	}
}
