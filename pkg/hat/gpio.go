package hat

// GPIOMapSize is the exact payload length of a GPIO map atom.
const GPIOMapSize = 30

// GPIOCount is the number of header GPIOs described by a GPIO map.
const GPIOCount = 28

// Pull settings of a GPIO.
const (
	PullDefault = 0
	PullUp      = 1
	PullDown    = 2
	PullNone    = 3
)

// GPIO describes one header pin.
type GPIO struct {
	FuncSel uint8 // bits 2:0
	Pull    uint8 // bits 6:5
	Used    bool  // bit 7
}

func (g GPIO) encode() byte {
	b := g.FuncSel&0x07 | (g.Pull&0x03)<<5
	if g.Used {
		b |= 0x80
	}
	return b
}

// GPIOMap is the payload of a GPIO map atom.
type GPIOMap struct {
	Drive      uint8 // bits 3:0 of the bank drive byte
	Slew       uint8 // bits 5:4
	Hysteresis uint8 // bits 7:6
	BackPower  bool
	Pins       [GPIOCount]GPIO
}

// ParseGPIOMap decodes a GPIO map payload.
func ParseGPIOMap(data []byte) (*GPIOMap, error) {
	if len(data) != GPIOMapSize {
		return nil, payloadError(AtomGPIOMap, "need %d bytes, have %d", GPIOMapSize, len(data))
	}
	m := &GPIOMap{
		Drive:      data[0] & 0x0F,
		Slew:       (data[0] >> 4) & 0x03,
		Hysteresis: data[0] >> 6,
		BackPower:  data[1]&0x01 != 0,
	}
	for i := range m.Pins {
		b := data[2+i]
		m.Pins[i] = GPIO{
			FuncSel: b & 0x07,
			Pull:    (b >> 5) & 0x03,
			Used:    b&0x80 != 0,
		}
	}
	return m, nil
}

// Bytes encodes the payload.
func (m *GPIOMap) Bytes() []byte {
	b := make([]byte, GPIOMapSize)
	b[0] = m.Drive&0x0F | (m.Slew&0x03)<<4 | (m.Hysteresis&0x03)<<6
	if m.BackPower {
		b[1] = 0x01
	}
	for i, p := range m.Pins {
		b[2+i] = p.encode()
	}
	return b
}

// Used returns the indexes of pins marked as used.
func (m *GPIOMap) Used() []int {
	var out []int
	for i, p := range m.Pins {
		if p.Used {
			out = append(out, i)
		}
	}
	return out
}
