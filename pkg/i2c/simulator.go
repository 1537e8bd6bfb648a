package i2c

import (
	"fmt"
	"time"

	"github.com/golang/glog"
)

// TransferKind identifies the shape of a recorded transaction.
type TransferKind uint8

const (
	TransferWrite TransferKind = iota
	TransferWriteRead
)

func (k TransferKind) String() string {
	switch k {
	case TransferWrite:
		return "write"
	case TransferWriteRead:
		return "write-read"
	default:
		return fmt.Sprintf("TransferKind(%d)", uint8(k))
	}
}

// Transfer captures one transaction seen by the simulator.
type Transfer struct {
	Kind    TransferKind
	Addr    uint16
	Write   []byte
	ReadLen int
	At      time.Time
}

// Offset returns the 16-bit big-endian memory address carried by the
// transaction's first two written bytes, or -1 if there are fewer.
func (t Transfer) Offset() int {
	if len(t.Write) < 2 {
		return -1
	}
	return int(t.Write[0])<<8 | int(t.Write[1])
}

// TransferHook lets tests inject faults. A non-nil error fails the
// transaction before it reaches the memory model.
type TransferHook func(Transfer) error

// SimConfig describes the emulated 24Cxx part.
type SimConfig struct {
	Size         int           // memory size in bytes
	PageSize     int           // write page size, writes wrap inside a page
	DeviceAddr   uint16        // 7-bit address the part answers on
	WriteCycle   time.Duration // internal write time, the part NAKs meanwhile
	WriteProtect bool          // WP pin asserted
	Fill         byte          // erased value
}

// DefaultSimConfig models a 24C32 on the HAT ID bus.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		Size:       4096,
		PageSize:   32,
		DeviceAddr: 0x50,
		WriteCycle: 5 * time.Millisecond,
		Fill:       0xFF,
	}
}

// SimAdapter is an in-memory EEPROM behind an I2C adapter, useful for unit
// tests and for exercising the tool without hardware. It keeps the device's
// internal address pointer and records every transaction.
type SimAdapter struct {
	Config     SimConfig
	OnTransfer TransferHook

	mem       []byte
	pointer   int
	busyUntil time.Time
	transfers []Transfer
	now       func() time.Time
}

// NewSimAdapter constructs a simulator with erased memory.
func NewSimAdapter(cfg SimConfig) *SimAdapter {
	if cfg.Size <= 0 {
		cfg.Size = DefaultSimConfig().Size
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultSimConfig().PageSize
	}
	mem := make([]byte, cfg.Size)
	for i := range mem {
		mem[i] = cfg.Fill
	}
	return &SimAdapter{Config: cfg, mem: mem, now: time.Now}
}

// Load copies data into memory starting at offset zero.
func (s *SimAdapter) Load(data []byte) error {
	if len(data) > len(s.mem) {
		return fmt.Errorf("i2c: image of %d bytes does not fit %d byte simulator", len(data), len(s.mem))
	}
	copy(s.mem, data)
	return nil
}

// Bytes returns a copy of the simulated memory.
func (s *SimAdapter) Bytes() []byte {
	return append([]byte(nil), s.mem...)
}

// Transfers returns a copy of the recorded transactions.
func (s *SimAdapter) Transfers() []Transfer {
	out := make([]Transfer, len(s.transfers))
	copy(out, s.transfers)
	return out
}

// ResetTransfers clears the transaction log.
func (s *SimAdapter) ResetTransfers() {
	s.transfers = nil
}

func (s *SimAdapter) Info() (AdapterInfo, error) {
	return AdapterInfo{
		Name:   "EEPROM Simulator",
		Vendor: "OpenTraceLab",
		Model:  fmt.Sprintf("24C%02d", s.Config.Size*8/1024),
		Notes:  fmt.Sprintf("%d bytes, %d byte pages, device 0x%02X", s.Config.Size, s.Config.PageSize, s.Config.DeviceAddr),
	}, nil
}

func (s *SimAdapter) Close() error {
	return nil
}

func (s *SimAdapter) WriteThenRead(addr uint16, w []byte, n int) ([]byte, error) {
	if err := ValidateTransfer(addr, w, n); err != nil {
		return nil, err
	}
	t := s.record(TransferWriteRead, addr, w, n)
	if err := s.admit(t); err != nil {
		return nil, err
	}
	if len(w) != 2 {
		return nil, &TransportError{Op: "write-read", Addr: addr, Err: fmt.Errorf("expected 2 address bytes, got %d", len(w))}
	}

	s.pointer = t.Offset() % len(s.mem)
	out := make([]byte, n)
	for i := range out {
		out[i] = s.mem[s.pointer]
		s.pointer = (s.pointer + 1) % len(s.mem)
	}
	glog.V(2).Infof("sim: read %d bytes at 0x%04X", n, t.Offset())
	return out, nil
}

func (s *SimAdapter) Write(addr uint16, data []byte) error {
	if err := ValidateWrite(addr, data); err != nil {
		return err
	}
	t := s.record(TransferWrite, addr, data, 0)
	if err := s.admit(t); err != nil {
		return err
	}
	if len(data) < 2 {
		return &TransportError{Op: "write", Addr: addr, Err: fmt.Errorf("expected 2 address bytes, got %d", len(data))}
	}

	s.pointer = t.Offset() % len(s.mem)
	payload := data[2:]
	if len(payload) == 0 {
		// Address-only write just loads the pointer.
		return nil
	}
	if s.Config.WriteProtect {
		return &TransportError{Op: "write", Addr: addr, Err: ErrWriteProtected}
	}

	page := s.pointer - s.pointer%s.Config.PageSize
	col := s.pointer - page
	for _, b := range payload {
		s.mem[(page+col)%len(s.mem)] = b
		col = (col + 1) % s.Config.PageSize
	}
	s.pointer = (page + col) % len(s.mem)
	s.busyUntil = t.At.Add(s.Config.WriteCycle)
	glog.V(2).Infof("sim: wrote %d bytes at 0x%04X", len(payload), t.Offset())
	return nil
}

func (s *SimAdapter) record(kind TransferKind, addr uint16, w []byte, n int) Transfer {
	t := Transfer{
		Kind:    kind,
		Addr:    addr,
		Write:   append([]byte(nil), w...),
		ReadLen: n,
		At:      s.now(),
	}
	s.transfers = append(s.transfers, t)
	return t
}

// admit applies the checks a real part performs before acknowledging.
func (s *SimAdapter) admit(t Transfer) error {
	op := t.Kind.String()
	if s.OnTransfer != nil {
		if err := s.OnTransfer(t); err != nil {
			return &TransportError{Op: op, Addr: t.Addr, Err: err}
		}
	}
	if t.Addr != s.Config.DeviceAddr {
		return &TransportError{Op: op, Addr: t.Addr, Err: ErrNoDevice}
	}
	if t.At.Before(s.busyUntil) {
		return &TransportError{Op: op, Addr: t.Addr, Err: ErrBusy}
	}
	return nil
}
