package eeprom

import (
	"fmt"
	"time"

	"github.com/golang/glog"

	"github.com/OpenTraceLab/OpenTraceEEPROM/pkg/i2c"
)

// Bus is the transaction surface a Memory needs. Every i2c.Adapter
// satisfies it.
type Bus interface {
	WriteThenRead(addr uint16, w []byte, n int) ([]byte, error)
	Write(addr uint16, data []byte) error
}

// Memory is an EEPROM at a fixed device address on a Bus.
type Memory struct {
	bus     Bus
	devAddr uint16
	cfg     Config
	sleep   func(time.Duration)
}

// New binds a Memory to the device at devAddr.
func New(bus Bus, devAddr uint16, opts ...Option) *Memory {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Memory{
		bus:     bus,
		devAddr: devAddr,
		cfg:     cfg,
		sleep:   time.Sleep,
	}
}

// Config returns the effective configuration.
func (m *Memory) Config() Config {
	return m.cfg
}

// Read returns the first count bytes of the device.
func (m *Memory) Read(count int) ([]byte, error) {
	blocks, err := Plan(count, m.cfg.BlockSize)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, count)
	for i, b := range blocks {
		data, err := m.bus.WriteThenRead(m.devAddr, b.AddressBytes(), b.Length)
		if err != nil {
			return nil, &BlockError{Op: "read", Index: i, Offset: b.Offset, Err: err}
		}
		if len(data) != b.Length {
			err := fmt.Errorf("%w: got %d of %d bytes", i2c.ErrShortRead, len(data), b.Length)
			return nil, &BlockError{Op: "read", Index: i, Offset: b.Offset, Err: err}
		}
		glog.V(2).Infof("eeprom: read block %d at 0x%04X (%d bytes)", i, b.Offset, b.Length)
		out = append(out, data...)
	}
	return out, nil
}

// Write stores data at offset zero. Nothing is read back.
func (m *Memory) Write(data []byte) error {
	blocks, err := Plan(len(data), m.cfg.BlockSize)
	if err != nil {
		return err
	}

	for i, b := range blocks {
		if m.cfg.WriteDelay > 0 {
			m.sleep(m.cfg.WriteDelay)
		}
		msg := make([]byte, 0, 2+b.Length)
		msg = append(msg, b.AddressBytes()...)
		msg = append(msg, data[b.Offset:b.Offset+b.Length]...)
		if err := m.bus.Write(m.devAddr, msg); err != nil {
			return &BlockError{Op: "write", Index: i, Offset: b.Offset, Err: err}
		}
		glog.V(2).Infof("eeprom: wrote block %d at 0x%04X (%d bytes)", i, b.Offset, b.Length)
	}
	return nil
}
