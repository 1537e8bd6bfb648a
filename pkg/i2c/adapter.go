package i2c

import (
	"fmt"
)

// AdapterInfo describes capabilities reported by an I2C adapter implementation.
type AdapterInfo struct {
	Name         string
	Vendor       string
	Model        string
	SerialNumber string
	Path         string
	MaxFrequency int // Hertz, 0 if unknown
	Notes        string
}

// Adapter abstracts a physical or virtual I2C master able to run the two
// transactions a 16-bit-addressed EEPROM needs.
//
// WriteThenRead issues a combined transaction: a write of w followed by a
// repeated-start read of n bytes from the same device. Write issues a single
// write transaction. Both fail with a *TransportError.
//
// Adapters are not safe for concurrent use. Callers sharing one adapter
// between goroutines must serialise their transactions.
type Adapter interface {
	Info() (AdapterInfo, error)
	WriteThenRead(addr uint16, w []byte, n int) ([]byte, error)
	Write(addr uint16, data []byte) error
	Close() error
}

// MaxAddress is the highest 7-bit device address.
const MaxAddress = 0x7F

// ValidateAddress ensures addr is a usable 7-bit device address.
func ValidateAddress(addr uint16) error {
	if addr > MaxAddress {
		return fmt.Errorf("i2c: device address 0x%X out of 7-bit range", addr)
	}
	return nil
}

// MaxTransferLength is the longest message an adapter can carry: i2c-dev
// message lengths and USB control transfer lengths are 16-bit.
const MaxTransferLength = 0xFFFF

// ValidateTransfer checks the arguments shared by every WriteThenRead
// implementation.
func ValidateTransfer(addr uint16, w []byte, n int) error {
	if err := ValidateAddress(addr); err != nil {
		return err
	}
	if len(w) == 0 {
		return fmt.Errorf("i2c: write-then-read needs at least one address byte")
	}
	if n <= 0 {
		return fmt.Errorf("i2c: read length must be positive, got %d", n)
	}
	if len(w) > MaxTransferLength || n > MaxTransferLength {
		return fmt.Errorf("i2c: transfer of %d/%d bytes exceeds %d", len(w), n, MaxTransferLength)
	}
	return nil
}

// ValidateWrite checks the arguments shared by every Write implementation.
func ValidateWrite(addr uint16, data []byte) error {
	if err := ValidateAddress(addr); err != nil {
		return err
	}
	if len(data) > MaxTransferLength {
		return fmt.Errorf("i2c: write of %d bytes exceeds %d", len(data), MaxTransferLength)
	}
	return nil
}
