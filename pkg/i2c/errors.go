package i2c

import (
	"errors"
	"fmt"
)

var (
	// ErrNotImplemented lets backends signal that a requested capability is
	// not available on this platform or adapter.
	ErrNotImplemented = errors.New("i2c: not implemented")
	// ErrNoDevice indicates the device address was not acknowledged.
	ErrNoDevice = errors.New("i2c: no device at address")
	// ErrWriteProtected indicates the device refused write data, which is
	// how a 24Cxx EEPROM with WP asserted answers.
	ErrWriteProtected = errors.New("i2c: device is write-protected")
	// ErrBusy indicates the device is still completing an internal write
	// cycle and did not acknowledge.
	ErrBusy = errors.New("i2c: device busy")
	// ErrShortRead indicates the adapter returned fewer bytes than requested.
	ErrShortRead = errors.New("i2c: short read")
)

// TransportError reports a failed bus transaction.
type TransportError struct {
	// Op is the transaction kind ("write", "write-read").
	Op string
	// Addr is the 7-bit device address.
	Addr uint16
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("i2c %s at 0x%02X: %v", e.Op, e.Addr, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError returns true if err is or wraps a TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
