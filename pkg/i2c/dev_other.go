//go:build !linux

package i2c

import "fmt"

// DevPath returns the device node for an adapter number.
func DevPath(bus int) string {
	return fmt.Sprintf("/dev/i2c-%d", bus)
}

// OpenDevAdapter is only available on Linux.
func OpenDevAdapter(bus int) (Adapter, error) {
	return nil, ErrNotImplemented
}
