package eeprom

import "time"

const (
	// DefaultBlockSize matches the page size of the 24C32 parts used on HAT
	// boards.
	DefaultBlockSize = 32
	// DefaultWriteDelay covers the worst-case 24Cxx write cycle.
	DefaultWriteDelay = 10 * time.Millisecond
)

// Config holds the transfer configuration.
type Config struct {
	// BlockSize is the number of data bytes per transaction.
	BlockSize int

	// WriteDelay is slept before every write block. Zero disables it.
	WriteDelay time.Duration
}

func defaultConfig() Config {
	return Config{
		BlockSize:  DefaultBlockSize,
		WriteDelay: DefaultWriteDelay,
	}
}

// Option is a functional option for configuring a Memory.
type Option func(*Config)

// WithBlockSize sets the number of bytes moved per transaction.
//
// Example:
//
//	mem := eeprom.New(bus, 0x50, eeprom.WithBlockSize(16))
func WithBlockSize(n int) Option {
	return func(c *Config) {
		c.BlockSize = n
	}
}

// WithWriteDelay sets the pause before each write block.
func WithWriteDelay(d time.Duration) Option {
	return func(c *Config) {
		c.WriteDelay = d
	}
}
