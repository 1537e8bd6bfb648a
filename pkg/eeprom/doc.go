// Package eeprom moves byte ranges in and out of a 16-bit addressed I2C
// EEPROM in fixed-size blocks.
//
// The bus only offers two transactions: a combined write-then-read and a
// plain write. Each block therefore starts with the 2-byte big-endian memory
// address, followed either by a repeated START and a read of the block, or
// directly by the block's data.
//
// # Usage
//
//	mem := eeprom.New(adapter, 0x50)
//	image, err := mem.Read(4096)
//
//	err = mem.Write(image)
//
// Transfers always start at offset zero and proceed in increasing address
// order. A failed transaction aborts the transfer; nothing is retried.
//
// # Write cycles
//
// After each write block the part is busy programming its page and will not
// acknowledge its address. Memory.Write sleeps for the configured write
// delay (10 ms by default) before every block. WithWriteDelay(0) disables
// the wait, which usually makes real hardware reject the next block.
//
// # Concurrency
//
// Memory holds no lock. Each transfer relies on the device's internal
// address pointer left by the previous transaction, so callers sharing one
// adapter between goroutines must serialise whole transfers themselves.
package eeprom
