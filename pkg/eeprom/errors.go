package eeprom

import "fmt"

// BlockError reports the block at which a transfer stopped.
type BlockError struct {
	Op     string // "read" or "write"
	Index  int
	Offset int
	Err    error
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("eeprom: %s block %d at 0x%04X: %v", e.Op, e.Index, e.Offset, e.Err)
}

func (e *BlockError) Unwrap() error {
	return e.Err
}
