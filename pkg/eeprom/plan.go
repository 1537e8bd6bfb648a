package eeprom

import "fmt"

// MaxAddress is the last byte reachable with a 2-byte memory address.
const MaxAddress = 0xFFFF

// Block is one addressed transaction of a transfer.
type Block struct {
	Offset int
	Length int
}

// AddressBytes returns the big-endian address prefix sent before the block.
func (b Block) AddressBytes() []byte {
	return []byte{byte(b.Offset >> 8), byte(b.Offset)}
}

// Plan splits count bytes starting at offset zero into blocks of blockSize.
// The last block carries the remainder when count is not a multiple of
// blockSize.
func Plan(count, blockSize int) ([]Block, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("eeprom: block size must be positive, got %d", blockSize)
	}
	if count < 0 {
		return nil, fmt.Errorf("eeprom: negative byte count %d", count)
	}
	if count > MaxAddress+1 {
		return nil, fmt.Errorf("eeprom: %d bytes exceed the 16-bit address space", count)
	}

	full, rem := count/blockSize, count%blockSize
	blocks := make([]Block, 0, full+1)
	for i := 0; i < full; i++ {
		blocks = append(blocks, Block{Offset: i * blockSize, Length: blockSize})
	}
	if rem != 0 {
		blocks = append(blocks, Block{Offset: full * blockSize, Length: rem})
	}
	return blocks, nil
}
