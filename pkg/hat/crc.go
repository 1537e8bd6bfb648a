package hat

import "github.com/sigurn/crc16"

var crcTable = crc16.MakeTable(crc16.CRC16_ARC)

// Checksum computes the CRC-16/ARC of the given byte runs as one stream.
func Checksum(parts ...[]byte) uint16 {
	if len(parts) == 1 {
		return crc16.Checksum(parts[0], crcTable)
	}
	var buf []byte
	for _, p := range parts {
		buf = append(buf, p...)
	}
	return crc16.Checksum(buf, crcTable)
}
