// Package hat decodes and encodes Raspberry Pi HAT style EEPROM images.
//
// An image is a 12-byte header followed by atomCount contiguous atoms:
//
//	header: signature[4] version u8 reserved u8 atomCount u16 totalLength u32
//	atom:   type u16 count u16 dataLength u32 payload[dataLength-2] crc u16
//
// All integers are little-endian. The CRC is CRC-16/ARC over the atom's
// 8 header bytes followed by its payload.
//
// Decoding is lenient where inspection of a damaged part is still useful: a
// checksum mismatch is recorded on the atom and decoding continues. Short
// images and impossible atom lengths abort with TruncatedImageError and
// MalformedAtomError.
package hat
