package i2c

import (
	"fmt"

	"github.com/google/gousb"
)

// i2c-tiny-usb USB identifiers
const (
	VendorIDTinyUSB  = 0x0403
	ProductIDTinyUSB = 0xC631
)

// i2c-tiny-usb vendor request IDs
const (
	TinyCmdEcho      = 0
	TinyCmdGetFunc   = 1
	TinyCmdSetDelay  = 2
	TinyCmdGetStatus = 3
	TinyCmdI2CIO     = 4

	TinyIOBegin = 1 << 0 // generate START before the message
	TinyIOEnd   = 1 << 1 // generate STOP after the message
)

// i2c-tiny-usb status codes
const (
	TinyStatusIdle       = 0
	TinyStatusAddressACK = 1
	TinyStatusAddressNAK = 2
)

const (
	tinyRequestIn  = gousb.ControlIn | gousb.ControlVendor | gousb.ControlInterface
	tinyRequestOut = gousb.ControlOut | gousb.ControlVendor | gousb.ControlInterface
)

// TinyRequest is one vendor control transfer of an i2c-tiny-usb transaction.
// Read requests carry Length, write requests carry Data.
type TinyRequest struct {
	RequestType uint8
	Request     uint8
	Value       uint16
	Index       uint16
	Data        []byte
	Length      int
}

// IsRead reports whether the request moves data device-to-host.
func (r TinyRequest) IsRead() bool {
	return r.RequestType&gousb.ControlIn != 0
}

// PlanTinyWrite encodes a single-message write transaction.
func PlanTinyWrite(addr uint16, data []byte) []TinyRequest {
	return []TinyRequest{{
		RequestType: tinyRequestOut,
		Request:     TinyCmdI2CIO | TinyIOBegin | TinyIOEnd,
		Index:       addr,
		Data:        append([]byte(nil), data...),
	}}
}

// PlanTinyWriteRead encodes the write message (START) followed by the read
// message (repeated START, STOP) of a combined transaction.
func PlanTinyWriteRead(addr uint16, w []byte, n int) []TinyRequest {
	return []TinyRequest{
		{
			RequestType: tinyRequestOut,
			Request:     TinyCmdI2CIO | TinyIOBegin,
			Index:       addr,
			Data:        append([]byte(nil), w...),
		},
		{
			RequestType: tinyRequestIn,
			Request:     TinyCmdI2CIO | TinyIOEnd,
			Value:       i2cFlagRead,
			Index:       addr,
			Length:      n,
		},
	}
}

// TinyStatusRequest asks for the result of the last message.
func TinyStatusRequest() TinyRequest {
	return TinyRequest{
		RequestType: tinyRequestIn,
		Request:     TinyCmdGetStatus,
		Length:      1,
	}
}

// DecodeTinyStatus maps a status byte to an error.
func DecodeTinyStatus(resp []byte) error {
	if len(resp) != 1 {
		return fmt.Errorf("status response has %d bytes, want 1", len(resp))
	}
	switch resp[0] {
	case TinyStatusIdle, TinyStatusAddressACK:
		return nil
	case TinyStatusAddressNAK:
		return ErrNoDevice
	default:
		return fmt.Errorf("unknown status 0x%02X", resp[0])
	}
}

// i2cFlagRead is I2C_M_RD, passed through in wValue.
const i2cFlagRead = 0x0001
