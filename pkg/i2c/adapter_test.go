package i2c

import (
	"errors"
	"testing"
)

func TestValidateAddress(t *testing.T) {
	if err := ValidateAddress(0x50); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateAddress(0x80); err == nil {
		t.Fatalf("expected error for 8-bit address")
	}
}

func TestValidateTransfer(t *testing.T) {
	if err := ValidateTransfer(0x50, nil, 1); err == nil {
		t.Fatalf("expected error for empty write")
	}
	if err := ValidateTransfer(0x50, []byte{0, 0}, 0); err == nil {
		t.Fatalf("expected error for zero read length")
	}
	if err := ValidateTransfer(0x50, []byte{0, 0}, 32); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateTransfer(0x50, []byte{0, 0}, MaxTransferLength); err != nil {
		t.Fatalf("unexpected error at the limit: %v", err)
	}
	if err := ValidateTransfer(0x50, []byte{0, 0}, MaxTransferLength+1); err == nil {
		t.Fatalf("expected error for a 64 KiB read")
	}
}

func TestValidateWrite(t *testing.T) {
	if err := ValidateWrite(0x50, make([]byte, 2+32)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateWrite(0x80, []byte{0, 0}); err == nil {
		t.Fatalf("expected error for 8-bit address")
	}
	if err := ValidateWrite(0x50, make([]byte, MaxTransferLength+1)); err == nil {
		t.Fatalf("expected error for an oversized write")
	}
}

func TestSimRejectsOversizedRead(t *testing.T) {
	cfg := DefaultSimConfig()
	cfg.Size = 0x10000
	sim := NewSimAdapter(cfg)
	if _, err := sim.WriteThenRead(0x50, []byte{0, 0}, 0x10000); err == nil {
		t.Fatalf("expected error for a read longer than %d bytes", MaxTransferLength)
	}
	if len(sim.Transfers()) != 0 {
		t.Fatalf("rejected read reached the bus: %v", sim.Transfers())
	}
}

func TestTransportErrorUnwrap(t *testing.T) {
	err := error(&TransportError{Op: "write", Addr: 0x50, Err: ErrWriteProtected})
	if !errors.Is(err, ErrWriteProtected) {
		t.Fatalf("errors.Is(%v, ErrWriteProtected) = false", err)
	}
	if !IsTransportError(err) {
		t.Fatalf("IsTransportError = false")
	}
	if got, want := err.Error(), "i2c write at 0x50: i2c: device is write-protected"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
