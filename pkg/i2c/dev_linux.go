//go:build linux

package i2c

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"unsafe"

	"github.com/golang/glog"
	"golang.org/x/sys/unix"
)

const (
	ioctlI2CRDWR = 0x0707 // I2C_RDWR
	i2cMsgRead   = 0x0001 // I2C_M_RD
)

// i2cMsg mirrors struct i2c_msg from <linux/i2c.h>.
type i2cMsg struct {
	addr  uint16
	flags uint16
	len   uint16
	buf   *byte
}

// i2cRdwrData mirrors struct i2c_rdwr_ioctl_data.
type i2cRdwrData struct {
	msgs  *i2cMsg
	nmsgs uint32
}

// DevAdapter drives a Linux /dev/i2c-N character device with combined
// I2C_RDWR transactions, so the address write and the data read share one
// repeated-start transfer.
type DevAdapter struct {
	file *os.File
	bus  int
}

// DevPath returns the device node for an adapter number.
func DevPath(bus int) string {
	return fmt.Sprintf("/dev/i2c-%d", bus)
}

// OpenDevAdapter opens /dev/i2c-<bus>.
func OpenDevAdapter(bus int) (Adapter, error) {
	f, err := os.OpenFile(DevPath(bus), os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("i2c: open %s: %w", DevPath(bus), err)
	}
	return &DevAdapter{file: f, bus: bus}, nil
}

func (d *DevAdapter) Info() (AdapterInfo, error) {
	return AdapterInfo{
		Name:   fmt.Sprintf("i2c-%d", d.bus),
		Vendor: "Linux",
		Model:  "i2c-dev",
		Path:   DevPath(d.bus),
	}, nil
}

func (d *DevAdapter) Close() error {
	return d.file.Close()
}

func (d *DevAdapter) WriteThenRead(addr uint16, w []byte, n int) ([]byte, error) {
	if err := ValidateTransfer(addr, w, n); err != nil {
		return nil, err
	}
	wbuf := append([]byte(nil), w...)
	rbuf := make([]byte, n)
	msgs := []i2cMsg{
		{addr: addr, len: uint16(len(wbuf)), buf: &wbuf[0]},
		{addr: addr, flags: i2cMsgRead, len: uint16(n), buf: &rbuf[0]},
	}
	if err := d.rdwr(msgs); err != nil {
		return nil, &TransportError{Op: "write-read", Addr: addr, Err: classifyErrno(err, false)}
	}
	runtime.KeepAlive(wbuf)
	runtime.KeepAlive(rbuf)
	glog.V(2).Infof("i2c-%d: write-read 0x%02X w=% X n=%d", d.bus, addr, w, n)
	return rbuf, nil
}

func (d *DevAdapter) Write(addr uint16, data []byte) error {
	if err := ValidateWrite(addr, data); err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("i2c: empty write")
	}
	buf := append([]byte(nil), data...)
	msgs := []i2cMsg{{addr: addr, len: uint16(len(buf)), buf: &buf[0]}}
	if err := d.rdwr(msgs); err != nil {
		return &TransportError{Op: "write", Addr: addr, Err: classifyErrno(err, len(data) > 2)}
	}
	runtime.KeepAlive(buf)
	glog.V(2).Infof("i2c-%d: write 0x%02X %d bytes", d.bus, addr, len(data))
	return nil
}

func (d *DevAdapter) rdwr(msgs []i2cMsg) error {
	data := i2cRdwrData{msgs: &msgs[0], nmsgs: uint32(len(msgs))}
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, d.file.Fd(), ioctlI2CRDWR, uintptr(unsafe.Pointer(&data)))
	runtime.KeepAlive(msgs)
	if errno != 0 {
		return errno
	}
	return nil
}

// classifyErrno maps the kernel's NAK reporting onto the package sentinels.
// A NAK during a write that carries data is how a write-protected 24Cxx
// answers.
func classifyErrno(err error, hasPayload bool) error {
	switch {
	case errors.Is(err, unix.EREMOTEIO) && hasPayload:
		return fmt.Errorf("%w (%v)", ErrWriteProtected, err)
	case errors.Is(err, unix.EREMOTEIO), errors.Is(err, unix.ENXIO):
		return fmt.Errorf("%w (%v)", ErrNoDevice, err)
	case errors.Is(err, unix.EAGAIN), errors.Is(err, unix.EBUSY):
		return fmt.Errorf("%w (%v)", ErrBusy, err)
	default:
		return err
	}
}
