package i2c

import (
	"fmt"
	"time"

	"github.com/golang/glog"
	"github.com/google/gousb"
)

// DefaultControlTimeout bounds each vendor control transfer.
const DefaultControlTimeout = 2 * time.Second

// controller is the subset of *gousb.Device the adapter drives.
type controller interface {
	Control(rType, request uint8, val, idx uint16, data []byte) (int, error)
}

// TinyUSBAdapter implements Adapter for i2c-tiny-usb compatible USB bridges.
//
// The bridge only reports address NAKs, so a write-protected EEPROM that
// acknowledges its address but ignores the data is not detected here.
type TinyUSBAdapter struct {
	ctx  *gousb.Context
	dev  *gousb.Device
	ctrl controller
	info AdapterInfo
}

// NewTinyUSBAdapter opens the first bridge with the given VID/PID.
func NewTinyUSBAdapter(vid, pid uint16) (*TinyUSBAdapter, error) {
	ctx := gousb.NewContext()

	dev, err := ctx.OpenDeviceWithVIDPID(gousb.ID(vid), gousb.ID(pid))
	if err != nil {
		ctx.Close()
		return nil, fmt.Errorf("USB error: %w", err)
	}
	if dev == nil {
		ctx.Close()
		return nil, fmt.Errorf("device not found (VID:0x%04X PID:0x%04X)", vid, pid)
	}
	dev.ControlTimeout = DefaultControlTimeout

	serial, _ := dev.SerialNumber()
	manufacturer, _ := dev.Manufacturer()
	product, _ := dev.Product()

	a := newTinyUSBAdapter(dev, AdapterInfo{
		Name:         "i2c-tiny-usb",
		Vendor:       manufacturer,
		Model:        product,
		SerialNumber: serial,
		Path:         fmt.Sprintf("usb:%04X:%04X", vid, pid),
	})
	a.ctx, a.dev = ctx, dev

	if err := a.echo(); err != nil {
		a.Close()
		return nil, fmt.Errorf("bridge did not answer echo: %w", err)
	}
	return a, nil
}

func newTinyUSBAdapter(ctrl controller, info AdapterInfo) *TinyUSBAdapter {
	return &TinyUSBAdapter{ctrl: ctrl, info: info}
}

func (a *TinyUSBAdapter) Info() (AdapterInfo, error) {
	return a.info, nil
}

// SetDelay sets the bridge's SCL half-period in microseconds.
func (a *TinyUSBAdapter) SetDelay(us uint16) error {
	_, err := a.ctrl.Control(tinyRequestOut, TinyCmdSetDelay, us, 0, nil)
	return err
}

func (a *TinyUSBAdapter) WriteThenRead(addr uint16, w []byte, n int) ([]byte, error) {
	if err := ValidateTransfer(addr, w, n); err != nil {
		return nil, err
	}
	out, err := a.run(PlanTinyWriteRead(addr, w, n))
	if err != nil {
		return nil, &TransportError{Op: "write-read", Addr: addr, Err: err}
	}
	glog.V(2).Infof("tiny-usb: write-read 0x%02X w=% X n=%d", addr, w, n)
	return out, nil
}

func (a *TinyUSBAdapter) Write(addr uint16, data []byte) error {
	if err := ValidateWrite(addr, data); err != nil {
		return err
	}
	if _, err := a.run(PlanTinyWrite(addr, data)); err != nil {
		return &TransportError{Op: "write", Addr: addr, Err: err}
	}
	glog.V(2).Infof("tiny-usb: write 0x%02X %d bytes", addr, len(data))
	return nil
}

// run executes the requests of one transaction, checking the bridge status
// after each message. It returns the data of the last read request.
func (a *TinyUSBAdapter) run(reqs []TinyRequest) ([]byte, error) {
	var out []byte
	for _, req := range reqs {
		if req.IsRead() {
			buf := make([]byte, req.Length)
			n, err := a.ctrl.Control(req.RequestType, req.Request, req.Value, req.Index, buf)
			if err != nil {
				return nil, err
			}
			if n != req.Length {
				return nil, fmt.Errorf("%w: got %d of %d bytes", ErrShortRead, n, req.Length)
			}
			out = buf
		} else {
			n, err := a.ctrl.Control(req.RequestType, req.Request, req.Value, req.Index, req.Data)
			if err != nil {
				return nil, err
			}
			if n != len(req.Data) {
				return nil, fmt.Errorf("short write: %d of %d bytes", n, len(req.Data))
			}
		}

		status := TinyStatusRequest()
		resp := make([]byte, status.Length)
		n, err := a.ctrl.Control(status.RequestType, status.Request, status.Value, status.Index, resp)
		if err != nil {
			return nil, fmt.Errorf("read status: %w", err)
		}
		if err := DecodeTinyStatus(resp[:n]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (a *TinyUSBAdapter) echo() error {
	const pattern = 0x5AA5
	buf := make([]byte, 2)
	if _, err := a.ctrl.Control(tinyRequestIn, TinyCmdEcho, pattern, 0, buf); err != nil {
		return err
	}
	if got := uint16(buf[0]) | uint16(buf[1])<<8; got != pattern {
		return fmt.Errorf("echo returned 0x%04X, want 0x%04X", got, pattern)
	}
	return nil
}

// Close releases USB resources
func (a *TinyUSBAdapter) Close() error {
	if a.dev != nil {
		a.dev.Close()
		a.dev = nil
	}
	if a.ctx != nil {
		a.ctx.Close()
		a.ctx = nil
	}
	return nil
}
