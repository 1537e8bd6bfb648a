package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceEEPROM/pkg/i2c"
	"github.com/OpenTraceLab/OpenTraceEEPROM/pkg/imagefile"
)

var (
	adapterType string
	busNumber   int
	deviceAddr  string
	blockSize   int
	simImage    string
	simProtect  bool
)

// addAdapterFlags registers the flags shared by commands that talk to a
// device.
func addAdapterFlags(c *cobra.Command) {
	f := c.Flags()
	f.StringVar(&adapterType, "adapter", "i2cdev",
		"I2C adapter type (i2cdev, tinyusb, sim)")
	f.IntVar(&busNumber, "bus", 0,
		"i2cdev: bus number (/dev/i2c-N)")
	f.StringVarP(&deviceAddr, "address", "a", "50",
		"EEPROM device address in hex")
	f.IntVar(&blockSize, "block-size", 32,
		"bytes per bus transaction")
	f.StringVar(&simImage, "sim-image", "",
		"sim: preload the simulated EEPROM from this image file")
	f.BoolVar(&simProtect, "sim-write-protect", false,
		"sim: assert the simulated WP pin")
}

// parseAddress accepts "50", "0x50" or "0X50".
func parseAddress(s string) (uint16, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid device address %q: %w", s, err)
	}
	if err := i2c.ValidateAddress(uint16(v)); err != nil {
		return 0, err
	}
	return uint16(v), nil
}

func createAdapter(adapterType string, addr uint16) (i2c.Adapter, error) {
	switch adapterType {
	case "simulator", "sim":
		if verbose {
			fmt.Println("Using simulator adapter")
		}
		cfg := i2c.DefaultSimConfig()
		cfg.DeviceAddr = addr
		cfg.WriteProtect = simProtect
		sim := i2c.NewSimAdapter(cfg)
		if simImage != "" {
			data, err := imagefile.Load(simImage)
			if err != nil {
				return nil, fmt.Errorf("invalid --sim-image: %w", err)
			}
			if err := sim.Load(data); err != nil {
				return nil, err
			}
		}
		return sim, nil

	case "i2cdev", "dev", "linux":
		if verbose {
			fmt.Printf("Opening %s...\n", i2c.DevPath(busNumber))
		}
		return i2c.OpenDevAdapter(busNumber)

	case "tinyusb", "i2c-tiny-usb":
		if verbose {
			fmt.Println("Opening i2c-tiny-usb bridge...")
		}
		adapter, err := i2c.NewTinyUSBAdapter(i2c.VendorIDTinyUSB, i2c.ProductIDTinyUSB)
		if err != nil {
			return nil, fmt.Errorf("failed to open i2c-tiny-usb bridge: %w", err)
		}
		if verbose {
			info, _ := adapter.Info()
			fmt.Printf("Connected to: %s %s\n", info.Vendor, info.Model)
			fmt.Printf("  Serial: %s\n", info.SerialNumber)
		}
		return adapter, nil

	default:
		return nil, fmt.Errorf("unknown adapter type: %s (supported: i2cdev, tinyusb, sim)", adapterType)
	}
}

// openDevice parses the address flag and opens the selected adapter.
func openDevice() (i2c.Adapter, uint16, error) {
	addr, err := parseAddress(deviceAddr)
	if err != nil {
		return nil, 0, err
	}
	adapter, err := createAdapter(adapterType, addr)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create adapter: %w", err)
	}
	return adapter, addr, nil
}
