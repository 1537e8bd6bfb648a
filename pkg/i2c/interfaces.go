package i2c

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/gousb"
)

// InterfaceKind categorizes adapter families.
type InterfaceKind string

const (
	InterfaceKindDev     InterfaceKind = "i2c-dev"
	InterfaceKindTinyUSB InterfaceKind = "i2c-tiny-usb"
	InterfaceKindSim     InterfaceKind = "simulator"
)

// InterfaceInfo describes a detected adapter interface/transport.
type InterfaceInfo struct {
	Kind        InterfaceKind
	Description string
	VendorID    uint16
	ProductID   uint16
	Bus         int
	Path        string
}

// Label returns a user-friendly description for the interface.
func (i InterfaceInfo) Label() string {
	if i.Description != "" {
		return i.Description
	}
	if i.Kind == InterfaceKindDev {
		return i.Path
	}
	return fmt.Sprintf("%s (%04X:%04X)", string(i.Kind), i.VendorID, i.ProductID)
}

// devGlob is replaced in tests.
var devGlob = "/dev/i2c-*"

// DiscoverInterfaces lists Linux i2c-dev nodes and connected USB bridges
// that match known VID/PID pairs. It always returns the simulator entry so
// the tool can be exercised without hardware.
func DiscoverInterfaces(ctx context.Context) ([]InterfaceInfo, error) {
	results := discoverDevNodes()

	usb := gousb.NewContext()
	defer usb.Close()

	_, err := usb.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}

		if info, ok := classifyUSBDevice(desc); ok {
			results = append(results, info)
		}
		return false
	})
	if err != nil && err != gousb.ErrorAccess {
		return results, err
	}

	results = append(results, InterfaceInfo{
		Kind:        InterfaceKindSim,
		Description: "Simulator (no hardware)",
	})

	return results, nil
}

func discoverDevNodes() []InterfaceInfo {
	paths, _ := filepath.Glob(devGlob)
	var results []InterfaceInfo
	for _, p := range paths {
		bus, err := strconv.Atoi(strings.TrimPrefix(filepath.Base(p), "i2c-"))
		if err != nil {
			continue
		}
		results = append(results, InterfaceInfo{
			Kind: InterfaceKindDev,
			Bus:  bus,
			Path: p,
		})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Bus < results[j].Bus })
	return results
}

func classifyUSBDevice(desc *gousb.DeviceDesc) (InterfaceInfo, bool) {
	for _, known := range knownTinyUSBVIDPIDs {
		if uint16(desc.Vendor) == known.VendorID && uint16(desc.Product) == known.ProductID {
			return InterfaceInfo{
				Kind:        InterfaceKindTinyUSB,
				Description: known.Description,
				VendorID:    known.VendorID,
				ProductID:   known.ProductID,
			}, true
		}
	}
	return InterfaceInfo{}, false
}

type knownUSBDevice struct {
	VendorID    uint16
	ProductID   uint16
	Description string
}

var knownTinyUSBVIDPIDs = []knownUSBDevice{
	{VendorID: VendorIDTinyUSB, ProductID: ProductIDTinyUSB, Description: "i2c-tiny-usb"},
	{VendorID: 0x1c40, ProductID: 0x0534, Description: "i2c-tiny-usb (EZPrototypes)"},
}
