package cmd

import (
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceEEPROM/pkg/eeprom"
	"github.com/OpenTraceLab/OpenTraceEEPROM/pkg/hat"
	"github.com/OpenTraceLab/OpenTraceEEPROM/pkg/imagefile"
)

var (
	dumpInput  string
	dumpOutput string
	dumpCount  int
	dumpJSON   bool
	dumpStrict bool
	dumpRaw    bool
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Read and decode the HAT EEPROM",
	Long: `Read the EEPROM image from the device (or an image file), print a hex dump,
optionally save the raw image, and decode the header and atoms.

Every atom is shown with its stored and its computed CRC-16. A checksum
mismatch is reported but does not stop decoding; use --strict to turn it
into a failing exit status.

Examples:
  # Read 4 KiB from 0x50 on /dev/i2c-0 and save it
  hateeprom dump -a 50 -o eeprom.bin

  # Decode a saved image as JSON
  hateeprom dump -i eeprom.hex --json

  # Read through the simulator preloaded with an image
  hateeprom dump --adapter sim --sim-image eeprom.bin`,
	RunE: runDump,
}

func init() {
	rootCmd.AddCommand(dumpCmd)
	addAdapterFlags(dumpCmd)

	dumpCmd.Flags().StringVarP(&dumpInput, "input", "i", "",
		"decode this image file instead of reading the device")
	dumpCmd.Flags().StringVarP(&dumpOutput, "output", "o", "",
		"save the raw image (.hex/.ihex for Intel HEX)")
	dumpCmd.Flags().IntVarP(&dumpCount, "count", "c", 4096,
		"bytes to read from the device")
	dumpCmd.Flags().BoolVar(&dumpJSON, "json", false,
		"output decoded image as JSON")
	dumpCmd.Flags().BoolVar(&dumpStrict, "strict", false,
		"fail on checksum mismatches")
	dumpCmd.Flags().BoolVar(&dumpRaw, "raw", false,
		"only dump bytes, do not decode")
}

func runDump(cmd *cobra.Command, args []string) error {
	data, err := acquireImage()
	if err != nil {
		return err
	}

	if !dumpJSON {
		fmt.Println("eeprom content:")
		writeHexDump(os.Stdout, data)
	}

	if dumpOutput != "" {
		if err := imagefile.Save(dumpOutput, data); err != nil {
			return fmt.Errorf("failed to save image: %w", err)
		}
		if !dumpJSON {
			fmt.Printf("saved %d bytes to %s\n", len(data), dumpOutput)
		}
	}

	if dumpRaw {
		return nil
	}

	img, err := hat.Decode(data)
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	for _, a := range img.Mismatches() {
		glog.Warningf("atom %d (%s): stored CRC 0x%04X, computed 0x%04X", a.Count, a.Type, a.CRC, a.Computed)
	}

	if dumpJSON {
		if err := outputJSONFormat(imageToJSON(img)); err != nil {
			return err
		}
	} else {
		fmt.Println("parsed eeprom data:")
		writeImageReport(os.Stdout, img)
	}

	if dumpStrict {
		return img.Verify()
	}
	return nil
}

func acquireImage() ([]byte, error) {
	if dumpInput != "" {
		glog.V(1).Infof("loading image from %s", dumpInput)
		return imagefile.Load(dumpInput)
	}

	adapter, addr, err := openDevice()
	if err != nil {
		return nil, err
	}
	defer adapter.Close()

	mem := eeprom.New(adapter, addr, eeprom.WithBlockSize(blockSize))
	data, err := mem.Read(dumpCount)
	if err != nil {
		return nil, fmt.Errorf("read eeprom: %w", err)
	}
	glog.V(1).Infof("read %d bytes from 0x%02X", len(data), addr)
	return data, nil
}
