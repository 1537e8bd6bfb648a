package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceEEPROM/pkg/eeprom"
	"github.com/OpenTraceLab/OpenTraceEEPROM/pkg/hat"
	"github.com/OpenTraceLab/OpenTraceEEPROM/pkg/i2c"
	"github.com/OpenTraceLab/OpenTraceEEPROM/pkg/imagefile"
)

var (
	writeInput string
	writeDelay time.Duration
	writeForce bool
)

var writeCmd = &cobra.Command{
	Use:   "write",
	Short: "Write an image to the HAT EEPROM",
	Long: `Write an image file to the EEPROM starting at address 0.

The image is decoded first and refused if it is malformed or has checksum
mismatches, unless --force is given. Each block is preceded by --delay to let
the part finish its previous write cycle; --delay 0 skips the wait at your
own risk. Nothing is read back.

Examples:
  hateeprom write -i eeprom.bin
  hateeprom write -i eeprom.hex --adapter tinyusb --delay 20ms`,
	RunE: runWrite,
}

func init() {
	rootCmd.AddCommand(writeCmd)
	addAdapterFlags(writeCmd)

	writeCmd.Flags().StringVarP(&writeInput, "input", "i", "",
		"image file to write (.hex/.ihex for Intel HEX)")
	writeCmd.Flags().DurationVar(&writeDelay, "delay", eeprom.DefaultWriteDelay,
		"pause before each write block")
	writeCmd.Flags().BoolVar(&writeForce, "force", false,
		"write even if the image does not decode cleanly")

	writeCmd.MarkFlagRequired("input")
}

func runWrite(cmd *cobra.Command, args []string) error {
	data, err := imagefile.Load(writeInput)
	if err != nil {
		return err
	}

	if !writeForce {
		img, err := hat.Decode(data)
		if err != nil {
			return fmt.Errorf("refusing to write: %w", err)
		}
		if err := img.Verify(); err != nil {
			return fmt.Errorf("refusing to write: %w", err)
		}
	}

	blocks, err := eeprom.Plan(len(data), blockSize)
	if err != nil {
		return err
	}

	adapter, addr, err := openDevice()
	if err != nil {
		return err
	}
	defer adapter.Close()

	mem := eeprom.New(adapter, addr, eeprom.WithBlockSize(blockSize), eeprom.WithWriteDelay(writeDelay))
	if err := mem.Write(data); err != nil {
		if errors.Is(err, i2c.ErrWriteProtected) {
			return fmt.Errorf("EEPROM is write-protected: %w", err)
		}
		return fmt.Errorf("write eeprom: %w", err)
	}

	fmt.Printf("Wrote %d bytes in %d blocks to device 0x%02X\n", len(data), len(blocks), addr)
	return nil
}
