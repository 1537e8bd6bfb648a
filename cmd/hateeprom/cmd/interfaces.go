package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceEEPROM/pkg/i2c"
)

var interfacesCmd = &cobra.Command{
	Use:   "interfaces",
	Short: "List available I2C interfaces",
	Long: `Scan the host for I2C adapters (Linux i2c-dev buses, i2c-tiny-usb bridges) and
print a summary. Use this to pick --adapter and --bus for the other commands.`,
	RunE: runInterfaces,
}

func init() {
	rootCmd.AddCommand(interfacesCmd)
}

func runInterfaces(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	infos, err := i2c.DiscoverInterfaces(ctx)
	if err != nil {
		return fmt.Errorf("discover interfaces: %w", err)
	}

	if len(infos) == 0 {
		fmt.Println("No interfaces found.")
		return nil
	}

	fmt.Println("Detected I2C interfaces:")
	for _, iface := range infos {
		switch iface.Kind {
		case i2c.InterfaceKindDev:
			fmt.Printf("  - %s [%s] (--adapter i2cdev --bus %d)\n", iface.Label(), iface.Kind, iface.Bus)
		case i2c.InterfaceKindTinyUSB:
			fmt.Printf("  - %s [%s] (VID:PID %04X:%04X)\n", iface.Label(), iface.Kind, iface.VendorID, iface.ProductID)
		default:
			fmt.Printf("  - %s [%s]\n", iface.Label(), iface.Kind)
		}
	}

	return nil
}
