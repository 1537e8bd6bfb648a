package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "hateeprom",
	Short: "HAT EEPROM and NVM configuration tool",
	Long: `Read, write and decode the ID EEPROM of a Raspberry Pi HAT style board
and decode the NVM user page of its microcontroller.

Examples:
  hateeprom dump -a 50 -o eeprom.bin             # Read and decode the EEPROM on /dev/i2c-0
  hateeprom dump -i eeprom.bin --json            # Decode a saved image
  hateeprom write -i eeprom.hex --adapter sim    # Write an image to the simulator
  hateeprom nvm 0xFEFF1C00A06CB080               # Decode an NVM user page word
  hateeprom shell --adapter tinyusb              # Interactive session`,
	Version:           "0.9.0",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
}

// Execute runs the root command
func Execute() {
	defer glog.Flush()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		glog.Flush()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (trace bus transactions)")
}

// setupLogging routes glog to stderr. glog's own flags are not exposed on
// the command line; --verbose maps to -v=2.
func setupLogging(cmd *cobra.Command, args []string) error {
	if !flag.Parsed() {
		if err := flag.CommandLine.Parse(nil); err != nil {
			return err
		}
	}
	if err := flag.Set("logtostderr", "true"); err != nil {
		return err
	}
	level := "0"
	if verbose {
		level = "2"
	}
	return flag.Set("v", level)
}
