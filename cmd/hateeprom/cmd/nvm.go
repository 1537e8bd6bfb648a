package cmd

import (
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceEEPROM/pkg/nvm"
)

var (
	nvmLayout string
	nvmNames  []string
	nvmJSON   bool
)

var nvmCmd = &cobra.Command{
	Use:   "nvm <hex>",
	Short: "Decode an NVM user page word",
	Long: `Decode a hex string into the bitfields of the microcontroller's NVM user page.

The default layout is the 64-bit SAMD5x user page word. A custom layout can
be given in bitstruct form with --names, or with names inline.

Examples:
  hateeprom nvm 0xFEFF1C00A06CB080
  hateeprom nvm --json FEFF1C00A06CB080
  hateeprom nvm --layout "u4u4" --names HI,LO 5A
  hateeprom nvm --layout "HI:u4 LO:u4" 5A`,
	Args: cobra.ExactArgs(1),
	RunE: runNVM,
}

func init() {
	rootCmd.AddCommand(nvmCmd)

	nvmCmd.Flags().StringVar(&nvmLayout, "layout", nvm.UserPageLayout,
		"bitfield layout, MSB first")
	nvmCmd.Flags().StringSliceVar(&nvmNames, "names", nil,
		"field names for a layout without inline names")
	nvmCmd.Flags().BoolVar(&nvmJSON, "json", false,
		"output as JSON")
}

func runNVM(cmd *cobra.Command, args []string) error {
	schema := nvm.UserPage
	if nvmLayout != nvm.UserPageLayout || len(nvmNames) > 0 {
		var err error
		schema, err = nvm.ParseLayout(nvmLayout, nvmNames...)
		if err != nil {
			return err
		}
	}

	glog.V(1).Infof("input string: %s", args[0])
	buf, err := nvm.ParseHex(args[0])
	if err != nil {
		return err
	}

	values, err := nvm.Decode(buf, schema)
	if err != nil {
		return err
	}

	if nvmJSON {
		return writeNVMJSON(os.Stdout, values)
	}
	fmt.Println(style.title.Render(fmt.Sprintf("NVM word (%d bits)", schema.Bits())))
	writeNVMTable(os.Stdout, values)
	return nil
}
