// Package nvm unpacks fixed-width configuration words, such as the SAMD5x
// NVM user page, into named bitfields.
package nvm

import "fmt"

// Field is one named bitfield.
type Field struct {
	Name  string
	Width int
}

// Schema lists fields in the order they are packed, most significant first.
type Schema []Field

// Bits returns the summed field width.
func (s Schema) Bits() int {
	n := 0
	for _, f := range s {
		n += f.Width
	}
	return n
}

// Validate checks widths are 1..64 and names are present and unique.
func (s Schema) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("nvm: empty schema")
	}
	seen := make(map[string]bool, len(s))
	for i, f := range s {
		if f.Width < 1 || f.Width > 64 {
			return fmt.Errorf("nvm: field %d (%s) has width %d, want 1..64", i, f.Name, f.Width)
		}
		if f.Name == "" {
			return fmt.Errorf("nvm: field %d has no name", i)
		}
		if seen[f.Name] {
			return fmt.Errorf("nvm: duplicate field %s", f.Name)
		}
		seen[f.Name] = true
	}
	return nil
}

// UserPageLayout is the packing of the first 64 bits of the SAMD5x NVM
// user page as seen by the board tooling.
const UserPageLayout = "u1u1u4u4u4u1u1u8u1u3u4u2u4u11u4u2u8u1"

// UserPageNames names the fields of UserPageLayout in order.
var UserPageNames = []string{
	"RES3",
	"WDT_wen",
	"WDT_ewoff",
	"WDT_window",
	"WDT_period",
	"WDT_alwon",
	"WDT_enable",
	"RES2",
	"RAM_eccdis",
	"PSZ",
	"SBLK",
	"RES1",
	"NVM_BOOTPROT",
	"BOD33_cal",
	"BOD33_hyst",
	"BOD33_action",
	"BOD33_level",
	"BOD33_disable",
}

// UserPage is the default fuse word schema, 64 bits wide.
var UserPage = MustParseLayout(UserPageLayout, UserPageNames...)
