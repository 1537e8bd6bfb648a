package nvm

import (
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"
)

// ParseHex decodes a hex string such as "0x1234abcd" or "12 34 ab cd".
// Whitespace is ignored and a single 0x prefix is accepted.
func ParseHex(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
	}
	if s == "" {
		return nil, fmt.Errorf("nvm: empty hex input")
	}
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("nvm: hex input has odd length %d", len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("nvm: bad hex input: %w", err)
	}
	return b, nil
}
