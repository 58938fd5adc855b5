package address

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

const prefix = "0x"

// IsValidContractAddress reports whether input, after trimming whitespace, is
// "0x" followed by exactly 40 hex characters. Checksum casing is not verified.
func IsValidContractAddress(input string) bool {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, prefix) {
		return false
	}
	return common.IsHexAddress(input)
}

// ParseAddresses trims and validates a list of contract addresses, dropping blanks
// and case-insensitive duplicates. The first malformed entry fails the whole list.
func ParseAddresses(inputs []string) ([]string, error) {
	addresses := make([]string, 0, len(inputs))
	seen := make(map[string]struct{}, len(inputs))
	for _, input := range inputs {
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if !IsValidContractAddress(input) {
			return nil, fmt.Errorf("invalid address: %s", input)
		}
		key := strings.ToLower(input)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		addresses = append(addresses, input)
	}
	return addresses, nil
}
