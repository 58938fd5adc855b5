package address

import (
	"reflect"
	"strings"
	"testing"
)

func TestIsValidContractAddress(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  bool
	}{
		{"mixed case", "0xABCDEF0123456789abcdef0123456789ABCDEF01", true},
		{"zero with whitespace", " 0x0000000000000000000000000000000000000000 ", true},
		{"tabs and newline", "\t0x1111111111111111111111111111111111111111\n", true},
		{"short", "0xZZZ", false},
		{"non hex body", "0xZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZ", false},
		{"no prefix", "1111111111111111111111111111111111111111", false},
		{"upper prefix", "0X1111111111111111111111111111111111111111", false},
		{"41 hex", "0x11111111111111111111111111111111111111111", false},
		{"39 hex", "0x111111111111111111111111111111111111111", false},
		{"inner space", "0x11111111111111111111 111111111111111111", false},
		{"empty", "", false},
		{"prefix only", "0x", false},
	}

	for _, tc := range cases {
		if got := IsValidContractAddress(tc.input); got != tc.want {
			t.Fatalf("%s: IsValidContractAddress(%q) = %v, want %v", tc.name, tc.input, got, tc.want)
		}
	}
}

func TestIsValidContractAddressTotal(t *testing.T) {
	inputs := []string{
		strings.Repeat("0x", 100),
		"\x00\xff",
		"0x" + strings.Repeat("é", 20),
		strings.Repeat(" ", 42),
	}
	for _, input := range inputs {
		if IsValidContractAddress(input) {
			t.Fatalf("unexpected valid address %q", input)
		}
	}
}

func TestParseAddresses(t *testing.T) {
	got, err := ParseAddresses([]string{
		" 0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		"",
		"0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
		"0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		"0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("addresses mismatch: %v != %v", got, want)
	}
}

func TestParseAddressesInvalid(t *testing.T) {
	_, err := ParseAddresses([]string{"0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "0xnope"})
	if err == nil {
		t.Fatalf("expected error for malformed address")
	}
	if !strings.Contains(err.Error(), "0xnope") {
		t.Fatalf("error should name the bad entry: %v", err)
	}
}
