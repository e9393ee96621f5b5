package models

import (
	"fmt"
	"math/big"
	"strings"
)

// ParseUnits converts a human decimal string ("12.50") to token base units
// using the token's declared decimal count. Malformed strings and excess
// fractional digits are rejected, never silently truncated, so the parsed
// amount is exactly what the contract would receive.
func ParseUnits(s string, decimals uint8) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty amount")
	}

	neg := false
	if s[0] == '+' || s[0] == '-' {
		neg = s[0] == '-'
		s = s[1:]
	}

	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart = s[:i]
		fracPart = s[i+1:]
		if strings.IndexByte(fracPart, '.') >= 0 {
			return nil, fmt.Errorf("invalid amount %q: multiple decimal points", s)
		}
	}

	if intPart == "" && fracPart == "" {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	if !isDigits(intPart) || !isDigits(fracPart) {
		return nil, fmt.Errorf("invalid amount %q: non-digit characters", s)
	}
	if len(fracPart) > int(decimals) {
		return nil, fmt.Errorf("invalid amount %q: more than %d decimal places", s, decimals)
	}

	fracPart += strings.Repeat("0", int(decimals)-len(fracPart))
	if intPart == "" {
		intPart = "0"
	}

	n, ok := new(big.Int).SetString(intPart+fracPart, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	if neg {
		n.Neg(n)
	}
	return n, nil
}

// FormatUnits renders base units back into a decimal string for display.
func FormatUnits(n *big.Int, decimals uint8) string {
	if n == nil {
		return "0"
	}

	sign := ""
	abs := new(big.Int).Abs(n)
	if n.Sign() < 0 {
		sign = "-"
	}

	digits := abs.String()
	if int(decimals) >= len(digits) {
		digits = strings.Repeat("0", int(decimals)-len(digits)+1) + digits
	}

	cut := len(digits) - int(decimals)
	intPart := digits[:cut]
	fracPart := strings.TrimRight(digits[cut:], "0")
	if fracPart == "" {
		return sign + intPart
	}
	return sign + intPart + "." + fracPart
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
