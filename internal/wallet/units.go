package wallet

import (
	"fmt"
	"math/big"
	"strings"
)

// ParseUnits converts a decimal string in human units into the smallest unit,
// e.g. ParseUnits("0.0001", 18) = 100000000000000.
func ParseUnits(amount string, decimals int) (*big.Int, error) {
	if decimals < 0 {
		return nil, fmt.Errorf("wallet: negative decimals %d", decimals)
	}
	s := strings.TrimSpace(amount)
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return nil, fmt.Errorf("wallet: invalid amount %q", amount)
	}
	if len(frac) > decimals {
		return nil, fmt.Errorf("wallet: amount %q has more than %d decimals", amount, decimals)
	}

	digits := whole + frac + strings.Repeat("0", decimals-len(frac))
	for _, r := range digits {
		if r < '0' || r > '9' {
			return nil, fmt.Errorf("wallet: invalid amount %q", amount)
		}
	}

	v, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("wallet: invalid amount %q", amount)
	}
	return v, nil
}

// FormatUnits is the inverse of ParseUnits. Trailing zeros are dropped.
func FormatUnits(v *big.Int, decimals int) string {
	if v == nil {
		return "0"
	}
	s := new(big.Int).Abs(v).String()
	sign := ""
	if v.Sign() < 0 {
		sign = "-"
	}
	if decimals <= 0 {
		return sign + s
	}

	if len(s) <= decimals {
		s = strings.Repeat("0", decimals-len(s)+1) + s
	}
	whole := s[:len(s)-decimals]
	frac := strings.TrimRight(s[len(s)-decimals:], "0")
	if frac == "" {
		return sign + whole
	}
	return sign + whole + "." + frac
}
