// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package near

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// ErrInvalidBalance is returned when a balance string cannot be parsed.
var ErrInvalidBalance = errors.New("invalid balance")

// NEARDecimals is the number of yoctoNEAR decimal places in one NEAR.
const NEARDecimals = 24

var (
	oneNEAR    = new(big.Int).Exp(big.NewInt(10), big.NewInt(NEARDecimals), nil)
	maxBalance = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
)

// Balance is an amount in yoctoNEAR (an unsigned 128-bit value).
// The zero value is 0.
type Balance struct {
	yocto *big.Int
}

// BalanceFromYocto builds a balance from a yoctoNEAR integer.
func BalanceFromYocto(v *big.Int) (Balance, error) {
	if v.Sign() < 0 {
		return Balance{}, fmt.Errorf("%w: negative amount", ErrInvalidBalance)
	}
	if v.Cmp(maxBalance) > 0 {
		return Balance{}, fmt.Errorf("%w: amount exceeds 128 bits", ErrInvalidBalance)
	}
	return Balance{yocto: new(big.Int).Set(v)}, nil
}

// Yocto returns a copy of the amount in yoctoNEAR.
func (b Balance) Yocto() *big.Int {
	if b.yocto == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(b.yocto)
}

// IsZero reports whether the balance is 0.
func (b Balance) IsZero() bool {
	return b.yocto == nil || b.yocto.Sign() == 0
}

// Cmp compares two balances.
func (b Balance) Cmp(o Balance) int {
	return b.Yocto().Cmp(o.Yocto())
}

// String renders the balance in NEAR with trailing zeros trimmed,
// e.g. "1.5 NEAR", "0 NEAR".
func (b Balance) String() string {
	v := b.Yocto()
	if v.Sign() == 0 {
		return "0 NEAR"
	}
	whole, frac := new(big.Int).QuoRem(v, oneNEAR, new(big.Int))
	if frac.Sign() == 0 {
		return whole.String() + " NEAR"
	}
	fracStr := frac.String()
	fracStr = strings.Repeat("0", NEARDecimals-len(fracStr)) + fracStr
	return whole.String() + "." + strings.TrimRight(fracStr, "0") + " NEAR"
}

// MarshalText encodes the balance as a decimal yoctoNEAR string, which
// is how the JSON-RPC API transports u128 values.
func (b Balance) MarshalText() ([]byte, error) {
	return []byte(b.Yocto().String()), nil
}

// UnmarshalText decodes a decimal yoctoNEAR string.
func (b *Balance) UnmarshalText(text []byte) error {
	v, ok := new(big.Int).SetString(string(text), 10)
	if !ok {
		return fmt.Errorf("%w: %q is not a decimal integer", ErrInvalidBalance, text)
	}
	parsed, err := BalanceFromYocto(v)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// ParseBalance parses a user-supplied amount. Accepted forms:
//
//	"1 NEAR", "0.25NEAR", "1000 yoctoNEAR", "1000"
//
// A bare integer is yoctoNEAR.
func ParseBalance(s string) (Balance, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Balance{}, fmt.Errorf("%w: empty amount", ErrInvalidBalance)
	}

	lower := strings.ToLower(s)
	switch {
	case strings.HasSuffix(lower, "yoctonear"):
		return parseYocto(strings.TrimSpace(s[:len(s)-len("yoctonear")]))
	case strings.HasSuffix(lower, "near"):
		return parseNEAR(strings.TrimSpace(s[:len(s)-len("near")]))
	default:
		return parseYocto(s)
	}
}

func parseYocto(s string) (Balance, error) {
	if s == "" || strings.ContainsAny(s, ".-+") {
		return Balance{}, fmt.Errorf("%w: %q is not a whole number of yoctoNEAR", ErrInvalidBalance, s)
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Balance{}, fmt.Errorf("%w: %q is not a number", ErrInvalidBalance, s)
	}
	return BalanceFromYocto(v)
}

// parseNEAR converts a decimal NEAR amount into yoctoNEAR without
// going through floating point.
func parseNEAR(amount string) (Balance, error) {
	if amount == "" {
		return Balance{}, fmt.Errorf("%w: missing amount", ErrInvalidBalance)
	}
	if strings.HasPrefix(amount, "-") {
		return Balance{}, fmt.Errorf("%w: amount cannot be negative", ErrInvalidBalance)
	}

	parts := strings.Split(amount, ".")
	if len(parts) > 2 {
		return Balance{}, fmt.Errorf("%w: multiple decimal points", ErrInvalidBalance)
	}

	integerPart := parts[0]
	fractionalPart := ""
	if len(parts) == 2 {
		fractionalPart = parts[1]
	}
	if integerPart == "" {
		integerPart = "0"
	}
	if len(fractionalPart) > NEARDecimals {
		return Balance{}, fmt.Errorf("%w: too many decimal places (max %d)", ErrInvalidBalance, NEARDecimals)
	}

	// "1.5" -> "1" + "500000000000000000000000"
	digits := integerPart + fractionalPart + strings.Repeat("0", NEARDecimals-len(fractionalPart))
	for _, r := range digits {
		if r < '0' || r > '9' {
			return Balance{}, fmt.Errorf("%w: %q is not a number", ErrInvalidBalance, amount)
		}
	}
	v, _ := new(big.Int).SetString(digits, 10)
	return BalanceFromYocto(v)
}
