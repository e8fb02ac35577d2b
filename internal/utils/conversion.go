/*
This file contains common utility functions for converting between wire
representations and SDK math types, with strict validation on the way in.
*/

package utils

import (
	"errors"
	"fmt"
	"strings"

	sdkmath "cosmossdk.io/math"
)

// Error definitions for zero-tolerance error handling
var (
	ErrAmountEmpty    = errors.New("amount is empty")
	ErrAmountInvalid  = errors.New("amount is invalid")
	ErrAmountNegative = errors.New("amount is negative")
)

// ParseAmount parses a decimal-string token amount into an SDK Int. Rejects
// empty, malformed and negative inputs.
func ParseAmount(s string) (sdkmath.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return sdkmath.ZeroInt(), ErrAmountEmpty
	}

	amount, ok := sdkmath.NewIntFromString(s)
	if !ok {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: %q", ErrAmountInvalid, s)
	}
	if amount.IsNegative() {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: %q", ErrAmountNegative, s)
	}
	return amount, nil
}

// FormatAmount renders an SDK Int for wire output. Nil amounts render as "0"
// so callers never emit an invalid JSON number-string.
func FormatAmount(amount sdkmath.Int) string {
	if amount.IsNil() {
		return "0"
	}
	return amount.String()
}
