package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// codeSpan is the number of valid codes; codes are drawn uniformly from
// [100000, 999999] so every code is exactly six digits with no leading zero.
const (
	codeMin  = 100000
	codeSpan = 900000
)

// New generates a one-time confirmation code as a 6-digit numeric string.
func New() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+codeMin), nil
}
