package solana

import (
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// WSOLMint is the wrapped SOL mint address.
const WSOLMint = "So11111111111111111111111111111111111111112"

// Address validation errors.
var (
	ErrInvalidBase58 = errors.New("address is not valid base58")
	ErrInvalidLength = errors.New("address does not decode to 32 bytes")
	ErrNotOnCurve    = errors.New("address is not an ed25519 curve point")
	ErrEmptyAddress  = errors.New("address is empty")
)

// ValidateAddress checks that an address is a plausible Solana account key:
// base58, 32 bytes decoded, and on the ed25519 curve. Program derived
// addresses are intentionally rejected since pool accounts observed by the
// collector are ordinary keypair accounts.
func ValidateAddress(addr string) error {
	if addr == "" {
		return ErrEmptyAddress
	}

	decoded, err := base58.Decode(addr)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidBase58, addr)
	}
	if len(decoded) != 32 {
		return fmt.Errorf("%w: %q decodes to %d bytes", ErrInvalidLength, addr, len(decoded))
	}
	if !IsOnCurve(decoded) {
		return fmt.Errorf("%w: %q", ErrNotOnCurve, addr)
	}
	return nil
}

// IsOnCurve reports whether a 32-byte key is a valid ed25519 curve point.
func IsOnCurve(key []byte) bool {
	if len(key) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(key)
	return err == nil
}
