package distribution

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

const signatureSize = 64

// ValidateAddress checks that addr is a base58 encoded 32-byte Solana public key.
func ValidateAddress(addr string) error {
	if addr == "" {
		return fmt.Errorf("empty address")
	}
	if _, err := solana.PublicKeyFromBase58(addr); err != nil {
		return fmt.Errorf("invalid solana address %q: %w", addr, err)
	}
	return nil
}

// ValidateTxSignature checks that sig is a base58 encoded 64-byte transaction signature.
func ValidateTxSignature(sig string) error {
	raw, err := base58.Decode(sig)
	if err != nil {
		return fmt.Errorf("failed to decode signature: %w", err)
	}
	if len(raw) != signatureSize {
		return fmt.Errorf("invalid signature size: expected %d, got %d", signatureSize, len(raw))
	}
	return nil
}
