package session

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// MinSignKeyLength is the shortest accepted HMAC key.
const MinSignKeyLength = 32

// Keys are the two process-wide secrets. They are immutable after startup.
type Keys struct {
	// Sign keys the HMAC-SHA256 over the serialized claim.
	Sign []byte
	// Encrypt keys AES-GCM; it must be 16, 24 or 32 bytes.
	Encrypt []byte
}

// ParseKeys decodes hex-encoded keys and validates their lengths.
func ParseKeys(signHex, encryptHex string) (Keys, error) {
	sign, err := hex.DecodeString(strings.TrimSpace(signHex))
	if err != nil {
		return Keys{}, fmt.Errorf("decode sign key: %w", err)
	}
	enc, err := hex.DecodeString(strings.TrimSpace(encryptHex))
	if err != nil {
		return Keys{}, fmt.Errorf("decode encrypt key: %w", err)
	}
	k := Keys{Sign: sign, Encrypt: enc}
	if err := k.validate(); err != nil {
		return Keys{}, err
	}
	return k, nil
}

func (k Keys) validate() error {
	if len(k.Sign) < MinSignKeyLength {
		return fmt.Errorf("sign key must be at least %d bytes, got %d", MinSignKeyLength, len(k.Sign))
	}
	switch len(k.Encrypt) {
	case 16, 24, 32:
	default:
		return errors.New("encrypt key must be 16, 24 or 32 bytes")
	}
	return nil
}
