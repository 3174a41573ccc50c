package blockchain

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	domainerrors "heirloom.backend/internal/domain/errors"
)

// EVMValidator accepts 20-byte hex addresses. Mixed-case input must carry a
// valid EIP-55 checksum.
type EVMValidator struct{}

func (EVMValidator) ValidateAddress(address string) error {
	if !common.IsHexAddress(address) {
		return fmt.Errorf("%w: not a 20-byte hex address", domainerrors.ErrInvalidAddress)
	}

	body := strings.TrimPrefix(strings.TrimPrefix(address, "0x"), "0X")
	if body == strings.ToLower(body) || body == strings.ToUpper(body) {
		return nil
	}
	if common.HexToAddress(address).Hex() != "0x"+body {
		return fmt.Errorf("%w: checksum mismatch", domainerrors.ErrInvalidAddress)
	}
	return nil
}
