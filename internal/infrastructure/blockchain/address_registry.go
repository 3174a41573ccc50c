package blockchain

import (
	"fmt"
	"strings"
	"sync"

	"heirloom.backend/internal/domain/entities"
	domainerrors "heirloom.backend/internal/domain/errors"
)

// AddressValidator checks that an address is well formed for one chain family
type AddressValidator interface {
	ValidateAddress(address string) error
}

// AddressRegistry routes wallet addresses to the validator of their wallet type
type AddressRegistry struct {
	validators map[entities.WalletType]AddressValidator
	mu         sync.RWMutex
}

// NewAddressRegistry creates a registry covering every supported wallet type.
// USDT is validated as an ERC-20 holder address.
func NewAddressRegistry(bitcoinNetwork string) (*AddressRegistry, error) {
	btc, err := NewBitcoinValidator(bitcoinNetwork)
	if err != nil {
		return nil, err
	}
	evm := EVMValidator{}

	return &AddressRegistry{
		validators: map[entities.WalletType]AddressValidator{
			entities.WalletTypeBitcoin:  btc,
			entities.WalletTypeEthereum: evm,
			entities.WalletTypeUSDT:     evm,
		},
	}, nil
}

// Register injects or overrides the validator for a wallet type
func (r *AddressRegistry) Register(walletType entities.WalletType, v AddressValidator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validators[walletType] = v
}

// ValidateAddress checks address against the rules of walletType
func (r *AddressRegistry) ValidateAddress(walletType entities.WalletType, address string) error {
	r.mu.RLock()
	v, ok := r.validators[walletType]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", domainerrors.ErrUnsupportedWallet, walletType)
	}

	if strings.TrimSpace(address) != address || address == "" {
		return fmt.Errorf("%w: empty or padded address", domainerrors.ErrInvalidAddress)
	}
	return v.ValidateAddress(address)
}
