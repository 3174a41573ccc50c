package blockchain

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	domainerrors "heirloom.backend/internal/domain/errors"
)

// BitcoinValidator accepts P2PKH, P2SH and segwit addresses of one network
type BitcoinValidator struct {
	params *chaincfg.Params
}

// NewBitcoinValidator builds a validator for mainnet, testnet, regtest or signet
func NewBitcoinValidator(network string) (*BitcoinValidator, error) {
	var params *chaincfg.Params
	switch network {
	case "", "mainnet":
		params = &chaincfg.MainNetParams
	case "testnet", "testnet3":
		params = &chaincfg.TestNet3Params
	case "regtest":
		params = &chaincfg.RegressionNetParams
	case "signet":
		params = &chaincfg.SigNetParams
	default:
		return nil, fmt.Errorf("unknown bitcoin network %q", network)
	}
	return &BitcoinValidator{params: params}, nil
}

func (v *BitcoinValidator) ValidateAddress(address string) error {
	decoded, err := btcutil.DecodeAddress(address, v.params)
	if err != nil {
		return fmt.Errorf("%w: %v", domainerrors.ErrInvalidAddress, err)
	}
	if !decoded.IsForNet(v.params) {
		return fmt.Errorf("%w: address is not for %s", domainerrors.ErrInvalidAddress, v.params.Name)
	}
	return nil
}
