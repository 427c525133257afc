// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mw

import "github.com/pkg/errors"

// ChainParams are the consensus constants of one extension-block chain.
// The value is constructed once at node init and threaded explicitly through
// the validator, wallet, and builder; there is no process-global state.
type ChainParams struct {
	// HRP is the human-readable part of stealth addresses.
	HRP string
	// PegInMaturity is the depth at which a pegged-in output becomes
	// spendable. Required; there is no default.
	PegInMaturity uint32
	// MaxBlockWeight caps the weighted size of an extension block.
	MaxBlockWeight uint32

	// Weight coefficients. Block weight is
	// WeightPerInput·#inputs + WeightPerOutput·#outputs +
	// WeightPerKernel·#kernels + WeightPerExtraByte·extra_data_bytes.
	WeightPerInput     uint32
	WeightPerOutput    uint32
	WeightPerKernel    uint32
	WeightPerExtraByte uint32
}

// Validate checks that required parameters are set.
func (p *ChainParams) Validate() error {
	if p.HRP == "" {
		return errors.New("chain params: hrp required")
	}
	if p.PegInMaturity == 0 {
		return errors.New("chain params: pegin maturity required")
	}
	if p.MaxBlockWeight == 0 {
		return errors.New("chain params: max block weight required")
	}
	return nil
}
