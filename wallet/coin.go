// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package wallet

import (
	"github.com/mwebchain/mweb/block"
	"github.com/mwebchain/mweb/mw"
)

// Coin is an output the wallet controls, with the witness recovered by
// rewinding it.
type Coin struct {
	Commitment   mw.Commitment
	Amount       uint64
	Blind        mw.BlindingFactor
	SpendKey     mw.SecretKey // one-time key of the output's receiver pubkey
	AddressIndex uint32
	Features     uint8
	// BlockHeight is the height that confirmed the coin; 0 while it is only
	// observed in the mempool.
	BlockHeight uint64
	// SpentBy is the hash of the block or transaction that spent the coin;
	// zero while unspent.
	SpentBy mw.Hash
}

// IsPeggedIn reports whether the coin was minted by a peg-in.
func (c Coin) IsPeggedIn() bool { return c.Features&1 != 0 }

// IsSpent reports whether a spend has been recorded.
func (c Coin) IsSpent() bool { return c.SpentBy.IsZero() == false }

// IsConfirmed reports whether the coin is in a connected block.
func (c Coin) IsConfirmed() bool { return c.BlockHeight > 0 }

// Store is the wallet-storage interface supplied by the host.
type Store interface {
	GetMasterSeed() ([]byte, error)
	AddCoins(coins []Coin) error
	GetCoin(commitment mw.Commitment) (*Coin, error)
	ListCoins() ([]Coin, error)
	MarkSpent(commitment mw.Commitment, spentBy mw.Hash) error
	// RewindTo forgets every coin confirmed above height. Spend marks on the
	// coins it keeps are left as they are.
	RewindTo(height uint64) error
}

// Chain is the host-chain interface used for historical scans.
type Chain interface {
	GetTipHeight() (uint64, error)
	GetBlock(height uint64) (*block.Block, error)
}

// Balance is the wallet's value split by maturity.
type Balance struct {
	Confirmed   uint64
	Immature    uint64
	Unconfirmed uint64
}
