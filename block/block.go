// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package block

import (
	"github.com/mwebchain/mweb/mw"
	"github.com/mwebchain/mweb/ser"
	"github.com/mwebchain/mweb/tx"
)

// Block pairs a header with the body it commits to.
type Block struct {
	header *Header
	body   tx.TxBody

	cache struct {
		hash *mw.Hash
	}
}

// NewBlock creates a block from a header and body.
func NewBlock(header *Header, body tx.TxBody) *Block {
	return &Block{header: header, body: body}
}

// Header returns the block header.
func (b *Block) Header() *Header { return b.header }

// Body returns the element lists.
func (b *Block) Body() tx.TxBody { return b.body }

// Height returns the block height.
func (b *Block) Height() uint64 { return b.header.Height }

// Inputs returns the spent-output references.
func (b *Block) Inputs() []tx.Input { return b.body.Inputs }

// Outputs returns the created outputs.
func (b *Block) Outputs() []tx.Output { return b.body.Outputs }

// Kernels returns the block kernels.
func (b *Block) Kernels() []tx.Kernel { return b.body.Kernels }

// TotalFee sums the kernel fees.
func (b *Block) TotalFee() uint64 { return b.body.TotalFee() }

// PegInAmount sums the minted peg-in value.
func (b *Block) PegInAmount() uint64 { return b.body.PegInAmount() }

// PegInKernels returns the kernels that mint value.
func (b *Block) PegInKernels() []tx.Kernel { return b.body.PegInKernels() }

// PegOutKernels returns the kernels that burn value.
func (b *Block) PegOutKernels() []tx.Kernel { return b.body.PegOutKernels() }

// PegOutCoins returns the host-chain destinations.
func (b *Block) PegOutCoins() []tx.PegOutCoin { return b.body.PegOutCoins() }

// KernelHashes returns the kernel digests.
func (b *Block) KernelHashes() []mw.Hash { return b.body.KernelHashes() }

// InputCommitments returns the spent commitments.
func (b *Block) InputCommitments() []mw.Commitment { return b.body.InputCommitments() }

// Serialize implements ser.Serializable.
func (b *Block) Serialize(s *ser.Serializer) {
	s.Write(b.header)
	s.Write(b.body)
}

// DeserializeBlock reads a Block.
func DeserializeBlock(d *ser.Deserializer) *Block {
	header := DeserializeHeader(d)
	body := tx.DeserializeTxBody(d)
	if d.Err() != nil {
		return nil
	}
	return NewBlock(header, body)
}

// Hash returns the identifying digest of the block.
func (b *Block) Hash() mw.Hash {
	if cached := b.cache.hash; cached != nil {
		return *cached
	}
	h := mw.Hashed(b)
	b.cache.hash = &h
	return h
}
