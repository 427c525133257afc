// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package fortest builds consistent test fixtures: blocks whose headers
// carry the roots a correct view must reproduce.
package fortest

import (
	"github.com/mwebchain/mweb/block"
	"github.com/mwebchain/mweb/cry"
	"github.com/mwebchain/mweb/mmr"
	"github.com/mwebchain/mweb/mw"
	"github.com/mwebchain/mweb/ser"
	"github.com/mwebchain/mweb/tx"
)

// Chain simulates the authenticated state with in-memory structures and
// mints headers for bodies applied to it.
type Chain struct {
	kernels *mmr.MMR
	outputs *mmr.MMR
	proofs  *mmr.MMR
	leafset *mmr.LeafSet

	utxoLeaves map[mw.Commitment]mmr.LeafIndex
	height     uint64
	kernelOff  mw.BlindingFactor
	ownerOff   mw.BlindingFactor
}

// NewChain creates an empty simulated chain.
func NewChain() *Chain {
	return &Chain{
		kernels:    mmr.New(mmr.NewMemBackend()),
		outputs:    mmr.New(mmr.NewMemBackend()),
		proofs:     mmr.New(mmr.NewMemBackend()),
		leafset:    mmr.NewLeafSet(),
		utxoLeaves: make(map[mw.Commitment]mmr.LeafIndex),
	}
}

// Height returns the simulated tip height.
func (c *Chain) Height() uint64 { return c.height }

// BuildBlock applies the transaction to the simulated state and returns the
// block carrying the resulting header.
func (c *Chain) BuildBlock(t *tx.Transaction) (*block.Block, error) {
	body := t.Body()

	for _, in := range body.Inputs {
		if leafIdx, ok := c.utxoLeaves[in.Commitment]; ok {
			c.leafset.Unset(leafIdx)
		}
	}
	for _, out := range body.Outputs {
		leafIdx, err := c.outputs.Add(ser.ToBytes(out))
		if err != nil {
			return nil, err
		}
		if _, err := c.proofs.Add(out.RangeProof); err != nil {
			return nil, err
		}
		c.leafset.Set(leafIdx)
		c.utxoLeaves[out.Commitment] = leafIdx
	}
	for _, k := range body.Kernels {
		if _, err := c.kernels.Add(ser.ToBytes(k)); err != nil {
			return nil, err
		}
	}

	kernelRoot, err := c.kernels.Root()
	if err != nil {
		return nil, err
	}
	outputRoot, err := c.outputs.Root()
	if err != nil {
		return nil, err
	}
	proofRoot, err := c.proofs.Root()
	if err != nil {
		return nil, err
	}

	c.height++
	c.kernelOff = cry.AddBlindingFactors([]mw.BlindingFactor{c.kernelOff, t.KernelOffset()}, nil)
	c.ownerOff = cry.AddBlindingFactors([]mw.BlindingFactor{c.ownerOff, t.OwnerOffset()}, nil)

	header := &block.Header{
		Height:         c.height,
		OutputRoot:     outputRoot,
		RangeProofRoot: proofRoot,
		KernelRoot:     kernelRoot,
		LeafsetRoot:    c.leafset.Root(),
		KernelOffset:   c.kernelOff,
		OwnerOffset:    c.ownerOff,
		OutputMMRSize:  c.outputs.LeafCount(),
		KernelMMRSize:  c.kernels.LeafCount(),
	}
	return block.NewBlock(header, body), nil
}
