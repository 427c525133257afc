// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package block defines extension-block headers and blocks. Headers chain by
// height and linked roots only; there is no internal prev-hash.
package block

import (
	"github.com/mwebchain/mweb/mw"
	"github.com/mwebchain/mweb/ser"
)

// Header commits to the authenticated state after connecting its block: the
// four MMR/leafset roots, the running offsets, and the MMR sizes needed to
// rewind.
type Header struct {
	Height          uint64
	OutputRoot      mw.Hash
	RangeProofRoot  mw.Hash
	KernelRoot      mw.Hash
	LeafsetRoot     mw.Hash
	KernelOffset    mw.BlindingFactor // total, cumulative over the chain
	OwnerOffset     mw.BlindingFactor // total, cumulative over the chain
	OutputMMRSize   uint64            // leaf count
	KernelMMRSize   uint64            // leaf count
}

// Serialize implements ser.Serializable.
func (h *Header) Serialize(s *ser.Serializer) {
	s.WriteU64(h.Height)
	s.Write(h.OutputRoot)
	s.Write(h.RangeProofRoot)
	s.Write(h.KernelRoot)
	s.Write(h.LeafsetRoot)
	s.Write(h.KernelOffset)
	s.Write(h.OwnerOffset)
	s.WriteU64(h.OutputMMRSize)
	s.WriteU64(h.KernelMMRSize)
}

// DeserializeHeader reads a Header.
func DeserializeHeader(d *ser.Deserializer) *Header {
	h := &Header{}
	h.Height = d.ReadU64()
	h.OutputRoot = mw.DeserializeHash(d)
	h.RangeProofRoot = mw.DeserializeHash(d)
	h.KernelRoot = mw.DeserializeHash(d)
	h.LeafsetRoot = mw.DeserializeHash(d)
	h.KernelOffset = mw.DeserializeBlindingFactor(d)
	h.OwnerOffset = mw.DeserializeBlindingFactor(d)
	h.OutputMMRSize = d.ReadU64()
	h.KernelMMRSize = d.ReadU64()
	if d.Err() != nil {
		return nil
	}
	return h
}

// Hash returns the identifying digest of the header.
func (h *Header) Hash() mw.Hash { return mw.Hashed(h) }
