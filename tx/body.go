// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"bytes"
	"sort"

	"github.com/mwebchain/mweb/mw"
	"github.com/mwebchain/mweb/ser"
)

// TxBody carries the four element lists of a transaction or block. Each list
// is kept sorted ascending by element hash, so a serialized body is unique
// per set of elements.
type TxBody struct {
	Inputs    []Input
	Outputs   []Output
	Kernels   []Kernel
	OwnerSigs []mw.SignedMessage
}

// Sort orders all four lists ascending by element hash.
func (b *TxBody) Sort() {
	sort.Slice(b.Inputs, func(i, j int) bool {
		hi, hj := b.Inputs[i].Hash(), b.Inputs[j].Hash()
		return bytes.Compare(hi[:], hj[:]) < 0
	})
	sort.Slice(b.Outputs, func(i, j int) bool {
		hi, hj := b.Outputs[i].Hash(), b.Outputs[j].Hash()
		return bytes.Compare(hi[:], hj[:]) < 0
	})
	sort.Slice(b.Kernels, func(i, j int) bool {
		hi, hj := b.Kernels[i].Hash(), b.Kernels[j].Hash()
		return bytes.Compare(hi[:], hj[:]) < 0
	})
	sort.Slice(b.OwnerSigs, func(i, j int) bool {
		hi, hj := b.OwnerSigs[i].Hash(), b.OwnerSigs[j].Hash()
		return bytes.Compare(hi[:], hj[:]) < 0
	})
}

// Serialize implements ser.Serializable.
func (b TxBody) Serialize(s *ser.Serializer) {
	s.WriteU32(uint32(len(b.Inputs)))
	for _, in := range b.Inputs {
		s.Write(in)
	}
	s.WriteU32(uint32(len(b.Outputs)))
	for _, out := range b.Outputs {
		s.Write(out)
	}
	s.WriteU32(uint32(len(b.Kernels)))
	for _, k := range b.Kernels {
		s.Write(k)
	}
	s.WriteU32(uint32(len(b.OwnerSigs)))
	for _, sig := range b.OwnerSigs {
		s.Write(sig)
	}
}

// maxBodyElems bounds list lengths during decoding, well above any weight
// limit a block could carry.
const maxBodyElems = 1 << 20

// DeserializeTxBody reads a TxBody.
func DeserializeTxBody(d *ser.Deserializer) (b TxBody) {
	readCount := func() int {
		n := d.ReadU32()
		if n > maxBodyElems {
			d.Fail(ser.ErrInvalidSerialization)
			return 0
		}
		return int(n)
	}
	for i, n := 0, readCount(); i < n && d.Err() == nil; i++ {
		b.Inputs = append(b.Inputs, DeserializeInput(d))
	}
	for i, n := 0, readCount(); i < n && d.Err() == nil; i++ {
		b.Outputs = append(b.Outputs, DeserializeOutput(d))
	}
	for i, n := 0, readCount(); i < n && d.Err() == nil; i++ {
		b.Kernels = append(b.Kernels, DeserializeKernel(d))
	}
	for i, n := 0, readCount(); i < n && d.Err() == nil; i++ {
		b.OwnerSigs = append(b.OwnerSigs, mw.DeserializeSignedMessage(d))
	}
	return
}

// TotalFee sums the kernel fees.
func (b TxBody) TotalFee() (fee uint64) {
	for _, k := range b.Kernels {
		fee += k.Fee
	}
	return
}

// PegInAmount sums the minted peg-in value.
func (b TxBody) PegInAmount() (amount uint64) {
	for _, k := range b.Kernels {
		amount += k.PegInAmount()
	}
	return
}

// PegOutAmount sums the burned peg-out value.
func (b TxBody) PegOutAmount() (amount uint64) {
	for _, k := range b.Kernels {
		amount += k.PegOutAmount()
	}
	return
}

// PegInKernels returns the kernels that mint value.
func (b TxBody) PegInKernels() (kernels []Kernel) {
	for _, k := range b.Kernels {
		if k.HasPegIn() {
			kernels = append(kernels, k)
		}
	}
	return
}

// PegOutKernels returns the kernels that burn value.
func (b TxBody) PegOutKernels() (kernels []Kernel) {
	for _, k := range b.Kernels {
		if k.HasPegOut() {
			kernels = append(kernels, k)
		}
	}
	return
}

// PegOutCoins collects the host-chain destinations of all peg-out kernels.
func (b TxBody) PegOutCoins() (coins []PegOutCoin) {
	for _, k := range b.Kernels {
		if k.HasPegOut() {
			coins = append(coins, k.PegOut)
		}
	}
	return
}

// InputCommitments lists the commitments this body spends.
func (b TxBody) InputCommitments() []mw.Commitment {
	commits := make([]mw.Commitment, len(b.Inputs))
	for i, in := range b.Inputs {
		commits[i] = in.Commitment
	}
	return commits
}

// OutputCommitments lists the commitments this body creates.
func (b TxBody) OutputCommitments() []mw.Commitment {
	commits := make([]mw.Commitment, len(b.Outputs))
	for i, out := range b.Outputs {
		commits[i] = out.Commitment
	}
	return commits
}

// KernelHashes lists the kernel digests in body order.
func (b TxBody) KernelHashes() []mw.Hash {
	hashes := make([]mw.Hash, len(b.Kernels))
	for i, k := range b.Kernels {
		hashes[i] = k.Hash()
	}
	return hashes
}

// ExtraDataBytes sums kernel extra-data lengths, the d-term of block weight.
func (b TxBody) ExtraDataBytes() (n uint64) {
	for _, k := range b.Kernels {
		n += uint64(len(k.ExtraData))
	}
	return
}
