// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"github.com/pkg/errors"

	"github.com/mwebchain/mweb/cry"
	"github.com/mwebchain/mweb/mw"
	"github.com/mwebchain/mweb/ser"
)

// Kernel feature bits. The features byte is authoritative: the wire form and
// the signed message carry exactly the fields the bits select.
const (
	KernelPegIn      uint8 = 0x01
	KernelPegOut     uint8 = 0x02
	KernelLockHeight uint8 = 0x04
	KernelExtraData  uint8 = 0x08
)

// Kernel is the public proof-of-transaction: fee, optional peg-in/peg-out,
// optional lock height and extra data, plus a Schnorr signature over a known
// excess commitment.
type Kernel struct {
	Features   uint8
	Fee        uint64
	PegIn      uint64     // valid iff Features&KernelPegIn
	PegOut     PegOutCoin // valid iff Features&KernelPegOut
	LockHeight uint64     // valid iff Features&KernelLockHeight
	ExtraData  []byte     // valid iff Features&KernelExtraData
	Excess     mw.Commitment
	Signature  mw.Signature
}

// HasPegIn reports whether the kernel mints pegged-in value.
func (k Kernel) HasPegIn() bool { return k.Features&KernelPegIn != 0 }

// HasPegOut reports whether the kernel burns value to the host chain.
func (k Kernel) HasPegOut() bool { return k.Features&KernelPegOut != 0 }

// HasLockHeight reports whether the kernel is height-locked.
func (k Kernel) HasLockHeight() bool { return k.Features&KernelLockHeight != 0 }

// HasExtraData reports whether the kernel carries extra data.
func (k Kernel) HasExtraData() bool { return k.Features&KernelExtraData != 0 }

// PegInAmount returns the minted amount, or 0.
func (k Kernel) PegInAmount() uint64 {
	if k.HasPegIn() {
		return k.PegIn
	}
	return 0
}

// PegOutAmount returns the burned amount, or 0.
func (k Kernel) PegOutAmount() uint64 {
	if k.HasPegOut() {
		return k.PegOut.Amount
	}
	return 0
}

// SignatureMessage is the digest the kernel signature covers: the features
// byte, the fee, and every present optional field in wire order. The
// definition matches the wire form exactly, extra data included.
func (k Kernel) SignatureMessage() mw.Hash {
	s := ser.Serializer{}
	k.serializeMessage(&s)
	return mw.HashSum(s.Bytes())
}

func (k Kernel) serializeMessage(s *ser.Serializer) {
	s.WriteU8(k.Features)
	s.WriteU64(k.Fee)
	if k.HasPegIn() {
		s.WriteU64(k.PegIn)
	}
	if k.HasPegOut() {
		s.Write(k.PegOut)
	}
	if k.HasLockHeight() {
		s.WriteU64(k.LockHeight)
	}
	if k.HasExtraData() {
		s.WriteVarBytes(k.ExtraData)
	}
}

// Serialize implements ser.Serializable.
func (k Kernel) Serialize(s *ser.Serializer) {
	k.serializeMessage(s)
	s.Write(k.Excess)
	s.Write(k.Signature)
}

// DeserializeKernel reads a Kernel.
func DeserializeKernel(d *ser.Deserializer) (k Kernel) {
	k.Features = d.ReadU8()
	if k.Features&^(KernelPegIn|KernelPegOut|KernelLockHeight|KernelExtraData) != 0 {
		d.Fail(errors.Wrapf(ser.ErrInvalidSerialization, "kernel features 0x%02x", k.Features))
		return
	}
	k.Fee = d.ReadU64()
	if k.HasPegIn() {
		k.PegIn = d.ReadU64()
	}
	if k.HasPegOut() {
		k.PegOut = DeserializePegOutCoin(d)
	}
	if k.HasLockHeight() {
		k.LockHeight = d.ReadU64()
	}
	if k.HasExtraData() {
		k.ExtraData = d.ReadVarBytes()
		if len(k.ExtraData) == 0 {
			d.Fail(errors.Wrap(ser.ErrInvalidSerialization, "empty kernel extra data"))
			return
		}
	}
	k.Excess = mw.DeserializeCommitment(d)
	k.Signature = mw.DeserializeSignature(d)
	return
}

// Hash returns the identifying digest of the kernel. Kernel hashes are
// permanent: consensus never accepts the same one twice.
func (k Kernel) Hash() mw.Hash { return mw.Hashed(k) }

// KernelBuilder assembles and signs a kernel.
type KernelBuilder struct {
	kernel Kernel
}

// NewKernelBuilder creates a builder for a plain kernel with a zero fee; Fee
// sets the fee.
func NewKernelBuilder() *KernelBuilder {
	return &KernelBuilder{}
}

// Fee sets the kernel fee.
func (b *KernelBuilder) Fee(fee uint64) *KernelBuilder {
	b.kernel.Fee = fee
	return b
}

// PegIn marks the kernel as minting amount from the host chain.
func (b *KernelBuilder) PegIn(amount uint64) *KernelBuilder {
	b.kernel.Features |= KernelPegIn
	b.kernel.PegIn = amount
	return b
}

// PegOut marks the kernel as burning amount to the host-chain address.
func (b *KernelBuilder) PegOut(amount uint64, address mw.Bech32Address) *KernelBuilder {
	b.kernel.Features |= KernelPegOut
	b.kernel.PegOut = PegOutCoin{Amount: amount, Address: address}
	return b
}

// LockHeight forbids inclusion before the given height.
func (b *KernelBuilder) LockHeight(height uint64) *KernelBuilder {
	b.kernel.Features |= KernelLockHeight
	b.kernel.LockHeight = height
	return b
}

// ExtraData attaches opaque data, truncated to 255 bytes by the wire format.
func (b *KernelBuilder) ExtraData(data []byte) *KernelBuilder {
	if len(data) > 0 {
		b.kernel.Features |= KernelExtraData
		b.kernel.ExtraData = data
	}
	return b
}

// Build computes the excess commitment blind·G and signs the kernel message
// with blind.
func (b *KernelBuilder) Build(blind mw.BlindingFactor) (Kernel, error) {
	kernel := b.kernel

	excess, err := cry.CommitBlinded(0, blind)
	if err != nil {
		return Kernel{}, err
	}
	kernel.Excess = excess

	sig, err := cry.SchnorrSign(blind.ToSecretKey(), kernel.SignatureMessage())
	if err != nil {
		return Kernel{}, err
	}
	kernel.Signature = sig
	return kernel, nil
}
