// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mw

import (
	"bytes"
	"encoding/hex"

	"github.com/mwebchain/mweb/ser"
)

// CommitmentLen is the byte length of compressed Pedersen commitments.
const CommitmentLen = 33

// Commitment is a 33-byte Pedersen commitment v·H + r·G.
// Transparent commitments use r = 0.
type Commitment [CommitmentLen]byte

// String implements stringer.
func (c Commitment) String() string { return hex.EncodeToString(c[:]) }

// Bytes returns byte slice form of Commitment.
func (c Commitment) Bytes() []byte { return c[:] }

// IsZero returns whether the commitment has all zero bytes.
func (c Commitment) IsZero() bool { return c == Commitment{} }

// Cmp compares two commitments lexicographically.
func (c Commitment) Cmp(other Commitment) int {
	return bytes.Compare(c[:], other[:])
}

// Serialize implements ser.Serializable.
func (c Commitment) Serialize(s *ser.Serializer) { s.WriteBytes(c[:]) }

// DeserializeCommitment reads a Commitment.
func DeserializeCommitment(d *ser.Deserializer) (c Commitment) {
	d.ReadInto(c[:])
	return
}

// SignatureLen is the byte length of Schnorr signatures: 32-byte R.x || 32-byte s.
const SignatureLen = 64

// Signature is a 64-byte BIP-340-style Schnorr signature.
type Signature [SignatureLen]byte

// Bytes returns byte slice form of Signature.
func (sig Signature) Bytes() []byte { return sig[:] }

// Serialize implements ser.Serializable.
func (sig Signature) Serialize(s *ser.Serializer) { s.WriteBytes(sig[:]) }

// DeserializeSignature reads a Signature.
func DeserializeSignature(d *ser.Deserializer) (sig Signature) {
	d.ReadInto(sig[:])
	return
}

// SignedMessage pairs a Schnorr signature with the public key and message
// hash it verifies against. Owner signatures are carried in this form.
type SignedMessage struct {
	PublicKey PublicKey
	MsgHash   Hash
	Signature Signature
}

// Serialize implements ser.Serializable.
func (m SignedMessage) Serialize(s *ser.Serializer) {
	s.Write(m.PublicKey).Write(m.MsgHash).Write(m.Signature)
}

// DeserializeSignedMessage reads a SignedMessage.
func DeserializeSignedMessage(d *ser.Deserializer) (m SignedMessage) {
	m.PublicKey = DeserializePublicKey(d)
	m.MsgHash = DeserializeHash(d)
	m.Signature = DeserializeSignature(d)
	return
}

// Hash returns the identifying digest of the signed message.
func (m SignedMessage) Hash() Hash { return Hashed(m) }

// MaxRangeProofLen bounds serialized Bulletproofs.
const MaxRangeProofLen = 704

// RangeProof is a variable-length Bulletproof that the committed value lies
// in [0, 2^64).
type RangeProof []byte

// Serialize implements ser.Serializable. The proof is framed by a two-byte
// length since its size depends on the inner-product rounds.
func (p RangeProof) Serialize(s *ser.Serializer) {
	s.WriteU16(uint16(len(p)))
	s.WriteBytes(p)
}

// DeserializeRangeProof reads a RangeProof.
func DeserializeRangeProof(d *ser.Deserializer) RangeProof {
	n := d.ReadU16()
	if n > MaxRangeProofLen {
		d.Fail(ser.ErrInvalidSerialization)
		return nil
	}
	return RangeProof(d.ReadBytes(int(n)))
}
