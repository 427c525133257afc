// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"github.com/mwebchain/mweb/cry"
	"github.com/mwebchain/mweb/mw"
	"github.com/mwebchain/mweb/ser"
)

// OwnerData carries the ownership layer of an output: the stealth keys the
// sender derived, the view tag that lets a scanner reject quickly, the masked
// (blind ‖ amount) payload, and the sender's signature over it all. The range
// proof commits to the serialized OwnerData through its extra-data field.
type OwnerData struct {
	Features          uint8
	SenderPubKey      mw.PublicKey
	ReceiverPubKey    mw.PublicKey // one-time stealth output key P
	KeyExchangePubKey mw.PublicKey // ephemeral R
	ViewTag           uint8
	EncryptedData     []byte // AES-256-CTR over (blind ‖ amount)
	Signature         mw.Signature
}

// Serialize implements ser.Serializable.
func (o OwnerData) Serialize(s *ser.Serializer) {
	s.WriteU8(o.Features)
	s.Write(o.SenderPubKey)
	s.Write(o.ReceiverPubKey)
	s.Write(o.KeyExchangePubKey)
	s.WriteU8(o.ViewTag)
	s.WriteVarBytes(o.EncryptedData)
	s.Write(o.Signature)
}

// DeserializeOwnerData reads an OwnerData.
func DeserializeOwnerData(d *ser.Deserializer) (o OwnerData) {
	o.Features = d.ReadU8()
	o.SenderPubKey = mw.DeserializePublicKey(d)
	o.ReceiverPubKey = mw.DeserializePublicKey(d)
	o.KeyExchangePubKey = mw.DeserializePublicKey(d)
	o.ViewTag = d.ReadU8()
	o.EncryptedData = d.ReadVarBytes()
	o.Signature = mw.DeserializeSignature(d)
	return
}

// SignedMsgHash is the message the sender signed:
// H(P ‖ R ‖ len(ct) ‖ ct).
func (o OwnerData) SignedMsgHash() mw.Hash {
	s := ser.NewSerializer(2*mw.PublicKeyLen + 1 + len(o.EncryptedData))
	s.Write(o.ReceiverPubKey)
	s.Write(o.KeyExchangePubKey)
	s.WriteVarBytes(o.EncryptedData)
	return mw.HashSum(s.Bytes())
}

// SignedMessage returns the owner data signature in verifiable form.
func (o OwnerData) SignedMessage() mw.SignedMessage {
	return mw.SignedMessage{
		PublicKey: o.SenderPubKey,
		MsgHash:   o.SignedMsgHash(),
		Signature: o.Signature,
	}
}

// Output is a new confidential coin: the homomorphic commitment to its
// amount, the ownership data, and a proof the amount is in range.
type Output struct {
	Commitment mw.Commitment
	OwnerData  OwnerData
	RangeProof mw.RangeProof
}

// Serialize implements ser.Serializable.
func (o Output) Serialize(s *ser.Serializer) {
	s.Write(o.Commitment)
	s.Write(o.OwnerData)
	s.Write(o.RangeProof)
}

// DeserializeOutput reads an Output.
func DeserializeOutput(d *ser.Deserializer) (o Output) {
	o.Commitment = mw.DeserializeCommitment(d)
	o.OwnerData = DeserializeOwnerData(d)
	o.RangeProof = mw.DeserializeRangeProof(d)
	return
}

// Hash returns the identifying digest of the output.
func (o Output) Hash() mw.Hash { return mw.Hashed(o) }

// Features returns the output feature flags.
func (o Output) Features() uint8 { return o.OwnerData.Features }

// IsPeggedIn reports whether the output was minted by a peg-in.
func (o Output) IsPeggedIn() bool { return o.OwnerData.Features&OutputPeggedIn != 0 }

// SenderPubKey returns the claimed sender key.
func (o Output) SenderPubKey() mw.PublicKey { return o.OwnerData.SenderPubKey }

// ReceiverPubKey returns the one-time stealth output key.
func (o Output) ReceiverPubKey() mw.PublicKey { return o.OwnerData.ReceiverPubKey }

// ProofData returns the range proof bound to this output's commitment and
// serialized owner data.
func (o Output) ProofData() cry.ProofData {
	return cry.ProofData{
		Commitment: o.Commitment,
		Proof:      o.RangeProof,
		ExtraData:  ser.ToBytes(o.OwnerData),
	}
}
