// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mw

import (
	"encoding/hex"

	"github.com/mwebchain/mweb/ser"
)

const (
	// SecretKeyLen is the byte length of scalars on secp256k1.
	SecretKeyLen = 32
	// PublicKeyLen is the byte length of compressed secp256k1 points.
	PublicKeyLen = 33
)

// SecretKey is a 32-byte scalar on secp256k1.
type SecretKey [SecretKeyLen]byte

// BlindingFactor is a 32-byte scalar on secp256k1. Structurally identical to
// SecretKey, kept as a distinct semantic type.
type BlindingFactor [SecretKeyLen]byte

// PublicKey is a 33-byte compressed secp256k1 point.
type PublicKey [PublicKeyLen]byte

// Bytes returns byte slice form of SecretKey.
func (k SecretKey) Bytes() []byte { return k[:] }

// IsZero returns whether the key has all zero bytes.
func (k SecretKey) IsZero() bool { return k == SecretKey{} }

// ToBlindingFactor reinterprets the scalar as a blinding factor.
func (k SecretKey) ToBlindingFactor() BlindingFactor { return BlindingFactor(k) }

// Serialize implements ser.Serializable.
func (k SecretKey) Serialize(s *ser.Serializer) { s.WriteBytes(k[:]) }

// Bytes returns byte slice form of BlindingFactor.
func (b BlindingFactor) Bytes() []byte { return b[:] }

// IsZero returns whether the factor has all zero bytes.
func (b BlindingFactor) IsZero() bool { return b == BlindingFactor{} }

// ToSecretKey reinterprets the blinding factor as a secret key.
func (b BlindingFactor) ToSecretKey() SecretKey { return SecretKey(b) }

// Serialize implements ser.Serializable.
func (b BlindingFactor) Serialize(s *ser.Serializer) { s.WriteBytes(b[:]) }

// DeserializeBlindingFactor reads a BlindingFactor.
func DeserializeBlindingFactor(d *ser.Deserializer) (b BlindingFactor) {
	d.ReadInto(b[:])
	return
}

// String implements stringer.
func (p PublicKey) String() string { return hex.EncodeToString(p[:]) }

// Bytes returns byte slice form of PublicKey.
func (p PublicKey) Bytes() []byte { return p[:] }

// IsZero returns whether the key has all zero bytes.
func (p PublicKey) IsZero() bool { return p == PublicKey{} }

// Serialize implements ser.Serializable.
func (p PublicKey) Serialize(s *ser.Serializer) { s.WriteBytes(p[:]) }

// DeserializePublicKey reads a PublicKey.
func DeserializePublicKey(d *ser.Deserializer) (p PublicKey) {
	d.ReadInto(p[:])
	return
}
