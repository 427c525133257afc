// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package mw holds the primitive value types of the extension-block ledger
// and the chain parameters threaded through every subsystem.
package mw

import (
	"encoding/hex"
	"fmt"
	"hash"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"

	"github.com/mwebchain/mweb/ser"
)

// HashLen is the byte length of ledger digests.
const HashLen = 32

// Hash is a 32-byte BLAKE2b digest. It identifies headers, blocks, kernels,
// outputs and MMR nodes.
type Hash [HashLen]byte

// String implements stringer.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// AbbrevString returns abbrev string presentation.
func (h Hash) AbbrevString() string {
	return fmt.Sprintf("%x…%x", h[:4], h[28:])
}

// Bytes returns byte slice form of Hash.
func (h Hash) Bytes() []byte { return h[:] }

// IsZero returns whether the hash has all zero bytes.
func (h Hash) IsZero() bool { return h == Hash{} }

// Serialize implements ser.Serializable.
func (h Hash) Serialize(s *ser.Serializer) { s.WriteBytes(h[:]) }

// DeserializeHash reads a Hash.
func DeserializeHash(d *ser.Deserializer) (h Hash) {
	d.ReadInto(h[:])
	return
}

// ParseHash converts a hex string to a Hash.
func ParseHash(str string) (Hash, error) {
	str = strings.TrimPrefix(str, "0x")
	var h Hash
	if len(str) != HashLen*2 {
		return Hash{}, errors.New("hash must be 32 bytes")
	}
	if _, err := hex.Decode(h[:], []byte(str)); err != nil {
		return Hash{}, err
	}
	return h, nil
}

// NewHasher creates a BLAKE2b-256 hasher.
func NewHasher() hash.Hash {
	h, _ := blake2b.New256(nil)
	return h
}

// HashSum computes the BLAKE2b-256 digest of the concatenation of data.
func HashSum(data ...[]byte) (h Hash) {
	hw := NewHasher()
	for _, d := range data {
		hw.Write(d)
	}
	hw.Sum(h[:0])
	return
}

// Hashed computes the digest of the canonical encoding of item. This is the
// `Hashed(value)` rule: every ledger type hashes as BLAKE2b of its
// serialization unless the type specifies otherwise.
func Hashed(item ser.Serializable) Hash {
	return HashSum(ser.ToBytes(item))
}
