// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ser implements the canonical wire encoding shared by every ledger
// type. The format is deterministic and carries no self-describing framing:
// integers are fixed-width big-endian and curve points are compressed. Length
// prefixes are one byte in front of extra-data, encrypted-data and host
// address strings, two bytes in front of range proofs, and a four-byte
// element count in front of each body list.
package ser

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// ErrInvalidSerialization is returned when bytes cannot be decoded as the
// requested ledger type. It is never silently accepted.
var ErrInvalidSerialization = errors.New("invalid serialization")

// MaxVarBytes bounds one-byte length-prefixed fields.
const MaxVarBytes = math.MaxUint8

// Serializable is the capability required of every ledger element.
type Serializable interface {
	Serialize(s *Serializer)
}

// Serializer accumulates the canonical encoding of ledger types.
// The zero value is ready to use.
type Serializer struct {
	buf []byte
}

// NewSerializer creates a serializer with the given capacity hint.
func NewSerializer(sizeHint int) *Serializer {
	return &Serializer{buf: make([]byte, 0, sizeHint)}
}

// Bytes returns the accumulated encoding.
func (s *Serializer) Bytes() []byte { return s.buf }

// Len returns the number of bytes written so far.
func (s *Serializer) Len() int { return len(s.buf) }

// WriteU8 appends a single byte.
func (s *Serializer) WriteU8(v uint8) *Serializer {
	s.buf = append(s.buf, v)
	return s
}

// WriteU16 appends a big-endian uint16.
func (s *Serializer) WriteU16(v uint16) *Serializer {
	s.buf = binary.BigEndian.AppendUint16(s.buf, v)
	return s
}

// WriteU32 appends a big-endian uint32.
func (s *Serializer) WriteU32(v uint32) *Serializer {
	s.buf = binary.BigEndian.AppendUint32(s.buf, v)
	return s
}

// WriteU64 appends a big-endian uint64.
func (s *Serializer) WriteU64(v uint64) *Serializer {
	s.buf = binary.BigEndian.AppendUint64(s.buf, v)
	return s
}

// WriteBytes appends raw bytes with no framing.
func (s *Serializer) WriteBytes(b []byte) *Serializer {
	s.buf = append(s.buf, b...)
	return s
}

// WriteVarBytes appends a one-byte length prefix followed by b.
// b longer than MaxVarBytes is truncated; callers enforce their own limits.
func (s *Serializer) WriteVarBytes(b []byte) *Serializer {
	if len(b) > MaxVarBytes {
		b = b[:MaxVarBytes]
	}
	s.WriteU8(uint8(len(b)))
	return s.WriteBytes(b)
}

// Write appends the canonical encoding of item.
func (s *Serializer) Write(item Serializable) *Serializer {
	item.Serialize(s)
	return s
}

// ToBytes returns the canonical encoding of item.
func ToBytes(item Serializable) []byte {
	s := Serializer{}
	item.Serialize(&s)
	return s.buf
}
