// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ser

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Deserializer decodes the canonical encoding produced by Serializer.
// The first decoding failure sticks: every later read returns zero values and
// Err reports the failure.
type Deserializer struct {
	buf []byte
	pos int
	err error
}

// NewDeserializer creates a deserializer over buf. The buffer is not copied.
func NewDeserializer(buf []byte) *Deserializer {
	return &Deserializer{buf: buf}
}

// Err returns the sticky decoding error, or nil.
func (d *Deserializer) Err() error { return d.err }

// Remaining returns the number of unread bytes.
func (d *Deserializer) Remaining() int { return len(d.buf) - d.pos }

// Finish asserts that the buffer is fully consumed and returns the sticky
// error, if any. Trailing bytes make the encoding non-canonical.
func (d *Deserializer) Finish() error {
	if d.err != nil {
		return d.err
	}
	if d.pos != len(d.buf) {
		d.err = errors.Wrapf(ErrInvalidSerialization, "%d trailing bytes", len(d.buf)-d.pos)
	}
	return d.err
}

func (d *Deserializer) take(n int) []byte {
	if d.err != nil {
		return nil
	}
	if d.Remaining() < n {
		d.err = errors.Wrapf(ErrInvalidSerialization, "need %d bytes, have %d", n, d.Remaining())
		return nil
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b
}

// ReadU8 reads a single byte.
func (d *Deserializer) ReadU8() uint8 {
	b := d.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

// ReadU16 reads a big-endian uint16.
func (d *Deserializer) ReadU16() uint16 {
	b := d.take(2)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}

// ReadU32 reads a big-endian uint32.
func (d *Deserializer) ReadU32() uint32 {
	b := d.take(4)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

// ReadU64 reads a big-endian uint64.
func (d *Deserializer) ReadU64() uint64 {
	b := d.take(8)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

// ReadBytes reads exactly n raw bytes into a fresh slice.
func (d *Deserializer) ReadBytes(n int) []byte {
	b := d.take(n)
	if b == nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

// ReadInto fills dst with the next len(dst) bytes.
func (d *Deserializer) ReadInto(dst []byte) {
	b := d.take(len(dst))
	if b != nil {
		copy(dst, b)
	}
}

// ReadVarBytes reads a one-byte length prefix followed by that many bytes.
func (d *Deserializer) ReadVarBytes() []byte {
	n := d.ReadU8()
	if n == 0 {
		return nil
	}
	return d.ReadBytes(int(n))
}

// Fail records err as the sticky decoding failure.
func (d *Deserializer) Fail(err error) {
	if d.err == nil {
		d.err = err
	}
}
