// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwebchain/mweb/ser"
)

func TestIntegerRoundTrip(t *testing.T) {
	s := ser.Serializer{}
	s.WriteU8(0xab).WriteU16(0x0102).WriteU32(0xdeadbeef).WriteU64(0x0102030405060708)

	d := ser.NewDeserializer(s.Bytes())
	assert.Equal(t, uint8(0xab), d.ReadU8())
	assert.Equal(t, uint16(0x0102), d.ReadU16())
	assert.Equal(t, uint32(0xdeadbeef), d.ReadU32())
	assert.Equal(t, uint64(0x0102030405060708), d.ReadU64())
	require.NoError(t, d.Finish())
}

func TestBigEndian(t *testing.T) {
	s := ser.Serializer{}
	s.WriteU32(1)
	assert.Equal(t, []byte{0, 0, 0, 1}, s.Bytes())
}

func TestVarBytes(t *testing.T) {
	s := ser.Serializer{}
	s.WriteVarBytes([]byte("hello"))

	d := ser.NewDeserializer(s.Bytes())
	assert.Equal(t, []byte("hello"), d.ReadVarBytes())
	require.NoError(t, d.Finish())

	s2 := ser.Serializer{}
	s2.WriteVarBytes(nil)
	d2 := ser.NewDeserializer(s2.Bytes())
	assert.Nil(t, d2.ReadVarBytes())
	require.NoError(t, d2.Finish())
}

func TestVarBytesTruncated(t *testing.T) {
	long := make([]byte, 300)
	s := ser.Serializer{}
	s.WriteVarBytes(long)
	assert.Equal(t, 1+ser.MaxVarBytes, s.Len())
}

func TestShortBufferSticks(t *testing.T) {
	d := ser.NewDeserializer([]byte{1, 2})
	d.ReadU32()
	assert.ErrorIs(t, d.Err(), ser.ErrInvalidSerialization)
	// Later reads stay failed and return zero values.
	assert.Equal(t, uint64(0), d.ReadU64())
	assert.ErrorIs(t, d.Finish(), ser.ErrInvalidSerialization)
}

func TestTrailingBytesRejected(t *testing.T) {
	d := ser.NewDeserializer([]byte{1, 2, 3})
	d.ReadU8()
	assert.ErrorIs(t, d.Finish(), ser.ErrInvalidSerialization)
}
