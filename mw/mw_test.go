// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mw_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwebchain/mweb/mw"
	"github.com/mwebchain/mweb/ser"
)

func TestParseHash(t *testing.T) {
	str := "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
	h, err := mw.ParseHash(str)
	require.NoError(t, err)
	assert.Equal(t, str, h.String())

	h2, err := mw.ParseHash("0x" + str)
	require.NoError(t, err)
	assert.Equal(t, h, h2)

	_, err = mw.ParseHash("abcd")
	assert.Error(t, err)
}

func TestHashSum(t *testing.T) {
	// Split writes hash the same as one concatenated write.
	assert.Equal(t, mw.HashSum([]byte("foobar")), mw.HashSum([]byte("foo"), []byte("bar")))
	assert.NotEqual(t, mw.HashSum([]byte("foo")), mw.HashSum([]byte("bar")))
}

func TestStealthAddressBech32RoundTrip(t *testing.T) {
	var addr mw.StealthAddress
	addr.Scan[0], addr.Spend[0] = 0x02, 0x03
	addr.Scan[10], addr.Spend[20] = 0x55, 0xaa

	encoded, err := addr.Encode("mweb")
	require.NoError(t, err)

	decoded, err := mw.DecodeStealthAddress("mweb", encoded)
	require.NoError(t, err)
	assert.True(t, addr.Equal(decoded))

	_, err = mw.DecodeStealthAddress("tmweb", encoded)
	assert.ErrorIs(t, err, mw.ErrInvalidAddress)

	_, err = mw.DecodeStealthAddress("mweb", "not-an-address")
	assert.ErrorIs(t, err, mw.ErrInvalidAddress)
}

func TestSignedMessageRoundTrip(t *testing.T) {
	msg := mw.SignedMessage{}
	msg.PublicKey[0] = 0x02
	msg.MsgHash[3] = 7
	msg.Signature[63] = 9

	d := ser.NewDeserializer(ser.ToBytes(msg))
	decoded := mw.DeserializeSignedMessage(d)
	require.NoError(t, d.Finish())
	assert.Equal(t, msg, decoded)
}

func TestChainParamsValidate(t *testing.T) {
	params := mw.ChainParams{HRP: "mweb", PegInMaturity: 20, MaxBlockWeight: 200_000}
	assert.NoError(t, params.Validate())

	// Peg-in maturity is a required parameter with no default.
	params.PegInMaturity = 0
	assert.Error(t, params.Validate())
}
