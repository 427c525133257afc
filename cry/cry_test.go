// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwebchain/mweb/cry"
	"github.com/mwebchain/mweb/mw"
)

func TestCommitmentHomomorphism(t *testing.T) {
	r1, r2 := cry.RandomBlindingFactor(), cry.RandomBlindingFactor()

	c1, err := cry.CommitBlinded(5_000_000, r1)
	require.NoError(t, err)
	c2, err := cry.CommitBlinded(6_000_000, r2)
	require.NoError(t, err)

	sum, err := cry.AddCommitments([]mw.Commitment{c1, c2}, nil)
	require.NoError(t, err)

	rSum := cry.AddBlindingFactors([]mw.BlindingFactor{r1, r2}, nil)
	expected, err := cry.CommitBlinded(11_000_000, rSum)
	require.NoError(t, err)
	assert.Equal(t, expected, sum)
}

func TestCommitTransparent(t *testing.T) {
	c1, err := cry.CommitTransparent(42)
	require.NoError(t, err)
	c2, err := cry.CommitBlinded(42, mw.BlindingFactor{})
	require.NoError(t, err)
	assert.Equal(t, c1, c2)
}

func TestCommitmentsSumToZero(t *testing.T) {
	r := cry.RandomBlindingFactor()
	c1, err := cry.CommitBlinded(100, r)
	require.NoError(t, err)
	c2, err := cry.CommitBlinded(60, r)
	require.NoError(t, err)
	c3, err := cry.CommitTransparent(40)
	require.NoError(t, err)

	zero, err := cry.CommitmentsSumToZero([]mw.Commitment{c1}, []mw.Commitment{c2, c3})
	require.NoError(t, err)
	assert.True(t, zero)

	notZero, err := cry.CommitmentsSumToZero([]mw.Commitment{c1}, []mw.Commitment{c2})
	require.NoError(t, err)
	assert.False(t, notZero)
}

func TestAddBlindingFactors(t *testing.T) {
	r := cry.RandomBlindingFactor()
	diff := cry.AddBlindingFactors([]mw.BlindingFactor{r}, []mw.BlindingFactor{r})
	assert.True(t, diff.IsZero())
}

func TestBlindsAccumulator(t *testing.T) {
	a, b := cry.RandomBlindingFactor(), cry.RandomBlindingFactor()
	total := new(cry.Blinds).Add(a).Add(b).Sub(a).Total()
	assert.Equal(t, b, total)
}

func TestBlindSwitch(t *testing.T) {
	key := cry.RandomSecretKey()
	switched, err := cry.BlindSwitch(key, 1234)
	require.NoError(t, err)
	assert.NotEqual(t, key, switched)

	// Deterministic per (key, value), distinct across values.
	again, err := cry.BlindSwitch(key, 1234)
	require.NoError(t, err)
	assert.Equal(t, switched, again)

	other, err := cry.BlindSwitch(key, 1235)
	require.NoError(t, err)
	assert.NotEqual(t, switched, other)
}

func TestPublicKeySums(t *testing.T) {
	k1, k2 := cry.RandomSecretKey(), cry.RandomSecretKey()
	p1, err := cry.PublicKeyOf(k1)
	require.NoError(t, err)
	p2, err := cry.PublicKeyOf(k2)
	require.NoError(t, err)

	pSum, err := cry.PublicKeyOf(cry.AddSecretKeys(k1, k2))
	require.NoError(t, err)

	added, err := cry.AddPublicKeys([]mw.PublicKey{p1, p2}, nil)
	require.NoError(t, err)
	assert.Equal(t, pSum, added)

	zero, err := cry.PublicKeysSumToZero([]mw.PublicKey{pSum}, []mw.PublicKey{p1, p2})
	require.NoError(t, err)
	assert.True(t, zero)
}

func TestMulPublicKeyIsECDH(t *testing.T) {
	a, b := cry.RandomSecretKey(), cry.RandomSecretKey()
	pubA, err := cry.PublicKeyOf(a)
	require.NoError(t, err)
	pubB, err := cry.PublicKeyOf(b)
	require.NoError(t, err)

	ab, err := cry.MulPublicKey(pubB, a)
	require.NoError(t, err)
	ba, err := cry.MulPublicKey(pubA, b)
	require.NoError(t, err)
	assert.Equal(t, ab, ba)
}

func TestSchnorrSignVerify(t *testing.T) {
	key := cry.RandomSecretKey()
	pub, err := cry.PublicKeyOf(key)
	require.NoError(t, err)
	msg := mw.HashSum([]byte("message"))

	sig, err := cry.SchnorrSign(key, msg)
	require.NoError(t, err)
	assert.NoError(t, cry.SchnorrVerify(sig, pub, msg))

	wrongMsg := mw.HashSum([]byte("other"))
	assert.ErrorIs(t, cry.SchnorrVerify(sig, pub, wrongMsg), mw.ErrCryptoFailure)

	otherPub, err := cry.PublicKeyOf(cry.RandomSecretKey())
	require.NoError(t, err)
	assert.ErrorIs(t, cry.SchnorrVerify(sig, otherPub, msg), mw.ErrCryptoFailure)
}

func TestSchnorrBatchVerify(t *testing.T) {
	var msgs []mw.SignedMessage
	for i := 0; i < 8; i++ {
		key := cry.RandomSecretKey()
		signed, err := cry.SignMessage(key, mw.HashSum([]byte{byte(i)}))
		require.NoError(t, err)
		msgs = append(msgs, signed)
	}
	assert.NoError(t, cry.SchnorrBatchVerify(msgs))

	msgs[3].MsgHash = mw.HashSum([]byte("tampered"))
	assert.ErrorIs(t, cry.SchnorrBatchVerify(msgs), mw.ErrCryptoFailure)
}

func TestAES256CTRRoundTrip(t *testing.T) {
	key := cry.RandomSecretKey()
	var iv [16]byte
	plaintext := []byte("forty bytes of confidential payload....")

	ct, err := cry.AES256CTREncrypt(plaintext, key, iv)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, ct)

	pt, err := cry.AES256CTRDecrypt(ct, key, iv)
	require.NoError(t, err)
	assert.Equal(t, plaintext, pt)

	wrongKey := cry.RandomSecretKey()
	garbled, err := cry.AES256CTRDecrypt(ct, wrongKey, iv)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, garbled)
}
