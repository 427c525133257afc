// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package wallet_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwebchain/mweb/block"
	"github.com/mwebchain/mweb/consensus"
	"github.com/mwebchain/mweb/cry"
	"github.com/mwebchain/mweb/fortest"
	"github.com/mwebchain/mweb/mw"
	"github.com/mwebchain/mweb/tx"
	"github.com/mwebchain/mweb/wallet"
)

// A valid bech32 string for peg-out destinations (BIP-173 test vector).
const hostAddress = "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq"

var testParams = &mw.ChainParams{
	HRP:                "mweb",
	PegInMaturity:      10,
	MaxBlockWeight:     200_000,
	WeightPerInput:     1,
	WeightPerOutput:    18,
	WeightPerKernel:    2,
	WeightPerExtraByte: 1,
}

func newWallet(t *testing.T, seed byte) *wallet.Wallet {
	t.Helper()
	w, err := wallet.Open(wallet.NewMemStore([]byte{seed, 0xaa}), testParams)
	require.NoError(t, err)
	return w
}

// fakeCoin fabricates a confirmed coin whose witness the wallet holds.
func fakeCoin(t *testing.T, amount uint64, height uint64) wallet.Coin {
	t.Helper()
	blind := cry.RandomBlindingFactor()
	commitment, err := cry.CommitBlinded(amount, blind)
	require.NoError(t, err)
	return wallet.Coin{
		Commitment:  commitment,
		Amount:      amount,
		Blind:       blind,
		SpendKey:    cry.RandomSecretKey(),
		BlockHeight: height,
	}
}

func TestAddressDerivation(t *testing.T) {
	w := newWallet(t, 1)

	addr3, err := w.GetStealthAddress(3)
	require.NoError(t, err)
	addr4, err := w.GetStealthAddress(4)
	require.NoError(t, err)
	assert.Equal(t, addr3.Scan, addr4.Scan, "scan key is shared across indices")
	assert.NotEqual(t, addr3.Spend, addr4.Spend)

	encoded, err := w.GetAddress(3)
	require.NoError(t, err)
	assert.True(t, w.IsOwnAddress(encoded))

	other := newWallet(t, 2)
	assert.False(t, other.IsOwnAddress(encoded))
}

func TestRewindOwnOutput(t *testing.T) {
	w := newWallet(t, 3)
	addr, err := w.GetStealthAddress(7)
	require.NoError(t, err)

	senderKey := cry.RandomSecretKey()
	out, blind, err := wallet.CreateOutput(tx.OutputStandard, senderKey, addr, 123_456)
	require.NoError(t, err)

	coin, err := w.RewindOutput(out)
	require.NoError(t, err)
	assert.Equal(t, uint64(123_456), coin.Amount)
	assert.Equal(t, blind, coin.Blind)
	assert.Equal(t, uint32(7), coin.AddressIndex)
	assert.Equal(t, out.Commitment, coin.Commitment)

	// The recovered one-time key controls the output's receiver pubkey.
	spendPub, err := cry.PublicKeyOf(coin.SpendKey)
	require.NoError(t, err)
	assert.Equal(t, out.ReceiverPubKey(), spendPub)
}

func TestRewindForeignOutput(t *testing.T) {
	w := newWallet(t, 4)
	other := newWallet(t, 5)
	addr, err := other.GetStealthAddress(0)
	require.NoError(t, err)

	out, _, err := wallet.CreateOutput(tx.OutputStandard, cry.RandomSecretKey(), addr, 1000)
	require.NoError(t, err)

	_, err = w.RewindOutput(out)
	assert.ErrorIs(t, err, mw.ErrNotFound)
}

func TestRewindSpoofedOutput(t *testing.T) {
	w := newWallet(t, 6)
	addr, err := w.GetStealthAddress(0)
	require.NoError(t, err)

	out, _, err := wallet.CreateOutput(tx.OutputStandard, cry.RandomSecretKey(), addr, 1000)
	require.NoError(t, err)
	// Claim a different amount by swapping the commitment.
	var err2 error
	out.Commitment, err2 = cry.CommitBlinded(2000, cry.RandomBlindingFactor())
	require.NoError(t, err2)

	_, err = w.RewindOutput(out)
	assert.ErrorIs(t, err, mw.ErrCryptoFailure)
}

func TestCreatePegInTx(t *testing.T) {
	w := newWallet(t, 7)
	validator := consensus.NewValidator(testParams)

	transaction, pegin, err := w.CreatePegInTx(8_000_000, nil)
	require.NoError(t, err)

	assert.Equal(t, uint64(8_000_000), pegin.Amount)
	require.Len(t, transaction.Body().Kernels, 1)
	kernel := transaction.Body().Kernels[0]
	assert.Equal(t, kernel.Hash(), pegin.KernelID)
	assert.Equal(t, uint64(0), kernel.Fee, "peg-in kernels are fee-less")
	assert.True(t, transaction.Body().Outputs[0].IsPeggedIn())

	assert.NoError(t, validator.ValidateTx(transaction))
	assert.NoError(t, consensus.ValidateTxOwnerSum(transaction, nil))

	// Self peg-in immediately persisted the rewound coin.
	coin, err := w.Store().GetCoin(transaction.Body().Outputs[0].Commitment)
	require.NoError(t, err)
	require.NotNil(t, coin)
	assert.Equal(t, uint64(8_000_000), coin.Amount)
}

func TestSend(t *testing.T) {
	w := newWallet(t, 8)
	receiver := newWallet(t, 9)
	validator := consensus.NewValidator(testParams)

	coins := []wallet.Coin{fakeCoin(t, 5_000_000, 10), fakeCoin(t, 6_000_000, 11)}
	require.NoError(t, w.Store().AddCoins(coins))

	addr, err := receiver.GetStealthAddress(0)
	require.NoError(t, err)
	transaction, err := w.Send(4_000_000, 1, addr)
	require.NoError(t, err)

	assert.NoError(t, validator.ValidateTx(transaction))

	// Greedy selection spends the 6M coin; change returns to us.
	require.Len(t, transaction.Body().Inputs, 1)
	assert.Equal(t, coins[1].Commitment, transaction.Body().Inputs[0].Commitment)
	require.Len(t, transaction.Body().Outputs, 2)

	inputKeys := []mw.PublicKey{mustPub(t, coins[1].SpendKey)}
	assert.NoError(t, consensus.ValidateTxOwnerSum(transaction, inputKeys))

	// The receiver recognizes exactly one output, we recognize the change.
	var receiverCoins, changeCoins int
	for _, out := range transaction.Body().Outputs {
		if _, err := receiver.RewindOutput(out); err == nil {
			receiverCoins++
		}
		if _, err := w.RewindOutput(out); err == nil {
			changeCoins++
		}
	}
	assert.Equal(t, 1, receiverCoins)
	assert.Equal(t, 1, changeCoins)
}

func TestCreatePegOutTx(t *testing.T) {
	w := newWallet(t, 10)
	validator := consensus.NewValidator(testParams)

	require.NoError(t, w.Store().AddCoins([]wallet.Coin{fakeCoin(t, 6_000_000, 5)}))

	transaction, err := w.CreatePegOutTx(4_500_000, 1, hostAddress)
	require.NoError(t, err)
	assert.NoError(t, validator.ValidateTx(transaction))

	kernel := transaction.Body().Kernels[0]
	require.True(t, kernel.HasPegOut())
	assert.Equal(t, uint64(4_500_000), kernel.PegOut.Amount)
	assert.Equal(t, mw.Bech32Address(hostAddress), kernel.PegOut.Address)

	_, err = w.CreatePegOutTx(1_000, 1, "not-bech32")
	assert.ErrorIs(t, err, mw.ErrInvalidAddress)
}

func TestInsufficientFunds(t *testing.T) {
	w := newWallet(t, 11)
	receiver, err := w.GetStealthAddress(2)
	require.NoError(t, err)
	_, err = w.Send(1_000_000, 1, receiver)
	assert.ErrorIs(t, err, mw.ErrNotFound)
}

func TestBalanceClassification(t *testing.T) {
	w := newWallet(t, 12)

	mature := fakeCoin(t, 1_000, 1)
	mature.Features = tx.OutputPeggedIn
	immature := fakeCoin(t, 2_000, 95)
	immature.Features = tx.OutputPeggedIn
	unconfirmed := fakeCoin(t, 4_000, 0)
	plain := fakeCoin(t, 8_000, 100)
	spent := fakeCoin(t, 16_000, 50)
	spent.SpentBy = mw.HashSum([]byte("spender"))

	require.NoError(t, w.Store().AddCoins([]wallet.Coin{mature, immature, unconfirmed, plain, spent}))

	// Tip 100: the peg-in at 95 has depth 6 < 10, the one at 1 is mature.
	balance, err := w.GetBalance(100)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000+8_000), balance.Confirmed)
	assert.Equal(t, uint64(2_000), balance.Immature)
	assert.Equal(t, uint64(4_000), balance.Unconfirmed)
}

func TestAggregateMixedTxs(t *testing.T) {
	w := newWallet(t, 13)
	validator := consensus.NewValidator(testParams)

	standardCoins := []wallet.Coin{fakeCoin(t, 5_000_000, 1), fakeCoin(t, 6_000_000, 1)}
	pegoutCoins := []wallet.Coin{fakeCoin(t, 1_234_567, 1), fakeCoin(t, 4_000_000, 1)}
	require.NoError(t, w.Store().AddCoins(append(standardCoins, pegoutCoins...)))

	dest, err := w.GetStealthAddress(3)
	require.NoError(t, err)
	standard, err := w.CreateTx(standardCoins, []wallet.Recipient{
		wallet.MWEBRecipient{Amount: 4_000_000, Address: dest},
		wallet.MWEBRecipient{Amount: 6_500_000, Address: dest},
	}, 0, 500_000)
	require.NoError(t, err)

	pegin, _, err := w.CreatePegInTx(8_000_000, nil)
	require.NoError(t, err)

	pegout, err := w.CreateTx(pegoutCoins, []wallet.Recipient{
		wallet.PegOutRecipient{Amount: 4_500_000, Address: hostAddress},
		wallet.MWEBRecipient{Amount: 234_567, Address: dest},
	}, 0, 500_000)
	require.NoError(t, err)

	aggregated := consensus.Aggregate([]*tx.Transaction{standard, pegin, pegout})
	assert.NoError(t, validator.ValidateTx(aggregated))

	var inputKeys []mw.PublicKey
	byCommit := make(map[mw.Commitment]mw.SecretKey)
	for _, coin := range append(standardCoins, pegoutCoins...) {
		byCommit[coin.Commitment] = coin.SpendKey
	}
	for _, in := range aggregated.Body().Inputs {
		inputKeys = append(inputKeys, mustPub(t, byCommit[in.Commitment]))
	}
	assert.NoError(t, consensus.ValidateTxOwnerSum(aggregated, inputKeys))
}

func TestScanForOutputs(t *testing.T) {
	w := newWallet(t, 14)
	chain := fortest.NewChain()

	pegin, _, err := w.CreatePegInTx(3_000_000, nil)
	require.NoError(t, err)
	b1, err := chain.BuildBlock(pegin)
	require.NoError(t, err)

	// Start a fresh wallet on the same seed: restore-from-seed path.
	restored, err := wallet.Open(wallet.NewMemStore([]byte{14, 0xaa}), testParams)
	require.NoError(t, err)

	var progressCalls int
	err = restored.ScanForOutputs(&stubChain{blocks: []*block.Block{b1}}, func(h, tip uint64) {
		progressCalls++
	})
	require.NoError(t, err)
	assert.Equal(t, 1, progressCalls)

	coins, err := restored.Store().ListCoins()
	require.NoError(t, err)
	require.Len(t, coins, 1)
	assert.Equal(t, uint64(3_000_000), coins[0].Amount)
	assert.Equal(t, uint64(1), coins[0].BlockHeight)
}

func TestBlockConnectedAndDisconnected(t *testing.T) {
	w := newWallet(t, 15)
	chain := fortest.NewChain()

	pegin, _, err := w.CreatePegInTx(2_000_000, nil)
	require.NoError(t, err)
	b1, err := chain.BuildBlock(pegin)
	require.NoError(t, err)

	require.NoError(t, w.BlockConnected(b1, b1.Hash()))
	coin, err := w.Store().GetCoin(b1.Outputs()[0].Commitment)
	require.NoError(t, err)
	require.NotNil(t, coin)
	assert.Equal(t, uint64(1), coin.BlockHeight)

	require.NoError(t, w.BlockDisconnected(b1))
	coin, err = w.Store().GetCoin(b1.Outputs()[0].Commitment)
	require.NoError(t, err)
	require.NotNil(t, coin)
	assert.False(t, coin.IsConfirmed())
}

type stubChain struct {
	blocks []*block.Block
}

func (s *stubChain) GetTipHeight() (uint64, error) { return uint64(len(s.blocks)), nil }

func (s *stubChain) GetBlock(height uint64) (*block.Block, error) {
	return s.blocks[height-1], nil
}

func mustPub(t *testing.T, key mw.SecretKey) mw.PublicKey {
	t.Helper()
	pub, err := cry.PublicKeyOf(key)
	require.NoError(t, err)
	return pub
}
