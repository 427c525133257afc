// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package coins_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwebchain/mweb/block"
	"github.com/mwebchain/mweb/coins"
	"github.com/mwebchain/mweb/db"
	"github.com/mwebchain/mweb/fortest"
	"github.com/mwebchain/mweb/lvldb"
	"github.com/mwebchain/mweb/mmr"
	"github.com/mwebchain/mweb/mw"
	"github.com/mwebchain/mweb/tx"
	"github.com/mwebchain/mweb/wallet"
)

var testParams = &mw.ChainParams{
	HRP:                "mweb",
	PegInMaturity:      2,
	MaxBlockWeight:     200_000,
	WeightPerInput:     1,
	WeightPerOutput:    18,
	WeightPerKernel:    2,
	WeightPerExtraByte: 1,
}

func newTestView(t *testing.T) *coins.ViewDB {
	t.Helper()
	store, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	dir := t.TempDir()
	leafset, err := mmr.OpenLeafSet(filepath.Join(dir, "leafset"), 0)
	require.NoError(t, err)
	kernelBE, err := db.OpenMMRBackend('K', filepath.Join(dir, "kernels"), 0, store)
	require.NoError(t, err)
	outputBE, err := db.OpenMMRBackend('O', filepath.Join(dir, "outputs"), 0, store)
	require.NoError(t, err)
	proofBE, err := db.OpenMMRBackend('R', filepath.Join(dir, "proofs"), 0, store)
	require.NoError(t, err)

	view := coins.NewViewDB(nil, store, leafset, kernelBE, outputBE, proofBE)
	t.Cleanup(func() { view.Close() })
	return view
}

func newTestWallet(t *testing.T, seed byte) *wallet.Wallet {
	t.Helper()
	w, err := wallet.Open(wallet.NewMemStore([]byte{seed}), testParams)
	require.NoError(t, err)
	return w
}

func connect(t *testing.T, view *coins.ViewDB, b *block.Block) *coins.BlockUndo {
	t.Helper()
	cache := coins.NewViewCache(view)
	undo, err := cache.ApplyBlock(b)
	require.NoError(t, err)
	require.NoError(t, cache.Flush(view.Store().NewBatch()))
	return undo
}

func disconnect(t *testing.T, view *coins.ViewDB, undo *coins.BlockUndo) {
	t.Helper()
	cache := coins.NewViewCache(view)
	require.NoError(t, cache.UndoBlock(undo))
	require.NoError(t, cache.Flush(view.Store().NewBatch()))
}

func snapshotRoots(t *testing.T, view *coins.ViewDB) [4]mw.Hash {
	t.Helper()
	kernel, output, proof, leafset, err := view.Roots()
	require.NoError(t, err)
	return [4]mw.Hash{kernel, output, proof, leafset}
}

func TestApplyFlushAndLookup(t *testing.T) {
	view := newTestView(t)
	w := newTestWallet(t, 1)
	chain := fortest.NewChain()

	tx1, _, err := w.CreatePegInTx(8_000_000, nil)
	require.NoError(t, err)
	b1, err := chain.BuildBlock(tx1)
	require.NoError(t, err)

	connect(t, view, b1)

	require.NotNil(t, view.BestHeader())
	assert.Equal(t, uint64(1), view.BestHeader().Height)
	assert.Equal(t, uint64(1), view.UTXOCount())

	commitment := tx1.Body().Outputs[0].Commitment
	utxo, err := view.GetUTXO(commitment)
	require.NoError(t, err)
	assert.True(t, view.IsUnspent(utxo))
	assert.Equal(t, uint64(1), utxo.Height)
	assert.Equal(t, mmr.LeafIndex(0), utxo.LeafIndex)
}

func TestConnectDisconnectRoundTrip(t *testing.T) {
	view := newTestView(t)
	w := newTestWallet(t, 2)
	chain := fortest.NewChain()

	genesisRoots := snapshotRoots(t, view)

	// B1: peg-in 8M to our own wallet.
	tx1, _, err := w.CreatePegInTx(8_000_000, nil)
	require.NoError(t, err)
	b1, err := chain.BuildBlock(tx1)
	require.NoError(t, err)
	undo1 := connect(t, view, b1)
	b1Roots := snapshotRoots(t, view)

	// B2: spend the peg-in to a fresh address, fee 500k.
	coin := confirmCoin(t, w, b1)
	dest, err := w.GetStealthAddress(5)
	require.NoError(t, err)
	tx2, err := w.CreateTx([]wallet.Coin{coin},
		[]wallet.Recipient{wallet.MWEBRecipient{Amount: 7_500_000, Address: dest}},
		0, 500_000)
	require.NoError(t, err)
	b2, err := chain.BuildBlock(tx2)
	require.NoError(t, err)
	undo2 := connect(t, view, b2)

	assert.NotEqual(t, b1Roots, snapshotRoots(t, view))

	// Disconnect B2: roots equal the post-B1 snapshot.
	disconnect(t, view, undo2)
	assert.Equal(t, b1Roots, snapshotRoots(t, view))
	assert.Equal(t, uint64(1), view.BestHeader().Height)

	utxo, err := view.GetUTXO(coin.Commitment)
	require.NoError(t, err)
	assert.True(t, view.IsUnspent(utxo), "spent bit restored")

	// Disconnect B1: roots equal genesis.
	disconnect(t, view, undo1)
	assert.Equal(t, genesisRoots, snapshotRoots(t, view))
	assert.Nil(t, view.BestHeader())
	assert.Equal(t, uint64(0), view.UTXOCount())

	_, err = view.GetUTXO(coin.Commitment)
	assert.ErrorIs(t, err, mw.ErrNotFound)
}

func TestDoubleSpendRejected(t *testing.T) {
	view := newTestView(t)
	w := newTestWallet(t, 3)
	chain := fortest.NewChain()

	tx1, _, err := w.CreatePegInTx(8_000_000, nil)
	require.NoError(t, err)
	b1, err := chain.BuildBlock(tx1)
	require.NoError(t, err)
	connect(t, view, b1)

	coin := confirmCoin(t, w, b1)
	dest, err := w.GetStealthAddress(5)
	require.NoError(t, err)
	tx2, err := w.CreateTx([]wallet.Coin{coin},
		[]wallet.Recipient{wallet.MWEBRecipient{Amount: 7_500_000, Address: dest}},
		0, 500_000)
	require.NoError(t, err)
	b2, err := chain.BuildBlock(tx2)
	require.NoError(t, err)
	connect(t, view, b2)

	rootsBefore := snapshotRoots(t, view)

	// A block re-spending the same commitment: the leafset bit is already
	// cleared.
	doubleSpend := block.NewBlock(
		&block.Header{Height: 3},
		tx.TxBody{Inputs: []tx.Input{tx.NewInput(0, coin.Commitment)}},
	)
	cache := coins.NewViewCache(view)
	_, err = cache.ApplyBlock(doubleSpend)
	assert.ErrorIs(t, err, mw.ErrDoubleSpend)

	// The cache is discarded; the committed view is untouched.
	assert.Equal(t, rootsBefore, snapshotRoots(t, view))
}

func TestUnknownOutputRejected(t *testing.T) {
	view := newTestView(t)

	bogus := block.NewBlock(
		&block.Header{Height: 1},
		tx.TxBody{Inputs: []tx.Input{tx.NewInput(0, mw.Commitment{0x02, 0xff})}},
	)
	cache := coins.NewViewCache(view)
	_, err := cache.ApplyBlock(bogus)
	assert.ErrorIs(t, err, mw.ErrUnknownOutput)
}

func TestRootMismatchRejected(t *testing.T) {
	view := newTestView(t)
	w := newTestWallet(t, 4)
	chain := fortest.NewChain()

	tx1, _, err := w.CreatePegInTx(1_000_000, nil)
	require.NoError(t, err)
	b1, err := chain.BuildBlock(tx1)
	require.NoError(t, err)

	tampered := *b1.Header()
	tampered.OutputRoot = mw.HashSum([]byte("wrong"))
	cache := coins.NewViewCache(view)
	_, err = cache.ApplyBlock(block.NewBlock(&tampered, b1.Body()))
	assert.ErrorIs(t, err, mw.ErrConsensusViolation)
}

func TestNestedCacheFlush(t *testing.T) {
	view := newTestView(t)
	w := newTestWallet(t, 5)
	chain := fortest.NewChain()

	tx1, _, err := w.CreatePegInTx(2_000_000, nil)
	require.NoError(t, err)
	b1, err := chain.BuildBlock(tx1)
	require.NoError(t, err)

	outer := coins.NewViewCache(view)
	inner := coins.NewViewCache(outer)
	_, err = inner.ApplyBlock(b1)
	require.NoError(t, err)

	// Inner flush is in-memory; the db view is untouched until the outer
	// flush.
	require.NoError(t, inner.Flush(nil))
	assert.Nil(t, view.BestHeader())
	utxo, err := outer.GetUTXO(tx1.Body().Outputs[0].Commitment)
	require.NoError(t, err)
	assert.True(t, outer.IsUnspent(utxo))

	require.NoError(t, outer.Flush(view.Store().NewBatch()))
	assert.Equal(t, uint64(1), view.BestHeader().Height)
	assert.Equal(t, uint64(1), view.UTXOCount())
}

// confirmCoin feeds the connected block to the wallet and returns the coin
// it recovered, stamped with the block height.
func confirmCoin(t *testing.T, w *wallet.Wallet, b *block.Block) wallet.Coin {
	t.Helper()
	require.NoError(t, w.BlockConnected(b, b.Hash()))
	coin, err := w.Store().GetCoin(b.Outputs()[0].Commitment)
	require.NoError(t, err)
	require.NotNil(t, coin)
	require.True(t, coin.IsConfirmed())
	return *coin
}
