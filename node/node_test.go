// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwebchain/mweb/block"
	"github.com/mwebchain/mweb/db"
	"github.com/mwebchain/mweb/fortest"
	"github.com/mwebchain/mweb/lvldb"
	"github.com/mwebchain/mweb/mw"
	"github.com/mwebchain/mweb/node"
	"github.com/mwebchain/mweb/tx"
	"github.com/mwebchain/mweb/wallet"
)

func testConfig(t *testing.T) *node.Config {
	t.Helper()
	return &node.Config{
		DataDir:            t.TempDir(),
		HRP:                "mweb",
		PegInMaturity:      2,
		MaxBlockWeight:     200_000,
		WeightPerInput:     1,
		WeightPerOutput:    18,
		WeightPerKernel:    2,
		WeightPerExtraByte: 1,
	}
}

func newTestNode(t *testing.T) (*node.Node, *lvldb.LevelDB) {
	t.Helper()
	store, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	n, err := node.InitializeNode(testConfig(t), nil, store)
	require.NoError(t, err)
	t.Cleanup(func() { n.Close() })
	return n, store
}

func emptyTx() *tx.Transaction {
	return tx.NewTransaction(mw.BlindingFactor{}, mw.BlindingFactor{}, tx.TxBody{})
}

// TestPegInAndSpend walks scenario S1: peg-in 8M, mature it, spend 7.5M to a
// fresh address with fee 500k, then roll everything back.
func TestPegInAndSpend(t *testing.T) {
	n, _ := newTestNode(t)
	w, err := wallet.Open(wallet.NewMemStore([]byte("seed one")), n.Params())
	require.NoError(t, err)
	chain := fortest.NewChain()

	// B1: peg-in 8M to our own address.
	tx1, peginCoin, err := w.CreatePegInTx(8_000_000, nil)
	require.NoError(t, err)
	b1, err := chain.BuildBlock(tx1)
	require.NoError(t, err)

	require.NoError(t, n.ValidateBlock(b1, b1.Hash(), []tx.PegInCoin{peginCoin}, nil))
	assert.Error(t, n.ValidateBlock(b1, mw.HashSum([]byte("wrong")), []tx.PegInCoin{peginCoin}, nil))

	undo1, err := n.ConnectBlock(b1, n.View())
	require.NoError(t, err)
	require.NoError(t, w.BlockConnected(b1, b1.Hash()))

	// Depth 1 < maturity 2: the peg-in is immature.
	balance, err := w.GetBalance(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(8_000_000), balance.Immature)
	assert.Zero(t, balance.Confirmed)

	// B2: empty block; the peg-in matures.
	b2, err := chain.BuildBlock(emptyTx())
	require.NoError(t, err)
	require.NoError(t, n.ValidateBlock(b2, b2.Hash(), nil, nil))
	undo2, err := n.ConnectBlock(b2, n.View())
	require.NoError(t, err)

	balance, err = w.GetBalance(2)
	require.NoError(t, err)
	assert.Equal(t, uint64(8_000_000), balance.Confirmed)
	assert.Zero(t, balance.Immature)

	// B3: spend the peg-in to a fresh address with fee 500k.
	coin, err := w.Store().GetCoin(tx1.Body().Outputs[0].Commitment)
	require.NoError(t, err)
	require.NotNil(t, coin)
	dest, err := w.GetStealthAddress(5)
	require.NoError(t, err)
	tx2, err := w.CreateTx([]wallet.Coin{*coin},
		[]wallet.Recipient{wallet.MWEBRecipient{Amount: 7_500_000, Address: dest}},
		0, 500_000)
	require.NoError(t, err)
	b3, err := chain.BuildBlock(tx2)
	require.NoError(t, err)

	require.NoError(t, n.ValidateBlock(b3, b3.Hash(), nil, nil))
	undo3, err := n.ConnectBlock(b3, n.View())
	require.NoError(t, err)
	require.NoError(t, w.BlockConnected(b3, b3.Hash()))

	// Destination holds 7.5M; the origin coin is spent.
	balance, err = w.GetBalance(3)
	require.NoError(t, err)
	assert.Equal(t, uint64(7_500_000), balance.Confirmed)

	origin, err := w.Store().GetCoin(coin.Commitment)
	require.NoError(t, err)
	assert.True(t, origin.IsSpent())

	// Disconnect everything; the view returns to genesis.
	require.NoError(t, n.DisconnectBlock(undo3, n.View()))
	require.NoError(t, w.BlockDisconnected(b3))
	require.NoError(t, n.DisconnectBlock(undo2, n.View()))
	require.NoError(t, n.DisconnectBlock(undo1, n.View()))
	assert.Nil(t, n.View().BestHeader())
}

func TestConnectPersists(t *testing.T) {
	store, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	cfg := testConfig(t)

	n, err := node.InitializeNode(cfg, nil, store)
	require.NoError(t, err)

	w, err := wallet.Open(wallet.NewMemStore([]byte("seed two")), n.Params())
	require.NoError(t, err)
	chain := fortest.NewChain()

	tx1, _, err := w.CreatePegInTx(1_000_000, nil)
	require.NoError(t, err)
	b1, err := chain.BuildBlock(tx1)
	require.NoError(t, err)
	_, err = n.ConnectBlock(b1, n.View())
	require.NoError(t, err)
	require.NoError(t, n.Close())

	// Reopen over the same store and datadir: the tip survives.
	reopened, err := node.InitializeNode(cfg, nil, store)
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })

	header := reopened.View().BestHeader()
	require.NotNil(t, header)
	assert.Equal(t, b1.Header().Hash(), header.Hash())

	utxo, err := reopened.View().GetUTXO(tx1.Body().Outputs[0].Commitment)
	require.NoError(t, err)
	assert.True(t, reopened.View().IsUnspent(utxo))
}

func TestConnectRejectsBadHeight(t *testing.T) {
	n, _ := newTestNode(t)
	w, err := wallet.Open(wallet.NewMemStore([]byte("seed three")), n.Params())
	require.NoError(t, err)
	chain := fortest.NewChain()

	tx1, _, err := w.CreatePegInTx(1_000, nil)
	require.NoError(t, err)
	b1, err := chain.BuildBlock(tx1)
	require.NoError(t, err)
	_, err = n.ConnectBlock(b1, n.View())
	require.NoError(t, err)

	// Height must advance the tip by exactly one.
	tx2, _, err := w.CreatePegInTx(2_000, nil)
	require.NoError(t, err)
	b2, err := chain.BuildBlock(tx2)
	require.NoError(t, err)
	skewed := *b2.Header()
	skewed.Height = 7
	_, err = n.ConnectBlock(block.NewBlock(&skewed, b2.Body()), n.View())
	assert.ErrorIs(t, err, mw.ErrConsensusViolation)
	assert.Equal(t, uint64(1), n.View().BestHeader().Height)
}

func TestApplyState(t *testing.T) {
	n, store := newTestNode(t)
	w, err := wallet.Open(wallet.NewMemStore([]byte("seed four")), n.Params())
	require.NoError(t, err)
	chain := fortest.NewChain()

	tx1, _, err := w.CreatePegInTx(5_000_000, nil)
	require.NoError(t, err)
	b1, err := chain.BuildBlock(tx1)
	require.NoError(t, err)

	out := tx1.Body().Outputs[0]
	stateOutputs := []node.StateOutput{{
		UTXO: db.UTXO{LeafIndex: 0, Height: 1, Output: out},
	}}

	headers := &stubBlockStore{headers: map[mw.Hash]*block.Header{
		b1.Header().Hash(): b1.Header(),
	}}
	view, err := n.ApplyState(store, headers, b1.Header().Hash(), b1.Header().Hash(),
		stateOutputs, b1.Kernels())
	require.NoError(t, err)

	header := view.BestHeader()
	require.NotNil(t, header)
	assert.Equal(t, b1.Header().Hash(), header.Hash())

	utxo, err := view.GetUTXO(out.Commitment)
	require.NoError(t, err)
	assert.True(t, view.IsUnspent(utxo))
}

type stubBlockStore struct {
	headers map[mw.Hash]*block.Header
}

func (s *stubBlockStore) GetHeader(hash mw.Hash) (*block.Header, error) {
	if h, ok := s.headers[hash]; ok {
		return h, nil
	}
	return nil, mw.ErrNotFound
}
