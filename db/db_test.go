// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package db_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwebchain/mweb/block"
	"github.com/mwebchain/mweb/db"
	"github.com/mwebchain/mweb/lvldb"
	"github.com/mwebchain/mweb/mmr"
	"github.com/mwebchain/mweb/mw"
	"github.com/mwebchain/mweb/tx"
)

func TestMMRBackendPersistence(t *testing.T) {
	store, err := lvldb.NewMem()
	require.NoError(t, err)
	defer store.Close()
	dir := t.TempDir()

	be, err := db.OpenMMRBackend('K', dir, 0, store)
	require.NoError(t, err)
	m := mmr.New(be)
	for i := 0; i < 7; i++ {
		_, err := m.Add([]byte{byte(i), byte(i + 1)})
		require.NoError(t, err)
	}
	root, err := m.Root()
	require.NoError(t, err)

	batch := store.NewBatch()
	require.NoError(t, be.Flush(batch))
	require.NoError(t, batch.Commit())
	require.NoError(t, be.Close())

	// Reopen: leaf file and node table reproduce the same MMR.
	reopened, err := db.OpenMMRBackend('K', dir, 0, store)
	require.NoError(t, err)
	defer reopened.Close()
	m2 := mmr.New(reopened)
	assert.Equal(t, uint64(7), m2.LeafCount())

	root2, err := m2.Root()
	require.NoError(t, err)
	assert.Equal(t, root, root2)

	data, err := m2.LeafData(3)
	require.NoError(t, err)
	assert.Equal(t, []byte{3, 4}, data)

	// Appending after reopen continues the structure.
	_, err = m2.Add([]byte{7, 8})
	require.NoError(t, err)
	assert.Equal(t, uint64(8), m2.LeafCount())
}

func TestMMRBackendRewindAcrossFlush(t *testing.T) {
	store, err := lvldb.NewMem()
	require.NoError(t, err)
	defer store.Close()
	dir := t.TempDir()

	be, err := db.OpenMMRBackend('O', dir, 0, store)
	require.NoError(t, err)
	defer be.Close()
	m := mmr.New(be)

	for i := 0; i < 4; i++ {
		_, err := m.Add([]byte{byte(i)})
		require.NoError(t, err)
	}
	rootAt4, err := m.Root()
	require.NoError(t, err)
	batch := store.NewBatch()
	require.NoError(t, be.Flush(batch))
	require.NoError(t, batch.Commit())

	for i := 4; i < 9; i++ {
		_, err := m.Add([]byte{byte(i)})
		require.NoError(t, err)
	}
	batch = store.NewBatch()
	require.NoError(t, be.Flush(batch))
	require.NoError(t, batch.Commit())

	// Rewind below the committed frontier and flush the truncation.
	require.NoError(t, m.Rewind(4))
	batch = store.NewBatch()
	require.NoError(t, be.Flush(batch))
	require.NoError(t, batch.Commit())

	root, err := m.Root()
	require.NoError(t, err)
	assert.Equal(t, rootAt4, root)
	assert.Equal(t, uint64(4), m.LeafCount())
}

func TestUTXODB(t *testing.T) {
	store, err := lvldb.NewMem()
	require.NoError(t, err)
	defer store.Close()

	utxos := db.NewUTXODB(store)
	out := tx.Output{RangeProof: make(mw.RangeProof, 10)}
	out.Commitment[0] = 0x08
	out.OwnerData.EncryptedData = make([]byte, 40)

	utxo := &db.UTXO{LeafIndex: 5, Height: 9, Output: out}
	require.NoError(t, utxos.Put(store, utxo))

	got, err := utxos.Get(out.Commitment)
	require.NoError(t, err)
	assert.Equal(t, utxo, got)

	require.NoError(t, utxos.Delete(store, out.Commitment))
	_, err = utxos.Get(out.Commitment)
	assert.ErrorIs(t, err, mw.ErrNotFound)
}

func TestHeaderDB(t *testing.T) {
	store, err := lvldb.NewMem()
	require.NoError(t, err)
	defer store.Close()

	headers := db.NewHeaderDB(store)
	best, err := headers.Best()
	require.NoError(t, err)
	assert.Nil(t, best)

	header := &block.Header{Height: 3, OutputMMRSize: 2, KernelMMRSize: 1}
	require.NoError(t, headers.PutBest(store, header))

	best, err = headers.Best()
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, header.Hash(), best.Hash())

	byHash, err := headers.Get(header.Hash())
	require.NoError(t, err)
	assert.Equal(t, header.Hash(), byHash.Hash())

	_, err = headers.Get(mw.HashSum([]byte("missing")))
	assert.ErrorIs(t, err, mw.ErrNotFound)
}

func TestMMRInfoDB(t *testing.T) {
	store, err := lvldb.NewMem()
	require.NoError(t, err)
	defer store.Close()

	infos := db.NewMMRInfoDB(store)
	info, err := infos.Latest()
	require.NoError(t, err)
	assert.Equal(t, uint32(0), info.FileIndex)

	require.NoError(t, infos.Put(store, db.MMRInfo{FileIndex: 2}))
	info, err = infos.Latest()
	require.NoError(t, err)
	assert.Equal(t, uint32(2), info.FileIndex)
}
