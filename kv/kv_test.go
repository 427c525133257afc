// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwebchain/mweb/kv"
	"github.com/mwebchain/mweb/lvldb"
)

func TestTableScoping(t *testing.T) {
	store, err := lvldb.NewMem()
	require.NoError(t, err)
	defer store.Close()

	a := kv.Table('A')
	b := kv.Table('B')

	require.NoError(t, a.NewPutter(store).Put([]byte("key"), []byte("in a")))
	require.NoError(t, b.NewPutter(store).Put([]byte("key"), []byte("in b")))

	got, err := a.NewGetter(store).Get([]byte("key"))
	require.NoError(t, err)
	assert.Equal(t, []byte("in a"), got)

	got, err = b.NewGetter(store).Get([]byte("key"))
	require.NoError(t, err)
	assert.Equal(t, []byte("in b"), got)

	require.NoError(t, a.NewPutter(store).Delete([]byte("key")))
	has, err := a.NewGetter(store).Has([]byte("key"))
	require.NoError(t, err)
	assert.False(t, has)

	has, err = b.NewGetter(store).Has([]byte("key"))
	require.NoError(t, err)
	assert.True(t, has, "delete is table-scoped")
}

func TestBatchCommit(t *testing.T) {
	store, err := lvldb.NewMem()
	require.NoError(t, err)
	defer store.Close()

	batch := store.NewBatch()
	require.NoError(t, batch.Put([]byte("k1"), []byte("v1")))
	require.NoError(t, batch.Put([]byte("k2"), []byte("v2")))
	assert.Equal(t, 2, batch.Len())

	// Nothing visible until commit.
	_, err = store.Get([]byte("k1"))
	assert.True(t, store.IsNotFound(err))

	require.NoError(t, batch.Commit())
	got, err := store.Get([]byte("k2"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)
}
