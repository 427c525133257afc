// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package coins maintains the coin state: a database-backed base view plus
// stackable caches that apply and roll back blocks, flushed to the store in
// one atomic batch.
package coins

import (
	"github.com/mwebchain/mweb/block"
	"github.com/mwebchain/mweb/db"
	"github.com/mwebchain/mweb/kv"
	"github.com/mwebchain/mweb/mmr"
	"github.com/mwebchain/mweb/mw"
)

// View is read access to the coin state at some tip.
type View interface {
	// BestHeader returns the tip header, nil for an empty chain.
	BestHeader() *block.Header
	// GetUTXO looks up an output by commitment in the UTXO index. Spent
	// outputs keep their record (the leafset bit is what marks them spent);
	// records disappear only when the creating block is disconnected.
	// Returns mw.ErrNotFound if the commitment was never indexed.
	GetUTXO(commitment mw.Commitment) (*db.UTXO, error)
	// IsUnspent reports whether the UTXO's leafset bit is set.
	IsUnspent(utxo *db.UTXO) bool

	// leafSet returns the view's live leafset.
	leafSet() *mmr.LeafSet
	// backends return the view's MMR backends, for cache stacking.
	kernelBackend() mmr.Backend
	outputBackend() mmr.Backend
	rangeProofBackend() mmr.Backend
}

// ViewDB is the read-only view of the committed tip: kv-backed UTXO index
// and MMRs at their on-disk state.
type ViewDB struct {
	header  *block.Header
	store   kv.Store
	utxos   *db.UTXODB
	headers *db.HeaderDB

	leafset *mmr.LeafSet
	kernels *mmr.MMR
	outputs *mmr.MMR
	proofs  *mmr.MMR

	kernelBE *db.MMRBackend
	outputBE *db.MMRBackend
	proofBE  *db.MMRBackend
}

var _ View = (*ViewDB)(nil)

// NewViewDB assembles the committed view from its persistent parts.
func NewViewDB(
	header *block.Header,
	store kv.Store,
	leafset *mmr.LeafSet,
	kernelBE, outputBE, proofBE *db.MMRBackend,
) *ViewDB {
	return &ViewDB{
		header:   header,
		store:    store,
		utxos:    db.NewUTXODB(store),
		headers:  db.NewHeaderDB(store),
		leafset:  leafset,
		kernels:  mmr.New(kernelBE),
		outputs:  mmr.New(outputBE),
		proofs:   mmr.New(proofBE),
		kernelBE: kernelBE,
		outputBE: outputBE,
		proofBE:  proofBE,
	}
}

// BestHeader implements View.
func (v *ViewDB) BestHeader() *block.Header { return v.header }

// GetUTXO implements View.
func (v *ViewDB) GetUTXO(commitment mw.Commitment) (*db.UTXO, error) {
	return v.utxos.Get(commitment)
}

// IsUnspent implements View.
func (v *ViewDB) IsUnspent(utxo *db.UTXO) bool {
	return v.leafset.Test(utxo.LeafIndex)
}

// Roots returns the current (kernel, output, rangeproof, leafset) roots.
func (v *ViewDB) Roots() (kernel, output, rangeProof, leafset mw.Hash, err error) {
	if kernel, err = v.kernels.Root(); err != nil {
		return
	}
	if output, err = v.outputs.Root(); err != nil {
		return
	}
	if rangeProof, err = v.proofs.Root(); err != nil {
		return
	}
	leafset = v.leafset.Root()
	return
}

// UTXOCount returns the current UTXO cardinality.
func (v *ViewDB) UTXOCount() uint64 { return v.leafset.Count() }

// Store returns the backing kv store.
func (v *ViewDB) Store() kv.Store { return v.store }

// Discard drops staged backend mutations after a failed flush, returning the
// view to the previous committed tip.
func (v *ViewDB) Discard() {
	v.kernelBE.Discard()
	v.outputBE.Discard()
	v.proofBE.Discard()
}

// Close closes the MMR leaf files.
func (v *ViewDB) Close() error {
	for _, be := range []*db.MMRBackend{v.kernelBE, v.outputBE, v.proofBE} {
		if err := be.Close(); err != nil {
			return err
		}
	}
	return nil
}

func (v *ViewDB) leafSet() *mmr.LeafSet          { return v.leafset }
func (v *ViewDB) kernelBackend() mmr.Backend     { return v.kernelBE }
func (v *ViewDB) outputBackend() mmr.Backend     { return v.outputBE }
func (v *ViewDB) rangeProofBackend() mmr.Backend { return v.proofBE }
