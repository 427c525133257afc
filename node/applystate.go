// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/mwebchain/mweb/block"
	"github.com/mwebchain/mweb/coins"
	"github.com/mwebchain/mweb/db"
	"github.com/mwebchain/mweb/kv"
	"github.com/mwebchain/mweb/mmr"
	"github.com/mwebchain/mweb/mw"
	"github.com/mwebchain/mweb/ser"
	"github.com/mwebchain/mweb/tx"
)

// BlockStore resolves headers the host chain already holds.
type BlockStore interface {
	GetHeader(hash mw.Hash) (*block.Header, error)
}

// StateOutput is one output-MMR leaf of an imported state: the UTXO plus
// whether its leafset bit is cleared. The sequence must be the complete,
// dense leaf order of the output MMR at the state header, spent outputs
// included, or the roots cannot be rebuilt.
type StateOutput struct {
	UTXO  db.UTXO
	Spent bool
}

// ApplyState bootstraps the coin state from a trusted snapshot: the full
// kernel history and the output leaf sequence at stateHeaderHash. The state
// is written into a fresh file generation; on success the node switches its
// committed view to it.
func (n *Node) ApplyState(
	store kv.Store,
	blockStore BlockStore,
	firstMWHeaderHash mw.Hash,
	stateHeaderHash mw.Hash,
	outputs []StateOutput,
	kernels []tx.Kernel,
) (coins.View, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	stateHeader, err := blockStore.GetHeader(stateHeaderHash)
	if err != nil {
		return nil, err
	}
	if _, err := blockStore.GetHeader(firstMWHeaderHash); err != nil {
		return nil, errors.Wrap(err, "first mw header")
	}

	info, err := db.NewMMRInfoDB(store).Latest()
	if err != nil {
		return nil, err
	}
	fileIndex := info.FileIndex + 1

	chainDir := n.config.ChainDir()
	leafset, err := mmr.OpenLeafSet(filepath.Join(chainDir, "leafset"), fileIndex)
	if err != nil {
		return nil, err
	}
	kernelBE, err := db.OpenMMRBackend('K', filepath.Join(chainDir, "kernels"), fileIndex, store)
	if err != nil {
		return nil, err
	}
	outputBE, err := db.OpenMMRBackend('O', filepath.Join(chainDir, "outputs"), fileIndex, store)
	if err != nil {
		return nil, err
	}
	proofBE, err := db.OpenMMRBackend('R', filepath.Join(chainDir, "proofs"), fileIndex, store)
	if err != nil {
		return nil, err
	}

	kernelMMR := mmr.New(kernelBE)
	outputMMR := mmr.New(outputBE)
	proofMMR := mmr.New(proofBE)

	batch := store.NewBatch()
	utxoDB := db.NewUTXODB(store)

	for _, k := range kernels {
		if _, err := kernelMMR.Add(ser.ToBytes(k)); err != nil {
			return nil, err
		}
	}
	for i, out := range outputs {
		leafIdx, err := outputMMR.Add(ser.ToBytes(out.UTXO.Output))
		if err != nil {
			return nil, err
		}
		if _, err := proofMMR.Add(out.UTXO.Output.RangeProof); err != nil {
			return nil, err
		}
		if leafIdx != out.UTXO.LeafIndex {
			return nil, errors.Wrapf(mw.ErrConsensusViolation,
				"state output %d not in leaf order", i)
		}
		if !out.Spent {
			leafset.Set(leafIdx)
			if err := utxoDB.Put(batch, &out.UTXO); err != nil {
				return nil, err
			}
		}
	}

	// The rebuilt roots must reproduce the trusted header exactly.
	kernelRoot, err := kernelMMR.Root()
	if err != nil {
		return nil, err
	}
	outputRoot, err := outputMMR.Root()
	if err != nil {
		return nil, err
	}
	proofRoot, err := proofMMR.Root()
	if err != nil {
		return nil, err
	}
	switch {
	case kernelRoot != stateHeader.KernelRoot:
		return nil, errors.Wrap(mw.ErrConsensusViolation, "state kernel root mismatch")
	case outputRoot != stateHeader.OutputRoot:
		return nil, errors.Wrap(mw.ErrConsensusViolation, "state output root mismatch")
	case proofRoot != stateHeader.RangeProofRoot:
		return nil, errors.Wrap(mw.ErrConsensusViolation, "state rangeproof root mismatch")
	case leafset.Root() != stateHeader.LeafsetRoot:
		return nil, errors.Wrap(mw.ErrConsensusViolation, "state leafset root mismatch")
	}

	if err := kernelBE.Flush(batch); err != nil {
		return nil, err
	}
	if err := outputBE.Flush(batch); err != nil {
		return nil, err
	}
	if err := proofBE.Flush(batch); err != nil {
		return nil, err
	}
	headerDB := db.NewHeaderDB(store)
	if err := headerDB.PutBest(batch, stateHeader); err != nil {
		return nil, err
	}
	if err := db.NewMMRInfoDB(store).Put(batch, db.MMRInfo{FileIndex: fileIndex}); err != nil {
		return nil, err
	}
	if err := batch.Commit(); err != nil {
		return nil, errors.Wrap(mw.ErrStorageFailure, err.Error())
	}
	if err := leafset.Flush(); err != nil {
		return nil, err
	}

	n.view = coins.NewViewDB(stateHeader, store, leafset, kernelBE, outputBE, proofBE)
	logger.Info("state applied", "tip", stateHeader.Height, "outputs", len(outputs),
		"kernels", len(kernels), "fileIndex", fileIndex)
	return n.view, nil
}
