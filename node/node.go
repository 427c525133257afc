// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/mwebchain/mweb/block"
	"github.com/mwebchain/mweb/coins"
	"github.com/mwebchain/mweb/consensus"
	"github.com/mwebchain/mweb/db"
	"github.com/mwebchain/mweb/kv"
	"github.com/mwebchain/mweb/log"
	"github.com/mwebchain/mweb/metrics"
	"github.com/mwebchain/mweb/mmr"
	"github.com/mwebchain/mweb/mw"
	"github.com/mwebchain/mweb/tx"
)

var logger = log.WithContext("pkg", "node")

var (
	metricBlocksConnected    = metrics.LazyLoadCounter("blocks_connected_count")
	metricBlocksDisconnected = metrics.LazyLoadCounter("blocks_disconnected_count")
	metricUTXOSize           = metrics.LazyLoadGauge("utxo_set_size")
)

// Node drives the extension-block engine for the host chain. It is the sole
// writer of the coin state: connect and disconnect hold the exclusive lock,
// read-only queries share the committed view.
type Node struct {
	mu sync.RWMutex

	config    *Config
	params    *mw.ChainParams
	store     kv.Store
	validator *consensus.Validator
	view      *coins.ViewDB
}

// InitializeNode opens the chain state under cfg.DataDir. bestHeader is the
// host's view of the tip; nil falls back to the stored best header.
func InitializeNode(cfg *Config, bestHeader *block.Header, store kv.Store) (*Node, error) {
	params, err := cfg.Params()
	if err != nil {
		return nil, err
	}

	info, err := db.NewMMRInfoDB(store).Latest()
	if err != nil {
		return nil, err
	}

	chainDir := cfg.ChainDir()
	leafset, err := mmr.OpenLeafSet(filepath.Join(chainDir, "leafset"), info.FileIndex)
	if err != nil {
		return nil, err
	}
	kernelBE, err := db.OpenMMRBackend('K', filepath.Join(chainDir, "kernels"), info.FileIndex, store)
	if err != nil {
		return nil, err
	}
	outputBE, err := db.OpenMMRBackend('O', filepath.Join(chainDir, "outputs"), info.FileIndex, store)
	if err != nil {
		return nil, err
	}
	proofBE, err := db.OpenMMRBackend('R', filepath.Join(chainDir, "proofs"), info.FileIndex, store)
	if err != nil {
		return nil, err
	}

	if bestHeader == nil {
		if bestHeader, err = db.NewHeaderDB(store).Best(); err != nil {
			return nil, err
		}
	}

	view := coins.NewViewDB(bestHeader, store, leafset, kernelBE, outputBE, proofBE)
	node := &Node{
		config:    cfg,
		params:    params,
		store:     store,
		validator: consensus.NewValidator(params),
		view:      view,
	}
	logger.Info("node initialized", "datadir", cfg.DataDir, "fileIndex", info.FileIndex,
		"tip", tipHeight(bestHeader))
	return node, nil
}

// Params returns the chain parameters.
func (n *Node) Params() *mw.ChainParams { return n.params }

// View returns the committed (DB-backed) view.
func (n *Node) View() coins.View {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.view
}

// ValidateBlock runs every context-free consensus check on the block, and
// checks it against the hash the host chain committed to.
func (n *Node) ValidateBlock(b *block.Block, mwebHash mw.Hash, pegins []tx.PegInCoin, pegouts []tx.PegOutCoin) error {
	n.mu.RLock()
	defer n.mu.RUnlock()

	logger.Trace("validating block", "height", b.Height())
	if b.Hash() != mwebHash {
		return errors.Wrap(mw.ErrConsensusViolation, "block hash mismatch")
	}
	if err := n.validator.ValidateBlock(b, pegins, pegouts); err != nil {
		return err
	}
	logger.Trace("block validated", "height", b.Height())
	return nil
}

// ConnectBlock applies the block on top of view and flushes. It returns the
// undo data the host must keep to disconnect the block later.
func (n *Node) ConnectBlock(b *block.Block, view coins.View) (*coins.BlockUndo, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	cache := coins.NewViewCache(view)
	undo, err := cache.ApplyBlock(b)
	if err != nil {
		return nil, err
	}
	if err := cache.Flush(n.store.NewBatch()); err != nil {
		return nil, err
	}

	metricBlocksConnected().Add(1)
	metricUTXOSize().Set(int64(n.view.UTXOCount()))
	logger.Debug("block connected", "height", b.Height())
	return undo, nil
}

// DisconnectBlock rolls the tip block back using its undo data.
func (n *Node) DisconnectBlock(undo *coins.BlockUndo, view coins.View) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	cache := coins.NewViewCache(view)
	if err := cache.UndoBlock(undo); err != nil {
		return err
	}
	if err := cache.Flush(n.store.NewBatch()); err != nil {
		return err
	}

	metricBlocksDisconnected().Add(1)
	metricUTXOSize().Set(int64(n.view.UTXOCount()))
	logger.Debug("block disconnected", "tip", tipHeight(n.view.BestHeader()))
	return nil
}

// Close releases the MMR leaf files.
func (n *Node) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.view.Close()
}

func tipHeight(header *block.Header) uint64 {
	if header == nil {
		return 0
	}
	return header.Height
}
