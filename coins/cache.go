// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package coins

import (
	"github.com/pkg/errors"

	"github.com/mwebchain/mweb/block"
	"github.com/mwebchain/mweb/consensus"
	"github.com/mwebchain/mweb/db"
	"github.com/mwebchain/mweb/kv"
	"github.com/mwebchain/mweb/log"
	"github.com/mwebchain/mweb/mmr"
	"github.com/mwebchain/mweb/mw"
	"github.com/mwebchain/mweb/ser"
)

var logger = log.WithContext("pkg", "coins")

// BlockUndo captures everything needed to disconnect a block: the previous
// header, the spent coins to restore, the commitments to drop, and the MMR
// frontiers to rewind to.
type BlockUndo struct {
	PrevHeader          *block.Header
	Spent               []db.UTXO
	NewUTXOs            []mw.Commitment
	PrevOutputLeafCount uint64
	PrevKernelLeafCount uint64
}

// ViewCache is a layered view stacked on a parent view. It owns dirty MMR
// overlays, a copy-on-write leafset, and buffered UTXO inserts and spends.
// Caches nest; discarding one never touches its parent.
type ViewCache struct {
	parent View
	header *block.Header

	leafset *mmr.LeafSet
	kernels *mmr.MMR
	outputs *mmr.MMR
	proofs  *mmr.MMR

	kernelCache *mmr.Cache
	outputCache *mmr.Cache
	proofCache  *mmr.Cache

	adds    map[mw.Commitment]*db.UTXO
	deletes map[mw.Commitment]struct{}
}

var _ View = (*ViewCache)(nil)

// NewViewCache stacks a fresh cache on parent.
func NewViewCache(parent View) *ViewCache {
	kernelCache := mmr.NewCache(parent.kernelBackend())
	outputCache := mmr.NewCache(parent.outputBackend())
	proofCache := mmr.NewCache(parent.rangeProofBackend())
	return &ViewCache{
		parent:      parent,
		header:      parent.BestHeader(),
		leafset:     parent.leafSet().Clone(),
		kernels:     mmr.New(kernelCache),
		outputs:     mmr.New(outputCache),
		proofs:      mmr.New(proofCache),
		kernelCache: kernelCache,
		outputCache: outputCache,
		proofCache:  proofCache,
		adds:        make(map[mw.Commitment]*db.UTXO),
		deletes:     make(map[mw.Commitment]struct{}),
	}
}

// BestHeader implements View.
func (c *ViewCache) BestHeader() *block.Header { return c.header }

// GetUTXO implements View.
func (c *ViewCache) GetUTXO(commitment mw.Commitment) (*db.UTXO, error) {
	if utxo, ok := c.adds[commitment]; ok {
		return utxo, nil
	}
	if _, ok := c.deletes[commitment]; ok {
		return nil, errors.Wrap(mw.ErrNotFound, "utxo")
	}
	return c.parent.GetUTXO(commitment)
}

// IsUnspent implements View.
func (c *ViewCache) IsUnspent(utxo *db.UTXO) bool {
	return c.leafset.Test(utxo.LeafIndex)
}

func (c *ViewCache) leafSet() *mmr.LeafSet          { return c.leafset }
func (c *ViewCache) kernelBackend() mmr.Backend     { return c.kernelCache }
func (c *ViewCache) outputBackend() mmr.Backend     { return c.outputCache }
func (c *ViewCache) rangeProofBackend() mmr.Backend { return c.proofCache }

// Roots returns the cache's current (kernel, output, rangeproof, leafset)
// roots.
func (c *ViewCache) Roots() (kernel, output, rangeProof, leafset mw.Hash, err error) {
	if kernel, err = c.kernels.Root(); err != nil {
		return
	}
	if output, err = c.outputs.Root(); err != nil {
		return
	}
	if rangeProof, err = c.proofs.Root(); err != nil {
		return
	}
	leafset = c.leafset.Root()
	return
}

// ApplyBlock connects the block to the cache: spends each input, appends
// each output and kernel, and checks the resulting roots against the
// header. Mutation order is inputs → outputs → kernels → roots. On error
// the cache must be discarded.
func (c *ViewCache) ApplyBlock(b *block.Block) (*BlockUndo, error) {
	header := b.Header()
	if c.header != nil && header.Height != c.header.Height+1 {
		return nil, errors.Wrapf(mw.ErrConsensusViolation,
			"block height %d on tip %d", header.Height, c.header.Height)
	}

	// Resolve the spent outputs up front: their receiver keys feed the
	// owner-sum law, and a miss fails the block before any mutation.
	spent := make([]db.UTXO, 0, len(b.Inputs()))
	inputOwnerKeys := make([]mw.PublicKey, 0, len(b.Inputs()))
	for _, in := range b.Inputs() {
		utxo, err := c.GetUTXO(in.Commitment)
		if err != nil {
			if errors.Is(err, mw.ErrNotFound) {
				return nil, errors.Wrapf(mw.ErrUnknownOutput, "input %v", in.Commitment)
			}
			return nil, err
		}
		if !c.leafset.Test(utxo.LeafIndex) {
			return nil, errors.Wrapf(mw.ErrDoubleSpend, "input %v", in.Commitment)
		}
		spent = append(spent, *utxo)
		inputOwnerKeys = append(inputOwnerKeys, utxo.Output.ReceiverPubKey())
	}

	var prevKernelOffset, prevOwnerOffset mw.BlindingFactor
	if c.header != nil {
		prevKernelOffset = c.header.KernelOffset
		prevOwnerOffset = c.header.OwnerOffset
	}
	if err := consensus.ValidateBlockSum(b.Body(), header.KernelOffset, prevKernelOffset); err != nil {
		return nil, err
	}
	if err := consensus.ValidateOwnerSum(b.Body(), header.OwnerOffset, prevOwnerOffset, inputOwnerKeys); err != nil {
		return nil, err
	}

	undo := &BlockUndo{
		PrevHeader:          c.header,
		Spent:               spent,
		PrevOutputLeafCount: c.outputs.LeafCount(),
		PrevKernelLeafCount: c.kernels.LeafCount(),
	}

	for _, utxo := range spent {
		c.leafset.Unset(utxo.LeafIndex)
	}

	for _, out := range b.Outputs() {
		leafIdx, err := c.outputs.Add(ser.ToBytes(out))
		if err != nil {
			return nil, err
		}
		if _, err := c.proofs.Add(out.RangeProof); err != nil {
			return nil, err
		}
		c.leafset.Set(leafIdx)
		c.adds[out.Commitment] = &db.UTXO{
			LeafIndex: leafIdx,
			Height:    header.Height,
			Output:    out,
		}
		delete(c.deletes, out.Commitment)
		undo.NewUTXOs = append(undo.NewUTXOs, out.Commitment)
	}

	for _, k := range b.Kernels() {
		if _, err := c.kernels.Add(ser.ToBytes(k)); err != nil {
			return nil, err
		}
	}

	if err := c.checkHeader(header); err != nil {
		return nil, err
	}
	c.header = header

	logger.Debug("block applied", "height", header.Height,
		"inputs", len(b.Inputs()), "outputs", len(b.Outputs()), "kernels", len(b.Kernels()))
	return undo, nil
}

// checkHeader rejects the block if any computed root or size disagrees with
// the incoming header.
func (c *ViewCache) checkHeader(header *block.Header) error {
	kernelRoot, outputRoot, proofRoot, leafsetRoot, err := c.Roots()
	if err != nil {
		return err
	}
	switch {
	case kernelRoot != header.KernelRoot:
		return errors.Wrap(mw.ErrConsensusViolation, "kernel root mismatch")
	case outputRoot != header.OutputRoot:
		return errors.Wrap(mw.ErrConsensusViolation, "output root mismatch")
	case proofRoot != header.RangeProofRoot:
		return errors.Wrap(mw.ErrConsensusViolation, "rangeproof root mismatch")
	case leafsetRoot != header.LeafsetRoot:
		return errors.Wrap(mw.ErrConsensusViolation, "leafset root mismatch")
	case c.outputs.LeafCount() != header.OutputMMRSize:
		return errors.Wrap(mw.ErrConsensusViolation, "output mmr size mismatch")
	case c.kernels.LeafCount() != header.KernelMMRSize:
		return errors.Wrap(mw.ErrConsensusViolation, "kernel mmr size mismatch")
	}
	return nil
}

// UndoBlock disconnects the cache's tip block using its undo data, reversing
// every apply step in LIFO order.
func (c *ViewCache) UndoBlock(undo *BlockUndo) error {
	if err := c.kernels.Rewind(undo.PrevKernelLeafCount); err != nil {
		return err
	}
	if err := c.outputs.Rewind(undo.PrevOutputLeafCount); err != nil {
		return err
	}
	if err := c.proofs.Rewind(undo.PrevOutputLeafCount); err != nil {
		return err
	}
	c.leafset.Rewind(undo.PrevOutputLeafCount)

	for _, commitment := range undo.NewUTXOs {
		delete(c.adds, commitment)
		c.deletes[commitment] = struct{}{}
	}
	for i := range undo.Spent {
		utxo := undo.Spent[i]
		c.leafset.Set(utxo.LeafIndex)
	}
	c.header = undo.PrevHeader

	height := uint64(0)
	if undo.PrevHeader != nil {
		height = undo.PrevHeader.Height
	}
	logger.Debug("block undone", "tip", height)
	return nil
}

// Flush writes the cache's dirty state to the parent. Against a ViewDB the
// kv mutations are committed through batch as one atomic write; against a
// parent cache the dirty state merges in memory and batch may be nil.
// Either way the cache must not be used afterwards.
func (c *ViewCache) Flush(batch kv.Batch) error {
	switch parent := c.parent.(type) {
	case *ViewDB:
		return c.flushToDB(parent, batch)
	case *ViewCache:
		return c.flushToCache(parent)
	default:
		return errors.New("coins: unknown parent view")
	}
}

func (c *ViewCache) flushToDB(parent *ViewDB, batch kv.Batch) error {
	if err := c.kernelCache.FlushInto(parent.kernels); err != nil {
		parent.Discard()
		return err
	}
	if err := c.outputCache.FlushInto(parent.outputs); err != nil {
		parent.Discard()
		return err
	}
	if err := c.proofCache.FlushInto(parent.proofs); err != nil {
		parent.Discard()
		return err
	}
	if err := parent.kernelBE.Flush(batch); err != nil {
		parent.Discard()
		return err
	}
	if err := parent.outputBE.Flush(batch); err != nil {
		parent.Discard()
		return err
	}
	if err := parent.proofBE.Flush(batch); err != nil {
		parent.Discard()
		return err
	}

	for commitment := range c.deletes {
		if err := parent.utxos.Delete(batch, commitment); err != nil {
			return err
		}
	}
	for _, utxo := range c.adds {
		if err := parent.utxos.Put(batch, utxo); err != nil {
			return err
		}
	}
	if err := parent.headers.PutBest(batch, c.header); err != nil {
		return err
	}

	if err := batch.Commit(); err != nil {
		parent.Discard()
		return errors.Wrap(mw.ErrStorageFailure, err.Error())
	}

	parent.leafset.CopyFrom(c.leafset)
	if err := parent.leafset.Flush(); err != nil {
		// The kv state is already committed; the next successful flush
		// rewrites the whole bitmap.
		logger.Warn("leafset flush failed", "error", err)
	}
	parent.header = c.header
	return nil
}

func (c *ViewCache) flushToCache(parent *ViewCache) error {
	if err := c.kernelCache.FlushInto(parent.kernels); err != nil {
		return err
	}
	if err := c.outputCache.FlushInto(parent.outputs); err != nil {
		return err
	}
	if err := c.proofCache.FlushInto(parent.proofs); err != nil {
		return err
	}
	parent.leafset.CopyFrom(c.leafset)
	for commitment := range c.deletes {
		delete(parent.adds, commitment)
		parent.deletes[commitment] = struct{}{}
	}
	for commitment, utxo := range c.adds {
		parent.adds[commitment] = utxo
		delete(parent.deletes, commitment)
	}
	parent.header = c.header
	return nil
}
