// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mmr

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/mwebchain/mweb/mw"
)

// Backend stores the nodes and leaves of one MMR. Implementations stage
// writes in memory; persistence is the owner's concern.
type Backend interface {
	LeafCount() uint64
	AppendLeaf(leaf Leaf)
	AppendNode(pos NodeIndex, hash mw.Hash)
	NodeHash(pos NodeIndex) (mw.Hash, error)
	Leaf(idx LeafIndex) (Leaf, error)
	Rewind(leafCount uint64) error
}

// MMR is an append-only Merkle mountain range: leaves join into left-leaning
// peaks, bagged into a single root.
type MMR struct {
	be Backend
}

// New creates an MMR over the given backend.
func New(be Backend) *MMR {
	return &MMR{be: be}
}

// Backend returns the underlying backend.
func (m *MMR) Backend() Backend { return m.be }

// LeafCount returns the number of leaves.
func (m *MMR) LeafCount() uint64 { return m.be.LeafCount() }

// Add appends a leaf and hashes the new interior nodes up to the rightmost
// peak. It returns the new leaf's index.
func (m *MMR) Add(data []byte) (LeafIndex, error) {
	idx := LeafIndex(m.be.LeafCount())
	leaf := NewLeaf(idx, data)
	m.be.AppendLeaf(leaf)

	pos := leaf.NodeIndex()
	hash := leaf.Hash()
	m.be.AppendNode(pos, hash)

	// A leaf index with k trailing one bits closes k perfect subtrees.
	for i, height := uint64(idx), uint8(0); i&1 == 1; i, height = i>>1, height+1 {
		siblingNodes := NodeIndex(2)<<uint(height) - 1
		leftHash, err := m.be.NodeHash(pos - siblingNodes)
		if err != nil {
			return 0, err
		}
		pos++
		hash = parentHash(height+1, leftHash, hash)
		m.be.AppendNode(pos, hash)
	}
	return idx, nil
}

// Root computes BLAKE2b(node_count_u64 ‖ peak hashes, high to low).
func (m *MMR) Root() (mw.Hash, error) {
	leafCount := m.be.LeafCount()
	var size [8]byte
	binary.BigEndian.PutUint64(size[:], NodeCount(leafCount))

	hasher := mw.NewHasher()
	hasher.Write(size[:])
	for _, pos := range PeakIndexes(leafCount) {
		hash, err := m.be.NodeHash(pos)
		if err != nil {
			return mw.Hash{}, err
		}
		hasher.Write(hash[:])
	}
	var root mw.Hash
	hasher.Sum(root[:0])
	return root, nil
}

// Rewind truncates the MMR back to leafCount leaves.
func (m *MMR) Rewind(leafCount uint64) error {
	if leafCount > m.be.LeafCount() {
		return errors.Errorf("mmr: rewind to %d beyond %d leaves", leafCount, m.be.LeafCount())
	}
	return m.be.Rewind(leafCount)
}

// LeafData returns the raw data of the leaf at idx.
func (m *MMR) LeafData(idx LeafIndex) ([]byte, error) {
	leaf, err := m.be.Leaf(idx)
	if err != nil {
		return nil, err
	}
	return leaf.Data, nil
}

func parentHash(height uint8, left, right mw.Hash) mw.Hash {
	return mw.HashSum([]byte{height}, left[:], right[:])
}

// MemBackend is a fully in-memory backend.
type MemBackend struct {
	leaves []Leaf
	nodes  map[NodeIndex]mw.Hash
}

var _ Backend = (*MemBackend)(nil)

// NewMemBackend creates an empty in-memory backend.
func NewMemBackend() *MemBackend {
	return &MemBackend{nodes: make(map[NodeIndex]mw.Hash)}
}

// LeafCount implements Backend.
func (b *MemBackend) LeafCount() uint64 { return uint64(len(b.leaves)) }

// AppendLeaf implements Backend.
func (b *MemBackend) AppendLeaf(leaf Leaf) { b.leaves = append(b.leaves, leaf) }

// AppendNode implements Backend.
func (b *MemBackend) AppendNode(pos NodeIndex, hash mw.Hash) { b.nodes[pos] = hash }

// NodeHash implements Backend.
func (b *MemBackend) NodeHash(pos NodeIndex) (mw.Hash, error) {
	hash, ok := b.nodes[pos]
	if !ok {
		return mw.Hash{}, errors.Errorf("mmr: no node at %d", pos)
	}
	return hash, nil
}

// Leaf implements Backend.
func (b *MemBackend) Leaf(idx LeafIndex) (Leaf, error) {
	if uint64(idx) >= uint64(len(b.leaves)) {
		return Leaf{}, errors.Errorf("mmr: no leaf at %d", idx)
	}
	return b.leaves[idx], nil
}

// Rewind implements Backend.
func (b *MemBackend) Rewind(leafCount uint64) error {
	b.leaves = b.leaves[:leafCount]
	limit := NodeIndex(NodeCount(leafCount))
	for pos := range b.nodes {
		if pos >= limit {
			delete(b.nodes, pos)
		}
	}
	return nil
}
