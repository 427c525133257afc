// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mmr

import (
	"encoding/binary"

	"github.com/mwebchain/mweb/mw"
)

// Leaf is a leaf of the MMR: its index, raw data, and the hash binding both.
type Leaf struct {
	Index LeafIndex
	Data  []byte

	hash mw.Hash
}

// NewLeaf creates a leaf, hashing H(leaf_index_u64 ‖ data).
func NewLeaf(index LeafIndex, data []byte) Leaf {
	var idx [8]byte
	binary.BigEndian.PutUint64(idx[:], uint64(index))
	return Leaf{
		Index: index,
		Data:  data,
		hash:  mw.HashSum(idx[:], data),
	}
}

// Hash returns the leaf hash.
func (l Leaf) Hash() mw.Hash { return l.hash }

// NodeIndex returns the leaf's node position.
func (l Leaf) NodeIndex() NodeIndex { return LeafToNode(l.Index) }
