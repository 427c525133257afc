// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package mmr implements the append-only Merkle mountain range structures
// and the leafset bitmap that together form the committed state root.
package mmr

import "math/bits"

// LeafIndex is the dense, 0-based index of a leaf.
type LeafIndex uint64

// NodeIndex is the sparse post-order position of a node in the MMR array.
type NodeIndex uint64

// LeafToNode converts a leaf index to its node position:
// 2L − popcount(L).
func LeafToNode(l LeafIndex) NodeIndex {
	return NodeIndex(2*uint64(l) - uint64(bits.OnesCount64(uint64(l))))
}

// NodeCount returns the total node count of an MMR holding leafCount leaves.
func NodeCount(leafCount uint64) uint64 {
	if leafCount == 0 {
		return 0
	}
	return 2*leafCount - uint64(bits.OnesCount64(leafCount))
}

// PeakIndexes returns the node positions of the peaks, highest tree first.
// The peaks correspond to the set bits of leafCount, high to low.
func PeakIndexes(leafCount uint64) []NodeIndex {
	var peaks []NodeIndex
	var nodesBefore uint64
	for height := 63; height >= 0; height-- {
		if leafCount&(1<<uint(height)) == 0 {
			continue
		}
		subtreeNodes := uint64(2)<<uint(height) - 1
		peaks = append(peaks, NodeIndex(nodesBefore+subtreeNodes-1))
		nodesBefore += subtreeNodes
	}
	return peaks
}
