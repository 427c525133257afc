// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mmr

import (
	"fmt"
	"math/bits"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/mwebchain/mweb/mw"
)

// LeafSet is the bitmap of currently unspent leaves, indexed by LeafIndex.
// Its set-bit count equals the UTXO cardinality, and the BLAKE2b digest of
// the raw bitmap is the committed leafset root. Each cache layer works on a
// copy-on-write clone.
type LeafSet struct {
	path string
	bits []byte
}

// OpenLeafSet loads (or creates) the bitmap file leafset.{index}.bin in dir.
func OpenLeafSet(dir string, fileIndex uint32) (*LeafSet, error) {
	path := filepath.Join(dir, fmt.Sprintf("leafset.%d.bin", fileIndex))
	bits, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, errors.Wrap(err, "open leafset")
		}
		bits = nil
	}
	return &LeafSet{path: path, bits: bits}, nil
}

// NewLeafSet creates an in-memory leafset with no backing file.
func NewLeafSet() *LeafSet {
	return &LeafSet{}
}

// Set marks the leaf as unspent, growing the bitmap as needed.
func (ls *LeafSet) Set(idx LeafIndex) {
	byteIdx := int(idx / 8)
	for len(ls.bits) <= byteIdx {
		ls.bits = append(ls.bits, 0)
	}
	ls.bits[byteIdx] |= 1 << (7 - idx%8)
}

// Unset clears the leaf's bit.
func (ls *LeafSet) Unset(idx LeafIndex) {
	byteIdx := int(idx / 8)
	if byteIdx < len(ls.bits) {
		ls.bits[byteIdx] &^= 1 << (7 - idx%8)
	}
}

// Test reports whether the leaf is unspent.
func (ls *LeafSet) Test(idx LeafIndex) bool {
	byteIdx := int(idx / 8)
	if byteIdx >= len(ls.bits) {
		return false
	}
	return ls.bits[byteIdx]&(1<<(7-idx%8)) != 0
}

// Count returns the number of set bits, i.e. the UTXO cardinality.
func (ls *LeafSet) Count() uint64 {
	var n uint64
	for _, b := range ls.bits {
		n += uint64(bits.OnesCount8(b))
	}
	return n
}

// Root returns the BLAKE2b digest of the raw bitmap.
func (ls *LeafSet) Root() mw.Hash {
	return mw.HashSum(ls.bits)
}

// Rewind truncates the bitmap to leafCount leaves, clearing every bit at or
// beyond leafCount.
func (ls *LeafSet) Rewind(leafCount uint64) {
	byteLen := int((leafCount + 7) / 8)
	if byteLen < len(ls.bits) {
		ls.bits = ls.bits[:byteLen]
	}
	if rem := leafCount % 8; rem != 0 && byteLen <= len(ls.bits) && byteLen > 0 {
		ls.bits[byteLen-1] &= ^byte(0) << (8 - rem)
	}
}

// Clone returns a copy-on-write snapshot with no backing file.
func (ls *LeafSet) Clone() *LeafSet {
	bits := make([]byte, len(ls.bits))
	copy(bits, ls.bits)
	return &LeafSet{bits: bits}
}

// CopyFrom replaces this leafset's bits with other's.
func (ls *LeafSet) CopyFrom(other *LeafSet) {
	ls.bits = make([]byte, len(other.bits))
	copy(ls.bits, other.bits)
}

// Flush writes the bitmap to its backing file.
func (ls *LeafSet) Flush() error {
	if ls.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(ls.path), 0o755); err != nil {
		return errors.Wrap(err, "flush leafset")
	}
	if err := os.WriteFile(ls.path, ls.bits, 0o644); err != nil {
		return errors.Wrap(err, "flush leafset")
	}
	return nil
}
