// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package db

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/mwebchain/mweb/kv"
	"github.com/mwebchain/mweb/mmr"
	"github.com/mwebchain/mweb/mw"
)

// MMRBackend is the persistent mmr.Backend: leaf data lives in an
// append-only file ({prefix}.{index}.dat), node hashes in table 'M' keyed by
// (prefix, node index), and leaf data by hash in table 'L'. Appends and
// rewinds stage in memory until Flush writes the file and batches the kv
// mutations.
type MMRBackend struct {
	prefix byte
	path   string
	file   *os.File

	// ends[i] is the file offset just past leaf i.
	ends []int64
	// committed is the on-disk leaf count; base is the effective count after
	// a staged rewind.
	committed uint64
	base      uint64
	staged    []mmr.Leaf
	nodes     map[mmr.NodeIndex]mw.Hash

	store kv.Getter
}

var _ mmr.Backend = (*MMRBackend)(nil)

// OpenMMRBackend opens {prefix}.{fileIndex}.dat in dir, creating it if
// missing, and indexes the existing leaves.
func OpenMMRBackend(prefix byte, dir string, fileIndex uint32, store kv.Store) (*MMRBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(mw.ErrStorageFailure, err.Error())
	}
	path := filepath.Join(dir, fmt.Sprintf("%c.%d.dat", prefix, fileIndex))
	file, err := os.OpenFile(path, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return nil, errors.Wrap(mw.ErrStorageFailure, err.Error())
	}

	be := &MMRBackend{
		prefix: prefix,
		path:   path,
		file:   file,
		nodes:  make(map[mmr.NodeIndex]mw.Hash),
		store:  store,
	}
	if err := be.index(); err != nil {
		file.Close()
		return nil, err
	}
	be.committed = uint64(len(be.ends))
	be.base = be.committed
	return be, nil
}

// index scans the leaf file and records the end offset of every leaf.
func (be *MMRBackend) index() error {
	var off int64
	var lenBuf [4]byte
	for {
		if _, err := be.file.ReadAt(lenBuf[:], off); err != nil {
			if err == io.EOF {
				return nil
			}
			return errors.Wrap(mw.ErrStorageFailure, err.Error())
		}
		off += 4 + int64(binary.BigEndian.Uint32(lenBuf[:]))
		be.ends = append(be.ends, off)
	}
}

// LeafCount implements mmr.Backend.
func (be *MMRBackend) LeafCount() uint64 { return be.base + uint64(len(be.staged)) }

// AppendLeaf implements mmr.Backend.
func (be *MMRBackend) AppendLeaf(leaf mmr.Leaf) { be.staged = append(be.staged, leaf) }

// AppendNode implements mmr.Backend.
func (be *MMRBackend) AppendNode(pos mmr.NodeIndex, hash mw.Hash) { be.nodes[pos] = hash }

// NodeHash implements mmr.Backend.
func (be *MMRBackend) NodeHash(pos mmr.NodeIndex) (mw.Hash, error) {
	if hash, ok := be.nodes[pos]; ok {
		return hash, nil
	}
	data, err := TableNode.NewGetter(be.store).Get(be.nodeKey(pos))
	if err != nil {
		return mw.Hash{}, errors.Wrapf(mw.ErrStorageFailure, "node %d: %s", pos, err.Error())
	}
	var hash mw.Hash
	copy(hash[:], data)
	return hash, nil
}

// Leaf implements mmr.Backend.
func (be *MMRBackend) Leaf(idx mmr.LeafIndex) (mmr.Leaf, error) {
	if uint64(idx) >= be.base {
		i := uint64(idx) - be.base
		if i >= uint64(len(be.staged)) {
			return mmr.Leaf{}, errors.Errorf("mmr: no leaf at %d", idx)
		}
		return be.staged[i], nil
	}
	data, err := be.readLeaf(uint64(idx))
	if err != nil {
		return mmr.Leaf{}, err
	}
	return mmr.NewLeaf(idx, data), nil
}

func (be *MMRBackend) readLeaf(i uint64) ([]byte, error) {
	var start int64
	if i > 0 {
		start = be.ends[i-1]
	}
	data := make([]byte, be.ends[i]-start-4)
	if _, err := be.file.ReadAt(data, start+4); err != nil {
		return nil, errors.Wrap(mw.ErrStorageFailure, err.Error())
	}
	return data, nil
}

// Rewind implements mmr.Backend. A rewind below the committed frontier is
// staged; the file is truncated at flush time.
func (be *MMRBackend) Rewind(leafCount uint64) error {
	switch {
	case leafCount > be.LeafCount():
		return errors.Errorf("mmr: rewind to %d beyond %d leaves", leafCount, be.LeafCount())
	case leafCount >= be.base:
		be.staged = be.staged[:leafCount-be.base]
	default:
		be.base = leafCount
		be.staged = be.staged[:0]
	}
	limit := mmr.NodeIndex(mmr.NodeCount(leafCount))
	for pos := range be.nodes {
		if pos >= limit {
			delete(be.nodes, pos)
		}
	}
	return nil
}

// Flush writes staged leaves to the file and stages every kv mutation into
// batch. The file grows before the batch commits; an interrupted flush
// leaves unreferenced tail bytes that the next truncating flush reclaims.
func (be *MMRBackend) Flush(batch kv.Batch) error {
	nodePutter := TableNode.NewPutter(batch)
	leafPutter := TableLeaf.NewPutter(batch)

	// Staged rewind: drop leaf-by-hash entries and stale nodes, then
	// truncate the file.
	if be.base < be.committed {
		for i := be.base; i < be.committed; i++ {
			data, err := be.readLeaf(i)
			if err != nil {
				return err
			}
			leafHash := mmr.NewLeaf(mmr.LeafIndex(i), data).Hash()
			if err := leafPutter.Delete(leafHash[:]); err != nil {
				return err
			}
		}
		for pos := mmr.NodeCount(be.base); pos < mmr.NodeCount(be.committed); pos++ {
			if err := nodePutter.Delete(be.nodeKey(mmr.NodeIndex(pos))); err != nil {
				return err
			}
		}
		var off int64
		if be.base > 0 {
			off = be.ends[be.base-1]
		}
		if err := be.file.Truncate(off); err != nil {
			return errors.Wrap(mw.ErrStorageFailure, err.Error())
		}
		be.ends = be.ends[:be.base]
		be.committed = be.base
	}

	// Append staged leaves.
	for _, leaf := range be.staged {
		var lenBuf [4]byte
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(leaf.Data)))
		if _, err := be.file.Write(lenBuf[:]); err != nil {
			return errors.Wrap(mw.ErrStorageFailure, err.Error())
		}
		if _, err := be.file.Write(leaf.Data); err != nil {
			return errors.Wrap(mw.ErrStorageFailure, err.Error())
		}
		var end int64
		if n := len(be.ends); n > 0 {
			end = be.ends[n-1]
		}
		be.ends = append(be.ends, end+4+int64(len(leaf.Data)))

		leafHash := leaf.Hash()
		if err := leafPutter.Put(leafHash[:], leaf.Data); err != nil {
			return err
		}
	}
	be.committed += uint64(len(be.staged))
	be.base = be.committed
	be.staged = be.staged[:0]

	for pos, hash := range be.nodes {
		if err := nodePutter.Put(be.nodeKey(pos), hash[:]); err != nil {
			return err
		}
	}
	be.nodes = make(map[mmr.NodeIndex]mw.Hash)
	return nil
}

// Discard drops every staged mutation, returning to the committed state.
func (be *MMRBackend) Discard() {
	be.base = be.committed
	be.staged = be.staged[:0]
	be.nodes = make(map[mmr.NodeIndex]mw.Hash)
}

// Close closes the leaf file.
func (be *MMRBackend) Close() error {
	return be.file.Close()
}

func (be *MMRBackend) nodeKey(pos mmr.NodeIndex) []byte {
	key := make([]byte, 9)
	key[0] = be.prefix
	binary.BigEndian.PutUint64(key[1:], uint64(pos))
	return key
}
