// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mmr

import (
	"github.com/pkg/errors"

	"github.com/mwebchain/mweb/mw"
)

// Cache is a dirty overlay over a parent backend. Appends and rewinds stay in
// the cache until FlushInto replays them against the parent; discarding the
// cache leaves the parent untouched. Caches nest: a cache is itself a valid
// parent.
type Cache struct {
	parent Backend
	// base is the logical leaf count taken from the parent; a rewind below
	// the parent's frontier lowers it.
	base   uint64
	staged []Leaf
	nodes  map[NodeIndex]mw.Hash
}

var _ Backend = (*Cache)(nil)

// NewCache creates an overlay over parent.
func NewCache(parent Backend) *Cache {
	return &Cache{
		parent: parent,
		base:   parent.LeafCount(),
		nodes:  make(map[NodeIndex]mw.Hash),
	}
}

// LeafCount implements Backend.
func (c *Cache) LeafCount() uint64 { return c.base + uint64(len(c.staged)) }

// AppendLeaf implements Backend.
func (c *Cache) AppendLeaf(leaf Leaf) { c.staged = append(c.staged, leaf) }

// AppendNode implements Backend.
func (c *Cache) AppendNode(pos NodeIndex, hash mw.Hash) { c.nodes[pos] = hash }

// NodeHash implements Backend.
func (c *Cache) NodeHash(pos NodeIndex) (mw.Hash, error) {
	if hash, ok := c.nodes[pos]; ok {
		return hash, nil
	}
	return c.parent.NodeHash(pos)
}

// Leaf implements Backend.
func (c *Cache) Leaf(idx LeafIndex) (Leaf, error) {
	if uint64(idx) >= c.base {
		i := uint64(idx) - c.base
		if i >= uint64(len(c.staged)) {
			return Leaf{}, errors.Errorf("mmr: no leaf at %d", idx)
		}
		return c.staged[i], nil
	}
	return c.parent.Leaf(idx)
}

// Rewind implements Backend. Rewinding below the parent's frontier only
// lowers the cache's logical count; the parent is truncated at flush time.
func (c *Cache) Rewind(leafCount uint64) error {
	switch {
	case leafCount > c.LeafCount():
		return errors.Errorf("mmr: rewind to %d beyond %d leaves", leafCount, c.LeafCount())
	case leafCount >= c.base:
		c.staged = c.staged[:leafCount-c.base]
	default:
		c.base = leafCount
		c.staged = c.staged[:0]
	}
	limit := NodeIndex(NodeCount(leafCount))
	for pos := range c.nodes {
		if pos >= limit {
			delete(c.nodes, pos)
		}
	}
	return nil
}

// FlushInto replays the cache's rewind and appends against the parent.
// The cache must not be used afterwards.
func (c *Cache) FlushInto(parent *MMR) error {
	if parent.Backend() != c.parent {
		return errors.New("mmr: flush into foreign backend")
	}
	if c.base < parent.LeafCount() {
		if err := parent.Rewind(c.base); err != nil {
			return err
		}
	}
	for _, leaf := range c.staged {
		if _, err := parent.Add(leaf.Data); err != nil {
			return err
		}
	}
	return nil
}
