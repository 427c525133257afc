// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package db

import (
	"github.com/pkg/errors"

	"github.com/mwebchain/mweb/block"
	"github.com/mwebchain/mweb/kv"
	"github.com/mwebchain/mweb/mw"
	"github.com/mwebchain/mweb/ser"
)

var bestHeaderKey = []byte("best")

// HeaderDB stores headers by hash plus the best-header pointer.
type HeaderDB struct {
	reader kv.Getter
}

// NewHeaderDB creates a header table view over the store.
func NewHeaderDB(store kv.Getter) *HeaderDB {
	return &HeaderDB{reader: TableHeader.NewGetter(store)}
}

// Get loads the header with the given hash.
func (h *HeaderDB) Get(hash mw.Hash) (*block.Header, error) {
	data, err := h.reader.Get(hash[:])
	if err != nil {
		if h.reader.IsNotFound(err) {
			return nil, errors.Wrap(mw.ErrNotFound, "header")
		}
		return nil, errors.Wrap(mw.ErrStorageFailure, err.Error())
	}
	d := ser.NewDeserializer(data)
	header := block.DeserializeHeader(d)
	if err := d.Finish(); err != nil {
		return nil, err
	}
	return header, nil
}

// Best loads the best header, or nil if the chain is empty.
func (h *HeaderDB) Best() (*block.Header, error) {
	data, err := h.reader.Get(bestHeaderKey)
	if err != nil {
		if h.reader.IsNotFound(err) {
			return nil, nil
		}
		return nil, errors.Wrap(mw.ErrStorageFailure, err.Error())
	}
	var hash mw.Hash
	copy(hash[:], data)
	return h.Get(hash)
}

// Put stages the header into w, keyed by its hash.
func (h *HeaderDB) Put(w kv.Putter, header *block.Header) error {
	hash := header.Hash()
	return TableHeader.NewPutter(w).Put(hash[:], ser.ToBytes(header))
}

// PutBest stages the best-header pointer into w. A nil header clears it.
func (h *HeaderDB) PutBest(w kv.Putter, header *block.Header) error {
	putter := TableHeader.NewPutter(w)
	if header == nil {
		return putter.Delete(bestHeaderKey)
	}
	if err := h.Put(w, header); err != nil {
		return err
	}
	hash := header.Hash()
	return putter.Put(bestHeaderKey, hash[:])
}
