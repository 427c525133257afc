// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package db

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/mwebchain/mweb/kv"
	"github.com/mwebchain/mweb/mw"
)

var latestInfoKey = []byte("latest")

// MMRInfo records which on-disk file generation the MMRs live in.
type MMRInfo struct {
	FileIndex uint32
}

// MMRInfoDB stores the MMR info record, table 'I'.
type MMRInfoDB struct {
	reader kv.Getter
}

// NewMMRInfoDB creates an info table view over the store.
func NewMMRInfoDB(store kv.Getter) *MMRInfoDB {
	return &MMRInfoDB{reader: TableInfo.NewGetter(store)}
}

// Latest loads the current info record; a fresh store yields the zero value.
func (i *MMRInfoDB) Latest() (MMRInfo, error) {
	data, err := i.reader.Get(latestInfoKey)
	if err != nil {
		if i.reader.IsNotFound(err) {
			return MMRInfo{}, nil
		}
		return MMRInfo{}, errors.Wrap(mw.ErrStorageFailure, err.Error())
	}
	var info MMRInfo
	if err := rlp.DecodeBytes(data, &info); err != nil {
		return MMRInfo{}, err
	}
	return info, nil
}

// Put stages the info record into w.
func (i *MMRInfoDB) Put(w kv.Putter, info MMRInfo) error {
	data, err := rlp.EncodeToBytes(&info)
	if err != nil {
		return err
	}
	return TableInfo.NewPutter(w).Put(latestInfoKey, data)
}
