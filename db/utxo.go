// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package db

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/mwebchain/mweb/kv"
	"github.com/mwebchain/mweb/mmr"
	"github.com/mwebchain/mweb/mw"
	"github.com/mwebchain/mweb/ser"
	"github.com/mwebchain/mweb/tx"
)

// UTXO is an unspent output together with its place in the output MMR and
// the height that created it.
type UTXO struct {
	LeafIndex mmr.LeafIndex
	Height    uint64
	Output    tx.Output
}

// utxoRecord is the storage form: consensus bytes embedded opaquely.
type utxoRecord struct {
	LeafIndex uint64
	Height    uint64
	Output    []byte
}

// UTXODB is the commitment → UTXO index, table 'U'.
type UTXODB struct {
	reader kv.Getter
}

// NewUTXODB creates a UTXO table view over the store.
func NewUTXODB(store kv.Getter) *UTXODB {
	return &UTXODB{reader: TableUTXO.NewGetter(store)}
}

// Get loads the UTXO whose output has the given commitment.
// Returns mw.ErrNotFound if absent.
func (u *UTXODB) Get(commitment mw.Commitment) (*UTXO, error) {
	data, err := u.reader.Get(commitment[:])
	if err != nil {
		if u.reader.IsNotFound(err) {
			return nil, errors.Wrap(mw.ErrNotFound, "utxo")
		}
		return nil, errors.Wrap(mw.ErrStorageFailure, err.Error())
	}
	var rec utxoRecord
	if err := rlp.DecodeBytes(data, &rec); err != nil {
		return nil, errors.Wrap(ser.ErrInvalidSerialization, err.Error())
	}
	d := ser.NewDeserializer(rec.Output)
	output := tx.DeserializeOutput(d)
	if err := d.Finish(); err != nil {
		return nil, err
	}
	return &UTXO{
		LeafIndex: mmr.LeafIndex(rec.LeafIndex),
		Height:    rec.Height,
		Output:    output,
	}, nil
}

// Has reports whether the commitment is in the UTXO index.
func (u *UTXODB) Has(commitment mw.Commitment) (bool, error) {
	return u.reader.Has(commitment[:])
}

// Put stages the UTXO into w.
func (u *UTXODB) Put(w kv.Putter, utxo *UTXO) error {
	data, err := rlp.EncodeToBytes(&utxoRecord{
		LeafIndex: uint64(utxo.LeafIndex),
		Height:    utxo.Height,
		Output:    ser.ToBytes(utxo.Output),
	})
	if err != nil {
		return err
	}
	return TableUTXO.NewPutter(w).Put(utxo.Output.Commitment[:], data)
}

// Delete stages removal of the commitment from w.
func (u *UTXODB) Delete(w kv.Putter, commitment mw.Commitment) error {
	return TableUTXO.NewPutter(w).Delete(commitment[:])
}
