// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

// Table is a logical bucket identified by a one-byte key prefix.
type Table byte

// NewGetter creates a table-scoped getter from the source getter.
func (t Table) NewGetter(src Getter) Getter {
	return &struct {
		GetFunc
		HasFunc
		IsNotFoundFunc
	}{
		func(key []byte) ([]byte, error) {
			return src.Get(t.key(key))
		},
		func(key []byte) (bool, error) {
			return src.Has(t.key(key))
		},
		src.IsNotFound,
	}
}

// NewPutter creates a table-scoped putter from the source putter.
func (t Table) NewPutter(src Putter) Putter {
	return &struct {
		PutFunc
		DeleteFunc
	}{
		func(key, val []byte) error {
			return src.Put(t.key(key), val)
		},
		func(key []byte) error {
			return src.Delete(t.key(key))
		},
	}
}

func (t Table) key(key []byte) []byte {
	k := make([]byte, 0, 1+len(key))
	return append(append(k, byte(t)), key...)
}
