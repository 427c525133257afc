// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package wallet

import (
	"sync"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/mwebchain/mweb/kv"
	"github.com/mwebchain/mweb/mw"
)

// Wallet-store tables, disjoint from the chain tables.
const (
	tableCoin = kv.Table('C')
	tableSeed = kv.Table('S')
)

var seedKey = []byte("seed")

// coinRecord is the storage form of a Coin.
type coinRecord struct {
	Commitment   []byte
	Amount       uint64
	Blind        []byte
	SpendKey     []byte
	AddressIndex uint32
	Features     uint8
	BlockHeight  uint64
	SpentBy      []byte
}

// KVStore is the kv-backed wallet store.
type KVStore struct {
	store kv.Store
}

var _ Store = (*KVStore)(nil)

// NewKVStore creates a wallet store over the kv store, writing the master
// seed on first open.
func NewKVStore(store kv.Store, seed []byte) (*KVStore, error) {
	getter := tableSeed.NewGetter(store)
	existing, err := getter.Get(seedKey)
	if err != nil {
		if !getter.IsNotFound(err) {
			return nil, errors.Wrap(mw.ErrStorageFailure, err.Error())
		}
		if err := tableSeed.NewPutter(store).Put(seedKey, seed); err != nil {
			return nil, errors.Wrap(mw.ErrStorageFailure, err.Error())
		}
		return &KVStore{store: store}, nil
	}
	if len(seed) > 0 && string(existing) != string(seed) {
		return nil, errors.New("wallet: seed mismatch")
	}
	return &KVStore{store: store}, nil
}

// GetMasterSeed implements Store.
func (s *KVStore) GetMasterSeed() ([]byte, error) {
	seed, err := tableSeed.NewGetter(s.store).Get(seedKey)
	if err != nil {
		return nil, errors.Wrap(mw.ErrStorageFailure, err.Error())
	}
	return seed, nil
}

// AddCoins implements Store. Existing records are overwritten; the
// commitment index is kept alongside since kv has no range scans.
func (s *KVStore) AddCoins(coins []Coin) error {
	commitments, err := s.commitments()
	if err != nil {
		return err
	}
	known := make(map[mw.Commitment]struct{}, len(commitments))
	for _, c := range commitments {
		known[c] = struct{}{}
	}

	batch := s.store.NewBatch()
	putter := tableCoin.NewPutter(batch)
	for _, coin := range coins {
		data, err := rlp.EncodeToBytes(&coinRecord{
			Commitment:   coin.Commitment[:],
			Amount:       coin.Amount,
			Blind:        coin.Blind[:],
			SpendKey:     coin.SpendKey[:],
			AddressIndex: coin.AddressIndex,
			Features:     coin.Features,
			BlockHeight:  coin.BlockHeight,
			SpentBy:      coin.SpentBy[:],
		})
		if err != nil {
			return err
		}
		if err := putter.Put(coin.Commitment[:], data); err != nil {
			return err
		}
		if _, ok := known[coin.Commitment]; !ok {
			known[coin.Commitment] = struct{}{}
			commitments = append(commitments, coin.Commitment)
		}
	}
	if err := s.putCommitments(putter, commitments); err != nil {
		return err
	}
	return batch.Commit()
}

func (s *KVStore) commitments() ([]mw.Commitment, error) {
	getter := tableCoin.NewGetter(s.store)
	data, err := getter.Get(coinIndexKey)
	if err != nil {
		if getter.IsNotFound(err) {
			return nil, nil
		}
		return nil, errors.Wrap(mw.ErrStorageFailure, err.Error())
	}
	var raw [][]byte
	if err := rlp.DecodeBytes(data, &raw); err != nil {
		return nil, err
	}
	commitments := make([]mw.Commitment, len(raw))
	for i, c := range raw {
		copy(commitments[i][:], c)
	}
	return commitments, nil
}

func (s *KVStore) putCommitments(putter kv.Putter, commitments []mw.Commitment) error {
	raw := make([][]byte, len(commitments))
	for i := range commitments {
		raw[i] = commitments[i][:]
	}
	data, err := rlp.EncodeToBytes(raw)
	if err != nil {
		return err
	}
	return putter.Put(coinIndexKey, data)
}

// GetCoin implements Store. A missing coin is (nil, nil).
func (s *KVStore) GetCoin(commitment mw.Commitment) (*Coin, error) {
	getter := tableCoin.NewGetter(s.store)
	data, err := getter.Get(commitment[:])
	if err != nil {
		if getter.IsNotFound(err) {
			return nil, nil
		}
		return nil, errors.Wrap(mw.ErrStorageFailure, err.Error())
	}
	return decodeCoin(data)
}

func decodeCoin(data []byte) (*Coin, error) {
	var rec coinRecord
	if err := rlp.DecodeBytes(data, &rec); err != nil {
		return nil, err
	}
	coin := &Coin{
		Amount:       rec.Amount,
		AddressIndex: rec.AddressIndex,
		Features:     rec.Features,
		BlockHeight:  rec.BlockHeight,
	}
	copy(coin.Commitment[:], rec.Commitment)
	copy(coin.Blind[:], rec.Blind)
	copy(coin.SpendKey[:], rec.SpendKey)
	copy(coin.SpentBy[:], rec.SpentBy)
	return coin, nil
}

// ListCoins implements Store.
func (s *KVStore) ListCoins() ([]Coin, error) {
	commitments, err := s.commitments()
	if err != nil {
		return nil, err
	}
	coins := make([]Coin, 0, len(commitments))
	for _, commitment := range commitments {
		coin, err := s.GetCoin(commitment)
		if err != nil {
			return nil, err
		}
		if coin != nil {
			coins = append(coins, *coin)
		}
	}
	return coins, nil
}

// MarkSpent implements Store.
func (s *KVStore) MarkSpent(commitment mw.Commitment, spentBy mw.Hash) error {
	coin, err := s.GetCoin(commitment)
	if err != nil {
		return err
	}
	if coin == nil {
		return errors.Wrap(mw.ErrNotFound, "coin")
	}
	coin.SpentBy = spentBy
	return s.AddCoins([]Coin{*coin})
}

// RewindTo implements Store.
func (s *KVStore) RewindTo(height uint64) error {
	commitments, err := s.commitments()
	if err != nil {
		return err
	}
	batch := s.store.NewBatch()
	putter := tableCoin.NewPutter(batch)
	kept := commitments[:0]
	for _, commitment := range commitments {
		coin, err := s.GetCoin(commitment)
		if err != nil {
			return err
		}
		if coin == nil {
			continue
		}
		if coin.BlockHeight > height {
			if err := putter.Delete(commitment[:]); err != nil {
				return err
			}
			continue
		}
		kept = append(kept, commitment)
	}
	if err := s.putCommitments(putter, kept); err != nil {
		return err
	}
	return batch.Commit()
}

var coinIndexKey = []byte("index")

// MemStore is the in-memory wallet store used in tests and by hosts that
// manage their own persistence.
type MemStore struct {
	mu    sync.Mutex
	seed  []byte
	coins map[mw.Commitment]Coin
	order []mw.Commitment
}

var _ Store = (*MemStore)(nil)

// NewMemStore creates an in-memory store holding the given seed.
func NewMemStore(seed []byte) *MemStore {
	return &MemStore{seed: seed, coins: make(map[mw.Commitment]Coin)}
}

// GetMasterSeed implements Store.
func (s *MemStore) GetMasterSeed() ([]byte, error) { return s.seed, nil }

// AddCoins implements Store.
func (s *MemStore) AddCoins(coins []Coin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, coin := range coins {
		if _, ok := s.coins[coin.Commitment]; !ok {
			s.order = append(s.order, coin.Commitment)
		}
		s.coins[coin.Commitment] = coin
	}
	return nil
}

// GetCoin implements Store.
func (s *MemStore) GetCoin(commitment mw.Commitment) (*Coin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if coin, ok := s.coins[commitment]; ok {
		return &coin, nil
	}
	return nil, nil
}

// ListCoins implements Store.
func (s *MemStore) ListCoins() ([]Coin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	coins := make([]Coin, 0, len(s.order))
	for _, commitment := range s.order {
		coins = append(coins, s.coins[commitment])
	}
	return coins, nil
}

// MarkSpent implements Store.
func (s *MemStore) MarkSpent(commitment mw.Commitment, spentBy mw.Hash) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	coin, ok := s.coins[commitment]
	if !ok {
		return errors.Wrap(mw.ErrNotFound, "coin")
	}
	coin.SpentBy = spentBy
	s.coins[commitment] = coin
	return nil
}

// RewindTo implements Store.
func (s *MemStore) RewindTo(height uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order := s.order[:0]
	for _, commitment := range s.order {
		coin := s.coins[commitment]
		if coin.BlockHeight > height {
			delete(s.coins, commitment)
			continue
		}
		order = append(order, commitment)
	}
	s.order = order
	return nil
}
