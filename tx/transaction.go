// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"github.com/mwebchain/mweb/mw"
	"github.com/mwebchain/mweb/ser"
)

// Transaction is an immutable confidential transaction. Construct with
// NewTransaction, which sorts the body.
type Transaction struct {
	body TransactionBody

	cache struct {
		hash *mw.Hash
	}
}

// TransactionBody describes the parts of a transaction.
type TransactionBody struct {
	KernelOffset mw.BlindingFactor
	OwnerOffset  mw.BlindingFactor
	TxBody       TxBody
}

// NewTransaction creates a transaction, sorting the body lists.
func NewTransaction(kernelOffset, ownerOffset mw.BlindingFactor, body TxBody) *Transaction {
	body.Sort()
	return &Transaction{
		body: TransactionBody{
			KernelOffset: kernelOffset,
			OwnerOffset:  ownerOffset,
			TxBody:       body,
		},
	}
}

// KernelOffset returns the kernel offset.
func (t *Transaction) KernelOffset() mw.BlindingFactor { return t.body.KernelOffset }

// OwnerOffset returns the owner offset.
func (t *Transaction) OwnerOffset() mw.BlindingFactor { return t.body.OwnerOffset }

// Body returns the element lists.
func (t *Transaction) Body() TxBody { return t.body.TxBody }

// Fee returns the total kernel fee.
func (t *Transaction) Fee() uint64 { return t.body.TxBody.TotalFee() }

// PegInAmount returns the total minted value.
func (t *Transaction) PegInAmount() uint64 { return t.body.TxBody.PegInAmount() }

// PegOutCoins returns the host-chain destinations.
func (t *Transaction) PegOutCoins() []PegOutCoin { return t.body.TxBody.PegOutCoins() }

// Serialize implements ser.Serializable.
func (t *Transaction) Serialize(s *ser.Serializer) {
	s.Write(t.body.KernelOffset)
	s.Write(t.body.OwnerOffset)
	s.Write(t.body.TxBody)
}

// DeserializeTransaction reads a Transaction.
func DeserializeTransaction(d *ser.Deserializer) *Transaction {
	kernelOffset := mw.DeserializeBlindingFactor(d)
	ownerOffset := mw.DeserializeBlindingFactor(d)
	body := DeserializeTxBody(d)
	if d.Err() != nil {
		return nil
	}
	return NewTransaction(kernelOffset, ownerOffset, body)
}

// Hash returns the identifying digest of the transaction.
func (t *Transaction) Hash() mw.Hash {
	if cached := t.cache.hash; cached != nil {
		return *cached
	}
	h := mw.Hashed(t)
	t.cache.hash = &h
	return h
}
