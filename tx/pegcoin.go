// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"github.com/mwebchain/mweb/mw"
	"github.com/mwebchain/mweb/ser"
)

// PegInCoin is value crossing from the host chain into the extension block,
// identified by the kernel that mints it.
type PegInCoin struct {
	Amount   uint64
	KernelID mw.Hash
}

// Serialize implements ser.Serializable.
func (p PegInCoin) Serialize(s *ser.Serializer) {
	s.WriteU64(p.Amount)
	s.Write(p.KernelID)
}

// DeserializePegInCoin reads a PegInCoin.
func DeserializePegInCoin(d *ser.Deserializer) (p PegInCoin) {
	p.Amount = d.ReadU64()
	p.KernelID = mw.DeserializeHash(d)
	return
}

// PegOutCoin is value leaving the extension block for a host-chain address.
type PegOutCoin struct {
	Amount  uint64
	Address mw.Bech32Address
}

// Serialize implements ser.Serializable.
func (p PegOutCoin) Serialize(s *ser.Serializer) {
	s.WriteU64(p.Amount)
	s.Write(p.Address)
}

// DeserializePegOutCoin reads a PegOutCoin.
func DeserializePegOutCoin(d *ser.Deserializer) (p PegOutCoin) {
	p.Amount = d.ReadU64()
	p.Address = mw.DeserializeBech32Address(d)
	return
}
