// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package tx defines the confidential transaction model: inputs, outputs,
// kernels, bodies and transactions, with their canonical encoding, signing
// and sum-to-zero balance discipline.
package tx

import (
	"github.com/mwebchain/mweb/mw"
	"github.com/mwebchain/mweb/ser"
)

// Output feature flags, carried in OwnerData.
const (
	// OutputStandard marks a plain confidential output.
	OutputStandard uint8 = 0
	// OutputPeggedIn marks an output minted by a peg-in kernel.
	OutputPeggedIn uint8 = 1 << 0
)

// Input spends an existing unspent output, referenced by commitment.
type Input struct {
	Features   uint8
	Commitment mw.Commitment
}

// NewInput creates an input spending the given commitment.
func NewInput(features uint8, commitment mw.Commitment) Input {
	return Input{Features: features, Commitment: commitment}
}

// Serialize implements ser.Serializable.
func (in Input) Serialize(s *ser.Serializer) {
	s.WriteU8(in.Features)
	s.Write(in.Commitment)
}

// DeserializeInput reads an Input.
func DeserializeInput(d *ser.Deserializer) (in Input) {
	in.Features = d.ReadU8()
	in.Commitment = mw.DeserializeCommitment(d)
	return
}

// Hash returns the identifying digest of the input.
func (in Input) Hash() mw.Hash { return mw.Hashed(in) }
