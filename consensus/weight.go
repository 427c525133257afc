// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package consensus enforces the extension-block consensus rules: body
// syntax, crypto batches, weight, and the block-sum / owner-sum balance laws.
// It also aggregates transactions into block candidates.
package consensus

import (
	"github.com/mwebchain/mweb/mw"
	"github.com/mwebchain/mweb/tx"
)

// Weight computes the weighted size of a body under the chain parameters:
// a·#inputs + b·#outputs + c·#kernels + d·extra_data_bytes.
func Weight(params *mw.ChainParams, body tx.TxBody) uint64 {
	return uint64(params.WeightPerInput)*uint64(len(body.Inputs)) +
		uint64(params.WeightPerOutput)*uint64(len(body.Outputs)) +
		uint64(params.WeightPerKernel)*uint64(len(body.Kernels)) +
		uint64(params.WeightPerExtraByte)*body.ExtraDataBytes()
}
