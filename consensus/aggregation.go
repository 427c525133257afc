// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package consensus

import (
	"github.com/mwebchain/mweb/cry"
	"github.com/mwebchain/mweb/mw"
	"github.com/mwebchain/mweb/tx"
)

// Aggregate merges transactions into one: offsets are summed and the four
// body lists concatenated, then re-sorted by NewTransaction. An input whose
// commitment exactly matches an output of the merged set is cut through with
// that output, but only when the output carries no owner signature — removal
// would otherwise unbalance the owner-sum law.
//
// Aggregate of a single transaction is the transaction itself, modulo sort.
func Aggregate(txs []*tx.Transaction) *tx.Transaction {
	kernelOffsets := make([]mw.BlindingFactor, 0, len(txs))
	ownerOffsets := make([]mw.BlindingFactor, 0, len(txs))
	var body tx.TxBody
	for _, t := range txs {
		kernelOffsets = append(kernelOffsets, t.KernelOffset())
		ownerOffsets = append(ownerOffsets, t.OwnerOffset())
		txBody := t.Body()
		body.Inputs = append(body.Inputs, txBody.Inputs...)
		body.Outputs = append(body.Outputs, txBody.Outputs...)
		body.Kernels = append(body.Kernels, txBody.Kernels...)
		body.OwnerSigs = append(body.OwnerSigs, txBody.OwnerSigs...)
	}

	body = cutThrough(body)

	return tx.NewTransaction(
		cry.AddBlindingFactors(kernelOffsets, nil),
		cry.AddBlindingFactors(ownerOffsets, nil),
		body,
	)
}

// cutThrough drops exact input/output commitment matches where the output
// bears no distinct ownership signature.
func cutThrough(body tx.TxBody) tx.TxBody {
	eligible := make(map[mw.Commitment]int)
	for i, out := range body.Outputs {
		if out.OwnerData.Signature == (mw.Signature{}) && out.OwnerData.SenderPubKey.IsZero() {
			eligible[out.Commitment] = i
		}
	}

	cutOutputs := make(map[int]struct{})
	inputs := body.Inputs[:0]
	for _, in := range body.Inputs {
		if i, ok := eligible[in.Commitment]; ok {
			cutOutputs[i] = struct{}{}
			delete(eligible, in.Commitment)
			continue
		}
		inputs = append(inputs, in)
	}
	if len(cutOutputs) == 0 {
		body.Inputs = inputs
		return body
	}

	outputs := make([]tx.Output, 0, len(body.Outputs)-len(cutOutputs))
	for i, out := range body.Outputs {
		if _, ok := cutOutputs[i]; !ok {
			outputs = append(outputs, out)
		}
	}
	body.Inputs = inputs
	body.Outputs = outputs
	return body
}
