// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package consensus

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/mwebchain/mweb/block"
	"github.com/mwebchain/mweb/cry"
	"github.com/mwebchain/mweb/mw"
	"github.com/mwebchain/mweb/tx"
)

// Validator performs the context-free consensus checks.
type Validator struct {
	params *mw.ChainParams
}

// NewValidator creates a validator bound to the chain parameters.
func NewValidator(params *mw.ChainParams) *Validator {
	return &Validator{params: params}
}

// ValidateBlock runs every context-free check on the block: body syntax,
// weight, peg-in/peg-out consistency with the host's lists, and the batched
// crypto verification. Failure is fatal; no state is touched.
func (v *Validator) ValidateBlock(b *block.Block, pegins []tx.PegInCoin, pegouts []tx.PegOutCoin) error {
	body := b.Body()
	if err := v.ValidateBody(body); err != nil {
		return err
	}
	if err := validatePegInCoins(body, pegins); err != nil {
		return err
	}
	if err := validatePegOutCoins(body, pegouts); err != nil {
		return err
	}
	return verifyCrypto(body)
}

// ValidateTx runs the context-free checks plus the transaction-level kernel
// sum on a standalone transaction.
func (v *Validator) ValidateTx(t *tx.Transaction) error {
	if err := v.ValidateBody(t.Body()); err != nil {
		return err
	}
	if err := ValidateTxSums(t); err != nil {
		return err
	}
	return verifyCrypto(t.Body())
}

func (v *Validator) ValidateBody(body tx.TxBody) error {
	if err := validateSorted(body); err != nil {
		return err
	}
	if err := validateUnique(body); err != nil {
		return err
	}
	if weight := Weight(v.params, body); weight > uint64(v.params.MaxBlockWeight) {
		return errors.Wrapf(mw.ErrConsensusViolation, "weight %d exceeds %d", weight, v.params.MaxBlockWeight)
	}
	return nil
}

// validateSorted requires each body list strictly ascending by hash.
func validateSorted(body tx.TxBody) error {
	ascending := func(hashes []mw.Hash) bool {
		for i := 1; i < len(hashes); i++ {
			if bytes.Compare(hashes[i-1][:], hashes[i][:]) >= 0 {
				return false
			}
		}
		return true
	}

	inputHashes := make([]mw.Hash, len(body.Inputs))
	for i, in := range body.Inputs {
		inputHashes[i] = in.Hash()
	}
	outputHashes := make([]mw.Hash, len(body.Outputs))
	for i, out := range body.Outputs {
		outputHashes[i] = out.Hash()
	}
	ownerSigHashes := make([]mw.Hash, len(body.OwnerSigs))
	for i, sig := range body.OwnerSigs {
		ownerSigHashes[i] = sig.Hash()
	}
	if !ascending(inputHashes) || !ascending(outputHashes) ||
		!ascending(body.KernelHashes()) || !ascending(ownerSigHashes) {
		return errors.Wrap(mw.ErrConsensusViolation, "body lists not sorted")
	}
	return nil
}

// validateUnique rejects duplicate output commitments, duplicate kernels,
// and inputs spending an output created in the same body.
func validateUnique(body tx.TxBody) error {
	outputs := make(map[mw.Commitment]struct{}, len(body.Outputs))
	for _, out := range body.Outputs {
		if _, ok := outputs[out.Commitment]; ok {
			return errors.Wrap(mw.ErrConsensusViolation, "duplicate output commitment")
		}
		outputs[out.Commitment] = struct{}{}
	}
	inputs := make(map[mw.Commitment]struct{}, len(body.Inputs))
	for _, in := range body.Inputs {
		if _, ok := inputs[in.Commitment]; ok {
			return errors.Wrap(mw.ErrConsensusViolation, "duplicate input commitment")
		}
		inputs[in.Commitment] = struct{}{}
		if _, ok := outputs[in.Commitment]; ok {
			return errors.Wrap(mw.ErrConsensusViolation, "input spends output of same body")
		}
	}
	kernels := make(map[mw.Hash]struct{}, len(body.Kernels))
	for _, k := range body.Kernels {
		hash := k.Hash()
		if _, ok := kernels[hash]; ok {
			return errors.Wrap(mw.ErrConsensusViolation, "duplicate kernel")
		}
		kernels[hash] = struct{}{}
	}
	return nil
}

// validatePegInCoins requires the host-supplied peg-in list to match the
// body's peg-in kernels exactly.
func validatePegInCoins(body tx.TxBody, pegins []tx.PegInCoin) error {
	kernels := body.PegInKernels()
	if len(kernels) != len(pegins) {
		return errors.Wrap(mw.ErrConsensusViolation, "pegin count mismatch")
	}
	byKernel := make(map[mw.Hash]uint64, len(pegins))
	for _, coin := range pegins {
		byKernel[coin.KernelID] = coin.Amount
	}
	for _, k := range kernels {
		amount, ok := byKernel[k.Hash()]
		if !ok || amount != k.PegInAmount() {
			return errors.Wrap(mw.ErrConsensusViolation, "pegin kernel mismatch")
		}
	}
	return nil
}

// validatePegOutCoins requires the host-supplied peg-out list to match the
// body's peg-out kernels exactly.
func validatePegOutCoins(body tx.TxBody, pegouts []tx.PegOutCoin) error {
	coins := body.PegOutCoins()
	if len(coins) != len(pegouts) {
		return errors.Wrap(mw.ErrConsensusViolation, "pegout count mismatch")
	}
	remaining := make(map[tx.PegOutCoin]int, len(pegouts))
	for _, coin := range pegouts {
		remaining[coin]++
	}
	for _, coin := range coins {
		if remaining[coin] == 0 {
			return errors.Wrap(mw.ErrConsensusViolation, "pegout mismatch")
		}
		remaining[coin]--
	}
	return nil
}

// verifyCrypto batches the three signature/proof verifications. The batches
// run in order (kernel signatures, owner signatures, range proofs); the first
// failing batch's error is returned and the later batches are skipped.
func verifyCrypto(body tx.TxBody) error {
	kernelSigs := make([]mw.SignedMessage, len(body.Kernels))
	for i, k := range body.Kernels {
		kernelSigs[i] = mw.SignedMessage{
			PublicKey: mw.PublicKey(k.Excess),
			MsgHash:   k.SignatureMessage(),
			Signature: k.Signature,
		}
	}
	if err := cry.SchnorrBatchVerify(kernelSigs); err != nil {
		return errors.Wrap(err, "kernel signatures")
	}

	ownerSigs := make([]mw.SignedMessage, 0, len(body.OwnerSigs)+len(body.Outputs))
	ownerSigs = append(ownerSigs, body.OwnerSigs...)
	for _, out := range body.Outputs {
		ownerSigs = append(ownerSigs, out.OwnerData.SignedMessage())
	}
	if err := cry.SchnorrBatchVerify(ownerSigs); err != nil {
		return errors.Wrap(err, "owner signatures")
	}

	proofs := make([]cry.ProofData, len(body.Outputs))
	for i, out := range body.Outputs {
		proofs[i] = out.ProofData()
	}
	if err := cry.BulletproofVerifyBatch(proofs); err != nil {
		return errors.Wrap(err, "range proofs")
	}
	return nil
}
