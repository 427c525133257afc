// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package consensus

import (
	"github.com/pkg/errors"

	"github.com/mwebchain/mweb/cry"
	"github.com/mwebchain/mweb/mw"
	"github.com/mwebchain/mweb/tx"
)

// ValidateBlockSum checks the block balance law:
// ΣC(outputs) − ΣC(inputs) + (Σfee + Σpegout − Σpegin)·H ==
// (total_kernel_offset − prev_total_kernel_offset)·G + Σkernel.excess.
func ValidateBlockSum(body tx.TxBody, totalOffset, prevTotalOffset mw.BlindingFactor) error {
	offsetDiff := cry.AddBlindingFactors(
		[]mw.BlindingFactor{totalOffset},
		[]mw.BlindingFactor{prevTotalOffset},
	)
	return validateKernelSum(body, offsetDiff)
}

// ValidateTxSums checks the transaction balance law with the transaction's
// own kernel offset.
func ValidateTxSums(t *tx.Transaction) error {
	return validateKernelSum(t.Body(), t.KernelOffset())
}

func validateKernelSum(body tx.TxBody, offset mw.BlindingFactor) error {
	positive := body.OutputCommitments()
	negative := body.InputCommitments()

	// The transparent supply change: fees and peg-outs leave the chain,
	// peg-ins mint onto it. Outputs fall short of inputs by exactly this
	// amount, so it joins the positive side.
	if out := body.TotalFee() + body.PegOutAmount(); out > 0 {
		commit, err := cry.CommitTransparent(out)
		if err != nil {
			return err
		}
		positive = append(positive, commit)
	}
	if pegin := body.PegInAmount(); pegin > 0 {
		commit, err := cry.CommitTransparent(pegin)
		if err != nil {
			return err
		}
		negative = append(negative, commit)
	}

	if !offset.IsZero() {
		commit, err := cry.CommitBlinded(0, offset)
		if err != nil {
			return err
		}
		negative = append(negative, commit)
	}
	for _, k := range body.Kernels {
		negative = append(negative, k.Excess)
	}

	balanced, err := cry.CommitmentsSumToZero(positive, negative)
	if err != nil {
		return err
	}
	if !balanced {
		return errors.Wrap(mw.ErrConsensusViolation, "kernel sums do not balance")
	}
	return nil
}

// ValidateOwnerSum checks the owner balance law:
// Σ(output.sender_pubkey) − Σ(input.owner_pubkey) ==
// (total_owner_offset − prev_total_owner_offset)·G + Σ(owner_sig.pubkey).
// Input owner keys are the receiver pubkeys of the outputs being spent,
// resolved by the caller from the UTXO set.
func ValidateOwnerSum(
	body tx.TxBody,
	totalOffset, prevTotalOffset mw.BlindingFactor,
	inputOwnerKeys []mw.PublicKey,
) error {
	offsetDiff := cry.AddBlindingFactors(
		[]mw.BlindingFactor{totalOffset},
		[]mw.BlindingFactor{prevTotalOffset},
	)
	return validateOwnerSum(body, offsetDiff, inputOwnerKeys)
}

// ValidateTxOwnerSum checks the owner balance law for a standalone
// transaction.
func ValidateTxOwnerSum(t *tx.Transaction, inputOwnerKeys []mw.PublicKey) error {
	return validateOwnerSum(t.Body(), t.OwnerOffset(), inputOwnerKeys)
}

func validateOwnerSum(body tx.TxBody, offset mw.BlindingFactor, inputOwnerKeys []mw.PublicKey) error {
	if len(inputOwnerKeys) != len(body.Inputs) {
		return errors.Wrap(mw.ErrConsensusViolation, "input owner key count mismatch")
	}

	positive := make([]mw.PublicKey, 0, len(body.Outputs))
	for _, out := range body.Outputs {
		positive = append(positive, out.SenderPubKey())
	}

	negative := append([]mw.PublicKey{}, inputOwnerKeys...)
	if !offset.IsZero() {
		offsetPub, err := cry.PublicKeyOf(offset.ToSecretKey())
		if err != nil {
			return err
		}
		negative = append(negative, offsetPub)
	}
	for _, sig := range body.OwnerSigs {
		negative = append(negative, sig.PublicKey)
	}

	balanced, err := cry.PublicKeysSumToZero(positive, negative)
	if err != nil {
		return err
	}
	if !balanced {
		return errors.Wrap(mw.ErrConsensusViolation, "owner sums do not balance")
	}
	return nil
}
