// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package consensus_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwebchain/mweb/consensus"
	"github.com/mwebchain/mweb/cry"
	"github.com/mwebchain/mweb/mw"
	"github.com/mwebchain/mweb/tx"
)

func testParams() *mw.ChainParams {
	return &mw.ChainParams{
		HRP:                "mweb",
		PegInMaturity:      20,
		MaxBlockWeight:     200_000,
		WeightPerInput:     1,
		WeightPerOutput:    18,
		WeightPerKernel:    2,
		WeightPerExtraByte: 1,
	}
}

func mustCommit(t *testing.T, value uint64, blind mw.BlindingFactor) mw.Commitment {
	t.Helper()
	c, err := cry.CommitBlinded(value, blind)
	require.NoError(t, err)
	return c
}

func syntheticOutput(t *testing.T, value uint64, blind mw.BlindingFactor, sender mw.SecretKey) tx.Output {
	t.Helper()
	senderPub, err := cry.PublicKeyOf(sender)
	require.NoError(t, err)
	out := tx.Output{
		Commitment: mustCommit(t, value, blind),
		OwnerData:  tx.OwnerData{SenderPubKey: senderPub},
	}
	return out
}

// standardTx builds the 2-in/2-out/1-kernel shape without the wallet
// builder: inputs 5M+6M, outputs 4M+6.5M, fee 500k.
func standardTx(t *testing.T, fee uint64) (*tx.Transaction, []mw.PublicKey) {
	t.Helper()
	in1, in2 := cry.RandomBlindingFactor(), cry.RandomBlindingFactor()
	out1, out2 := cry.RandomBlindingFactor(), cry.RandomBlindingFactor()

	body := tx.TxBody{
		Inputs: []tx.Input{
			tx.NewInput(0, mustCommit(t, 5_000_000, in1)),
			tx.NewInput(0, mustCommit(t, 6_000_000, in2)),
		},
	}

	sender1, sender2 := cry.RandomSecretKey(), cry.RandomSecretKey()
	body.Outputs = append(body.Outputs,
		syntheticOutput(t, 4_000_000, out1, sender1),
		syntheticOutput(t, 6_500_000, out2, sender2),
	)

	kernelOffset := cry.RandomBlindingFactor()
	kernelBlind := new(cry.Blinds).Add(out1, out2).Sub(in1, in2, kernelOffset).Total()
	kernel, err := tx.NewKernelBuilder().Fee(fee).Build(kernelBlind)
	require.NoError(t, err)
	body.Kernels = append(body.Kernels, kernel)

	inputKey1, inputKey2 := cry.RandomSecretKey(), cry.RandomSecretKey()
	inputOwnerPub1, err := cry.PublicKeyOf(inputKey1)
	require.NoError(t, err)
	inputOwnerPub2, err := cry.PublicKeyOf(inputKey2)
	require.NoError(t, err)

	ownerSigKey := cry.RandomSecretKey()
	ownerSig, err := cry.SignMessage(ownerSigKey, kernel.Hash())
	require.NoError(t, err)
	body.OwnerSigs = append(body.OwnerSigs, ownerSig)

	ownerOffset := new(cry.Blinds).
		AddKey(sender1, sender2).
		SubKey(inputKey1, inputKey2, ownerSigKey).
		Total()

	return tx.NewTransaction(kernelOffset, ownerOffset, body),
		[]mw.PublicKey{inputOwnerPub1, inputOwnerPub2}
}

func TestKernelSumStandardTransfer(t *testing.T) {
	// Inputs 5M+6M, outputs 4M+6.5M, fee 500k balances exactly.
	transaction, _ := standardTx(t, 500_000)
	assert.NoError(t, consensus.ValidateTxSums(transaction))
}

func TestKernelSumRejectsWrongFee(t *testing.T) {
	transaction, _ := standardTx(t, 400_000)
	assert.ErrorIs(t, consensus.ValidateTxSums(transaction), mw.ErrConsensusViolation)
}

func TestOwnerSum(t *testing.T) {
	transaction, inputOwnerKeys := standardTx(t, 500_000)
	assert.NoError(t, consensus.ValidateTxOwnerSum(transaction, inputOwnerKeys))

	// Swapping an input owner key unbalances the law.
	wrongPub, err := cry.PublicKeyOf(cry.RandomSecretKey())
	require.NoError(t, err)
	wrong := []mw.PublicKey{inputOwnerKeys[0], wrongPub}
	assert.ErrorIs(t, consensus.ValidateTxOwnerSum(transaction, wrong), mw.ErrConsensusViolation)
}

func TestBlockSumWithPrevOffset(t *testing.T) {
	transaction, _ := standardTx(t, 500_000)
	prevOffset := cry.RandomBlindingFactor()
	totalOffset := cry.AddBlindingFactors(
		[]mw.BlindingFactor{prevOffset, transaction.KernelOffset()}, nil)
	assert.NoError(t, consensus.ValidateBlockSum(transaction.Body(), totalOffset, prevOffset))
	assert.ErrorIs(t,
		consensus.ValidateBlockSum(transaction.Body(), totalOffset, cry.RandomBlindingFactor()),
		mw.ErrConsensusViolation)
}

func TestValidateSortedAndUnique(t *testing.T) {
	v := consensus.NewValidator(testParams())

	transaction, _ := standardTx(t, 500_000)
	sorted := transaction.Body()
	assert.NoError(t, v.ValidateBody(sorted))

	// NewTransaction sorted the lists; reversing inputs breaks ordering.
	unsorted := sorted
	unsorted.Inputs = []tx.Input{sorted.Inputs[1], sorted.Inputs[0]}
	assert.ErrorIs(t, v.ValidateBody(unsorted), mw.ErrConsensusViolation)

	// Duplicate input commitment.
	dup := transaction.Body()
	dup.Inputs = append([]tx.Input{}, dup.Inputs...)
	dup.Inputs = append(dup.Inputs, dup.Inputs[0])
	dup.Sort()
	assert.ErrorIs(t, v.ValidateBody(dup), mw.ErrConsensusViolation)
}

func TestWeight(t *testing.T) {
	params := testParams()
	kernel, err := tx.NewKernelBuilder().Fee(1).ExtraData([]byte{1, 2, 3, 4}).Build(cry.RandomBlindingFactor())
	require.NoError(t, err)
	body := tx.TxBody{
		Inputs:  make([]tx.Input, 3),
		Outputs: make([]tx.Output, 2),
		Kernels: []tx.Kernel{kernel},
	}
	// 3·1 + 2·18 + 1·2 + 4·1
	assert.Equal(t, uint64(45), consensus.Weight(params, body))
}

func TestAggregateSingleIsIdentity(t *testing.T) {
	transaction, _ := standardTx(t, 500_000)
	aggregated := consensus.Aggregate([]*tx.Transaction{transaction})
	assert.Equal(t, transaction.Hash(), aggregated.Hash())
}

func TestAggregateAssociativity(t *testing.T) {
	a, _ := standardTx(t, 100)
	b, _ := standardTx(t, 200)
	c, _ := standardTx(t, 300)

	all := consensus.Aggregate([]*tx.Transaction{a, b, c})
	nested := consensus.Aggregate([]*tx.Transaction{
		consensus.Aggregate([]*tx.Transaction{a, b}), c,
	})
	assert.Equal(t, all.Hash(), nested.Hash())
}

func TestAggregateBalances(t *testing.T) {
	a, aKeys := standardTx(t, 500_000)
	b, bKeys := standardTx(t, 500_000)
	aggregated := consensus.Aggregate([]*tx.Transaction{a, b})

	assert.NoError(t, consensus.ValidateTxSums(aggregated))

	// The owner law holds with the union of input keys, matched to the
	// sorted input order.
	keyByCommit := make(map[mw.Commitment]mw.PublicKey)
	for i, in := range a.Body().Inputs {
		keyByCommit[in.Commitment] = aKeys[i]
	}
	for i, in := range b.Body().Inputs {
		keyByCommit[in.Commitment] = bKeys[i]
	}
	var keys []mw.PublicKey
	for _, in := range aggregated.Body().Inputs {
		keys = append(keys, keyByCommit[in.Commitment])
	}
	assert.NoError(t, consensus.ValidateTxOwnerSum(aggregated, keys))
}
