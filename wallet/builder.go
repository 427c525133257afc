// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package wallet

import (
	"bytes"
	"sort"

	"github.com/pkg/errors"

	"github.com/mwebchain/mweb/cry"
	"github.com/mwebchain/mweb/mw"
	"github.com/mwebchain/mweb/tx"
)

// Recipient is a destination of a transaction being built.
type Recipient interface {
	recipientAmount() uint64
}

// MWEBRecipient sends confidential value to a stealth address.
type MWEBRecipient struct {
	Amount  uint64
	Address mw.StealthAddress
}

// PegInRecipient mints pegged-in value to a stealth address.
type PegInRecipient struct {
	Amount  uint64
	Address mw.StealthAddress
}

// PegOutRecipient burns value to a host-chain address.
type PegOutRecipient struct {
	Amount  uint64
	Address mw.Bech32Address
}

func (r MWEBRecipient) recipientAmount() uint64   { return r.Amount }
func (r PegInRecipient) recipientAmount() uint64  { return r.Amount }
func (r PegOutRecipient) recipientAmount() uint64 { return r.Amount }

// CreateTx builds a transaction spending the given coins to the recipients.
// Coin value not consumed by recipients and fee is an error: callers add an
// explicit change recipient. Peg-in recipients must carry the whole
// peginAmount; at most one peg-out recipient is supported per transaction.
func (w *Wallet) CreateTx(
	inputCoins []Coin,
	recipients []Recipient,
	peginAmount uint64,
	fee uint64,
) (*tx.Transaction, error) {
	var (
		inputTotal  uint64
		outputTotal = fee
		peginTotal  uint64
		pegout      *PegOutRecipient
	)
	for _, coin := range inputCoins {
		inputTotal += coin.Amount
	}
	for _, r := range recipients {
		outputTotal += r.recipientAmount()
		switch r := r.(type) {
		case PegInRecipient:
			peginTotal += r.Amount
		case PegOutRecipient:
			if pegout != nil {
				return nil, errors.Wrap(mw.ErrConsensusViolation, "one pegout per transaction")
			}
			p := r
			pegout = &p
		}
	}
	if peginTotal != peginAmount {
		return nil, errors.Wrap(mw.ErrConsensusViolation, "pegin recipients do not cover pegin amount")
	}
	if inputTotal+peginAmount != outputTotal {
		return nil, errors.Wrapf(mw.ErrConsensusViolation,
			"inputs %d + pegin %d != outputs %d", inputTotal, peginAmount, outputTotal)
	}

	// Build the outputs; peg-outs carry no output, only kernel fields.
	var (
		body         tx.TxBody
		outputBlinds []mw.BlindingFactor
		senderKeys   []mw.SecretKey
	)
	for _, r := range recipients {
		var (
			features uint8
			amount   uint64
			addr     mw.StealthAddress
		)
		switch r := r.(type) {
		case MWEBRecipient:
			features, amount, addr = tx.OutputStandard, r.Amount, r.Address
		case PegInRecipient:
			features, amount, addr = tx.OutputPeggedIn, r.Amount, r.Address
		case PegOutRecipient:
			continue
		}
		senderKey := cry.RandomSecretKey()
		output, blind, err := w.createAndStashOutput(features, senderKey, addr, amount)
		if err != nil {
			return nil, err
		}
		body.Outputs = append(body.Outputs, output)
		outputBlinds = append(outputBlinds, blind)
		senderKeys = append(senderKeys, senderKey)
	}

	inputBlinds := make([]mw.BlindingFactor, 0, len(inputCoins))
	inputKeys := make([]mw.SecretKey, 0, len(inputCoins))
	for _, coin := range inputCoins {
		body.Inputs = append(body.Inputs, tx.NewInput(coin.Features, coin.Commitment))
		inputBlinds = append(inputBlinds, coin.Blind)
		inputKeys = append(inputKeys, coin.SpendKey)
	}

	// Total kernel offset splits between the raw offset and the kernel's
	// blinding factor:
	// sum(output.blind) - sum(input.blind) = kernel_offset + kernel_blind.
	kernelOffset := cry.RandomBlindingFactor()
	kernelBlind := new(cry.Blinds).
		Add(outputBlinds...).
		Sub(inputBlinds...).
		Sub(kernelOffset).
		Total()

	kb := tx.NewKernelBuilder().Fee(fee)
	if peginAmount > 0 {
		kb.PegIn(peginAmount)
	}
	if pegout != nil {
		kb.PegOut(pegout.Amount, pegout.Address)
	}
	kernel, err := kb.Build(kernelBlind)
	if err != nil {
		return nil, err
	}
	body.Kernels = append(body.Kernels, kernel)

	// Total owner offset splits between the raw offset and the owner
	// signature's key:
	// sum(output.sender_key) - sum(input.key) = owner_offset + owner_sig_key.
	ownerSigKey := cry.RandomSecretKey()
	ownerSig, err := cry.SignMessage(ownerSigKey, kernel.Hash())
	if err != nil {
		return nil, err
	}
	body.OwnerSigs = append(body.OwnerSigs, ownerSig)

	ownerOffset := new(cry.Blinds).
		AddKey(senderKeys...).
		SubKey(inputKeys...).
		SubKey(ownerSigKey).
		Total()

	return tx.NewTransaction(kernelOffset, ownerOffset, body), nil
}

// createAndStashOutput creates the output and, when addressed to this
// wallet, immediately rewinds and persists the coin. A successful rewind
// proves the coin can be restored from seed.
func (w *Wallet) createAndStashOutput(
	features uint8,
	senderKey mw.SecretKey,
	addr mw.StealthAddress,
	amount uint64,
) (tx.Output, mw.BlindingFactor, error) {
	output, blind, err := CreateOutput(features, senderKey, addr, amount)
	if err != nil {
		return tx.Output{}, mw.BlindingFactor{}, err
	}
	if w.isOwnStealthAddress(addr) {
		coin, err := w.RewindOutput(output)
		if err != nil {
			return tx.Output{}, mw.BlindingFactor{}, errors.Wrap(err, "rewind own output")
		}
		if err := w.store.AddCoins([]Coin{*coin}); err != nil {
			return tx.Output{}, mw.BlindingFactor{}, err
		}
	}
	return output, blind, nil
}

// SelectCoins greedily picks unspent confirmed coins by descending value,
// ties broken by ascending commitment bytes, until they cover target plus
// the fee at the resulting input count. feeForInputs reports the fee given
// an input count.
func SelectCoins(coins []Coin, target uint64, feeForInputs func(inputs int) uint64) ([]Coin, uint64, error) {
	spendable := make([]Coin, 0, len(coins))
	for _, coin := range coins {
		if !coin.IsSpent() && coin.IsConfirmed() {
			spendable = append(spendable, coin)
		}
	}
	sort.Slice(spendable, func(i, j int) bool {
		if spendable[i].Amount != spendable[j].Amount {
			return spendable[i].Amount > spendable[j].Amount
		}
		return bytes.Compare(spendable[i].Commitment[:], spendable[j].Commitment[:]) < 0
	})

	var total uint64
	for n, coin := range spendable {
		total += coin.Amount
		fee := feeForInputs(n + 1)
		if total >= target+fee {
			return spendable[:n+1], fee, nil
		}
	}
	return nil, 0, errors.Wrap(mw.ErrNotFound, "insufficient funds")
}
