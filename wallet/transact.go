// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package wallet

import (
	"github.com/pkg/errors"

	"github.com/mwebchain/mweb/mw"
	"github.com/mwebchain/mweb/tx"
)

// CreatePegInTx builds a transaction minting amount to the given stealth
// address; an empty receiver defaults to the wallet's reserved peg-in
// address. Peg-in kernels are fee-less.
func (w *Wallet) CreatePegInTx(amount uint64, receiver *mw.StealthAddress) (*tx.Transaction, tx.PegInCoin, error) {
	addr := mw.StealthAddress{}
	if receiver != nil {
		addr = *receiver
	} else {
		own, err := w.GetPegInAddress()
		if err != nil {
			return nil, tx.PegInCoin{}, err
		}
		addr = own
	}

	transaction, err := w.CreateTx(
		nil,
		[]Recipient{PegInRecipient{Amount: amount, Address: addr}},
		amount,
		0,
	)
	if err != nil {
		return nil, tx.PegInCoin{}, err
	}
	kernel := transaction.Body().Kernels[0]
	return transaction, tx.PegInCoin{Amount: amount, KernelID: kernel.Hash()}, nil
}

// CreatePegOutTx builds a transaction burning amount to the host-chain
// address, paying feeBase per weight unit. Change returns to the reserved
// change address.
func (w *Wallet) CreatePegOutTx(amount, feeBase uint64, address mw.Bech32Address) (*tx.Transaction, error) {
	if !address.ValidEncoding() {
		return nil, errors.Wrapf(mw.ErrInvalidAddress, "pegout address %q", address)
	}
	return w.spendTx(amount, feeBase, PegOutRecipient{Amount: amount, Address: address})
}

// Send builds an MWEB-to-MWEB transaction to the receiver's stealth address,
// paying feeBase per weight unit. Change returns to the reserved change
// address.
func (w *Wallet) Send(amount, feeBase uint64, receiver mw.StealthAddress) (*tx.Transaction, error) {
	return w.spendTx(amount, feeBase, MWEBRecipient{Amount: amount, Address: receiver})
}

// SendToAddress is Send with a bech32-encoded receiver.
func (w *Wallet) SendToAddress(amount, feeBase uint64, address string) (*tx.Transaction, error) {
	receiver, err := mw.DecodeStealthAddress(w.params.HRP, address)
	if err != nil {
		return nil, err
	}
	return w.Send(amount, feeBase, receiver)
}

func (w *Wallet) spendTx(amount, feeBase uint64, recipient Recipient) (*tx.Transaction, error) {
	coins, err := w.store.ListCoins()
	if err != nil {
		return nil, err
	}

	_, isPegOut := recipient.(PegOutRecipient)
	outputs := 1 // change
	if !isPegOut {
		outputs++
	}
	selected, fee, err := SelectCoins(coins, amount, func(inputs int) uint64 {
		return feeBase * w.estimateWeight(inputs, outputs)
	})
	if err != nil {
		return nil, err
	}

	var inputTotal uint64
	for _, coin := range selected {
		inputTotal += coin.Amount
	}
	change, err := w.GetChangeAddress()
	if err != nil {
		return nil, err
	}
	recipients := []Recipient{recipient}
	if changeAmount := inputTotal - amount - fee; changeAmount > 0 {
		recipients = append(recipients, MWEBRecipient{Amount: changeAmount, Address: change})
	}
	return w.CreateTx(selected, recipients, 0, fee)
}

// estimateWeight prices a single-kernel transaction shape with the chain's
// weight coefficients.
func (w *Wallet) estimateWeight(inputs, outputs int) uint64 {
	return uint64(w.params.WeightPerInput)*uint64(inputs) +
		uint64(w.params.WeightPerOutput)*uint64(outputs) +
		uint64(w.params.WeightPerKernel)
}
