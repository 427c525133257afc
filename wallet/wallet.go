// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package wallet

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/mwebchain/mweb/block"
	"github.com/mwebchain/mweb/cry"
	"github.com/mwebchain/mweb/log"
	"github.com/mwebchain/mweb/mw"
	"github.com/mwebchain/mweb/ser"
	"github.com/mwebchain/mweb/tx"
)

var logger = log.WithContext("pkg", "wallet")

// Wallet recognizes and spends the coins controlled by its keychain.
type Wallet struct {
	store    Store
	params   *mw.ChainParams
	keychain *Keychain

	// spendPubKeys maps B(i) to i for every tracked address index.
	spendPubKeys map[mw.PublicKey]uint32
}

// Open derives the wallet from the store's master seed.
func Open(store Store, params *mw.ChainParams) (*Wallet, error) {
	seed, err := store.GetMasterSeed()
	if err != nil {
		return nil, err
	}
	keychain := NewKeychain(seed)

	spendPubKeys := make(map[mw.PublicKey]uint32, trackedAddresses)
	for i := uint32(0); i < trackedAddresses; i++ {
		addr, err := keychain.Address(i)
		if err != nil {
			return nil, err
		}
		spendPubKeys[addr.Spend] = i
	}
	return &Wallet{
		store:        store,
		params:       params,
		keychain:     keychain,
		spendPubKeys: spendPubKeys,
	}, nil
}

// Store returns the wallet-storage interface.
func (w *Wallet) Store() Store { return w.store }

// GetStealthAddress returns the stealth address at the given index.
func (w *Wallet) GetStealthAddress(index uint32) (mw.StealthAddress, error) {
	return w.keychain.Address(index)
}

// GetChangeAddress returns the reserved change address.
func (w *Wallet) GetChangeAddress() (mw.StealthAddress, error) {
	return w.keychain.Address(ChangeIndex)
}

// GetPegInAddress returns the reserved peg-in address.
func (w *Wallet) GetPegInAddress() (mw.StealthAddress, error) {
	return w.keychain.Address(PegInIndex)
}

// GetAddress returns the bech32 form of the stealth address at index.
func (w *Wallet) GetAddress(index uint32) (string, error) {
	addr, err := w.keychain.Address(index)
	if err != nil {
		return "", err
	}
	return addr.Encode(w.params.HRP)
}

// IsOwnAddress reports whether the bech32 address belongs to this wallet.
func (w *Wallet) IsOwnAddress(address string) bool {
	addr, err := mw.DecodeStealthAddress(w.params.HRP, address)
	if err != nil {
		return false
	}
	return w.isOwnStealthAddress(addr)
}

func (w *Wallet) isOwnStealthAddress(addr mw.StealthAddress) bool {
	scanPub, err := cry.PublicKeyOf(w.keychain.ScanSecret())
	if err != nil || scanPub != addr.Scan {
		return false
	}
	_, ok := w.spendPubKeys[addr.Spend]
	return ok
}

// RewindOutput recovers the coin behind an output, or fails if the output is
// not addressed to this wallet. The same path runs on restore from seed.
func (w *Wallet) RewindOutput(out tx.Output) (*Coin, error) {
	// Quick rejection by view tag.
	ecdh, err := cry.MulPublicKey(out.OwnerData.KeyExchangePubKey, w.keychain.ScanSecret())
	if err != nil {
		return nil, err
	}
	tweakHash := mw.HashSum(ecdh[:])
	if tweakHash[0] != out.OwnerData.ViewTag {
		return nil, errors.Wrap(mw.ErrNotFound, "view tag")
	}

	// Find the tracked index whose one-time key matches.
	tweak := cry.SecretKeyFromHash(tweakHash)
	tweakPub, err := cry.PublicKeyOf(tweak)
	if err != nil {
		return nil, err
	}
	index, found := uint32(0), false
	for i := uint32(0); i < trackedAddresses; i++ {
		addr, err := w.keychain.Address(i)
		if err != nil {
			return nil, err
		}
		candidate, err := cry.AddPublicKeys([]mw.PublicKey{tweakPub, addr.Spend}, nil)
		if err != nil {
			return nil, err
		}
		if candidate == out.OwnerData.ReceiverPubKey {
			index, found = i, true
			break
		}
	}
	if !found {
		return nil, errors.Wrap(mw.ErrNotFound, "receiver key")
	}

	// Symmetric derivation of the sender's shared secret, then decrypt
	// (blind ‖ amount).
	spendKey := w.keychain.SpendKey(index)
	sharedPub, err := cry.MulPublicKey(out.OwnerData.SenderPubKey, spendKey)
	if err != nil {
		return nil, err
	}
	sharedSecret := cry.SecretKeyFromHash(mw.HashSum(sharedPub[:]))
	plaintext, err := cry.AES256CTRDecrypt(out.OwnerData.EncryptedData, sharedSecret, [16]byte{})
	if err != nil {
		return nil, err
	}
	if len(plaintext) != 40 {
		return nil, errors.Wrap(ser.ErrInvalidSerialization, "encrypted data length")
	}
	var blind mw.BlindingFactor
	copy(blind[:], plaintext[:32])
	amount := binary.BigEndian.Uint64(plaintext[32:])

	// A spoofed output fails here: the commitment must match the witness.
	commitment, err := cry.CommitBlinded(amount, blind)
	if err != nil {
		return nil, err
	}
	if commitment != out.Commitment {
		return nil, errors.Wrap(mw.ErrCryptoFailure, "rewound witness mismatch")
	}

	return &Coin{
		Commitment:   out.Commitment,
		Amount:       amount,
		Blind:        blind,
		SpendKey:     cry.AddSecretKeys(tweak, spendKey),
		AddressIndex: index,
		Features:     out.Features(),
	}, nil
}

// GetBalance classifies the wallet's coins by maturity at the given tip.
func (w *Wallet) GetBalance(tipHeight uint64) (Balance, error) {
	coins, err := w.store.ListCoins()
	if err != nil {
		return Balance{}, err
	}
	var balance Balance
	for _, coin := range coins {
		switch {
		case coin.IsSpent():
		case !coin.IsConfirmed():
			balance.Unconfirmed += coin.Amount
		case coin.IsPeggedIn() && tipHeight-coin.BlockHeight+1 < uint64(w.params.PegInMaturity):
			balance.Immature += coin.Amount
		default:
			balance.Confirmed += coin.Amount
		}
	}
	return balance, nil
}

// BlockConnected updates the wallet for a newly connected block: new owned
// outputs become confirmed coins, and spends of owned coins are recorded.
func (w *Wallet) BlockConnected(b *block.Block, canonicalHash mw.Hash) error {
	var found []Coin
	for _, out := range b.Outputs() {
		coin, err := w.RewindOutput(out)
		if err != nil {
			continue // not ours, or malformed: scan misses are benign
		}
		coin.BlockHeight = b.Height()
		found = append(found, *coin)
	}
	if len(found) > 0 {
		if err := w.store.AddCoins(found); err != nil {
			return err
		}
		logger.Debug("coins received", "height", b.Height(), "count", len(found))
	}

	for _, in := range b.Inputs() {
		coin, err := w.store.GetCoin(in.Commitment)
		if err != nil || coin == nil {
			continue
		}
		if err := w.store.MarkSpent(in.Commitment, canonicalHash); err != nil {
			return err
		}
	}
	return nil
}

// BlockDisconnected reverses BlockConnected: owned outputs of the block drop
// back to mempool status and spend marks from it are cleared.
func (w *Wallet) BlockDisconnected(b *block.Block) error {
	for _, out := range b.Outputs() {
		coin, err := w.store.GetCoin(out.Commitment)
		if err != nil || coin == nil {
			continue
		}
		coin.BlockHeight = 0
		if err := w.store.AddCoins([]Coin{*coin}); err != nil {
			return err
		}
	}
	for _, in := range b.Inputs() {
		coin, err := w.store.GetCoin(in.Commitment)
		if err != nil || coin == nil || !coin.IsSpent() {
			continue
		}
		coin.SpentBy = mw.Hash{}
		if err := w.store.AddCoins([]Coin{*coin}); err != nil {
			return err
		}
	}
	return nil
}

// TransactionAddedToMempool records unconfirmed receipts and pending spends
// from a mempool transaction.
func (w *Wallet) TransactionAddedToMempool(t *tx.Transaction) error {
	var found []Coin
	for _, out := range t.Body().Outputs {
		coin, err := w.RewindOutput(out)
		if err != nil {
			continue
		}
		found = append(found, *coin)
	}
	if len(found) > 0 {
		if err := w.store.AddCoins(found); err != nil {
			return err
		}
	}
	for _, in := range t.Body().Inputs {
		coin, err := w.store.GetCoin(in.Commitment)
		if err != nil || coin == nil {
			continue
		}
		if err := w.store.MarkSpent(in.Commitment, t.Hash()); err != nil {
			return err
		}
	}
	return nil
}
