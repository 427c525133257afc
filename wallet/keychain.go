// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package wallet recovers owned coins from the opaque output stream and
// builds peg-in, peg-out, and confidential-send transactions.
package wallet

import (
	"encoding/binary"

	"github.com/mwebchain/mweb/cry"
	"github.com/mwebchain/mweb/mw"
)

// Reserved address indices.
const (
	// ChangeIndex receives transaction change.
	ChangeIndex uint32 = 0
	// PegInIndex receives self peg-ins.
	PegInIndex uint32 = 1
)

// trackedAddresses is how many address indices the wallet derives and
// recognizes during scans.
const trackedAddresses = 100

// Keychain derives the wallet's scan and spend secrets from the master seed,
// and per-index spend keys from the spend secret.
type Keychain struct {
	scanSecret  mw.SecretKey
	spendSecret mw.SecretKey
}

// NewKeychain derives the keychain from the master seed.
func NewKeychain(seed []byte) *Keychain {
	return &Keychain{
		scanSecret:  cry.SecretKeyFromHash(mw.HashSum([]byte("mweb/scan"), seed)),
		spendSecret: cry.SecretKeyFromHash(mw.HashSum([]byte("mweb/spend"), seed)),
	}
}

// ScanSecret returns the scan secret a.
func (k *Keychain) ScanSecret() mw.SecretKey { return k.scanSecret }

// SpendKey derives the spend key for an address index:
// spend_secret · H("mweb/address" ‖ scan_secret ‖ index).
func (k *Keychain) SpendKey(index uint32) mw.SecretKey {
	var idx [4]byte
	binary.BigEndian.PutUint32(idx[:], index)
	tweak := cry.SecretKeyFromHash(mw.HashSum([]byte("mweb/address"), k.scanSecret[:], idx[:]))
	return cry.MulSecretKeys(k.spendSecret, tweak)
}

// Address derives the stealth address (A, B) for an index:
// A = scan_secret·G, B = spend_key(index)·G.
func (k *Keychain) Address(index uint32) (mw.StealthAddress, error) {
	scanPub, err := cry.PublicKeyOf(k.scanSecret)
	if err != nil {
		return mw.StealthAddress{}, err
	}
	spendPub, err := cry.PublicKeyOf(k.SpendKey(index))
	if err != nil {
		return mw.StealthAddress{}, err
	}
	return mw.StealthAddress{Scan: scanPub, Spend: spendPub}, nil
}
