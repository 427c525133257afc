// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cry

import (
	"sync/atomic"

	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/schnorr"
	"github.com/pkg/errors"

	"github.com/mwebchain/mweb/co"
	"github.com/mwebchain/mweb/mw"
)

// SchnorrSign signs the 32-byte message with the given key using decred's
// EC-Schnorr-DCRv0 scheme. The 64-byte r‖s signature is not a BIP-340
// signature and does not verify under BIP-340.
func SchnorrSign(key mw.SecretKey, msg mw.Hash) (mw.Signature, error) {
	priv := secp256k1.PrivKeyFromBytes(key[:])
	if priv.Key.IsZero() {
		return mw.Signature{}, errors.Wrap(mw.ErrCryptoFailure, "zero secret key")
	}
	sig, err := schnorr.Sign(priv, msg[:])
	if err != nil {
		return mw.Signature{}, errors.Wrap(mw.ErrCryptoFailure, err.Error())
	}
	var out mw.Signature
	copy(out[:], sig.Serialize())
	return out, nil
}

// SchnorrVerify verifies a decred EC-Schnorr-DCRv0 signature against a
// compressed public key. BIP-340 signatures do not verify here.
func SchnorrVerify(sig mw.Signature, pub mw.PublicKey, msg mw.Hash) error {
	parsedSig, err := schnorr.ParseSignature(sig[:])
	if err != nil {
		return errors.Wrap(mw.ErrCryptoFailure, err.Error())
	}
	parsedPub, err := secp256k1.ParsePubKey(pub[:])
	if err != nil {
		return errors.Wrap(mw.ErrCryptoFailure, err.Error())
	}
	if !parsedSig.Verify(msg[:], parsedPub) {
		return errors.Wrap(mw.ErrCryptoFailure, "schnorr verify failed")
	}
	return nil
}

// SignMessage signs msg and returns the signature bundled with the signer's
// public key.
func SignMessage(key mw.SecretKey, msg mw.Hash) (mw.SignedMessage, error) {
	pub, err := PublicKeyOf(key)
	if err != nil {
		return mw.SignedMessage{}, err
	}
	sig, err := SchnorrSign(key, msg)
	if err != nil {
		return mw.SignedMessage{}, err
	}
	return mw.SignedMessage{PublicKey: pub, MsgHash: msg, Signature: sig}, nil
}

// SchnorrBatchVerify verifies a batch of signed messages, fanning the work
// out across CPUs. Any single failure fails the batch.
func SchnorrBatchVerify(msgs []mw.SignedMessage) error {
	var failed atomic.Bool
	co.Parallel(func(enqueue co.Enqueue) {
		for i := range msgs {
			m := msgs[i]
			enqueue(func() {
				if failed.Load() {
					return
				}
				if err := SchnorrVerify(m.Signature, m.PublicKey, m.MsgHash); err != nil {
					failed.Store(true)
				}
			})
		}
	})
	if failed.Load() {
		return errors.Wrap(mw.ErrCryptoFailure, "batch signature verify failed")
	}
	return nil
}
