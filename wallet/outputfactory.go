// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package wallet

import (
	"encoding/binary"

	"github.com/mwebchain/mweb/cry"
	"github.com/mwebchain/mweb/mw"
	"github.com/mwebchain/mweb/ser"
	"github.com/mwebchain/mweb/tx"
)

// CreateOutput builds a confidential output addressed to receiver:
// the sender derives the one-time receiver key from a fresh ephemeral pair,
// encrypts the (blind ‖ amount) witness under the shared secret, signs the
// owner data, and proves the amount in range with the owner data bound as
// the proof's extra data. The fresh blinding factor is returned alongside.
func CreateOutput(
	features uint8,
	senderKey mw.SecretKey,
	receiver mw.StealthAddress,
	amount uint64,
) (tx.Output, mw.BlindingFactor, error) {
	blind := cry.RandomBlindingFactor()

	commitment, err := cry.CommitBlinded(amount, blind)
	if err != nil {
		return tx.Output{}, mw.BlindingFactor{}, err
	}

	ownerData, sharedSecret, err := createOwnerData(features, senderKey, receiver, blind, amount)
	if err != nil {
		return tx.Output{}, mw.BlindingFactor{}, err
	}

	// Both nonces derive from the shared secret, so the receiver can rewind
	// the proof with nothing but its keychain.
	rewindNonce := cry.SecretKeyFromHash(mw.HashSum([]byte("mweb/rewind"), sharedSecret[:]))
	var message cry.ProofMessage
	message[0] = features

	proof, err := cry.BulletproofGenerate(
		amount,
		blind.ToSecretKey(),
		rewindNonce,
		rewindNonce,
		message,
		ser.ToBytes(ownerData),
	)
	if err != nil {
		return tx.Output{}, mw.BlindingFactor{}, err
	}

	return tx.Output{
		Commitment: commitment,
		OwnerData:  ownerData,
		RangeProof: proof,
	}, blind, nil
}

func createOwnerData(
	features uint8,
	senderKey mw.SecretKey,
	receiver mw.StealthAddress,
	blind mw.BlindingFactor,
	amount uint64,
) (tx.OwnerData, mw.SecretKey, error) {
	senderPub, err := cry.PublicKeyOf(senderKey)
	if err != nil {
		return tx.OwnerData{}, mw.SecretKey{}, err
	}

	// Ephemeral pair r, R = r·G; key-exchange tweak t = H(r·A).
	r := cry.RandomSecretKey()
	keyExchangePub, err := cry.PublicKeyOf(r)
	if err != nil {
		return tx.OwnerData{}, mw.SecretKey{}, err
	}
	rA, err := cry.MulPublicKey(receiver.Scan, r)
	if err != nil {
		return tx.OwnerData{}, mw.SecretKey{}, err
	}
	tweakHash := mw.HashSum(rA[:])

	// One-time receiver key P = t·G + B.
	tweakPub, err := cry.PublicKeyOf(cry.SecretKeyFromHash(tweakHash))
	if err != nil {
		return tx.OwnerData{}, mw.SecretKey{}, err
	}
	receiverPub, err := cry.AddPublicKeys([]mw.PublicKey{tweakPub, receiver.Spend}, nil)
	if err != nil {
		return tx.OwnerData{}, mw.SecretKey{}, err
	}

	// Shared secret s = H(sender_sk·B); the receiver recomputes it as
	// H(spend_key·sender_pub).
	sharedPub, err := cry.MulPublicKey(receiver.Spend, senderKey)
	if err != nil {
		return tx.OwnerData{}, mw.SecretKey{}, err
	}
	sharedSecret := cry.SecretKeyFromHash(mw.HashSum(sharedPub[:]))

	plaintext := make([]byte, 40)
	copy(plaintext[:32], blind[:])
	binary.BigEndian.PutUint64(plaintext[32:], amount)
	encrypted, err := cry.AES256CTREncrypt(plaintext, sharedSecret, [16]byte{})
	if err != nil {
		return tx.OwnerData{}, mw.SecretKey{}, err
	}

	ownerData := tx.OwnerData{
		Features:          features,
		SenderPubKey:      senderPub,
		ReceiverPubKey:    receiverPub,
		KeyExchangePubKey: keyExchangePub,
		ViewTag:           tweakHash[0],
		EncryptedData:     encrypted,
	}
	sig, err := cry.SchnorrSign(senderKey, ownerData.SignedMsgHash())
	if err != nil {
		return tx.OwnerData{}, mw.SecretKey{}, err
	}
	ownerData.Signature = sig
	return ownerData, sharedSecret, nil
}
