// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cry

import (
	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"

	"github.com/mwebchain/mweb/mw"
)

// CommitTransparent creates a pedersen commitment v·H with a zero blinding
// factor.
func CommitTransparent(value uint64) (mw.Commitment, error) {
	return commit(value, &secp256k1.ModNScalar{})
}

// CommitBlinded creates a pedersen commitment r·G + v·H.
func CommitBlinded(value uint64, blind mw.BlindingFactor) (mw.Commitment, error) {
	return commit(value, scalarFromBytes(blind[:]))
}

func commit(value uint64, blind *secp256k1.ModNScalar) (mw.Commitment, error) {
	var vH, rG, sum secp256k1.JacobianPoint
	scalarMul(scalarFromU64(value), generatorH, &vH)
	scalarBaseMul(blind, &rG)
	pointAdd(&vH, &rG, &sum)

	raw, err := serializePoint(&sum)
	if err != nil {
		return mw.Commitment{}, err
	}
	return mw.Commitment(raw), nil
}

// AddCommitments homomorphically sums Σpositive − Σnegative.
func AddCommitments(positive, negative []mw.Commitment) (mw.Commitment, error) {
	sum, err := sumCommitments(positive, negative)
	if err != nil {
		return mw.Commitment{}, err
	}
	raw, err := serializePoint(sum)
	if err != nil {
		return mw.Commitment{}, err
	}
	return mw.Commitment(raw), nil
}

// CommitmentsSumToZero reports whether Σpositive − Σnegative is the point at
// infinity, i.e. the commitments balance exactly.
func CommitmentsSumToZero(positive, negative []mw.Commitment) (bool, error) {
	sum, err := sumCommitments(positive, negative)
	if err != nil {
		return false, err
	}
	return sum.Z.IsZero(), nil
}

func sumCommitments(positive, negative []mw.Commitment) (*secp256k1.JacobianPoint, error) {
	var sum secp256k1.JacobianPoint
	for _, c := range positive {
		p, err := parsePoint(c[:])
		if err != nil {
			return nil, err
		}
		pointAdd(&sum, p, &sum)
	}
	for _, c := range negative {
		p, err := parsePoint(c[:])
		if err != nil {
			return nil, err
		}
		pointNeg(p)
		pointAdd(&sum, p, &sum)
	}
	return &sum, nil
}

// AddBlindingFactors sums Σpositive − Σnegative mod the curve order.
func AddBlindingFactors(positive, negative []mw.BlindingFactor) mw.BlindingFactor {
	var sum secp256k1.ModNScalar
	for _, b := range positive {
		sum.Add(scalarFromBytes(b[:]))
	}
	for _, b := range negative {
		neg := scalarFromBytes(b[:])
		neg.Negate()
		sum.Add(neg)
	}
	return mw.BlindingFactor(scalarBytes(&sum))
}

// Blinds is a fluent accumulator of blinding factors, mirroring the offset
// discipline of the transaction builders.
type Blinds struct {
	positive []mw.BlindingFactor
	negative []mw.BlindingFactor
}

// Add appends positive terms.
func (b *Blinds) Add(factors ...mw.BlindingFactor) *Blinds {
	b.positive = append(b.positive, factors...)
	return b
}

// AddKey appends a secret key as a positive term.
func (b *Blinds) AddKey(keys ...mw.SecretKey) *Blinds {
	for _, k := range keys {
		b.positive = append(b.positive, k.ToBlindingFactor())
	}
	return b
}

// Sub appends negative terms.
func (b *Blinds) Sub(factors ...mw.BlindingFactor) *Blinds {
	b.negative = append(b.negative, factors...)
	return b
}

// SubKey appends a secret key as a negative term.
func (b *Blinds) SubKey(keys ...mw.SecretKey) *Blinds {
	for _, k := range keys {
		b.negative = append(b.negative, k.ToBlindingFactor())
	}
	return b
}

// Total returns the scalar sum.
func (b *Blinds) Total() mw.BlindingFactor {
	return AddBlindingFactors(b.positive, b.negative)
}

// BlindSwitch computes k + BLAKE2b(k·G + v·H ‖ k·J), the switch-commitment
// tweak over the J generator.
func BlindSwitch(key mw.SecretKey, value uint64) (mw.SecretKey, error) {
	commitment, err := CommitBlinded(value, key.ToBlindingFactor())
	if err != nil {
		return mw.SecretKey{}, err
	}

	var kJ secp256k1.JacobianPoint
	scalarMul(scalarFromBytes(key[:]), generatorJ, &kJ)
	kJRaw, err := serializePoint(&kJ)
	if err != nil {
		return mw.SecretKey{}, err
	}

	tweak := scalarFromHash(mw.HashSum(commitment[:], kJRaw[:]))
	tweak.Add(scalarFromBytes(key[:]))
	if tweak.IsZero() {
		return mw.SecretKey{}, errors.Wrap(mw.ErrCryptoFailure, "zero switch key")
	}
	return mw.SecretKey(scalarBytes(tweak)), nil
}
