// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cry

import (
	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"

	"github.com/mwebchain/mweb/mw"
)

// PublicKeyOf computes the compressed public key of a secret key.
func PublicKeyOf(key mw.SecretKey) (mw.PublicKey, error) {
	s := scalarFromBytes(key[:])
	if s.IsZero() {
		return mw.PublicKey{}, errors.Wrap(mw.ErrCryptoFailure, "zero secret key")
	}
	var p secp256k1.JacobianPoint
	scalarBaseMul(s, &p)
	raw, err := serializePoint(&p)
	if err != nil {
		return mw.PublicKey{}, err
	}
	return mw.PublicKey(raw), nil
}

// AddPublicKeys sums Σpositive − Σnegative as curve points.
func AddPublicKeys(positive, negative []mw.PublicKey) (mw.PublicKey, error) {
	sum, err := sumPublicKeys(positive, negative)
	if err != nil {
		return mw.PublicKey{}, err
	}
	raw, err := serializePoint(sum)
	if err != nil {
		return mw.PublicKey{}, err
	}
	return mw.PublicKey(raw), nil
}

// PublicKeysSumToZero reports whether Σpositive − Σnegative is the point at
// infinity.
func PublicKeysSumToZero(positive, negative []mw.PublicKey) (bool, error) {
	sum, err := sumPublicKeys(positive, negative)
	if err != nil {
		return false, err
	}
	return sum.Z.IsZero(), nil
}

func sumPublicKeys(positive, negative []mw.PublicKey) (*secp256k1.JacobianPoint, error) {
	var sum secp256k1.JacobianPoint
	for _, k := range positive {
		p, err := parsePoint(k[:])
		if err != nil {
			return nil, err
		}
		pointAdd(&sum, p, &sum)
	}
	for _, k := range negative {
		p, err := parsePoint(k[:])
		if err != nil {
			return nil, err
		}
		pointNeg(p)
		pointAdd(&sum, p, &sum)
	}
	return &sum, nil
}

// MulPublicKey computes key·P.
func MulPublicKey(pub mw.PublicKey, key mw.SecretKey) (mw.PublicKey, error) {
	p, err := parsePoint(pub[:])
	if err != nil {
		return mw.PublicKey{}, err
	}
	var result secp256k1.JacobianPoint
	scalarMul(scalarFromBytes(key[:]), p, &result)
	raw, err := serializePoint(&result)
	if err != nil {
		return mw.PublicKey{}, err
	}
	return mw.PublicKey(raw), nil
}

// AddSecretKeys sums two scalars mod the curve order.
func AddSecretKeys(k1, k2 mw.SecretKey) mw.SecretKey {
	s := scalarFromBytes(k1[:])
	s.Add(scalarFromBytes(k2[:]))
	return mw.SecretKey(scalarBytes(s))
}

// MulSecretKeys multiplies two scalars mod the curve order.
func MulSecretKeys(k1, k2 mw.SecretKey) mw.SecretKey {
	s := scalarFromBytes(k1[:])
	s.Mul(scalarFromBytes(k2[:]))
	return mw.SecretKey(scalarBytes(s))
}

// SecretKeyFromHash reduces a digest to a curve scalar.
func SecretKeyFromHash(h mw.Hash) mw.SecretKey {
	return mw.SecretKey(scalarBytes(scalarFromHash(h)))
}
