// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package cry is a thin, stateless façade over secp256k1. Every primitive
// returns a recoverable failure rather than aborting; callers decide whether
// that failure is fatal (consensus check) or benign (scan miss).
package cry

import (
	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"

	"github.com/mwebchain/mweb/mw"
)

// Pedersen value generator H and switch generator J. Both are
// nothing-up-my-sleeve points with unknown discrete log relative to G,
// as fixed by secp256k1-zkp.
var (
	generatorH = mustParsePoint([]byte{
		0x02,
		0x50, 0x92, 0x9b, 0x74, 0xc1, 0xa0, 0x49, 0x54,
		0xb7, 0x8b, 0x4b, 0x60, 0x35, 0xe9, 0x7a, 0x5e,
		0x07, 0x8a, 0x5a, 0x0f, 0x28, 0xec, 0x96, 0xd5,
		0x47, 0xbf, 0xee, 0x9a, 0xce, 0x80, 0x3a, 0xc0,
	})
	generatorJ = mustParsePoint([]byte{
		0x02,
		0xb8, 0x60, 0xf5, 0x67, 0x95, 0xfc, 0x03, 0xf3,
		0xc2, 0x16, 0x85, 0x38, 0x3d, 0x1b, 0x5a, 0x2f,
		0x29, 0x54, 0xf4, 0x9b, 0x7e, 0x39, 0x8b, 0x8d,
		0x2a, 0x01, 0x93, 0x93, 0x36, 0x21, 0x15, 0x5f,
	})
)

func mustParsePoint(b []byte) *secp256k1.JacobianPoint {
	pub, err := secp256k1.ParsePubKey(b)
	if err != nil {
		panic(err)
	}
	var p secp256k1.JacobianPoint
	pub.AsJacobian(&p)
	return &p
}

// scalarFromBytes reduces b mod the curve order.
func scalarFromBytes(b []byte) *secp256k1.ModNScalar {
	var s secp256k1.ModNScalar
	s.SetByteSlice(b)
	return &s
}

// scalarFromHash reduces a hash mod the curve order.
func scalarFromHash(h mw.Hash) *secp256k1.ModNScalar {
	return scalarFromBytes(h[:])
}

func scalarBytes(s *secp256k1.ModNScalar) (out [32]byte) {
	s.PutBytes(&out)
	return
}

// scalarFromU64 lifts a uint64 into a curve scalar.
func scalarFromU64(v uint64) *secp256k1.ModNScalar {
	var b [8]byte
	b[0] = byte(v >> 56)
	b[1] = byte(v >> 48)
	b[2] = byte(v >> 40)
	b[3] = byte(v >> 32)
	b[4] = byte(v >> 24)
	b[5] = byte(v >> 16)
	b[6] = byte(v >> 8)
	b[7] = byte(v)
	return scalarFromBytes(b[:])
}

// parsePoint decodes a compressed point, rejecting infinity.
func parsePoint(b []byte) (*secp256k1.JacobianPoint, error) {
	pub, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return nil, errors.Wrap(mw.ErrCryptoFailure, err.Error())
	}
	var p secp256k1.JacobianPoint
	pub.AsJacobian(&p)
	return &p, nil
}

// serializePoint encodes an affine-normalized point in compressed form.
// Fails on the point at infinity, which has no compressed encoding.
func serializePoint(p *secp256k1.JacobianPoint) ([mw.PublicKeyLen]byte, error) {
	var out [mw.PublicKeyLen]byte
	if p.Z.IsZero() {
		return out, errors.Wrap(mw.ErrCryptoFailure, "point at infinity")
	}
	affine := *p
	affine.ToAffine()
	pub := secp256k1.NewPublicKey(&affine.X, &affine.Y)
	copy(out[:], pub.SerializeCompressed())
	return out, nil
}

// scalarMul computes k·P into result.
func scalarMul(k *secp256k1.ModNScalar, p *secp256k1.JacobianPoint, result *secp256k1.JacobianPoint) {
	secp256k1.ScalarMultNonConst(k, p, result)
}

// scalarBaseMul computes k·G into result.
func scalarBaseMul(k *secp256k1.ModNScalar, result *secp256k1.JacobianPoint) {
	secp256k1.ScalarBaseMultNonConst(k, result)
}

// pointAdd computes p1 + p2 into result.
func pointAdd(p1, p2, result *secp256k1.JacobianPoint) {
	secp256k1.AddNonConst(p1, p2, result)
}

// pointNeg negates p in place.
func pointNeg(p *secp256k1.JacobianPoint) {
	p.Y.Negate(1).Normalize()
}
