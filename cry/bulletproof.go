// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cry

import (
	"encoding/binary"
	"sync/atomic"

	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"

	"github.com/mwebchain/mweb/co"
	"github.com/mwebchain/mweb/mw"
)

// The range proof shows that a committed value lies in [0, 2^64) without
// revealing it. The construction is a single-value Bulletproof over the
// pedersen generators: V = blind·G + value·H, with a log-round inner-product
// argument. The prover derives its blinding scalars from two nonces; the
// rewind nonce additionally lets the holder recover (value, blind, message)
// from the proof alone.

// proofBits is the bit width of the proven range.
const proofBits = 64

// proofRounds is the number of inner-product halving rounds.
const proofRounds = 6 // log2(proofBits)

// ProofLen is the serialized length of a range proof:
// A, S, T1, T2 (33 each), taux, mu, t (32 each), 6 L/R pairs (33 each),
// final a, b (32 each).
const ProofLen = 4*33 + 3*32 + proofRounds*2*33 + 2*32

// ProofMessageLen is the length of the prover-chosen message recoverable by
// rewinding.
const ProofMessageLen = 20

// ProofMessage is embedded in the proof and recovered on rewind.
type ProofMessage [ProofMessageLen]byte

// ProofData pairs a proof with the commitment and extra data it binds.
type ProofData struct {
	Commitment mw.Commitment
	Proof      mw.RangeProof
	ExtraData  []byte
}

// RewoundProof is the witness recovered from a proof by its rewind nonce.
type RewoundProof struct {
	Amount  uint64
	Blind   mw.BlindingFactor
	Message ProofMessage
}

type scalar = secp256k1.ModNScalar
type point = secp256k1.JacobianPoint

// Per-bit generator vectors and the inner-product binding point, derived
// nothing-up-my-sleeve by hashing to the curve.
var (
	genVecG = deriveGenerators('G')
	genVecH = deriveGenerators('H')
	genQ    = hashToPoint([]byte("mweb.bp.Q"))
)

func deriveGenerators(label byte) []*point {
	out := make([]*point, proofBits)
	for i := range out {
		seed := append([]byte("mweb.bp.gen."), label)
		seed = binary.BigEndian.AppendUint32(seed, uint32(i))
		out[i] = hashToPoint(seed)
	}
	return out
}

// hashToPoint maps seed to a curve point by try-and-increment on the
// x-coordinate, taking the even-y root.
func hashToPoint(seed []byte) *point {
	for counter := uint32(0); ; counter++ {
		var ctr [4]byte
		binary.BigEndian.PutUint32(ctr[:], counter)
		h := mw.HashSum(seed, ctr[:])

		var x secp256k1.FieldVal
		if overflow := x.SetByteSlice(h[:]); overflow {
			continue
		}
		var y secp256k1.FieldVal
		if !secp256k1.DecompressY(&x, false, &y) {
			continue
		}
		var z secp256k1.FieldVal
		z.SetInt(1)
		p := point{X: x, Y: y, Z: z}
		return &p
	}
}

// transcript derives Fiat-Shamir challenges by hash chaining.
type transcript struct {
	state mw.Hash
}

func (t *transcript) append(data ...[]byte) {
	buf := append([]byte{}, t.state[:]...)
	for _, d := range data {
		buf = append(buf, d...)
	}
	t.state = mw.HashSum(buf)
}

func (t *transcript) challenge(label string) *scalar {
	for {
		t.append([]byte(label))
		s := scalarFromHash(t.state)
		if !s.IsZero() {
			return s
		}
	}
}

// nonceScalar derives a deterministic scalar from a nonce and label.
func nonceScalar(nonce mw.SecretKey, label string) *scalar {
	return scalarFromHash(mw.HashSum([]byte("mweb.bp.nonce"), nonce[:], []byte(label)))
}

// nonceScalarIdx derives the i-th scalar of a labeled nonce vector.
func nonceScalarIdx(nonce mw.SecretKey, label string, i int) *scalar {
	var idx [4]byte
	binary.BigEndian.PutUint32(idx[:], uint32(i))
	return scalarFromHash(mw.HashSum([]byte("mweb.bp.nonce"), nonce[:], []byte(label), idx[:]))
}

// BulletproofGenerate proves amount ∈ [0, 2^64) for commit(amount, blind).
// privateNonce seeds the prover's random vectors; rewindNonce seeds the
// blinding scalars so the nonce holder can later rewind the proof; message
// and extraData are bound into the proof (extraData by the transcript,
// message recoverable on rewind).
func BulletproofGenerate(
	amount uint64,
	blind mw.SecretKey,
	privateNonce mw.SecretKey,
	rewindNonce mw.SecretKey,
	message ProofMessage,
	extraData []byte,
) (mw.RangeProof, error) {
	commitment, err := CommitBlinded(amount, blind.ToBlindingFactor())
	if err != nil {
		return nil, err
	}

	// Bit decomposition: aL holds the bits, aR = aL - 1.
	one := new(scalar).SetInt(1)
	aL := make([]*scalar, proofBits)
	aR := make([]*scalar, proofBits)
	for i := 0; i < proofBits; i++ {
		aL[i] = new(scalar).SetInt(uint32(amount >> uint(i) & 1))
		aR[i] = new(scalar).Set(aL[i])
		aR[i].Add(new(scalar).Set(one).Negate())
	}

	// alpha carries the rewind payload; rho blinds S.
	embedded := embedWitness(amount, message)
	alpha := nonceScalar(rewindNonce, "alpha")
	alpha.Add(embedded)
	rho := nonceScalar(rewindNonce, "rho")

	bigA := vectorCommit(alpha, aL, aR)
	sL := make([]*scalar, proofBits)
	sR := make([]*scalar, proofBits)
	for i := 0; i < proofBits; i++ {
		sL[i] = nonceScalarIdx(privateNonce, "sL", i)
		sR[i] = nonceScalarIdx(privateNonce, "sR", i)
	}
	bigS := vectorCommit(rho, sL, sR)

	aBytes, err := serializePoint(bigA)
	if err != nil {
		return nil, err
	}
	sBytes, err := serializePoint(bigS)
	if err != nil {
		return nil, err
	}

	var tr transcript
	tr.append(commitment[:], extraData)
	tr.append(aBytes[:], sBytes[:])
	y := tr.challenge("y")
	z := tr.challenge("z")

	yPow := scalarPowers(y, proofBits)
	twoPow := scalarPowers(new(scalar).SetInt(2), proofBits)
	zz := new(scalar).Set(z)
	zz.Mul(z)

	// l(X) = aL - z·1 + sL·X ; r(X) = y^n ∘ (aR + z·1 + sR·X) + z²·2^n
	l0 := make([]*scalar, proofBits)
	r0 := make([]*scalar, proofBits)
	r1 := make([]*scalar, proofBits)
	negZ := new(scalar).Set(z)
	negZ.Negate()
	for i := 0; i < proofBits; i++ {
		l0[i] = new(scalar).Set(aL[i])
		l0[i].Add(negZ)

		r0[i] = new(scalar).Set(aR[i])
		r0[i].Add(z)
		r0[i].Mul(yPow[i])
		zz2 := new(scalar).Set(zz)
		zz2.Mul(twoPow[i])
		r0[i].Add(zz2)

		r1[i] = new(scalar).Set(sR[i])
		r1[i].Mul(yPow[i])
	}

	t1 := innerProduct(l0, r1)
	t1.Add(innerProduct(sL, r0))
	t2 := innerProduct(sL, r1)

	tau1 := nonceScalar(rewindNonce, "tau1")
	tau2 := nonceScalar(rewindNonce, "tau2")
	bigT1 := commitScalars(t1, tau1)
	bigT2 := commitScalars(t2, tau2)

	t1Bytes, err := serializePoint(bigT1)
	if err != nil {
		return nil, err
	}
	t2Bytes, err := serializePoint(bigT2)
	if err != nil {
		return nil, err
	}
	tr.append(t1Bytes[:], t2Bytes[:])
	x := tr.challenge("x")

	xx := new(scalar).Set(x)
	xx.Mul(x)

	// taux = tau1·x + tau2·x² + z²·blind ; mu = alpha + rho·x
	taux := new(scalar).Set(tau1)
	taux.Mul(x)
	t2x := new(scalar).Set(tau2)
	t2x.Mul(xx)
	taux.Add(t2x)
	zb := new(scalar).Set(zz)
	zb.Mul(scalarFromBytes(blind[:]))
	taux.Add(zb)

	mu := new(scalar).Set(rho)
	mu.Mul(x)
	mu.Add(alpha)

	lVec := make([]*scalar, proofBits)
	rVec := make([]*scalar, proofBits)
	for i := 0; i < proofBits; i++ {
		lVec[i] = new(scalar).Set(sL[i])
		lVec[i].Mul(x)
		lVec[i].Add(l0[i])

		rVec[i] = new(scalar).Set(r1[i])
		rVec[i].Mul(x)
		rVec[i].Add(r0[i])
	}
	t := innerProduct(lVec, rVec)

	tauxBytes := scalarBytes(taux)
	muBytes := scalarBytes(mu)
	tBytes := scalarBytes(t)
	tr.append(tauxBytes[:], muBytes[:], tBytes[:])
	w := tr.challenge("w")

	var q point
	scalarMul(w, genQ, &q)

	// Fold the inner product down to two scalars.
	gVec := clonePoints(genVecG)
	hVec := make([]*point, proofBits)
	yInv := new(scalar).Set(y)
	yInv.InverseNonConst()
	yInvPow := scalarPowers(yInv, proofBits)
	for i := 0; i < proofBits; i++ {
		hVec[i] = new(point)
		scalarMul(yInvPow[i], genVecH[i], hVec[i])
	}

	proof := make([]byte, 0, ProofLen)
	proof = append(proof, aBytes[:]...)
	proof = append(proof, sBytes[:]...)
	proof = append(proof, t1Bytes[:]...)
	proof = append(proof, t2Bytes[:]...)
	proof = append(proof, tauxBytes[:]...)
	proof = append(proof, muBytes[:]...)
	proof = append(proof, tBytes[:]...)

	for len(lVec) > 1 {
		half := len(lVec) / 2
		cL := innerProduct(lVec[:half], rVec[half:])
		cR := innerProduct(lVec[half:], rVec[:half])

		bigL := multiExp(lVec[:half], gVec[half:], rVec[half:], hVec[:half])
		addScaled(bigL, cL, &q)
		bigR := multiExp(lVec[half:], gVec[:half], rVec[:half], hVec[half:])
		addScaled(bigR, cR, &q)

		lBytes, err := serializePoint(bigL)
		if err != nil {
			return nil, err
		}
		rBytes, err := serializePoint(bigR)
		if err != nil {
			return nil, err
		}
		proof = append(proof, lBytes[:]...)
		proof = append(proof, rBytes[:]...)

		tr.append(lBytes[:], rBytes[:])
		u := tr.challenge("u")
		uInv := new(scalar).Set(u)
		uInv.InverseNonConst()

		lVec = foldScalars(lVec, u, uInv)
		rVec = foldScalars(rVec, uInv, u)
		gVec = foldPoints(gVec, uInv, u)
		hVec = foldPoints(hVec, u, uInv)
	}

	aFinal := scalarBytes(lVec[0])
	bFinal := scalarBytes(rVec[0])
	proof = append(proof, aFinal[:]...)
	proof = append(proof, bFinal[:]...)
	return proof, nil
}

// BulletproofVerify checks a single proof against its commitment and extra
// data.
func BulletproofVerify(data ProofData) error {
	p, err := parseProof(data.Proof)
	if err != nil {
		return err
	}
	commitPoint, err := parsePoint(data.Commitment[:])
	if err != nil {
		return err
	}

	var tr transcript
	tr.append(data.Commitment[:], data.ExtraData)
	tr.append(p.aBytes, p.sBytes)
	y := tr.challenge("y")
	z := tr.challenge("z")
	tr.append(p.t1Bytes, p.t2Bytes)
	x := tr.challenge("x")
	tr.append(p.tauxBytes, p.muBytes, p.tBytes)
	w := tr.challenge("w")

	yPow := scalarPowers(y, proofBits)
	twoPow := scalarPowers(new(scalar).SetInt(2), proofBits)
	zz := new(scalar).Set(z)
	zz.Mul(z)
	xx := new(scalar).Set(x)
	xx.Mul(x)

	// t·H + taux·G == z²·V + δ(y,z)·H + x·T1 + x²·T2
	delta := deltaYZ(z, zz, yPow, twoPow)

	lhs := commitScalars(p.t, p.taux)
	var rhs point
	scalarMul(zz, commitPoint, &rhs)
	addScaled(&rhs, delta, generatorH)
	addScaled(&rhs, x, p.bigT1)
	addScaled(&rhs, xx, p.bigT2)
	if !pointsEqual(lhs, &rhs) {
		return errors.Wrap(mw.ErrCryptoFailure, "range proof t check failed")
	}

	// Inner-product check. P = A + x·S - mu·G + Σ(-z)·Gi
	// + Σ(z·y^i + z²·2^i)·(y^-i·Hi) + t·(w·Q), folded by the round
	// challenges down to a·G' + b·H' + a·b·(w·Q).
	var q point
	scalarMul(w, genQ, &q)

	gVec := clonePoints(genVecG)
	hVec := make([]*point, proofBits)
	yInv := new(scalar).Set(y)
	yInv.InverseNonConst()
	yInvPow := scalarPowers(yInv, proofBits)
	for i := 0; i < proofBits; i++ {
		hVec[i] = new(point)
		scalarMul(yInvPow[i], genVecH[i], hVec[i])
	}

	acc := new(point)
	*acc = *p.bigA
	addScaled(acc, x, p.bigS)
	negMu := new(scalar).Set(p.mu)
	negMu.Negate()
	var muG point
	scalarBaseMul(negMu, &muG)
	pointAdd(acc, &muG, acc)

	negZ := new(scalar).Set(z)
	negZ.Negate()
	for i := 0; i < proofBits; i++ {
		addScaled(acc, negZ, gVec[i])
		hCoeff := new(scalar).Set(zz)
		hCoeff.Mul(twoPow[i])
		zy := new(scalar).Set(z)
		zy.Mul(yPow[i])
		hCoeff.Add(zy)
		addScaled(acc, hCoeff, hVec[i])
	}
	addScaled(acc, p.t, &q)

	for round := 0; round < proofRounds; round++ {
		lBytes := p.rounds[round][0]
		rBytes := p.rounds[round][1]
		bigL, err := parsePoint(lBytes)
		if err != nil {
			return err
		}
		bigR, err := parsePoint(rBytes)
		if err != nil {
			return err
		}
		tr.append(lBytes, rBytes)
		u := tr.challenge("u")
		uInv := new(scalar).Set(u)
		uInv.InverseNonConst()
		uu := new(scalar).Set(u)
		uu.Mul(u)
		uuInv := new(scalar).Set(uInv)
		uuInv.Mul(uInv)

		addScaled(acc, uu, bigL)
		addScaled(acc, uuInv, bigR)

		gVec = foldPoints(gVec, uInv, u)
		hVec = foldPoints(hVec, u, uInv)
	}

	ab := new(scalar).Set(p.a)
	ab.Mul(p.b)
	var expect point
	scalarMul(p.a, gVec[0], &expect)
	addScaled(&expect, p.b, hVec[0])
	addScaled(&expect, ab, &q)

	if !pointsEqual(acc, &expect) {
		return errors.Wrap(mw.ErrCryptoFailure, "range proof inner product check failed")
	}
	return nil
}

// BulletproofVerifyBatch verifies proofs across CPUs. Any single failure
// fails the batch.
func BulletproofVerifyBatch(proofs []ProofData) error {
	var failed atomic.Bool
	co.Parallel(func(enqueue co.Enqueue) {
		for i := range proofs {
			data := proofs[i]
			enqueue(func() {
				if failed.Load() {
					return
				}
				if err := BulletproofVerify(data); err != nil {
					failed.Store(true)
				}
			})
		}
	})
	if failed.Load() {
		return errors.Wrap(mw.ErrCryptoFailure, "batch range proof verify failed")
	}
	return nil
}

// BulletproofRewind recovers (amount, blind, message) from a proof using its
// rewind nonce, then cross-checks the commitment.
func BulletproofRewind(
	commit mw.Commitment,
	proof mw.RangeProof,
	extraData []byte,
	rewindNonce mw.SecretKey,
) (*RewoundProof, error) {
	p, err := parseProof(proof)
	if err != nil {
		return nil, err
	}

	var tr transcript
	tr.append(commit[:], extraData)
	tr.append(p.aBytes, p.sBytes)
	tr.challenge("y")
	z := tr.challenge("z")
	tr.append(p.t1Bytes, p.t2Bytes)
	x := tr.challenge("x")

	// mu = alpha_base + embedded + rho·x
	embedded := new(scalar).Set(p.mu)
	rhoX := nonceScalar(rewindNonce, "rho")
	rhoX.Mul(x)
	rhoX.Negate()
	embedded.Add(rhoX)
	alphaBase := nonceScalar(rewindNonce, "alpha")
	alphaBase.Negate()
	embedded.Add(alphaBase)

	amount, message, ok := extractWitness(embedded)
	if !ok {
		return nil, errors.Wrap(mw.ErrCryptoFailure, "rewind nonce mismatch")
	}

	// taux = tau1·x + tau2·x² + z²·blind
	blind := new(scalar).Set(p.taux)
	tau1x := nonceScalar(rewindNonce, "tau1")
	tau1x.Mul(x)
	tau1x.Negate()
	blind.Add(tau1x)
	xx := new(scalar).Set(x)
	xx.Mul(x)
	tau2xx := nonceScalar(rewindNonce, "tau2")
	tau2xx.Mul(xx)
	tau2xx.Negate()
	blind.Add(tau2xx)
	zzInv := new(scalar).Set(z)
	zzInv.Mul(z)
	zzInv.InverseNonConst()
	blind.Mul(zzInv)

	blindBytes := scalarBytes(blind)
	recomputed, err := CommitBlinded(amount, mw.BlindingFactor(blindBytes))
	if err != nil {
		return nil, err
	}
	if recomputed != commit {
		return nil, errors.Wrap(mw.ErrCryptoFailure, "rewound witness does not match commitment")
	}

	return &RewoundProof{
		Amount:  amount,
		Blind:   mw.BlindingFactor(blindBytes),
		Message: message,
	}, nil
}

// embedWitness packs (amount, message) into a scalar:
// 4 zero bytes ‖ 20-byte message ‖ 8-byte big-endian amount.
func embedWitness(amount uint64, message ProofMessage) *scalar {
	var b [32]byte
	copy(b[4:24], message[:])
	binary.BigEndian.PutUint64(b[24:], amount)
	var s scalar
	s.SetBytes(&b)
	return &s
}

func extractWitness(s *scalar) (uint64, ProofMessage, bool) {
	b := scalarBytes(s)
	for _, pad := range b[:4] {
		if pad != 0 {
			return 0, ProofMessage{}, false
		}
	}
	var msg ProofMessage
	copy(msg[:], b[4:24])
	return binary.BigEndian.Uint64(b[24:]), msg, true
}

// deltaYZ computes (z - z²)·Σy^i - z³·Σ2^i.
func deltaYZ(z, zz *scalar, yPow, twoPow []*scalar) *scalar {
	ySum := new(scalar)
	for _, p := range yPow {
		ySum.Add(p)
	}
	twoSum := new(scalar)
	for _, p := range twoPow {
		twoSum.Add(p)
	}
	negZZ := new(scalar).Set(zz)
	negZZ.Negate()
	coeff := new(scalar).Set(z)
	coeff.Add(negZZ)
	ySum.Mul(coeff)

	zzz := new(scalar).Set(zz)
	zzz.Mul(z)
	zzz.Negate()
	twoSum.Mul(zzz)
	ySum.Add(twoSum)
	return ySum
}

type parsedProof struct {
	aBytes, sBytes, t1Bytes, t2Bytes []byte
	tauxBytes, muBytes, tBytes       []byte
	bigA, bigS, bigT1, bigT2         *point
	taux, mu, t, a, b                *scalar
	rounds                           [proofRounds][2][]byte
}

func parseProof(proof mw.RangeProof) (*parsedProof, error) {
	if len(proof) != ProofLen {
		return nil, errors.Wrapf(mw.ErrCryptoFailure, "range proof length %d", len(proof))
	}
	p := &parsedProof{}
	off := 0
	next := func(n int) []byte {
		b := proof[off : off+n]
		off += n
		return b
	}
	p.aBytes = next(33)
	p.sBytes = next(33)
	p.t1Bytes = next(33)
	p.t2Bytes = next(33)
	p.tauxBytes = next(32)
	p.muBytes = next(32)
	p.tBytes = next(32)
	for i := 0; i < proofRounds; i++ {
		p.rounds[i][0] = next(33)
		p.rounds[i][1] = next(33)
	}
	aBytes := next(32)
	bBytes := next(32)

	var err error
	if p.bigA, err = parsePoint(p.aBytes); err != nil {
		return nil, err
	}
	if p.bigS, err = parsePoint(p.sBytes); err != nil {
		return nil, err
	}
	if p.bigT1, err = parsePoint(p.t1Bytes); err != nil {
		return nil, err
	}
	if p.bigT2, err = parsePoint(p.t2Bytes); err != nil {
		return nil, err
	}
	p.taux = scalarFromBytes(p.tauxBytes)
	p.mu = scalarFromBytes(p.muBytes)
	p.t = scalarFromBytes(p.tBytes)
	p.a = scalarFromBytes(aBytes)
	p.b = scalarFromBytes(bBytes)
	return p, nil
}

// vectorCommit computes blind·G + Σ l_i·Gvec_i + Σ r_i·Hvec_i.
func vectorCommit(blind *scalar, l, r []*scalar) *point {
	var acc point
	scalarBaseMul(blind, &acc)
	for i := range l {
		addScaled(&acc, l[i], genVecG[i])
		addScaled(&acc, r[i], genVecH[i])
	}
	return &acc
}

// commitScalars computes v·H + b·G.
func commitScalars(v, b *scalar) *point {
	var vH, bG, sum point
	scalarMul(v, generatorH, &vH)
	scalarBaseMul(b, &bG)
	pointAdd(&vH, &bG, &sum)
	return &sum
}

// multiExp computes Σ s1_i·p1_i + Σ s2_i·p2_i.
func multiExp(s1 []*scalar, p1 []*point, s2 []*scalar, p2 []*point) *point {
	var acc point
	for i := range s1 {
		addScaled(&acc, s1[i], p1[i])
	}
	for i := range s2 {
		addScaled(&acc, s2[i], p2[i])
	}
	return &acc
}

// addScaled adds k·p into acc.
func addScaled(acc *point, k *scalar, p *point) {
	var kp point
	scalarMul(k, p, &kp)
	pointAdd(acc, &kp, acc)
}

func pointsEqual(p1, p2 *point) bool {
	a := *p1
	b := *p2
	if a.Z.IsZero() || b.Z.IsZero() {
		return a.Z.IsZero() && b.Z.IsZero()
	}
	a.ToAffine()
	b.ToAffine()
	return a.X.Equals(&b.X) && a.Y.Equals(&b.Y)
}

func scalarPowers(base *scalar, n int) []*scalar {
	out := make([]*scalar, n)
	out[0] = new(scalar).SetInt(1)
	for i := 1; i < n; i++ {
		out[i] = new(scalar).Set(out[i-1])
		out[i].Mul(base)
	}
	return out
}

func innerProduct(a, b []*scalar) *scalar {
	sum := new(scalar)
	for i := range a {
		term := new(scalar).Set(a[i])
		term.Mul(b[i])
		sum.Add(term)
	}
	return sum
}

func foldScalars(v []*scalar, lo, hi *scalar) []*scalar {
	half := len(v) / 2
	out := make([]*scalar, half)
	for i := 0; i < half; i++ {
		a := new(scalar).Set(v[i])
		a.Mul(lo)
		b := new(scalar).Set(v[half+i])
		b.Mul(hi)
		a.Add(b)
		out[i] = a
	}
	return out
}

func foldPoints(v []*point, lo, hi *scalar) []*point {
	half := len(v) / 2
	out := make([]*point, half)
	for i := 0; i < half; i++ {
		acc := new(point)
		scalarMul(lo, v[i], acc)
		addScaled(acc, hi, v[half+i])
		out[i] = acc
	}
	return out
}

func clonePoints(v []*point) []*point {
	out := make([]*point, len(v))
	for i, p := range v {
		cp := *p
		out[i] = &cp
	}
	return out
}
