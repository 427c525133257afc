// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cry

import (
	"crypto/rand"

	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/mwebchain/mweb/mw"
)

// RandomSecretKey draws a uniformly random non-zero scalar from the CSPRNG.
func RandomSecretKey() mw.SecretKey {
	for {
		var b [32]byte
		if _, err := rand.Read(b[:]); err != nil {
			panic(err)
		}
		var s secp256k1.ModNScalar
		if overflow := s.SetBytes(&b); overflow == 0 && !s.IsZero() {
			return mw.SecretKey(b)
		}
	}
}

// RandomBlindingFactor draws a uniformly random non-zero blinding factor.
func RandomBlindingFactor() mw.BlindingFactor {
	return RandomSecretKey().ToBlindingFactor()
}
