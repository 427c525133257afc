// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cry

import (
	"crypto/aes"
	"crypto/cipher"

	"github.com/pkg/errors"

	"github.com/mwebchain/mweb/mw"
)

// AES256CTREncrypt encrypts data under key with a 16-byte IV.
func AES256CTREncrypt(data []byte, key mw.SecretKey, iv [16]byte) ([]byte, error) {
	return aes256CTR(data, key, iv)
}

// AES256CTRDecrypt decrypts data under key with a 16-byte IV.
// CTR mode is symmetric.
func AES256CTRDecrypt(data []byte, key mw.SecretKey, iv [16]byte) ([]byte, error) {
	return aes256CTR(data, key, iv)
}

func aes256CTR(data []byte, key mw.SecretKey, iv [16]byte) ([]byte, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, errors.Wrap(mw.ErrCryptoFailure, err.Error())
	}
	out := make([]byte, len(data))
	cipher.NewCTR(block, iv[:]).XORKeyStream(out, data)
	return out, nil
}
