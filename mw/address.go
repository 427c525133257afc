// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mw

import (
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/pkg/errors"

	"github.com/mwebchain/mweb/ser"
)

// ErrInvalidAddress is returned on a bech32 decode failure or an HRP mismatch.
var ErrInvalidAddress = errors.New("invalid address")

// StealthAddress is the (A, B) scan/spend pubkey pair. The sender derives a
// one-time output pubkey from it that only the receiver can recognize.
type StealthAddress struct {
	Scan  PublicKey // A
	Spend PublicKey // B
}

// A returns the scan pubkey.
func (a StealthAddress) A() PublicKey { return a.Scan }

// B returns the spend pubkey.
func (a StealthAddress) B() PublicKey { return a.Spend }

// Equal reports whether two stealth addresses are the same keypair.
func (a StealthAddress) Equal(other StealthAddress) bool {
	return a.Scan == other.Scan && a.Spend == other.Spend
}

// Serialize implements ser.Serializable.
func (a StealthAddress) Serialize(s *ser.Serializer) {
	s.Write(a.Scan).Write(a.Spend)
}

// DeserializeStealthAddress reads a StealthAddress.
func DeserializeStealthAddress(d *ser.Deserializer) (a StealthAddress) {
	a.Scan = DeserializePublicKey(d)
	a.Spend = DeserializePublicKey(d)
	return
}

// Encode returns the bech32 form of the address under the given HRP.
func (a StealthAddress) Encode(hrp string) (string, error) {
	conv, err := bech32.ConvertBits(ser.ToBytes(a), 8, 5, true)
	if err != nil {
		return "", errors.Wrap(ErrInvalidAddress, err.Error())
	}
	return bech32.EncodeM(hrp, conv)
}

// DecodeStealthAddress parses a bech32m stealth address and checks its HRP.
func DecodeStealthAddress(hrp, addr string) (StealthAddress, error) {
	gotHRP, data, err := bech32.DecodeNoLimit(addr)
	if err != nil {
		return StealthAddress{}, errors.Wrap(ErrInvalidAddress, err.Error())
	}
	if gotHRP != hrp {
		return StealthAddress{}, errors.Wrapf(ErrInvalidAddress, "hrp %q, want %q", gotHRP, hrp)
	}
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return StealthAddress{}, errors.Wrap(ErrInvalidAddress, err.Error())
	}
	d := ser.NewDeserializer(raw)
	a := DeserializeStealthAddress(d)
	if err := d.Finish(); err != nil {
		return StealthAddress{}, errors.Wrap(ErrInvalidAddress, err.Error())
	}
	return a, nil
}

// Bech32Address is a destination on the host chain, kept in its encoded
// string form. Its wire form is the one-byte length-prefixed address string.
type Bech32Address string

// Valid reports whether the address decodes as bech32 under hrp.
func (b Bech32Address) Valid(hrp string) bool {
	gotHRP, _, err := bech32.DecodeNoLimit(string(b))
	return err == nil && gotHRP == hrp
}

// ValidEncoding reports whether the address decodes as bech32 at all; the
// host chain's HRP is not the engine's to know.
func (b Bech32Address) ValidEncoding() bool {
	_, _, err := bech32.DecodeNoLimit(string(b))
	return err == nil
}

// Serialize implements ser.Serializable.
func (b Bech32Address) Serialize(s *ser.Serializer) {
	s.WriteVarBytes([]byte(b))
}

// DeserializeBech32Address reads a Bech32Address.
func DeserializeBech32Address(d *ser.Deserializer) Bech32Address {
	raw := d.ReadVarBytes()
	addr := Bech32Address(raw)
	if strings.ContainsRune(string(addr), 0) {
		d.Fail(ser.ErrInvalidSerialization)
		return ""
	}
	return addr
}
