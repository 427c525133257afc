// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package db maps the engine's persistent records onto the kv store. The
// single store holds five logical tables keyed by a one-byte prefix. UTXO and
// MMR info records are RLP-encoded (the UTXO's output embedded as its
// canonical ser bytes); headers are stored as their ser bytes, and leaf data
// and node hashes as raw bytes.
package db

import "github.com/mwebchain/mweb/kv"

const (
	// TableLeaf holds MMR leaf data keyed by leaf hash.
	TableLeaf = kv.Table('L')
	// TableUTXO holds the UTXO index keyed by commitment.
	TableUTXO = kv.Table('U')
	// TableNode holds MMR node hashes keyed by (mmr prefix, node index).
	TableNode = kv.Table('M')
	// TableHeader holds headers keyed by hash.
	TableHeader = kv.Table('H')
	// TableInfo holds the MMR info record (latest file index).
	TableInfo = kv.Table('I')
)
