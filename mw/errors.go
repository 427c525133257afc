// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mw

import "github.com/pkg/errors"

// Error kinds surfaced by the engine. Callers match them with errors.Is.
var (
	// ErrCryptoFailure reports a signature, range-proof, or commitment
	// arithmetic mismatch. Consensus-fatal from validation, benign from scan.
	ErrCryptoFailure = errors.New("crypto failure")

	// ErrConsensusViolation reports a failed balance, ordering, or weight rule.
	ErrConsensusViolation = errors.New("consensus violation")

	// ErrDoubleSpend reports an input referencing an output already unset in
	// the leafset.
	ErrDoubleSpend = errors.New("double spend")

	// ErrUnknownOutput reports an input referencing an output not in the MMR.
	ErrUnknownOutput = errors.New("unknown output")

	// ErrStorageFailure reports backing-store I/O or batch-commit failure.
	// The engine returns to the previous committed tip.
	ErrStorageFailure = errors.New("storage failure")

	// ErrNotFound reports an empty lookup. Not an error at protocol level.
	ErrNotFound = errors.New("not found")
)
