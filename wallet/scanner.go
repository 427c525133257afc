// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package wallet

import (
	"sync"

	"github.com/mwebchain/mweb/co"
	"github.com/mwebchain/mweb/tx"
)

// ScanProgress reports per-block progress of a full scan.
type ScanProgress func(height, tipHeight uint64)

// ScanForOutputs walks the chain from genesis and rebuilds the coin set by
// rewinding every output against the scan key. Rewind failures per candidate
// output are swallowed: they are simply not our coins. Outputs of one block
// are rewound in parallel.
func (w *Wallet) ScanForOutputs(chain Chain, progress ScanProgress) error {
	if err := w.store.RewindTo(0); err != nil {
		return err
	}
	tipHeight, err := chain.GetTipHeight()
	if err != nil {
		return err
	}

	for height := uint64(1); height <= tipHeight; height++ {
		b, err := chain.GetBlock(height)
		if err != nil {
			return err
		}
		if b == nil {
			continue // host blocks without an extension block
		}

		found := w.rewindAll(b.Outputs())
		for i := range found {
			found[i].BlockHeight = b.Height()
		}
		if len(found) > 0 {
			if err := w.store.AddCoins(found); err != nil {
				return err
			}
		}
		for _, in := range b.Inputs() {
			coin, err := w.store.GetCoin(in.Commitment)
			if err != nil || coin == nil {
				continue
			}
			if err := w.store.MarkSpent(in.Commitment, b.Hash()); err != nil {
				return err
			}
		}
		if progress != nil {
			progress(height, tipHeight)
		}
	}
	logger.Info("scan finished", "tip", tipHeight)
	return nil
}

// rewindAll rewinds outputs across CPUs, keeping the matches in block order.
func (w *Wallet) rewindAll(outputs []tx.Output) []Coin {
	var mu sync.Mutex
	found := make(map[int]Coin)
	co.Parallel(func(enqueue co.Enqueue) {
		for i := range outputs {
			i := i
			enqueue(func() {
				coin, err := w.RewindOutput(outputs[i])
				if err != nil {
					return
				}
				mu.Lock()
				found[i] = *coin
				mu.Unlock()
			})
		}
	})

	coins := make([]Coin, 0, len(found))
	for i := range outputs {
		if coin, ok := found[i]; ok {
			coins = append(coins, coin)
		}
	}
	return coins
}
