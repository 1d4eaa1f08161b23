// Copyright (c) 2026 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger holds the fundamental types shared across the staking ledger.
package ledger

import "math/big"

const (
	// SecondsInDay is the accrual quantum. Reward computations only ever
	// consume whole elapsed days.
	SecondsInDay uint64 = 24 * 60 * 60

	// MaxSplitBps is the denominator of all basis-point arithmetic.
	MaxSplitBps uint32 = 10_000
)

// WholeDays returns the number of complete days between from and to,
// zero when to precedes from.
func WholeDays(from, to uint64) uint64 {
	if to <= from {
		return 0
	}
	return (to - from) / SecondsInDay
}

// DayIndex returns the day bucket a timestamp falls in.
func DayIndex(ts uint64) uint64 {
	return ts / SecondsInDay
}

// ApplyBps returns amount * bps / 10000, truncated.
func ApplyBps(amount *big.Int, bps uint32) *big.Int {
	out := new(big.Int).Mul(amount, big.NewInt(int64(bps)))
	return out.Div(out, big.NewInt(int64(MaxSplitBps)))
}
