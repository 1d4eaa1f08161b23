// Copyright (c) 2026 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package split manages the basis-point reward split between the payout
// wallet and the beneficiary, including the grace period a requested change
// must wait out before taking effect.
package split

import (
	"math/big"

	"github.com/stakemesh/ledger/ledger"
	"github.com/stakemesh/ledger/staking/reverts"
	"github.com/stakemesh/ledger/staking/stake"
)

// GracePeriod is the mandatory delay between requesting a split change and
// its taking effect.
const GracePeriod = ledger.SecondsInDay

// ValidateBps rejects splits above 100%.
func ValidateBps(bps uint32) error {
	if bps > ledger.MaxSplitBps {
		return reverts.Errorf("split of %d bps exceeds %d", bps, ledger.MaxSplitBps)
	}
	return nil
}

// Effective resolves the split to apply at `now`: the pending value once its
// grace period has elapsed, the current value otherwise. Pending values are
// only ever materialized by settlements reading them through here; there is
// no background promotion.
func Effective(s *stake.Stake, now uint64) uint32 {
	pendingBps, requestTime := s.PendingSplit()
	if requestTime != 0 && now >= requestTime+GracePeriod {
		return pendingBps
	}
	return s.SplitBps()
}

// Apply divides a reward by the split: bps of it to the payout wallet, the
// remainder to the beneficiary.
func Apply(reward *big.Int, bps uint32) (toWallet, toBeneficiary *big.Int) {
	toWallet = ledger.ApplyBps(reward, bps)
	toBeneficiary = new(big.Int).Sub(reward, toWallet)
	return toWallet, toBeneficiary
}
