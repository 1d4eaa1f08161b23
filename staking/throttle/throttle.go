// Copyright (c) 2026 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package throttle enforces a rolling daily cap on aggregate withdrawals,
// active only while the pool is above a configurable size threshold.
package throttle

import (
	"math/big"

	"github.com/stakemesh/ledger/kv"
	"github.com/stakemesh/ledger/ledger"
	"github.com/stakemesh/ledger/staking/storage"
)

const (
	slotDailyWithdrawals = "daily-withdrawals"
	slotLastResetDay     = "last-reset-day"
)

// Service tracks the aggregate withdrawals of the current day.
type Service struct {
	used         *storage.U256
	lastResetDay *storage.U64
}

func New(store kv.GetPutter) *Service {
	return &Service{
		used:         storage.NewU256(store, slotDailyWithdrawals),
		lastResetDay: storage.NewU64(store, slotLastResetDay),
	}
}

// Note records a withdrawal of amount against the day's cap and reports
// whether the cap is exceeded. The counter resets whenever the day index
// advances. While tokensStaked is below threshold the throttle is dormant and
// nothing is recorded.
//
// The counter is incremented even when the cap is exceeded; a caller that
// enforces the cap rejects the whole operation, discarding the increment with
// the rest of its staged writes.
func (s *Service) Note(now uint64, tokensStaked, amount *big.Int, capBps uint64, threshold *big.Int) (bool, error) {
	if tokensStaked.Cmp(threshold) < 0 {
		return false, nil
	}

	day := ledger.DayIndex(now)
	last, err := s.lastResetDay.Get()
	if err != nil {
		return false, err
	}
	if day > last {
		if err := s.used.Set(new(big.Int)); err != nil {
			return false, err
		}
		if err := s.lastResetDay.Set(day); err != nil {
			return false, err
		}
	}

	used, err := s.used.Get()
	if err != nil {
		return false, err
	}
	used.Add(used, amount)
	if err := s.used.Set(used); err != nil {
		return false, err
	}

	dailyCap := new(big.Int).Mul(tokensStaked, new(big.Int).SetUint64(capBps))
	dailyCap.Div(dailyCap, big.NewInt(int64(ledger.MaxSplitBps)))
	return used.Cmp(dailyCap) > 0, nil
}

// UsedToday returns the withdrawals recorded for the day `now` falls in.
func (s *Service) UsedToday(now uint64) (*big.Int, error) {
	last, err := s.lastResetDay.Get()
	if err != nil {
		return nil, err
	}
	if ledger.DayIndex(now) > last {
		return new(big.Int), nil
	}
	return s.used.Get()
}
