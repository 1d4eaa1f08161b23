// Copyright (c) 2026 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package accrual implements the linear reward model: a single global
// accumulator of rate-bps x whole-days, combined with per-stake snapshots.
//
// The accumulator only ever advances in whole-day steps. The sub-day
// remainder stays with the last-update marker, so no accrual time is lost to
// truncation across updates.
package accrual

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/stakemesh/ledger/kv"
	"github.com/stakemesh/ledger/ledger"
	"github.com/stakemesh/ledger/staking/reverts"
	"github.com/stakemesh/ledger/staking/storage"
)

const (
	slotRate        = "reward-rate"
	slotAccumulator = "reward-accumulator"
	slotLastUpdate  = "reward-last-update"
)

// RateCeilingBps is the safety ceiling of the per-day reward rate.
const RateCeilingBps uint64 = 10_000

// Service holds the global accrual state of one permissioned pool.
type Service struct {
	rate        *storage.U64
	accumulator *storage.U256
	lastUpdate  *storage.U64
}

func New(store kv.GetPutter) *Service {
	return &Service{
		rate:        storage.NewU64(store, slotRate),
		accumulator: storage.NewU256(store, slotAccumulator),
		lastUpdate:  storage.NewU64(store, slotLastUpdate),
	}
}

// Init sets the initial rate and anchors the update marker.
func (s *Service) Init(rateBps, now uint64) error {
	if rateBps > RateCeilingBps {
		return reverts.Errorf("reward rate exceeds ceiling of %d bps", RateCeilingBps)
	}
	if err := s.rate.Set(rateBps); err != nil {
		return err
	}
	return s.lastUpdate.Set(now)
}

// Rate returns the current reward rate in bps per day.
func (s *Service) Rate() (uint64, error) {
	return s.rate.Get()
}

// SetRate changes the rate. Days already elapsed are consumed at the old rate
// first, so the change never applies retroactively.
func (s *Service) SetRate(rateBps, now uint64) error {
	if rateBps > RateCeilingBps {
		return reverts.Errorf("reward rate exceeds ceiling of %d bps", RateCeilingBps)
	}
	if err := s.Tick(now); err != nil {
		return err
	}
	return s.rate.Set(rateBps)
}

// Tick advances the accumulator by the whole days elapsed since the last
// update. The remainder below one day carries over to the next call.
func (s *Service) Tick(now uint64) error {
	last, err := s.lastUpdate.Get()
	if err != nil {
		return err
	}
	days := ledger.WholeDays(last, now)
	if days == 0 {
		return nil
	}
	rate, err := s.rate.Get()
	if err != nil {
		return err
	}
	delta := new(big.Int).Mul(new(big.Int).SetUint64(rate), new(big.Int).SetUint64(days))
	if err := s.accumulator.Add(delta); err != nil {
		return err
	}
	return s.lastUpdate.Set(last + days*ledger.SecondsInDay)
}

// Accumulator returns the current accumulator value.
func (s *Service) Accumulator() (*big.Int, error) {
	return s.accumulator.Get()
}

// ProjectedAt returns the accumulator value as of `at` without mutating state.
// Used by read-only reward queries.
func (s *Service) ProjectedAt(at uint64) (*big.Int, error) {
	acc, err := s.accumulator.Get()
	if err != nil {
		return nil, err
	}
	last, err := s.lastUpdate.Get()
	if err != nil {
		return nil, err
	}
	days := ledger.WholeDays(last, at)
	if days == 0 {
		return acc, nil
	}
	rate, err := s.rate.Get()
	if err != nil {
		return nil, err
	}
	delta := new(big.Int).Mul(new(big.Int).SetUint64(rate), new(big.Int).SetUint64(days))
	return acc.Add(acc, delta), nil
}

// Owed computes the unpaid reward of a stake between two accumulator values:
// (accEnd - accStart) * principal / 10000.
//
// A negative window means the stored snapshot is ahead of the accumulator,
// which can only happen if the ledger state is corrupt; it is reported as a
// fatal internal fault, not a revert.
func Owed(principal, accStart, accEnd *big.Int) (*big.Int, error) {
	window := new(big.Int).Sub(accEnd, accStart)
	if window.Sign() < 0 {
		return nil, errors.New("reward accumulator went backwards")
	}
	owed := window.Mul(window, principal)
	return owed.Div(owed, big.NewInt(int64(ledger.MaxSplitBps))), nil
}
