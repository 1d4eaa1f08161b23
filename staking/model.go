// Copyright (c) 2026 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/stakemesh/ledger/staking/accrual"
	"github.com/stakemesh/ledger/staking/shares"
	"github.com/stakemesh/ledger/staking/stake"
)

// model is the reward strategy behind the shared pool machinery.
type model interface {
	// onStake anchors a freshly created stake in the reward bookkeeping.
	onStake(s *session, st *stake.Stake, amount *big.Int, now uint64) error
	// unpaidReward computes the reward a settlement at `at` would pay,
	// without mutating anything that survives the session.
	unpaidReward(s *session, st *stake.Stake, at uint64) (*big.Int, error)
}

// linearModel pays rateBps of principal per whole elapsed day, tracked by a
// global accumulator with per-stake snapshots.
type linearModel struct{}

func (linearModel) onStake(s *session, st *stake.Stake, _ *big.Int, now uint64) error {
	if err := s.accrual.Tick(now); err != nil {
		return err
	}
	acc, err := s.accrual.Accumulator()
	if err != nil {
		return err
	}
	st.SetAccSnapshot(acc)
	return nil
}

func (linearModel) unpaidReward(s *session, st *stake.Stake, at uint64) (*big.Int, error) {
	accEnd := st.AccFrozen()
	if accEnd == nil {
		var err error
		if accEnd, err = s.accrual.ProjectedAt(at); err != nil {
			return nil, err
		}
	}
	return accrual.Owed(st.Principal(), st.AccSnapshot(), accEnd)
}

// shareModel mints pool shares against the current pool size, so rewards are
// each stake's proportional surplus over its principal.
type shareModel struct{}

func (shareModel) onStake(s *session, st *stake.Stake, amount *big.Int, _ uint64) error {
	totalPool, err := s.totalPoolSize.Get()
	if err != nil {
		return err
	}
	totalShares, err := s.totalShares.Get()
	if err != nil {
		return err
	}
	minted := shares.Mint(amount, totalShares, totalPool)
	st.SetPoolShares(minted)
	if err := s.totalPoolSize.Add(amount); err != nil {
		return err
	}
	return s.totalShares.Add(minted)
}

func (shareModel) unpaidReward(s *session, st *stake.Stake, _ uint64) (*big.Int, error) {
	claimable, err := shareClaimable(s, st)
	if err != nil {
		return nil, err
	}
	reward := claimable.Sub(claimable, st.Principal())
	if reward.Sign() < 0 {
		return nil, errors.Errorf("stake %d claimable below principal", st.ID())
	}
	return reward, nil
}

func shareClaimable(s *session, st *stake.Stake) (*big.Int, error) {
	totalPool, err := s.totalPoolSize.Get()
	if err != nil {
		return nil, err
	}
	totalShares, err := s.totalShares.Get()
	if err != nil {
		return nil, err
	}
	return shares.Claimable(st.PoolShares(), totalPool, totalShares), nil
}
