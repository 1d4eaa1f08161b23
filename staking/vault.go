// Copyright (c) 2026 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"
	"strconv"

	"github.com/stakemesh/ledger/kv"
	"github.com/stakemesh/ledger/ledger"
	"github.com/stakemesh/ledger/staking/accrual"
	"github.com/stakemesh/ledger/staking/reverts"
	"github.com/stakemesh/ledger/staking/split"
	"github.com/stakemesh/ledger/staking/stake"
)

// VaultPool is the permissioned pool. Only whitelisted addresses may stake,
// and every stake accrues rateBps of its principal per whole elapsed day.
type VaultPool struct {
	*pool
}

// NewVault opens (or initializes) a vault pool over the given store.
func NewVault(store kv.Store, params Params, opts Options) (*VaultPool, error) {
	p, err := newPool(KindVault, store, params, opts)
	if err != nil {
		return nil, err
	}
	p.mdl = linearModel{}
	return &VaultPool{pool: p}, nil
}

// settle pays out the reward accrued since the stake's last snapshot and
// promotes any matured split change. The caller appends the principal portion
// and persists the stake.
func (v *VaultPool) settle(s *session, st *stake.Stake, now uint64) (toWallet, toBeneficiary *big.Int, err error) {
	if err := s.accrual.Tick(now); err != nil {
		return nil, nil, err
	}
	accEnd := st.AccFrozen()
	if accEnd == nil {
		if accEnd, err = s.accrual.Accumulator(); err != nil {
			return nil, nil, err
		}
	}
	owed, err := accrual.Owed(st.Principal(), st.AccSnapshot(), accEnd)
	if err != nil {
		return nil, nil, err
	}

	effective := split.Effective(st, now)
	st.PromoteSplit(effective)
	toWallet, toBeneficiary = split.Apply(owed, effective)

	st.AddPaidOutReward(owed)
	st.SetAccSnapshot(accEnd)
	return toWallet, toBeneficiary, nil
}

// Claim pays out the pending reward without touching the principal.
func (v *VaultPool) Claim(caller ledger.Address, id stake.ID, now uint64) error {
	return v.run("claim", now, func(s *session) error {
		st, err := getStake(s, id)
		if err != nil {
			return err
		}
		if caller != st.Beneficiary() && caller != st.PayoutWallet() {
			return reverts.New("only beneficiary or payout wallet may claim")
		}
		if st.Closed() {
			return reverts.New("stake is closed")
		}

		toWallet, toBeneficiary, err := v.settle(s, st, now)
		if err != nil {
			return err
		}
		// an unstaking stake keeps its frozen window; a live one restarts
		if !st.Unstaking() {
			st.SetStartTime(now)
		}
		if err := s.stakes.Update(st); err != nil {
			return err
		}

		s.pay(st.PayoutWallet(), toWallet)
		s.pay(st.Beneficiary(), toBeneficiary)
		s.emit(Settled{
			ID:                  id,
			Principal:           new(big.Int),
			RewardToWallet:      toWallet,
			RewardToBeneficiary: toBeneficiary,
			Time:                now,
		})
		return nil
	})
}

// Unstake pays out the full principal plus the reward frozen at request time.
// The unstaking time lock must have elapsed.
func (v *VaultPool) Unstake(caller ledger.Address, id stake.ID, now uint64) error {
	return v.run("unstake", now, func(s *session) error {
		st, err := getStake(s, id)
		if err != nil {
			return err
		}
		if caller != st.Beneficiary() && caller != st.PayoutWallet() {
			return reverts.New("only beneficiary or payout wallet may unstake")
		}
		if st.Closed() {
			return reverts.New("stake is closed")
		}
		if err := checkTimeLock(s, st, now); err != nil {
			return err
		}
		toWallet, toBeneficiary, err := v.settle(s, st, now)
		if err != nil {
			return err
		}
		principal := st.Principal()
		st.ReducePrincipal(principal)
		st.ClearUnstakeRequest()
		st.SetStartTime(now)
		if err := s.stakes.Update(st); err != nil {
			return err
		}
		if err := s.tokensStaked.Sub(principal); err != nil {
			return err
		}

		s.pay(st.PayoutWallet(), new(big.Int).Add(principal, toWallet))
		s.pay(st.Beneficiary(), toBeneficiary)
		s.emit(Settled{
			ID:                  id,
			Principal:           principal,
			RewardToWallet:      toWallet,
			RewardToBeneficiary: toBeneficiary,
			Time:                now,
		})
		logger.Info("unstaked", "id", uint64(id), "principal", principal)
		return nil
	})
}

// SetRewardRate changes the per-day rate; accrual up to now is settled into
// the accumulator first, so the new rate only applies forward.
func (v *VaultPool) SetRewardRate(caller ledger.Address, rateBps uint64, now uint64) error {
	return v.run("set-reward-rate", now, func(s *session) error {
		if err := v.requireAdmin(caller); err != nil {
			return err
		}
		previous, err := s.accrual.Rate()
		if err != nil {
			return err
		}
		if err := s.accrual.SetRate(rateBps, now); err != nil {
			return err
		}
		s.emit(ParamChanged{
			Name:     "reward-rate-bps",
			Previous: strconv.FormatUint(previous, 10),
			New:      strconv.FormatUint(rateBps, 10),
		})
		return nil
	})
}

// PendingReward projects the reward a claim at `now` would pay.
func (v *VaultPool) PendingReward(id stake.ID, now uint64) (*big.Int, error) {
	s := v.view()
	st, err := getStake(s, id)
	if err != nil {
		return nil, err
	}
	return v.mdl.unpaidReward(s, st, now)
}

// RewardRate returns the current per-day rate in basis points.
func (v *VaultPool) RewardRate() (uint64, error) {
	return v.view().accrual.Rate()
}
