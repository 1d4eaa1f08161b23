// Copyright (c) 2026 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"
	"strconv"

	"github.com/pkg/errors"

	"github.com/stakemesh/ledger/kv"
	"github.com/stakemesh/ledger/ledger"
	"github.com/stakemesh/ledger/staking/reverts"
	"github.com/stakemesh/ledger/staking/shares"
	"github.com/stakemesh/ledger/staking/split"
	"github.com/stakemesh/ledger/staking/stake"
)

// OpenPool is the permissionless pool. Stakes hold pool shares; rewards are
// injected into the pool and distributed pro rata by share.
type OpenPool struct {
	*pool
}

// NewOpen opens (or initializes) an open pool over the given store.
func NewOpen(store kv.Store, params Params, opts Options) (*OpenPool, error) {
	p, err := newPool(KindOpen, store, params, opts)
	if err != nil {
		return nil, err
	}
	p.mdl = shareModel{}
	return &OpenPool{pool: p}, nil
}

// AddReward injects tokens into the pool, raising the value of every
// outstanding share.
func (o *OpenPool) AddReward(caller ledger.Address, amount *big.Int, now uint64) error {
	return o.run("add-reward", now, func(s *session) error {
		if amount == nil || amount.Sign() <= 0 {
			return reverts.New("amount must be positive")
		}
		totalShares, err := s.totalShares.Get()
		if err != nil {
			return err
		}
		if totalShares.Sign() == 0 {
			return reverts.New("no outstanding shares to reward")
		}
		if err := s.totalPoolSize.Add(amount); err != nil {
			return err
		}
		if err := o.token.TransferIn(caller, amount); err != nil {
			return errors.Wrap(err, "inbound transfer")
		}
		s.emit(RewardAdded{From: caller, Amount: new(big.Int).Set(amount), Time: now})
		logger.Info("added reward", "from", caller, "amount", amount)
		return nil
	})
}

// Unstake withdraws amount from the stake's claimable value after the time
// lock. A nil amount withdraws everything. The withdrawal splits into a
// principal portion paid to the payout wallet and a reward portion subject
// to the split.
func (o *OpenPool) Unstake(caller ledger.Address, id stake.ID, amount *big.Int, now uint64) error {
	return o.run("unstake", now, func(s *session) error {
		st, err := getStake(s, id)
		if err != nil {
			return err
		}
		if caller != st.Unstaker() {
			return reverts.New("only the unstaker may unstake")
		}
		if st.Closed() {
			return reverts.New("stake is closed")
		}
		if err := checkTimeLock(s, st, now); err != nil {
			return err
		}

		claimable, err := shareClaimable(s, st)
		if err != nil {
			return err
		}
		principal := st.Principal()
		if claimable.Cmp(principal) < 0 {
			return errors.Errorf("stake %d claimable below principal", id)
		}
		if amount == nil {
			amount = claimable
		}
		if amount.Sign() <= 0 {
			return reverts.New("amount must be positive")
		}
		if amount.Cmp(claimable) > 0 {
			return reverts.New("amount above claimable value")
		}

		if err := o.noteWithdrawal(s, amount, now); err != nil {
			return err
		}

		w, err := shares.SplitWithdrawal(amount, principal, claimable, st.PoolShares())
		if err != nil {
			return err
		}

		effective := split.Effective(st, now)
		st.PromoteSplit(effective)
		toWallet, toBeneficiary := split.Apply(w.RewardPortion, effective)

		st.ReducePrincipal(w.PrincipalPortion)
		st.ReduceShares(w.SharesBurned)
		st.AddPaidOutReward(w.RewardPortion)
		// settlement consumes the request; a remaining principal returns
		// to the active state and needs a fresh request
		st.ClearUnstakeRequest()
		st.SetStartTime(now)
		if err := s.stakes.Update(st); err != nil {
			return err
		}
		if err := s.tokensStaked.Sub(w.PrincipalPortion); err != nil {
			return err
		}
		if err := s.totalPoolSize.Sub(amount); err != nil {
			return err
		}
		if err := s.totalShares.Sub(w.SharesBurned); err != nil {
			return err
		}

		s.pay(st.PayoutWallet(), new(big.Int).Add(w.PrincipalPortion, toWallet))
		s.pay(st.Beneficiary(), toBeneficiary)
		s.emit(Settled{
			ID:                  id,
			Principal:           w.PrincipalPortion,
			RewardToWallet:      toWallet,
			RewardToBeneficiary: toBeneficiary,
			Time:                now,
		})
		logger.Info("withdrew", "id", uint64(id), "amount", amount)
		return nil
	})
}

// noteWithdrawal records amount against today's throttle and, when the cap
// is enforced, rejects the operation once the day's budget is exceeded. The
// counter increment is staged with the rest of the operation, so a rejection
// discards it too.
func (o *OpenPool) noteWithdrawal(s *session, amount *big.Int, now uint64) error {
	capBps, err := s.params.capBps.Get()
	if err != nil {
		return err
	}
	if capBps == 0 {
		return nil
	}
	threshold, err := s.params.capThreshold.Get()
	if err != nil {
		return err
	}
	staked, err := s.tokensStaked.Get()
	if err != nil {
		return err
	}
	exceeded, err := s.throttle.Note(now, staked, amount, capBps, threshold)
	if err != nil {
		return err
	}
	if !exceeded {
		return nil
	}
	enforce, err := s.params.enforceCap.Get()
	if err != nil {
		return err
	}
	if enforce != 0 {
		return reverts.New("daily withdrawal cap exceeded")
	}
	logger.Warn("daily withdrawal cap exceeded", "amount", amount)
	return nil
}

// SetWithdrawalCapBps changes the daily cap; zero disables the throttle.
func (o *OpenPool) SetWithdrawalCapBps(caller ledger.Address, capBps uint64, now uint64) error {
	return o.run("set-withdrawal-cap", now, func(s *session) error {
		if err := o.requireAdmin(caller); err != nil {
			return err
		}
		if capBps > uint64(ledger.MaxSplitBps) {
			return reverts.New("cap cannot exceed 10000 bps")
		}
		previous, err := s.params.capBps.Get()
		if err != nil {
			return err
		}
		if err := s.params.capBps.Set(capBps); err != nil {
			return err
		}
		s.emit(ParamChanged{
			Name:     "withdrawal-cap-bps",
			Previous: strconv.FormatUint(previous, 10),
			New:      strconv.FormatUint(capBps, 10),
		})
		return nil
	})
}

// SetDailyWithdrawalThreshold changes the pool size below which the throttle
// stays dormant.
func (o *OpenPool) SetDailyWithdrawalThreshold(caller ledger.Address, threshold *big.Int, now uint64) error {
	return o.run("set-withdrawal-threshold", now, func(s *session) error {
		if err := o.requireAdmin(caller); err != nil {
			return err
		}
		if threshold == nil || threshold.Sign() < 0 {
			return reverts.New("threshold cannot be negative")
		}
		previous, err := s.params.capThreshold.Get()
		if err != nil {
			return err
		}
		if err := s.params.capThreshold.Set(threshold); err != nil {
			return err
		}
		s.emit(ParamChanged{
			Name:     "daily-withdrawal-threshold",
			Previous: previous.String(),
			New:      threshold.String(),
		})
		return nil
	})
}

// Claimable returns the current token value of the stake's shares.
func (o *OpenPool) Claimable(id stake.ID) (*big.Int, error) {
	s := o.view()
	st, err := getStake(s, id)
	if err != nil {
		return nil, err
	}
	return shareClaimable(s, st)
}

// PoolTotals returns the pool's token size and outstanding share amount.
func (o *OpenPool) PoolTotals() (poolSize, shareAmount *big.Int, err error) {
	s := o.view()
	if poolSize, err = s.totalPoolSize.Get(); err != nil {
		return nil, nil, err
	}
	if shareAmount, err = s.totalShares.Get(); err != nil {
		return nil, nil, err
	}
	return poolSize, shareAmount, nil
}

// DailyWithdrawalsUsed returns the amount counted against today's cap.
func (o *OpenPool) DailyWithdrawalsUsed(now uint64) (*big.Int, error) {
	return o.view().throttle.UsedToday(now)
}
