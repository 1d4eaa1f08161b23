// Copyright (c) 2026 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math"
	"math/big"
	"strconv"

	"github.com/pkg/errors"

	"github.com/stakemesh/ledger/kv"
	"github.com/stakemesh/ledger/ledger"
	"github.com/stakemesh/ledger/staking/accrual"
	"github.com/stakemesh/ledger/staking/reverts"
	"github.com/stakemesh/ledger/staking/split"
	"github.com/stakemesh/ledger/staking/stake"
	"github.com/stakemesh/ledger/staking/storage"
	"github.com/stakemesh/ledger/staking/throttle"
)

// aggregate slot names
const (
	slotTokensStaked  = "tokens-staked"
	slotTotalPoolSize = "total-pool-size"
	slotTotalShares   = "total-share-amount"
)

// Options carries the external collaborators of a pool.
type Options struct {
	Token     Token
	Whitelist Whitelist // required by the vault pool, ignored by the open pool
	Admin     ledger.Address
	Listener  Listener
}

// transfer is an outbound payment queued during an operation, dispatched only
// after the operation's state has committed.
type transfer struct {
	to     ledger.Address
	amount *big.Int
}

// session is the per-operation view of the ledger: every service reads and
// writes through one staged overlay, so the whole operation commits or rolls
// back as a unit.
type session struct {
	staged   *storage.Staged
	params   *paramsStore
	stakes   *stake.Service
	accrual  *accrual.Service
	throttle *throttle.Service

	tokensStaked  *storage.U256
	totalPoolSize *storage.U256
	totalShares   *storage.U256

	events    []Event
	transfers []transfer
}

func (s *session) emit(ev Event) {
	s.events = append(s.events, ev)
}

func (s *session) pay(to ledger.Address, amount *big.Int) {
	if amount.Sign() > 0 {
		s.transfers = append(s.transfers, transfer{to: to, amount: amount})
	}
}

// pool is the machinery shared by both variants. The reward strategy is
// injected through the model interface.
type pool struct {
	kind      Kind
	store     kv.Store
	token     Token
	whitelist Whitelist
	admin     ledger.Address
	listener  Listener
	mdl       model

	entered bool
}

func newPool(kind Kind, store kv.Store, params Params, opts Options) (*pool, error) {
	if opts.Token == nil {
		return nil, errors.New("token boundary is required")
	}
	if kind == KindVault && opts.Whitelist == nil {
		return nil, errors.New("vault pool requires a whitelist")
	}

	p := &pool{
		kind:      kind,
		store:     store,
		token:     opts.Token,
		whitelist: opts.Whitelist,
		admin:     opts.Admin,
		listener:  opts.Listener,
	}

	s := p.newSession()
	initialized, err := s.params.initialized.Get()
	if err != nil {
		return nil, err
	}
	if initialized == 0 {
		if err := params.validate(kind); err != nil {
			return nil, err
		}
		if err := s.params.write(&params); err != nil {
			return nil, err
		}
		if err := s.params.poolKind.Set(uint64(kind)); err != nil {
			return nil, err
		}
		if err := s.params.lastOpTime.Set(params.GenesisTime); err != nil {
			return nil, err
		}
		if kind == KindVault {
			if err := s.accrual.Init(params.RewardRatePerDayBps, params.GenesisTime); err != nil {
				return nil, err
			}
		}
		if err := s.params.initialized.Set(1); err != nil {
			return nil, err
		}
		if err := s.staged.Commit(); err != nil {
			return nil, err
		}
		logger.Info("initialized pool", "kind", kind)
		return p, nil
	}

	storedKind, err := s.params.poolKind.Get()
	if err != nil {
		return nil, err
	}
	if Kind(storedKind) != kind {
		return nil, errors.Errorf("store holds a %s pool, not a %s pool", Kind(storedKind), kind)
	}
	return p, nil
}

func (p *pool) Kind() Kind { return p.kind }

func (p *pool) newSession() *session {
	staged := storage.NewStaged(p.store)
	return &session{
		staged:        staged,
		params:        newParamsStore(staged),
		stakes:        stake.New(staged),
		accrual:       accrual.New(staged),
		throttle:      throttle.New(staged),
		tokensStaked:  storage.NewU256(staged, slotTokensStaked),
		totalPoolSize: storage.NewU256(staged, slotTotalPoolSize),
		totalShares:   storage.NewU256(staged, slotTotalShares),
	}
}

// run executes a mutating operation: reentrancy guard, clock monotonicity,
// the operation itself against a staged overlay, atomic commit, event
// emission and finally the queued outbound transfers.
func (p *pool) run(op string, now uint64, fn func(*session) error) error {
	if p.entered {
		p.count(op, "reverted")
		return reverts.New("reentrant call")
	}
	p.entered = true
	defer func() { p.entered = false }()

	s := p.newSession()
	last, err := s.params.lastOpTime.Get()
	if err != nil {
		return err
	}
	if now < last {
		return errors.Errorf("clock went backwards: %d < %d", now, last)
	}
	if err := s.params.lastOpTime.Set(now); err != nil {
		return err
	}

	if err := fn(s); err != nil {
		s.staged.Discard()
		if reverts.IsRevert(err) {
			logger.Debug("operation reverted", "op", op, "err", err)
			p.count(op, "reverted")
		} else {
			logger.Error("operation failed", "op", op, "err", err)
			p.count(op, "error")
		}
		return err
	}
	if err := s.staged.Commit(); err != nil {
		p.count(op, "error")
		return err
	}
	p.count(op, "ok")

	if staked, err := s.tokensStaked.Get(); err == nil {
		metricTokensStaked().SetWithLabel(gaugeValue(staked), map[string]string{"pool": p.kind.String()})
	}
	if p.kind == KindOpen {
		if size, err := s.totalPoolSize.Get(); err == nil {
			metricPoolSize().Set(gaugeValue(size))
		}
		if shareAmount, err := s.totalShares.Get(); err == nil {
			metricShareAmount().Set(gaugeValue(shareAmount))
		}
	}
	if p.listener != nil {
		for _, ev := range s.events {
			p.listener(ev)
		}
	}
	// state is committed; callbacks from here on hit the reentrancy guard
	for _, t := range s.transfers {
		if err := p.token.TransferOut(t.to, t.amount); err != nil {
			return errors.Wrap(err, "outbound transfer")
		}
	}
	return nil
}

// gaugeValue clamps an aggregate to the int64 range the meter facade accepts;
// token amounts at full precision can exceed it.
func gaugeValue(v *big.Int) int64 {
	if !v.IsInt64() {
		return math.MaxInt64
	}
	return v.Int64()
}

func (p *pool) count(op, outcome string) {
	metricOps().AddWithLabel(1, map[string]string{
		"pool":    p.kind.String(),
		"op":      op,
		"outcome": outcome,
	})
}

// view builds a read-only session; nothing read through it is ever committed.
func (p *pool) view() *session {
	return p.newSession()
}

func getStake(s *session, id stake.ID) (*stake.Stake, error) {
	st, err := s.stakes.Get(id)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, reverts.Errorf("unknown stake %d", id)
	}
	return st, nil
}

func (p *pool) requireAdmin(caller ledger.Address) error {
	if caller != p.admin {
		return reverts.New("caller is not the admin")
	}
	return nil
}

func checkTimeLock(s *session, st *stake.Stake, now uint64) error {
	if !st.Unstaking() {
		return reverts.New("no unstake request")
	}
	duration, err := s.params.unstakingSecs.Get()
	if err != nil {
		return err
	}
	if now < st.UnstakeRequestTime()+duration {
		return reverts.New("unstaking time lock has not elapsed")
	}
	return nil
}

//
// shared entry points
//

// Stake deposits amount for the caller's own benefit.
func (p *pool) Stake(caller ledger.Address, amount *big.Int, splitBps uint32, now uint64) (stake.ID, error) {
	return p.StakeFor(caller, caller, amount, splitBps, now)
}

// StakeFor deposits amount with a distinct beneficiary. The caller becomes
// payout wallet and unstaker of the new stake.
func (p *pool) StakeFor(caller, beneficiary ledger.Address, amount *big.Int, splitBps uint32, now uint64) (stake.ID, error) {
	var id stake.ID
	err := p.run("stake", now, func(s *session) error {
		if beneficiary.IsZero() {
			return reverts.New("beneficiary cannot be the zero address")
		}
		if amount == nil || amount.Sign() <= 0 {
			return reverts.New("amount must be positive")
		}
		if p.kind == KindVault && !p.whitelist.Allowed(caller) {
			return reverts.New("caller is not whitelisted")
		}
		if err := split.ValidateBps(splitBps); err != nil {
			return err
		}
		minStake, err := s.params.minStake.Get()
		if err != nil {
			return err
		}
		if amount.Cmp(minStake) < 0 {
			return reverts.New("amount below minimum stake")
		}
		if p.kind == KindOpen {
			maxPool, err := s.params.maxPoolSize.Get()
			if err != nil {
				return err
			}
			if maxPool.Sign() > 0 {
				staked, err := s.tokensStaked.Get()
				if err != nil {
					return err
				}
				if staked.Add(staked, amount).Cmp(maxPool) > 0 {
					return reverts.New("amount above remaining pool capacity")
				}
			}
		}

		st, err := s.stakes.Create(caller, beneficiary, amount, splitBps, now)
		if err != nil {
			return err
		}
		if err := p.mdl.onStake(s, st, amount, now); err != nil {
			return err
		}
		if err := s.stakes.Update(st); err != nil {
			return err
		}
		if err := s.tokensStaked.Add(amount); err != nil {
			return err
		}
		if err := p.token.TransferIn(caller, amount); err != nil {
			return errors.Wrap(err, "inbound transfer")
		}

		id = st.ID()
		s.emit(StakeCreated{
			ID:           id,
			Beneficiary:  beneficiary,
			PayoutWallet: caller,
			Amount:       new(big.Int).Set(amount),
			SplitBps:     splitBps,
			Time:         now,
		})
		logger.Info("created stake", "id", uint64(id), "amount", amount)
		return nil
	})
	return id, err
}

// RequestUnstake starts the unstaking time lock. In the vault pool accrual
// freezes the instant the request is filed.
func (p *pool) RequestUnstake(caller ledger.Address, id stake.ID, now uint64) error {
	return p.run("request-unstake", now, func(s *session) error {
		st, err := getStake(s, id)
		if err != nil {
			return err
		}
		if caller != st.Beneficiary() && caller != st.PayoutWallet() {
			return reverts.New("only beneficiary or payout wallet may request unstaking")
		}
		if st.Closed() {
			return reverts.New("stake is closed")
		}
		if st.Unstaking() {
			return reverts.New("unstake already requested")
		}

		requireClaim, err := s.params.requireClaim.Get()
		if err != nil {
			return err
		}
		if requireClaim != 0 {
			unpaid, err := p.mdl.unpaidReward(s, st, now)
			if err != nil {
				return err
			}
			if unpaid.Sign() > 0 {
				return reverts.New("reward must be claimed before unstaking")
			}
		}

		if p.kind == KindVault {
			if err := s.accrual.Tick(now); err != nil {
				return err
			}
			acc, err := s.accrual.Accumulator()
			if err != nil {
				return err
			}
			st.FreezeAcc(acc)
		}
		st.MarkUnstakeRequested(now)
		if err := s.stakes.Update(st); err != nil {
			return err
		}
		s.emit(UnstakeRequested{ID: id, Time: now})
		return nil
	})
}

// RequestSplitUpdate queues a split change; it takes effect at the first
// settlement after the grace period.
func (p *pool) RequestSplitUpdate(caller ledger.Address, id stake.ID, newBps uint32, now uint64) error {
	return p.run("request-split-update", now, func(s *session) error {
		st, err := getStake(s, id)
		if err != nil {
			return err
		}
		if caller != st.Beneficiary() {
			return reverts.New("only the beneficiary may update the split")
		}
		if err := split.ValidateBps(newBps); err != nil {
			return err
		}
		st.SetPendingSplit(newBps, now)
		if err := s.stakes.Update(st); err != nil {
			return err
		}
		s.emit(SplitUpdateRequested{ID: id, NewBps: newBps, Time: now})
		return nil
	})
}

// ReassignPayoutWallet points the stake's principal payouts at a new wallet.
func (p *pool) ReassignPayoutWallet(caller ledger.Address, id stake.ID, newWallet ledger.Address, now uint64) error {
	return p.run("reassign-payout-wallet", now, func(s *session) error {
		st, err := getStake(s, id)
		if err != nil {
			return err
		}
		if caller != st.Unstaker() {
			return reverts.New("only the unstaker may reassign the payout wallet")
		}
		previous := st.PayoutWallet()
		if err := s.stakes.ReassignPayoutWallet(st, newWallet); err != nil {
			return err
		}
		s.emit(PayoutWalletReassigned{ID: id, Previous: previous, New: newWallet})
		return nil
	})
}

// ReassignUnstaker hands the unstaker role to a new address.
func (p *pool) ReassignUnstaker(caller ledger.Address, id stake.ID, newUnstaker ledger.Address, now uint64) error {
	return p.run("reassign-unstaker", now, func(s *session) error {
		st, err := getStake(s, id)
		if err != nil {
			return err
		}
		if caller != st.Unstaker() {
			return reverts.New("only the unstaker may reassign the unstaker")
		}
		previous := st.Unstaker()
		if err := s.stakes.ReassignUnstaker(st, newUnstaker); err != nil {
			return err
		}
		s.emit(UnstakerReassigned{ID: id, Previous: previous, New: newUnstaker})
		return nil
	})
}

// SetUnstakingDuration changes the time lock, bounded to [1, 20] days.
func (p *pool) SetUnstakingDuration(caller ledger.Address, days uint64, now uint64) error {
	return p.run("set-unstaking-duration", now, func(s *session) error {
		if err := p.requireAdmin(caller); err != nil {
			return err
		}
		if days < MinUnstakingDays || days > MaxUnstakingDays {
			return reverts.Errorf("unstaking duration must be within [%d, %d] days", MinUnstakingDays, MaxUnstakingDays)
		}
		previous, err := s.params.unstakingSecs.Get()
		if err != nil {
			return err
		}
		if err := s.params.unstakingSecs.Set(days * ledger.SecondsInDay); err != nil {
			return err
		}
		s.emit(ParamChanged{
			Name:     "unstaking-duration",
			Previous: strconv.FormatUint(previous, 10),
			New:      strconv.FormatUint(days*ledger.SecondsInDay, 10),
		})
		return nil
	})
}

//
// read-only queries
//

// GetStake returns the stake record, nil when the id was never assigned.
func (p *pool) GetStake(id stake.ID) (*stake.Stake, error) {
	return p.view().stakes.Get(id)
}

// EffectiveSplit resolves the split that a settlement at `now` would apply.
func (p *pool) EffectiveSplit(id stake.ID, now uint64) (uint32, error) {
	s := p.view()
	st, err := getStake(s, id)
	if err != nil {
		return 0, err
	}
	return split.Effective(st, now), nil
}

// StakesByBeneficiary lists ids whose beneficiary is addr.
func (p *pool) StakesByBeneficiary(addr ledger.Address) ([]stake.ID, error) {
	return p.view().stakes.IDsByBeneficiary(addr)
}

// StakesByPayoutWallet lists ids whose payout wallet is addr.
func (p *pool) StakesByPayoutWallet(addr ledger.Address) ([]stake.ID, error) {
	return p.view().stakes.IDsByPayoutWallet(addr)
}

// StakesByUnstaker lists ids whose unstaker is addr.
func (p *pool) StakesByUnstaker(addr ledger.Address) ([]stake.ID, error) {
	return p.view().stakes.IDsByUnstaker(addr)
}

// TokensStaked returns the aggregate outstanding principal.
func (p *pool) TokensStaked() (*big.Int, error) {
	return p.view().tokensStaked.Get()
}

// MinStake returns the minimum amount accepted per stake operation.
func (p *pool) MinStake() (*big.Int, error) {
	return p.view().params.minStake.Get()
}

// UnstakingDuration returns the current time lock in seconds.
func (p *pool) UnstakingDuration() (uint64, error) {
	return p.view().params.unstakingSecs.Get()
}
