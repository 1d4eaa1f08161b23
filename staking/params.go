// Copyright (c) 2026 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/stakemesh/ledger/kv"
	"github.com/stakemesh/ledger/ledger"
	"github.com/stakemesh/ledger/staking/reverts"
	"github.com/stakemesh/ledger/staking/storage"
)

// Unstaking duration bounds, in days.
const (
	MinUnstakingDays uint64 = 1
	MaxUnstakingDays uint64 = 20
)

// Params holds the configuration a pool is initialized with. Once a pool's
// backing store is initialized, the persisted values win and the struct
// passed to a later open is ignored.
type Params struct {
	// GenesisTime anchors accrual and the operation clock.
	GenesisTime uint64

	// MinStake is the minimum amount accepted per stake operation.
	MinStake *big.Int

	// MaxPoolSize caps total staked tokens of the open pool; nil or zero
	// means uncapped. Ignored by the vault pool.
	MaxPoolSize *big.Int

	// UnstakingDays is the time lock between an unstake request and its
	// settlement, bounded to [1, 20] days.
	UnstakingDays uint64

	// RewardRatePerDayBps is the vault pool's linear reward rate.
	RewardRatePerDayBps uint64

	// WithdrawalCapBps and DailyWithdrawalThreshold configure the open
	// pool's rolling daily withdrawal cap.
	WithdrawalCapBps         uint64
	DailyWithdrawalThreshold *big.Int

	// RequireClaimBeforeUnstake, when set, rejects an unstake request while
	// unclaimed reward exists. Historically differs between pool variants,
	// hence a per-pool policy flag.
	RequireClaimBeforeUnstake bool

	// EnforceWithdrawalCap decides whether exceeding the daily cap rejects
	// the withdrawal (enforced) or only logs it (advisory).
	EnforceWithdrawalCap bool
}

func (p *Params) validate(kind Kind) error {
	if p.MinStake == nil || p.MinStake.Sign() <= 0 {
		return reverts.New("minimum stake must be positive")
	}
	if p.UnstakingDays < MinUnstakingDays || p.UnstakingDays > MaxUnstakingDays {
		return reverts.Errorf("unstaking duration must be within [%d, %d] days", MinUnstakingDays, MaxUnstakingDays)
	}
	if kind == KindOpen && p.WithdrawalCapBps > uint64(ledger.MaxSplitBps) {
		return reverts.New("withdrawal cap above 10000 bps")
	}
	return nil
}

// slot names of the persisted configuration
const (
	slotInitialized   = "pool-initialized"
	slotPoolKind      = "pool-kind"
	slotLastOpTime    = "last-op-time"
	slotMinStake      = "min-stake"
	slotMaxPoolSize   = "max-pool-size"
	slotUnstakingSecs = "unstaking-duration"
	slotCapBps        = "withdrawal-cap-bps"
	slotCapThreshold  = "daily-withdrawal-threshold"
	slotRequireClaim  = "require-claim-before-unstake"
	slotEnforceCap    = "enforce-withdrawal-cap"
)

// paramsStore is the persisted pool configuration.
type paramsStore struct {
	initialized   *storage.U64
	poolKind      *storage.U64
	lastOpTime    *storage.U64
	minStake      *storage.U256
	maxPoolSize   *storage.U256
	unstakingSecs *storage.U64
	capBps        *storage.U64
	capThreshold  *storage.U256
	requireClaim  *storage.U64
	enforceCap    *storage.U64
}

func newParamsStore(store kv.GetPutter) *paramsStore {
	return &paramsStore{
		initialized:   storage.NewU64(store, slotInitialized),
		poolKind:      storage.NewU64(store, slotPoolKind),
		lastOpTime:    storage.NewU64(store, slotLastOpTime),
		minStake:      storage.NewU256(store, slotMinStake),
		maxPoolSize:   storage.NewU256(store, slotMaxPoolSize),
		unstakingSecs: storage.NewU64(store, slotUnstakingSecs),
		capBps:        storage.NewU64(store, slotCapBps),
		capThreshold:  storage.NewU256(store, slotCapThreshold),
		requireClaim:  storage.NewU64(store, slotRequireClaim),
		enforceCap:    storage.NewU64(store, slotEnforceCap),
	}
}

func (ps *paramsStore) write(p *Params) error {
	if err := ps.minStake.Set(p.MinStake); err != nil {
		return err
	}
	maxPool := p.MaxPoolSize
	if maxPool == nil {
		maxPool = new(big.Int)
	}
	if err := ps.maxPoolSize.Set(maxPool); err != nil {
		return err
	}
	if err := ps.unstakingSecs.Set(p.UnstakingDays * ledger.SecondsInDay); err != nil {
		return err
	}
	if err := ps.capBps.Set(p.WithdrawalCapBps); err != nil {
		return err
	}
	threshold := p.DailyWithdrawalThreshold
	if threshold == nil {
		threshold = new(big.Int)
	}
	if err := ps.capThreshold.Set(threshold); err != nil {
		return err
	}
	if err := ps.requireClaim.Set(boolToU64(p.RequireClaimBeforeUnstake)); err != nil {
		return err
	}
	return ps.enforceCap.Set(boolToU64(p.EnforceWithdrawalCap))
}

func boolToU64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
