// Copyright (c) 2026 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package stake owns the canonical store of stake records and the reverse
// indices by role address.
package stake

import (
	"encoding/binary"
	"math/big"

	"github.com/stakemesh/ledger/ledger"
)

// ID identifies a stake. IDs are assigned monotonically starting at 1 and
// never reused.
type ID uint64

// Bytes returns the big-endian form used as storage key.
func (id ID) Bytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(id))
	return b[:]
}

// body is the persisted stake record. Field order is part of the record
// format; do not reorder.
type body struct {
	Beneficiary             ledger.Address
	PayoutWallet            ledger.Address
	Unstaker                ledger.Address
	Principal               *big.Int
	SplitBps                uint32
	PendingSplitBps         uint32
	PendingSplitRequestTime uint64
	StartTime               uint64
	UnstakeRequestTime      uint64
	PaidOutReward           *big.Int
	AccSnapshot             *big.Int
	// AccFrozen is meaningful only while UnstakeRequestTime != 0.
	AccFrozen  *big.Int
	PoolShares *big.Int
}

// Stake is a handle on a single stake record. One record exists per deposit
// event; a fully withdrawn stake persists with zero principal.
type Stake struct {
	id   ID
	body *body
}

func (s *Stake) ID() ID { return s.id }

func (s *Stake) Beneficiary() ledger.Address  { return s.body.Beneficiary }
func (s *Stake) PayoutWallet() ledger.Address { return s.body.PayoutWallet }
func (s *Stake) Unstaker() ledger.Address     { return s.body.Unstaker }

// Principal returns the outstanding staked amount.
func (s *Stake) Principal() *big.Int { return new(big.Int).Set(s.body.Principal) }

func (s *Stake) SplitBps() uint32 { return s.body.SplitBps }

// PendingSplit returns the queued split change; requestTime zero means none.
func (s *Stake) PendingSplit() (bps uint32, requestTime uint64) {
	return s.body.PendingSplitBps, s.body.PendingSplitRequestTime
}

func (s *Stake) StartTime() uint64          { return s.body.StartTime }
func (s *Stake) UnstakeRequestTime() uint64 { return s.body.UnstakeRequestTime }

// Unstaking returns whether an unstake request is pending.
func (s *Stake) Unstaking() bool { return s.body.UnstakeRequestTime != 0 }

// Closed returns whether the principal has been fully withdrawn.
func (s *Stake) Closed() bool { return s.body.Principal.Sign() == 0 }

// PaidOutReward returns the cumulative reward already settled for this stake.
func (s *Stake) PaidOutReward() *big.Int { return new(big.Int).Set(s.body.PaidOutReward) }

// AccSnapshot returns the accumulator value at creation or last settlement
// (linear model only).
func (s *Stake) AccSnapshot() *big.Int { return new(big.Int).Set(s.body.AccSnapshot) }

// AccFrozen returns the accumulator value frozen when unstaking was requested,
// nil while no request is pending (linear model only). Liveness is keyed off
// UnstakeRequestTime so it survives the record codec, which cannot round-trip
// a nil big.Int.
func (s *Stake) AccFrozen() *big.Int {
	if s.body.UnstakeRequestTime == 0 {
		return nil
	}
	if s.body.AccFrozen == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(s.body.AccFrozen)
}

// PoolShares returns the stake's claim on the shared pool (pool-share model only).
func (s *Stake) PoolShares() *big.Int { return new(big.Int).Set(s.body.PoolShares) }

//
// mutators; callers persist through Service.Update
//

func (s *Stake) SetPendingSplit(bps uint32, now uint64) {
	s.body.PendingSplitBps = bps
	s.body.PendingSplitRequestTime = now
}

// PromoteSplit makes bps the current split and clears any pending change.
func (s *Stake) PromoteSplit(bps uint32) {
	s.body.SplitBps = bps
	s.body.PendingSplitBps = 0
	s.body.PendingSplitRequestTime = 0
}

func (s *Stake) MarkUnstakeRequested(now uint64) {
	s.body.UnstakeRequestTime = now
}

func (s *Stake) ClearUnstakeRequest() {
	s.body.UnstakeRequestTime = 0
	s.body.AccFrozen = nil
}

func (s *Stake) SetStartTime(now uint64) {
	s.body.StartTime = now
}

func (s *Stake) SetAccSnapshot(acc *big.Int) {
	s.body.AccSnapshot = new(big.Int).Set(acc)
}

func (s *Stake) FreezeAcc(acc *big.Int) {
	s.body.AccFrozen = new(big.Int).Set(acc)
}

func (s *Stake) AddPaidOutReward(amount *big.Int) {
	s.body.PaidOutReward = new(big.Int).Add(s.body.PaidOutReward, amount)
}

// ReducePrincipal subtracts amount; the caller guarantees amount <= principal.
func (s *Stake) ReducePrincipal(amount *big.Int) {
	s.body.Principal = new(big.Int).Sub(s.body.Principal, amount)
}

// ReduceShares subtracts burned shares; the caller guarantees amount <= shares.
func (s *Stake) ReduceShares(amount *big.Int) {
	s.body.PoolShares = new(big.Int).Sub(s.body.PoolShares, amount)
}

func (s *Stake) SetPoolShares(shares *big.Int) {
	s.body.PoolShares = new(big.Int).Set(shares)
}
