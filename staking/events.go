// Copyright (c) 2026 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/stakemesh/ledger/ledger"
	"github.com/stakemesh/ledger/staking/stake"
)

// Event is a notification emitted after an operation commits. The concrete
// types below describe the payload shapes.
type Event any

// Listener receives events. It is invoked synchronously after commit and
// before any outbound transfer result is returned.
type Listener func(Event)

// StakeCreated is emitted for every new stake record.
type StakeCreated struct {
	ID           stake.ID
	Beneficiary  ledger.Address
	PayoutWallet ledger.Address
	Amount       *big.Int
	SplitBps     uint32
	Time         uint64
}

// UnstakeRequested marks the start of an unstaking time lock.
type UnstakeRequested struct {
	ID   stake.ID
	Time uint64
}

// Settled carries the payout breakdown of a claim or withdrawal.
type Settled struct {
	ID                  stake.ID
	Principal           *big.Int
	RewardToWallet      *big.Int
	RewardToBeneficiary *big.Int
	Time                uint64
}

// SplitUpdateRequested records a queued split change.
type SplitUpdateRequested struct {
	ID     stake.ID
	NewBps uint32
	Time   uint64
}

// PayoutWalletReassigned records a payout wallet change.
type PayoutWalletReassigned struct {
	ID       stake.ID
	Previous ledger.Address
	New      ledger.Address
}

// UnstakerReassigned records an unstaker change.
type UnstakerReassigned struct {
	ID       stake.ID
	Previous ledger.Address
	New      ledger.Address
}

// RewardAdded records an external reward injection into the open pool.
type RewardAdded struct {
	From   ledger.Address
	Amount *big.Int
	Time   uint64
}

// ParamChanged records an admin parameter change.
type ParamChanged struct {
	Name     string
	Previous string
	New      string
}
