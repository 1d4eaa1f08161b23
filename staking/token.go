// Copyright (c) 2026 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/stakemesh/ledger/ledger"
)

// Token is the external fungible-token boundary. Implementations may call
// back into the pool during a transfer; such nested calls are rejected by the
// reentrancy guard.
type Token interface {
	// TransferIn pulls amount from the given account into the pool.
	TransferIn(from ledger.Address, amount *big.Int) error
	// TransferOut pays amount from the pool to the given account.
	TransferOut(to ledger.Address, amount *big.Int) error
}

// Whitelist is the membership boundary of the permissioned pool. Add/remove
// bookkeeping lives with the implementer.
type Whitelist interface {
	Allowed(addr ledger.Address) bool
}

// MapWhitelist is a static in-memory whitelist, suitable for tests and tools.
type MapWhitelist map[ledger.Address]struct{}

func (m MapWhitelist) Allowed(addr ledger.Address) bool {
	_, ok := m[addr]
	return ok
}

// NewMapWhitelist builds a MapWhitelist from the given members.
func NewMapWhitelist(members ...ledger.Address) MapWhitelist {
	m := make(MapWhitelist, len(members))
	for _, addr := range members {
		m[addr] = struct{}{}
	}
	return m
}
