// Copyright (c) 2026 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package shares implements the pool-share reward model arithmetic. Stakes
// mint shares of a common pool; reward injections enlarge the pool without
// minting, which is the sole mechanism by which shares appreciate.
package shares

import (
	"math/big"

	"github.com/pkg/errors"
)

// Mint returns the shares minted for depositing amount into a pool currently
// holding totalPool value against totalShares shares. The first deposit mints
// one share per token.
func Mint(amount, totalShares, totalPool *big.Int) *big.Int {
	if totalShares.Sign() == 0 {
		return new(big.Int).Set(amount)
	}
	minted := new(big.Int).Mul(amount, totalShares)
	return minted.Div(minted, totalPool)
}

// Claimable returns the redemption value of the given shares:
// shares * totalPool / totalShares. Zero when the pool holds no shares.
func Claimable(stakeShares, totalPool, totalShares *big.Int) *big.Int {
	if totalShares.Sign() == 0 {
		return new(big.Int)
	}
	value := new(big.Int).Mul(stakeShares, totalPool)
	return value.Div(value, totalShares)
}

// Withdrawal is the proportional bookkeeping of a (partial) withdrawal.
type Withdrawal struct {
	PrincipalPortion *big.Int
	RewardPortion    *big.Int
	SharesBurned     *big.Int
}

// SplitWithdrawal computes the proportional breakdown of withdrawing amount
// from a stake whose current redemption value is claimable:
//
//	principalPortion = amount * principal / claimable
//	rewardPortion    = amount - principalPortion
//	sharesBurned     = stakeShares * amount / claimable
//
// The caller guarantees amount <= claimable. A full withdrawal
// (amount == claimable) burns the shares exactly and returns the whole
// principal, leaving no dust.
func SplitWithdrawal(amount, principal, claimable, stakeShares *big.Int) (*Withdrawal, error) {
	if claimable.Sign() == 0 {
		return nil, errors.New("zero claimable value")
	}
	if amount.Cmp(claimable) > 0 {
		return nil, errors.New("withdrawal above claimable value")
	}

	principalPortion := new(big.Int).Mul(amount, principal)
	principalPortion.Div(principalPortion, claimable)

	burned := new(big.Int).Mul(stakeShares, amount)
	burned.Div(burned, claimable)

	return &Withdrawal{
		PrincipalPortion: principalPortion,
		RewardPortion:    new(big.Int).Sub(amount, principalPortion),
		SharesBurned:     burned,
	}, nil
}
