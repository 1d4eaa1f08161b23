// Copyright (c) 2026 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakemesh/ledger/staking"
	"github.com/stakemesh/ledger/staking/reverts"
)

func TestVaultClaimLinearAccrual(t *testing.T) {
	tok := &recordingToken{}
	v := newVault(t, vaultParams(), tok, nil)

	id, err := v.Stake(alice, big.NewInt(1_000_000), 0, genesis)
	require.NoError(t, err)

	// 2000 bps per day over 7 whole days, sub-day remainder pays nothing
	pending, err := v.PendingReward(id, genesis+7*day+3600)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1_400_000), pending)

	require.NoError(t, v.Claim(alice, id, genesis+7*day+3600))
	assert.Equal(t, big.NewInt(1_400_000), tok.paidTo(alice))

	// principal untouched
	st, err := v.GetStake(id)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1_000_000), st.Principal())
	assert.Equal(t, big.NewInt(1_400_000), st.PaidOutReward())

	// the paid window does not pay twice
	pending, err = v.PendingReward(id, genesis+7*day+3600)
	require.NoError(t, err)
	assert.Zero(t, pending.Sign())
}

func TestVaultAccrualFreezesOnUnstakeRequest(t *testing.T) {
	tok := &recordingToken{}
	v := newVault(t, vaultParams(), tok, nil)

	id, err := v.Stake(alice, big.NewInt(1_000_000), 0, genesis)
	require.NoError(t, err)
	require.NoError(t, v.RequestUnstake(alice, id, genesis+3*day))

	// frozen at 3 days regardless of how long settlement waits
	pending, err := v.PendingReward(id, genesis+10*day)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(600_000), pending)

	require.NoError(t, v.Unstake(alice, id, genesis+10*day))
	assert.Equal(t, big.NewInt(1_600_000), tok.paidTo(alice))

	st, err := v.GetStake(id)
	require.NoError(t, err)
	assert.True(t, st.Closed())
}

func TestVaultUnstakeTimeLock(t *testing.T) {
	tok := &recordingToken{}
	v := newVault(t, vaultParams(), tok, nil)

	id, err := v.Stake(alice, big.NewInt(1_000_000), 0, genesis)
	require.NoError(t, err)

	// no request yet
	err = v.Unstake(alice, id, genesis+5*day)
	assert.True(t, reverts.IsRevert(err))

	require.NoError(t, v.RequestUnstake(alice, id, genesis+day))

	// one second short of the 2 day lock
	err = v.Unstake(alice, id, genesis+3*day-1)
	assert.True(t, reverts.IsRevert(err))

	// boundary second settles
	require.NoError(t, v.Unstake(alice, id, genesis+3*day))
}

func TestVaultClaimDuringUnstakingUsesFrozenWindow(t *testing.T) {
	tok := &recordingToken{}
	v := newVault(t, vaultParams(), tok, nil)

	id, err := v.Stake(alice, big.NewInt(1_000_000), 0, genesis)
	require.NoError(t, err)
	require.NoError(t, v.RequestUnstake(alice, id, genesis+2*day))

	// claim while the lock runs pays the frozen 2 day window
	require.NoError(t, v.Claim(alice, id, genesis+4*day))
	assert.Equal(t, big.NewInt(400_000), tok.paidTo(alice))

	// the final settlement owes nothing further
	require.NoError(t, v.Unstake(alice, id, genesis+4*day))
	assert.Equal(t, big.NewInt(1_400_000), tok.paidTo(alice))
}

func TestVaultRequireClaimBeforeUnstake(t *testing.T) {
	params := vaultParams()
	params.RequireClaimBeforeUnstake = true
	tok := &recordingToken{}
	v := newVault(t, params, tok, nil)

	id, err := v.Stake(alice, big.NewInt(1_000_000), 0, genesis)
	require.NoError(t, err)

	err = v.RequestUnstake(alice, id, genesis+day)
	assert.True(t, reverts.IsRevert(err), "unclaimed reward blocks the request")

	require.NoError(t, v.Claim(alice, id, genesis+day))
	require.NoError(t, v.RequestUnstake(alice, id, genesis+day))
}

func TestVaultSetRewardRate(t *testing.T) {
	params := vaultParams()
	params.RewardRatePerDayBps = 1000
	tok := &recordingToken{}
	v := newVault(t, params, tok, nil)

	id, err := v.Stake(alice, big.NewInt(1_000_000), 0, genesis)
	require.NoError(t, err)

	err = v.SetRewardRate(alice, 2000, genesis+2*day)
	assert.True(t, reverts.IsRevert(err), "admin only")

	err = v.SetRewardRate(admin, 10_001, genesis+2*day)
	assert.True(t, reverts.IsRevert(err), "above the rate ceiling")

	require.NoError(t, v.SetRewardRate(admin, 2000, genesis+2*day))
	rate, err := v.RewardRate()
	require.NoError(t, err)
	assert.EqualValues(t, 2000, rate)

	// 2 days at 1000 bps plus 3 days at 2000 bps
	pending, err := v.PendingReward(id, genesis+5*day)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(800_000), pending)
}

func TestVaultSplitAppliesAtSettlement(t *testing.T) {
	tok := &recordingToken{}
	v := newVault(t, vaultParams(), tok, nil)

	id, err := v.StakeFor(alice, bob, big.NewInt(1_000_000), 0, genesis)
	require.NoError(t, err)
	require.NoError(t, v.RequestSplitUpdate(bob, id, 5000, genesis+day))

	// settlement after the grace period pays the new split
	require.NoError(t, v.Claim(bob, id, genesis+3*day))
	assert.Equal(t, big.NewInt(300_000), tok.paidTo(alice))
	assert.Equal(t, big.NewInt(300_000), tok.paidTo(bob))

	// the pending value is promoted to current
	st, err := v.GetStake(id)
	require.NoError(t, err)
	assert.EqualValues(t, 5000, st.SplitBps())
	_, requestTime := st.PendingSplit()
	assert.Zero(t, requestTime)
}

func TestVaultClaimAuth(t *testing.T) {
	tok := &recordingToken{}
	v := newVault(t, vaultParams(), tok, nil)

	id, err := v.StakeFor(alice, bob, big.NewInt(1_000_000), 0, genesis)
	require.NoError(t, err)

	err = v.Claim(carol, id, genesis+day)
	assert.True(t, reverts.IsRevert(err))

	require.NoError(t, v.Claim(alice, id, genesis+day))
	require.NoError(t, v.Claim(bob, id, genesis+day))
}

func TestVaultClosedStakeRejectsOperations(t *testing.T) {
	tok := &recordingToken{}
	v := newVault(t, vaultParams(), tok, nil)

	id, err := v.Stake(alice, big.NewInt(1_000_000), 0, genesis)
	require.NoError(t, err)
	require.NoError(t, v.RequestUnstake(alice, id, genesis))
	require.NoError(t, v.Unstake(alice, id, genesis+2*day))

	err = v.Claim(alice, id, genesis+3*day)
	assert.True(t, reverts.IsRevert(err))
	err = v.RequestUnstake(alice, id, genesis+3*day)
	assert.True(t, reverts.IsRevert(err))
	err = v.Unstake(alice, id, genesis+3*day)
	assert.True(t, reverts.IsRevert(err))
}

func TestVaultRewardSurvivesReopen(t *testing.T) {
	store := memStore(t)
	tok := &recordingToken{}
	opts := staking.Options{
		Token:     tok,
		Whitelist: staking.NewMapWhitelist(alice),
		Admin:     admin,
	}
	v, err := staking.NewVault(store, vaultParams(), opts)
	require.NoError(t, err)

	liveID, err := v.Stake(alice, big.NewInt(1_000_000), 0, genesis)
	require.NoError(t, err)
	frozenID, err := v.Stake(alice, big.NewInt(500_000), 0, genesis)
	require.NoError(t, err)
	require.NoError(t, v.RequestUnstake(alice, frozenID, genesis+3*day))

	v2, err := staking.NewVault(store, vaultParams(), opts)
	require.NoError(t, err)

	// the live stake keeps accruing after the reopen
	require.NoError(t, v2.Claim(alice, liveID, genesis+5*day))
	assert.Equal(t, big.NewInt(1_000_000), tok.paidTo(alice))

	// the window frozen before the reopen still bounds the settlement
	require.NoError(t, v2.Unstake(alice, frozenID, genesis+10*day))
	assert.Equal(t, big.NewInt(1_800_000), tok.paidTo(alice))

	st, err := v2.GetStake(frozenID)
	require.NoError(t, err)
	assert.True(t, st.Closed())
	assert.Equal(t, big.NewInt(300_000), st.PaidOutReward())
}

func TestVaultUnstakeRequestedBeforeFirstDay(t *testing.T) {
	store := memStore(t)
	tok := &recordingToken{}
	opts := staking.Options{
		Token:     tok,
		Whitelist: staking.NewMapWhitelist(alice),
		Admin:     admin,
	}
	v, err := staking.NewVault(store, vaultParams(), opts)
	require.NoError(t, err)

	id, err := v.Stake(alice, big.NewInt(1_000_000), 0, genesis)
	require.NoError(t, err)
	// no whole day has passed, the frozen accumulator is zero
	require.NoError(t, v.RequestUnstake(alice, id, genesis+3600))

	v2, err := staking.NewVault(store, vaultParams(), opts)
	require.NoError(t, err)

	pending, err := v2.PendingReward(id, genesis+3*day)
	require.NoError(t, err)
	assert.Zero(t, pending.Sign())

	// principal comes back in full with no reward
	require.NoError(t, v2.Unstake(alice, id, genesis+3*day))
	assert.Equal(t, big.NewInt(1_000_000), tok.paidTo(alice))

	st, err := v2.GetStake(id)
	require.NoError(t, err)
	assert.True(t, st.Closed())
	assert.Zero(t, st.PaidOutReward().Sign())
}

func TestVaultPersistsAcrossReopen(t *testing.T) {
	store := memStore(t)
	tok := &recordingToken{}
	opts := staking.Options{
		Token:     tok,
		Whitelist: staking.NewMapWhitelist(alice),
		Admin:     admin,
	}
	v, err := staking.NewVault(store, vaultParams(), opts)
	require.NoError(t, err)

	id, err := v.Stake(alice, big.NewInt(1_000_000), 0, genesis)
	require.NoError(t, err)

	// a second open over the same store sees the same ledger; the params
	// passed here are ignored in favor of the persisted ones
	altered := vaultParams()
	altered.RewardRatePerDayBps = 1
	v2, err := staking.NewVault(store, altered, opts)
	require.NoError(t, err)

	pending, err := v2.PendingReward(id, genesis+7*day)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1_400_000), pending)
}
