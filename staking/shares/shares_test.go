// Copyright (c) 2026 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package shares

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintFirstDeposit(t *testing.T) {
	minted := Mint(big.NewInt(100), big.NewInt(0), big.NewInt(0))
	assert.Equal(t, big.NewInt(100), minted)
}

func TestMintProportional(t *testing.T) {
	// pool appreciated 2x: 100 shares back 200 value, depositing 50 mints 25
	minted := Mint(big.NewInt(50), big.NewInt(100), big.NewInt(200))
	assert.Equal(t, big.NewInt(25), minted)
}

func TestClaimableAfterInjection(t *testing.T) {
	// single staker owns 100% of shares; inject 10 on a 100 pool
	claimable := Claimable(big.NewInt(100), big.NewInt(110), big.NewInt(100))
	assert.Equal(t, big.NewInt(110), claimable)
}

func TestTwoEqualStakesShareInjection(t *testing.T) {
	// two stakes of 1 unit each, 2 units reward injected: each claimable = 2
	one := big.NewInt(1e18)
	totalShares := new(big.Int).Mul(one, big.NewInt(2))
	totalPool := new(big.Int).Mul(one, big.NewInt(4))

	each := Claimable(one, totalPool, totalShares)
	assert.Equal(t, new(big.Int).Mul(one, big.NewInt(2)), each)
}

func TestClaimableEmptyPool(t *testing.T) {
	assert.Zero(t, Claimable(big.NewInt(0), big.NewInt(0), big.NewInt(0)).Sign())
}

func TestSplitWithdrawalPartial(t *testing.T) {
	// 100-unit stake whose claimable is 120; withdraw 30
	w, err := SplitWithdrawal(big.NewInt(30), big.NewInt(100), big.NewInt(120), big.NewInt(100))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(25), w.PrincipalPortion)
	assert.Equal(t, big.NewInt(5), w.RewardPortion)
	assert.Equal(t, big.NewInt(25), w.SharesBurned)
}

func TestSplitWithdrawalFull(t *testing.T) {
	w, err := SplitWithdrawal(big.NewInt(120), big.NewInt(100), big.NewInt(120), big.NewInt(100))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), w.PrincipalPortion)
	assert.Equal(t, big.NewInt(20), w.RewardPortion)
	assert.Equal(t, big.NewInt(100), w.SharesBurned)
}

func TestSplitWithdrawalBounds(t *testing.T) {
	_, err := SplitWithdrawal(big.NewInt(121), big.NewInt(100), big.NewInt(120), big.NewInt(100))
	assert.Error(t, err)

	_, err = SplitWithdrawal(big.NewInt(1), big.NewInt(0), big.NewInt(0), big.NewInt(0))
	assert.Error(t, err)
}
