// Copyright (c) 2026 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakemesh/ledger/ledger"
	"github.com/stakemesh/ledger/lvldb"
	"github.com/stakemesh/ledger/staking/reverts"
)

func newSvc(t *testing.T) *Service {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db)
}

var (
	alice = ledger.BytesToAddress([]byte("alice"))
	bob   = ledger.BytesToAddress([]byte("bob"))
	carol = ledger.BytesToAddress([]byte("carol"))
)

func TestCreateAssignsMonotonicIDs(t *testing.T) {
	svc := newSvc(t)

	st1, err := svc.Create(alice, bob, big.NewInt(100), 2500, 1000)
	require.NoError(t, err)
	st2, err := svc.Create(alice, bob, big.NewInt(200), 0, 1001)
	require.NoError(t, err)

	assert.Equal(t, ID(1), st1.ID())
	assert.Equal(t, ID(2), st2.ID())

	count, err := svc.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	// caller becomes wallet and unstaker
	assert.Equal(t, bob, st1.Beneficiary())
	assert.Equal(t, alice, st1.PayoutWallet())
	assert.Equal(t, alice, st1.Unstaker())
	assert.Equal(t, big.NewInt(100), st1.Principal())
	assert.Equal(t, uint32(2500), st1.SplitBps())
	assert.Equal(t, uint64(1000), st1.StartTime())
	assert.False(t, st1.Unstaking())
	assert.False(t, st1.Closed())
}

func TestGetRoundTrip(t *testing.T) {
	svc := newSvc(t)

	created, err := svc.Create(alice, bob, big.NewInt(100), 100, 42)
	require.NoError(t, err)

	got, err := svc.Get(created.ID())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.Beneficiary(), got.Beneficiary())
	assert.Equal(t, created.Principal(), got.Principal())

	missing, err := svc.Get(ID(99))
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUpdatePersistsMutations(t *testing.T) {
	svc := newSvc(t)

	st, err := svc.Create(alice, bob, big.NewInt(100), 0, 42)
	require.NoError(t, err)

	st.MarkUnstakeRequested(50)
	st.FreezeAcc(big.NewInt(7))
	st.AddPaidOutReward(big.NewInt(3))
	require.NoError(t, svc.Update(st))

	got, err := svc.Get(st.ID())
	require.NoError(t, err)
	assert.Equal(t, uint64(50), got.UnstakeRequestTime())
	assert.Equal(t, big.NewInt(7), got.AccFrozen())
	assert.Equal(t, big.NewInt(3), got.PaidOutReward())

	got.ClearUnstakeRequest()
	require.NoError(t, svc.Update(got))
	got, err = svc.Get(st.ID())
	require.NoError(t, err)
	assert.False(t, got.Unstaking())
	assert.Nil(t, got.AccFrozen())
}

func TestAccFrozenSurvivesReload(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := New(db)
	live, err := svc.Create(alice, bob, big.NewInt(100), 0, 42)
	require.NoError(t, err)
	frozen, err := svc.Create(alice, bob, big.NewInt(100), 0, 42)
	require.NoError(t, err)
	frozen.MarkUnstakeRequested(50)
	frozen.FreezeAcc(big.NewInt(7))
	require.NoError(t, svc.Update(frozen))
	early, err := svc.Create(alice, bob, big.NewInt(100), 0, 42)
	require.NoError(t, err)
	early.MarkUnstakeRequested(50)
	early.FreezeAcc(new(big.Int))
	require.NoError(t, svc.Update(early))

	// a fresh service sees only the committed bytes
	reloaded := New(db)

	got, err := reloaded.Get(live.ID())
	require.NoError(t, err)
	assert.False(t, got.Unstaking())
	assert.Nil(t, got.AccFrozen())

	got, err = reloaded.Get(frozen.ID())
	require.NoError(t, err)
	assert.True(t, got.Unstaking())
	assert.Equal(t, big.NewInt(7), got.AccFrozen())

	// freezing at accumulator zero is still a freeze
	got, err = reloaded.Get(early.ID())
	require.NoError(t, err)
	require.NotNil(t, got.AccFrozen())
	assert.Zero(t, got.AccFrozen().Sign())
}

func TestReverseIndices(t *testing.T) {
	svc := newSvc(t)

	st1, err := svc.Create(alice, bob, big.NewInt(100), 0, 1)
	require.NoError(t, err)
	st2, err := svc.Create(alice, bob, big.NewInt(100), 0, 2)
	require.NoError(t, err)
	_, err = svc.Create(carol, carol, big.NewInt(100), 0, 3)
	require.NoError(t, err)

	ids, err := svc.IDsByBeneficiary(bob)
	require.NoError(t, err)
	assert.ElementsMatch(t, []ID{st1.ID(), st2.ID()}, ids)

	ids, err = svc.IDsByUnstaker(alice)
	require.NoError(t, err)
	assert.ElementsMatch(t, []ID{st1.ID(), st2.ID()}, ids)

	ids, err = svc.IDsByPayoutWallet(bob)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestReassignPayoutWallet(t *testing.T) {
	svc := newSvc(t)

	st, err := svc.Create(alice, bob, big.NewInt(100), 0, 1)
	require.NoError(t, err)

	require.NoError(t, svc.ReassignPayoutWallet(st, carol))
	assert.Equal(t, carol, st.PayoutWallet())

	ids, err := svc.IDsByPayoutWallet(alice)
	require.NoError(t, err)
	assert.Empty(t, ids)
	ids, err = svc.IDsByPayoutWallet(carol)
	require.NoError(t, err)
	assert.Equal(t, []ID{st.ID()}, ids)

	// unstaker index untouched
	ids, err = svc.IDsByUnstaker(alice)
	require.NoError(t, err)
	assert.Equal(t, []ID{st.ID()}, ids)

	err = svc.ReassignPayoutWallet(st, ledger.Address{})
	assert.True(t, reverts.IsRevert(err))
}

func TestReassignUnstaker(t *testing.T) {
	svc := newSvc(t)

	st, err := svc.Create(alice, bob, big.NewInt(100), 0, 1)
	require.NoError(t, err)

	require.NoError(t, svc.ReassignUnstaker(st, carol))
	assert.Equal(t, carol, st.Unstaker())

	ids, err := svc.IDsByUnstaker(carol)
	require.NoError(t, err)
	assert.Equal(t, []ID{st.ID()}, ids)

	err = svc.ReassignUnstaker(st, ledger.Address{})
	assert.True(t, reverts.IsRevert(err))
}
