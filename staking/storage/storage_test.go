// Copyright (c) 2026 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakemesh/ledger/lvldb"
)

type testKey string

func (k testKey) Bytes() []byte { return []byte(k) }

type testRecord struct {
	Amount *big.Int
	Label  string
}

func TestStagedCommitDiscard(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	staged := NewStaged(db)
	require.NoError(t, staged.Put([]byte("a"), []byte("1")))

	// staged write visible through the overlay, invisible below
	v, err := staged.Get([]byte("a"))
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v)
	_, err = db.Get([]byte("a"))
	assert.True(t, db.IsNotFound(err))

	staged.Discard()
	assert.Zero(t, staged.Len())
	_, err = staged.Get([]byte("a"))
	assert.True(t, staged.IsNotFound(err))

	require.NoError(t, staged.Put([]byte("a"), []byte("2")))
	require.NoError(t, staged.Commit())
	v, err = db.Get([]byte("a"))
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), v)
}

func TestStagedDelete(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Put([]byte("a"), []byte("1")))

	staged := NewStaged(db)
	require.NoError(t, staged.Delete([]byte("a")))

	_, err = staged.Get([]byte("a"))
	assert.True(t, staged.IsNotFound(err))
	has, err := staged.Has([]byte("a"))
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, staged.Commit())
	_, err = db.Get([]byte("a"))
	assert.True(t, db.IsNotFound(err))
}

func TestMappingRoundTrip(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	m := NewMapping[testKey, *testRecord](db, "records")

	_, ok, err := m.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set("r1", &testRecord{Amount: big.NewInt(42), Label: "x"}))
	rec, ok, err := m.Get("r1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, big.NewInt(42), rec.Amount)
	assert.Equal(t, "x", rec.Label)

	require.NoError(t, m.Delete("r1"))
	_, ok, err = m.Get("r1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestU256(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	slot := NewU256(db, "total")

	v, err := slot.Get()
	require.NoError(t, err)
	assert.Zero(t, v.Sign())

	require.NoError(t, slot.Add(big.NewInt(100)))
	require.NoError(t, slot.Sub(big.NewInt(40)))
	v, err = slot.Get()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(60), v)

	assert.Error(t, slot.Sub(big.NewInt(61)))
	assert.Error(t, slot.Set(big.NewInt(-1)))
}

func TestU64(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	slot := NewU64(db, "count")
	v, err := slot.Get()
	require.NoError(t, err)
	assert.Zero(t, v)

	require.NoError(t, slot.Set(7))
	v, err = slot.Get()
	require.NoError(t, err)
	assert.Equal(t, uint64(7), v)
}
