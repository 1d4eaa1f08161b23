// Copyright (c) 2026 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakemesh/ledger/kv"
	"github.com/stakemesh/ledger/lvldb"
)

func newStore(t *testing.T) *lvldb.LevelDB {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestTableRoundTrip(t *testing.T) {
	store := newStore(t)
	tbl := kv.NewTable("t1", store)

	assert.Equal(t, "t1", tbl.Name())

	require.NoError(t, tbl.Put([]byte("key"), []byte("value")))

	got, err := tbl.Get([]byte("key"))
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), got)

	has, err := tbl.Has([]byte("key"))
	require.NoError(t, err)
	assert.True(t, has)

	// the table prefixes keys into the source store
	raw, err := store.Get([]byte("t1key"))
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), raw)

	require.NoError(t, tbl.Delete([]byte("key")))
	_, err = tbl.Get([]byte("key"))
	assert.True(t, tbl.IsNotFound(err))
}

func TestTableIsolation(t *testing.T) {
	store := newStore(t)
	t1 := kv.NewTable("t1", store)
	t2 := kv.NewTable("t2", store)

	require.NoError(t, t1.Put([]byte("key"), []byte("one")))
	require.NoError(t, t2.Put([]byte("key"), []byte("two")))

	got, err := t1.Get([]byte("key"))
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), got)
	got, err = t2.Get([]byte("key"))
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), got)
}

func TestTableBatch(t *testing.T) {
	store := newStore(t)
	tbl := kv.NewTable("t1", store)

	batch := tbl.NewBatch()
	require.NoError(t, batch.Put([]byte("a"), []byte("1")))
	require.NoError(t, batch.Put([]byte("b"), []byte("2")))
	assert.Equal(t, 2, batch.Len())

	// nothing lands before Write
	has, err := tbl.Has([]byte("a"))
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, batch.Write())
	got, err := tbl.Get([]byte("b"))
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), got)
}

func TestTableIterator(t *testing.T) {
	store := newStore(t)
	t1 := kv.NewTable("t1", store)
	t2 := kv.NewTable("t2", store)

	require.NoError(t, t1.Put([]byte("a"), []byte("1")))
	require.NoError(t, t1.Put([]byte("b"), []byte("2")))
	require.NoError(t, t1.Put([]byte("c"), []byte("3")))
	require.NoError(t, t2.Put([]byte("a"), []byte("x")))

	// full-table scan yields only t1 pairs, prefix stripped, in key order
	var keys, values []string
	it := t1.NewIterator(kv.Range{})
	for it.Next() {
		keys = append(keys, string(it.Key()))
		values = append(values, string(it.Value()))
	}
	it.Release()
	require.NoError(t, it.Error())
	assert.Equal(t, []string{"a", "b", "c"}, keys)
	assert.Equal(t, []string{"1", "2", "3"}, values)

	// bounded range is half-open
	keys = nil
	it = t1.NewIterator(kv.Range{From: []byte("b"), To: []byte("c")})
	for it.Next() {
		keys = append(keys, string(it.Key()))
	}
	it.Release()
	require.NoError(t, it.Error())
	assert.Equal(t, []string{"b"}, keys)
}
