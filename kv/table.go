// Copyright (c) 2026 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

// Table introduces the table concept for a kv store, by prefixing keys
// with the table name.
type Table struct {
	name  string
	store Store
}

// NewTable creates a table over the source store.
func NewTable(name string, store Store) *Table {
	return &Table{name: name, store: store}
}

// Name returns the table name.
func (t *Table) Name() string {
	return t.name
}

func (t *Table) makeKey(key []byte) []byte {
	return append([]byte(t.name), key...)
}

func (t *Table) Get(key []byte) ([]byte, error) {
	return t.store.Get(t.makeKey(key))
}

func (t *Table) Has(key []byte) (bool, error) {
	return t.store.Has(t.makeKey(key))
}

func (t *Table) IsNotFound(err error) bool {
	return t.store.IsNotFound(err)
}

func (t *Table) Put(key, value []byte) error {
	return t.store.Put(t.makeKey(key), value)
}

func (t *Table) Delete(key []byte) error {
	return t.store.Delete(t.makeKey(key))
}

func (t *Table) NewBatch() Batch {
	return &tableBatch{
		t.store.NewBatch(),
		t.makeKey,
	}
}

func (t *Table) NewIterator(r Range) Iterator {
	r.From = t.makeKey(r.From)
	if len(r.To) == 0 {
		r.To = prefixLimit([]byte(t.name))
	} else {
		r.To = t.makeKey(r.To)
	}
	return &tableIter{
		t.store.NewIterator(r),
		len(t.name),
	}
}

// prefixLimit returns the smallest key greater than all keys with the prefix,
// nil if no such key exists.
func prefixLimit(prefix []byte) []byte {
	for i := len(prefix) - 1; i >= 0; i-- {
		if prefix[i] < 0xff {
			limit := make([]byte, i+1)
			copy(limit, prefix)
			limit[i]++
			return limit
		}
	}
	return nil
}

type tableBatch struct {
	Batch
	makeKey func([]byte) []byte
}

func (b *tableBatch) Put(key, value []byte) error {
	return b.Batch.Put(b.makeKey(key), value)
}

func (b *tableBatch) Delete(key []byte) error {
	return b.Batch.Delete(b.makeKey(key))
}

type tableIter struct {
	Iterator
	prefixLen int
}

func (i *tableIter) Key() []byte {
	return i.Iterator.Key()[i.prefixLen:]
}
