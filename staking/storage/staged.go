// Copyright (c) 2026 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package storage provides typed record storage for the staking ledger on top
// of a kv store: a staged write overlay giving every public operation
// all-or-nothing semantics, and slot/mapping wrappers for the record shapes.
package storage

import (
	"github.com/pkg/errors"

	"github.com/stakemesh/ledger/kv"
)

var errNotFound = errors.New("not found")

// Staged is a write overlay on top of a kv store. Reads see staged writes
// first, then fall through to the source. Nothing reaches the source until
// Commit, which flushes the journal in a single batch.
type Staged struct {
	src kv.Store
	kvs map[string]stagedEntry
}

type stagedEntry struct {
	value   []byte
	deleted bool
}

// NewStaged creates an overlay over src.
func NewStaged(src kv.Store) *Staged {
	return &Staged{
		src: src,
		kvs: make(map[string]stagedEntry),
	}
}

func (s *Staged) Get(key []byte) ([]byte, error) {
	if entry, ok := s.kvs[string(key)]; ok {
		if entry.deleted {
			return nil, errNotFound
		}
		return entry.value, nil
	}
	return s.src.Get(key)
}

func (s *Staged) Has(key []byte) (bool, error) {
	if entry, ok := s.kvs[string(key)]; ok {
		return !entry.deleted, nil
	}
	return s.src.Has(key)
}

func (s *Staged) IsNotFound(err error) bool {
	return err == errNotFound || s.src.IsNotFound(err)
}

func (s *Staged) Put(key, val []byte) error {
	s.kvs[string(key)] = stagedEntry{value: append([]byte(nil), val...)}
	return nil
}

func (s *Staged) Delete(key []byte) error {
	s.kvs[string(key)] = stagedEntry{deleted: true}
	return nil
}

// Commit writes the journal to the source store atomically.
func (s *Staged) Commit() error {
	batch := s.src.NewBatch()
	for key, entry := range s.kvs {
		if entry.deleted {
			if err := batch.Delete([]byte(key)); err != nil {
				return err
			}
		} else if err := batch.Put([]byte(key), entry.value); err != nil {
			return err
		}
	}
	if err := batch.Write(); err != nil {
		return errors.Wrap(err, "commit staged writes")
	}
	s.kvs = make(map[string]stagedEntry)
	return nil
}

// Discard drops all staged writes.
func (s *Staged) Discard() {
	s.kvs = make(map[string]stagedEntry)
}

// Len returns the number of staged keys.
func (s *Staged) Len() int {
	return len(s.kvs)
}
