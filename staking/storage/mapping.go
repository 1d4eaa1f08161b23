// Copyright (c) 2026 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/stakemesh/ledger/kv"
)

// Key is anything that can key a mapping.
type Key interface {
	Bytes() []byte
}

// Mapping is a named key/value collection of RLP-encoded records, similar to a
// mapping in a smart contract.
type Mapping[K Key, V any] struct {
	store kv.GetPutter
	name  string
}

func NewMapping[K Key, V any](store kv.GetPutter, name string) *Mapping[K, V] {
	return &Mapping[K, V]{store: store, name: name}
}

func (m *Mapping[K, V]) makeKey(key K) []byte {
	return append([]byte(m.name), key.Bytes()...)
}

// Get retrieves the record for key. ok is false when no record exists.
func (m *Mapping[K, V]) Get(key K) (value V, ok bool, err error) {
	raw, err := m.store.Get(m.makeKey(key))
	if err != nil {
		if m.store.IsNotFound(err) {
			return value, false, nil
		}
		return value, false, errors.Wrapf(err, "get %s", m.name)
	}
	if err := rlp.DecodeBytes(raw, &value); err != nil {
		return value, false, errors.Wrapf(err, "decode %s", m.name)
	}
	return value, true, nil
}

// Set stores the record for key, overwriting any previous one.
func (m *Mapping[K, V]) Set(key K, value V) error {
	raw, err := rlp.EncodeToBytes(value)
	if err != nil {
		return errors.Wrapf(err, "encode %s", m.name)
	}
	return m.store.Put(m.makeKey(key), raw)
}

// Delete removes the record for key.
func (m *Mapping[K, V]) Delete(key K) error {
	return m.store.Delete(m.makeKey(key))
}
