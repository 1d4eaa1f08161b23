// Copyright (c) 2026 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"encoding/binary"
	"math/big"

	"github.com/pkg/errors"

	"github.com/stakemesh/ledger/kv"
)

// U256 is a named slot holding a non-negative big integer.
// A missing slot reads as zero.
type U256 struct {
	store kv.GetPutter
	key   []byte
}

func NewU256(store kv.GetPutter, name string) *U256 {
	return &U256{store: store, key: []byte(name)}
}

func (u *U256) Get() (*big.Int, error) {
	raw, err := u.store.Get(u.key)
	if err != nil {
		if u.store.IsNotFound(err) {
			return new(big.Int), nil
		}
		return nil, errors.Wrapf(err, "get slot %s", u.key)
	}
	return new(big.Int).SetBytes(raw), nil
}

func (u *U256) Set(value *big.Int) error {
	if value.Sign() < 0 {
		return errors.Errorf("slot %s: negative value", u.key)
	}
	return u.store.Put(u.key, value.Bytes())
}

func (u *U256) Add(delta *big.Int) error {
	value, err := u.Get()
	if err != nil {
		return err
	}
	return u.Set(value.Add(value, delta))
}

// Sub subtracts delta and errors on underflow. An underflow here always means
// the ledger's aggregates disagree with the per-stake records.
func (u *U256) Sub(delta *big.Int) error {
	value, err := u.Get()
	if err != nil {
		return err
	}
	value.Sub(value, delta)
	if value.Sign() < 0 {
		return errors.Errorf("slot %s: underflow", u.key)
	}
	return u.store.Put(u.key, value.Bytes())
}

// U64 is a named slot holding an uint64. A missing slot reads as zero.
type U64 struct {
	store kv.GetPutter
	key   []byte
}

func NewU64(store kv.GetPutter, name string) *U64 {
	return &U64{store: store, key: []byte(name)}
}

func (u *U64) Get() (uint64, error) {
	raw, err := u.store.Get(u.key)
	if err != nil {
		if u.store.IsNotFound(err) {
			return 0, nil
		}
		return 0, errors.Wrapf(err, "get slot %s", u.key)
	}
	if len(raw) != 8 {
		return 0, errors.Errorf("slot %s: malformed value", u.key)
	}
	return binary.BigEndian.Uint64(raw), nil
}

func (u *U64) Set(value uint64) error {
	var raw [8]byte
	binary.BigEndian.PutUint64(raw[:], value)
	return u.store.Put(u.key, raw[:])
}
