// Copyright (c) 2026 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/stakemesh/ledger/kv"
	"github.com/stakemesh/ledger/ledger"
	"github.com/stakemesh/ledger/staking/reverts"
	"github.com/stakemesh/ledger/staking/storage"
)

const (
	tblStakes        = "stakes"
	slotStakeCount   = "stake-count"
	tblByBeneficiary = "ids-beneficiary"
	tblByWallet      = "ids-wallet"
	tblByUnstaker    = "ids-unstaker"
)

// Service is the stake registry. It owns record creation, role reassignment
// and the reverse indices; all reward semantics live with the caller.
type Service struct {
	stakes *storage.Mapping[ID, *body]
	count  *storage.U64

	byBeneficiary *storage.Mapping[ledger.Address, []uint64]
	byWallet      *storage.Mapping[ledger.Address, []uint64]
	byUnstaker    *storage.Mapping[ledger.Address, []uint64]
}

func New(store kv.GetPutter) *Service {
	return &Service{
		stakes:        storage.NewMapping[ID, *body](store, tblStakes),
		count:         storage.NewU64(store, slotStakeCount),
		byBeneficiary: storage.NewMapping[ledger.Address, []uint64](store, tblByBeneficiary),
		byWallet:      storage.NewMapping[ledger.Address, []uint64](store, tblByWallet),
		byUnstaker:    storage.NewMapping[ledger.Address, []uint64](store, tblByUnstaker),
	}
}

// Create assigns the next id and persists a fresh record. The caller becomes
// both payout wallet and unstaker.
func (s *Service) Create(caller, beneficiary ledger.Address, amount *big.Int, splitBps uint32, now uint64) (*Stake, error) {
	count, err := s.count.Get()
	if err != nil {
		return nil, err
	}
	id := ID(count + 1)
	if err := s.count.Set(uint64(id)); err != nil {
		return nil, err
	}

	st := &Stake{
		id: id,
		body: &body{
			Beneficiary:   beneficiary,
			PayoutWallet:  caller,
			Unstaker:      caller,
			Principal:     new(big.Int).Set(amount),
			SplitBps:      splitBps,
			StartTime:     now,
			PaidOutReward: new(big.Int),
			AccSnapshot:   new(big.Int),
			PoolShares:    new(big.Int),
		},
	}
	if err := s.stakes.Set(id, st.body); err != nil {
		return nil, err
	}

	if err := s.indexAdd(s.byBeneficiary, beneficiary, id); err != nil {
		return nil, err
	}
	if err := s.indexAdd(s.byWallet, caller, id); err != nil {
		return nil, err
	}
	return st, s.indexAdd(s.byUnstaker, caller, id)
}

// Get retrieves a stake, nil when the id was never assigned.
func (s *Service) Get(id ID) (*Stake, error) {
	b, ok, err := s.stakes.Get(id)
	if err != nil {
		return nil, errors.Wrap(err, "get stake")
	}
	if !ok {
		return nil, nil
	}
	return &Stake{id: id, body: b}, nil
}

// Update persists a mutated record.
func (s *Service) Update(st *Stake) error {
	return s.stakes.Set(st.id, st.body)
}

// Count returns the number of stakes ever created.
func (s *Service) Count() (uint64, error) {
	return s.count.Get()
}

// ReassignPayoutWallet moves the stake to a new payout wallet, keeping the
// reverse index consistent.
func (s *Service) ReassignPayoutWallet(st *Stake, newWallet ledger.Address) error {
	if newWallet.IsZero() {
		return reverts.New("payout wallet cannot be the zero address")
	}
	if err := s.indexRemove(s.byWallet, st.body.PayoutWallet, st.id); err != nil {
		return err
	}
	st.body.PayoutWallet = newWallet
	if err := s.indexAdd(s.byWallet, newWallet, st.id); err != nil {
		return err
	}
	return s.Update(st)
}

// ReassignUnstaker moves the stake to a new unstaker, keeping the reverse
// index consistent.
func (s *Service) ReassignUnstaker(st *Stake, newUnstaker ledger.Address) error {
	if newUnstaker.IsZero() {
		return reverts.New("unstaker cannot be the zero address")
	}
	if err := s.indexRemove(s.byUnstaker, st.body.Unstaker, st.id); err != nil {
		return err
	}
	st.body.Unstaker = newUnstaker
	if err := s.indexAdd(s.byUnstaker, newUnstaker, st.id); err != nil {
		return err
	}
	return s.Update(st)
}

// IDsByBeneficiary lists stake ids whose beneficiary is addr.
func (s *Service) IDsByBeneficiary(addr ledger.Address) ([]ID, error) {
	return s.indexGet(s.byBeneficiary, addr)
}

// IDsByPayoutWallet lists stake ids whose payout wallet is addr.
func (s *Service) IDsByPayoutWallet(addr ledger.Address) ([]ID, error) {
	return s.indexGet(s.byWallet, addr)
}

// IDsByUnstaker lists stake ids whose unstaker is addr.
func (s *Service) IDsByUnstaker(addr ledger.Address) ([]ID, error) {
	return s.indexGet(s.byUnstaker, addr)
}

func (s *Service) indexGet(m *storage.Mapping[ledger.Address, []uint64], addr ledger.Address) ([]ID, error) {
	raw, _, err := m.Get(addr)
	if err != nil {
		return nil, err
	}
	ids := make([]ID, len(raw))
	for i, id := range raw {
		ids[i] = ID(id)
	}
	return ids, nil
}

func (s *Service) indexAdd(m *storage.Mapping[ledger.Address, []uint64], addr ledger.Address, id ID) error {
	ids, _, err := m.Get(addr)
	if err != nil {
		return err
	}
	return m.Set(addr, append(ids, uint64(id)))
}

// indexRemove drops id from the list via swap-with-last; order is not part of
// the index contract.
func (s *Service) indexRemove(m *storage.Mapping[ledger.Address, []uint64], addr ledger.Address, id ID) error {
	ids, _, err := m.Get(addr)
	if err != nil {
		return err
	}
	for i, got := range ids {
		if got == uint64(id) {
			ids[i] = ids[len(ids)-1]
			ids = ids[:len(ids)-1]
			if len(ids) == 0 {
				return m.Delete(addr)
			}
			return m.Set(addr, ids)
		}
	}
	return errors.Errorf("stake %d missing from reverse index", id)
}
