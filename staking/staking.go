// Copyright (c) 2026 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staking implements the dual-mode staking ledger: a permissioned
// vault pool paying linear per-day rewards and a permissionless open pool
// paying pool-share proportional rewards.
//
// Every public operation takes the authenticated caller and the current time
// explicitly; time is supplied by an external trusted clock and must never
// decrease. An operation either commits in full or leaves the backing store
// untouched.
package staking

import (
	"github.com/stakemesh/ledger/log"
	"github.com/stakemesh/ledger/metrics"
)

var logger = log.WithContext("pkg", "staking")

// Kind selects the reward strategy of a pool instance.
type Kind int

const (
	// KindVault is the permissioned pool with linear accrual.
	KindVault Kind = iota
	// KindOpen is the permissionless pool with pool-share accrual.
	KindOpen
)

func (k Kind) String() string {
	switch k {
	case KindVault:
		return "vault"
	case KindOpen:
		return "open"
	default:
		return "unknown"
	}
}

// ParseKind parses a pool kind name.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "vault":
		return KindVault, true
	case "open":
		return KindOpen, true
	default:
		return 0, false
	}
}

var (
	metricOps = metrics.LazyLoad(func() metrics.CountVecMeter {
		return metrics.CounterVec("ops_total", []string{"pool", "op", "outcome"})
	})
	metricTokensStaked = metrics.LazyLoad(func() metrics.GaugeVecMeter {
		return metrics.GaugeVec("tokens_staked", []string{"pool"})
	})
	metricPoolSize = metrics.LazyLoad(func() metrics.GaugeMeter {
		return metrics.Gauge("total_pool_size")
	})
	metricShareAmount = metrics.LazyLoad(func() metrics.GaugeMeter {
		return metrics.Gauge("total_share_amount")
	})
)
