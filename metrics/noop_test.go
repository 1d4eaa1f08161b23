// Copyright (c) 2026 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoopDefaults(t *testing.T) {
	assert.IsType(t, &noopMetrics{}, metrics)

	// meters must be usable without initialization
	Counter("ops_total").Add(1)
	CounterVec("ops_by_kind", []string{"kind"}).AddWithLabel(1, map[string]string{"kind": "stake"})
	Gauge("tokens_staked").Set(100)
	GaugeVec("pool_size", []string{"pool"}).SetWithLabel(1, map[string]string{"pool": "open"})

	assert.Nil(t, HTTPHandler())
}

func TestLazyLoad(t *testing.T) {
	calls := 0
	load := LazyLoad(func() CountMeter {
		calls++
		return Counter("lazy_total")
	})
	load().Add(1)
	load().Add(1)
	assert.Equal(t, 1, calls)
}
