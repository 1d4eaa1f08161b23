// Copyright (c) 2026 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWholeDays(t *testing.T) {
	assert.Equal(t, uint64(0), WholeDays(100, 100))
	assert.Equal(t, uint64(0), WholeDays(100, 50))
	assert.Equal(t, uint64(0), WholeDays(0, SecondsInDay-1))
	assert.Equal(t, uint64(1), WholeDays(0, SecondsInDay))
	assert.Equal(t, uint64(7), WholeDays(0, 7*SecondsInDay+3600))
}

func TestApplyBps(t *testing.T) {
	assert.Equal(t, big.NewInt(250), ApplyBps(big.NewInt(1000), 2500))
	assert.Equal(t, big.NewInt(1000), ApplyBps(big.NewInt(1000), 10_000))
	assert.Equal(t, big.NewInt(0), ApplyBps(big.NewInt(1000), 0))
	// truncation, never rounding up
	assert.Zero(t, big.NewInt(0).Cmp(ApplyBps(big.NewInt(3), 2500)))
}

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("0x00112233445566778899aabbccddeeff00112233")
	assert.NoError(t, err)
	assert.Equal(t, "0x00112233445566778899aabbccddeeff00112233", addr.String())

	_, err = ParseAddress("0x0011")
	assert.Error(t, err)

	_, err = ParseAddress("zz112233445566778899aabbccddeeff00112233")
	assert.Error(t, err)

	assert.True(t, Address{}.IsZero())
	assert.False(t, BytesToAddress([]byte("x")).IsZero())
}
