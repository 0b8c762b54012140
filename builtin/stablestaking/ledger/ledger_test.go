// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canbus-network/canbus/builtin/solidity"
	"github.com/canbus-network/canbus/builtin/stablestaking/checkpoint"
	"github.com/canbus-network/canbus/builtin/stablestaking/reverts"
	"github.com/canbus-network/canbus/canbus"
	"github.com/canbus-network/canbus/lvldb"
	"github.com/canbus-network/canbus/state"
)

var (
	alice = canbus.BytesToAddress([]byte{2})
	bob   = canbus.BytesToAddress([]byte{3})
)

func newLedger(t *testing.T) *Service {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(solidity.NewContext(canbus.BytesToAddress([]byte("ledger")), state.New(db)))
}

func TestAddNative(t *testing.T) {
	l := newLedger(t)

	cp, err := l.Native()
	require.NoError(t, err)
	assert.Nil(t, cp)

	require.NoError(t, l.AddNative(alice, 301, big.NewInt(2000)))
	require.NoError(t, l.AddNative(bob, 311, big.NewInt(1000)))

	global, err := l.Native()
	require.NoError(t, err)
	assert.Equal(t, &checkpoint.StakingInfo{EffectiveTime: 304, Amount: big.NewInt(3000), LastAddTime: 311}, global)

	user, err := l.UserNative(alice)
	require.NoError(t, err)
	assert.Equal(t, &checkpoint.StakingInfo{EffectiveTime: 301, Amount: big.NewInt(2000), LastAddTime: 301}, user)

	l.RemoveUserNative(alice)
	user, err = l.UserNative(alice)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestAddStableIsPerPool(t *testing.T) {
	l := newLedger(t)

	require.NoError(t, l.AddStable(alice, 1, 600, big.NewInt(2000)))
	require.NoError(t, l.AddStable(alice, 2, 700, big.NewInt(5)))
	require.NoError(t, l.AddStable(bob, 1, 600, big.NewInt(1000)))

	g1, err := l.Stable(1)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(3000), g1.Amount)
	assert.Equal(t, uint32(600), g1.EffectiveTime)

	a2, err := l.UserStable(alice, 2)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(5), a2.Amount)

	b2, err := l.UserStable(bob, 2)
	require.NoError(t, err)
	assert.Nil(t, b2)

	l.RemoveUserStable(alice, 1)
	a1, err := l.UserStable(alice, 1)
	require.NoError(t, err)
	assert.Nil(t, a1)
}

func TestAddNativeOverflowLeavesStateUntouched(t *testing.T) {
	l := newLedger(t)
	maxU128 := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

	require.NoError(t, l.AddNative(alice, 0, maxU128))
	assert.ErrorIs(t, l.AddNative(bob, 0, big.NewInt(1)), reverts.ErrArithmeticOverflow)

	cp, err := l.UserNative(bob)
	require.NoError(t, err)
	assert.Nil(t, cp)
}

func TestAddEmptyDeposit(t *testing.T) {
	l := newLedger(t)

	require.NoError(t, l.AddStable(alice, 2, 600, new(big.Int)))
	require.NoError(t, l.AddStable(bob, 2, 600, new(big.Int)))
	require.NoError(t, l.AddNative(alice, 600, new(big.Int)))

	g, err := l.Stable(2)
	require.NoError(t, err)
	assert.Nil(t, g)
	u, err := l.UserStable(alice, 2)
	require.NoError(t, err)
	assert.Nil(t, u)
	n, err := l.Native()
	require.NoError(t, err)
	assert.Nil(t, n)

	require.NoError(t, l.AddStable(alice, 2, 600, big.NewInt(10)))
	require.NoError(t, l.AddStable(bob, 2, 700, new(big.Int)))
	g, err = l.Stable(2)
	require.NoError(t, err)
	assert.Equal(t, &checkpoint.StakingInfo{EffectiveTime: 600, Amount: big.NewInt(10), LastAddTime: 600}, g)
}
