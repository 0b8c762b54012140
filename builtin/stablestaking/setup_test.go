// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stablestaking

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canbus-network/canbus/builtin/assets"
	"github.com/canbus-network/canbus/builtin/committee"
	"github.com/canbus-network/canbus/builtin/stablestaking/pool"
	"github.com/canbus-network/canbus/canbus"
	"github.com/canbus-network/canbus/lvldb"
	"github.com/canbus-network/canbus/state"
)

const endowed = 100_000_000

var (
	root  = canbus.BytesToAddress([]byte("root"))
	userA = canbus.BytesToAddress([]byte{2})
	userB = canbus.BytesToAddress([]byte{3})
	userC = canbus.BytesToAddress([]byte{4})
	usd   = canbus.AssetID(1)
)

type testClock struct {
	number uint32
}

func (c *testClock) BlockNumber() uint32 { return c.number }

type recorder struct {
	events []Event
}

func (r *recorder) Emit(ev Event) { r.events = append(r.events, ev) }

func (r *recorder) take() []Event {
	events := r.events
	r.events = nil
	return events
}

type fixture struct {
	t       *testing.T
	clock   *testClock
	assets  *assets.Assets
	events  *recorder
	staking *StableStaking
}

func defaultSetting() *pool.Setting {
	return &pool.Setting{
		StartTime:  100,
		EpochCount: 10,
		EpochRange: 100,
		SetupTime:  200,
		PoolCap:    big.NewInt(1_000_000_000),
	}
}

// newFixture returns pool 1 created at block 1 with usd as reward asset,
// users A, B and C endowed with usd and native, and the native reward account endowed.
func newFixture(t *testing.T) *fixture {
	f := newFixtureWithoutRewardAsset(t)
	require.NoError(t, f.staking.RegisterRewardAsset(root, usd))
	f.events.take()
	return f
}

// newFixtureWithoutRewardAsset is newFixture before any reward asset is registered.
func newFixtureWithoutRewardAsset(t *testing.T) *fixture {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.New(db)
	a := assets.New(canbus.BytesToAddress([]byte("Assets")), st)
	c := committee.New(canbus.BytesToAddress([]byte("Committee")), st)
	require.NoError(t, c.Add(root))

	f := &fixture{
		t:      t,
		clock:  &testClock{number: 1},
		assets: a,
		events: &recorder{},
	}
	f.staking = New(canbus.BytesToAddress([]byte("StableStaking")), st, f.clock, a, c, f.events)

	for _, who := range []canbus.Address{userA, userB, userC} {
		_, err := a.MintInto(usd, who, big.NewInt(endowed))
		require.NoError(t, err)
		_, err = a.MintInto(canbus.NativeAsset, who, big.NewInt(endowed))
		require.NoError(t, err)
	}
	_, err = a.MintInto(canbus.NativeAsset, f.staking.NativeRewardAccount(), big.NewInt(endowed))
	require.NoError(t, err)

	require.NoError(t, f.staking.CreatePool(root, 1, defaultSetting()))
	f.events.take()
	return f
}

// advanceTo runs the block hook for every block up to n.
func (f *fixture) advanceTo(n uint32) {
	for f.clock.number < n {
		f.clock.number++
		f.staking.OnInitialize()
	}
}

func (f *fixture) balance(asset canbus.AssetID, who canbus.Address) *big.Int {
	f.t.Helper()
	b, err := f.assets.BalanceOf(asset, who)
	require.NoError(f.t, err)
	return b
}

func (f *fixture) requireBalance(asset canbus.AssetID, who canbus.Address, want int64) {
	f.t.Helper()
	assert.Equal(f.t, big.NewInt(want).String(), f.balance(asset, who).String())
}

func eventNames(events []Event) []string {
	names := make([]string, 0, len(events))
	for _, ev := range events {
		names = append(names, ev.EventName())
	}
	return names
}
