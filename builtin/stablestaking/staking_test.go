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
	"github.com/canbus-network/canbus/builtin/stablestaking/checkpoint"
	"github.com/canbus-network/canbus/builtin/stablestaking/pending"
	"github.com/canbus-network/canbus/builtin/stablestaking/reverts"
	"github.com/canbus-network/canbus/canbus"
)

func TestStakeAndSolve(t *testing.T) {
	f := newFixture(t)

	f.advanceTo(301)
	require.NoError(t, f.staking.Stake(userA, 1, big.NewInt(2000)))
	// 301 + 200 falls in epoch 4, the stake is effective from epoch 5
	assert.Equal(t, []Event{&Staked{Who: userA, PoolID: 1, TargetEffectiveTime: 600, Amount: big.NewInt(2000)}}, f.events.take())

	entries, err := f.staking.PendingEntries(0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, userA, entries[0].Who)
	assert.Equal(t, &checkpoint.StakingInfo{EffectiveTime: 600, Amount: big.NewInt(2000), LastAddTime: 600}, entries[0].Info)

	native, err := f.staking.UserNativeCheckpoint(userA)
	require.NoError(t, err)
	assert.Equal(t, &checkpoint.StakingInfo{EffectiveTime: 301, Amount: big.NewInt(2000), LastAddTime: 301}, native)

	f.requireBalance(usd, userA, endowed-2000)
	f.requireBalance(usd, f.staking.StableRewardAccount(), 2000)

	f.advanceTo(311)
	require.NoError(t, f.staking.Stake(userB, 1, big.NewInt(1000)))
	f.events.take()

	global, err := f.staking.NativeCheckpoint()
	require.NoError(t, err)
	assert.Equal(t, &checkpoint.StakingInfo{EffectiveTime: 304, Amount: big.NewInt(3000), LastAddTime: 311}, global)

	n, err := f.staking.PendingCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)

	f.advanceTo(599)
	assert.Empty(t, f.events.take())
	stable, err := f.staking.StableCheckpoint(1)
	require.NoError(t, err)
	assert.Nil(t, stable)

	f.advanceTo(600)
	assert.Equal(t, []Event{
		&PendingStakingSolved{Who: userA, PoolID: 1, EffectiveTime: 600, Amount: big.NewInt(2000)},
		&PendingStakingSolved{Who: userB, PoolID: 1, EffectiveTime: 600, Amount: big.NewInt(1000)},
	}, f.events.take())

	stable, err = f.staking.StableCheckpoint(1)
	require.NoError(t, err)
	assert.Equal(t, &checkpoint.StakingInfo{EffectiveTime: 600, Amount: big.NewInt(3000), LastAddTime: 600}, stable)

	userStable, err := f.staking.UserStableCheckpoint(userB, 1)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1000), userStable.Amount)

	n, err = f.staking.PendingCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)
}

func TestSolveUsesCurrentBlock(t *testing.T) {
	f := newFixture(t)

	f.clock.number = 301
	require.NoError(t, f.staking.Stake(userA, 1, big.NewInt(2000)))
	f.events.take()

	// nobody solved the entry at 600
	f.clock.number = 650
	require.NoError(t, f.staking.SolvePendingStake(userC))
	assert.Equal(t, []Event{
		&PendingStakingSolved{Who: userA, PoolID: 1, EffectiveTime: 650, Amount: big.NewInt(2000)},
	}, f.events.take())

	stable, err := f.staking.UserStableCheckpoint(userA, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(650), stable.EffectiveTime)

	// nothing left, still succeeds
	require.NoError(t, f.staking.SolvePendingStake(userC))
	assert.Empty(t, f.events.take())
	assert.Equal(t, 0, f.staking.OnInitialize())
}

func TestStakeRejections(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.staking.Stake(userA, 1, big.NewInt(10)), reverts.ErrPoolNotStarted)
	f.clock.number = 100
	assert.ErrorIs(t, f.staking.Stake(userA, 1, big.NewInt(10)), reverts.ErrPoolNotStarted)
	assert.ErrorIs(t, f.staking.Stake(userA, 2, big.NewInt(10)), reverts.ErrPoolNotFound)

	// 701 + 200 is in epoch 8, effective at 1000
	f.clock.number = 701
	assert.NoError(t, f.staking.Stake(userA, 1, big.NewInt(10)))

	// 801 + 200 is in epoch 9, the next epoch begins at the end
	f.clock.number = 801
	assert.ErrorIs(t, f.staking.Stake(userA, 1, big.NewInt(10)), reverts.ErrPoolAlreadyEnded)

	f.clock.number = 2000
	assert.ErrorIs(t, f.staking.Stake(userA, 1, big.NewInt(10)), reverts.ErrPoolAlreadyEnded)

	f.clock.number = 301
	assert.ErrorIs(t, f.staking.Stake(userA, 1, big.NewInt(-1)), reverts.ErrInvalidAmount)
	assert.ErrorIs(t, f.staking.Stake(userA, 1, big.NewInt(0)), reverts.ErrInvalidAmount)
	assert.ErrorIs(t, f.staking.Stake(userA, 1, nil), reverts.ErrInvalidAmount)
}

func TestFailedStakeLeavesNoTrace(t *testing.T) {
	f := newFixture(t)

	f.clock.number = 301
	err := f.staking.Stake(userA, 1, big.NewInt(endowed+1))
	assert.ErrorIs(t, err, assets.ErrInsufficientBalance)
	assert.Empty(t, f.events.take())

	n, err := f.staking.PendingCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)

	native, err := f.staking.NativeCheckpoint()
	require.NoError(t, err)
	assert.Nil(t, native)

	bare := newFixtureWithoutRewardAsset(t)
	bare.clock.number = 301
	assert.ErrorIs(t, bare.staking.Stake(userA, 1, big.NewInt(10)), reverts.ErrRewardAssetNotRegistered)
	native, err = bare.staking.UserNativeCheckpoint(userA)
	require.NoError(t, err)
	assert.Nil(t, native)
	n, err = bare.staking.PendingCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)
}

func TestPendingEntriesLimit(t *testing.T) {
	f := newFixture(t)

	f.clock.number = 301
	require.NoError(t, f.staking.Stake(userA, 1, big.NewInt(1)))
	require.NoError(t, f.staking.Stake(userB, 1, big.NewInt(2)))
	require.NoError(t, f.staking.Stake(userC, 1, big.NewInt(3)))

	entries, err := f.staking.PendingEntries(2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, userA, entries[0].Who)
	assert.Equal(t, userB, entries[1].Who)
}

func TestEmptyPendingEntriesDoNotBlockQueue(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.staking.CreatePool(root, 2, defaultSetting()))

	f.advanceTo(301)
	require.NoError(t, f.staking.Stake(userA, 1, big.NewInt(2000)))
	assert.ErrorIs(t, f.staking.Stake(userB, 2, new(big.Int)), reverts.ErrInvalidAmount)

	// entries without amount queued behind a valid stake
	for _, who := range []canbus.Address{userB, userC} {
		require.NoError(t, f.staking.pendingQueue.Push(&pending.Entry{Who: who, PoolID: 2, Info: checkpoint.New(600, new(big.Int))}))
	}
	f.events.take()

	f.advanceTo(600)
	assert.Equal(t, []string{"PendingStakingSolved", "PendingStakingSolved", "PendingStakingSolved"}, eventNames(f.events.take()))

	n, err := f.staking.PendingCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)

	stable, err := f.staking.UserStableCheckpoint(userA, 1)
	require.NoError(t, err)
	require.NotNil(t, stable)
	assert.Equal(t, big.NewInt(2000), stable.Amount)

	empty, err := f.staking.StableCheckpoint(2)
	require.NoError(t, err)
	assert.Nil(t, empty)

	f.advanceTo(1200)
	require.NoError(t, f.staking.SolvePendingStake(userB))
	require.NoError(t, f.staking.Withdraw(userA, 1))
	f.requireBalance(usd, userA, endowed)
}

func TestPendingOrderAcrossPools(t *testing.T) {
	f := newFixture(t)
	// no setup time, a stake becomes effective at the next epoch
	quick := defaultSetting()
	quick.SetupTime = 0
	require.NoError(t, f.staking.CreatePool(root, 2, quick))

	f.advanceTo(301)
	require.NoError(t, f.staking.Stake(userA, 1, big.NewInt(2000)))
	f.advanceTo(302)
	require.NoError(t, f.staking.Stake(userB, 2, big.NewInt(500)))
	require.NoError(t, f.staking.Stake(userC, 1, big.NewInt(300)))
	f.advanceTo(350)
	require.NoError(t, f.staking.Stake(userC, 2, big.NewInt(700)))
	f.events.take()

	type position struct {
		who       canbus.Address
		pool      canbus.PoolID
		effective uint32
	}
	entries, err := f.staking.PendingEntries(0)
	require.NoError(t, err)
	var order []position
	for _, e := range entries {
		order = append(order, position{e.Who, e.PoolID, e.Info.EffectiveTime})
	}
	assert.Equal(t, []position{
		{userB, 2, 400},
		{userC, 2, 400},
		{userA, 1, 600},
		{userC, 1, 600},
	}, order)

	f.advanceTo(399)
	assert.Empty(t, f.events.take())

	f.advanceTo(400)
	assert.Equal(t, []Event{
		&PendingStakingSolved{Who: userB, PoolID: 2, EffectiveTime: 400, Amount: big.NewInt(500)},
		&PendingStakingSolved{Who: userC, PoolID: 2, EffectiveTime: 400, Amount: big.NewInt(700)},
	}, f.events.take())

	n, err := f.staking.PendingCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)
	stable, err := f.staking.StableCheckpoint(1)
	require.NoError(t, err)
	assert.Nil(t, stable)

	f.advanceTo(600)
	assert.Equal(t, []Event{
		&PendingStakingSolved{Who: userA, PoolID: 1, EffectiveTime: 600, Amount: big.NewInt(2000)},
		&PendingStakingSolved{Who: userC, PoolID: 1, EffectiveTime: 600, Amount: big.NewInt(300)},
	}, f.events.take())
}
