// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canbus-network/canbus/builtin/solidity"
	"github.com/canbus-network/canbus/builtin/stablestaking/reverts"
	"github.com/canbus-network/canbus/canbus"
	"github.com/canbus-network/canbus/lvldb"
	"github.com/canbus-network/canbus/state"
)

func newService(t *testing.T) *Service {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(solidity.NewContext(canbus.BytesToAddress([]byte("pool")), state.New(db)))
}

func defaultSetting() *Setting {
	return &Setting{StartTime: 100, EpochCount: 10, EpochRange: 100, SetupTime: 200, PoolCap: big.NewInt(1_000_000_000)}
}

func TestSettingSchedule(t *testing.T) {
	s := defaultSetting()

	end, err := s.EndTime()
	require.NoError(t, err)
	assert.Equal(t, uint32(1100), end)

	tests := []struct {
		t     uint32
		epoch uint64
	}{
		{0, 0}, {100, 0}, {199, 0}, {200, 1}, {501, 4}, {1099, 9}, {1100, 10}, {99999, 10},
	}
	for _, tt := range tests {
		got, err := s.EpochIndex(tt.t)
		require.NoError(t, err)
		assert.Equal(t, tt.epoch, got, "t=%d", tt.t)
	}

	begin, err := s.EpochBeginTime(5)
	require.NoError(t, err)
	assert.Equal(t, uint32(600), begin)

	begin, err = s.EpochBeginTime(10)
	require.NoError(t, err)
	assert.Equal(t, uint32(1100), begin)

	begin, err = s.EpochBeginTime(math.MaxUint64)
	require.NoError(t, err)
	assert.Equal(t, uint32(1100), begin)
}

func TestSettingValidate(t *testing.T) {
	assert.NoError(t, defaultSetting().Validate())

	zeroRange := defaultSetting()
	zeroRange.EpochRange = 0
	assert.ErrorIs(t, zeroRange.Validate(), reverts.ErrInvalidPoolSetting)

	_, err := zeroRange.EpochIndex(10)
	assert.ErrorIs(t, err, reverts.ErrArithmeticOverflow)

	tooLong := defaultSetting()
	tooLong.EpochCount = math.MaxUint32
	assert.ErrorIs(t, tooLong.Validate(), reverts.ErrInvalidPoolSetting)

	_, err = tooLong.EndTime()
	assert.ErrorIs(t, err, reverts.ErrArithmeticOverflow)

	negCap := defaultSetting()
	negCap.PoolCap = big.NewInt(-1)
	assert.ErrorIs(t, negCap.Validate(), reverts.ErrInvalidPoolSetting)
}

func TestServiceSettingAndMetadata(t *testing.T) {
	svc := newService(t)

	_, err := svc.MustSetting(1)
	assert.ErrorIs(t, err, reverts.ErrPoolNotFound)

	require.NoError(t, svc.SetSetting(1, defaultSetting()))
	got, err := svc.MustSetting(1)
	require.NoError(t, err)
	assert.Equal(t, defaultSetting(), got)

	md, err := svc.Metadata(1)
	require.NoError(t, err)
	assert.Nil(t, md)

	require.NoError(t, svc.SetMetadata(1, &Metadata{Name: "usd pool", Description: "first"}))
	md, err = svc.Metadata(1)
	require.NoError(t, err)
	assert.Equal(t, &Metadata{Name: "usd pool", Description: "first"}, md)

	long := strings.Repeat("x", canbus.PoolStringLimit+1)
	assert.ErrorIs(t, svc.SetMetadata(1, &Metadata{Name: long}), reverts.ErrBadMetadata)
	assert.ErrorIs(t, svc.SetMetadata(1, &Metadata{Description: long}), reverts.ErrBadMetadata)

	svc.RemoveMetadata(1)
	md, err = svc.Metadata(1)
	require.NoError(t, err)
	assert.Nil(t, md)
}

func TestServiceSetSettingKeepsInput(t *testing.T) {
	svc := newService(t)

	setting := defaultSetting()
	setting.PoolCap = nil
	require.NoError(t, svc.SetSetting(1, setting))
	assert.Nil(t, setting.PoolCap)

	got, err := svc.MustSetting(1)
	require.NoError(t, err)
	require.NotNil(t, got.PoolCap)
	assert.Zero(t, got.PoolCap.Sign())

	setting = defaultSetting()
	require.NoError(t, svc.SetSetting(2, setting))
	setting.PoolCap.SetInt64(1)
	got, err = svc.MustSetting(2)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1_000_000_000), got.PoolCap)
}

func TestServiceRewards(t *testing.T) {
	svc := newService(t)

	require.NoError(t, svc.RegisterEpochReward(1, 0, big.NewInt(2000)))
	assert.ErrorIs(t, svc.RegisterEpochReward(1, 0, big.NewInt(1)), reverts.ErrRewardAlreadyRegistered)
	require.NoError(t, svc.RegisterEpochReward(2, 0, big.NewInt(5)))

	info, err := svc.EpochReward(1, 0)
	require.NoError(t, err)
	assert.Equal(t, &RewardInfo{Epoch: 0, Amount: big.NewInt(2000)}, info)

	info, err = svc.EpochReward(1, 1)
	require.NoError(t, err)
	assert.Nil(t, info)

	require.NoError(t, svc.AddUnclaimed(1, big.NewInt(2000)))
	require.NoError(t, svc.SubUnclaimed(1, big.NewInt(500)))
	v, err := svc.Unclaimed(1)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1500), v)

	assert.ErrorIs(t, svc.SubUnclaimed(1, big.NewInt(1501)), reverts.ErrArithmeticOverflow)
	require.NoError(t, svc.SubUnclaimed(1, big.NewInt(1500)))
	v, err = svc.Unclaimed(1)
	require.NoError(t, err)
	assert.Equal(t, 0, v.Sign())
}

func TestServiceRewardAsset(t *testing.T) {
	svc := newService(t)

	_, err := svc.MustRewardAsset()
	assert.ErrorIs(t, err, reverts.ErrRewardAssetNotRegistered)

	require.NoError(t, svc.SetRewardAsset(1))
	id, err := svc.MustRewardAsset()
	require.NoError(t, err)
	assert.Equal(t, canbus.AssetID(1), id)

	require.NoError(t, svc.SetRewardAsset(2))
	id, found, err := svc.RewardAsset()
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, canbus.AssetID(2), id)
}
