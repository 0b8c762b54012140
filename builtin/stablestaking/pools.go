// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stablestaking

import (
	"math/big"

	"github.com/canbus-network/canbus/builtin/stablestaking/checkpoint"
	"github.com/canbus-network/canbus/builtin/stablestaking/pool"
	"github.com/canbus-network/canbus/builtin/stablestaking/reverts"
	"github.com/canbus-network/canbus/canbus"
)

// PoolStatus is derived from the block number and the pool schedule.
type PoolStatus uint8

const (
	PoolNotStarted PoolStatus = iota
	PoolActive
	PoolEnded
)

func (s PoolStatus) String() string {
	switch s {
	case PoolNotStarted:
		return "not-started"
	case PoolActive:
		return "active"
	case PoolEnded:
		return "ended"
	}
	return "unknown"
}

// CreatePool registers a pool that has not started yet.
func (s *StableStaking) CreatePool(origin canbus.Address, id canbus.PoolID, setting *pool.Setting) error {
	return s.atomic(func(emit func(Event)) error {
		if err := s.authority.EnsurePrivileged(origin); err != nil {
			return err
		}
		if s.clock.BlockNumber() > setting.StartTime {
			return reverts.ErrPoolAlreadyStarted
		}
		existing, err := s.poolService.Setting(id)
		if err != nil {
			return err
		}
		if existing != nil {
			return reverts.ErrPoolAlreadyExists
		}
		if err := setting.Validate(); err != nil {
			return err
		}
		if err := s.poolService.SetSetting(id, setting); err != nil {
			return err
		}
		logger.Debug("pool created", "pool", id, "start", setting.StartTime, "epochs", setting.EpochCount)
		emit(&StakingPoolCreated{PoolID: id, Setting: setting})
		return nil
	})
}

// UpdateMetadata sets the pool metadata, or removes it when name is nil.
func (s *StableStaking) UpdateMetadata(origin canbus.Address, id canbus.PoolID, name *string, description string) error {
	return s.atomic(func(emit func(Event)) error {
		if err := s.authority.EnsurePrivileged(origin); err != nil {
			return err
		}
		if _, err := s.poolService.MustSetting(id); err != nil {
			return err
		}
		if name == nil {
			s.poolService.RemoveMetadata(id)
			emit(&MetadataRemoved{PoolID: id})
			return nil
		}
		if err := s.poolService.SetMetadata(id, &pool.Metadata{Name: *name, Description: description}); err != nil {
			return err
		}
		emit(&MetadataSet{PoolID: id, Name: *name, Description: description})
		return nil
	})
}

func (s *StableStaking) SetMetadata(origin canbus.Address, id canbus.PoolID, name, description string) error {
	return s.UpdateMetadata(origin, id, &name, description)
}

func (s *StableStaking) ClearMetadata(origin canbus.Address, id canbus.PoolID) error {
	return s.UpdateMetadata(origin, id, nil, "")
}

// RegisterEpochReward mints the stable reward of an epoch that has not ended yet.
// Epoch EpochCount collects rewards granted after the last epoch and is always open.
func (s *StableStaking) RegisterEpochReward(origin canbus.Address, id canbus.PoolID, epoch uint64, amount *big.Int) error {
	return s.atomic(func(emit func(Event)) error {
		if err := s.authority.EnsurePrivileged(origin); err != nil {
			return err
		}
		setting, err := s.poolService.MustSetting(id)
		if err != nil {
			return err
		}
		if epoch > setting.EpochCount {
			return reverts.ErrEpochNotExists
		}
		current, err := setting.EpochIndex(s.clock.BlockNumber())
		if err != nil {
			return err
		}
		if current > epoch {
			return reverts.ErrEpochAlreadyEnded
		}
		asset, err := s.poolService.MustRewardAsset()
		if err != nil {
			return err
		}
		if _, err := checkpoint.ToUint128(amount); err != nil {
			return err
		}

		minted, err := s.assets.MintInto(asset, s.stableAccount, amount)
		if err != nil {
			return err
		}
		if err := s.poolService.RegisterEpochReward(id, epoch, minted); err != nil {
			return err
		}
		if err := s.poolService.AddUnclaimed(id, minted); err != nil {
			return err
		}
		logger.Debug("epoch reward registered", "pool", id, "epoch", epoch, "amount", minted)
		emit(&RewardUpdated{PoolID: id, Epoch: epoch, Amount: minted})
		return nil
	})
}

// RegisterRewardAsset sets the asset used for stable principals and rewards.
func (s *StableStaking) RegisterRewardAsset(origin canbus.Address, asset canbus.AssetID) error {
	return s.atomic(func(emit func(Event)) error {
		if err := s.authority.EnsurePrivileged(origin); err != nil {
			return err
		}
		if err := s.poolService.SetRewardAsset(asset); err != nil {
			return err
		}
		emit(&RewardAssetRegistered{AssetID: asset})
		return nil
	})
}

// Pool returns the pool setting, or nil.
func (s *StableStaking) Pool(id canbus.PoolID) (*pool.Setting, error) {
	return s.poolService.Setting(id)
}

// PoolMetadata returns the pool metadata, or nil.
func (s *StableStaking) PoolMetadata(id canbus.PoolID) (*pool.Metadata, error) {
	return s.poolService.Metadata(id)
}

func (s *StableStaking) EpochReward(id canbus.PoolID, epoch uint64) (*pool.RewardInfo, error) {
	return s.poolService.EpochReward(id, epoch)
}

// UnclaimedReward returns the stable reward of the pool not claimed yet.
func (s *StableStaking) UnclaimedReward(id canbus.PoolID) (*big.Int, error) {
	return s.poolService.Unclaimed(id)
}

func (s *StableStaking) RewardAsset() (canbus.AssetID, bool, error) {
	return s.poolService.RewardAsset()
}

func (s *StableStaking) EpochIndex(id canbus.PoolID, t uint32) (uint64, error) {
	setting, err := s.poolService.MustSetting(id)
	if err != nil {
		return 0, err
	}
	return setting.EpochIndex(t)
}

func (s *StableStaking) EpochBeginTime(id canbus.PoolID, epoch uint64) (uint32, error) {
	setting, err := s.poolService.MustSetting(id)
	if err != nil {
		return 0, err
	}
	return setting.EpochBeginTime(epoch)
}

// PoolStatus returns the status of the pool at the current block.
func (s *StableStaking) PoolStatus(id canbus.PoolID) (PoolStatus, error) {
	setting, err := s.poolService.MustSetting(id)
	if err != nil {
		return 0, err
	}
	end, err := setting.EndTime()
	if err != nil {
		return 0, err
	}
	now := s.clock.BlockNumber()
	switch {
	case now <= setting.StartTime:
		return PoolNotStarted, nil
	case now <= end:
		return PoolActive, nil
	default:
		return PoolEnded, nil
	}
}
