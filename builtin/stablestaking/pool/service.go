// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"encoding/binary"
	"math/big"

	"github.com/canbus-network/canbus/builtin/solidity"
	"github.com/canbus-network/canbus/builtin/stablestaking/reverts"
	"github.com/canbus-network/canbus/canbus"
)

var (
	slotSettings      = canbus.BytesToBytes32([]byte("pool-settings"))
	slotMetadata      = canbus.BytesToBytes32([]byte("pool-metadata"))
	slotEpochRewards  = canbus.BytesToBytes32([]byte("pool-epoch-rewards"))
	slotUnclaimed     = canbus.BytesToBytes32([]byte("pool-unclaimed"))
	slotRewardAssetID = canbus.BytesToBytes32([]byte("reward-asset-id"))
)

// Metadata is the display information of a pool.
type Metadata struct {
	Name        string
	Description string
}

// RewardInfo is the reward registered for one epoch.
type RewardInfo struct {
	Epoch  uint64
	Amount *big.Int
}

type epochKey struct {
	pool  canbus.PoolID
	epoch uint64
}

func (k epochKey) Bytes() []byte {
	var b [16]byte
	binary.BigEndian.PutUint64(b[:8], uint64(k.pool))
	binary.BigEndian.PutUint64(b[8:], k.epoch)
	return b[:]
}

// Service stores pool definitions and their reward bookkeeping.
type Service struct {
	settings     *solidity.Mapping[canbus.PoolID, *Setting]
	metadata     *solidity.Mapping[canbus.PoolID, *Metadata]
	epochRewards *solidity.Mapping[epochKey, *RewardInfo]
	unclaimed    *solidity.Mapping[canbus.PoolID, *big.Int]
	rewardAsset  *solidity.Raw[canbus.AssetID]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		settings:     solidity.NewMapping[canbus.PoolID, *Setting](sctx, slotSettings),
		metadata:     solidity.NewMapping[canbus.PoolID, *Metadata](sctx, slotMetadata),
		epochRewards: solidity.NewMapping[epochKey, *RewardInfo](sctx, slotEpochRewards),
		unclaimed:    solidity.NewMapping[canbus.PoolID, *big.Int](sctx, slotUnclaimed),
		rewardAsset:  solidity.NewRaw[canbus.AssetID](sctx, slotRewardAssetID),
	}
}

// Setting returns the pool setting, or nil if the pool does not exist.
func (s *Service) Setting(id canbus.PoolID) (*Setting, error) {
	setting, _, err := s.settings.Lookup(id)
	return setting, err
}

// MustSetting is Setting failing with ErrPoolNotFound on a missing pool.
func (s *Service) MustSetting(id canbus.PoolID) (*Setting, error) {
	setting, err := s.Setting(id)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return nil, reverts.ErrPoolNotFound
	}
	return setting, nil
}

// SetSetting stores a copy of setting, a missing cap is stored as zero.
func (s *Service) SetSetting(id canbus.PoolID, setting *Setting) error {
	return s.settings.Set(id, setting.Copy())
}

// Metadata returns the pool metadata, or nil if none is set.
func (s *Service) Metadata(id canbus.PoolID) (*Metadata, error) {
	md, _, err := s.metadata.Lookup(id)
	return md, err
}

func (s *Service) SetMetadata(id canbus.PoolID, md *Metadata) error {
	if len(md.Name) > canbus.PoolStringLimit || len(md.Description) > canbus.PoolStringLimit {
		return reverts.ErrBadMetadata
	}
	return s.metadata.Set(id, md)
}

func (s *Service) RemoveMetadata(id canbus.PoolID) {
	s.metadata.Delete(id)
}

// EpochReward returns the reward registered for the epoch, or nil.
func (s *Service) EpochReward(id canbus.PoolID, epoch uint64) (*RewardInfo, error) {
	info, _, err := s.epochRewards.Lookup(epochKey{id, epoch})
	return info, err
}

// RegisterEpochReward records the epoch reward. Each epoch takes a reward at most once.
func (s *Service) RegisterEpochReward(id canbus.PoolID, epoch uint64, amount *big.Int) error {
	existing, err := s.EpochReward(id, epoch)
	if err != nil {
		return err
	}
	if existing != nil {
		return reverts.ErrRewardAlreadyRegistered
	}
	return s.epochRewards.Set(epochKey{id, epoch}, &RewardInfo{Epoch: epoch, Amount: new(big.Int).Set(amount)})
}

// Unclaimed returns the reward registered for the pool and not claimed yet.
func (s *Service) Unclaimed(id canbus.PoolID) (*big.Int, error) {
	v, found, err := s.unclaimed.Lookup(id)
	if err != nil {
		return nil, err
	}
	if !found {
		return new(big.Int), nil
	}
	return v, nil
}

func (s *Service) AddUnclaimed(id canbus.PoolID, amount *big.Int) error {
	v, err := s.Unclaimed(id)
	if err != nil {
		return err
	}
	return s.setUnclaimed(id, v.Add(v, amount))
}

func (s *Service) SubUnclaimed(id canbus.PoolID, amount *big.Int) error {
	v, err := s.Unclaimed(id)
	if err != nil {
		return err
	}
	if v.Cmp(amount) < 0 {
		return reverts.ErrArithmeticOverflow
	}
	return s.setUnclaimed(id, v.Sub(v, amount))
}

func (s *Service) setUnclaimed(id canbus.PoolID, v *big.Int) error {
	if v.Sign() == 0 {
		s.unclaimed.Delete(id)
		return nil
	}
	return s.unclaimed.Set(id, v)
}

// RewardAsset returns the asset paying stable rewards, if registered.
func (s *Service) RewardAsset() (canbus.AssetID, bool, error) {
	return s.rewardAsset.Get()
}

// MustRewardAsset is RewardAsset failing with ErrRewardAssetNotRegistered.
func (s *Service) MustRewardAsset() (canbus.AssetID, error) {
	id, found, err := s.rewardAsset.Get()
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, reverts.ErrRewardAssetNotRegistered
	}
	return id, nil
}

func (s *Service) SetRewardAsset(id canbus.AssetID) error {
	return s.rewardAsset.Set(id)
}
