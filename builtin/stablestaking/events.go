// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stablestaking

import (
	"math/big"

	"github.com/canbus-network/canbus/builtin/stablestaking/pool"
	"github.com/canbus-network/canbus/canbus"
)

// Event is emitted by a successful operation.
type Event interface {
	EventName() string
}

type StakingPoolCreated struct {
	PoolID  canbus.PoolID `json:"poolId"`
	Setting *pool.Setting `json:"setting"`
}

type MetadataSet struct {
	PoolID      canbus.PoolID `json:"poolId"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
}

type MetadataRemoved struct {
	PoolID canbus.PoolID `json:"poolId"`
}

type RewardUpdated struct {
	PoolID canbus.PoolID `json:"poolId"`
	Epoch  uint64        `json:"epoch"`
	Amount *big.Int      `json:"amount"`
}

type Staked struct {
	Who                 canbus.Address `json:"who"`
	PoolID              canbus.PoolID  `json:"poolId"`
	TargetEffectiveTime uint32         `json:"targetEffectiveTime"`
	Amount              *big.Int       `json:"amount"`
}

type PendingStakingSolved struct {
	Who           canbus.Address `json:"who"`
	PoolID        canbus.PoolID  `json:"poolId"`
	EffectiveTime uint32         `json:"effectiveTime"`
	Amount        *big.Int       `json:"amount"`
}

type NativeRewardClaimed struct {
	Who       canbus.Address `json:"who"`
	UntilTime uint32         `json:"untilTime"`
	Amount    *big.Int       `json:"amount"`
}

type StableRewardClaimed struct {
	Who       canbus.Address `json:"who"`
	PoolID    canbus.PoolID  `json:"poolId"`
	UntilTime uint32         `json:"untilTime"`
	Amount    *big.Int       `json:"amount"`
}

type Withdraw struct {
	Who    canbus.Address `json:"who"`
	PoolID canbus.PoolID  `json:"poolId"`
	Time   uint32         `json:"time"`
	Amount *big.Int       `json:"amount"`
}

type RewardAssetRegistered struct {
	AssetID canbus.AssetID `json:"assetId"`
}

func (StakingPoolCreated) EventName() string    { return "StakingPoolCreated" }
func (MetadataSet) EventName() string           { return "MetadataSet" }
func (MetadataRemoved) EventName() string       { return "MetadataRemoved" }
func (RewardUpdated) EventName() string         { return "RewardUpdated" }
func (Staked) EventName() string                { return "Staked" }
func (PendingStakingSolved) EventName() string  { return "PendingStakingSolved" }
func (NativeRewardClaimed) EventName() string   { return "NativeRewardClaimed" }
func (StableRewardClaimed) EventName() string   { return "StableRewardClaimed" }
func (Withdraw) EventName() string              { return "Withdraw" }
func (RewardAssetRegistered) EventName() string { return "RewardAssetRegistered" }

// Subject returns the account and the pool an event is about, nil when not applicable.
func Subject(ev Event) (who *canbus.Address, poolID *canbus.PoolID) {
	switch e := ev.(type) {
	case *StakingPoolCreated:
		return nil, &e.PoolID
	case *MetadataSet:
		return nil, &e.PoolID
	case *MetadataRemoved:
		return nil, &e.PoolID
	case *RewardUpdated:
		return nil, &e.PoolID
	case *Staked:
		return &e.Who, &e.PoolID
	case *PendingStakingSolved:
		return &e.Who, &e.PoolID
	case *NativeRewardClaimed:
		return &e.Who, nil
	case *StableRewardClaimed:
		return &e.Who, &e.PoolID
	case *Withdraw:
		return &e.Who, &e.PoolID
	}
	return nil, nil
}
