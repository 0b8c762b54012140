// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/canbus-network/canbus/builtin/stablestaking/checkpoint"
	"github.com/canbus-network/canbus/builtin/stablestaking/pending"
	"github.com/canbus-network/canbus/builtin/stablestaking/pool"
	"github.com/canbus-network/canbus/canbus"
)

type Checkpoint struct {
	EffectiveTime uint32                `json:"effectiveTime"`
	Amount        *math.HexOrDecimal256 `json:"amount"`
	LastAddTime   uint32                `json:"lastAddTime"`
}

func convertCheckpoint(info *checkpoint.StakingInfo) *Checkpoint {
	if info == nil {
		return nil
	}
	return &Checkpoint{
		EffectiveTime: info.EffectiveTime,
		Amount:        hexOrDecimal(info.Amount),
		LastAddTime:   info.LastAddTime,
	}
}

func hexOrDecimal(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		v = new(big.Int)
	}
	return (*math.HexOrDecimal256)(new(big.Int).Set(v))
}

type Pool struct {
	ID           canbus.PoolID         `json:"id"`
	StartTime    uint32                `json:"startTime"`
	EpochCount   uint64                `json:"epochCount"`
	EpochRange   uint32                `json:"epochRange"`
	SetupTime    uint32                `json:"setupTime"`
	PoolCap      *math.HexOrDecimal256 `json:"poolCap"`
	EndTime      uint32                `json:"endTime"`
	Status       string                `json:"status"`
	CurrentEpoch uint64                `json:"currentEpoch"`
	Name         string                `json:"name,omitempty"`
	Description  string                `json:"description,omitempty"`
	Unclaimed    *math.HexOrDecimal256 `json:"unclaimed"`
	Staked       *Checkpoint           `json:"staked"`
}

func convertSetting(id canbus.PoolID, s *pool.Setting) *Pool {
	return &Pool{
		ID:         id,
		StartTime:  s.StartTime,
		EpochCount: s.EpochCount,
		EpochRange: s.EpochRange,
		SetupTime:  s.SetupTime,
		PoolCap:    hexOrDecimal(s.PoolCap),
	}
}

type EpochReward struct {
	PoolID    canbus.PoolID         `json:"poolId"`
	Epoch     uint64                `json:"epoch"`
	BeginTime uint32                `json:"beginTime"`
	Amount    *math.HexOrDecimal256 `json:"amount"`
}

type Account struct {
	Address canbus.Address `json:"address"`
	Native  *Checkpoint    `json:"native"`
	Stable  *Checkpoint    `json:"stable,omitempty"`
}

type PendingEntry struct {
	Who        canbus.Address `json:"who"`
	PoolID     canbus.PoolID  `json:"poolId"`
	Checkpoint *Checkpoint    `json:"checkpoint"`
}

func convertPending(e *pending.Entry) *PendingEntry {
	return &PendingEntry{
		Who:        e.Who,
		PoolID:     e.PoolID,
		Checkpoint: convertCheckpoint(e.Info),
	}
}

type Status struct {
	Head                uint32                `json:"head"`
	RewardAsset         *canbus.AssetID       `json:"rewardAsset"`
	PendingCount        uint64                `json:"pendingCount"`
	StableRewardAccount canbus.Address        `json:"stableRewardAccount"`
	NativeRewardAccount canbus.Address        `json:"nativeRewardAccount"`
	NativeReward        *math.HexOrDecimal256 `json:"nativeReward"`
	Native              *Checkpoint           `json:"native"`
}
