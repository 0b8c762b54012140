// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"

	"github.com/canbus-network/canbus/builtin/reverts"
	"github.com/canbus-network/canbus/builtin/stablestaking"
	"github.com/canbus-network/canbus/builtin/stablestaking/pool"
	"github.com/canbus-network/canbus/canbus"
)

// Method names a dispatchable call.
type Method string

const (
	MethodCreatePool            Method = "createPool"
	MethodUpdateMetadata        Method = "updateMetadata"
	MethodRegisterEpochReward   Method = "registerEpochReward"
	MethodRegisterRewardAsset   Method = "registerRewardAsset"
	MethodStake                 Method = "stake"
	MethodSolvePendingStake     Method = "solvePendingStake"
	MethodClaimNative           Method = "claimNative"
	MethodClaimStable           Method = "claimStable"
	MethodWithdraw              Method = "withdraw"
	MethodAddCommitteeMember    Method = "addCommitteeMember"
	MethodRemoveCommitteeMember Method = "removeCommitteeMember"
	MethodMint                  Method = "mint"
	MethodTransfer              Method = "transfer"
)

var (
	errUnknownMethod   = reverts.New("runtime", "unknown method")
	errMissingArgument = reverts.New("runtime", "missing argument")
)

// PoolSetting is the wire form of a pool setting.
type PoolSetting struct {
	StartTime  uint32                `json:"startTime" yaml:"startTime"`
	EpochCount uint64                `json:"epochCount" yaml:"epochCount"`
	EpochRange uint32                `json:"epochRange" yaml:"epochRange"`
	SetupTime  uint32                `json:"setupTime" yaml:"setupTime"`
	PoolCap    *math.HexOrDecimal256 `json:"poolCap,omitempty" yaml:"poolCap,omitempty"`
}

// ToSetting converts to the stored form, a missing cap reads as zero.
func (s *PoolSetting) ToSetting() *pool.Setting {
	return &pool.Setting{
		StartTime:  s.StartTime,
		EpochCount: s.EpochCount,
		EpochRange: s.EpochRange,
		SetupTime:  s.SetupTime,
		PoolCap:    bigOrZero(s.PoolCap),
	}
}

// Call is a signed request against the builtin contracts. Unused arguments are ignored.
type Call struct {
	Method      Method                `json:"method" yaml:"method"`
	Origin      canbus.Address        `json:"origin" yaml:"origin"`
	PoolID      canbus.PoolID         `json:"poolId,omitempty" yaml:"poolId,omitempty"`
	Epoch       uint64                `json:"epoch,omitempty" yaml:"epoch,omitempty"`
	Amount      *math.HexOrDecimal256 `json:"amount,omitempty" yaml:"amount,omitempty"`
	Until       uint32                `json:"until,omitempty" yaml:"until,omitempty"`
	Asset       canbus.AssetID        `json:"asset,omitempty" yaml:"asset,omitempty"`
	To          *canbus.Address       `json:"to,omitempty" yaml:"to,omitempty"`
	Setting     *PoolSetting          `json:"setting,omitempty" yaml:"setting,omitempty"`
	Name        *string               `json:"name,omitempty" yaml:"name,omitempty"`
	Description string                `json:"description,omitempty" yaml:"description,omitempty"`
}

func bigOrZero(v *math.HexOrDecimal256) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set((*big.Int)(v))
}

// Validate checks the arguments a method requires are present.
func (c *Call) Validate() error {
	switch c.Method {
	case MethodCreatePool:
		if c.Setting == nil {
			return errors.WithMessage(errMissingArgument, "setting")
		}
	case MethodRegisterEpochReward, MethodStake:
		if c.Amount == nil {
			return errors.WithMessage(errMissingArgument, "amount")
		}
	case MethodMint, MethodTransfer:
		if c.Amount == nil || c.To == nil {
			return errors.WithMessage(errMissingArgument, "amount and to")
		}
	case MethodAddCommitteeMember, MethodRemoveCommitteeMember:
		if c.To == nil {
			return errors.WithMessage(errMissingArgument, "to")
		}
	case MethodUpdateMetadata, MethodRegisterRewardAsset, MethodSolvePendingStake,
		MethodClaimNative, MethodClaimStable, MethodWithdraw:
	default:
		return errors.WithMessage(errUnknownMethod, string(c.Method))
	}
	return nil
}

func (rt *Runtime) dispatch(c *Call) error {
	staking := rt.staking
	switch c.Method {
	case MethodCreatePool:
		return staking.CreatePool(c.Origin, c.PoolID, c.Setting.ToSetting())
	case MethodUpdateMetadata:
		return staking.UpdateMetadata(c.Origin, c.PoolID, c.Name, c.Description)
	case MethodRegisterEpochReward:
		return staking.RegisterEpochReward(c.Origin, c.PoolID, c.Epoch, bigOrZero(c.Amount))
	case MethodRegisterRewardAsset:
		return staking.RegisterRewardAsset(c.Origin, c.Asset)
	case MethodStake:
		return staking.Stake(c.Origin, c.PoolID, bigOrZero(c.Amount))
	case MethodSolvePendingStake:
		return staking.SolvePendingStake(c.Origin)
	case MethodClaimNative:
		return staking.ClaimNative(c.Origin, c.Until)
	case MethodClaimStable:
		return staking.ClaimStable(c.Origin, c.PoolID, c.Until)
	case MethodWithdraw:
		return staking.Withdraw(c.Origin, c.PoolID)
	case MethodAddCommitteeMember:
		if err := rt.committee.EnsurePrivileged(c.Origin); err != nil {
			return err
		}
		return rt.committee.Add(*c.To)
	case MethodRemoveCommitteeMember:
		if err := rt.committee.EnsurePrivileged(c.Origin); err != nil {
			return err
		}
		return rt.committee.Remove(*c.To)
	case MethodMint:
		if err := rt.committee.EnsurePrivileged(c.Origin); err != nil {
			return err
		}
		_, err := rt.assets.MintInto(c.Asset, *c.To, bigOrZero(c.Amount))
		return err
	case MethodTransfer:
		return rt.assets.Transfer(c.Asset, c.Origin, *c.To, bigOrZero(c.Amount))
	}
	return errors.WithMessage(errUnknownMethod, string(c.Method))
}

// Receipt is the outcome of a call.
type Receipt struct {
	Method   Method                `json:"method"`
	Origin   canbus.Address        `json:"origin"`
	Reverted bool                  `json:"reverted"`
	Reason   string                `json:"reason,omitempty"`
	Events   []stablestaking.Event `json:"events"`
}
