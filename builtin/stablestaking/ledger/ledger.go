// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger stores the staking checkpoints of pools and stakers.
//
// Native checkpoints weight native rewards and are shared by every pool.
// Stable checkpoints are kept per pool and carry the staked principal.
package ledger

import (
	"math/big"

	"github.com/canbus-network/canbus/builtin/solidity"
	"github.com/canbus-network/canbus/builtin/stablestaking/checkpoint"
	"github.com/canbus-network/canbus/canbus"
)

var (
	slotNative     = canbus.BytesToBytes32([]byte("native-checkpoint"))
	slotUserNative = canbus.BytesToBytes32([]byte("user-native-checkpoints"))
	slotStable     = canbus.BytesToBytes32([]byte("stable-checkpoints"))
	slotUserStable = canbus.BytesToBytes32([]byte("user-stable-checkpoints"))
)

type stakerKey struct {
	who  canbus.Address
	pool canbus.PoolID
}

func (k stakerKey) Bytes() []byte {
	return append(k.who.Bytes(), k.pool.Bytes()...)
}

type Service struct {
	native     *solidity.Raw[*checkpoint.StakingInfo]
	userNative *solidity.Mapping[canbus.Address, *checkpoint.StakingInfo]
	stable     *solidity.Mapping[canbus.PoolID, *checkpoint.StakingInfo]
	userStable *solidity.Mapping[stakerKey, *checkpoint.StakingInfo]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		native:     solidity.NewRaw[*checkpoint.StakingInfo](sctx, slotNative),
		userNative: solidity.NewMapping[canbus.Address, *checkpoint.StakingInfo](sctx, slotUserNative),
		stable:     solidity.NewMapping[canbus.PoolID, *checkpoint.StakingInfo](sctx, slotStable),
		userStable: solidity.NewMapping[stakerKey, *checkpoint.StakingInfo](sctx, slotUserStable),
	}
}

func merge(cp *checkpoint.StakingInfo, found bool, t uint32, amount *big.Int) (*checkpoint.StakingInfo, error) {
	if !found {
		return checkpoint.New(t, amount), nil
	}
	if err := cp.Add(t, amount); err != nil {
		return nil, err
	}
	return cp, nil
}

// Native returns the global native checkpoint, or nil.
func (s *Service) Native() (*checkpoint.StakingInfo, error) {
	cp, _, err := s.native.Get()
	return cp, err
}

func (s *Service) SetNative(cp *checkpoint.StakingInfo) error {
	return s.native.Set(cp)
}

// UserNative returns the native checkpoint of who, or nil.
func (s *Service) UserNative(who canbus.Address) (*checkpoint.StakingInfo, error) {
	cp, _, err := s.userNative.Lookup(who)
	return cp, err
}

func (s *Service) SetUserNative(who canbus.Address, cp *checkpoint.StakingInfo) error {
	return s.userNative.Set(who, cp)
}

func (s *Service) RemoveUserNative(who canbus.Address) {
	s.userNative.Delete(who)
}

// AddNative merges a deposit effective at t into the global and the staker native checkpoints.
// An empty deposit changes nothing.
func (s *Service) AddNative(who canbus.Address, t uint32, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	global, found, err := s.native.Get()
	if err != nil {
		return err
	}
	if global, err = merge(global, found, t, amount); err != nil {
		return err
	}
	user, found, err := s.userNative.Lookup(who)
	if err != nil {
		return err
	}
	if user, err = merge(user, found, t, amount); err != nil {
		return err
	}
	if err := s.native.Set(global); err != nil {
		return err
	}
	return s.userNative.Set(who, user)
}

// Stable returns the stable checkpoint of the pool, or nil.
func (s *Service) Stable(pool canbus.PoolID) (*checkpoint.StakingInfo, error) {
	cp, _, err := s.stable.Lookup(pool)
	return cp, err
}

func (s *Service) SetStable(pool canbus.PoolID, cp *checkpoint.StakingInfo) error {
	return s.stable.Set(pool, cp)
}

// UserStable returns the stable checkpoint of who in the pool, or nil.
func (s *Service) UserStable(who canbus.Address, pool canbus.PoolID) (*checkpoint.StakingInfo, error) {
	cp, _, err := s.userStable.Lookup(stakerKey{who, pool})
	return cp, err
}

func (s *Service) SetUserStable(who canbus.Address, pool canbus.PoolID, cp *checkpoint.StakingInfo) error {
	return s.userStable.Set(stakerKey{who, pool}, cp)
}

func (s *Service) RemoveUserStable(who canbus.Address, pool canbus.PoolID) {
	s.userStable.Delete(stakerKey{who, pool})
}

// AddStable merges a deposit effective at t into the pool and the staker stable checkpoints.
// An empty deposit changes nothing.
func (s *Service) AddStable(who canbus.Address, pool canbus.PoolID, t uint32, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	global, found, err := s.stable.Lookup(pool)
	if err != nil {
		return err
	}
	if global, err = merge(global, found, t, amount); err != nil {
		return err
	}
	user, found, err := s.userStable.Lookup(stakerKey{who, pool})
	if err != nil {
		return err
	}
	if user, err = merge(user, found, t, amount); err != nil {
		return err
	}
	if err := s.stable.Set(pool, global); err != nil {
		return err
	}
	return s.userStable.Set(stakerKey{who, pool}, user)
}
