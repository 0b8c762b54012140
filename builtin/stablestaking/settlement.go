// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stablestaking

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/canbus-network/canbus/builtin/stablestaking/checkpoint"
	"github.com/canbus-network/canbus/builtin/stablestaking/reverts"
	"github.com/canbus-network/canbus/canbus"
)

// share consumes the user weight accrued until the given time and returns the part of pot it earns.
// Both checkpoints are updated in place.
func share(global, user *checkpoint.StakingInfo, until uint32, pot *big.Int) (*big.Int, error) {
	userWeight, err := user.Claim(until)
	if err != nil {
		return nil, err
	}
	globalWeight, err := global.WeightForce(until)
	if err != nil {
		return nil, err
	}
	if userWeight.IsZero() {
		return new(big.Int), nil
	}
	proportion := checkpoint.FromRational(userWeight, globalWeight)
	if _, err := global.ClaimBasedOnWeight(userWeight); err != nil {
		return nil, err
	}
	total, err := checkpoint.ToUint128(pot)
	if err != nil {
		return nil, err
	}
	return proportion.Mul(total).ToBig(), nil
}

// ClaimNative pays who its share of the native reward account, for the weight accrued until the given block.
func (s *StableStaking) ClaimNative(who canbus.Address, until uint32) error {
	return s.atomic(func(emit func(Event)) error {
		return s.claimNative(who, until, emit)
	})
}

func (s *StableStaking) claimNative(who canbus.Address, until uint32, emit func(Event)) error {
	if until > s.clock.BlockNumber() {
		return reverts.ErrCannotClaimFuture
	}
	pot, err := s.assets.BalanceOf(canbus.NativeAsset, s.nativeAccount)
	if err != nil {
		return err
	}
	global, err := s.ledgerService.Native()
	if err != nil {
		return err
	}
	user, err := s.ledgerService.UserNative(who)
	if err != nil {
		return err
	}
	if global == nil || user == nil {
		return nil
	}

	reward, err := share(global, user, until, pot)
	if err != nil {
		return err
	}
	if err := s.assets.Transfer(canbus.NativeAsset, s.nativeAccount, who, reward); err != nil {
		return errors.WithMessage(err, "pay native reward")
	}
	if err := s.ledgerService.SetNative(global); err != nil {
		return err
	}
	if err := s.ledgerService.SetUserNative(who, user); err != nil {
		return err
	}
	emit(&NativeRewardClaimed{Who: who, UntilTime: until, Amount: reward})
	return nil
}

// ClaimStable pays who its share of the pool's unclaimed stable reward, for the weight accrued until the given block.
func (s *StableStaking) ClaimStable(who canbus.Address, id canbus.PoolID, until uint32) error {
	return s.atomic(func(emit func(Event)) error {
		return s.claimStable(who, id, until, emit)
	})
}

func (s *StableStaking) claimStable(who canbus.Address, id canbus.PoolID, until uint32, emit func(Event)) error {
	asset, err := s.poolService.MustRewardAsset()
	if err != nil {
		return err
	}
	if until > s.clock.BlockNumber() {
		return reverts.ErrCannotClaimFuture
	}
	pot, err := s.poolService.Unclaimed(id)
	if err != nil {
		return err
	}
	global, err := s.ledgerService.Stable(id)
	if err != nil {
		return err
	}
	user, err := s.ledgerService.UserStable(who, id)
	if err != nil {
		return err
	}
	if global == nil || user == nil {
		return nil
	}

	reward, err := share(global, user, until, pot)
	if err != nil {
		return err
	}
	if err := s.assets.Transfer(asset, s.stableAccount, who, reward); err != nil {
		return errors.WithMessage(err, "pay stable reward")
	}
	if err := s.poolService.SubUnclaimed(id, reward); err != nil {
		return err
	}
	if err := s.ledgerService.SetStable(id, global); err != nil {
		return err
	}
	if err := s.ledgerService.SetUserStable(who, id, user); err != nil {
		return err
	}
	emit(&StableRewardClaimed{Who: who, PoolID: id, UntilTime: until, Amount: reward})
	return nil
}

// Withdraw settles both rewards of who up to now and returns its principal once the pool has ended.
func (s *StableStaking) Withdraw(who canbus.Address, id canbus.PoolID) error {
	return s.atomic(func(emit func(Event)) error {
		setting, err := s.poolService.MustSetting(id)
		if err != nil {
			return err
		}
		end, err := setting.EndTime()
		if err != nil {
			return err
		}
		now := s.clock.BlockNumber()
		if end >= now {
			return reverts.ErrPoolNotEnded
		}

		if _, err := s.solvePending(now, emit); err != nil {
			return err
		}
		if err := s.claimNative(who, now, emit); err != nil {
			return err
		}
		if err := s.claimStable(who, id, now, emit); err != nil {
			return err
		}
		return s.withdraw(who, id, now, emit)
	})
}

func (s *StableStaking) withdraw(who canbus.Address, id canbus.PoolID, now uint32, emit func(Event)) error {
	asset, err := s.poolService.MustRewardAsset()
	if err != nil {
		return err
	}
	global, err := s.ledgerService.Stable(id)
	if err != nil {
		return err
	}
	user, err := s.ledgerService.UserStable(who, id)
	if err != nil {
		return err
	}
	if global == nil || user == nil {
		return nil
	}

	principal := new(big.Int).Set(user.Amount)
	if err := s.assets.Transfer(asset, s.stableAccount, who, principal); err != nil {
		return errors.WithMessage(err, "return principal")
	}
	if _, err := global.Withdraw(principal); err != nil {
		return err
	}
	if err := s.ledgerService.SetStable(id, global); err != nil {
		return err
	}

	nativeGlobal, err := s.ledgerService.Native()
	if err != nil {
		return err
	}
	if nativeGlobal != nil {
		if _, err := nativeGlobal.Withdraw(principal); err != nil {
			return err
		}
		if err := s.ledgerService.SetNative(nativeGlobal); err != nil {
			return err
		}
	}

	s.ledgerService.RemoveUserStable(who, id)

	nativeUser, err := s.ledgerService.UserNative(who)
	if err != nil {
		return err
	}
	if nativeUser != nil {
		if nativeUser.Amount.Cmp(principal) == 0 {
			s.ledgerService.RemoveUserNative(who)
		} else {
			if _, err := nativeUser.Withdraw(principal); err != nil {
				return err
			}
			if err := s.ledgerService.SetUserNative(who, nativeUser); err != nil {
				return err
			}
		}
	}
	logger.Debug("withdrawn", "who", who, "pool", id, "amount", principal)
	emit(&Withdraw{Who: who, PoolID: id, Time: now, Amount: principal})
	return nil
}
