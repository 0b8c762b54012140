// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stablestaking

import (
	"math"
	"math/big"

	"github.com/canbus-network/canbus/builtin/stablestaking/checkpoint"
	"github.com/canbus-network/canbus/builtin/stablestaking/pending"
	"github.com/canbus-network/canbus/builtin/stablestaking/reverts"
	"github.com/canbus-network/canbus/canbus"
)

// Stake locks amount of the reward asset from who into the pool.
// The stake earns native rewards from now on, and stable rewards once the pending entry is solved.
func (s *StableStaking) Stake(who canbus.Address, id canbus.PoolID, amount *big.Int) error {
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
		if setting.StartTime >= now {
			return reverts.ErrPoolNotStarted
		}
		if amount == nil || amount.Sign() <= 0 {
			return reverts.ErrInvalidAmount
		}
		if _, err := checkpoint.ToUint128(amount); err != nil {
			return err
		}

		setupEnd := uint64(now) + uint64(setting.SetupTime)
		if setupEnd > math.MaxUint32 {
			return reverts.ErrArithmeticOverflow
		}
		epoch, err := setting.EpochIndex(uint32(setupEnd))
		if err != nil {
			return err
		}
		effective, err := setting.EpochBeginTime(epoch + 1)
		if err != nil {
			return err
		}
		if end <= effective {
			return reverts.ErrPoolAlreadyEnded
		}

		if err := s.pendingQueue.Push(&pending.Entry{
			Who:    who,
			PoolID: id,
			Info:   checkpoint.New(effective, amount),
		}); err != nil {
			return err
		}
		if err := s.ledgerService.AddNative(who, now, amount); err != nil {
			return err
		}

		asset, err := s.poolService.MustRewardAsset()
		if err != nil {
			return err
		}
		if err := s.assets.Transfer(asset, who, s.stableAccount, amount); err != nil {
			return err
		}
		logger.Debug("staked", "who", who, "pool", id, "amount", amount, "effective", effective)
		emit(&Staked{Who: who, PoolID: id, TargetEffectiveTime: effective, Amount: new(big.Int).Set(amount)})
		return nil
	})
}

// solvePending moves every pending entry effective at now into the stable checkpoints.
// Entries are merged at now, not at their target time.
func (s *StableStaking) solvePending(now uint32, emit func(Event)) (int, error) {
	var solved int
	for {
		entry, err := s.pendingQueue.PopReady(now)
		if err != nil {
			return solved, err
		}
		if entry == nil {
			return solved, nil
		}
		if err := s.ledgerService.AddStable(entry.Who, entry.PoolID, now, entry.Info.Amount); err != nil {
			return solved, err
		}
		solved++
		emit(&PendingStakingSolved{
			Who:           entry.Who,
			PoolID:        entry.PoolID,
			EffectiveTime: now,
			Amount:        entry.Info.Amount,
		})
	}
}

// SolvePendingStake solves the pending entries effective at the current block.
// Anyone may call it, the block hook does the same work.
func (s *StableStaking) SolvePendingStake(origin canbus.Address) error {
	return s.atomic(func(emit func(Event)) error {
		n, err := s.solvePending(s.clock.BlockNumber(), emit)
		if err != nil {
			return err
		}
		logger.Debug("pending stakes solved", "origin", origin, "count", n)
		return nil
	})
}

// OnInitialize is the block hook. It solves ready pending entries and never fails the block.
// It returns the number of entries solved.
func (s *StableStaking) OnInitialize() int {
	now := s.clock.BlockNumber()
	head, err := s.pendingQueue.Peek()
	if err != nil {
		logger.Warn("failed to read pending queue", "block", now, "err", err)
		return 0
	}
	if head == nil || head.Info.EffectiveTime > now {
		return 0
	}

	var solved int
	if err := s.atomic(func(emit func(Event)) error {
		var err error
		solved, err = s.solvePending(now, emit)
		return err
	}); err != nil {
		logger.Warn("failed to solve pending stakes", "block", now, "err", err)
		return 0
	}
	return solved
}

// PendingCount returns the number of stakes waiting for their effective time.
func (s *StableStaking) PendingCount() (uint64, error) {
	return s.pendingQueue.Len()
}

// PendingEntries lists up to limit pending stakes in solving order. Zero means no limit.
func (s *StableStaking) PendingEntries(limit int) ([]*pending.Entry, error) {
	var entries []*pending.Entry
	err := s.pendingQueue.Iterate(func(e *pending.Entry) bool {
		entries = append(entries, e)
		return limit <= 0 || len(entries) < limit
	})
	return entries, err
}

func (s *StableStaking) NativeCheckpoint() (*checkpoint.StakingInfo, error) {
	return s.ledgerService.Native()
}

func (s *StableStaking) UserNativeCheckpoint(who canbus.Address) (*checkpoint.StakingInfo, error) {
	return s.ledgerService.UserNative(who)
}

func (s *StableStaking) StableCheckpoint(id canbus.PoolID) (*checkpoint.StakingInfo, error) {
	return s.ledgerService.Stable(id)
}

func (s *StableStaking) UserStableCheckpoint(who canbus.Address, id canbus.PoolID) (*checkpoint.StakingInfo, error) {
	return s.ledgerService.UserStable(who, id)
}
