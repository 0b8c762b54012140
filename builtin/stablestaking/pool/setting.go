// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math"
	"math/big"

	"github.com/canbus-network/canbus/builtin/stablestaking/reverts"
)

// Setting is the immutable schedule of a staking pool.
// The pool is active on [StartTime, EndTime) and divided into EpochCount epochs of EpochRange blocks.
type Setting struct {
	StartTime  uint32
	EpochCount uint64
	EpochRange uint32
	SetupTime  uint32
	PoolCap    *big.Int
}

// Copy returns a deep copy with a nil cap replaced by zero.
func (s *Setting) Copy() *Setting {
	cpy := *s
	if s.PoolCap == nil {
		cpy.PoolCap = new(big.Int)
	} else {
		cpy.PoolCap = new(big.Int).Set(s.PoolCap)
	}
	return &cpy
}

// EndTime returns StartTime + EpochRange * EpochCount.
func (s *Setting) EndTime() (uint32, error) {
	span, ok := mulU32(uint64(s.EpochRange), s.EpochCount)
	if !ok {
		return 0, reverts.ErrArithmeticOverflow
	}
	end := uint64(s.StartTime) + uint64(span)
	if end > math.MaxUint32 {
		return 0, reverts.ErrArithmeticOverflow
	}
	return uint32(end), nil
}

// Validate rejects schedules that cannot be evaluated.
func (s *Setting) Validate() error {
	if s.EpochRange == 0 || s.EpochCount == 0 {
		return reverts.ErrInvalidPoolSetting
	}
	if s.PoolCap != nil && s.PoolCap.Sign() < 0 {
		return reverts.ErrInvalidPoolSetting
	}
	if _, err := s.EndTime(); err != nil {
		return reverts.ErrInvalidPoolSetting
	}
	return nil
}

// EpochIndex returns the epoch containing block t.
// Blocks before the start map to epoch 0, blocks after the end to EpochCount.
func (s *Setting) EpochIndex(t uint32) (uint64, error) {
	if s.EpochRange == 0 {
		return 0, reverts.ErrArithmeticOverflow
	}
	var elapsed uint32
	if t > s.StartTime {
		elapsed = t - s.StartTime
	}
	return min(uint64(elapsed/s.EpochRange), s.EpochCount), nil
}

// EpochBeginTime returns the first block of epoch e, or the end time when e is past the last epoch.
func (s *Setting) EpochBeginTime(e uint64) (uint32, error) {
	if e >= s.EpochCount {
		return s.EndTime()
	}
	span, ok := mulU32(uint64(s.EpochRange), e)
	if !ok {
		return 0, reverts.ErrArithmeticOverflow
	}
	begin := uint64(s.StartTime) + uint64(span)
	if begin > math.MaxUint32 {
		return 0, reverts.ErrArithmeticOverflow
	}
	return uint32(begin), nil
}

func mulU32(a, b uint64) (uint32, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if b > math.MaxUint32/a {
		return 0, false
	}
	return uint32(a * b), true
}
