// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package checkpoint implements the weight arithmetic of staking positions.
//
// A position is a synthetic checkpoint: merging deposits keeps the amount-weighted
// average of their effective times, so the weight (n - EffectiveTime) * Amount of the
// merged position equals the sum of the weights of the deposits for any n after the
// last deposit. All intermediates are computed in 128 bits and fail on overflow.
package checkpoint

import (
	"math"
	"math/big"

	"github.com/holiman/uint256"

	"github.com/canbus-network/canbus/builtin/stablestaking/reverts"
)

var maxUint128 = new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 128), uint256.NewInt(1))

// StakingInfo is a single deposit or the merge of several deposits.
type StakingInfo struct {
	EffectiveTime uint32
	Amount        *big.Int
	LastAddTime   uint32
}

// New returns the position of a single deposit.
func New(effectiveTime uint32, amount *big.Int) *StakingInfo {
	return &StakingInfo{
		EffectiveTime: effectiveTime,
		Amount:        new(big.Int).Set(amount),
		LastAddTime:   effectiveTime,
	}
}

// Clone returns a deep copy.
func (s *StakingInfo) Clone() *StakingInfo {
	cpy := *s
	cpy.Amount = new(big.Int).Set(s.amount())
	return &cpy
}

func (s *StakingInfo) amount() *big.Int {
	if s.Amount == nil {
		return new(big.Int)
	}
	return s.Amount
}

// ToUint128 converts v, failing when it is negative or wider than 128 bits.
func ToUint128(v *big.Int) (*uint256.Int, error) {
	if v == nil {
		return new(uint256.Int), nil
	}
	if v.Sign() < 0 {
		return nil, reverts.ErrArithmeticOverflow
	}
	u, overflow := uint256.FromBig(v)
	if overflow || u.Gt(maxUint128) {
		return nil, reverts.ErrArithmeticOverflow
	}
	return u, nil
}

func mul128(x, y *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).MulOverflow(x, y)
	if overflow || z.Gt(maxUint128) {
		return nil, reverts.ErrArithmeticOverflow
	}
	return z, nil
}

func add128(x, y *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).AddOverflow(x, y)
	if overflow || z.Gt(maxUint128) {
		return nil, reverts.ErrArithmeticOverflow
	}
	return z, nil
}

// Add merges a deposit of amount effective at effectiveTime.
// The position is left untouched on error.
func (s *StakingInfo) Add(effectiveTime uint32, amount *big.Int) error {
	added, err := ToUint128(amount)
	if err != nil {
		return err
	}
	held, err := ToUint128(s.Amount)
	if err != nil {
		return err
	}
	total, err := add128(held, added)
	if err != nil {
		return err
	}
	heldWeight, err := mul128(uint256.NewInt(uint64(s.EffectiveTime)), held)
	if err != nil {
		return err
	}
	addedWeight, err := mul128(uint256.NewInt(uint64(effectiveTime)), added)
	if err != nil {
		return err
	}
	sum, err := add128(heldWeight, addedWeight)
	if err != nil {
		return err
	}
	if total.IsZero() {
		return reverts.ErrArithmeticOverflow
	}
	// the average lies between both effective times, so it fits 32 bits
	avg := new(uint256.Int).Div(sum, total)

	s.EffectiveTime = uint32(avg.Uint64())
	s.Amount = total.ToBig()
	s.LastAddTime = max(s.LastAddTime, effectiveTime)
	return nil
}

// Weight returns (n - EffectiveTime) * Amount.
// n must not precede the last merged deposit.
func (s *StakingInfo) Weight(n uint32) (*uint256.Int, error) {
	if s.LastAddTime > n {
		return nil, reverts.ErrClaimBeforeLastAdd
	}
	return s.WeightForce(n)
}

// WeightForce is Weight without the last deposit guard.
// It is used on aggregate positions whose last deposit may belong to someone else.
func (s *StakingInfo) WeightForce(n uint32) (*uint256.Int, error) {
	if n < s.EffectiveTime {
		return nil, reverts.ErrArithmeticOverflow
	}
	held, err := ToUint128(s.Amount)
	if err != nil {
		return nil, err
	}
	return mul128(uint256.NewInt(uint64(n-s.EffectiveTime)), held)
}

// Claim consumes the weight accrued until n and returns it.
func (s *StakingInfo) Claim(n uint32) (*uint256.Int, error) {
	w, err := s.Weight(n)
	if err != nil {
		return nil, err
	}
	s.EffectiveTime = n
	return w, nil
}

// ClaimBasedOnWeight consumes weight from the position without knowing the claim time,
// moving EffectiveTime forward by weight / Amount. It returns the new effective time.
func (s *StakingInfo) ClaimBasedOnWeight(weight *uint256.Int) (uint32, error) {
	held, err := ToUint128(s.Amount)
	if err != nil {
		return 0, err
	}
	if held.IsZero() {
		return 0, reverts.ErrArithmeticOverflow
	}
	delta := new(uint256.Int).Div(weight, held)
	next := delta.Add(delta, uint256.NewInt(uint64(s.EffectiveTime)))
	if !next.IsUint64() || next.Uint64() > math.MaxUint32 {
		return 0, reverts.ErrArithmeticOverflow
	}
	s.EffectiveTime = uint32(next.Uint64())
	return s.EffectiveTime, nil
}

// Withdraw removes v from the position and returns the remaining amount.
func (s *StakingInfo) Withdraw(v *big.Int) (*big.Int, error) {
	if v.Sign() < 0 || s.amount().Cmp(v) < 0 {
		return nil, reverts.ErrArithmeticOverflow
	}
	s.Amount = new(big.Int).Sub(s.amount(), v)
	return new(big.Int).Set(s.Amount), nil
}
