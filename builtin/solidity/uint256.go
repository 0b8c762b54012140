// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"errors"
	"math/big"

	"github.com/canbus-network/canbus/canbus"
)

// ErrUnderflow is returned by Sub when the stored value is smaller than the operand.
var ErrUnderflow = errors.New("uint256 underflow")

// Uint256 is a non-negative integer stored at a fixed slot. Zero is stored as absence.
type Uint256 struct {
	raw *Raw[*big.Int]
}

func NewUint256(context *Context, pos canbus.Bytes32) *Uint256 {
	return &Uint256{raw: NewRaw[*big.Int](context, pos)}
}

func (u *Uint256) Get() (*big.Int, error) {
	v, found, err := u.raw.Get()
	if err != nil {
		return nil, err
	}
	if !found {
		return new(big.Int), nil
	}
	return v, nil
}

func (u *Uint256) Set(value *big.Int) error {
	if value.Sign() == 0 {
		u.raw.Delete()
		return nil
	}
	return u.raw.Set(value)
}

func (u *Uint256) Add(value *big.Int) error {
	v, err := u.Get()
	if err != nil {
		return err
	}
	return u.Set(v.Add(v, value))
}

func (u *Uint256) Sub(value *big.Int) error {
	v, err := u.Get()
	if err != nil {
		return err
	}
	if v.Cmp(value) < 0 {
		return ErrUnderflow
	}
	return u.Set(v.Sub(v, value))
}
