// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package checkpoint

import (
	"github.com/holiman/uint256"
)

// Accuracy is the number of parts in a whole Proportion.
const Accuracy uint64 = 1_000_000_000_000_000_000

var (
	accuracy     = uint256.NewInt(Accuracy)
	halfAccuracy = uint256.NewInt(Accuracy / 2)
)

// Proportion is a fraction in [0, 1] with a precision of 10^-18.
type Proportion struct {
	parts uint64
}

// One is the whole.
var One = Proportion{Accuracy}

// FromRational approximates p/q, rounding down.
// It saturates to One when q is zero or p exceeds q.
func FromRational(p, q *uint256.Int) Proportion {
	if q.IsZero() || p.Cmp(q) >= 0 {
		return One
	}
	num, overflow := new(uint256.Int).MulOverflow(p, accuracy)
	if overflow {
		return fromRationalWide(p, q)
	}
	return Proportion{new(uint256.Int).Div(num, q).Uint64()}
}

// fromRationalWide scales both operands down until the product fits.
func fromRationalWide(p, q *uint256.Int) Proportion {
	p, q = new(uint256.Int).Set(p), new(uint256.Int).Set(q)
	for {
		num, overflow := new(uint256.Int).MulOverflow(p, accuracy)
		if !overflow && !q.IsZero() {
			return Proportion{new(uint256.Int).Div(num, q).Uint64()}
		}
		p.Rsh(p, 1)
		q.Rsh(q, 1)
		if q.IsZero() {
			return One
		}
	}
}

// Parts returns the numerator over Accuracy.
func (p Proportion) Parts() uint64 {
	return p.parts
}

// IsZero reports whether the proportion is nothing.
func (p Proportion) IsZero() bool {
	return p.parts == 0
}

// Mul applies the proportion to v, rounding to the nearest integer with ties going down.
func (p Proportion) Mul(v *uint256.Int) *uint256.Int {
	prod, overflow := new(uint256.Int).MulOverflow(v, uint256.NewInt(p.parts))
	if overflow {
		// only reachable for v wider than 196 bits, split into quotient and remainder
		q, r := new(uint256.Int).DivMod(v, accuracy, new(uint256.Int))
		upper := new(uint256.Int).Mul(q, uint256.NewInt(p.parts))
		return upper.Add(upper, p.Mul(r))
	}
	quo, rem := new(uint256.Int).DivMod(prod, accuracy, new(uint256.Int))
	if rem.Gt(halfAccuracy) {
		quo.AddUint64(quo, 1)
	}
	return quo
}
