// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"encoding/json"

	"github.com/canbus-network/canbus/canbus"
)

// Event is a stored staking event.
type Event struct {
	BlockNumber uint32
	Index       uint32
	Name        string
	Who         *canbus.Address
	PoolID      *canbus.PoolID
	Data        json.RawMessage
}

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

type Range struct {
	From uint32
	To   uint32
}

type Options struct {
	Offset uint64
	Limit  uint64
}

// Filter selects events. Empty fields match everything.
type Filter struct {
	Range   *Range
	Names   []string
	Who     *canbus.Address
	PoolID  *canbus.PoolID
	Order   Order
	Options *Options
}
