// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/canbus-network/canbus/canbus"
	"github.com/canbus-network/canbus/state"
)

// Context binds storage helpers to the storage space of one built-in contract.
type Context struct {
	address canbus.Address
	state   *state.State
}

func NewContext(address canbus.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) Address() canbus.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}
