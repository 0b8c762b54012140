// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package committee keeps the set of accounts allowed to perform privileged operations.
package committee

import (
	"github.com/canbus-network/canbus/builtin/reverts"
	"github.com/canbus-network/canbus/builtin/solidity"
	"github.com/canbus-network/canbus/canbus"
	"github.com/canbus-network/canbus/state"
)

var (
	ErrUnauthorized   = reverts.New("committee", "origin is not privileged")
	ErrAlreadyMember  = reverts.New("committee", "already a member")
	ErrNotMember      = reverts.New("committee", "not a member")
	ErrLastMember     = reverts.New("committee", "cannot remove the last member")
	slotHead          = canbus.Blake2b([]byte("committee-head"))
	slotTail          = canbus.Blake2b([]byte("committee-tail"))
	slotEntries       = canbus.Blake2b([]byte("committee-entries"))
	slotMembersCount  = canbus.Blake2b([]byte("committee-count"))
)

// entry links a member to its neighbours, keeping insertion order.
type entry struct {
	Prev *canbus.Address `rlp:"nil"`
	Next *canbus.Address `rlp:"nil"`
}

// Committee implements native methods of the committee contract.
type Committee struct {
	head    *solidity.Raw[canbus.Address]
	tail    *solidity.Raw[canbus.Address]
	count   *solidity.Raw[uint64]
	entries *solidity.Mapping[canbus.Address, *entry]
}

// New create a new instance.
func New(addr canbus.Address, state *state.State) *Committee {
	sctx := solidity.NewContext(addr, state)
	return &Committee{
		head:    solidity.NewRaw[canbus.Address](sctx, slotHead),
		tail:    solidity.NewRaw[canbus.Address](sctx, slotTail),
		count:   solidity.NewRaw[uint64](sctx, slotMembersCount),
		entries: solidity.NewMapping[canbus.Address, *entry](sctx, slotEntries),
	}
}

// IsMember returns whether addr belongs to the committee.
func (c *Committee) IsMember(addr canbus.Address) (bool, error) {
	if _, found, err := c.entries.Lookup(addr); err != nil || found {
		return found, err
	}
	return false, nil
}

// EnsurePrivileged fails with ErrUnauthorized unless origin is a member.
func (c *Committee) EnsurePrivileged(origin canbus.Address) error {
	ok, err := c.IsMember(origin)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnauthorized
	}
	return nil
}

// Count returns the number of members.
func (c *Committee) Count() (uint64, error) {
	n, _, err := c.count.Get()
	return n, err
}

// Add appends addr to the committee.
func (c *Committee) Add(addr canbus.Address) error {
	if ok, err := c.IsMember(addr); err != nil {
		return err
	} else if ok {
		return ErrAlreadyMember
	}

	tail, hasTail, err := c.tail.Get()
	if err != nil {
		return err
	}
	e := &entry{}
	if hasTail {
		tailEntry, err := c.entries.Get(tail)
		if err != nil {
			return err
		}
		tailEntry.Next = &addr
		if err := c.entries.Set(tail, tailEntry); err != nil {
			return err
		}
		e.Prev = &tail
	} else if err := c.head.Set(addr); err != nil {
		return err
	}
	if err := c.entries.Set(addr, e); err != nil {
		return err
	}
	if err := c.tail.Set(addr); err != nil {
		return err
	}
	n, err := c.Count()
	if err != nil {
		return err
	}
	return c.count.Set(n + 1)
}

// Remove unlinks addr from the committee. The last member cannot be removed.
func (c *Committee) Remove(addr canbus.Address) error {
	e, found, err := c.entries.Lookup(addr)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotMember
	}
	n, err := c.Count()
	if err != nil {
		return err
	}
	if n <= 1 {
		return ErrLastMember
	}

	if e.Prev != nil {
		prev, err := c.entries.Get(*e.Prev)
		if err != nil {
			return err
		}
		prev.Next = e.Next
		if err := c.entries.Set(*e.Prev, prev); err != nil {
			return err
		}
	} else if err := c.head.Set(*e.Next); err != nil {
		return err
	}

	if e.Next != nil {
		next, err := c.entries.Get(*e.Next)
		if err != nil {
			return err
		}
		next.Prev = e.Prev
		if err := c.entries.Set(*e.Next, next); err != nil {
			return err
		}
	} else if err := c.tail.Set(*e.Prev); err != nil {
		return err
	}

	c.entries.Delete(addr)
	return c.count.Set(n - 1)
}

// Members lists members in insertion order.
func (c *Committee) Members() ([]canbus.Address, error) {
	ptr, ok, err := c.head.Get()
	if err != nil || !ok {
		return nil, err
	}
	var members []canbus.Address
	for {
		members = append(members, ptr)
		e, err := c.entries.Get(ptr)
		if err != nil {
			return nil, err
		}
		if e.Next == nil {
			return members, nil
		}
		ptr = *e.Next
	}
}
