// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package pending keeps stable stakes waiting for their effective time.
package pending

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/canbus-network/canbus/builtin/solidity"
	"github.com/canbus-network/canbus/builtin/stablestaking/checkpoint"
	"github.com/canbus-network/canbus/canbus"
)

var (
	slotHead   = canbus.BytesToBytes32([]byte("pending-head"))
	slotTail   = canbus.BytesToBytes32([]byte("pending-tail"))
	slotNextID = canbus.BytesToBytes32([]byte("pending-next-id"))
	slotSize   = canbus.BytesToBytes32([]byte("pending-size"))
	slotNodes  = canbus.BytesToBytes32([]byte("pending-nodes"))
)

// Entry is a stable stake not effective yet.
type Entry struct {
	Who    canbus.Address
	PoolID canbus.PoolID
	Info   *checkpoint.StakingInfo
}

type nodeID uint64

func (id nodeID) Bytes() []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(id))
}

type node struct {
	Entry Entry
	Prev  uint64
	Next  uint64
}

// Queue is ordered by effective time. Entries with the same effective time keep insertion order.
// Node ids start at 1, zero marks the absence of a link.
type Queue struct {
	head   *solidity.Raw[uint64]
	tail   *solidity.Raw[uint64]
	nextID *solidity.Raw[uint64]
	size   *solidity.Raw[uint64]
	nodes  *solidity.Mapping[nodeID, *node]
}

func New(sctx *solidity.Context) *Queue {
	return &Queue{
		head:   solidity.NewRaw[uint64](sctx, slotHead),
		tail:   solidity.NewRaw[uint64](sctx, slotTail),
		nextID: solidity.NewRaw[uint64](sctx, slotNextID),
		size:   solidity.NewRaw[uint64](sctx, slotSize),
		nodes:  solidity.NewMapping[nodeID, *node](sctx, slotNodes),
	}
}

func getU64(r *solidity.Raw[uint64]) (uint64, error) {
	v, _, err := r.Get()
	return v, err
}

func setU64(r *solidity.Raw[uint64], v uint64) error {
	if v == 0 {
		r.Delete()
		return nil
	}
	return r.Set(v)
}

func (q *Queue) node(id uint64) (*node, error) {
	n, found, err := q.nodes.Lookup(nodeID(id))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Errorf("pending: dangling node %d", id)
	}
	return n, nil
}

// Len returns the number of queued entries.
func (q *Queue) Len() (uint64, error) {
	return getU64(q.size)
}

// Push inserts the entry after every entry whose effective time is not later.
func (q *Queue) Push(entry *Entry) error {
	id, err := getU64(q.nextID)
	if err != nil {
		return err
	}
	id++
	if err := setU64(q.nextID, id); err != nil {
		return err
	}

	eff := entry.Info.EffectiveTime
	n := &node{Entry: *entry}

	// walk back from the tail, stakes mostly arrive in order
	prev, err := getU64(q.tail)
	if err != nil {
		return err
	}
	for prev != 0 {
		p, err := q.node(prev)
		if err != nil {
			return err
		}
		if p.Entry.Info.EffectiveTime <= eff {
			break
		}
		prev = p.Prev
	}

	var next uint64
	if prev == 0 {
		if next, err = getU64(q.head); err != nil {
			return err
		}
		if err := setU64(q.head, id); err != nil {
			return err
		}
	} else {
		p, err := q.node(prev)
		if err != nil {
			return err
		}
		next = p.Next
		p.Next = id
		if err := q.nodes.Set(nodeID(prev), p); err != nil {
			return err
		}
	}

	if next == 0 {
		if err := setU64(q.tail, id); err != nil {
			return err
		}
	} else {
		nx, err := q.node(next)
		if err != nil {
			return err
		}
		nx.Prev = id
		if err := q.nodes.Set(nodeID(next), nx); err != nil {
			return err
		}
	}

	n.Prev, n.Next = prev, next
	if err := q.nodes.Set(nodeID(id), n); err != nil {
		return err
	}

	size, err := getU64(q.size)
	if err != nil {
		return err
	}
	return setU64(q.size, size+1)
}

// Peek returns the earliest entry, or nil if the queue is empty.
func (q *Queue) Peek() (*Entry, error) {
	head, err := getU64(q.head)
	if err != nil || head == 0 {
		return nil, err
	}
	n, err := q.node(head)
	if err != nil {
		return nil, err
	}
	return &n.Entry, nil
}

// Pop removes and returns the earliest entry, or nil if the queue is empty.
func (q *Queue) Pop() (*Entry, error) {
	head, err := getU64(q.head)
	if err != nil || head == 0 {
		return nil, err
	}
	n, err := q.node(head)
	if err != nil {
		return nil, err
	}
	if err := setU64(q.head, n.Next); err != nil {
		return nil, err
	}
	if n.Next == 0 {
		q.tail.Delete()
	} else {
		nx, err := q.node(n.Next)
		if err != nil {
			return nil, err
		}
		nx.Prev = 0
		if err := q.nodes.Set(nodeID(n.Next), nx); err != nil {
			return nil, err
		}
	}
	q.nodes.Delete(nodeID(head))

	size, err := getU64(q.size)
	if err != nil {
		return nil, err
	}
	if err := setU64(q.size, size-1); err != nil {
		return nil, err
	}
	return &n.Entry, nil
}

// PopReady removes and returns the earliest entry if it is effective at t.
func (q *Queue) PopReady(t uint32) (*Entry, error) {
	head, err := q.Peek()
	if err != nil || head == nil || head.Info.EffectiveTime > t {
		return nil, err
	}
	return q.Pop()
}

// Iterate visits entries in queue order until fn returns false.
func (q *Queue) Iterate(fn func(*Entry) bool) error {
	id, err := getU64(q.head)
	if err != nil {
		return err
	}
	for id != 0 {
		n, err := q.node(id)
		if err != nil {
			return err
		}
		if !fn(&n.Entry) {
			return nil
		}
		id = n.Next
	}
	return nil
}
