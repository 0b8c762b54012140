// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"encoding/json"
	"slices"

	"github.com/canbus-network/canbus/canbus"
	"github.com/canbus-network/canbus/eventdb"
	"github.com/canbus-network/canbus/node"
)

type BlockMessage struct {
	Number    uint32         `json:"number"`
	StageHash canbus.Bytes32 `json:"stageHash"`
	Changes   int            `json:"changes"`
	Calls     int            `json:"calls"`
	Reverted  int            `json:"reverted"`
	Events    int            `json:"events"`
}

func newBlockMessage(blk *node.Block) *BlockMessage {
	msg := &BlockMessage{
		Number:    blk.Number,
		StageHash: blk.StageHash,
		Changes:   blk.Changes,
		Calls:     len(blk.Receipts),
		Events:    len(blk.HookEvents),
	}
	for _, r := range blk.Receipts {
		if r.Reverted {
			msg.Reverted++
		}
		msg.Events += len(r.Events)
	}
	return msg
}

type EventMessage struct {
	BlockNumber uint32          `json:"blockNumber"`
	Index       uint32          `json:"index"`
	Name        string          `json:"name"`
	Who         *canbus.Address `json:"who,omitempty"`
	PoolID      *canbus.PoolID  `json:"poolId,omitempty"`
	Data        json.RawMessage `json:"data"`
}

func newEventMessage(ev *eventdb.Event) *EventMessage {
	return &EventMessage{
		BlockNumber: ev.BlockNumber,
		Index:       ev.Index,
		Name:        ev.Name,
		Who:         ev.Who,
		PoolID:      ev.PoolID,
		Data:        ev.Data,
	}
}

// EventFilter selects the streamed events. Empty fields match everything.
type EventFilter struct {
	Names  []string
	Who    *canbus.Address
	PoolID *canbus.PoolID
}

func (f *EventFilter) Match(ev *eventdb.Event) bool {
	if len(f.Names) > 0 && !slices.Contains(f.Names, ev.Name) {
		return false
	}
	if f.Who != nil && (ev.Who == nil || *ev.Who != *f.Who) {
		return false
	}
	if f.PoolID != nil && (ev.PoolID == nil || *ev.PoolID != *f.PoolID) {
		return false
	}
	return true
}

func (f *EventFilter) dbFilter(from, to uint32) *eventdb.Filter {
	return &eventdb.Filter{
		Range:  &eventdb.Range{From: from, To: to},
		Names:  f.Names,
		Who:    f.Who,
		PoolID: f.PoolID,
		Order:  eventdb.ASC,
	}
}
