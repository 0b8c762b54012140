// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"encoding/json"
	"math"

	"github.com/canbus-network/canbus/canbus"
	"github.com/canbus-network/canbus/eventdb"
)

type Range struct {
	From *uint32 `json:"from,omitempty"`
	To   *uint32 `json:"to,omitempty"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

type EventFilter struct {
	Range   *Range          `json:"range,omitempty"`
	Names   []string        `json:"names,omitempty"`
	Who     *canbus.Address `json:"who,omitempty"`
	PoolID  *canbus.PoolID  `json:"poolId,omitempty"`
	Order   eventdb.Order   `json:"order,omitempty"`
	Options *Options        `json:"options,omitempty"`
}

type FilteredEvent struct {
	BlockNumber uint32          `json:"blockNumber"`
	Index       uint32          `json:"index"`
	Name        string          `json:"name"`
	Who         *canbus.Address `json:"who,omitempty"`
	PoolID      *canbus.PoolID  `json:"poolId,omitempty"`
	Data        json.RawMessage `json:"data"`
}

func convertFilter(ef *EventFilter) *eventdb.Filter {
	f := &eventdb.Filter{
		Names:  ef.Names,
		Who:    ef.Who,
		PoolID: ef.PoolID,
		Order:  ef.Order,
	}
	if ef.Range != nil {
		f.Range = &eventdb.Range{To: math.MaxUint32}
		if ef.Range.From != nil {
			f.Range.From = *ef.Range.From
		}
		if ef.Range.To != nil {
			f.Range.To = *ef.Range.To
		}
	}
	if ef.Options != nil {
		f.Options = &eventdb.Options{Offset: ef.Options.Offset, Limit: ef.Options.Limit}
	}
	return f
}

func convertEvent(ev *eventdb.Event) *FilteredEvent {
	return &FilteredEvent{
		BlockNumber: ev.BlockNumber,
		Index:       ev.Index,
		Name:        ev.Name,
		Who:         ev.Who,
		PoolID:      ev.PoolID,
		Data:        ev.Data,
	}
}
