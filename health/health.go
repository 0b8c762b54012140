// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"sync"
	"time"
)

type BlockIngestion struct {
	Number    *uint32    `json:"number"`
	Timestamp *time.Time `json:"timestamp"`
}

type Status struct {
	Healthy        bool            `json:"healthy"`
	BlockIngestion *BlockIngestion `json:"blockIngestion"`
}

// Health tracks block production. A node is healthy once it produced a block
// and, when maxDelay is set, the last block is not older than maxDelay.
type Health struct {
	lock      sync.RWMutex
	maxDelay  time.Duration
	lastBlock time.Time
	number    *uint32
	now       func() time.Time
}

func New(maxDelay time.Duration) *Health {
	return &Health{maxDelay: maxDelay, now: time.Now}
}

func (h *Health) NewBlock(number uint32) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.lastBlock = h.now()
	h.number = &number
}

func (h *Health) Status() *Status {
	h.lock.RLock()
	defer h.lock.RUnlock()

	status := &Status{BlockIngestion: &BlockIngestion{}}
	if h.number == nil {
		return status
	}
	number, ts := *h.number, h.lastBlock
	status.BlockIngestion.Number = &number
	status.BlockIngestion.Timestamp = &ts
	status.Healthy = h.maxDelay == 0 || h.now().Sub(h.lastBlock) <= h.maxDelay
	return status
}
