// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/canbus-network/canbus/co"
	"github.com/canbus-network/canbus/runtime"
)

var ErrCallPoolFull = errors.New("call pool is full")

// CallPool buffers submitted calls until the next block.
type CallPool struct {
	limit int

	mu     sync.Mutex
	calls  []*runtime.Call
	signal co.Signal
}

func NewCallPool(limit int) *CallPool {
	return &CallPool{limit: limit}
}

// Submit queues a call. Malformed calls are rejected before queuing.
func (p *CallPool) Submit(call *runtime.Call) error {
	if err := call.Validate(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.limit > 0 && len(p.calls) >= p.limit {
		return ErrCallPoolFull
	}
	p.calls = append(p.calls, call)
	metricCallPoolSize().Set(int64(len(p.calls)))
	p.signal.Signal()
	return nil
}

// Submitted fires after calls were queued.
func (p *CallPool) Submitted() <-chan struct{} {
	return p.signal.C()
}

// Drain returns the queued calls in submission order and empties the pool.
func (p *CallPool) Drain() []*runtime.Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	calls := p.calls
	p.calls = nil
	metricCallPoolSize().Set(0)
	return calls
}

func (p *CallPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}
