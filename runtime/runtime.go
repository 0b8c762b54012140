// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"github.com/pkg/errors"

	"github.com/canbus-network/canbus/builtin"
	"github.com/canbus-network/canbus/builtin/assets"
	"github.com/canbus-network/canbus/builtin/committee"
	"github.com/canbus-network/canbus/builtin/reverts"
	"github.com/canbus-network/canbus/builtin/stablestaking"
	"github.com/canbus-network/canbus/log"
	"github.com/canbus-network/canbus/state"
)

var logger = log.WithContext("pkg", "runtime")

// Runtime executes the calls of one block.
type Runtime struct {
	state       *state.State
	blockNumber uint32

	assets    *assets.Assets
	committee *committee.Committee
	staking   *stablestaking.StableStaking

	// events emitted by the running call
	events []stablestaking.Event
}

// New create a Runtime object for the block.
func New(state *state.State, blockNumber uint32) *Runtime {
	rt := &Runtime{
		state:       state,
		blockNumber: blockNumber,
		assets:      builtin.Assets.Native(state),
		committee:   builtin.Committee.Native(state),
	}
	rt.staking = builtin.StableStaking.Native(state, rt, stablestaking.EventSinkFunc(func(ev stablestaking.Event) {
		rt.events = append(rt.events, ev)
	}))
	return rt
}

func (rt *Runtime) State() *state.State                   { return rt.state }
func (rt *Runtime) BlockNumber() uint32                   { return rt.blockNumber }
func (rt *Runtime) Assets() *assets.Assets                { return rt.assets }
func (rt *Runtime) Committee() *committee.Committee       { return rt.committee }
func (rt *Runtime) Staking() *stablestaking.StableStaking { return rt.staking }

func (rt *Runtime) takeEvents() []stablestaking.Event {
	events := rt.events
	rt.events = nil
	return events
}

// BeginBlock runs the block hook ahead of any call and returns its events.
func (rt *Runtime) BeginBlock() []stablestaking.Event {
	solved := rt.staking.OnInitialize()
	if solved > 0 {
		metricPendingSolved().Add(int64(solved))
		logger.Debug("pending stakes solved", "block", rt.blockNumber, "count", solved)
	}
	if n, err := rt.staking.PendingCount(); err == nil {
		metricPendingSize().Set(int64(n))
	}
	return rt.takeEvents()
}

// Execute runs a call atomically. A rejected call yields a reverted receipt,
// the returned error is kept for failures of the underlying storage.
func (rt *Runtime) Execute(call *Call) (*Receipt, error) {
	receipt := &Receipt{Method: call.Method, Origin: call.Origin}

	checkpoint := rt.state.NewCheckpoint()
	err := call.Validate()
	if err == nil {
		err = rt.dispatch(call)
	}
	events := rt.takeEvents()

	if err != nil {
		rt.state.RevertTo(checkpoint)
		if !reverts.IsRevertErr(err) {
			metricCallCount().AddWithLabel(1, map[string]string{"method": string(call.Method), "result": "error"})
			return nil, errors.Wrapf(err, "execute %s", call.Method)
		}
		receipt.Reverted = true
		receipt.Reason = err.Error()
		metricCallCount().AddWithLabel(1, map[string]string{"method": string(call.Method), "result": "reverted"})
		logger.Debug("call reverted", "block", rt.blockNumber, "method", call.Method, "origin", call.Origin, "reason", receipt.Reason)
		return receipt, nil
	}

	receipt.Events = events
	metricCallCount().AddWithLabel(1, map[string]string{"method": string(call.Method), "result": "ok"})
	return receipt, nil
}
