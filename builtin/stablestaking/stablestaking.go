// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package stablestaking distributes stable and native rewards to stakers of time-boxed pools.
//
// A stake counts towards native rewards from the block it is made, and towards the pool's
// stable rewards from the start of the first epoch after its setup period. Rewards are
// split by weight, the integral of staked amount over time, tracked with merged checkpoints.
package stablestaking

import (
	"math/big"

	"github.com/canbus-network/canbus/builtin/solidity"
	"github.com/canbus-network/canbus/builtin/stablestaking/ledger"
	"github.com/canbus-network/canbus/builtin/stablestaking/pending"
	"github.com/canbus-network/canbus/builtin/stablestaking/pool"
	"github.com/canbus-network/canbus/canbus"
	"github.com/canbus-network/canbus/log"
	"github.com/canbus-network/canbus/state"
)

var logger = log.WithContext("pkg", "stablestaking")

// Clock reports the number of the block being executed.
type Clock interface {
	BlockNumber() uint32
}

// Fungibles is the asset ledger rewards and principals move through.
type Fungibles interface {
	BalanceOf(asset canbus.AssetID, who canbus.Address) (*big.Int, error)
	MintInto(asset canbus.AssetID, who canbus.Address, amount *big.Int) (*big.Int, error)
	Transfer(asset canbus.AssetID, from, to canbus.Address, amount *big.Int) error
}

// Authority gates privileged operations.
type Authority interface {
	EnsurePrivileged(origin canbus.Address) error
}

// EventSink receives the events of successful operations.
type EventSink interface {
	Emit(Event)
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(Event)

func (f EventSinkFunc) Emit(ev Event) { f(ev) }

// StableStaking implements the staking pools.
type StableStaking struct {
	state     *state.State
	clock     Clock
	assets    Fungibles
	authority Authority
	sink      EventSink

	stableAccount canbus.Address
	nativeAccount canbus.Address

	poolService   *pool.Service
	ledgerService *ledger.Service
	pendingQueue  *pending.Queue
}

// New create a new instance storing its data under addr.
func New(addr canbus.Address, st *state.State, clock Clock, assets Fungibles, authority Authority, sink EventSink) *StableStaking {
	sctx := solidity.NewContext(addr, st)
	if sink == nil {
		sink = EventSinkFunc(func(Event) {})
	}
	return &StableStaking{
		state:     st,
		clock:     clock,
		assets:    assets,
		authority: authority,
		sink:      sink,

		stableAccount: canbus.StableRewardAccount,
		nativeAccount: canbus.NativeRewardAccount,

		poolService:   pool.New(sctx),
		ledgerService: ledger.New(sctx),
		pendingQueue:  pending.New(sctx),
	}
}

// StableRewardAccount holds stable principals and unclaimed stable rewards.
func (s *StableStaking) StableRewardAccount() canbus.Address {
	return s.stableAccount
}

// NativeRewardAccount holds the native rewards to distribute.
func (s *StableStaking) NativeRewardAccount() canbus.Address {
	return s.nativeAccount
}

// atomic runs fn in a state checkpoint. Events are delivered only when fn succeeds.
func (s *StableStaking) atomic(fn func(emit func(Event)) error) error {
	revision := s.state.NewCheckpoint()
	var events []Event
	if err := fn(func(ev Event) { events = append(events, ev) }); err != nil {
		s.state.RevertTo(revision)
		return err
	}
	for _, ev := range events {
		s.sink.Emit(ev)
	}
	return nil
}
