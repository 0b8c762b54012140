// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"encoding/binary"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common/mclock"
	"github.com/ethereum/go-ethereum/event"
	"github.com/pkg/errors"

	"github.com/canbus-network/canbus/builtin/stablestaking"
	"github.com/canbus-network/canbus/canbus"
	"github.com/canbus-network/canbus/eventdb"
	"github.com/canbus-network/canbus/kv"
	"github.com/canbus-network/canbus/log"
	"github.com/canbus-network/canbus/runtime"
	"github.com/canbus-network/canbus/state"
)

var logger = log.WithContext("pkg", "node")

const metaBucket kv.Bucket = "m."

var headKey = []byte("head")

// Block is the outcome of processing one block.
type Block struct {
	Number     uint32                `json:"number"`
	StageHash  canbus.Bytes32        `json:"stageHash"`
	Changes    int                   `json:"changes"`
	HookEvents []stablestaking.Event `json:"hookEvents"`
	Receipts   []*runtime.Receipt    `json:"receipts"`
}

// Events returns the hook events followed by the events of successful calls.
func (b *Block) Events() []stablestaking.Event {
	events := append([]stablestaking.Event(nil), b.HookEvents...)
	for _, r := range b.Receipts {
		events = append(events, r.Events...)
	}
	return events
}

// Node applies blocks of calls to the persisted state.
type Node struct {
	db      kv.Store
	eventDB *eventdb.EventDB

	mu          sync.RWMutex
	initialized bool
	head        uint32

	blockFeed event.Feed
	scope     event.SubscriptionScope
}

// New opens a node over db. eventDB is optional.
func New(db kv.Store, eventDB *eventdb.EventDB) (*Node, error) {
	n := &Node{db: db, eventDB: eventDB}
	data, err := metaBucket.NewGetter(db).Get(headKey)
	if err != nil {
		if !db.IsNotFound(err) {
			return nil, errors.Wrap(err, "load head")
		}
		return n, nil
	}
	if len(data) != 4 {
		return nil, errors.New("corrupted head")
	}
	n.initialized = true
	n.head = binary.BigEndian.Uint32(data)
	return n, nil
}

// Head returns the number of the last processed block.
func (n *Node) Head() uint32 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.head
}

// Initialized reports whether genesis has been applied.
func (n *Node) Initialized() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.initialized
}

// InitGenesis applies build as block 0 unless the node is already initialized.
func (n *Node) InitGenesis(build func(rt *runtime.Runtime) error) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.initialized {
		return nil
	}
	st := state.New(n.db)
	rt := runtime.New(st, 0)
	if err := build(rt); err != nil {
		return errors.Wrap(err, "build genesis")
	}
	blk := &Block{Number: 0}
	if err := n.commit(st, blk); err != nil {
		return err
	}
	logger.Info("genesis initialized", "changes", blk.Changes, "hash", blk.StageHash)
	return nil
}

// ProcessBlock executes calls in block number. Blocks skipped since the head are
// processed empty first, so the block hook runs for every block.
func (n *Node) ProcessBlock(number uint32, calls []*runtime.Call) (*Block, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.initialized {
		return nil, errors.New("genesis not initialized")
	}
	if number <= n.head {
		return nil, errors.Errorf("block %d not after head %d", number, n.head)
	}
	for b := n.head + 1; b < number; b++ {
		if _, err := n.process(b, nil); err != nil {
			return nil, err
		}
	}
	return n.process(number, calls)
}

// ProduceBlock executes calls in the block following the head.
func (n *Node) ProduceBlock(calls []*runtime.Call) (*Block, error) {
	return n.ProcessBlock(n.Head()+1, calls)
}

func (n *Node) process(number uint32, calls []*runtime.Call) (*Block, error) {
	startTime := mclock.Now()

	st := state.New(n.db)
	rt := runtime.New(st, number)

	blk := &Block{Number: number}
	blk.HookEvents = rt.BeginBlock()
	for _, call := range calls {
		receipt, err := rt.Execute(call)
		if err != nil {
			return nil, errors.WithMessagef(err, "block %d", number)
		}
		blk.Receipts = append(blk.Receipts, receipt)
	}
	if err := n.commit(st, blk); err != nil {
		return nil, err
	}

	elapsed := time.Duration(mclock.Now() - startTime)
	metricBlockProcessedDuration().ObserveWithLabels(elapsed.Milliseconds(), map[string]string{"type": "processed"})
	metricBlockCalls().Add(int64(len(calls)))
	if len(calls) > 0 {
		logger.Info("processed block", "number", number, "calls", len(calls), "changes", blk.Changes, "elapsed", elapsed)
	} else {
		logger.Debug("processed block", "number", number, "changes", blk.Changes)
	}
	n.blockFeed.Send(blk)
	return blk, nil
}

// commit indexes the block events, then writes the state and head. A block is
// indexed again when it is processed after a failed write, replacing its rows.
func (n *Node) commit(st *state.State, blk *Block) error {
	stage := st.Stage()
	blk.StageHash = stage.Hash()
	blk.Changes = stage.Len()

	if n.eventDB != nil {
		batch := n.eventDB.Prepare(blk.Number)
		for _, ev := range blk.Events() {
			if err := batch.Add(ev); err != nil {
				return err
			}
		}
		if err := batch.Commit(); err != nil {
			return errors.Wrap(err, "index events")
		}
	}

	bulk := n.db.Bulk()
	if err := stage.Commit(bulk); err != nil {
		return err
	}
	if err := metaBucket.NewPutter(bulk).Put(headKey, binary.BigEndian.AppendUint32(nil, blk.Number)); err != nil {
		return err
	}
	if err := bulk.Write(); err != nil {
		return errors.Wrap(err, "commit block")
	}
	n.head = blk.Number
	n.initialized = true
	return nil
}

// View runs fn against the state at the head. Changes made by fn are discarded.
func (n *Node) View(fn func(rt *runtime.Runtime) error) error {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return fn(runtime.New(state.New(n.db), n.head))
}

// SubscribeBlock delivers every processed block to ch.
func (n *Node) SubscribeBlock(ch chan *Block) event.Subscription {
	return n.scope.Track(n.blockFeed.Subscribe(ch))
}

// Close unsubscribes all block subscribers.
func (n *Node) Close() {
	n.scope.Close()
}
