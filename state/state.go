// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/canbus-network/canbus/canbus"
	"github.com/canbus-network/canbus/kv"
	"github.com/canbus-network/canbus/stackedmap"
)

// StorageBucket prefixes every contract storage entry in the kv store.
const StorageBucket kv.Bucket = "s."

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

type storageKey struct {
	addr canbus.Address
	key  canbus.Bytes32
}

func (k storageKey) dbKey() []byte {
	return append(append(make([]byte, 0, canbus.AddressLength+32), k.addr[:]...), k.key[:]...)
}

// State manages contract storage on top of a kv store.
// Changes are kept in memory, revisioned by checkpoints, until staged and committed.
type State struct {
	db kv.Getter
	sm *stackedmap.StackedMap[storageKey, rlp.RawValue]
}

// New create state object reading committed storage from db.
func New(db kv.Getter) *State {
	getter := StorageBucket.NewGetter(db)
	s := &State{db: db}
	s.sm = stackedmap.New(func(k storageKey) (rlp.RawValue, bool, error) {
		raw, err := getter.Get(k.dbKey())
		if err != nil {
			if getter.IsNotFound(err) {
				return nil, true, nil
			}
			return nil, false, err
		}
		return raw, true, nil
	})
	s.sm.Push()
	return s
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr canbus.Address, key canbus.Bytes32) (rlp.RawValue, error) {
	raw, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return raw, nil
}

// SetRawStorage set storage value in rlp raw. An empty value deletes the entry.
func (s *State) SetRawStorage(addr canbus.Address, key canbus.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by enc will be absorbed by State instance.
func (s *State) EncodeStorage(addr canbus.Address, key canbus.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeStorage(addr canbus.Address, key canbus.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// Stage collects all changes since the state was created.
func (s *State) Stage() *Stage {
	changes := make(map[storageKey]rlp.RawValue)
	s.sm.Journal(func(k storageKey, v rlp.RawValue) bool {
		changes[k] = v
		return true
	})
	return newStage(changes)
}
