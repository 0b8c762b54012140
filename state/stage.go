// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"sort"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/canbus-network/canbus/canbus"
	"github.com/canbus-network/canbus/kv"
)

type change struct {
	key []byte
	raw rlp.RawValue
}

// Stage holds the net storage changes of a state, ordered by key.
type Stage struct {
	changes []change
}

func newStage(m map[storageKey]rlp.RawValue) *Stage {
	changes := make([]change, 0, len(m))
	for k, v := range m {
		changes = append(changes, change{k.dbKey(), v})
	}
	sort.Slice(changes, func(i, j int) bool {
		return bytes.Compare(changes[i].key, changes[j].key) < 0
	})
	return &Stage{changes}
}

// Len returns the number of changed entries.
func (s *Stage) Len() int {
	return len(s.changes)
}

// Hash computes a digest of the changes, identical for identical change sets.
func (s *Stage) Hash() canbus.Bytes32 {
	data := make([][]byte, 0, len(s.changes)*2)
	for _, c := range s.changes {
		data = append(data, c.key, c.raw)
	}
	if len(data) == 0 {
		return canbus.Bytes32{}
	}
	return canbus.Blake2b(data...)
}

// Commit writes the changes into the putter, typically a kv.Bulk.
func (s *Stage) Commit(putter kv.Putter) error {
	p := StorageBucket.NewPutter(putter)
	for _, c := range s.changes {
		var err error
		if len(c.raw) == 0 {
			err = p.Delete(c.key)
		} else {
			err = p.Put(c.key, c.raw)
		}
		if err != nil {
			return &Error{err}
		}
	}
	return nil
}
