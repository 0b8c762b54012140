// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/canbus-network/canbus/canbus"
)

type Key interface {
	Bytes() []byte
}

// Mapping is a key/value storage abstraction for built-in contracts, similar to the mapping in Solidity.
// Values are RLP encoded and stored at blake2b(key, pos).
type Mapping[K Key, V any] struct {
	context *Context
	basePos canbus.Bytes32
}

func NewMapping[K Key, V any](context *Context, pos canbus.Bytes32) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, basePos: pos}
}

func (m *Mapping[K, V]) position(key K) canbus.Bytes32 {
	return canbus.Blake2b(key.Bytes(), m.basePos.Bytes())
}

// Lookup returns the value and whether it is present.
func (m *Mapping[K, V]) Lookup(key K) (value V, found bool, err error) {
	err = m.context.state.DecodeStorage(m.context.address, m.position(key), func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		found = true
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

// Get returns the value, or the zero value when absent.
// For pointer types the zero value is a pointer to a freshly allocated zero struct.
func (m *Mapping[K, V]) Get(key K) (V, error) {
	value, found, err := m.Lookup(key)
	if err != nil || found {
		return value, err
	}
	if t := reflect.TypeOf(value); t != nil && t.Kind() == reflect.Ptr {
		value = reflect.New(t.Elem()).Interface().(V)
	}
	return value, nil
}

// Set stores the value under key.
func (m *Mapping[K, V]) Set(key K, value V) error {
	return m.context.state.EncodeStorage(m.context.address, m.position(key), func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}

// Delete removes the value stored under key.
func (m *Mapping[K, V]) Delete(key K) {
	m.context.state.SetRawStorage(m.context.address, m.position(key), nil)
}
