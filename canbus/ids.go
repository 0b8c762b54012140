// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package canbus

import (
	"encoding/binary"
	"strconv"
)

// PoolID identifies a stable staking pool.
type PoolID uint64

// Bytes returns the big endian form, used as storage key.
func (id PoolID) Bytes() []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(id))
}

func (id PoolID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// AssetID identifies a fungible asset. The zero value is the native token.
type AssetID uint32

// Bytes returns the big endian form, used as storage key.
func (id AssetID) Bytes() []byte {
	return binary.BigEndian.AppendUint32(nil, uint32(id))
}

func (id AssetID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Epoch is the index of an epoch within a pool.
type Epoch uint64

// Bytes returns the big endian form, used as storage key.
func (e Epoch) Bytes() []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(e))
}
