// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canbus-network/canbus/canbus"
	"github.com/canbus-network/canbus/lvldb"
)

func TestStateStorage(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	st := New(db)
	addr := canbus.BytesToAddress([]byte("contract"))
	key := canbus.BytesToBytes32([]byte("slot"))

	raw, err := st.GetRawStorage(addr, key)
	require.NoError(t, err)
	assert.Empty(t, raw)

	require.NoError(t, st.EncodeStorage(addr, key, func() ([]byte, error) {
		return rlp.EncodeToBytes(uint64(42))
	}))

	var v uint64
	require.NoError(t, st.DecodeStorage(addr, key, func(b []byte) error {
		return rlp.DecodeBytes(b, &v)
	}))
	assert.Equal(t, uint64(42), v)

	encErr := errors.New("bad")
	err = st.EncodeStorage(addr, key, func() ([]byte, error) { return nil, encErr })
	assert.ErrorIs(t, err, encErr)
}

func TestStateCheckpoint(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	st := New(db)
	addr := canbus.BytesToAddress([]byte("contract"))
	key := canbus.BytesToBytes32([]byte("slot"))

	st.SetRawStorage(addr, key, []byte{0x01})
	rev := st.NewCheckpoint()
	st.SetRawStorage(addr, key, []byte{0x02})

	raw, err := st.GetRawStorage(addr, key)
	require.NoError(t, err)
	assert.Equal(t, rlp.RawValue{0x02}, raw)

	st.RevertTo(rev)
	raw, err = st.GetRawStorage(addr, key)
	require.NoError(t, err)
	assert.Equal(t, rlp.RawValue{0x01}, raw)
}

func TestStageCommit(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	addr := canbus.BytesToAddress([]byte("contract"))
	k1 := canbus.BytesToBytes32([]byte("k1"))
	k2 := canbus.BytesToBytes32([]byte("k2"))

	st := New(db)
	st.SetRawStorage(addr, k1, []byte{0x01})
	st.SetRawStorage(addr, k2, []byte{0x02})
	st.SetRawStorage(addr, k2, []byte{0x03})

	stage := st.Stage()
	assert.Equal(t, 2, stage.Len())
	assert.False(t, stage.Hash().IsZero())

	bulk := db.Bulk()
	require.NoError(t, stage.Commit(bulk))
	require.NoError(t, bulk.Write())

	// a fresh state sees committed values, deletes are committed as removals
	st = New(db)
	raw, err := st.GetRawStorage(addr, k2)
	require.NoError(t, err)
	assert.Equal(t, rlp.RawValue{0x03}, raw)

	st.SetRawStorage(addr, k1, nil)
	bulk = db.Bulk()
	require.NoError(t, st.Stage().Commit(bulk))
	require.NoError(t, bulk.Write())

	has, err := db.Has(append([]byte(StorageBucket), append(addr.Bytes(), k1.Bytes()...)...))
	require.NoError(t, err)
	assert.False(t, has)
}

func TestStageHashDeterministic(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	addr := canbus.BytesToAddress([]byte("contract"))
	build := func(order []string) canbus.Bytes32 {
		st := New(db)
		for _, k := range order {
			st.SetRawStorage(addr, canbus.BytesToBytes32([]byte(k)), []byte(k))
		}
		return st.Stage().Hash()
	}
	assert.Equal(t, build([]string{"a", "b", "c"}), build([]string{"c", "a", "b"}))
	assert.Equal(t, canbus.Bytes32{}, New(db).Stage().Hash())
}
