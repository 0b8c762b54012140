// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package committee

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canbus-network/canbus/canbus"
	"github.com/canbus-network/canbus/lvldb"
	"github.com/canbus-network/canbus/state"
)

func newCommittee(t *testing.T) *Committee {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(canbus.BytesToAddress([]byte("Committee")), state.New(db))
}

func TestCommittee(t *testing.T) {
	c := newCommittee(t)
	m1 := canbus.BytesToAddress([]byte("m1"))
	m2 := canbus.BytesToAddress([]byte("m2"))
	m3 := canbus.BytesToAddress([]byte("m3"))
	outsider := canbus.BytesToAddress([]byte("outsider"))

	members, err := c.Members()
	require.NoError(t, err)
	assert.Empty(t, members)
	assert.ErrorIs(t, c.EnsurePrivileged(m1), ErrUnauthorized)

	for _, m := range []canbus.Address{m1, m2, m3} {
		require.NoError(t, c.Add(m))
	}
	assert.ErrorIs(t, c.Add(m2), ErrAlreadyMember)

	members, err = c.Members()
	require.NoError(t, err)
	assert.Equal(t, []canbus.Address{m1, m2, m3}, members)

	require.NoError(t, c.EnsurePrivileged(m2))
	assert.ErrorIs(t, c.EnsurePrivileged(outsider), ErrUnauthorized)

	tests := []struct {
		remove canbus.Address
		want   []canbus.Address
	}{
		{m2, []canbus.Address{m1, m3}},
		{m1, []canbus.Address{m3}},
	}
	for _, tt := range tests {
		require.NoError(t, c.Remove(tt.remove))
		members, err = c.Members()
		require.NoError(t, err)
		assert.Equal(t, tt.want, members)
	}

	assert.ErrorIs(t, c.Remove(m3), ErrLastMember)
	assert.ErrorIs(t, c.Remove(outsider), ErrNotMember)

	n, err := c.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)
}

func TestCommitteeRemoveTail(t *testing.T) {
	c := newCommittee(t)
	m1 := canbus.BytesToAddress([]byte("m1"))
	m2 := canbus.BytesToAddress([]byte("m2"))
	m4 := canbus.BytesToAddress([]byte("m4"))
	require.NoError(t, c.Add(m1))
	require.NoError(t, c.Add(m2))

	require.NoError(t, c.Remove(m2))
	require.NoError(t, c.Add(m4))

	members, err := c.Members()
	require.NoError(t, err)
	assert.Equal(t, []canbus.Address{m1, m4}, members)
}
