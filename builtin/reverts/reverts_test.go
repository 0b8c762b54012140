// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestIsRevertErr(t *testing.T) {
	errA := New("assets", "insufficient balance")

	assert.False(t, IsRevertErr(nil))
	assert.False(t, IsRevertErr(errors.New("disk failure")))
	assert.True(t, IsRevertErr(errA))

	wrapped := pkgerrors.Wrap(errA, "transfer principal")
	assert.True(t, IsRevertErr(wrapped))
	assert.ErrorIs(t, wrapped, errA)
	assert.Equal(t, "transfer principal: assets: insufficient balance", wrapped.Error())

	reason, ok := Reason(wrapped)
	assert.True(t, ok)
	assert.Equal(t, "assets", reason.Module())
	assert.Equal(t, "insufficient balance", reason.Message())
}

func TestRevertIdentity(t *testing.T) {
	a := New("m", "same")
	b := New("m", "same")
	assert.NotErrorIs(t, a, b)
}
