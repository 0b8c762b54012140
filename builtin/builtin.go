// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/canbus-network/canbus/builtin/assets"
	"github.com/canbus-network/canbus/builtin/committee"
	"github.com/canbus-network/canbus/builtin/stablestaking"
	"github.com/canbus-network/canbus/state"
)

// Builtin contracts binding.
var (
	Assets        = &assetsContract{newContract("Assets")}
	Committee     = &committeeContract{newContract("Committee")}
	StableStaking = &stableStakingContract{newContract("StableStaking")}
)

type (
	assetsContract        struct{ *contract }
	committeeContract     struct{ *contract }
	stableStakingContract struct{ *contract }
)

func (a *assetsContract) Native(state *state.State) *assets.Assets {
	return assets.New(a.Address, state)
}

func (c *committeeContract) Native(state *state.State) *committee.Committee {
	return committee.New(c.Address, state)
}

// Native binds the staking pools to the builtin assets and committee of the same state.
func (s *stableStakingContract) Native(state *state.State, clock stablestaking.Clock, sink stablestaking.EventSink) *stablestaking.StableStaking {
	return stablestaking.New(
		s.Address,
		state,
		clock,
		Assets.Native(state),
		Committee.Native(state),
		sink,
	)
}
