// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	base "github.com/canbus-network/canbus/builtin/reverts"
)

const module = "stablestaking"

var (
	ErrPoolNotFound             = base.New(module, "pool not found")
	ErrPoolAlreadyExists        = base.New(module, "pool already exists")
	ErrPoolAlreadyStarted       = base.New(module, "pool already started")
	ErrPoolNotStarted           = base.New(module, "pool not started")
	ErrPoolAlreadyEnded         = base.New(module, "pool already ended")
	ErrPoolNotEnded             = base.New(module, "pool not ended")
	ErrInvalidPoolSetting       = base.New(module, "invalid pool setting")
	ErrBadMetadata              = base.New(module, "metadata too long")
	ErrEpochNotExists           = base.New(module, "epoch does not exist")
	ErrEpochAlreadyEnded        = base.New(module, "epoch already ended")
	ErrRewardAlreadyRegistered  = base.New(module, "epoch reward already registered")
	ErrRewardAssetNotRegistered = base.New(module, "reward asset not registered")
	ErrInvalidAmount            = base.New(module, "amount must be positive")
	ErrCannotClaimFuture        = base.New(module, "cannot claim future")
	ErrClaimBeforeLastAdd       = base.New(module, "claim time before last stake")
	ErrArithmeticOverflow       = base.New(module, "arithmetic overflow")
)
