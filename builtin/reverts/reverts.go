// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reverts defines the business rejections raised by built-in contracts.
// A revert aborts the current call and rolls back its changes, but is not a node failure.
package reverts

import (
	"errors"
)

type ErrRevert struct {
	module  string
	message string
}

// New declares a revert of the given module. Reverts are compared by identity.
func New(module, message string) *ErrRevert {
	return &ErrRevert{
		module:  module,
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.module + ": " + e.message
}

// Module returns the name of the contract that declared the revert.
func (e *ErrRevert) Module() string {
	return e.module
}

// Message returns the revert reason without module prefix.
func (e *ErrRevert) Message() string {
	return e.message
}

// IsRevertErr reports whether any error in err's chain is a revert.
func IsRevertErr(err error) bool {
	if err == nil {
		return false
	}
	var ve *ErrRevert
	return errors.As(err, &ve)
}

// Reason extracts the revert from err's chain.
func Reason(err error) (*ErrRevert, bool) {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
