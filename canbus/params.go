// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package canbus

import "math/big"

const (
	// NativeAsset is the chain's native token.
	NativeAsset AssetID = 0

	// PoolStringLimit bounds pool name and description, in bytes.
	PoolStringLimit = 100

	// StableRewardPalletID owns stable principal and stable rewards.
	StableRewardPalletID = "can/stpl"
	// NativeRewardPalletID accumulates native rewards for stable stakers.
	NativeRewardPalletID = "can/hlvm"
)

var (
	// MaxBalance is the largest representable amount, 2^128-1.
	MaxBalance = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

	StableRewardAccount = AccountFromPalletID(StableRewardPalletID)
	NativeRewardAccount = AccountFromPalletID(NativeRewardPalletID)
)

// AccountFromPalletID derives the address of a module owned account.
func AccountFromPalletID(id string) Address {
	return BytesToAddress(append([]byte("modl"), id...))
}
