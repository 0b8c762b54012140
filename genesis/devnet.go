// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"crypto/ecdsa"
	"math/big"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/canbus-network/canbus/canbus"
	"github.com/canbus-network/canbus/runtime"
)

// DevRewardAsset is the stable asset of the devnet.
const DevRewardAsset canbus.AssetID = 1

// DevAccount account for development.
type DevAccount struct {
	Address    canbus.Address
	PrivateKey *ecdsa.PrivateKey
}

var devAccounts atomic.Value

// DevAccounts returns pre-alloced accounts for solo mode.
func DevAccounts() []DevAccount {
	if accs := devAccounts.Load(); accs != nil {
		return accs.([]DevAccount)
	}

	var accs []DevAccount
	privKeys := []string{
		"dce1443bd2ef0c2631adc1c67e5c93f13dc23a41c18b536effbbdcbcdb96fb65",
		"321d6443bc6177273b5abf54210fe806d451d6b7973bccc2384ef78bbcd0bf51",
		"2d7c882bad2a01105e36dda3646693bc1aaaa45b0ed63fb0ce23c060294f3af2",
		"593537225b037191d322c3b1df585fb1e5100811b71a6f7fc7e29cca1333483e",
		"ca7b25fc980c759df5f3ce17a3d881d6e19a38e651fc4315fc08917edab41058",
	}
	for _, str := range privKeys {
		pk, err := crypto.HexToECDSA(str)
		if err != nil {
			panic(err)
		}
		accs = append(accs, DevAccount{canbus.Address(crypto.PubkeyToAddress(pk.PublicKey)), pk})
	}
	devAccounts.Store(accs)
	return accs
}

// NewDevnet create genesis for solo mode. The first dev account is the only
// committee member, every dev account holds native and stable balance, and
// pool 1 starts at block 10 with ten epochs of 100 blocks.
func NewDevnet() *Genesis {
	bal, _ := new(big.Int).SetString("1000000000000000000000000", 10)
	rewardAsset := DevRewardAsset

	gen := &Genesis{
		Name:        "devnet",
		Committee:   []canbus.Address{DevAccounts()[0].Address},
		RewardAsset: &rewardAsset,
	}
	for _, a := range DevAccounts() {
		gen.Accounts = append(gen.Accounts,
			Account{Address: a.Address, Asset: canbus.NativeAsset, Balance: (*math.HexOrDecimal256)(bal)},
			Account{Address: a.Address, Asset: DevRewardAsset, Balance: (*math.HexOrDecimal256)(bal)},
		)
	}
	gen.Accounts = append(gen.Accounts, Account{
		Address: canbus.NativeRewardAccount,
		Asset:   canbus.NativeAsset,
		Balance: (*math.HexOrDecimal256)(bal),
	})
	gen.Pools = []Pool{{
		ID: 1,
		Setting: runtime.PoolSetting{
			StartTime:  10,
			EpochCount: 10,
			EpochRange: 100,
			SetupTime:  20,
		},
		Name:        "devnet",
		Description: "solo mode stable pool",
	}}
	return gen
}
