// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package assets implements the fungible asset ledger: balances per (asset, account) and supply per asset.
package assets

import (
	"math/big"

	"github.com/canbus-network/canbus/builtin/reverts"
	"github.com/canbus-network/canbus/builtin/solidity"
	"github.com/canbus-network/canbus/canbus"
	"github.com/canbus-network/canbus/state"
)

var (
	ErrInsufficientBalance = reverts.New("assets", "insufficient balance")
	ErrBalanceOverflow     = reverts.New("assets", "balance overflow")
	ErrNegativeAmount      = reverts.New("assets", "negative amount")

	slotBalances = canbus.BytesToBytes32([]byte("assets-balances"))
	slotSupplies = canbus.BytesToBytes32([]byte("assets-supplies"))
)

type accountKey struct {
	asset canbus.AssetID
	who   canbus.Address
}

func (k accountKey) Bytes() []byte {
	return append(k.asset.Bytes(), k.who.Bytes()...)
}

// Assets implements native methods of the asset ledger.
type Assets struct {
	balances *solidity.Mapping[accountKey, *big.Int]
	supplies *solidity.Mapping[canbus.AssetID, *big.Int]
}

// New create a new instance.
func New(addr canbus.Address, state *state.State) *Assets {
	sctx := solidity.NewContext(addr, state)
	return &Assets{
		balances: solidity.NewMapping[accountKey, *big.Int](sctx, slotBalances),
		supplies: solidity.NewMapping[canbus.AssetID, *big.Int](sctx, slotSupplies),
	}
}

// BalanceOf returns the balance of who in asset.
func (a *Assets) BalanceOf(asset canbus.AssetID, who canbus.Address) (*big.Int, error) {
	return a.balances.Get(accountKey{asset, who})
}

// TotalSupply returns the amount of asset in existence.
func (a *Assets) TotalSupply(asset canbus.AssetID) (*big.Int, error) {
	return a.supplies.Get(asset)
}

func (a *Assets) setBalance(asset canbus.AssetID, who canbus.Address, balance *big.Int) error {
	key := accountKey{asset, who}
	if balance.Sign() == 0 {
		a.balances.Delete(key)
		return nil
	}
	return a.balances.Set(key, balance)
}

func (a *Assets) addSupply(asset canbus.AssetID, delta *big.Int) error {
	supply, err := a.supplies.Get(asset)
	if err != nil {
		return err
	}
	supply.Add(supply, delta)
	if supply.Cmp(canbus.MaxBalance) > 0 {
		return ErrBalanceOverflow
	}
	return a.supplies.Set(asset, supply)
}

// MintInto creates amount of asset in the account of who.
// It returns the amount actually minted.
func (a *Assets) MintInto(asset canbus.AssetID, who canbus.Address, amount *big.Int) (*big.Int, error) {
	if amount.Sign() < 0 {
		return nil, ErrNegativeAmount
	}
	balance, err := a.BalanceOf(asset, who)
	if err != nil {
		return nil, err
	}
	balance.Add(balance, amount)
	if balance.Cmp(canbus.MaxBalance) > 0 {
		return nil, ErrBalanceOverflow
	}
	if err := a.addSupply(asset, amount); err != nil {
		return nil, err
	}
	if err := a.setBalance(asset, who, balance); err != nil {
		return nil, err
	}
	return new(big.Int).Set(amount), nil
}

// Burn destroys amount of asset held by who.
func (a *Assets) Burn(asset canbus.AssetID, who canbus.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	balance, err := a.BalanceOf(asset, who)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	if err := a.addSupply(asset, new(big.Int).Neg(amount)); err != nil {
		return err
	}
	return a.setBalance(asset, who, balance.Sub(balance, amount))
}

// Transfer moves amount of asset from one account to another.
func (a *Assets) Transfer(asset canbus.AssetID, from, to canbus.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	fromBalance, err := a.BalanceOf(asset, from)
	if err != nil {
		return err
	}
	if fromBalance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	if from == to || amount.Sign() == 0 {
		return nil
	}
	toBalance, err := a.BalanceOf(asset, to)
	if err != nil {
		return err
	}
	toBalance.Add(toBalance, amount)
	if toBalance.Cmp(canbus.MaxBalance) > 0 {
		return ErrBalanceOverflow
	}
	if err := a.setBalance(asset, from, fromBalance.Sub(fromBalance, amount)); err != nil {
		return err
	}
	return a.setBalance(asset, to, toBalance)
}
