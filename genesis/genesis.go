// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis describes the initial state applied as block 0.
package genesis

import (
	"bytes"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/canbus-network/canbus/canbus"
	"github.com/canbus-network/canbus/runtime"
)

// Account endows an address with an asset balance.
type Account struct {
	Address canbus.Address        `yaml:"address"`
	Asset   canbus.AssetID        `yaml:"asset"`
	Balance *math.HexOrDecimal256 `yaml:"balance"`
}

// Pool is a stable staking pool created at genesis.
type Pool struct {
	ID          canbus.PoolID       `yaml:"id"`
	Setting     runtime.PoolSetting `yaml:"setting"`
	Name        string              `yaml:"name,omitempty"`
	Description string              `yaml:"description,omitempty"`
}

// Genesis is the initial state of a network.
type Genesis struct {
	Name        string           `yaml:"name"`
	Committee   []canbus.Address `yaml:"committee"`
	RewardAsset *canbus.AssetID  `yaml:"rewardAsset,omitempty"`
	Accounts    []Account        `yaml:"accounts,omitempty"`
	Pools       []Pool           `yaml:"pools,omitempty"`
}

// Load reads the genesis file at path.
func Load(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis file")
	}
	gen, err := Parse(data)
	if err != nil {
		return nil, errors.WithMessage(err, path)
	}
	return gen, nil
}

// Parse decodes and validates a YAML genesis. Unknown fields are rejected.
func Parse(data []byte) (*Genesis, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var gen Genesis
	if err := dec.Decode(&gen); err != nil {
		return nil, errors.Wrap(err, "decode genesis")
	}
	if err := gen.Validate(); err != nil {
		return nil, err
	}
	return &gen, nil
}

// Validate checks the genesis can be applied.
func (g *Genesis) Validate() error {
	if len(g.Committee) == 0 {
		return errors.New("committee must not be empty")
	}
	for i, acc := range g.Accounts {
		if acc.Balance == nil {
			return errors.Errorf("accounts[%d]: balance required", i)
		}
		if (*big.Int)(acc.Balance).Sign() < 0 {
			return errors.Errorf("accounts[%d]: negative balance", i)
		}
	}
	if len(g.Pools) > 0 && g.RewardAsset == nil {
		return errors.New("pools require a reward asset")
	}
	seen := make(map[canbus.PoolID]bool, len(g.Pools))
	for _, p := range g.Pools {
		if seen[p.ID] {
			return errors.Errorf("pool %v: duplicated", p.ID)
		}
		seen[p.ID] = true
	}
	return nil
}

// ID returns the hash of the canonical encoding.
func (g *Genesis) ID() (canbus.Bytes32, error) {
	data, err := yaml.Marshal(g)
	if err != nil {
		return canbus.Bytes32{}, errors.Wrap(err, "encode genesis")
	}
	return canbus.Blake2b(data), nil
}

// Build applies the genesis to rt. The first committee member acts as origin
// of the privileged operations.
func (g *Genesis) Build(rt *runtime.Runtime) error {
	if err := g.Validate(); err != nil {
		return err
	}
	for _, member := range g.Committee {
		if err := rt.Committee().Add(member); err != nil {
			return errors.WithMessagef(err, "add committee member %v", member)
		}
	}
	executor := g.Committee[0]

	for _, acc := range g.Accounts {
		if _, err := rt.Assets().MintInto(acc.Asset, acc.Address, (*big.Int)(acc.Balance)); err != nil {
			return errors.WithMessagef(err, "endow %v", acc.Address)
		}
	}

	staking := rt.Staking()
	if g.RewardAsset != nil {
		if err := staking.RegisterRewardAsset(executor, *g.RewardAsset); err != nil {
			return errors.WithMessage(err, "register reward asset")
		}
	}
	for _, p := range g.Pools {
		if err := staking.CreatePool(executor, p.ID, p.Setting.ToSetting()); err != nil {
			return errors.WithMessagef(err, "create pool %v", p.ID)
		}
		if p.Name == "" {
			continue
		}
		if err := staking.SetMetadata(executor, p.ID, p.Name, p.Description); err != nil {
			return errors.WithMessagef(err, "set metadata of pool %v", p.ID)
		}
	}
	return nil
}
