// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/canbus-network/canbus/api/utils"
	"github.com/canbus-network/canbus/builtin/stablestaking/pool"
	"github.com/canbus-network/canbus/cache"
	"github.com/canbus-network/canbus/canbus"
	"github.com/canbus-network/canbus/node"
	"github.com/canbus-network/canbus/runtime"
)

const (
	defaultPendingLimit = 100
	maxPendingLimit     = 1000
)

type Staking struct {
	node     *node.Node
	settings *cache.LRU[canbus.PoolID, *pool.Setting]
}

func New(n *node.Node) *Staking {
	// pool settings never change once created
	settings, _ := cache.NewLRU[canbus.PoolID, *pool.Setting](256)
	return &Staking{n, settings}
}

func (s *Staking) setting(id canbus.PoolID) (*pool.Setting, error) {
	setting, err := s.settings.GetOrLoad(id, func(id canbus.PoolID) (setting *pool.Setting, err error) {
		err = s.node.View(func(rt *runtime.Runtime) error {
			setting, err = rt.Staking().Pool(id)
			return err
		})
		return
	}, func(setting *pool.Setting) bool { return setting != nil })
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return nil, utils.NotFound(errors.Errorf("pool %v not found", id))
	}
	return setting, nil
}

func parsePoolID(req *http.Request) (canbus.PoolID, error) {
	id, err := utils.ParseUint("id", mux.Vars(req)["id"], 64)
	return canbus.PoolID(id), err
}

func (s *Staking) handleGetStatus(w http.ResponseWriter, _ *http.Request) error {
	var status Status
	err := s.node.View(func(rt *runtime.Runtime) error {
		staking := rt.Staking()
		status.Head = rt.BlockNumber()
		status.StableRewardAccount = staking.StableRewardAccount()
		status.NativeRewardAccount = staking.NativeRewardAccount()

		asset, ok, err := staking.RewardAsset()
		if err != nil {
			return err
		}
		if ok {
			status.RewardAsset = &asset
		}
		if status.PendingCount, err = staking.PendingCount(); err != nil {
			return err
		}
		native, err := staking.NativeCheckpoint()
		if err != nil {
			return err
		}
		status.Native = convertCheckpoint(native)

		reward, err := rt.Assets().BalanceOf(canbus.NativeAsset, status.NativeRewardAccount)
		if err != nil {
			return err
		}
		status.NativeReward = hexOrDecimal(reward)
		return nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &status)
}

func (s *Staking) handleGetPool(w http.ResponseWriter, req *http.Request) error {
	id, err := parsePoolID(req)
	if err != nil {
		return err
	}
	setting, err := s.setting(id)
	if err != nil {
		return err
	}

	p := convertSetting(id, setting)
	if p.EndTime, err = setting.EndTime(); err != nil {
		return err
	}
	err = s.node.View(func(rt *runtime.Runtime) error {
		staking := rt.Staking()
		epoch, err := setting.EpochIndex(rt.BlockNumber())
		if err != nil {
			return err
		}
		p.CurrentEpoch = epoch

		status, err := staking.PoolStatus(id)
		if err != nil {
			return err
		}
		p.Status = status.String()

		meta, err := staking.PoolMetadata(id)
		if err != nil {
			return err
		}
		if meta != nil {
			p.Name, p.Description = meta.Name, meta.Description
		}
		unclaimed, err := staking.UnclaimedReward(id)
		if err != nil {
			return err
		}
		p.Unclaimed = hexOrDecimal(unclaimed)

		staked, err := staking.StableCheckpoint(id)
		if err != nil {
			return err
		}
		p.Staked = convertCheckpoint(staked)
		return nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, p)
}

func (s *Staking) handleGetEpochReward(w http.ResponseWriter, req *http.Request) error {
	id, err := parsePoolID(req)
	if err != nil {
		return err
	}
	epoch, err := utils.ParseUint("epoch", mux.Vars(req)["epoch"], 64)
	if err != nil {
		return err
	}
	setting, err := s.setting(id)
	if err != nil {
		return err
	}
	if epoch > setting.EpochCount {
		return utils.NotFound(errors.Errorf("epoch %d not exists", epoch))
	}

	reward := &EpochReward{PoolID: id, Epoch: epoch}
	if reward.BeginTime, err = setting.EpochBeginTime(epoch); err != nil {
		return err
	}
	err = s.node.View(func(rt *runtime.Runtime) error {
		info, err := rt.Staking().EpochReward(id, epoch)
		if err != nil {
			return err
		}
		if info != nil {
			reward.Amount = hexOrDecimal(info.Amount)
		} else {
			reward.Amount = hexOrDecimal(nil)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, reward)
}

func (s *Staking) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.ParseAddress("address", mux.Vars(req)["address"])
	if err != nil {
		return err
	}
	var poolID *canbus.PoolID
	if q := req.URL.Query().Get("pool"); q != "" {
		id, err := utils.ParseUint("pool", q, 64)
		if err != nil {
			return err
		}
		pid := canbus.PoolID(id)
		poolID = &pid
	}

	acc := &Account{Address: addr}
	err = s.node.View(func(rt *runtime.Runtime) error {
		native, err := rt.Staking().UserNativeCheckpoint(addr)
		if err != nil {
			return err
		}
		acc.Native = convertCheckpoint(native)
		if poolID == nil {
			return nil
		}
		stable, err := rt.Staking().UserStableCheckpoint(addr, *poolID)
		if err != nil {
			return err
		}
		acc.Stable = convertCheckpoint(stable)
		return nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, acc)
}

func (s *Staking) handleGetPending(w http.ResponseWriter, req *http.Request) error {
	limit := uint64(defaultPendingLimit)
	if q := req.URL.Query().Get("limit"); q != "" {
		var err error
		if limit, err = utils.ParseUint("limit", q, 32); err != nil {
			return err
		}
		if limit > maxPendingLimit {
			return utils.Forbidden(errors.Errorf("limit exceeds the maximum allowed value of %d", maxPendingLimit))
		}
	}

	entries := make([]*PendingEntry, 0)
	err := s.node.View(func(rt *runtime.Runtime) error {
		list, err := rt.Staking().PendingEntries(int(limit))
		if err != nil {
			return err
		}
		for _, e := range list {
			entries = append(entries, convertPending(e))
		}
		return nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, entries)
}

func (s *Staking) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/status").
		Methods(http.MethodGet).
		Name("GET /staking/status").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetStatus))
	sub.Path("/pools/{id}").
		Methods(http.MethodGet).
		Name("GET /staking/pools/{id}").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetPool))
	sub.Path("/pools/{id}/epochs/{epoch}").
		Methods(http.MethodGet).
		Name("GET /staking/pools/{id}/epochs/{epoch}").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetEpochReward))
	sub.Path("/accounts/{address}").
		Methods(http.MethodGet).
		Name("GET /staking/accounts/{address}").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetAccount))
	sub.Path("/pending").
		Methods(http.MethodGet).
		Name("GET /staking/pending").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetPending))
}
