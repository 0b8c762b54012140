// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canbus-network/canbus/api"
	"github.com/canbus-network/canbus/api/events"
	apinode "github.com/canbus-network/canbus/api/node"
	"github.com/canbus-network/canbus/api/staking"
	"github.com/canbus-network/canbus/api/subscriptions"
	"github.com/canbus-network/canbus/canbus"
	"github.com/canbus-network/canbus/eventdb"
	"github.com/canbus-network/canbus/genesis"
	"github.com/canbus-network/canbus/lvldb"
	"github.com/canbus-network/canbus/node"
	"github.com/canbus-network/canbus/runtime"
)

var (
	admin = canbus.BytesToAddress([]byte("admin"))
	alice = canbus.BytesToAddress([]byte("alice"))
)

func balance(v int64) *math.HexOrDecimal256 {
	return (*math.HexOrDecimal256)(big.NewInt(v))
}

type testServer struct {
	*httptest.Server
	node *node.Node
	pool *node.CallPool
}

func newTestServer(t *testing.T) *testServer {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	edb, err := eventdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { edb.Close() })

	rewardAsset := canbus.AssetID(1)
	gen := &genesis.Genesis{
		Name:        "test",
		Committee:   []canbus.Address{admin},
		RewardAsset: &rewardAsset,
		Accounts: []genesis.Account{
			{Address: alice, Asset: rewardAsset, Balance: balance(10_000)},
			{Address: canbus.NativeRewardAccount, Asset: canbus.NativeAsset, Balance: balance(1_000_000)},
		},
		Pools: []genesis.Pool{{
			ID:      1,
			Setting: runtime.PoolSetting{StartTime: 10, EpochCount: 5, EpochRange: 10},
			Name:    "p1",
		}},
	}

	n, err := node.New(db, edb)
	require.NoError(t, err)
	require.NoError(t, n.InitGenesis(gen.Build))

	blk, err := n.ProcessBlock(11, []*runtime.Call{
		{Method: runtime.MethodStake, Origin: alice, PoolID: 1, Amount: balance(100)},
	})
	require.NoError(t, err)
	require.False(t, blk.Receipts[0].Reverted, blk.Receipts[0].Reason)

	pool := node.NewCallPool(2)
	handler, closeSubs := api.New(n, pool, edb, api.Options{
		AllowedOrigins: "*",
		EventsLimit:    10,
		BacktraceLimit: 100,
		EnableMetrics:  true,
	})
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	t.Cleanup(closeSubs)
	return &testServer{ts, n, pool}
}

func (ts *testServer) get(t *testing.T, path string, v any) int {
	res, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	return decode(t, res, v)
}

func (ts *testServer) post(t *testing.T, path string, body any, v any) int {
	data, err := json.Marshal(body)
	require.NoError(t, err)
	res, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return decode(t, res, v)
}

func decode(t *testing.T, res *http.Response, v any) int {
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	if res.StatusCode == http.StatusOK && v != nil {
		require.NoError(t, json.Unmarshal(data, v), string(data))
	}
	return res.StatusCode
}

func TestStaking(t *testing.T) {
	ts := newTestServer(t)

	var status staking.Status
	require.Equal(t, http.StatusOK, ts.get(t, "/staking/status", &status))
	assert.Equal(t, uint32(11), status.Head)
	assert.Equal(t, uint64(1), status.PendingCount)
	require.NotNil(t, status.RewardAsset)
	assert.Equal(t, canbus.AssetID(1), *status.RewardAsset)
	assert.Equal(t, canbus.NativeRewardAccount, status.NativeRewardAccount)
	assert.Equal(t, big.NewInt(1_000_000), (*big.Int)(status.NativeReward))
	require.NotNil(t, status.Native)
	assert.Equal(t, big.NewInt(100), (*big.Int)(status.Native.Amount))

	var p staking.Pool
	require.Equal(t, http.StatusOK, ts.get(t, "/staking/pools/1", &p))
	assert.Equal(t, canbus.PoolID(1), p.ID)
	assert.Equal(t, uint32(60), p.EndTime)
	assert.Equal(t, "active", p.Status)
	assert.Equal(t, uint64(0), p.CurrentEpoch)
	assert.Equal(t, "p1", p.Name)
	assert.Nil(t, p.Staked)

	assert.Equal(t, http.StatusNotFound, ts.get(t, "/staking/pools/9", nil))
	assert.Equal(t, http.StatusBadRequest, ts.get(t, "/staking/pools/x", nil))

	var reward staking.EpochReward
	require.Equal(t, http.StatusOK, ts.get(t, "/staking/pools/1/epochs/2", &reward))
	assert.Equal(t, uint32(30), reward.BeginTime)
	assert.Equal(t, 0, (*big.Int)(reward.Amount).Sign())
	assert.Equal(t, http.StatusNotFound, ts.get(t, "/staking/pools/1/epochs/6", nil))

	var pending []*staking.PendingEntry
	require.Equal(t, http.StatusOK, ts.get(t, "/staking/pending", &pending))
	require.Len(t, pending, 1)
	assert.Equal(t, alice, pending[0].Who)
	assert.Equal(t, uint32(20), pending[0].Checkpoint.EffectiveTime)
	assert.Equal(t, http.StatusForbidden, ts.get(t, "/staking/pending?limit=5000", nil))

	var acc staking.Account
	require.Equal(t, http.StatusOK, ts.get(t, "/staking/accounts/"+alice.String()+"?pool=1", &acc))
	require.NotNil(t, acc.Native)
	assert.Equal(t, uint32(11), acc.Native.EffectiveTime)
	assert.Nil(t, acc.Stable)
	assert.Equal(t, http.StatusBadRequest, ts.get(t, "/staking/accounts/0x01", nil))
}

func TestEvents(t *testing.T) {
	ts := newTestServer(t)

	var fes []*events.FilteredEvent
	require.Equal(t, http.StatusOK, ts.post(t, "/events", &events.EventFilter{Names: []string{"Staked"}}, &fes))
	require.Len(t, fes, 1)
	assert.Equal(t, uint32(11), fes[0].BlockNumber)
	require.NotNil(t, fes[0].Who)
	assert.Equal(t, alice, *fes[0].Who)

	to := uint32(10)
	require.Equal(t, http.StatusOK, ts.post(t, "/events", &events.EventFilter{Range: &events.Range{To: &to}}, &fes))
	assert.Empty(t, fes)

	assert.Equal(t, http.StatusForbidden, ts.post(t, "/events", &events.EventFilter{Options: &events.Options{Limit: 11}}, nil))
	assert.Equal(t, http.StatusBadRequest, ts.post(t, "/events", map[string]any{"unknown": 1}, nil))
	assert.Equal(t, http.StatusBadRequest, ts.post(t, "/events", &events.EventFilter{Order: "sideways"}, nil))
}

func TestNode(t *testing.T) {
	ts := newTestServer(t)

	var head apinode.Head
	require.Equal(t, http.StatusOK, ts.get(t, "/node/head", &head))
	assert.Equal(t, uint32(11), head.Number)
	assert.Equal(t, 0, head.PendingCalls)

	call := &runtime.Call{Method: runtime.MethodClaimNative, Origin: alice, Until: 11}
	assert.Equal(t, http.StatusOK, ts.post(t, "/node/calls", call, nil))
	assert.Equal(t, http.StatusBadRequest, ts.post(t, "/node/calls", &runtime.Call{Method: "nope", Origin: alice}, nil))
	assert.Equal(t, http.StatusOK, ts.post(t, "/node/calls", call, nil))
	assert.Equal(t, http.StatusServiceUnavailable, ts.post(t, "/node/calls", call, nil))
	assert.Equal(t, 2, ts.pool.Len())
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/node/head", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://example.com")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, "*", res.Header.Get("Access-Control-Allow-Origin"))
}

func TestSubscriptions(t *testing.T) {
	ts := newTestServer(t)

	// upgraded through the metrics, compression and CORS wrappers
	header := http.Header{}
	header.Set("Origin", "http://example.com")
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/subscriptions/block", header)
	require.NoError(t, err)
	defer conn.Close()

	_, err = ts.node.ProduceBlock(nil)
	require.NoError(t, err)

	var msg subscriptions.BlockMessage
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, uint32(12), msg.Number)
	assert.Equal(t, 0, msg.Calls)
}
