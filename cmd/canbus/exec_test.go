// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canbus-network/canbus/genesis"
	"github.com/canbus-network/canbus/lvldb"
	"github.com/canbus-network/canbus/node"
	"github.com/canbus-network/canbus/runtime"
)

func devScenario() string {
	return fmt.Sprintf(`
blocks:
  - number: 11
    calls:
      - method: stake
        origin: "%v"
        poolId: 1
        amount: "1000"
  - number: 12
    calls:
      - method: stake
        origin: "%v"
        poolId: 99
        amount: "0x0a"
  - number: 110
`, genesis.DevAccounts()[0].Address, genesis.DevAccounts()[1].Address)
}

func TestParseScenario(t *testing.T) {
	sc, err := parseScenario([]byte(devScenario()))
	require.NoError(t, err)
	require.Len(t, sc.Blocks, 3)
	assert.Equal(t, uint32(11), sc.Blocks[0].Number)
	require.Len(t, sc.Blocks[0].Calls, 1)
	assert.Equal(t, runtime.MethodStake, sc.Blocks[0].Calls[0].Method)
	assert.Equal(t, genesis.DevAccounts()[0].Address, sc.Blocks[0].Calls[0].Origin)
	assert.Empty(t, sc.Blocks[2].Calls)

	_, err = parseScenario([]byte("blocks:\n  - number: 2\n  - number: 2\n"))
	assert.ErrorContains(t, err, "not after")

	_, err = parseScenario([]byte("blocks:\n  - number: 2\n    extra: 1\n"))
	assert.Error(t, err)
}

func TestRunScenario(t *testing.T) {
	sc, err := parseScenario([]byte(devScenario()))
	require.NoError(t, err)

	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()
	n, err := node.New(db, nil)
	require.NoError(t, err)
	require.NoError(t, n.InitGenesis(genesis.NewDevnet().Build))

	var out bytes.Buffer
	require.NoError(t, runScenario(n, sc, &out, nil))
	assert.Equal(t, uint32(110), n.Head())

	var results []map[string]any
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		var res map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &res))
		results = append(results, res)
	}
	require.Len(t, results, 3)

	staked := results[0]["receipts"].([]any)[0].(map[string]any)
	assert.Equal(t, false, staked["reverted"])
	assert.Equal(t, "Staked", staked["events"].([]any)[0].(map[string]any)["name"])

	rejected := results[1]["receipts"].([]any)[0].(map[string]any)
	assert.Equal(t, true, rejected["reverted"])
	assert.Equal(t, "stablestaking: pool not found", rejected["reason"])

	// the pending stake becomes effective at block 110 and is solved by the hook
	solved := results[2]["events"].([]any)
	require.Len(t, solved, 1)
	assert.Equal(t, "PendingStakingSolved", solved[0].(map[string]any)["name"])
}
