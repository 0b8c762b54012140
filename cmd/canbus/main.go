// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/canbus-network/canbus/log"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	soloFlags := []cli.Flag{
		dataDirFlag,
		genesisFlag,
		persistFlag,
		apiAddrFlag,
		apiCorsFlag,
		apiEventsLimitFlag,
		apiBacktraceLimitFlag,
		enableAPILogsFlag,
		verbosityFlag,
		logJSONFlag,
		blockIntervalFlag,
		onDemandFlag,
		callPoolLimitFlag,
		enableMetricsFlag,
		metricsAddrFlag,
		enableAdminFlag,
		adminAddrFlag,
	}

	app := cli.App{
		Version:   fullVersion(),
		Name:      "canbus",
		Usage:     "Stable staking reward accounting node",
		Copyright: "2025 The VeChainThor developers",
		Flags:     soloFlags,
		Action:    soloAction,
		Commands: []cli.Command{
			{
				Name:   "solo",
				Usage:  "produce blocks locally from calls submitted over the API",
				Flags:  soloFlags,
				Action: soloAction,
			},
			{
				Name:      "exec",
				Usage:     "replay a YAML scenario of blocks and print the results",
				ArgsUsage: "<scenario.yaml>",
				Flags: []cli.Flag{
					genesisFlag,
					verbosityFlag,
					logJSONFlag,
					outputFlag,
					noProgressFlag,
				},
				Action: execAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
