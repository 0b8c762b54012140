// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/canbus-network/canbus/admin"
	"github.com/canbus-network/canbus/api"
	"github.com/canbus-network/canbus/canbus"
	"github.com/canbus-network/canbus/genesis"
	"github.com/canbus-network/canbus/health"
	"github.com/canbus-network/canbus/metrics"
	"github.com/canbus-network/canbus/node"
)

// solo produces blocks from the call pool.
type solo struct {
	node     *node.Node
	pool     *node.CallPool
	health   *health.Health
	interval time.Duration
	onDemand bool
}

func (s *solo) run(ctx context.Context) error {
	var tick <-chan time.Time
	var submitted <-chan struct{}
	if s.onDemand {
		submitted = s.pool.Submitted()
	} else {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	logger.Info("prepared to produce blocks", "interval", s.interval, "onDemand", s.onDemand)
	for {
		select {
		case <-ctx.Done():
			logger.Info("stopping block production")
			return nil
		case <-tick:
		case <-submitted:
		}
		if err := s.produce(); err != nil {
			return err
		}
	}
}

func (s *solo) produce() error {
	calls := s.pool.Drain()
	blk, err := s.node.ProduceBlock(calls)
	if err != nil {
		return errors.WithMessage(err, "produce block")
	}
	s.health.NewBlock(blk.Number)
	for _, r := range blk.Receipts {
		if r.Reverted {
			logger.Debug("call reverted", "block", blk.Number, "method", r.Method, "origin", r.Origin, "reason", r.Reason)
		}
	}
	return nil
}

func soloAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()

	logLevel := initLogger(ctx)
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	gene, err := loadGenesis(ctx)
	if err != nil {
		return err
	}
	genesisID, err := gene.ID()
	if err != nil {
		return err
	}

	dbs, err := openDatabases(ctx, genesisID)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing databases..."); dbs.Close() }()

	n, err := node.New(dbs.main, dbs.events)
	if err != nil {
		return err
	}
	defer n.Close()
	if err := n.InitGenesis(gene.Build); err != nil {
		return err
	}

	pool := node.NewCallPool(ctx.Int(callPoolLimitFlag.Name))
	handler, closeSubs := api.New(n, pool, dbs.events, api.Options{
		AllowedOrigins:  ctx.String(apiCorsFlag.Name),
		EventsLimit:     ctx.Uint64(apiEventsLimitFlag.Name),
		BacktraceLimit:  uint32(ctx.Uint64(apiBacktraceLimitFlag.Name)),
		EnableReqLogger: ctx.Bool(enableAPILogsFlag.Name),
		EnableMetrics:   ctx.Bool(enableMetricsFlag.Name),
	})
	defer closeSubs()
	apiURL, stopAPI, err := startServer("API", ctx.String(apiAddrFlag.Name), handler)
	if err != nil {
		return err
	}
	defer func() { logger.Info("stopping API server..."); stopAPI() }()

	metricsURL := "disabled"
	if ctx.Bool(enableMetricsFlag.Name) {
		url, stopMetrics, err := startMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return err
		}
		defer func() { logger.Info("stopping metrics server..."); stopMetrics() }()
		metricsURL = url + "metrics"
	}

	interval := ctx.Uint64(blockIntervalFlag.Name)
	if interval == 0 {
		return errors.New("block interval must be positive")
	}
	onDemand := ctx.Bool(onDemandFlag.Name)

	// an on demand node may idle for any time
	var maxDelay time.Duration
	if !onDemand {
		maxDelay = 3 * time.Duration(interval) * time.Second
	}
	h := health.New(maxDelay)

	adminURL := "disabled"
	if ctx.Bool(enableAdminFlag.Name) {
		url, stopAdmin, err := startServer("admin", ctx.String(adminAddrFlag.Name), admin.HTTPHandler(logLevel, h))
		if err != nil {
			return err
		}
		defer func() { logger.Info("stopping admin server..."); stopAdmin() }()
		adminURL = url + "admin"
	}

	printSoloStartupMessage(gene, genesisID, n.Head(), dbs.dir, apiURL, metricsURL, adminURL)

	group, gctx := errgroup.WithContext(handleExitSignal())
	group.Go(func() error {
		return (&solo{
			node:     n,
			pool:     pool,
			health:   h,
			interval: time.Duration(interval) * time.Second,
			onDemand: onDemand,
		}).run(gctx)
	})
	return group.Wait()
}

func printSoloStartupMessage(gene *genesis.Genesis, genesisID canbus.Bytes32, head uint32, dataDir, apiURL, metricsURL, adminURL string) {
	info := fmt.Sprintf(`Starting canbus solo %v
    Network     [ %v %v ]
    Head block  [ #%v ]
    Data dir    [ %v ]
    API portal  [ %v ]
    Metrics     [ %v ]
    Admin       [ %v ]
`,
		fullVersion(),
		genesisID, gene.Name,
		head,
		dataDir,
		apiURL,
		metricsURL,
		adminURL)

	if gene.Name == "devnet" {
		info += "    Dev accounts\n"
		for _, a := range genesis.DevAccounts() {
			info += fmt.Sprintf("      %v\n", a.Address)
		}
	}
	fmt.Print(info)
}
