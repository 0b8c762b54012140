// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/canbus-network/canbus/canbus"
	"github.com/canbus-network/canbus/eventdb"
	"github.com/canbus-network/canbus/genesis"
	"github.com/canbus-network/canbus/log"
	"github.com/canbus-network/canbus/lvldb"
	"github.com/canbus-network/canbus/metrics"
)

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".canbus"
	}
	return filepath.Join(home, ".canbus")
}

// initLogger installs the root handler. The returned level can be changed
// while running.
func initLogger(ctx *cli.Context) *slog.LevelVar {
	var level slog.LevelVar
	level.Set(log.LevelFromVerbosity(ctx.Int(verbosityFlag.Name)))

	var handler slog.Handler
	if ctx.Bool(logJSONFlag.Name) {
		handler = log.NewJSONHandler(os.Stderr, log.LevelTrace)
	} else {
		handler = log.NewTerminalHandler(os.Stderr, log.LevelTrace)
	}
	log.SetDefault(log.NewLevelHandler(&level, handler))
	return &level
}

func loadGenesis(ctx *cli.Context) (*genesis.Genesis, error) {
	path := ctx.String(genesisFlag.Name)
	if path == "" {
		return genesis.NewDevnet(), nil
	}
	return genesis.Load(path)
}

// makeInstanceDir returns the directory bound to the genesis, so a data dir can
// host several networks.
func makeInstanceDir(ctx *cli.Context, genesisID canbus.Bytes32) (string, error) {
	dir := filepath.Join(ctx.String(dataDirFlag.Name), fmt.Sprintf("instance-%x", genesisID[24:]))
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create instance dir [%v]", dir)
	}
	return dir, nil
}

type databases struct {
	main   *lvldb.LevelDB
	events *eventdb.EventDB
	dir    string
}

func (dbs *databases) Close() {
	if err := dbs.events.Close(); err != nil {
		logger.Warn("failed to close event database", "err", err)
	}
	if err := dbs.main.Close(); err != nil {
		logger.Warn("failed to close main database", "err", err)
	}
}

func openDatabases(ctx *cli.Context, genesisID canbus.Bytes32) (*databases, error) {
	if !ctx.Bool(persistFlag.Name) {
		mainDB, err := lvldb.NewMem()
		if err != nil {
			return nil, errors.Wrap(err, "open main database")
		}
		eventDB, err := eventdb.NewMem()
		if err != nil {
			mainDB.Close()
			return nil, errors.Wrap(err, "open event database")
		}
		return &databases{mainDB, eventDB, "Memory"}, nil
	}

	dir, err := makeInstanceDir(ctx, genesisID)
	if err != nil {
		return nil, err
	}
	mainDB, err := lvldb.New(filepath.Join(dir, "main.db"), lvldb.Options{
		CacheSize:              256,
		OpenFilesCacheCapacity: 64,
	})
	if err != nil {
		return nil, errors.Wrap(err, "open main database")
	}
	eventDB, err := eventdb.New(filepath.Join(dir, "events.db"))
	if err != nil {
		mainDB.Close()
		return nil, errors.Wrap(err, "open event database")
	}
	return &databases{mainDB, eventDB, dir}, nil
}

func startServer(name, addr string, handler http.Handler) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen %s addr [%v]", name, addr)
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped", "name", name, "err", err)
		}
	}()
	return "http://" + listener.Addr().String() + "/", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
		<-done
	}, nil
}

func startMetricsServer(addr string) (string, func(), error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler())
	return startServer("metrics", addr, mux)
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}
