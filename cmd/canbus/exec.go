// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v3"

	"github.com/canbus-network/canbus/builtin/stablestaking"
	"github.com/canbus-network/canbus/eventdb"
	"github.com/canbus-network/canbus/lvldb"
	"github.com/canbus-network/canbus/node"
	"github.com/canbus-network/canbus/runtime"
)

// Scenario is a list of blocks replayed on a fresh node.
type Scenario struct {
	Blocks []ScenarioBlock `yaml:"blocks"`
}

type ScenarioBlock struct {
	Number uint32          `yaml:"number"`
	Calls  []*runtime.Call `yaml:"calls"`
}

func parseScenario(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		return nil, errors.Wrap(err, "decode scenario")
	}
	var last uint32
	for i, b := range sc.Blocks {
		if b.Number <= last {
			return nil, errors.Errorf("blocks[%d]: number %d not after %d", i, b.Number, last)
		}
		last = b.Number
		for j, call := range b.Calls {
			if call == nil {
				return nil, errors.Errorf("blocks[%d].calls[%d]: empty call", i, j)
			}
		}
	}
	return &sc, nil
}

// blockResult is the printed outcome of a block.
type blockResult struct {
	Number    uint32           `json:"number"`
	StageHash string           `json:"stageHash"`
	Events    []*eventResult   `json:"events,omitempty"`
	Receipts  []*receiptResult `json:"receipts,omitempty"`
}

type receiptResult struct {
	Method   runtime.Method `json:"method"`
	Reverted bool           `json:"reverted"`
	Reason   string         `json:"reason,omitempty"`
	Events   []*eventResult `json:"events,omitempty"`
}

type eventResult struct {
	Name string              `json:"name"`
	Data stablestaking.Event `json:"data"`
}

func convertEvents(events []stablestaking.Event) []*eventResult {
	res := make([]*eventResult, 0, len(events))
	for _, ev := range events {
		res = append(res, &eventResult{ev.EventName(), ev})
	}
	return res
}

func newBlockResult(blk *node.Block) *blockResult {
	res := &blockResult{
		Number:    blk.Number,
		StageHash: blk.StageHash.String(),
		Events:    convertEvents(blk.HookEvents),
	}
	for _, r := range blk.Receipts {
		res.Receipts = append(res.Receipts, &receiptResult{
			Method:   r.Method,
			Reverted: r.Reverted,
			Reason:   r.Reason,
			Events:   convertEvents(r.Events),
		})
	}
	return res
}

// runScenario processes the scenario blocks and writes one JSON line per block to w.
// Blocks without calls between the listed ones are processed but not printed.
func runScenario(n *node.Node, sc *Scenario, w io.Writer, bar *pb.ProgressBar) error {
	enc := json.NewEncoder(w)
	for _, b := range sc.Blocks {
		blk, err := n.ProcessBlock(b.Number, b.Calls)
		if err != nil {
			return err
		}
		if err := enc.Encode(newBlockResult(blk)); err != nil {
			return errors.Wrap(err, "write result")
		}
		if bar != nil {
			bar.Increment()
		}
	}
	return nil
}

func execAction(ctx *cli.Context) error {
	initLogger(ctx)

	if ctx.NArg() != 1 {
		return errors.New("scenario file required")
	}
	data, err := os.ReadFile(ctx.Args().First())
	if err != nil {
		return errors.Wrap(err, "read scenario")
	}
	sc, err := parseScenario(data)
	if err != nil {
		return err
	}
	gene, err := loadGenesis(ctx)
	if err != nil {
		return err
	}

	mainDB, err := lvldb.NewMem()
	if err != nil {
		return err
	}
	defer mainDB.Close()
	eventDB, err := eventdb.NewMem()
	if err != nil {
		return err
	}
	defer eventDB.Close()

	n, err := node.New(mainDB, eventDB)
	if err != nil {
		return err
	}
	defer n.Close()
	if err := n.InitGenesis(gene.Build); err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if path := ctx.String(outputFlag.Name); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrap(err, "create output")
		}
		defer f.Close()
		w = f
	}

	var bar *pb.ProgressBar
	if !ctx.Bool(noProgressFlag.Name) && isatty.IsTerminal(os.Stderr.Fd()) {
		bar = pb.New(len(sc.Blocks)).SetMaxWidth(90)
		bar.Output = os.Stderr
		bar.Start()
		defer func() { bar.NotPrint = true }()
	}

	if err := runScenario(n, sc, w, bar); err != nil {
		return err
	}
	if bar != nil {
		bar.Finish()
	}
	logger.Info("scenario replayed", "blocks", len(sc.Blocks), "head", n.Head())
	return nil
}
