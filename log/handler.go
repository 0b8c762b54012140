// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"context"
	"io"
	"log/slog"
	"os"

	ethlog "github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-isatty"
)

// Levels beyond the slog builtins.
const (
	LevelTrace = ethlog.LevelTrace
	LevelCrit  = ethlog.LevelCrit
)

// Legacy verbosity levels accepted on the command line.
const (
	LegacyLevelCrit = iota
	LegacyLevelError
	LegacyLevelWarn
	LegacyLevelInfo
	LegacyLevelDebug
	LegacyLevelTrace
)

// LevelFromVerbosity maps a 0..5 verbosity onto a slog level.
func LevelFromVerbosity(verbosity int) slog.Level {
	if verbosity < LegacyLevelCrit {
		verbosity = LegacyLevelCrit
	}
	if verbosity > LegacyLevelTrace {
		verbosity = LegacyLevelTrace
	}
	return ethlog.FromLegacyLevel(verbosity)
}

// NewTerminalHandler writes human readable records, colored when w is a terminal.
func NewTerminalHandler(w io.Writer, level slog.Level) slog.Handler {
	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return ethlog.NewTerminalHandlerWithLevel(w, level, useColor)
}

// NewJSONHandler writes one JSON object per record.
func NewJSONHandler(w io.Writer, level slog.Level) slog.Handler {
	return ethlog.JSONHandlerWithLevel(w, level)
}

// DiscardHandler drops every record.
func DiscardHandler() slog.Handler {
	return ethlog.DiscardHandler()
}

type levelHandler struct {
	level slog.Leveler
	inner slog.Handler
}

// NewLevelHandler filters records of h below level. Passing a *slog.LevelVar
// allows the threshold to change while running.
func NewLevelHandler(level slog.Leveler, h slog.Handler) slog.Handler {
	return &levelHandler{level: level, inner: h}
}

func (h *levelHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return l >= h.level.Level() && h.inner.Enabled(ctx, l)
}

func (h *levelHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.inner.Handle(ctx, r)
}

func (h *levelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelHandler{level: h.level, inner: h.inner.WithAttrs(attrs)}
}

func (h *levelHandler) WithGroup(name string) slog.Handler {
	return &levelHandler{level: h.level, inner: h.inner.WithGroup(name)}
}
