// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerBindsLazily(t *testing.T) {
	logger := WithContext("pkg", "test")

	var buf bytes.Buffer
	SetDefault(NewJSONHandler(&buf, slog.LevelDebug))
	t.Cleanup(func() { SetDefault(DiscardHandler()) })

	logger.With("pool", 1).Info("created", "amount", 10)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "created", record["msg"])
	assert.Equal(t, "test", record["pkg"])
	assert.EqualValues(t, 1, record["pool"])
	assert.EqualValues(t, 10, record["amount"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetDefault(NewJSONHandler(&buf, LevelFromVerbosity(LegacyLevelWarn)))
	t.Cleanup(func() { SetDefault(DiscardHandler()) })

	Root().Debug("hidden")
	assert.Zero(t, buf.Len())

	Root().Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestLevelFromVerbosity(t *testing.T) {
	assert.Equal(t, LevelFromVerbosity(LegacyLevelTrace), LevelFromVerbosity(99))
	assert.Equal(t, LevelFromVerbosity(LegacyLevelCrit), LevelFromVerbosity(-3))
	assert.Less(t, int(LevelFromVerbosity(LegacyLevelDebug)), int(LevelFromVerbosity(LegacyLevelInfo)))
}

func TestLevelHandler(t *testing.T) {
	var (
		buf   bytes.Buffer
		level slog.LevelVar
	)
	level.Set(slog.LevelWarn)
	SetDefault(NewLevelHandler(&level, NewJSONHandler(&buf, LevelTrace)))
	t.Cleanup(func() { SetDefault(DiscardHandler()) })

	logger := WithContext("pkg", "test")
	logger.Info("hidden")
	assert.Zero(t, buf.Len())

	level.Set(slog.LevelDebug)
	logger.Debug("shown")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), `"pkg":"test"`)
}
