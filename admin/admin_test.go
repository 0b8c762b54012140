// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canbus-network/canbus/health"
)

func serve(t *testing.T, handler http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	req, err := http.NewRequest(method, path, bytes.NewReader(body))
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestPostLogLevel(t *testing.T) {
	var logLevel slog.LevelVar
	logLevel.Set(slog.LevelInfo)
	handler := HTTPHandler(&logLevel, health.New(0))

	rr := serve(t, handler, http.MethodPost, "/admin/loglevel", []byte(`{"level":"debug"}`))
	require.Equal(t, http.StatusOK, rr.Code)

	var response logLevelResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
	assert.Equal(t, "DEBUG", response.CurrentLevel)
	assert.Equal(t, slog.LevelDebug, logLevel.Level())
}

func TestPostLogLevel_Invalid(t *testing.T) {
	var logLevel slog.LevelVar
	logLevel.Set(slog.LevelInfo)
	handler := HTTPHandler(&logLevel, health.New(0))

	tests := []struct {
		body []byte
		msg  string
	}{
		{[]byte(`{"level":"invalid_body"}`), "Invalid verbosity level"},
		{[]byte(`{`), "Invalid request body"},
	}
	for _, tt := range tests {
		rr := serve(t, handler, http.MethodPost, "/admin/loglevel", tt.body)
		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var response errorResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
		assert.Equal(t, tt.msg, response.ErrorMessage)
	}
	assert.Equal(t, slog.LevelInfo, logLevel.Level())
}

func TestGetLogLevel(t *testing.T) {
	var logLevel slog.LevelVar
	handler := HTTPHandler(&logLevel, health.New(0))

	rr := serve(t, handler, http.MethodGet, "/admin/loglevel", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var response logLevelResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
	assert.Equal(t, "INFO", response.CurrentLevel)

	rr = serve(t, handler, http.MethodPut, "/admin/loglevel", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestHealth(t *testing.T) {
	var logLevel slog.LevelVar
	h := health.New(time.Hour)
	handler := HTTPHandler(&logLevel, h)

	rr := serve(t, handler, http.MethodGet, "/admin/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	h.NewBlock(7)
	rr = serve(t, handler, http.MethodGet, "/admin/health", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var status health.Status
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&status))
	assert.True(t, status.Healthy)
	require.NotNil(t, status.BlockIngestion.Number)
	assert.Equal(t, uint32(7), *status.BlockIngestion.Number)
}
