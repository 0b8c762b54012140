// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/canbus-network/canbus/api/events"
	apinode "github.com/canbus-network/canbus/api/node"
	"github.com/canbus-network/canbus/api/staking"
	"github.com/canbus-network/canbus/api/subscriptions"
	"github.com/canbus-network/canbus/eventdb"
	"github.com/canbus-network/canbus/log"
	"github.com/canbus-network/canbus/node"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins  string
	EventsLimit     uint64
	BacktraceLimit  uint32
	EnableReqLogger bool
	EnableMetrics   bool
}

// New return api router and a func to close the websocket subscriptions.
// Events are served only when eventDB is given, calls are accepted only when pool is given.
func New(n *node.Node, pool *node.CallPool, eventDB *eventdb.EventDB, opts Options) (http.Handler, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	staking.New(n).
		Mount(router, "/staking")
	if eventDB != nil {
		events.New(eventDB, opts.EventsLimit).
			Mount(router, "/events")
	}
	apinode.New(n, pool).
		Mount(router, "/node")
	subs := subscriptions.New(n, eventDB, origins, opts.BacktraceLimit)
	subs.Mount(router, "/subscriptions")

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)

	if opts.EnableReqLogger {
		handler = RequestLoggerHandler(handler, logger)
	}
	return handler, subs.Close // subscriptions handles hijacked conns, which need to be closed
}
