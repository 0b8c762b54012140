// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"github.com/canbus-network/canbus/metrics"
)

var (
	metricCallCount     = metrics.LazyLoadCounterVec("runtime_calls_count", []string{"method", "result"})
	metricPendingSolved = metrics.LazyLoadCounter("runtime_pending_solved_count")
	metricPendingSize   = metrics.LazyLoadGauge("runtime_pending_queue_size")
)
