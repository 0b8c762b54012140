// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"github.com/canbus-network/canbus/metrics"
)

var (
	metricBlockProcessedDuration = metrics.LazyLoadHistogramVec("block_processed_duration_ms", []string{"type"}, metrics.Bucket10s)
	metricBlockCalls             = metrics.LazyLoadCounter("block_calls_count")
	metricCallPoolSize           = metrics.LazyLoadGauge("call_pool_size")
)
