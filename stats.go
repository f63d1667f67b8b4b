// Copyright (c) 2022 The rcproxy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package redis

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// clientStats mirrors a proxy's ProxyStats vector shape, narrowed from
// a proxy-wide set of vectors to the handful of counters and gauges
// meaningful for one outbound client connection.
type clientStats struct {
	TotalConnections  prometheus.Counter
	CurrConnections   prometheus.Gauge
	TotalCommands     prometheus.Counter
	CommandErrors     prometheus.Counter
	ConnectErrors     prometheus.Counter
	WaitingQueueDepth prometheus.Gauge
	PendingQueueDepth prometheus.Gauge
	TimeoutTree       prometheus.Gauge
}

var globalStats clientStats
var globalStatsOnce sync.Once

// initStats registers the package-wide metrics exactly once. The metrics
// carry no per-client label: every Client in the process updates the
// same counters and gauges, the way a single process-wide GlobalStats
// instance would.
func initStats() {
	globalStatsOnce.Do(func() {
		globalStats = clientStats{
			TotalConnections: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "goredisasync", Name: "total_connections",
				Help: "total successful connection establishments across all clients",
			}),
			CurrConnections: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "goredisasync", Name: "curr_connections",
				Help: "clients currently in the connected state",
			}),
			TotalCommands: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "goredisasync", Name: "total_commands",
				Help: "total commands submitted",
			}),
			CommandErrors: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "goredisasync", Name: "command_errors",
				Help: "commands that completed with a non-nil error",
			}),
			ConnectErrors: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "goredisasync", Name: "connect_errors",
				Help: "failed dial attempts, including reconnects",
			}),
			WaitingQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "goredisasync", Name: "waiting_queue_depth",
				Help: "waiting-queue length last reported by a client's timeout scan",
			}),
			PendingQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "goredisasync", Name: "pending_queue_depth",
				Help: "pending-queue length last reported by a client's timeout scan",
			}),
			TimeoutTree: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "goredisasync", Name: "timeout_tree_depth",
				Help: "per-command deadline-tree size last reported by a client's timeout scan",
			}),
		}
		prometheus.MustRegister(
			globalStats.TotalConnections, globalStats.CurrConnections,
			globalStats.TotalCommands, globalStats.CommandErrors,
			globalStats.ConnectErrors, globalStats.WaitingQueueDepth,
			globalStats.PendingQueueDepth, globalStats.TimeoutTree,
		)
	})
}
