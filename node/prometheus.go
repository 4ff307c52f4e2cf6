// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import "github.com/prometheus/client_golang/prometheus"

var (
	txCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "node_transactions_total",
		Help: "Submitted transactions by outcome",
	}, []string{"result"})

	eventCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "node_contract_events_total",
		Help: "Events of committed transactions by contract and name",
	}, []string{"contract", "event"})

	blockDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "node_block_duration_seconds",
		Help:    "Time to execute and commit one block",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
	})
)

func init() {
	prometheus.MustRegister(txCounter, eventCounter, blockDuration)
}
