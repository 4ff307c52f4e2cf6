// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chain

import "github.com/prometheus/client_golang/prometheus"

var bestHeightGauge = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "best_height",
	Help: "Number of the best block",
})

func init() {
	prometheus.MustRegister(bestHeightGauge)
}
