// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package script

import "github.com/prometheus/client_golang/prometheus"

var (
	invokeCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "script_invocations_total",
		Help: "Counter of contract invocations by module, entrypoint and result",
	}, []string{"module", "entrypoint", "result"})
)

func init() {
	prometheus.MustRegister(invokeCounter)
}
