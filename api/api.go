// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/meterio/meter-auction/api/accounts"
	"github.com/meterio/meter-auction/api/auction"
	"github.com/meterio/meter-auction/api/blocks"
	"github.com/meterio/meter-auction/api/events"
	"github.com/meterio/meter-auction/api/ledger"
	apinode "github.com/meterio/meter-auction/api/node"
	"github.com/meterio/meter-auction/api/permits"
	"github.com/meterio/meter-auction/api/subscriptions"
	"github.com/meterio/meter-auction/api/transactions"
	"github.com/meterio/meter-auction/api/transfers"
	"github.com/meterio/meter-auction/node"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// New return api router
func New(n *node.Node, allowedOrigins string, backtraceLimit uint32) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(allowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	router.Path("/metrics").Handler(promhttp.Handler())

	accounts.New(n).
		Mount(router, "/accounts")
	events.New(n.LogDB()).
		Mount(router, "/logs/event")
	transfers.New(n.LogDB()).
		Mount(router, "/logs/transfer")
	blocks.New(n.Chain()).
		Mount(router, "/blocks")
	transactions.New(n).
		Mount(router, "/transactions")
	apinode.New(n).
		Mount(router, "/node")
	auction.New(n).
		Mount(router, "/auction")
	ledger.New(n).
		Mount(router, "/ledger")
	permits.New(n).
		Mount(router, "/permits")
	subs := subscriptions.New(n.Chain(), origins, backtraceLimit)
	subs.Mount(router, "/subscriptions")

	return handlers.CORS(
			handlers.AllowedOrigins(origins),
			handlers.AllowedHeaders([]string{"content-type"}))(router).ServeHTTP,
		subs.Close // subscriptions handles hijacked conns, which need to be closed
}
