// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/meterio/meter-auction/api/utils"
	meternode "github.com/meterio/meter-auction/node"
)

type Node struct {
	node *meternode.Node
}

func New(node *meternode.Node) *Node {
	return &Node{
		node,
	}
}

func (n *Node) Status() *Status {
	return &Status{
		ChainTag:     n.node.ChainTag(),
		Genesis:      convertBlockSummary(n.node.GenesisBlock()),
		Best:         convertBlockSummary(n.node.BestBlock()),
		CallGasLimit: n.node.CallGasLimit(),
		Publishing:   n.node.Publisher() != nil,
		Contracts:    convertContracts(n.node.Engine().Modules()),
	}
}

func (n *Node) handleStatus(w http.ResponseWriter, req *http.Request) error {
	return utils.WriteJSON(w, n.Status())
}

func (n *Node) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods("Get").HandlerFunc(utils.WrapHandlerFunc(n.handleStatus))
}
