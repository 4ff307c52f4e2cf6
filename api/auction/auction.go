// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/meterio/meter-auction/api/utils"
	"github.com/meterio/meter-auction/codec"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/node"
	"github.com/meterio/meter-auction/script/auction"
	"github.com/pkg/errors"
)

type Auction struct {
	node *node.Node
}

func New(node *node.Node) *Auction {
	return &Auction{
		node,
	}
}

func (at *Auction) call(entrypoint string, param []byte, v codec.Deserializer) error {
	out := at.node.Call(meter.AuctionModuleAddr, entrypoint, param, meter.Address{}, 0)
	if out.VMErr != nil {
		return out.VMErr
	}
	return codec.Decode(out.Data, v)
}

func (at *Auction) handleGetSummary(w http.ResponseWriter, req *http.Request) error {
	var view auction.ReturnParamView
	if err := at.call("view", nil, &view); err != nil {
		return utils.RejectError(err)
	}
	return utils.WriteJSON(w, convertSummary(&view))
}

func (at *Auction) handleGetItem(w http.ResponseWriter, req *http.Request) error {
	index, err := strconv.ParseUint(mux.Vars(req)["index"], 10, 16)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "index"))
	}
	var item auction.ItemState
	if err := at.call("viewItemState", codec.Encode(codec.U16(index)), &item); err != nil {
		if err == auction.ErrInvalidIndex {
			return utils.NotFound(err)
		}
		return utils.RejectError(err)
	}
	return utils.WriteJSON(w, convertItem(uint16(index), &item))
}

func (at *Auction) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(at.handleGetSummary))
	sub.Path("/items").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(at.handleGetSummary))
	sub.Path("/items/{index}").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(at.handleGetItem))
}
