// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/meterio/meter-auction/accounts"
	"github.com/meterio/meter-auction/api/utils"
	"github.com/meterio/meter-auction/codec"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/node"
	"github.com/meterio/meter-auction/script/permit"
	"github.com/pkg/errors"
)

type Accounts struct {
	node *node.Node
}

func New(node *node.Node) *Accounts {
	return &Accounts{
		node,
	}
}

func parseAddress(req *http.Request) (meter.Address, error) {
	addr, err := meter.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return meter.Address{}, utils.BadRequest(errors.WithMessage(err, "address"))
	}
	return addr, nil
}

func (a *Accounts) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := parseAddress(req)
	if err != nil {
		return err
	}
	st := a.node.StateCreator().NewState()
	return utils.WriteJSON(w, convertAccount(accounts.Get(st, addr)))
}

func (a *Accounts) nonceOf(contract, addr meter.Address) (uint64, error) {
	out := a.node.Call(contract, "nonceOf", codec.Encode(permit.NonceOfParams{addr}), meter.Address{}, 0)
	if out.VMErr != nil {
		return 0, out.VMErr
	}
	var resp permit.NonceOfResponse
	if err := codec.Decode(out.Data, &resp); err != nil {
		return 0, err
	}
	if len(resp) != 1 {
		return 0, errors.New("nonceOf: unexpected response length")
	}
	return resp[0], nil
}

func (a *Accounts) handleGetNonces(w http.ResponseWriter, req *http.Request) error {
	addr, err := parseAddress(req)
	if err != nil {
		return err
	}
	var nonces Nonces
	if nonces.Ledger, err = a.nonceOf(meter.LedgerModuleAddr, addr); err != nil {
		return err
	}
	if nonces.Auction, err = a.nonceOf(meter.AuctionModuleAddr, addr); err != nil {
		return err
	}
	return utils.WriteJSON(w, &nonces)
}

func (a *Accounts) handleCallContract(w http.ResponseWriter, req *http.Request) error {
	callData := &CallData{}
	if err := utils.ParseJSON(req.Body, &callData); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	addr, err := parseAddress(req)
	if err != nil {
		return err
	}
	if callData.Entrypoint == "" {
		return utils.BadRequest(errors.New("entrypoint: empty"))
	}
	gas := callData.Gas
	if gas > a.node.CallGasLimit() {
		return utils.Forbidden(errors.New("gas: exceeds limit"))
	} else if gas == 0 {
		gas = a.node.CallGasLimit()
	}
	var caller meter.Address
	if callData.Caller != nil {
		caller = *callData.Caller
	}
	out := a.node.Call(addr, callData.Entrypoint, callData.Param, caller, gas)
	return utils.WriteJSON(w, convertCallResultWithInputGas(out, gas))
}

func (a *Accounts) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(a.handleGetAccount))
	sub.Path("/{address}/nonces").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(a.handleGetNonces))
	sub.Path("/{address}").Methods("POST").HandlerFunc(utils.WrapHandlerFunc(a.handleCallContract))
}
