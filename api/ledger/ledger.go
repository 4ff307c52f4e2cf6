// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/meterio/meter-auction/api/utils"
	"github.com/meterio/meter-auction/codec"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/node"
	"github.com/meterio/meter-auction/script/ledger"
	"github.com/pkg/errors"
)

type Balance struct {
	TokenID uint32        `json:"tokenID"`
	Owner   meter.Address `json:"owner"`
	Amount  uint64        `json:"amount"`
}

type Ledger struct {
	node *node.Node
}

func New(node *node.Node) *Ledger {
	return &Ledger{
		node,
	}
}

func (l *Ledger) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	tokenID, err := strconv.ParseUint(mux.Vars(req)["token"], 0, 32)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "token"))
	}
	owner, err := meter.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	query := ledger.BalanceOfQueryParams{{
		TokenID: codec.TokenID(tokenID),
		Address: codec.AccountAddress(owner),
	}}
	out := l.node.Call(meter.LedgerModuleAddr, "balanceOf", codec.Encode(query), meter.Address{}, 0)
	if out.VMErr != nil {
		if out.VMErr == ledger.ErrInvalidTokenId {
			return utils.NotFound(out.VMErr)
		}
		return utils.RejectError(out.VMErr)
	}
	var resp ledger.BalanceOfResponse
	if err := codec.Decode(out.Data, &resp); err != nil {
		return err
	}
	if len(resp) != 1 {
		return errors.New("balanceOf: unexpected response length")
	}
	return utils.WriteJSON(w, &Balance{
		TokenID: uint32(tokenID),
		Owner:   owner,
		Amount:  uint64(resp[0]),
	})
}

func (l *Ledger) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("/balances/{token}/{address}").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(l.handleGetBalance))
}
