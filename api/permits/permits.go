// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package permits

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorilla/mux"
	"github.com/meterio/meter-auction/api/utils"
	"github.com/meterio/meter-auction/codec"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/node"
	"github.com/meterio/meter-auction/script/permit"
	"github.com/pkg/errors"
)

// Message is the JSON form of a permit message to be signed.
type Message struct {
	Signer          meter.Address `json:"signer"`
	ContractAddress meter.Address `json:"contractAddress"`
	Nonce           uint64        `json:"nonce"`
	Timestamp       uint64        `json:"timestamp"`
	EntryPoint      string        `json:"entrypoint"`
	Payload         hexutil.Bytes `json:"payload"`
}

type Permits struct {
	node *node.Node
}

func New(node *node.Node) *Permits {
	return &Permits{
		node,
	}
}

// handleMessageHash asks the target contract for the hash the signer must sign.
func (p *Permits) handleMessageHash(w http.ResponseWriter, req *http.Request) error {
	var msg Message
	if err := utils.ParseJSON(req.Body, &msg); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	param := permit.Param{
		Signer: msg.Signer,
		Message: permit.Message{
			ContractAddress: msg.ContractAddress,
			Nonce:           msg.Nonce,
			Timestamp:       meter.Timestamp(msg.Timestamp),
			EntryPoint:      msg.EntryPoint,
			Payload:         msg.Payload,
		},
	}
	out := p.node.Call(msg.ContractAddress, "viewMessageHash", codec.Encode(param), meter.Address{}, 0)
	if out.VMErr != nil {
		return utils.RejectError(out.VMErr)
	}
	var hash codec.Hash
	if err := codec.Decode(out.Data, &hash); err != nil {
		return err
	}
	return utils.WriteJSON(w, map[string]string{"hash": meter.Bytes32(hash).String()})
}

func (p *Permits) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("/hash").Methods("POST").HandlerFunc(utils.WrapHandlerFunc(p.handleMessageHash))
}
