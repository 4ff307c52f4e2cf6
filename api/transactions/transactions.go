// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package transactions

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/meterio/meter-auction/api/utils"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/node"
	"github.com/meterio/meter-auction/runtime"
	"github.com/meterio/meter-auction/tx"
	"github.com/pkg/errors"
)

const (
	RecentTxLimit = 10
)

type Transactions struct {
	node *node.Node
}

func New(node *node.Node) *Transactions {
	return &Transactions{
		node,
	}
}

func hasKey(m map[string]interface{}, key string) bool {
	_, found := m[key]
	return found
}

// isBadTx reports errors caused by the transaction itself.
func isBadTx(err error) bool {
	switch err {
	case tx.ErrNotSigned, tx.ErrBadSignature,
		runtime.ErrOriginNotRegistered, runtime.ErrIntrinsicGas, runtime.ErrExpired,
		node.ErrChainTagMismatch:
		return true
	}
	return false
}

func (t *Transactions) handleSendTransaction(w http.ResponseWriter, req *http.Request) error {
	data, err := io.ReadAll(req.Body)
	if err != nil {
		return err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if m == nil {
		return utils.BadRequest(errors.New("body: empty body"))
	}
	reader := bytes.NewReader(data)
	if hasKey(m, "raw") {
		var rawTx *RawTx
		if err := utils.ParseJSON(reader, &rawTx); err != nil {
			return utils.BadRequest(errors.WithMessage(err, "body"))
		}
		trx, err := rawTx.decode()
		if err != nil {
			return utils.BadRequest(errors.WithMessage(err, "raw"))
		}
		receipt, err := t.node.Submit(trx)
		if err != nil {
			if isBadTx(err) {
				return utils.BadRequest(err)
			}
			if err == node.ErrKnownTx {
				return utils.Forbidden(err)
			}
			return err
		}
		return utils.WriteJSON(w, ConvertReceipt(receipt))
	}

	var ustx *UnSignedTx
	if err := utils.ParseJSON(reader, &ustx); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	trx, err := ustx.decode()
	if err != nil {
		return utils.BadRequest(err)
	}
	return utils.WriteJSON(w, map[string]string{
		"signingHash": trx.SigningHash().String(),
	})
}

func (t *Transactions) parseID(req *http.Request) (meter.Bytes32, error) {
	txID, err := meter.ParseBytes32(mux.Vars(req)["id"])
	if err != nil {
		return meter.Bytes32{}, utils.BadRequest(errors.WithMessage(err, "id"))
	}
	return txID, nil
}

func (t *Transactions) handleGetTransactionByID(w http.ResponseWriter, req *http.Request) error {
	txID, err := t.parseID(req)
	if err != nil {
		return err
	}
	c := t.node.Chain()
	trx, err := c.GetTransaction(txID)
	if err != nil {
		if c.IsNotFound(err) {
			return utils.WriteJSON(w, nil)
		}
		return err
	}
	receipt, err := c.GetTransactionReceipt(txID)
	if err != nil {
		return err
	}
	header, err := c.GetBlockHeader(receipt.BlockID)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertTransaction(trx, header))
}

func (t *Transactions) handleGetTransactionReceiptByID(w http.ResponseWriter, req *http.Request) error {
	txID, err := t.parseID(req)
	if err != nil {
		return err
	}
	c := t.node.Chain()
	receipt, err := c.GetTransactionReceipt(txID)
	if err != nil {
		if c.IsNotFound(err) {
			return utils.WriteJSON(w, nil)
		}
		return err
	}
	return utils.WriteJSON(w, ConvertReceipt(receipt))
}

func (t *Transactions) handleGetRecentTransactions(w http.ResponseWriter, req *http.Request) error {
	c := t.node.Chain()
	recentTxs := make([]*Transaction, 0, RecentTxLimit)
	header := c.BestBlock()
	for header.Number() > 0 && len(recentTxs) < RecentTxLimit {
		trx, err := c.GetTransaction(header.TxID())
		if err != nil {
			return err
		}
		recentTxs = append(recentTxs, convertTransaction(trx, header))
		if header, err = c.GetBlockHeader(header.ParentID()); err != nil {
			return err
		}
	}
	return utils.WriteJSON(w, recentTxs)
}

func (t *Transactions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods("POST").HandlerFunc(utils.WrapHandlerFunc(t.handleSendTransaction))
	sub.Path("/recent").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(t.handleGetRecentTransactions))
	sub.Path("/{id}").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(t.handleGetTransactionByID))
	sub.Path("/{id}/receipt").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(t.handleGetTransactionReceiptByID))
}
