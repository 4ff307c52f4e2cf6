// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package transactions

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/meter-auction/block"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/tx"
	"github.com/pkg/errors"
)

// RawTx is an rlp encoded signed transaction.
type RawTx struct {
	Raw string `json:"raw"`
}

func (rtx *RawTx) decode() (*tx.Transaction, error) {
	data, err := hexutil.Decode(rtx.Raw)
	if err != nil {
		return nil, err
	}
	var trx *tx.Transaction
	if err := rlp.DecodeBytes(data, &trx); err != nil {
		return nil, err
	}
	return trx, nil
}

// UnSignedTx is a transaction without signature, answered with its signing hash.
type UnSignedTx struct {
	ChainTag   uint8                `json:"chainTag"`
	Nonce      math.HexOrDecimal64 `json:"nonce"`
	Expiration math.HexOrDecimal64 `json:"expiration"`
	Gas        math.HexOrDecimal64 `json:"gas"`
	Origin     meter.Address        `json:"origin"`
	To         meter.Address        `json:"to"`
	Entrypoint string               `json:"entrypoint"`
	Param      hexutil.Bytes        `json:"param"`
}

func (ustx *UnSignedTx) decode() (*tx.Transaction, error) {
	if ustx.Entrypoint == "" {
		return nil, errors.New("entrypoint: empty")
	}
	return new(tx.Builder).
		ChainTag(ustx.ChainTag).
		Nonce(uint64(ustx.Nonce)).
		Expiration(uint64(ustx.Expiration)).
		Gas(uint64(ustx.Gas)).
		Origin(ustx.Origin).
		Invoke(ustx.To, ustx.Entrypoint, ustx.Param).
		Build(), nil
}

// Transaction is the JSON form of a committed transaction.
type Transaction struct {
	ID         meter.Bytes32 `json:"id"`
	ChainTag   uint8         `json:"chainTag"`
	Nonce      uint64        `json:"nonce"`
	Expiration uint64        `json:"expiration"`
	Gas        uint64        `json:"gas"`
	Origin     meter.Address `json:"origin"`
	To         meter.Address `json:"to"`
	Entrypoint string        `json:"entrypoint"`
	Param      hexutil.Bytes `json:"param"`
	Signature  hexutil.Bytes `json:"signature"`
	Meta       TxMeta        `json:"meta"`
}

// TxMeta locates a transaction.
type TxMeta struct {
	BlockID        meter.Bytes32 `json:"blockID"`
	BlockNumber    uint32        `json:"blockNumber"`
	BlockTimestamp uint64        `json:"blockTimestamp"`
}

// LogMeta locates an event or transfer.
type LogMeta struct {
	BlockID        meter.Bytes32 `json:"blockID"`
	BlockNumber    uint32        `json:"blockNumber"`
	BlockTimestamp uint64        `json:"blockTimestamp"`
	TxID           meter.Bytes32 `json:"txID"`
	TxOrigin       meter.Address `json:"txOrigin"`
}

func convertTransaction(trx *tx.Transaction, header *block.Header) *Transaction {
	return &Transaction{
		ID:         trx.ID(),
		ChainTag:   trx.ChainTag(),
		Nonce:      trx.Nonce(),
		Expiration: trx.Expiration(),
		Gas:        trx.Gas(),
		Origin:     trx.Origin(),
		To:         trx.To(),
		Entrypoint: trx.Entrypoint(),
		Param:      trx.Param(),
		Signature:  trx.Signature(),
		Meta: TxMeta{
			BlockID:        header.ID(),
			BlockNumber:    header.Number(),
			BlockTimestamp: header.Timestamp(),
		},
	}
}

// Event is an event of a receipt.
type Event struct {
	Address meter.Address   `json:"address"`
	Topics  []meter.Bytes32 `json:"topics"`
	Data    hexutil.Bytes   `json:"data"`
}

// Transfer is a token transfer of a receipt.
type Transfer struct {
	Sender    meter.Address         `json:"sender"`
	Recipient meter.Address         `json:"recipient"`
	Amount    *math.HexOrDecimal256 `json:"amount"`
	Token     uint32                `json:"token"`
}

// Receipt is the JSON form of tx.Receipt.
type Receipt struct {
	TxID        meter.Bytes32 `json:"txID"`
	Origin      meter.Address `json:"origin"`
	GasUsed     uint64        `json:"gasUsed"`
	Reverted    bool          `json:"reverted"`
	RejectCode  int32         `json:"rejectCode,omitempty"`
	RejectName  string        `json:"rejectName,omitempty"`
	ReturnValue hexutil.Bytes `json:"returnValue"`
	Events      []*Event      `json:"events"`
	Transfers   []*Transfer   `json:"transfers"`
	Meta        TxMeta        `json:"meta"`
}

// ConvertReceipt converts a committed receipt to its JSON form.
func ConvertReceipt(receipt *tx.Receipt) *Receipt {
	r := &Receipt{
		TxID:        receipt.TxID,
		Origin:      receipt.Origin,
		GasUsed:     receipt.GasUsed,
		Reverted:    receipt.Reverted,
		RejectCode:  receipt.RejectCode,
		RejectName:  receipt.RejectName,
		ReturnValue: receipt.ReturnValue,
		Events:      make([]*Event, 0, len(receipt.Events)),
		Transfers:   make([]*Transfer, 0, len(receipt.Transfers)),
		Meta: TxMeta{
			BlockID:        receipt.BlockID,
			BlockNumber:    receipt.BlockNumber,
			BlockTimestamp: receipt.BlockTime,
		},
	}
	for _, e := range receipt.Events {
		r.Events = append(r.Events, &Event{Address: e.Address, Topics: e.Topics, Data: e.Data})
	}
	for _, t := range receipt.Transfers {
		v := math.HexOrDecimal256(*t.Amount)
		r.Transfers = append(r.Transfers, &Transfer{Sender: t.Sender, Recipient: t.Recipient, Amount: &v, Token: t.Token})
	}
	return r
}
