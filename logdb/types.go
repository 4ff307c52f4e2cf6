// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"math/big"

	"github.com/meterio/meter-auction/block"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/tx"
)

// MaxTopics is the number of topics indexed per event.
const MaxTopics = 5

// Event is a contract event emitted by a committed transaction.
type Event struct {
	BlockID     meter.Bytes32
	Index       uint32
	BlockNumber uint32
	BlockTime   uint64
	TxID        meter.Bytes32
	TxOrigin    meter.Address
	Address     meter.Address // emitting contract
	Topics      [MaxTopics]*meter.Bytes32
	Data        []byte
}

func newEvent(header *block.Header, index uint32, txID meter.Bytes32, txOrigin meter.Address, txEvent *tx.Event) *Event {
	ev := &Event{
		BlockID:     header.ID(),
		Index:       index,
		BlockNumber: header.Number(),
		BlockTime:   header.Timestamp(),
		TxID:        txID,
		TxOrigin:    txOrigin,
		Address:     txEvent.Address,
		Data:        txEvent.Data,
	}
	for i := 0; i < len(txEvent.Topics) && i < MaxTopics; i++ {
		topic := txEvent.Topics[i]
		ev.Topics[i] = &topic
	}
	return ev
}

// Transfer is a token movement recorded by the ledger.
type Transfer struct {
	BlockID     meter.Bytes32
	Index       uint32
	BlockNumber uint32
	BlockTime   uint64
	TxID        meter.Bytes32
	TxOrigin    meter.Address
	Sender      meter.Address
	Recipient   meter.Address
	Amount      *big.Int
	Token       uint32
}

func newTransfer(header *block.Header, index uint32, txID meter.Bytes32, txOrigin meter.Address, transfer *tx.Transfer) *Transfer {
	return &Transfer{
		BlockID:     header.ID(),
		Index:       index,
		BlockNumber: header.Number(),
		BlockTime:   header.Timestamp(),
		TxID:        txID,
		TxOrigin:    txOrigin,
		Sender:      transfer.Sender,
		Recipient:   transfer.Recipient,
		Amount:      transfer.Amount,
		Token:       transfer.Token,
	}
}

type RangeType string

const (
	Block RangeType = "block"
	Time  RangeType = "time"
)

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

type Range struct {
	Unit RangeType
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

type EventCriteria struct {
	Address *meter.Address
	Topics  [MaxTopics]*meter.Bytes32
}

// EventFilter selects events. Criteria are OR-ed, fields within one criteria are AND-ed.
type EventFilter struct {
	CriteriaSet []*EventCriteria
	Range       *Range
	Options     *Options
	Order       Order // default asc
}

type TransferCriteria struct {
	TxOrigin  *meter.Address // who sent the transaction
	Sender    *meter.Address // whose tokens moved
	Recipient *meter.Address
	Token     *uint32
}

type TransferFilter struct {
	TxID        *meter.Bytes32
	CriteriaSet []*TransferCriteria
	Range       *Range
	Options     *Options
	Order       Order // default asc
}
