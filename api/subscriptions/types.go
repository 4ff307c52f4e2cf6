// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/meterio/meter-auction/api/transactions"
	"github.com/meterio/meter-auction/block"
	"github.com/meterio/meter-auction/eventbus"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/tx"
)

//BlockMessage block piped by websocket
type BlockMessage struct {
	Number      uint32        `json:"number"`
	ID          meter.Bytes32 `json:"id"`
	ParentID    meter.Bytes32 `json:"parentID"`
	Timestamp   uint64        `json:"timestamp"`
	GasUsed     uint64        `json:"gasUsed"`
	StateChange meter.Bytes32 `json:"stateChange"`
	TxID        meter.Bytes32 `json:"txID"`
}

func convertBlock(h *block.Header) *BlockMessage {
	return &BlockMessage{
		Number:      h.Number(),
		ID:          h.ID(),
		ParentID:    h.ParentID(),
		Timestamp:   h.Timestamp(),
		GasUsed:     h.GasUsed(),
		StateChange: h.StateChange(),
		TxID:        h.TxID(),
	}
}

func logMeta(h *block.Header, receipt *tx.Receipt) transactions.LogMeta {
	return transactions.LogMeta{
		BlockID:        h.ID(),
		BlockNumber:    h.Number(),
		BlockTimestamp: h.Timestamp(),
		TxID:           receipt.TxID,
		TxOrigin:       receipt.Origin,
	}
}

//EventMessage event piped by websocket
type EventMessage struct {
	Name    string               `json:"name"`
	Address meter.Address        `json:"address"`
	Topics  []meter.Bytes32      `json:"topics"`
	Data    hexutil.Bytes        `json:"data"`
	Meta    transactions.LogMeta `json:"meta"`
}

func convertEvent(h *block.Header, receipt *tx.Receipt, event *tx.Event) *EventMessage {
	return &EventMessage{
		Name:    eventbus.EventName(event),
		Address: event.Address,
		Topics:  event.Topics,
		Data:    event.Data,
		Meta:    logMeta(h, receipt),
	}
}

//TransferMessage transfer piped by websocket
type TransferMessage struct {
	Sender    meter.Address         `json:"sender"`
	Recipient meter.Address         `json:"recipient"`
	Amount    *math.HexOrDecimal256 `json:"amount"`
	Token     uint32                `json:"token"`
	Meta      transactions.LogMeta  `json:"meta"`
}

func convertTransfer(h *block.Header, receipt *tx.Receipt, transfer *tx.Transfer) *TransferMessage {
	v := math.HexOrDecimal256(*transfer.Amount)
	return &TransferMessage{
		Sender:    transfer.Sender,
		Recipient: transfer.Recipient,
		Amount:    &v,
		Token:     transfer.Token,
		Meta:      logMeta(h, receipt),
	}
}

// EventFilter matches events by contract, name and topics. Empty fields match anything.
type EventFilter struct {
	Address *meter.Address
	Name    string
	Topic0  *meter.Bytes32
	Topic1  *meter.Bytes32
	Topic2  *meter.Bytes32
	Topic3  *meter.Bytes32
	Topic4  *meter.Bytes32
}

func (ef *EventFilter) Match(event *tx.Event) bool {
	if ef.Address != nil && *ef.Address != event.Address {
		return false
	}
	if ef.Name != "" && eventbus.EventName(event) != ef.Name {
		return false
	}
	matchTopic := func(topic *meter.Bytes32, index int) bool {
		if topic != nil {
			if len(event.Topics) <= index {
				return false
			}
			if *topic != event.Topics[index] {
				return false
			}
		}
		return true
	}
	return matchTopic(ef.Topic0, 0) &&
		matchTopic(ef.Topic1, 1) &&
		matchTopic(ef.Topic2, 2) &&
		matchTopic(ef.Topic3, 3) &&
		matchTopic(ef.Topic4, 4)
}

// TransferFilter matches transfers. Empty fields match anything.
type TransferFilter struct {
	TxOrigin  *meter.Address
	Sender    *meter.Address
	Recipient *meter.Address
	Token     *uint32
}

func (tf *TransferFilter) Match(receipt *tx.Receipt, transfer *tx.Transfer) bool {
	if tf.TxOrigin != nil && *tf.TxOrigin != receipt.Origin {
		return false
	}
	if tf.Sender != nil && *tf.Sender != transfer.Sender {
		return false
	}
	if tf.Recipient != nil && *tf.Recipient != transfer.Recipient {
		return false
	}
	if tf.Token != nil && *tf.Token != transfer.Token {
		return false
	}
	return true
}
