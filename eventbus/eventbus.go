// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package eventbus exports committed contract events to external brokers.
package eventbus

import (
	"context"
	"encoding/json"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/tx"
	"github.com/pkg/errors"
)

// knownEvents are the event names emitted by the builtin contracts.
var knownEvents = []string{
	"AddItem", "Bid", "Finalize",
	"Transfer", "Mint", "UpdateOperator",
	"Nonce",
}

var topicNames = func() map[meter.Bytes32]string {
	m := make(map[meter.Bytes32]string, len(knownEvents))
	for _, name := range knownEvents {
		m[tx.EventTopic(name)] = name
	}
	return m
}()

// EventName resolves the name of an event from its first topic.
func EventName(ev *tx.Event) string {
	if len(ev.Topics) == 0 {
		return "unknown"
	}
	if name, ok := topicNames[ev.Topics[0]]; ok {
		return name
	}
	return "unknown"
}

// Message is the JSON payload published for one event.
type Message struct {
	Name        string          `json:"name"`
	Address     meter.Address   `json:"address"`
	Topics      []meter.Bytes32 `json:"topics"`
	Data        hexutil.Bytes   `json:"data"`
	TxID        meter.Bytes32   `json:"txID"`
	TxOrigin    meter.Address   `json:"txOrigin"`
	BlockID     meter.Bytes32   `json:"blockID"`
	BlockNumber uint32          `json:"blockNumber"`
	BlockTime   uint64          `json:"blockTime"`
}

// Meta locates an event on chain.
type Meta struct {
	TxID        meter.Bytes32
	TxOrigin    meter.Address
	BlockID     meter.Bytes32
	BlockNumber uint32
	BlockTime   uint64
}

// NewMessage builds the message of ev.
func NewMessage(ev *tx.Event, meta Meta) *Message {
	return &Message{
		Name:        EventName(ev),
		Address:     ev.Address,
		Topics:      ev.Topics,
		Data:        ev.Data,
		TxID:        meta.TxID,
		TxOrigin:    meta.TxOrigin,
		BlockID:     meta.BlockID,
		BlockNumber: meta.BlockNumber,
		BlockTime:   meta.BlockTime,
	}
}

func (m *Message) encode() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, errors.Wrap(err, "encode message")
	}
	return data, nil
}

// Publisher sends event messages to a broker.
type Publisher interface {
	Publish(ctx context.Context, msg *Message) error
	Close() error
}

// Multi fans a message out to every publisher, returning the first error.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, msg *Message) error {
	var first error
	for _, p := range m {
		if err := p.Publish(ctx, msg); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m Multi) Close() error {
	var first error
	for _, p := range m {
		if err := p.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
