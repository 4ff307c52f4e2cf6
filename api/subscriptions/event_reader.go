// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"github.com/meterio/meter-auction/block"
	"github.com/meterio/meter-auction/chain"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/tx"
)

type eventReader struct {
	receiptReader
	filter *EventFilter
}

func newEventReader(chain *chain.Chain, position meter.Bytes32, filter *EventFilter) *eventReader {
	return &eventReader{
		receiptReader: receiptReader{chain, chain.NewBlockReader(position)},
		filter:        filter,
	}
}

func (er *eventReader) Read() ([]interface{}, bool, error) {
	var msgs []interface{}
	hasMore, err := er.read(func(h *block.Header, receipt *tx.Receipt) {
		for _, event := range receipt.Events {
			if er.filter.Match(event) {
				msgs = append(msgs, convertEvent(h, receipt, event))
			}
		}
	})
	if err != nil {
		return nil, false, err
	}
	return msgs, hasMore, nil
}

type transferReader struct {
	receiptReader
	filter *TransferFilter
}

func newTransferReader(chain *chain.Chain, position meter.Bytes32, filter *TransferFilter) *transferReader {
	return &transferReader{
		receiptReader: receiptReader{chain, chain.NewBlockReader(position)},
		filter:        filter,
	}
}

func (tr *transferReader) Read() ([]interface{}, bool, error) {
	var msgs []interface{}
	hasMore, err := tr.read(func(h *block.Header, receipt *tx.Receipt) {
		for _, transfer := range receipt.Transfers {
			if tr.filter.Match(receipt, transfer) {
				msgs = append(msgs, convertTransfer(h, receipt, transfer))
			}
		}
	})
	if err != nil {
		return nil, false, err
	}
	return msgs, hasMore, nil
}
