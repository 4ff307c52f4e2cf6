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

type blockReader struct {
	chain       *chain.Chain
	blockReader chain.BlockReader
}

func newBlockReader(chain *chain.Chain, position meter.Bytes32) *blockReader {
	return &blockReader{
		chain:       chain,
		blockReader: chain.NewBlockReader(position),
	}
}

func (br *blockReader) Read() ([]interface{}, bool, error) {
	headers, err := br.blockReader.Read()
	if err != nil {
		return nil, false, err
	}
	var msgs []interface{}
	for _, h := range headers {
		msgs = append(msgs, convertBlock(h))
	}
	return msgs, len(headers) > 0, nil
}

// receiptReader walks the receipts of committed blocks. Reverted receipts
// carry no effects and are skipped.
type receiptReader struct {
	chain       *chain.Chain
	blockReader chain.BlockReader
}

func (rr *receiptReader) read(visit func(h *block.Header, receipt *tx.Receipt)) (bool, error) {
	headers, err := rr.blockReader.Read()
	if err != nil {
		return false, err
	}
	for _, h := range headers {
		if h.TxID().IsZero() {
			continue
		}
		receipt, err := rr.chain.GetTransactionReceipt(h.TxID())
		if err != nil {
			return false, err
		}
		if !receipt.Reverted {
			visit(h, receipt)
		}
	}
	return len(headers) > 0, nil
}
