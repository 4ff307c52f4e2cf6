// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"io"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/meter-auction/meter"
)

// Receipt is the outcome of a transaction.
type Receipt struct {
	TxID        meter.Bytes32
	BlockID     meter.Bytes32
	BlockNumber uint32
	BlockTime   uint64
	Origin      meter.Address
	GasUsed     uint64
	Reverted    bool
	RejectCode  int32
	RejectName  string
	ReturnValue []byte
	Events      Events
	Transfers   Transfers
}

type receiptBody struct {
	TxID        meter.Bytes32
	BlockID     meter.Bytes32
	BlockNumber uint32
	BlockTime   uint64
	Origin      meter.Address
	GasUsed     uint64
	Reverted    bool
	RejectCode  uint32 // two's complement of the signed code
	RejectName  string
	ReturnValue []byte
	Events      Events
	Transfers   Transfers
}

// EncodeRLP implements rlp.Encoder
func (r *Receipt) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &receiptBody{
		r.TxID, r.BlockID, r.BlockNumber, r.BlockTime, r.Origin, r.GasUsed,
		r.Reverted, uint32(r.RejectCode), r.RejectName, r.ReturnValue, r.Events, r.Transfers,
	})
}

// DecodeRLP implements rlp.Decoder
func (r *Receipt) DecodeRLP(s *rlp.Stream) error {
	var b receiptBody
	if err := s.Decode(&b); err != nil {
		return err
	}
	*r = Receipt{
		b.TxID, b.BlockID, b.BlockNumber, b.BlockTime, b.Origin, b.GasUsed,
		b.Reverted, int32(b.RejectCode), b.RejectName, b.ReturnValue, b.Events, b.Transfers,
	}
	return nil
}
