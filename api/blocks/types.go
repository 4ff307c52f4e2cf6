// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package blocks

import (
	"github.com/meterio/meter-auction/block"
	"github.com/meterio/meter-auction/meter"
)

//Block block
type Block struct {
	Number      uint32        `json:"number"`
	ID          meter.Bytes32 `json:"id"`
	ParentID    meter.Bytes32 `json:"parentID"`
	Timestamp   uint64        `json:"timestamp"`
	GasUsed     uint64        `json:"gasUsed"`
	StateChange meter.Bytes32 `json:"stateChange"`
	// zero for the genesis block
	TxID meter.Bytes32 `json:"txID"`
}

func convertBlock(h *block.Header) *Block {
	if h == nil {
		return nil
	}
	return &Block{
		Number:      h.Number(),
		ID:          h.ID(),
		ParentID:    h.ParentID(),
		Timestamp:   h.Timestamp(),
		GasUsed:     h.GasUsed(),
		StateChange: h.StateChange(),
		TxID:        h.TxID(),
	}
}
