// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package block

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/meter-auction/meter"
)

// Header of a block sealed by the sequencer. Each block carries at most one
// transaction. It's immutable.
type Header struct {
	body headerBody

	cache struct {
		id atomic.Value
	}
}

type headerBody struct {
	ParentID    meter.Bytes32
	Timestamp   uint64 // unix milliseconds
	TxID        meter.Bytes32
	StateChange meter.Bytes32
	GasUsed     uint64
}

// GenesisParentID is the parent id of the genesis block, so that genesis is number 0.
func GenesisParentID() (id meter.Bytes32) {
	binary.BigEndian.PutUint32(id[:], ^uint32(0))
	return
}

// NewHeader creates a header.
func NewHeader(parentID meter.Bytes32, timestamp uint64, txID, stateChange meter.Bytes32, gasUsed uint64) *Header {
	return &Header{body: headerBody{
		ParentID:    parentID,
		Timestamp:   timestamp,
		TxID:        txID,
		StateChange: stateChange,
		GasUsed:     gasUsed,
	}}
}

// ParentID returns id of parent block.
func (h *Header) ParentID() meter.Bytes32 { return h.body.ParentID }

// Number returns sequential number of this block.
func (h *Header) Number() uint32 {
	// inferred from parent id
	return Number(h.body.ParentID) + 1
}

// Timestamp returns timestamp of this block in unix milliseconds.
func (h *Header) Timestamp() uint64 { return h.body.Timestamp }

// TxID returns id of the transaction in this block, zero for genesis.
func (h *Header) TxID() meter.Bytes32 { return h.body.TxID }

// StateChange returns digest of the storage changes made by this block.
func (h *Header) StateChange() meter.Bytes32 { return h.body.StateChange }

// GasUsed returns gas used by the transaction.
func (h *Header) GasUsed() uint64 { return h.body.GasUsed }

// ID computes id of block.
func (h *Header) ID() (id meter.Bytes32) {
	if cached := h.cache.id.Load(); cached != nil {
		return cached.(meter.Bytes32)
	}
	defer func() {
		// overwrite first 4 bytes of block hash to block number.
		binary.BigEndian.PutUint32(id[:], h.Number())
		h.cache.id.Store(id)
	}()

	hw := meter.NewBlake2b()
	rlp.Encode(hw, &h.body)
	hw.Sum(id[:0])
	return
}

// EncodeRLP implements rlp.Encoder
func (h *Header) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &h.body)
}

// DecodeRLP implements rlp.Decoder.
func (h *Header) DecodeRLP(s *rlp.Stream) error {
	var body headerBody
	if err := s.Decode(&body); err != nil {
		return err
	}
	*h = Header{body: body}
	return nil
}

func (h *Header) String() string {
	return fmt.Sprintf(`Header(%v):
	Number:         %v
	ParentID:       %v
	Timestamp:      %v
	TxID:           %v
	StateChange:    %v
	GasUsed:        %v`, h.ID(), h.Number(), h.body.ParentID, h.body.Timestamp,
		h.body.TxID, h.body.StateChange, h.body.GasUsed)
}

// Number extract block number from block id.
func Number(blockID meter.Bytes32) uint32 {
	// first 4 bytes are over written by block number (big endian).
	return binary.BigEndian.Uint32(blockID[:])
}
