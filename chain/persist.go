// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chain

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/meter-auction/block"
	"github.com/meterio/meter-auction/kv"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/tx"
)

var (
	headerPrefix  = []byte("b") // (prefix, block id) -> header
	txPrefix      = []byte("t") // (prefix, tx id) -> tx
	receiptPrefix = []byte("r") // (prefix, tx id) -> receipt
	hashKeyPrefix = []byte("n") // (prefix, block num) -> block id

	bestBlockKey = []byte("best") // best block id
)

func numberAsKey(num uint32) []byte {
	var key [4]byte
	binary.BigEndian.PutUint32(key[:], num)
	return key[:]
}

func saveRLP(w kv.Putter, key []byte, val interface{}) error {
	data, err := rlp.EncodeToBytes(val)
	if err != nil {
		return err
	}
	return w.Put(key, data)
}

func loadRLP(r kv.Getter, key []byte, val interface{}) error {
	data, err := r.Get(key)
	if err != nil {
		return err
	}
	return rlp.DecodeBytes(data, val)
}

func loadBestBlockID(r kv.Getter) (meter.Bytes32, error) {
	data, err := r.Get(bestBlockKey)
	if err != nil {
		return meter.Bytes32{}, err
	}
	return meter.BytesToBytes32(data), nil
}

func saveBestBlockID(w kv.Putter, id meter.Bytes32) error {
	return w.Put(bestBlockKey, id[:])
}

func loadBlockHash(r kv.Getter, num uint32) (meter.Bytes32, error) {
	data, err := r.Get(append(hashKeyPrefix, numberAsKey(num)...))
	if err != nil {
		return meter.Bytes32{}, err
	}
	return meter.BytesToBytes32(data), nil
}

func loadHeader(r kv.Getter, id meter.Bytes32) (*block.Header, error) {
	var header block.Header
	if err := loadRLP(r, append(headerPrefix, id[:]...), &header); err != nil {
		return nil, err
	}
	return &header, nil
}

// saveHeader saves the header and indexes it by number.
func saveHeader(w kv.Putter, header *block.Header) error {
	id := header.ID()
	if err := saveRLP(w, append(headerPrefix, id[:]...), header); err != nil {
		return err
	}
	return w.Put(append(hashKeyPrefix, numberAsKey(header.Number())...), id[:])
}

func loadTransaction(r kv.Getter, txID meter.Bytes32) (*tx.Transaction, error) {
	var trx tx.Transaction
	if err := loadRLP(r, append(txPrefix, txID[:]...), &trx); err != nil {
		return nil, err
	}
	return &trx, nil
}

func saveTransaction(w kv.Putter, trx *tx.Transaction) error {
	id := trx.ID()
	return saveRLP(w, append(txPrefix, id[:]...), trx)
}

func loadReceipt(r kv.Getter, txID meter.Bytes32) (*tx.Receipt, error) {
	var receipt tx.Receipt
	if err := loadRLP(r, append(receiptPrefix, txID[:]...), &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

func saveReceipt(w kv.Putter, receipt *tx.Receipt) error {
	return saveRLP(w, append(receiptPrefix, receipt.TxID[:]...), receipt)
}
