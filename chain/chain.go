// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chain

import (
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/meterio/meter-auction/block"
	"github.com/meterio/meter-auction/co"
	"github.com/meterio/meter-auction/kv"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/tx"
	"github.com/pkg/errors"
)

const receiptsCacheLimit = 512

var (
	errNotFound     = errors.New("not found")
	errNotNextBlock = errors.New("block is not next to the best")
)

// CommitFunc persists the state changes of a block together with the
// chain records put by extra, atomically.
type CommitFunc func(extra func(kv.Putter) error) error

// Chain is the linear sequence of blocks of a single sequencing node.
// Each block after genesis carries exactly one transaction.
type Chain struct {
	kv       kv.Store
	genesis  *block.Header
	best     *block.Header
	receipts *lru.Cache
	rw       sync.RWMutex
	tick     co.Signal
	logger   *slog.Logger
}

// New create an instance of Chain. If the store holds no chain yet, the
// genesis header is written through commit.
func New(store kv.Store, genesis *block.Header, commit CommitFunc) (*Chain, error) {
	if genesis.Number() != 0 {
		return nil, errors.New("genesis number != 0")
	}
	logger := slog.Default().With("pkg", "chain")
	genesisID := genesis.ID()

	var best *block.Header
	bestID, err := loadBestBlockID(store)
	if err != nil {
		if !store.IsNotFound(err) {
			return nil, err
		}
		// no genesis yet
		extra := func(w kv.Putter) error {
			if err := saveHeader(w, genesis); err != nil {
				return err
			}
			return saveBestBlockID(w, genesisID)
		}
		if commit == nil {
			batch := store.NewBatch()
			if err := extra(batch); err != nil {
				return nil, err
			}
			err = batch.Write()
		} else {
			err = commit(extra)
		}
		if err != nil {
			return nil, errors.WithMessage(err, "write genesis")
		}
		best = genesis
		logger.Info("genesis written", "id", genesisID)
	} else {
		existGenesisID, err := loadBlockHash(store, 0)
		if err != nil {
			return nil, err
		}
		if existGenesisID != genesisID {
			return nil, errors.New("genesis mismatch")
		}
		if best, err = loadHeader(store, bestID); err != nil {
			return nil, errors.WithMessage(err, "load best block")
		}
	}
	bestHeightGauge.Set(float64(best.Number()))

	receipts, _ := lru.New(receiptsCacheLimit)
	return &Chain{
		kv:       store,
		genesis:  genesis,
		best:     best,
		receipts: receipts,
		logger:   logger,
	}, nil
}

// GenesisBlock returns the genesis header.
func (c *Chain) GenesisBlock() *block.Header {
	return c.genesis
}

// BestBlock returns the newest block on chain.
func (c *Chain) BestBlock() *block.Header {
	c.rw.RLock()
	defer c.rw.RUnlock()
	return c.best
}

// AddBlock appends header, the transaction it carries and its receipt. The
// chain records are committed by commit in the same batch as the state.
func (c *Chain) AddBlock(header *block.Header, trx *tx.Transaction, receipt *tx.Receipt, commit CommitFunc) error {
	c.rw.Lock()
	defer c.rw.Unlock()

	if header.ParentID() != c.best.ID() {
		return errNotNextBlock
	}
	id := header.ID()
	err := commit(func(w kv.Putter) error {
		if err := saveHeader(w, header); err != nil {
			return err
		}
		if err := saveTransaction(w, trx); err != nil {
			return err
		}
		if err := saveReceipt(w, receipt); err != nil {
			return err
		}
		return saveBestBlockID(w, id)
	})
	if err != nil {
		return err
	}
	c.receipts.Add(receipt.TxID, receipt)
	c.best = header
	bestHeightGauge.Set(float64(header.Number()))
	c.tick.Broadcast()
	c.logger.Debug("block added", "number", header.Number(), "id", id)
	return nil
}

// GetBlockHeader get block header by block id.
func (c *Chain) GetBlockHeader(id meter.Bytes32) (*block.Header, error) {
	return loadHeader(c.kv, id)
}

// GetTrunkBlockHeader get block header by number.
func (c *Chain) GetTrunkBlockHeader(num uint32) (*block.Header, error) {
	if num > c.BestBlock().Number() {
		return nil, errNotFound
	}
	id, err := loadBlockHash(c.kv, num)
	if err != nil {
		return nil, err
	}
	return loadHeader(c.kv, id)
}

// GetTransaction get a committed transaction by id.
func (c *Chain) GetTransaction(txID meter.Bytes32) (*tx.Transaction, error) {
	return loadTransaction(c.kv, txID)
}

// GetTransactionReceipt get the receipt of a committed transaction.
func (c *Chain) GetTransactionReceipt(txID meter.Bytes32) (*tx.Receipt, error) {
	if cached, ok := c.receipts.Get(txID); ok {
		return cached.(*tx.Receipt), nil
	}
	receipt, err := loadReceipt(c.kv, txID)
	if err != nil {
		return nil, err
	}
	c.receipts.Add(txID, receipt)
	return receipt, nil
}

// IsNotFound returns if an error means not found.
func (c *Chain) IsNotFound(err error) bool {
	return err == errNotFound || c.kv.IsNotFound(err)
}

// NewTicker create a signal Waiter to receive event of head block change.
func (c *Chain) NewTicker() co.Waiter {
	return c.tick.NewWaiter()
}

// BlockReader reads blocks committed after a position.
type BlockReader interface {
	Read() ([]*block.Header, error)
}

type readBlock func() ([]*block.Header, error)

func (r readBlock) Read() ([]*block.Header, error) {
	return r()
}

// NewBlockReader returns a reader of the blocks after position, at most one
// batch per Read, advancing the position each time.
func (c *Chain) NewBlockReader(position meter.Bytes32) BlockReader {
	const batch = 32
	return readBlock(func() ([]*block.Header, error) {
		best := c.BestBlock()
		num := block.Number(position)
		if position == best.ID() || num >= best.Number() {
			return nil, nil
		}
		var headers []*block.Header
		for n := num + 1; n <= best.Number() && len(headers) < batch; n++ {
			h, err := c.GetTrunkBlockHeader(n)
			if err != nil {
				return nil, err
			}
			headers = append(headers, h)
		}
		if len(headers) > 0 {
			position = headers[len(headers)-1].ID()
		}
		return headers, nil
	})
}
