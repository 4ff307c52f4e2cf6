// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/meterio/meter-auction/block"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/tx"
	"github.com/pkg/errors"
)

// LogDB indexes events and transfers of committed blocks in sqlite.
type LogDB struct {
	path          string
	db            *sql.DB
	driverVersion string
	logger        *slog.Logger
}

// New create or open log db at given path.
func New(path string) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()
	// a memory db lives as long as its only connection
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(eventTableSchema + transferTableSchema); err != nil {
		return nil, errors.Wrap(err, "create schema")
	}

	driverVer, _, _ := sqlite3.Version()
	logger := slog.Default().With("pkg", "logdb")
	logger.Debug("logdb opened", "path", path, "sqlite", driverVer)
	return &LogDB{
		path:          path,
		db:            db,
		driverVersion: driverVer,
		logger:        logger,
	}, nil
}

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	return New(":memory:")
}

// Close close the log db.
func (db *LogDB) Close() error {
	return db.db.Close()
}

func (db *LogDB) Path() string {
	return db.path
}

func (db *LogDB) DriverVersion() string {
	return db.driverVersion
}

// Prepare starts a batch for the given block.
func (db *LogDB) Prepare(header *block.Header) *BlockBatch {
	return &BlockBatch{
		db:     db.db,
		header: header,
		logger: db.logger,
	}
}

// query accumulates a WHERE clause and its arguments.
type query struct {
	stmt strings.Builder
	args []interface{}
}

func newQuery(table string) *query {
	q := &query{}
	q.stmt.WriteString("SELECT * FROM " + table + " WHERE 1")
	return q
}

func (q *query) where(cond string, arg interface{}) {
	q.stmt.WriteString(" AND " + cond + " = ?")
	q.args = append(q.args, arg)
}

func (q *query) rng(r *Range) {
	if r == nil {
		return
	}
	column := "blockNumber"
	if r.Unit == Time {
		column = "blockTime"
	}
	q.stmt.WriteString(" AND " + column + " >= ?")
	q.args = append(q.args, r.From)
	if r.To >= r.From {
		q.stmt.WriteString(" AND " + column + " <= ?")
		q.args = append(q.args, r.To)
	}
}

// group starts the i-th OR-ed criteria group.
func (q *query) group(i int) {
	if i == 0 {
		q.stmt.WriteString(" AND (( 1")
	} else {
		q.stmt.WriteString(" OR ( 1")
	}
}

func (q *query) endGroups(n int) {
	if n > 0 {
		q.stmt.WriteString(")")
	}
}

func (q *query) order(o Order, indexColumn string) {
	dir := "ASC"
	if o == DESC {
		dir = "DESC"
	}
	fmt.Fprintf(&q.stmt, " ORDER BY blockNumber %v, %v %v", dir, indexColumn, dir)
}

func (q *query) page(opts *Options) {
	if opts == nil {
		return
	}
	q.stmt.WriteString(" LIMIT ?, ?")
	q.args = append(q.args, opts.Offset, opts.Limit)
}

// FilterEvents returns events matching filter. A nil filter returns everything.
func (db *LogDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error) {
	if filter == nil {
		filter = &EventFilter{}
	}
	q := newQuery("event")
	q.rng(filter.Range)
	for i, criteria := range filter.CriteriaSet {
		q.group(i)
		if criteria.Address != nil {
			q.where("address", criteria.Address.Bytes())
		}
		for j, topic := range criteria.Topics {
			if topic != nil {
				q.where(fmt.Sprintf("topic%v", j), topic.Bytes())
			}
		}
		q.stmt.WriteString(")")
	}
	q.endGroups(len(filter.CriteriaSet))
	q.order(filter.Order, "eventIndex")
	q.page(filter.Options)
	return db.queryEvents(ctx, q.stmt.String(), q.args...)
}

// FilterTransfers returns transfers matching filter. A nil filter returns everything.
func (db *LogDB) FilterTransfers(ctx context.Context, filter *TransferFilter) ([]*Transfer, error) {
	if filter == nil {
		filter = &TransferFilter{}
	}
	q := newQuery("transfer")
	q.rng(filter.Range)
	if filter.TxID != nil {
		q.where("txID", filter.TxID.Bytes())
	}
	for i, criteria := range filter.CriteriaSet {
		q.group(i)
		if criteria.TxOrigin != nil {
			q.where("txOrigin", criteria.TxOrigin.Bytes())
		}
		if criteria.Sender != nil {
			q.where("sender", criteria.Sender.Bytes())
		}
		if criteria.Recipient != nil {
			q.where("recipient", criteria.Recipient.Bytes())
		}
		if criteria.Token != nil {
			q.where("token", *criteria.Token)
		}
		q.stmt.WriteString(")")
	}
	q.endGroups(len(filter.CriteriaSet))
	q.order(filter.Order, "transferIndex")
	q.page(filter.Options)
	return db.queryTransfers(ctx, q.stmt.String(), q.args...)
}

func (db *LogDB) queryEvents(ctx context.Context, stmt string, args ...interface{}) ([]*Event, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var (
			blockID  []byte
			txID     []byte
			txOrigin []byte
			address  []byte
			topics   [MaxTopics][]byte
			event    = &Event{}
		)
		if err := rows.Scan(
			&blockID,
			&event.Index,
			&event.BlockNumber,
			&event.BlockTime,
			&txID,
			&txOrigin,
			&address,
			&topics[0],
			&topics[1],
			&topics[2],
			&topics[3],
			&topics[4],
			&event.Data,
		); err != nil {
			return nil, err
		}
		event.BlockID = meter.BytesToBytes32(blockID)
		event.TxID = meter.BytesToBytes32(txID)
		event.TxOrigin = meter.BytesToAddress(txOrigin)
		event.Address = meter.BytesToAddress(address)
		for i, topic := range topics {
			if len(topic) > 0 {
				h := meter.BytesToBytes32(topic)
				event.Topics[i] = &h
			}
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (db *LogDB) queryTransfers(ctx context.Context, stmt string, args ...interface{}) ([]*Transfer, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transfers []*Transfer
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var (
			blockID   []byte
			txID      []byte
			txOrigin  []byte
			sender    []byte
			recipient []byte
			amount    []byte
			trans     = &Transfer{}
		)
		if err := rows.Scan(
			&blockID,
			&trans.Index,
			&trans.BlockNumber,
			&trans.BlockTime,
			&txID,
			&txOrigin,
			&sender,
			&recipient,
			&amount,
			&trans.Token,
		); err != nil {
			return nil, err
		}
		trans.BlockID = meter.BytesToBytes32(blockID)
		trans.TxID = meter.BytesToBytes32(txID)
		trans.TxOrigin = meter.BytesToAddress(txOrigin)
		trans.Sender = meter.BytesToAddress(sender)
		trans.Recipient = meter.BytesToAddress(recipient)
		trans.Amount = new(big.Int).SetBytes(amount)
		transfers = append(transfers, trans)
	}
	return transfers, rows.Err()
}

func topicValue(topic *meter.Bytes32) []byte {
	if topic == nil {
		return nil
	}
	return topic.Bytes()
}

// BlockBatch collects the logs of one block and writes them in one sql tx.
type BlockBatch struct {
	db        *sql.DB
	header    *block.Header
	logger    *slog.Logger
	events    []*Event
	transfers []*Transfer
}

func (bb *BlockBatch) execInTx(proc func(*sql.Tx) error) error {
	tx, err := bb.db.Begin()
	if err != nil {
		return err
	}
	if err := proc(tx); err != nil {
		if e := tx.Rollback(); e != nil {
			bb.logger.Error("could not rollback", "err", e)
		}
		return err
	}
	return tx.Commit()
}

// Insert adds the logs of one committed transaction.
func (bb *BlockBatch) Insert(txID meter.Bytes32, txOrigin meter.Address, events tx.Events, transfers tx.Transfers) *BlockBatch {
	for _, event := range events {
		bb.events = append(bb.events, newEvent(bb.header, uint32(len(bb.events)), txID, txOrigin, event))
	}
	for _, transfer := range transfers {
		bb.transfers = append(bb.transfers, newTransfer(bb.header, uint32(len(bb.transfers)), txID, txOrigin, transfer))
	}
	return bb
}

func (bb *BlockBatch) Commit() error {
	err := bb.execInTx(func(tx *sql.Tx) error {
		for _, event := range bb.events {
			if _, err := tx.Exec("INSERT OR REPLACE INTO event(blockID, eventIndex, blockNumber, blockTime, txID, txOrigin, address, topic0, topic1, topic2, topic3, topic4, data) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);",
				event.BlockID.Bytes(),
				event.Index,
				event.BlockNumber,
				event.BlockTime,
				event.TxID.Bytes(),
				event.TxOrigin.Bytes(),
				event.Address.Bytes(),
				topicValue(event.Topics[0]),
				topicValue(event.Topics[1]),
				topicValue(event.Topics[2]),
				topicValue(event.Topics[3]),
				topicValue(event.Topics[4]),
				event.Data,
			); err != nil {
				return err
			}
		}
		for _, transfer := range bb.transfers {
			if _, err := tx.Exec("INSERT OR REPLACE INTO transfer(blockID, transferIndex, blockNumber, blockTime, txID, txOrigin, sender, recipient, amount, token) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);",
				transfer.BlockID.Bytes(),
				transfer.Index,
				transfer.BlockNumber,
				transfer.BlockTime,
				transfer.TxID.Bytes(),
				transfer.TxOrigin.Bytes(),
				transfer.Sender.Bytes(),
				transfer.Recipient.Bytes(),
				transfer.Amount.Bytes(),
				transfer.Token,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.WithMessagef(err, "commit logs of block %v", bb.header.Number())
	}
	return nil
}
