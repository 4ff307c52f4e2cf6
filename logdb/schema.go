// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

const eventTableSchema = `CREATE TABLE IF NOT EXISTS event (
	blockID BLOB(32) NOT NULL,
	eventIndex INTEGER NOT NULL,
	blockNumber INTEGER NOT NULL,
	blockTime INTEGER NOT NULL,
	txID BLOB(32) NOT NULL,
	txOrigin BLOB(20) NOT NULL,
	address BLOB(20) NOT NULL,
	topic0 BLOB(32),
	topic1 BLOB(32),
	topic2 BLOB(32),
	topic3 BLOB(32),
	topic4 BLOB(32),
	data BLOB NOT NULL,
	PRIMARY KEY (blockID, eventIndex)
);
CREATE INDEX IF NOT EXISTS eventIndex_address ON event(address);
CREATE INDEX IF NOT EXISTS eventIndex_blockNumber ON event(blockNumber);
CREATE INDEX IF NOT EXISTS eventIndex_topic0 ON event(topic0);
`

const transferTableSchema = `CREATE TABLE IF NOT EXISTS transfer (
	blockID BLOB(32) NOT NULL,
	transferIndex INTEGER NOT NULL,
	blockNumber INTEGER NOT NULL,
	blockTime INTEGER NOT NULL,
	txID BLOB(32) NOT NULL,
	txOrigin BLOB(20) NOT NULL,
	sender BLOB(20) NOT NULL,
	recipient BLOB(20) NOT NULL,
	amount BLOB(32) NOT NULL,
	token INTEGER NOT NULL,
	PRIMARY KEY (blockID, transferIndex)
);
CREATE INDEX IF NOT EXISTS transferIndex_sender ON transfer(sender);
CREATE INDEX IF NOT EXISTS transferIndex_recipient ON transfer(recipient);
CREATE INDEX IF NOT EXISTS transferIndex_blockNumber ON transfer(blockNumber);
`
