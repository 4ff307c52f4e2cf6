// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"github.com/meterio/meter-auction/meter"
)

// Event represents a contract event log. The first topic is the hash of the event name.
type Event struct {
	// address of the contract that generated the event
	Address meter.Address
	// list of topics provided by the contract.
	Topics []meter.Bytes32
	// supplied by the contract, usually serialized event fields
	Data []byte
}

// Events slice of event logs.
type Events []*Event

// EventTopic returns the first topic of the named event.
func EventTopic(name string) meter.Bytes32 {
	return meter.Blake2b([]byte(name))
}
