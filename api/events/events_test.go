// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/meterio/meter-auction/api/events"
	"github.com/meterio/meter-auction/block"
	"github.com/meterio/meter-auction/logdb"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/tx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var contractAddr = meter.BytesToAddress([]byte("contract"))
var ts *httptest.Server

func TestEvents(t *testing.T) {
	initEventServer(t)
	defer ts.Close()
	getEvents(t)
	getNamedEvents(t)
}

func getEvents(t *testing.T) {
	t0 := meter.BytesToBytes32([]byte("topic0"))
	t1 := meter.BytesToBytes32([]byte("topic1"))
	limit := 5
	filter := &events.EventFilter{
		Range: &logdb.Range{
			Unit: "",
			From: 0,
			To:   100,
		},
		Options: &logdb.Options{
			Offset: 0,
			Limit:  uint64(limit),
		},
		Order: "",
		CriteriaSet: []*events.EventCriteria{
			{
				Address: &contractAddr,
				TopicSet: events.TopicSet{
					Topic0: &t0,
				},
			},
			{
				Address: &contractAddr,
				TopicSet: events.TopicSet{
					Topic1: &t1,
				},
			},
		},
	}
	res := httpPost(t, ts.URL+"/logs/event?", filter)
	var logs []*events.FilteredEvent
	if err := json.Unmarshal(res, &logs); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, limit, len(logs), "should be `limit` logs")
	assert.Equal(t, "unknown", logs[0].Name)
	assert.Equal(t, []byte("data"), []byte(logs[0].Data))
}

func getNamedEvents(t *testing.T) {
	filter := &events.EventFilter{
		CriteriaSet: []*events.EventCriteria{
			{Event: "Bid"},
		},
		Order: logdb.DESC,
	}
	res := httpPost(t, ts.URL+"/logs/event", filter)
	var logs []*events.FilteredEvent
	require.NoError(t, json.Unmarshal(res, &logs))
	require.Len(t, logs, 10)
	for _, l := range logs {
		assert.Equal(t, "Bid", l.Name)
	}
	assert.True(t, logs[0].Meta.BlockNumber > logs[9].Meta.BlockNumber)
}

func initEventServer(t *testing.T) {
	db, err := logdb.NewMem()
	if err != nil {
		t.Fatal(err)
	}
	txEv := &tx.Event{
		Address: contractAddr,
		Topics:  []meter.Bytes32{meter.BytesToBytes32([]byte("topic0")), meter.BytesToBytes32([]byte("topic1"))},
		Data:    []byte("data"),
	}
	bidEv := &tx.Event{
		Address: meter.AuctionModuleAddr,
		Topics:  []meter.Bytes32{tx.EventTopic("Bid")},
	}

	header := block.NewHeader(block.GenesisParentID(), 0, meter.Bytes32{}, meter.Bytes32{}, 0)
	for i := 0; i < 100; i++ {
		header = block.NewHeader(header.ID(), uint64(i+1), meter.BytesToBytes32([]byte{byte(i)}), meter.Bytes32{}, 0)
		evs := tx.Events{txEv}
		if i%10 == 0 {
			evs = append(evs, bidEv)
		}
		if err := db.Prepare(header).
			Insert(header.TxID(), meter.BytesToAddress([]byte("txOrigin")), evs, nil).
			Commit(); err != nil {
			t.Fatal(err)
		}
	}

	router := mux.NewRouter()
	events.New(db).Mount(router, "/logs/event")
	ts = httptest.NewServer(router)
}

func httpPost(t *testing.T, url string, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatal(err)
	}
	res, err := http.Post(url, "application/x-www-form-urlencoded", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	r, err := io.ReadAll(res.Body)
	res.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	return r
}
