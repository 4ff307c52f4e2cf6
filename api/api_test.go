// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/fortytw2/leaktest"
	"github.com/gorilla/websocket"
	"github.com/meterio/meter-auction/accounts"
	"github.com/meterio/meter-auction/api"
	apiaccounts "github.com/meterio/meter-auction/api/accounts"
	apiauction "github.com/meterio/meter-auction/api/auction"
	"github.com/meterio/meter-auction/api/events"
	"github.com/meterio/meter-auction/api/ledger"
	"github.com/meterio/meter-auction/api/permits"
	"github.com/meterio/meter-auction/api/subscriptions"
	"github.com/meterio/meter-auction/api/transactions"
	"github.com/meterio/meter-auction/api/transfers"
	"github.com/meterio/meter-auction/codec"
	"github.com/meterio/meter-auction/genesis"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/node"
	"github.com/meterio/meter-auction/script/auction"
	scriptledger "github.com/meterio/meter-auction/script/ledger"
	"github.com/meterio/meter-auction/script/permit"
	"github.com/meterio/meter-auction/tx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const now = uint64(2000000000000)

type testServer struct {
	t     *testing.T
	ts    *httptest.Server
	node  *node.Node
	close func()
	nonce uint64
}

func newTestServer(t *testing.T) *testServer {
	n, err := node.OpenMem(genesis.NewDevnet(), node.WithClock(func() uint64 { return now }))
	require.NoError(t, err)
	handler, closeSubs := api.New(n, "*", 100)
	return &testServer{t: t, ts: httptest.NewServer(handler), node: n, close: closeSubs}
}

func (s *testServer) Close() {
	s.close()
	s.ts.Close()
}

func (s *testServer) do(method, path string, body interface{}) (int, []byte) {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.t, err)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, s.ts.URL+path, r)
	require.NoError(s.t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(s.t, err)
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	require.NoError(s.t, err)
	return res.StatusCode, data
}

func (s *testServer) getJSON(path string, v interface{}) {
	code, data := s.do("GET", path, nil)
	require.Equal(s.t, http.StatusOK, code, string(data))
	require.NoError(s.t, json.Unmarshal(data, v))
}

func (s *testServer) postJSON(path string, body, v interface{}) {
	code, data := s.do("POST", path, body)
	require.Equal(s.t, http.StatusOK, code, string(data))
	require.NoError(s.t, json.Unmarshal(data, v))
}

func (s *testServer) rawTx(from genesis.DevAccount, to meter.Address, entrypoint string, param codec.Serializer) (*tx.Transaction, *transactions.RawTx) {
	s.nonce++
	trx := new(tx.Builder).
		ChainTag(s.node.ChainTag()).
		Nonce(s.nonce).
		Expiration(^uint64(0)).
		Gas(1000000).
		Origin(from.Address).
		Invoke(to, entrypoint, codec.Encode(param)).
		Build()
	sigs, err := accounts.Sign(trx.SigningHash(), from.PrivateKey)
	require.NoError(s.t, err)
	trx = trx.WithSignature(sigs)
	data, err := rlp.EncodeToBytes(trx)
	require.NoError(s.t, err)
	return trx, &transactions.RawTx{Raw: hexutil.Encode(data)}
}

func (s *testServer) send(from genesis.DevAccount, to meter.Address, entrypoint string, param codec.Serializer) *transactions.Receipt {
	_, raw := s.rawTx(from, to, entrypoint, param)
	var receipt transactions.Receipt
	s.postJSON("/transactions", raw, &receipt)
	return &receipt
}

func (s *testServer) addItemAndBid() (*transactions.Receipt, *transactions.Receipt) {
	devs := genesis.DevAccounts()
	add := auction.AddItemParameter{Name: "lamp", Start: meter.Timestamp(now), End: meter.Timestamp(now + 60000), MinimumBid: 1, TokenID: 1}
	addReceipt := s.send(devs[0], meter.AuctionModuleAddr, "addItem", add)
	bid := scriptledger.TransferParams{{
		TokenID: 1,
		Amount:  codec.TokenAmount(5 * meter.MicroCCD),
		From:    codec.AccountAddress(devs[1].Address),
		To:      codec.ToContract(meter.AuctionModuleAddr, "bid"),
		Data:    codec.Encode(auction.AdditionalDataIndex{ItemIndex: 0}),
	}}
	bidReceipt := s.send(devs[1], meter.LedgerModuleAddr, "transfer", bid)
	return addReceipt, bidReceipt
}

func TestTransactions(t *testing.T) {
	s := newTestServer(t)
	defer s.Close()

	devs := genesis.DevAccounts()
	trx, raw := s.rawTx(devs[0], meter.AuctionModuleAddr, "addItem",
		auction.AddItemParameter{Name: "lamp", Start: meter.Timestamp(now), End: meter.Timestamp(now + 60000), TokenID: 1})

	var receipt transactions.Receipt
	s.postJSON("/transactions", raw, &receipt)
	assert.False(t, receipt.Reverted)
	assert.Equal(t, trx.ID(), receipt.TxID)
	assert.Equal(t, uint32(1), receipt.Meta.BlockNumber)
	require.Len(t, receipt.Events, 1)

	// replay
	code, _ := s.do("POST", "/transactions", raw)
	assert.Equal(t, http.StatusForbidden, code)

	var got transactions.Transaction
	s.getJSON("/transactions/"+trx.ID().String(), &got)
	assert.Equal(t, "addItem", got.Entrypoint)
	assert.Equal(t, devs[0].Address, got.Origin)
	assert.Equal(t, receipt.Meta.BlockID, got.Meta.BlockID)

	var stored transactions.Receipt
	s.getJSON("/transactions/"+trx.ID().String()+"/receipt", &stored)
	assert.Equal(t, receipt, stored)

	var recent []*transactions.Transaction
	s.getJSON("/transactions/recent", &recent)
	require.Len(t, recent, 1)
	assert.Equal(t, trx.ID(), recent[0].ID)

	code, data := s.do("GET", "/transactions/"+meter.Bytes32{1}.String(), nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "null", strings.TrimSpace(string(data)))

	code, _ = s.do("POST", "/transactions", &transactions.RawTx{Raw: "0xzz"})
	assert.Equal(t, http.StatusBadRequest, code)

	// unsigned transactions are answered with their signing hash
	ustx := &transactions.UnSignedTx{
		ChainTag:   s.node.ChainTag(),
		Nonce:      1,
		Expiration: 10,
		Gas:        21000,
		Origin:     devs[0].Address,
		To:         meter.AuctionModuleAddr,
		Entrypoint: "view",
	}
	var hash map[string]string
	s.postJSON("/transactions", ustx, &hash)
	expected := new(tx.Builder).ChainTag(s.node.ChainTag()).Nonce(1).Expiration(10).Gas(21000).
		Origin(devs[0].Address).Invoke(meter.AuctionModuleAddr, "view", nil).Build().SigningHash()
	assert.Equal(t, expected.String(), hash["signingHash"])
}

func TestRejectedTransaction(t *testing.T) {
	s := newTestServer(t)
	defer s.Close()

	devs := genesis.DevAccounts()
	trx := new(tx.Builder).
		ChainTag(s.node.ChainTag()).
		Nonce(1).
		Expiration(^uint64(0)).
		Gas(1000000).
		Origin(devs[0].Address).
		Invoke(meter.AuctionModuleAddr, "view", nil).
		Build()
	data, err := rlp.EncodeToBytes(trx)
	require.NoError(t, err)
	code, body := s.do("POST", "/transactions", &transactions.RawTx{Raw: hexutil.Encode(data)})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, string(body), tx.ErrNotSigned.Error())
}

func TestAuctionAndLedger(t *testing.T) {
	s := newTestServer(t)
	defer s.Close()
	devs := genesis.DevAccounts()
	s.addItemAndBid()

	var summary apiauction.Summary
	s.getJSON("/auction", &summary)
	assert.Equal(t, meter.LedgerModuleAddr, summary.Cis2Contract)
	assert.Equal(t, uint16(1), summary.Counter)
	require.Len(t, summary.Items, 1)

	var item apiauction.Item
	s.getJSON("/auction/items/0", &item)
	assert.Equal(t, "lamp", item.Name)
	assert.Equal(t, "NotSoldYet", item.State)
	assert.Nil(t, item.Winner)
	require.NotNil(t, item.HighestBidder)
	assert.Equal(t, devs[1].Address, *item.HighestBidder)
	assert.Equal(t, 5*meter.MicroCCD, item.HighestBid)

	code, _ := s.do("GET", "/auction/items/7", nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = s.do("GET", "/auction/items/x", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	var balance ledger.Balance
	s.getJSON("/ledger/balances/1/"+devs[1].Address.String(), &balance)
	assert.Equal(t, 995*meter.MicroCCD, balance.Amount)
	s.getJSON("/ledger/balances/1/"+meter.AuctionModuleAddr.String(), &balance)
	assert.Equal(t, uint64(0), balance.Amount, "escrow is held by the contract kind")

	code, _ = s.do("GET", "/ledger/balances/9/"+devs[1].Address.String(), nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAccounts(t *testing.T) {
	s := newTestServer(t)
	defer s.Close()
	devs := genesis.DevAccounts()

	var acc apiaccounts.Account
	s.getJSON("/accounts/"+devs[0].Address.String(), &acc)
	assert.True(t, acc.Registered)
	require.Len(t, acc.Credentials, 1)
	assert.Equal(t, "secp256k1", acc.Credentials[0].Keys[0].Scheme)

	s.getJSON("/accounts/"+meter.BytesToAddress([]byte("nobody")).String(), &acc)
	assert.False(t, acc.Registered)

	var nonces apiaccounts.Nonces
	s.getJSON("/accounts/"+devs[0].Address.String()+"/nonces", &nonces)
	assert.Equal(t, apiaccounts.Nonces{}, nonces)

	var result apiaccounts.CallResult
	s.postJSON("/accounts/"+meter.AuctionModuleAddr.String(), &apiaccounts.CallData{Entrypoint: "view"}, &result)
	assert.False(t, result.Reverted)
	var view auction.ReturnParamView
	require.NoError(t, codec.Decode(result.Data, &view))
	assert.Equal(t, meter.LedgerModuleAddr, view.Cis2Contract)

	s.postJSON("/accounts/"+meter.AuctionModuleAddr.String(),
		&apiaccounts.CallData{Entrypoint: "viewItemState", Param: codec.Encode(codec.U16(3))}, &result)
	assert.True(t, result.Reverted)
	assert.Equal(t, auction.ErrInvalidIndex.Code, result.RejectCode)

	code, _ := s.do("POST", "/accounts/"+meter.AuctionModuleAddr.String(),
		&apiaccounts.CallData{Entrypoint: "view", Gas: node.DefaultCallGasLimit + 1})
	assert.Equal(t, http.StatusForbidden, code)
}

func TestPermitHash(t *testing.T) {
	s := newTestServer(t)
	defer s.Close()
	devs := genesis.DevAccounts()

	msg := &permits.Message{
		Signer:          devs[0].Address,
		ContractAddress: meter.AuctionModuleAddr,
		Nonce:           0,
		Timestamp:       now + 1000,
		EntryPoint:      "finalize",
		Payload:         codec.Encode(codec.U16(0)),
	}
	var resp map[string]string
	s.postJSON("/permits/hash", msg, &resp)

	expected := permit.MessageHash(devs[0].Address, &permit.Message{
		ContractAddress: meter.AuctionModuleAddr,
		Timestamp:       meter.Timestamp(now + 1000),
		EntryPoint:      "finalize",
		Payload:         msg.Payload,
	})
	assert.Equal(t, expected.String(), resp["hash"])
}

func TestLogs(t *testing.T) {
	s := newTestServer(t)
	defer s.Close()
	devs := genesis.DevAccounts()
	_, bidReceipt := s.addItemAndBid()

	var evs []*events.FilteredEvent
	s.postJSON("/logs/event", &events.EventFilter{CriteriaSet: []*events.EventCriteria{{Event: "Bid"}}}, &evs)
	require.Len(t, evs, 1)
	assert.Equal(t, "Bid", evs[0].Name)
	assert.Equal(t, meter.AuctionModuleAddr, evs[0].Address)
	assert.Equal(t, bidReceipt.TxID, evs[0].Meta.TxID)

	var trs []*transfers.FilteredTransfer
	s.postJSON("/logs/transfer", &transfers.TransferFilter{
		CriteriaSet: []*transfers.TransferCriteria{{Sender: &devs[1].Address}},
	}, &trs)
	require.Len(t, trs, 1)
	assert.Equal(t, meter.AuctionModuleAddr, trs[0].Recipient)
	assert.Equal(t, uint32(1), trs[0].Token)

	code, _ := s.do("POST", "/logs/event", map[string]interface{}{"bogus": 1})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestSubscriptions(t *testing.T) {
	s := newTestServer(t)
	defer leaktest.Check(t)()
	defer s.Close()

	wsURL := "ws" + strings.TrimPrefix(s.ts.URL, "http")
	blocks, _, err := websocket.DefaultDialer.Dial(wsURL+"/subscriptions/block", nil)
	require.NoError(t, err)
	defer blocks.Close()
	bids, _, err := websocket.DefaultDialer.Dial(wsURL+"/subscriptions/event?name=Bid", nil)
	require.NoError(t, err)
	defer bids.Close()

	addReceipt, bidReceipt := s.addItemAndBid()

	for _, want := range []*transactions.Receipt{addReceipt, bidReceipt} {
		blocks.SetReadDeadline(time.Now().Add(5 * time.Second))
		var msg subscriptions.BlockMessage
		require.NoError(t, blocks.ReadJSON(&msg))
		assert.Equal(t, want.Meta.BlockID, msg.ID)
		assert.Equal(t, want.TxID, msg.TxID)
	}

	bids.SetReadDeadline(time.Now().Add(5 * time.Second))
	var ev subscriptions.EventMessage
	require.NoError(t, bids.ReadJSON(&ev))
	assert.Equal(t, "Bid", ev.Name)
	assert.Equal(t, bidReceipt.TxID, ev.Meta.TxID)

	code, _ := s.do("GET", "/subscriptions/beat", nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = s.do("GET", "/subscriptions/block?pos=0x01", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}
