// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/meterio/meter-auction/accounts"
	"github.com/meterio/meter-auction/api/transactions"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/runtime"
	"github.com/meterio/meter-auction/script/types"
)

type Key struct {
	Index  uint8         `json:"index"`
	Scheme string        `json:"scheme"`
	Key    hexutil.Bytes `json:"key"`
}

type Credential struct {
	Index     uint8 `json:"index"`
	Threshold uint8 `json:"threshold"`
	Keys      []Key `json:"keys"`
}

//Account for marshal account
type Account struct {
	Registered  bool         `json:"registered"`
	Threshold   uint8        `json:"threshold"`
	Credentials []Credential `json:"credentials"`
}

func convertAccount(keys *accounts.AccountKeys) *Account {
	if keys == nil {
		return &Account{Credentials: []Credential{}}
	}
	acc := &Account{
		Registered:  true,
		Threshold:   keys.Threshold,
		Credentials: make([]Credential, 0, len(keys.Credentials)),
	}
	for _, c := range keys.Credentials {
		cred := Credential{Index: c.Index, Threshold: c.Threshold, Keys: make([]Key, 0, len(c.Keys))}
		for _, k := range c.Keys {
			cred.Keys = append(cred.Keys, Key{Index: k.Index, Scheme: k.Key.Scheme.String(), Key: k.Key.Key})
		}
		acc.Credentials = append(acc.Credentials, cred)
	}
	return acc
}

// Nonces are the permit nonces of an account per contract.
type Nonces struct {
	Ledger  uint64 `json:"ledger"`
	Auction uint64 `json:"auction"`
}

//CallData represents contract-call body
type CallData struct {
	Entrypoint string         `json:"entrypoint"`
	Param      hexutil.Bytes  `json:"param"`
	Gas        uint64         `json:"gas"`
	Caller     *meter.Address `json:"caller"`
}

type CallResult struct {
	Data       hexutil.Bytes            `json:"data"`
	Events     []*transactions.Event    `json:"events"`
	Transfers  []*transactions.Transfer `json:"transfers"`
	GasUsed    uint64                   `json:"gasUsed"`
	Reverted   bool                     `json:"reverted"`
	VMError    string                   `json:"vmError"`
	RejectCode int32                    `json:"rejectCode,omitempty"`
}

func convertCallResultWithInputGas(vo *runtime.Output, inputGas uint64) *CallResult {
	gasUsed := inputGas - vo.LeftOverGas
	var (
		vmError    string
		reverted   bool
		rejectCode int32
	)

	if vo.VMErr != nil {
		reverted = true
		vmError = vo.VMErr.Error()
		if reject, ok := types.AsReject(vo.VMErr); ok {
			rejectCode = reject.Code
		}
	}

	events := make([]*transactions.Event, len(vo.Events))
	transfers := make([]*transactions.Transfer, len(vo.Transfers))

	for j, txEvent := range vo.Events {
		event := &transactions.Event{
			Address: txEvent.Address,
			Data:    txEvent.Data,
		}
		event.Topics = make([]meter.Bytes32, len(txEvent.Topics))
		copy(event.Topics, txEvent.Topics)
		events[j] = event
	}
	for j, txTransfer := range vo.Transfers {
		transfers[j] = &transactions.Transfer{
			Sender:    txTransfer.Sender,
			Recipient: txTransfer.Recipient,
			Amount:    (*math.HexOrDecimal256)(txTransfer.Amount),
			Token:     txTransfer.Token,
		}
	}

	return &CallResult{
		Data:       vo.Data,
		Events:     events,
		Transfers:  transfers,
		GasUsed:    gasUsed,
		Reverted:   reverted,
		VMError:    vmError,
		RejectCode: rejectCode,
	}
}
