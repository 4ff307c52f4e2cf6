// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/meterio/meter-auction/codec"
)

// MintParams mints amount of token to owner, creating the token if needed.
type MintParams struct {
	Owner   codec.Address
	TokenID codec.TokenID
	Amount  codec.TokenAmount
}

func (p MintParams) Serialize(w *codec.Writer) {
	p.Owner.Serialize(w)
	p.TokenID.Serialize(w)
	p.Amount.Serialize(w)
}

func (p *MintParams) Deserialize(r *codec.Reader) {
	p.Owner.Deserialize(r)
	p.TokenID.Deserialize(r)
	p.Amount.Deserialize(r)
}

// Transfer moves amount of token from From to To. Data is passed to a contract receiver.
type Transfer struct {
	TokenID codec.TokenID
	Amount  codec.TokenAmount
	From    codec.Address
	To      codec.Receiver
	Data    []byte
}

func (t Transfer) Serialize(w *codec.Writer) {
	t.TokenID.Serialize(w)
	t.Amount.Serialize(w)
	t.From.Serialize(w)
	t.To.Serialize(w)
	w.Bytes16(t.Data)
}

func (t *Transfer) Deserialize(r *codec.Reader) {
	t.TokenID.Deserialize(r)
	t.Amount.Deserialize(r)
	t.From.Deserialize(r)
	t.To.Deserialize(r)
	t.Data = r.Bytes16()
}

// TransferParams is the parameter of the transfer entrypoint.
type TransferParams []Transfer

func (p TransferParams) Serialize(w *codec.Writer) {
	w.Len16(len(p))
	for _, t := range p {
		t.Serialize(w)
	}
}

func (p *TransferParams) Deserialize(r *codec.Reader) {
	n := r.Len16()
	out := make(TransferParams, n)
	for i := 0; i < n && r.Err() == nil; i++ {
		out[i].Deserialize(r)
	}
	*p = out
}

// OnReceivingCIS2Params is passed to the receive hook of a contract receiving tokens.
type OnReceivingCIS2Params struct {
	TokenID codec.TokenID
	Amount  codec.TokenAmount
	From    codec.Address
	Data    []byte
}

func (p OnReceivingCIS2Params) Serialize(w *codec.Writer) {
	p.TokenID.Serialize(w)
	p.Amount.Serialize(w)
	p.From.Serialize(w)
	w.Bytes16(p.Data)
}

func (p *OnReceivingCIS2Params) Deserialize(r *codec.Reader) {
	p.TokenID.Deserialize(r)
	p.Amount.Deserialize(r)
	p.From.Deserialize(r)
	p.Data = r.Bytes16()
}

// OperatorUpdate adds or removes an operator.
type OperatorUpdate uint8

const (
	Remove OperatorUpdate = iota
	Add
)

// UpdateOperator changes one operator of the sender.
type UpdateOperator struct {
	Update   OperatorUpdate
	Operator codec.Address
}

func (u UpdateOperator) Serialize(w *codec.Writer) {
	w.U8(uint8(u.Update))
	u.Operator.Serialize(w)
}

func (u *UpdateOperator) Deserialize(r *codec.Reader) {
	u.Update = OperatorUpdate(r.Tag(2))
	u.Operator.Deserialize(r)
}

// UpdateOperatorParams is the parameter of the updateOperator entrypoint.
type UpdateOperatorParams []UpdateOperator

func (p UpdateOperatorParams) Serialize(w *codec.Writer) {
	w.Len16(len(p))
	for _, u := range p {
		u.Serialize(w)
	}
}

func (p *UpdateOperatorParams) Deserialize(r *codec.Reader) {
	n := r.Len16()
	out := make(UpdateOperatorParams, n)
	for i := 0; i < n && r.Err() == nil; i++ {
		out[i].Deserialize(r)
	}
	*p = out
}

// OperatorOfQuery asks whether Address is an operator of Owner.
type OperatorOfQuery struct {
	Owner   codec.Address
	Address codec.Address
}

// OperatorOfQueryParams is the parameter of the operatorOf entrypoint.
type OperatorOfQueryParams []OperatorOfQuery

func (p OperatorOfQueryParams) Serialize(w *codec.Writer) {
	w.Len16(len(p))
	for _, q := range p {
		q.Owner.Serialize(w)
		q.Address.Serialize(w)
	}
}

func (p *OperatorOfQueryParams) Deserialize(r *codec.Reader) {
	n := r.Len16()
	out := make(OperatorOfQueryParams, n)
	for i := 0; i < n && r.Err() == nil; i++ {
		out[i].Owner.Deserialize(r)
		out[i].Address.Deserialize(r)
	}
	*p = out
}

// OperatorOfResponse lists answers in query order.
type OperatorOfResponse []bool

func (p OperatorOfResponse) Serialize(w *codec.Writer) {
	w.Len16(len(p))
	for _, b := range p {
		w.Bool(b)
	}
}

func (p *OperatorOfResponse) Deserialize(r *codec.Reader) {
	n := r.Len16()
	out := make(OperatorOfResponse, n)
	for i := 0; i < n && r.Err() == nil; i++ {
		out[i] = r.Bool()
	}
	*p = out
}

// BalanceOfQuery asks for the balance of token held by Address.
type BalanceOfQuery struct {
	TokenID codec.TokenID
	Address codec.Address
}

// BalanceOfQueryParams is the parameter of the balanceOf entrypoint.
type BalanceOfQueryParams []BalanceOfQuery

func (p BalanceOfQueryParams) Serialize(w *codec.Writer) {
	w.Len16(len(p))
	for _, q := range p {
		q.TokenID.Serialize(w)
		q.Address.Serialize(w)
	}
}

func (p *BalanceOfQueryParams) Deserialize(r *codec.Reader) {
	n := r.Len16()
	out := make(BalanceOfQueryParams, n)
	for i := 0; i < n && r.Err() == nil; i++ {
		out[i].TokenID.Deserialize(r)
		out[i].Address.Deserialize(r)
	}
	*p = out
}

// BalanceOfResponse lists balances in query order.
type BalanceOfResponse []codec.TokenAmount

func (p BalanceOfResponse) Serialize(w *codec.Writer) {
	w.Len16(len(p))
	for _, a := range p {
		a.Serialize(w)
	}
}

func (p *BalanceOfResponse) Deserialize(r *codec.Reader) {
	n := r.Len16()
	out := make(BalanceOfResponse, n)
	for i := 0; i < n && r.Err() == nil; i++ {
		out[i].Deserialize(r)
	}
	*p = out
}

// TransferEvent is logged for every transfer.
type TransferEvent struct {
	TokenID codec.TokenID
	Amount  codec.TokenAmount
	From    codec.Address
	To      codec.Address
}

func (e TransferEvent) Serialize(w *codec.Writer) {
	e.TokenID.Serialize(w)
	e.Amount.Serialize(w)
	e.From.Serialize(w)
	e.To.Serialize(w)
}

func (e *TransferEvent) Deserialize(r *codec.Reader) {
	e.TokenID.Deserialize(r)
	e.Amount.Deserialize(r)
	e.From.Deserialize(r)
	e.To.Deserialize(r)
}

// MintEvent is logged for every mint.
type MintEvent struct {
	TokenID codec.TokenID
	Amount  codec.TokenAmount
	Owner   codec.Address
}

func (e MintEvent) Serialize(w *codec.Writer) {
	e.TokenID.Serialize(w)
	e.Amount.Serialize(w)
	e.Owner.Serialize(w)
}

func (e *MintEvent) Deserialize(r *codec.Reader) {
	e.TokenID.Deserialize(r)
	e.Amount.Deserialize(r)
	e.Owner.Deserialize(r)
}

// UpdateOperatorEvent is logged for every operator change.
type UpdateOperatorEvent struct {
	Update   OperatorUpdate
	Owner    codec.Address
	Operator codec.Address
}

func (e UpdateOperatorEvent) Serialize(w *codec.Writer) {
	w.U8(uint8(e.Update))
	e.Owner.Serialize(w)
	e.Operator.Serialize(w)
}

func (e *UpdateOperatorEvent) Deserialize(r *codec.Reader) {
	e.Update = OperatorUpdate(r.Tag(2))
	e.Owner.Deserialize(r)
	e.Operator.Deserialize(r)
}
