// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package permit

import (
	"github.com/meterio/meter-auction/accounts"
	"github.com/meterio/meter-auction/codec"
	"github.com/meterio/meter-auction/meter"
)

// Message is the part of a permit covered by the signature.
type Message struct {
	// contract the permit is meant for
	ContractAddress meter.Address
	Nonce           uint64
	// permit is valid strictly before this time
	Timestamp  meter.Timestamp
	EntryPoint string
	Payload    []byte
}

func (m Message) Serialize(w *codec.Writer) {
	w.Address(m.ContractAddress)
	w.U64(m.Nonce)
	w.Timestamp(m.Timestamp)
	w.Entrypoint(m.EntryPoint)
	w.Bytes16(m.Payload)
}

func (m *Message) Deserialize(r *codec.Reader) {
	m.ContractAddress = r.Address()
	m.Nonce = r.U64()
	m.Timestamp = r.Timestamp()
	m.EntryPoint = r.Entrypoint()
	m.Payload = r.Bytes16()
}

// Param is the parameter of a permit entrypoint.
type Param struct {
	Signature accounts.AccountSignatures
	Signer    meter.Address
	Message   Message
}

func (p Param) Serialize(w *codec.Writer) {
	p.Signature.Serialize(w)
	w.Address(p.Signer)
	p.Message.Serialize(w)
}

func (p *Param) Deserialize(r *codec.Reader) {
	p.Signature.Deserialize(r)
	p.Signer = r.Address()
	p.Message.Deserialize(r)
}

// MessageHash is the hash an account signs to authorize msg:
// blake2b(signer || 8 zero bytes || serialized message).
func MessageHash(signer meter.Address, msg *Message) meter.Bytes32 {
	var prefix [8]byte
	return meter.Blake2b(signer[:], prefix[:], codec.Encode(msg))
}

// NonceEvent is logged each time a permit is consumed.
type NonceEvent struct {
	Account meter.Address
	Nonce   uint64
}

func (e NonceEvent) Serialize(w *codec.Writer) {
	w.Address(e.Account)
	w.U64(e.Nonce)
}

func (e *NonceEvent) Deserialize(r *codec.Reader) {
	e.Account = r.Address()
	e.Nonce = r.U64()
}

// NonceOfParams queries permit nonces of accounts.
type NonceOfParams []meter.Address

func (p NonceOfParams) Serialize(w *codec.Writer) {
	w.Len16(len(p))
	for _, a := range p {
		w.Address(a)
	}
}

func (p *NonceOfParams) Deserialize(r *codec.Reader) {
	n := r.Len16()
	out := make(NonceOfParams, 0, n)
	for i := 0; i < n && r.Err() == nil; i++ {
		out = append(out, r.Address())
	}
	*p = out
}

// NonceOfResponse lists nonces in query order.
type NonceOfResponse []uint64

func (p NonceOfResponse) Serialize(w *codec.Writer) {
	w.Len16(len(p))
	for _, n := range p {
		w.U64(n)
	}
}

func (p *NonceOfResponse) Deserialize(r *codec.Reader) {
	n := r.Len16()
	out := make(NonceOfResponse, 0, n)
	for i := 0; i < n && r.Err() == nil; i++ {
		out = append(out, r.U64())
	}
	*p = out
}

// SupportsPermitParams queries whether entrypoints can be invoked through a permit.
type SupportsPermitParams []string

func (p SupportsPermitParams) Serialize(w *codec.Writer) {
	w.Len16(len(p))
	for _, e := range p {
		w.Entrypoint(e)
	}
}

func (p *SupportsPermitParams) Deserialize(r *codec.Reader) {
	n := r.Len16()
	out := make(SupportsPermitParams, 0, n)
	for i := 0; i < n && r.Err() == nil; i++ {
		out = append(out, r.Entrypoint())
	}
	*p = out
}

// SupportsPermitResponse lists answers in query order.
type SupportsPermitResponse []bool

func (p SupportsPermitResponse) Serialize(w *codec.Writer) {
	w.Len16(len(p))
	for _, b := range p {
		w.Bool(b)
	}
}

func (p *SupportsPermitResponse) Deserialize(r *codec.Reader) {
	n := r.Len16()
	out := make(SupportsPermitResponse, 0, n)
	for i := 0; i < n && r.Err() == nil; i++ {
		out = append(out, r.Bool())
	}
	*p = out
}
