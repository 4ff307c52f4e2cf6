// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package codec

import (
	"encoding/json"
	"fmt"

	"github.com/meterio/meter-auction/meter"
)

// TokenID identifies a token kind of the ledger.
type TokenID uint32

// TokenIDSize is the encoded byte length of a TokenID.
const TokenIDSize = 4

func (id TokenID) Serialize(w *Writer) {
	w.U8(TokenIDSize)
	w.U32(uint32(id))
}

func (id *TokenID) Deserialize(r *Reader) {
	if n := r.U8(); r.Err() == nil && n != TokenIDSize {
		r.Fail(fmt.Errorf("%w: token id length %d", ErrInvalidTag, n))
		return
	}
	*id = TokenID(r.U32())
}

// TokenAmount is a count of token units.
type TokenAmount uint64

func (a TokenAmount) Serialize(w *Writer)     { w.LEB128(uint64(a)) }
func (a *TokenAmount) Deserialize(r *Reader) { *a = TokenAmount(r.LEB128()) }

// Kind of an on-chain address.
const (
	AccountKind  uint8 = 0
	ContractKind uint8 = 1
)

// Address is an account or a contract address, tagged with its kind.
type Address struct {
	Kind    uint8
	Address meter.Address
}

func AccountAddress(a meter.Address) Address  { return Address{AccountKind, a} }
func ContractAddress(a meter.Address) Address { return Address{ContractKind, a} }

func (a Address) IsContract() bool { return a.Kind == ContractKind }

func (a Address) String() string {
	if a.IsContract() {
		return "contract:" + a.Address.String()
	}
	return "account:" + a.Address.String()
}

func (a Address) Serialize(w *Writer) {
	w.U8(a.Kind)
	w.Address(a.Address)
}

func (a *Address) Deserialize(r *Reader) {
	a.Kind = r.Tag(2)
	a.Address = r.Address()
}

type addressJSON struct {
	Type    string        `json:"type"`
	Address meter.Address `json:"address"`
}

func (a Address) MarshalJSON() ([]byte, error) {
	typ := "account"
	if a.IsContract() {
		typ = "contract"
	}
	return json.Marshal(addressJSON{typ, a.Address})
}

func (a *Address) UnmarshalJSON(data []byte) error {
	var aj addressJSON
	if err := json.Unmarshal(data, &aj); err != nil {
		return err
	}
	switch aj.Type {
	case "account", "":
		*a = AccountAddress(aj.Address)
	case "contract":
		*a = ContractAddress(aj.Address)
	default:
		return fmt.Errorf("unknown address type %q", aj.Type)
	}
	return nil
}

// Receiver is the destination of a token transfer. A contract receiver
// names the entrypoint notified of the transfer.
type Receiver struct {
	Address    Address
	Entrypoint string
}

func ToAccount(a meter.Address) Receiver { return Receiver{Address: AccountAddress(a)} }

func ToContract(a meter.Address, entrypoint string) Receiver {
	return Receiver{Address: ContractAddress(a), Entrypoint: entrypoint}
}

func (rc Receiver) Serialize(w *Writer) {
	rc.Address.Serialize(w)
	if rc.Address.IsContract() {
		w.Entrypoint(rc.Entrypoint)
	}
}

func (rc *Receiver) Deserialize(r *Reader) {
	rc.Address.Deserialize(r)
	if rc.Address.IsContract() {
		rc.Entrypoint = r.Entrypoint()
	}
}

// U16 is a bare u16 parameter, like an item index.
type U16 uint16

func (v U16) Serialize(w *Writer)     { w.U16(uint16(v)) }
func (v *U16) Deserialize(r *Reader) { *v = U16(r.U16()) }

// Empty is the unit parameter.
type Empty struct{}

func (Empty) Serialize(*Writer)    {}
func (*Empty) Deserialize(*Reader) {}

// Hash is a 32 byte digest return value.
type Hash meter.Bytes32

func (h Hash) Serialize(w *Writer)     { w.Bytes32(meter.Bytes32(h)) }
func (h *Hash) Deserialize(r *Reader) { *h = Hash(r.Bytes32()) }
