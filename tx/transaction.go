// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/meter-auction/accounts"
	"github.com/meterio/meter-auction/codec"
	"github.com/meterio/meter-auction/meter"
	"github.com/pkg/errors"
)

var (
	ErrNotSigned    = errors.New("tx not signed")
	ErrBadSignature = errors.New("bad signature")
)

// Transaction is an immutable tx type. It invokes one entrypoint of one contract
// on behalf of its origin, who pays for its gas.
type Transaction struct {
	body body

	cache struct {
		signingHash atomic.Value
		id          atomic.Value
		signatures  atomic.Value
	}
}

// body describes details of a tx.
type body struct {
	ChainTag   byte
	Nonce      uint64
	Expiration uint64 // unix milliseconds
	Gas        uint64
	Origin     meter.Address
	To         meter.Address
	Entrypoint string
	Param      []byte
	Signature  []byte
}

// Builder to make it easy to build transaction.
type Builder struct {
	body body
}

// ChainTag set chain tag.
func (b *Builder) ChainTag(tag byte) *Builder {
	b.body.ChainTag = tag
	return b
}

// Nonce set nonce.
func (b *Builder) Nonce(nonce uint64) *Builder {
	b.body.Nonce = nonce
	return b
}

// Expiration set expiration in unix milliseconds.
func (b *Builder) Expiration(exp uint64) *Builder {
	b.body.Expiration = exp
	return b
}

// Gas set gas provision for tx.
func (b *Builder) Gas(gas uint64) *Builder {
	b.body.Gas = gas
	return b
}

// Origin set the paying account.
func (b *Builder) Origin(origin meter.Address) *Builder {
	b.body.Origin = origin
	return b
}

// Invoke set the target contract, entrypoint and serialized parameter.
func (b *Builder) Invoke(to meter.Address, entrypoint string, param []byte) *Builder {
	b.body.To = to
	b.body.Entrypoint = entrypoint
	b.body.Param = append([]byte(nil), param...)
	return b
}

// Build build tx object.
func (b *Builder) Build() *Transaction {
	tx := Transaction{body: b.body}
	return &tx
}

// ChainTag returns chain tag.
func (t *Transaction) ChainTag() byte {
	return t.body.ChainTag
}

// Nonce returns nonce value.
func (t *Transaction) Nonce() uint64 {
	return t.body.Nonce
}

// Expiration returns expiration in unix milliseconds.
func (t *Transaction) Expiration() uint64 {
	return t.body.Expiration
}

// IsExpired returns whether the tx is expired at the given block time.
func (t *Transaction) IsExpired(blockTime uint64) bool {
	return blockTime >= t.body.Expiration
}

// Gas returns gas provision for this tx.
func (t *Transaction) Gas() uint64 {
	return t.body.Gas
}

// Origin returns the account paying for this tx.
func (t *Transaction) Origin() meter.Address {
	return t.body.Origin
}

// To returns the invoked contract.
func (t *Transaction) To() meter.Address {
	return t.body.To
}

// Entrypoint returns the invoked entrypoint name.
func (t *Transaction) Entrypoint() string {
	return t.body.Entrypoint
}

// Param returns the serialized parameter.
func (t *Transaction) Param() []byte {
	return append([]byte(nil), t.body.Param...)
}

// ID returns id of tx.
// ID = hash(signingHash, origin).
func (t *Transaction) ID() (id meter.Bytes32) {
	if cached := t.cache.id.Load(); cached != nil {
		return cached.(meter.Bytes32)
	}
	defer func() { t.cache.id.Store(id) }()

	hw := meter.NewBlake2b()
	hw.Write(t.SigningHash().Bytes())
	hw.Write(t.body.Origin.Bytes())
	hw.Sum(id[:0])
	return
}

// SigningHash returns hash of tx excludes signature.
func (t *Transaction) SigningHash() (hash meter.Bytes32) {
	if cached := t.cache.signingHash.Load(); cached != nil {
		return cached.(meter.Bytes32)
	}
	defer func() { t.cache.signingHash.Store(hash) }()

	hw := meter.NewBlake2b()
	err := rlp.Encode(hw, []interface{}{
		t.body.ChainTag,
		t.body.Nonce,
		t.body.Expiration,
		t.body.Gas,
		t.body.Origin,
		t.body.To,
		t.body.Entrypoint,
		t.body.Param,
	})
	if err != nil {
		return
	}

	hw.Sum(hash[:0])
	return
}

// Signature returns the serialized account signatures.
func (t *Transaction) Signature() []byte {
	return append([]byte(nil), t.body.Signature...)
}

// Signatures decodes the account signatures of the origin.
func (t *Transaction) Signatures() (accounts.AccountSignatures, error) {
	if len(t.body.Signature) == 0 {
		return nil, ErrNotSigned
	}
	if cached := t.cache.signatures.Load(); cached != nil {
		return cached.(accounts.AccountSignatures), nil
	}
	var sigs accounts.AccountSignatures
	if err := codec.Decode(t.body.Signature, &sigs); err != nil {
		return nil, errors.WithMessage(err, "decode signature")
	}
	t.cache.signatures.Store(sigs)
	return sigs, nil
}

// VerifySignature checks the signatures against the keys registered by the origin.
// It returns the number of signatures checked.
func (t *Transaction) VerifySignature(keys *accounts.AccountKeys) (int, error) {
	sigs, err := t.Signatures()
	if err != nil {
		return 0, err
	}
	ok, checked := keys.Verify(t.SigningHash(), sigs)
	if !ok {
		return checked, ErrBadSignature
	}
	return checked, nil
}

// WithSignature create a new tx with signature set.
func (t *Transaction) WithSignature(sigs accounts.AccountSignatures) *Transaction {
	newTx := Transaction{
		body: t.body,
	}
	newTx.body.Signature = codec.Encode(sigs)
	return &newTx
}

// EncodeRLP implements rlp.Encoder
func (t *Transaction) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &t.body)
}

// DecodeRLP implements rlp.Decoder
func (t *Transaction) DecodeRLP(s *rlp.Stream) error {
	var body body
	if err := s.Decode(&body); err != nil {
		return err
	}
	*t = Transaction{body: body}
	return nil
}

func (t *Transaction) String() string {
	return fmt.Sprintf(`
  Tx(%v)
  Origin:         %v
  To:             %v
  Entrypoint:     %v
  Param:          0x%x
  Gas:            %v
  ChainTag:       %v
  Expiration:     %v
  Nonce:          %v
  Signature:      0x%x
`, t.ID(), t.body.Origin, t.body.To, t.body.Entrypoint, t.body.Param,
		t.body.Gas, t.body.ChainTag, t.body.Expiration, t.body.Nonce, t.body.Signature)
}
