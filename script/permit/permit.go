// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package permit

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/meter-auction/accounts"
	"github.com/meterio/meter-auction/codec"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/script/types"
)

// Authorizer checks permits submitted to a contract.
type Authorizer interface {
	// MessageHash returns the hash the signer must sign.
	MessageHash(param *Param) meter.Bytes32
	// Authorize verifies param against the calling contract and consumes the signer's nonce.
	Authorize(env *types.ScriptEnv, param *Param) error
}

// Verifier is the default Authorizer. Nonces live in the storage of the
// contract running the env, so each contract has its own nonce space.
type Verifier struct{}

func NewVerifier() *Verifier { return &Verifier{} }

func (v *Verifier) MessageHash(param *Param) meter.Bytes32 {
	return MessageHash(param.Signer, &param.Message)
}

func (v *Verifier) Authorize(env *types.ScriptEnv, param *Param) error {
	hash := v.MessageHash(param)
	msg := &param.Message

	if env.Now() >= msg.Timestamp {
		return ErrExpired
	}
	if msg.ContractAddress != env.Self() {
		return ErrWrongContract
	}
	nonce := NonceOf(env, param.Signer)
	if msg.Nonce != nonce {
		return ErrNonceMismatch
	}

	keys := accounts.Get(env.GetState(), param.Signer)
	if keys == nil {
		return ErrWrongSignature
	}
	ok, checked := keys.Verify(hash, param.Signature)
	env.UseGas(meter.SigVerifyGas * uint64(checked))
	if !ok {
		return ErrWrongSignature
	}

	setNonce(env, param.Signer, nonce+1)
	env.AddEvent("Nonce", []meter.Bytes32{meter.BytesToBytes32(param.Signer[:])},
		codec.Encode(NonceEvent{Account: param.Signer, Nonce: nonce}))
	return nil
}

func nonceKey(account meter.Address) meter.Bytes32 {
	return meter.StorageKey("permit-nonce", account[:])
}

// NonceOf returns the next permit nonce of account in the current contract.
func NonceOf(env *types.ScriptEnv, account meter.Address) (nonce uint64) {
	env.GetStorage(nonceKey(account), func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &nonce)
	})
	return
}

func setNonce(env *types.ScriptEnv, account meter.Address, nonce uint64) {
	env.SetStorage(nonceKey(account), func() ([]byte, error) {
		return rlp.EncodeToBytes(nonce)
	})
}

// Dispatcher invokes an entrypoint of the contract within env.
type Dispatcher func(env *types.ScriptEnv, entrypoint string, payload []byte) ([]byte, error)

// Handle runs a permit: it decodes param, authorizes it, then dispatches the
// payload to the permitted entrypoint with the signer as sender.
func Handle(auth Authorizer, env *types.ScriptEnv, param []byte, permitted func(string) bool, dispatch Dispatcher) ([]byte, error) {
	var p Param
	if err := codec.Decode(param, &p); err != nil {
		return nil, types.ErrParse
	}
	if err := auth.Authorize(env, &p); err != nil {
		return nil, err
	}
	if !permitted(p.Message.EntryPoint) {
		return nil, ErrWrongEntryPoint
	}
	return dispatch(env.As(codec.AccountAddress(p.Signer)), p.Message.EntryPoint, p.Message.Payload)
}

// HandleViewMessageHash computes the message hash of a permit without any check.
func HandleViewMessageHash(auth Authorizer, param []byte) ([]byte, error) {
	var p Param
	if err := codec.Decode(param, &p); err != nil {
		return nil, types.ErrParse
	}
	return codec.Encode(codec.Hash(auth.MessageHash(&p))), nil
}

// HandleNonceOf returns nonces of the queried accounts.
func HandleNonceOf(env *types.ScriptEnv, param []byte) ([]byte, error) {
	var q NonceOfParams
	if err := codec.Decode(param, &q); err != nil {
		return nil, types.ErrParse
	}
	resp := make(NonceOfResponse, 0, len(q))
	for _, a := range q {
		resp = append(resp, NonceOf(env, a))
	}
	return codec.Encode(resp), nil
}

// HandleSupportsPermit answers which of the queried entrypoints a permit may dispatch.
func HandleSupportsPermit(param []byte, permitted func(string) bool) ([]byte, error) {
	var q SupportsPermitParams
	if err := codec.Decode(param, &q); err != nil {
		return nil, types.ErrParse
	}
	resp := make(SupportsPermitResponse, 0, len(q))
	for _, e := range q {
		resp = append(resp, permitted(e))
	}
	return codec.Encode(resp), nil
}
