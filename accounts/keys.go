// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"errors"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/meterio/meter-auction/codec"
	"github.com/meterio/meter-auction/meter"
)

// Scheme is the signature scheme of a key.
type Scheme uint8

const (
	Secp256k1 Scheme = 0
	Ed25519   Scheme = 1
)

func (s Scheme) String() string {
	switch s {
	case Secp256k1:
		return "secp256k1"
	case Ed25519:
		return "ed25519"
	default:
		return fmt.Sprintf("scheme(%d)", uint8(s))
	}
}

var errUnknownScheme = errors.New("unknown signature scheme")

// PublicKey is a verification key of one scheme.
type PublicKey struct {
	Scheme Scheme
	Key    []byte
}

// Verify checks sig over hash.
func (pk PublicKey) Verify(hash meter.Bytes32, sig Signature) bool {
	if sig.Scheme != pk.Scheme {
		return false
	}
	switch pk.Scheme {
	case Secp256k1:
		raw := sig.Sig
		// [R || S || V], the recovery id is not needed to verify
		if len(raw) == crypto.SignatureLength {
			raw = raw[:crypto.RecoveryIDOffset]
		}
		if len(raw) != crypto.RecoveryIDOffset {
			return false
		}
		return crypto.VerifySignature(pk.Key, hash[:], raw)
	case Ed25519:
		if len(pk.Key) != ed25519.PublicKeySize {
			return false
		}
		return ed25519.Verify(ed25519.PublicKey(pk.Key), hash[:], sig.Sig)
	}
	return false
}

// Validate checks the key is well formed.
func (pk PublicKey) Validate() error {
	switch pk.Scheme {
	case Secp256k1:
		if _, err := crypto.DecompressPubkey(pk.Key); err != nil {
			if _, err := crypto.UnmarshalPubkey(pk.Key); err != nil {
				return fmt.Errorf("invalid secp256k1 public key: %v", err)
			}
		}
	case Ed25519:
		if len(pk.Key) != ed25519.PublicKeySize {
			return errors.New("invalid ed25519 public key length")
		}
	default:
		return errUnknownScheme
	}
	return nil
}

// IndexedKey is a key at an index of a credential.
type IndexedKey struct {
	Index uint8
	Key   PublicKey
}

// Credential is a set of keys, any Threshold of which can sign for it.
type Credential struct {
	Index     uint8
	Keys      []IndexedKey
	Threshold uint8
}

// AccountKeys are the registered credentials of an account, any Threshold
// of which must sign.
type AccountKeys struct {
	Credentials []Credential
	Threshold   uint8
}

// SingleKey returns keys with one secp256k1 credential of one key.
func SingleKey(pub *ecdsa.PublicKey) *AccountKeys {
	return &AccountKeys{
		Credentials: []Credential{{
			Index:     0,
			Keys:      []IndexedKey{{0, PublicKey{Secp256k1, crypto.CompressPubkey(pub)}}},
			Threshold: 1,
		}},
		Threshold: 1,
	}
}

// Validate checks thresholds are reachable and indexes unique.
func (ak *AccountKeys) Validate() error {
	if ak.Threshold == 0 || int(ak.Threshold) > len(ak.Credentials) {
		return fmt.Errorf("account threshold %d out of range", ak.Threshold)
	}
	seen := make(map[uint8]bool)
	for _, cred := range ak.Credentials {
		if seen[cred.Index] {
			return fmt.Errorf("duplicate credential index %d", cred.Index)
		}
		seen[cred.Index] = true
		if cred.Threshold == 0 || int(cred.Threshold) > len(cred.Keys) {
			return fmt.Errorf("credential %d threshold %d out of range", cred.Index, cred.Threshold)
		}
		keySeen := make(map[uint8]bool)
		for _, k := range cred.Keys {
			if keySeen[k.Index] {
				return fmt.Errorf("duplicate key index %d in credential %d", k.Index, cred.Index)
			}
			keySeen[k.Index] = true
			if err := k.Key.Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

// Verify reports whether sigs satisfy the account and credential thresholds
// over hash. Signatures under unknown indexes do not count. It also returns
// the number of signatures checked.
func (ak *AccountKeys) Verify(hash meter.Bytes32, sigs AccountSignatures) (bool, int) {
	checked := 0
	satisfied := 0
	for _, cred := range ak.Credentials {
		credSigs, ok := sigs[cred.Index]
		if !ok {
			continue
		}
		valid := 0
		for _, k := range cred.Keys {
			sig, ok := credSigs[k.Index]
			if !ok {
				continue
			}
			checked++
			if !k.Key.Verify(hash, sig) {
				// one bad signature invalidates the whole set
				return false, checked
			}
			valid++
		}
		if valid >= int(cred.Threshold) {
			satisfied++
		}
	}
	return satisfied >= int(ak.Threshold), checked
}

// Signature is a signature of one scheme.
type Signature struct {
	Scheme Scheme
	Sig    []byte
}

func (s Signature) Serialize(w *codec.Writer) {
	w.U8(uint8(s.Scheme))
	w.Bytes16(s.Sig)
}

func (s *Signature) Deserialize(r *codec.Reader) {
	s.Scheme = Scheme(r.Tag(2))
	s.Sig = r.Bytes16()
}

// CredentialSignatures maps key index to signature.
type CredentialSignatures map[uint8]Signature

// AccountSignatures maps credential index to the signatures of that credential.
type AccountSignatures map[uint8]CredentialSignatures

func sortedKeys[V any](m map[uint8]V) []uint8 {
	keys := make([]uint8, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Serialize writes maps in ascending key order with u8 counts.
func (as AccountSignatures) Serialize(w *codec.Writer) {
	w.U8(uint8(len(as)))
	for _, ci := range sortedKeys(as) {
		w.U8(ci)
		cs := as[ci]
		w.U8(uint8(len(cs)))
		for _, ki := range sortedKeys(cs) {
			w.U8(ki)
			cs[ki].Serialize(w)
		}
	}
}

func (as *AccountSignatures) Deserialize(r *codec.Reader) {
	n := int(r.U8())
	out := make(AccountSignatures, n)
	for i := 0; i < n && r.Err() == nil; i++ {
		ci := r.U8()
		m := int(r.U8())
		cs := make(CredentialSignatures, m)
		for j := 0; j < m && r.Err() == nil; j++ {
			ki := r.U8()
			var sig Signature
			sig.Deserialize(r)
			cs[ki] = sig
		}
		out[ci] = cs
	}
	*as = out
}

// Sign signs hash with a secp256k1 key as key 0 of credential 0.
func Sign(hash meter.Bytes32, key *ecdsa.PrivateKey) (AccountSignatures, error) {
	sig, err := crypto.Sign(hash[:], key)
	if err != nil {
		return nil, err
	}
	return AccountSignatures{0: {0: {Secp256k1, sig}}}, nil
}
