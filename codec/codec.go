// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package codec implements the little-endian binary layout of contract
// parameters and return values.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/meterio/meter-auction/meter"
)

var (
	ErrShortBuffer   = errors.New("codec: unexpected end of input")
	ErrTrailingBytes = errors.New("codec: trailing bytes after value")
	ErrInvalidTag    = errors.New("codec: invalid tag")
	ErrTooLong       = errors.New("codec: length exceeds prefix width")
	ErrInvalidString = errors.New("codec: invalid utf-8 string")
	ErrOverflow      = errors.New("codec: LEB128 value overflows u64")
)

// Serializer is implemented by values with a binary layout.
type Serializer interface {
	Serialize(w *Writer)
}

// Deserializer is implemented by values decodable from their binary layout.
type Deserializer interface {
	Deserialize(r *Reader)
}

// Encode returns the binary layout of v.
func Encode(v Serializer) []byte {
	w := NewWriter()
	v.Serialize(w)
	return w.Bytes()
}

// Decode parses data into v, which must consume all of it.
func Decode(data []byte, v Deserializer) error {
	r := NewReader(data)
	v.Deserialize(r)
	return r.Done()
}

// Writer appends little-endian encoded values to a buffer.
type Writer struct {
	buf []byte
	err error
}

func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, 64)}
}

// Bytes returns the encoded bytes. It panics if a length prefix overflowed,
// since that is a programming error of the caller.
func (w *Writer) Bytes() []byte {
	if w.err != nil {
		panic(w.err)
	}
	return w.buf
}

// Err returns the first encoding error.
func (w *Writer) Err() error { return w.err }

func (w *Writer) U8(v uint8)   { w.buf = append(w.buf, v) }
func (w *Writer) U16(v uint16) { w.buf = binary.LittleEndian.AppendUint16(w.buf, v) }
func (w *Writer) U32(v uint32) { w.buf = binary.LittleEndian.AppendUint32(w.buf, v) }
func (w *Writer) U64(v uint64) { w.buf = binary.LittleEndian.AppendUint64(w.buf, v) }

func (w *Writer) Bool(v bool) {
	if v {
		w.U8(1)
	} else {
		w.U8(0)
	}
}

// Raw appends b without a length prefix.
func (w *Writer) Raw(b []byte) { w.buf = append(w.buf, b...) }

// LEB128 appends v as unsigned LEB128, the layout of token amounts.
func (w *Writer) LEB128(v uint64) { w.buf = binary.AppendUvarint(w.buf, v) }

func (w *Writer) Address(a meter.Address) { w.Raw(a[:]) }
func (w *Writer) Bytes32(b meter.Bytes32) { w.Raw(b[:]) }

func (w *Writer) Timestamp(ts meter.Timestamp) { w.U64(uint64(ts)) }

// Bytes8 writes b with a u8 length prefix.
func (w *Writer) Bytes8(b []byte) {
	if len(b) > 0xff {
		w.fail(ErrTooLong)
		return
	}
	w.U8(uint8(len(b)))
	w.Raw(b)
}

// Bytes16 writes b with a u16 length prefix.
func (w *Writer) Bytes16(b []byte) {
	if len(b) > 0xffff {
		w.fail(ErrTooLong)
		return
	}
	w.U16(uint16(len(b)))
	w.Raw(b)
}

// Bytes32Len writes b with a u32 length prefix.
func (w *Writer) Bytes32Len(b []byte) {
	if uint64(len(b)) > 0xffffffff {
		w.fail(ErrTooLong)
		return
	}
	w.U32(uint32(len(b)))
	w.Raw(b)
}

// String writes s with a u32 length prefix.
func (w *Writer) String(s string) { w.Bytes32Len([]byte(s)) }

// Entrypoint writes an entrypoint name with a u16 length prefix.
func (w *Writer) Entrypoint(name string) { w.Bytes16([]byte(name)) }

// Len16 writes a u16 element count of a list.
func (w *Writer) Len16(n int) {
	if n > 0xffff {
		w.fail(ErrTooLong)
		return
	}
	w.U16(uint16(n))
}

// Len32 writes a u32 element count of a list.
func (w *Writer) Len32(n int) {
	if uint64(n) > 0xffffffff {
		w.fail(ErrTooLong)
		return
	}
	w.U32(uint32(n))
}

func (w *Writer) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

// Reader consumes little-endian encoded values. The first error is sticky:
// all later reads return zero values.
type Reader struct {
	data []byte
	off  int
	err  error
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Err returns the first decoding error.
func (r *Reader) Err() error { return r.err }

// Remaining returns count of unread bytes.
func (r *Reader) Remaining() int { return len(r.data) - r.off }

// Done returns the first error, or ErrTrailingBytes if input is left.
func (r *Reader) Done() error {
	if r.err != nil {
		return r.err
	}
	if r.off != len(r.data) {
		return ErrTrailingBytes
	}
	return nil
}

// Fail records err unless an error is already recorded.
func (r *Reader) Fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.Remaining() < n {
		r.Fail(ErrShortBuffer)
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *Reader) U8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *Reader) U16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *Reader) U32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *Reader) U64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *Reader) Bool() bool {
	switch r.U8() {
	case 0:
		return false
	case 1:
		return true
	default:
		r.Fail(ErrInvalidTag)
		return false
	}
}

// Tag reads a one byte variant tag, which must be below n.
func (r *Reader) Tag(n uint8) uint8 {
	t := r.U8()
	if r.err == nil && t >= n {
		r.Fail(fmt.Errorf("%w: %d", ErrInvalidTag, t))
	}
	return t
}

func (r *Reader) LEB128() uint64 {
	if r.err != nil {
		return 0
	}
	v, n := binary.Uvarint(r.data[r.off:])
	if n == 0 {
		r.Fail(ErrShortBuffer)
		return 0
	}
	if n < 0 {
		r.Fail(ErrOverflow)
		return 0
	}
	r.off += n
	return v
}

func (r *Reader) Address() (a meter.Address) {
	copy(a[:], r.take(meter.AddressLength))
	return
}

func (r *Reader) Bytes32() (b meter.Bytes32) {
	copy(b[:], r.take(32))
	return
}

func (r *Reader) Timestamp() meter.Timestamp { return meter.Timestamp(r.U64()) }

func (r *Reader) copyN(n int) []byte {
	b := r.take(n)
	if b == nil {
		return nil
	}
	return append([]byte{}, b...)
}

func (r *Reader) Bytes8() []byte     { return r.copyN(int(r.U8())) }
func (r *Reader) Bytes16() []byte    { return r.copyN(int(r.U16())) }
func (r *Reader) Bytes32Len() []byte { return r.copyN(int(r.U32())) }

func (r *Reader) String() string {
	b := r.Bytes32Len()
	if r.err == nil && !utf8.Valid(b) {
		r.Fail(ErrInvalidString)
	}
	return string(b)
}

func (r *Reader) Entrypoint() string {
	b := r.Bytes16()
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			r.Fail(ErrInvalidString)
			break
		}
	}
	return string(b)
}

// Len16 reads a u16 element count of a list.
func (r *Reader) Len16() int { return int(r.U16()) }

// Len32 reads a u32 element count of a list.
func (r *Reader) Len32() int { return int(r.U32()) }
