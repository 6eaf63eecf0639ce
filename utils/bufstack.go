package utils

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// BufStack is a little-endian cursor over lump data.
// First out of bounds read is remembered and all following reads return zeroes,
// so decoders check Err() once per record instead of once per field.
type BufStack struct {
	buf  []byte
	pos  int
	kind string
	name string
	err  error
}

func NewBufStack(kind string, b []byte) *BufStack {
	return &BufStack{
		buf:  b,
		kind: kind,
	}
}

func (bs *BufStack) SetName(name string) *BufStack {
	bs.name = name
	return bs
}

func (bs *BufStack) Name() string { return bs.name }
func (bs *BufStack) Kind() string { return bs.kind }
func (bs *BufStack) Size() int    { return len(bs.buf) }
func (bs *BufStack) Pos() int     { return bs.pos }
func (bs *BufStack) Err() error   { return bs.err }
func (bs *BufStack) Raw() []byte  { return bs.buf }

// Remaining returns amount of unread bytes, or 0 after failed read
func (bs *BufStack) Remaining() int {
	if bs.err != nil {
		return 0
	}
	return len(bs.buf) - bs.pos
}

func (bs *BufStack) String() string {
	return fmt.Sprintf("buf<%v>(%v)[p:0x%x,s:0x%x]", bs.kind, bs.name, bs.pos, len(bs.buf))
}

func (bs *BufStack) fail(err error) {
	if bs.err == nil {
		bs.err = errors.Wrapf(err, "%v", bs)
	}
}

// Seek moves cursor to absolute offset
func (bs *BufStack) Seek(offset int) {
	if offset < 0 || offset > len(bs.buf) {
		bs.fail(errors.Errorf("seek to 0x%x out of bounds", offset))
		return
	}
	bs.pos = offset
}

func (bs *BufStack) Read(amount int) []byte {
	if bs.err != nil {
		return nil
	}
	if amount < 0 || bs.pos+amount > len(bs.buf) {
		bs.fail(io.ErrUnexpectedEOF)
		return nil
	}
	oldPos := bs.pos
	bs.pos += amount
	return bs.buf[oldPos:bs.pos]
}

func (bs *BufStack) Skip(amount int) {
	bs.Read(amount)
}

func (bs *BufStack) ReadLU32() uint32 {
	if b := bs.Read(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (bs *BufStack) ReadLU16() uint16 {
	if b := bs.Read(2); b != nil {
		return binary.LittleEndian.Uint16(b)
	}
	return 0
}

func (bs *BufStack) ReadL32() int32 { return int32(bs.ReadLU32()) }
func (bs *BufStack) ReadL16() int16 { return int16(bs.ReadLU16()) }

// ReadName reads 8-byte name field, see NameToString
func (bs *BufStack) ReadName() (string, bool) {
	raw := bs.Read(NAME_SIZE)
	if raw == nil {
		return "", false
	}
	name, ok, err := NameToString(raw)
	if err != nil {
		bs.fail(err)
		return "", false
	}
	return name, ok
}
