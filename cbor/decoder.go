// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package cbor

import (
	"encoding/binary"
	"errors"

	"golang.org/x/crypto/cryptobyte"
)

// ErrNotWellFormed is returned for any input that does not follow the CBOR
// encoding rules: truncated items, reserved additional-info values, a break
// code where none was expected, or a length/count that exceeds MaxCount.
var ErrNotWellFormed = errors.New("cbor: not well formed")

// MaxCount bounds the element count of a definite-length array or map, and
// the byte length of a single string chunk, that this decoder will accept.
// It exists to keep a maliciously large length prefix from turning a single
// Next call into an unbounded allocation or loop; it is not a CBOR encoding
// rule.
const MaxCount = 100_000

const breakByte = 0xff

const (
	majorUint     = 0
	majorNegInt   = 1
	majorBytes    = 2
	majorText     = 3
	majorArray    = 4
	majorMap      = 5
	majorTag      = 6
	majorSimple   = 7
)

// Decoder reads CBOR data items one at a time from a fixed input buffer. It
// never copies from that buffer except to concatenate indefinite-length
// string chunks. The zero value is not usable; construct with [NewDecoder].
type Decoder struct {
	s cryptobyte.String
}

// NewDecoder returns a Decoder that reads from data. data is not copied and
// must not be modified while the Decoder is in use.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{s: cryptobyte.String(data)}
}

// Remaining returns the number of bytes not yet consumed.
func (d *Decoder) Remaining() int {
	return len(d.s)
}

// Bytes returns the unconsumed tail of the input buffer, without advancing
// the Decoder. Two Bytes results taken before and after a read share the
// same backing array, so the bytes consumed by that read are
// before[:len(before)-len(after)]; this is how callers capture a value's
// raw encoding without the Decoder copying it.
func (d *Decoder) Bytes() []byte {
	return d.s
}

func (d *Decoder) readN(n int) ([]byte, error) {
	var out []byte
	if n < 0 || !d.s.ReadBytes(&out, n) {
		return nil, ErrNotWellFormed
	}
	return out, nil
}

func (d *Decoder) readByte() (byte, error) {
	b, err := d.readN(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// readArgument decodes the additional-info encoded length/value that follows
// a head byte. indefinite is true whenever info is 31; the function does not
// see the major type, so rejecting info 31 where it is not allowed (major
// types 0, 1, 6) is left to [Decoder.Next].
func (d *Decoder) readArgument(info byte) (arg uint64, indefinite bool, err error) {
	switch {
	case info < 24:
		return uint64(info), false, nil
	case info == 24:
		b, err := d.readByte()
		if err != nil {
			return 0, false, err
		}
		return uint64(b), false, nil
	case info == 25:
		b, err := d.readN(2)
		if err != nil {
			return 0, false, err
		}
		return uint64(binary.BigEndian.Uint16(b)), false, nil
	case info == 26:
		b, err := d.readN(4)
		if err != nil {
			return 0, false, err
		}
		return uint64(binary.BigEndian.Uint32(b)), false, nil
	case info == 27:
		b, err := d.readN(8)
		if err != nil {
			return 0, false, err
		}
		return binary.BigEndian.Uint64(b), false, nil
	case info == 31:
		return 0, true, nil
	default: // 28, 29, 30: reserved
		return 0, false, ErrNotWellFormed
	}
}

// Next decodes and returns the next data item, resolving any tag prefix into
// the returned Item's Tags. For TypeArray and TypeMap it reads only the
// head; the caller must read exactly Count (Count*2 for a map) further items
// via Next, or, if Indefinite is set, keep calling Next until [Decoder.TryBreak]
// reports true.
func (d *Decoder) Next() (Item, error) {
	var tags []uint64
	for {
		first, err := d.readByte()
		if err != nil {
			return Item{}, err
		}
		major := first >> 5
		info := first & 0x1f
		if info >= 28 && info <= 30 {
			return Item{}, ErrNotWellFormed
		}
		arg, indefinite, err := d.readArgument(info)
		if err != nil {
			return Item{}, err
		}

		switch major {
		case majorTag:
			if indefinite {
				return Item{}, ErrNotWellFormed
			}
			tags = append(tags, arg)
			continue
		case majorUint:
			if indefinite {
				return Item{}, ErrNotWellFormed
			}
			return Item{Type: TypeUint, Uint: arg, Tags: tags}, nil
		case majorNegInt:
			if indefinite {
				return Item{}, ErrNotWellFormed
			}
			return Item{Type: TypeNegInt, Uint: arg, Tags: tags}, nil
		case majorBytes:
			return d.finishString(TypeBytes, arg, indefinite, tags)
		case majorText:
			return d.finishString(TypeText, arg, indefinite, tags)
		case majorArray:
			if !indefinite && arg > MaxCount {
				return Item{}, ErrNotWellFormed
			}
			return Item{Type: TypeArray, Count: arg, Indefinite: indefinite, Tags: tags}, nil
		case majorMap:
			if !indefinite && arg > MaxCount {
				return Item{}, ErrNotWellFormed
			}
			return Item{Type: TypeMap, Count: arg, Indefinite: indefinite, Tags: tags}, nil
		case majorSimple:
			if indefinite {
				// info was 31: this is the break stop code itself, which
				// is only valid where TryBreak or finishString expects it.
				return Item{}, ErrNotWellFormed
			}
			return finishSimple(info, arg, tags), nil
		default:
			return Item{}, ErrNotWellFormed
		}
	}
}

func (d *Decoder) finishString(t Type, arg uint64, indefinite bool, tags []uint64) (Item, error) {
	if !indefinite {
		if arg > MaxCount {
			return Item{}, ErrNotWellFormed
		}
		b, err := d.readN(int(arg))
		if err != nil {
			return Item{}, err
		}
		return Item{Type: t, Bytes: b, Tags: tags}, nil
	}

	var buf []byte
	for {
		if len(d.s) == 0 {
			return Item{}, ErrNotWellFormed
		}
		if d.s[0] == breakByte {
			if _, err := d.readByte(); err != nil {
				return Item{}, err
			}
			return Item{Type: t, Bytes: buf, Tags: tags}, nil
		}
		chunk, err := d.Next()
		if err != nil {
			return Item{}, err
		}
		if chunk.Type != t || chunk.Tags != nil {
			return Item{}, ErrNotWellFormed
		}
		buf = append(buf, chunk.Bytes...)
	}
}

func finishSimple(info byte, arg uint64, tags []uint64) Item {
	switch info {
	case 20:
		return Item{Type: TypeBool, Uint: 0, Tags: tags}
	case 21:
		return Item{Type: TypeBool, Uint: 1, Tags: tags}
	case 22:
		return Item{Type: TypeNull, Tags: tags}
	case 23:
		return Item{Type: TypeUndefined, Tags: tags}
	case 25, 26, 27:
		return Item{Type: TypeFloat, Uint: arg, Tags: tags}
	default:
		return Item{Type: TypeSimple, Uint: arg, Tags: tags}
	}
}

// TryBreak reports whether the next byte is the CBOR break stop code,
// consuming it if so. It is used to walk indefinite-length arrays and maps,
// checking for the terminator before each element (or, for maps, before
// each key).
func (d *Decoder) TryBreak() (bool, error) {
	if len(d.s) == 0 {
		return false, nil
	}
	if d.s[0] != breakByte {
		return false, nil
	}
	if _, err := d.readByte(); err != nil {
		return false, err
	}
	return true, nil
}

// Skip discards the remainder of an item already read via Next: for
// TypeArray and TypeMap it recursively reads and discards the item's
// children (as many nested containers deep as necessary), and for every
// other type it does nothing, since Next already consumed the full value.
func (d *Decoder) Skip(it Item) error {
	switch it.Type {
	case TypeArray:
		if it.Indefinite {
			for {
				brk, err := d.TryBreak()
				if err != nil {
					return err
				}
				if brk {
					return nil
				}
				child, err := d.Next()
				if err != nil {
					return err
				}
				if err := d.Skip(child); err != nil {
					return err
				}
			}
		}
		for i := uint64(0); i < it.Count; i++ {
			child, err := d.Next()
			if err != nil {
				return err
			}
			if err := d.Skip(child); err != nil {
				return err
			}
		}
		return nil
	case TypeMap:
		if it.Indefinite {
			for {
				brk, err := d.TryBreak()
				if err != nil {
					return err
				}
				if brk {
					return nil
				}
				key, err := d.Next()
				if err != nil {
					return err
				}
				if err := d.Skip(key); err != nil {
					return err
				}
				val, err := d.Next()
				if err != nil {
					return err
				}
				if err := d.Skip(val); err != nil {
					return err
				}
			}
		}
		for i := uint64(0); i < it.Count*2; i++ {
			child, err := d.Next()
			if err != nil {
				return err
			}
			if err := d.Skip(child); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}
