// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package cbor

import "math"

// Type identifies the shape of a decoded [Item].
type Type uint8

const (
	// TypeUint is a non-negative integer (CBOR major type 0).
	TypeUint Type = iota
	// TypeNegInt is a negative integer (CBOR major type 1).
	TypeNegInt
	// TypeBytes is a byte string (CBOR major type 2).
	TypeBytes
	// TypeText is a text string (CBOR major type 3). No UTF-8 validation
	// is performed.
	TypeText
	// TypeArray is the head of an array (CBOR major type 4).
	TypeArray
	// TypeMap is the head of a map (CBOR major type 5).
	TypeMap
	// TypeBool is a CBOR simple value false/true.
	TypeBool
	// TypeNull is the CBOR simple value null.
	TypeNull
	// TypeUndefined is the CBOR simple value undefined.
	TypeUndefined
	// TypeSimple is any other simple value (major type 7, not a float,
	// not false/true/null/undefined/break). Carried opaquely in Uint.
	TypeSimple
	// TypeFloat is a half/single/double precision float (major type 7).
	// Carried opaquely; the raw argument bits are in Uint.
	TypeFloat
	// TypeBreak is the "break" stop code used to end an indefinite-length
	// array, map, byte string, or text string. Decoder.Next never returns
	// an item of this type: a break code it reads is reported as
	// [ErrNotWellFormed], and callers that walk indefinite-length
	// containers detect the terminator with [Decoder.TryBreak] instead.
	TypeBreak
)

// Item is a single decoded CBOR data item. Depending on Type, only a subset
// of the fields are meaningful:
//
//   - TypeUint, TypeNegInt: Uint holds the unsigned argument; use [Item.Int64]
//     to get the signed value.
//   - TypeBytes, TypeText: Bytes holds the value. Borrowed from the input
//     buffer unless the item was indefinite-length, in which case it is a
//     freshly allocated concatenation of the chunks.
//   - TypeArray, TypeMap: Count holds the element (array) or pair (map)
//     count, meaningless when Indefinite is true.
//   - TypeBool: Uint is 0 for false, 1 for true.
//   - TypeSimple, TypeFloat: Uint holds the raw argument/bit pattern.
//
// Tags holds any CBOR tag numbers that prefixed this item, outermost first.
type Item struct {
	Type       Type
	Uint       uint64
	Bytes      []byte
	Count      uint64
	Indefinite bool
	Tags       []uint64
}

// Int64 returns the signed integer value of a TypeUint or TypeNegInt item.
// ok is false for any other type, or if the magnitude does not fit in an
// int64.
func (it Item) Int64() (v int64, ok bool) {
	switch it.Type {
	case TypeUint:
		if it.Uint > math.MaxInt64 {
			return 0, false
		}
		return int64(it.Uint), true
	case TypeNegInt:
		if it.Uint > math.MaxInt64 {
			return 0, false
		}
		return -1 - int64(it.Uint), true
	default:
		return 0, false
	}
}

// HasTag reports whether num appears anywhere in Tags.
func (it Item) HasTag(num uint64) bool {
	for _, t := range it.Tags {
		if t == num {
			return true
		}
	}
	return false
}
