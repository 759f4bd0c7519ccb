// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package cose

import "github.com/coseverify/sign1/cbor"

// algInvalid is the sentinel AlgID value meaning "no alg header present".
// COSE reserves algorithm identifier 0, so it doubles as "absent" here.
const algInvalid int64 = 0

// HeaderSet holds the recognized fields of one COSE_Sign1 header map
// (either the protected or the unprotected one; [parseHeaderMap] is used for
// both). Fields not present in the map being parsed are left at their zero
// value; AlgID uses algInvalid (0) rather than a separate presence flag,
// since COSE reserves algorithm 0 and this package never treats it as a
// supported algorithm.
type HeaderSet struct {
	AlgID       int64
	Kid         []byte
	IV          []byte
	PartialIV   []byte
	ContentType []byte
}

// parseHeaderMap reads one CBOR map from d and interprets it as a
// COSE_Sign1 header map. An integer or byte-string label this package does
// not recognize is recorded (for the "crit" check) and its value skipped,
// rather than rejected: unrecognized headers are allowed unless named in
// "crit". A label of any other CBOR type, text strings included, is
// rejected with CBORStructure.
func parseHeaderMap(d *cbor.Decoder) (*HeaderSet, error) {
	head, err := d.Next()
	if err != nil {
		return nil, wrapErr(CBORNotWellFormed, "reading header map", err)
	}
	if head.Type != cbor.TypeMap {
		return nil, newErr(Sign1Format, "headers is not a CBOR map")
	}

	hs := &HeaderSet{}
	var critical, unknown labelList
	haveCritical := false

	visitPair := func() error {
		key, err := d.Next()
		if err != nil {
			return wrapErr(CBORNotWellFormed, "reading header label", err)
		}

		if label, ok := key.Int64(); ok {
			switch label {
			case labelAlg:
				val, err := d.Next()
				if err != nil {
					return wrapErr(CBORNotWellFormed, "reading alg value", err)
				}
				alg, ok := val.Int64()
				if !ok {
					return newErr(Sign1Format, "alg value is not a signed integer")
				}
				hs.AlgID = alg
				return nil
			case labelCrit:
				val, err := d.Next()
				if err != nil {
					return wrapErr(CBORNotWellFormed, "reading crit value", err)
				}
				if val.Type != cbor.TypeArray {
					return newErr(Sign1Format, "crit value is not a CBOR array")
				}
				if err := parseCritical(d, val, &critical); err != nil {
					return err
				}
				haveCritical = true
				return nil
			case labelContentType:
				before := d.Bytes()
				val, err := d.Next()
				if err != nil {
					return wrapErr(CBORNotWellFormed, "reading content type value", err)
				}
				if err := d.Skip(val); err != nil {
					return wrapErr(CBORNotWellFormed, "skipping content type value", err)
				}
				hs.ContentType = before[:len(before)-len(d.Bytes())]
				return nil
			case labelKid:
				val, err := d.Next()
				if err != nil {
					return wrapErr(CBORNotWellFormed, "reading kid value", err)
				}
				if val.Type != cbor.TypeBytes {
					return newErr(Sign1Format, "kid value is not a byte string")
				}
				hs.Kid = val.Bytes
				return nil
			case labelIV:
				val, err := d.Next()
				if err != nil {
					return wrapErr(CBORNotWellFormed, "reading IV value", err)
				}
				if val.Type != cbor.TypeBytes {
					return newErr(Sign1Format, "IV value is not a byte string")
				}
				hs.IV = val.Bytes
				return nil
			case labelPartialIV:
				val, err := d.Next()
				if err != nil {
					return wrapErr(CBORNotWellFormed, "reading partial IV value", err)
				}
				if val.Type != cbor.TypeBytes {
					return newErr(Sign1Format, "partial IV value is not a byte string")
				}
				hs.PartialIV = val.Bytes
				return nil
			default:
				if err := unknown.addInt(label); err != nil {
					return err
				}
				val, err := d.Next()
				if err != nil {
					return wrapErr(CBORNotWellFormed, "reading unrecognized header value", err)
				}
				if err := d.Skip(val); err != nil {
					return wrapErr(CBORNotWellFormed, "skipping unrecognized header value", err)
				}
				return nil
			}
		}

		if key.Type == cbor.TypeBytes {
			if err := unknown.addBytes(key.Bytes); err != nil {
				return err
			}
			val, err := d.Next()
			if err != nil {
				return wrapErr(CBORNotWellFormed, "reading unrecognized header value", err)
			}
			if err := d.Skip(val); err != nil {
				return wrapErr(CBORNotWellFormed, "skipping unrecognized header value", err)
			}
			return nil
		}

		return newErr(CBORStructure, "header label is neither a signed integer nor a byte string")
	}

	if head.Indefinite {
		for {
			brk, err := d.TryBreak()
			if err != nil {
				return nil, wrapErr(CBORNotWellFormed, "reading header map terminator", err)
			}
			if brk {
				break
			}
			if err := visitPair(); err != nil {
				return nil, err
			}
		}
	} else {
		for i := uint64(0); i < head.Count; i++ {
			if err := visitPair(); err != nil {
				return nil, err
			}
		}
	}

	if hs.IV != nil && hs.PartialIV != nil {
		return nil, newErr(Sign1Format, "both IV and partial IV headers present")
	}

	if haveCritical {
		if err := checkCritical(&critical, &unknown); err != nil {
			return nil, err
		}
	}

	return hs, nil
}

// parseCritical reads the elements of a "crit" array (its head already read
// as arrayItem) into list. Each element must be a signed integer or a byte
// string; anything else is a structural error, not merely an unrecognized
// label.
func parseCritical(d *cbor.Decoder, arrayItem cbor.Item, list *labelList) error {
	visit := func() error {
		el, err := d.Next()
		if err != nil {
			return wrapErr(CBORNotWellFormed, "reading crit element", err)
		}
		if v, ok := el.Int64(); ok {
			return list.addInt(v)
		}
		if el.Type == cbor.TypeBytes {
			return list.addBytes(el.Bytes)
		}
		return newErr(CBORStructure, "crit element is neither a signed integer nor a byte string")
	}

	if arrayItem.Indefinite {
		for {
			brk, err := d.TryBreak()
			if err != nil {
				return wrapErr(CBORNotWellFormed, "reading crit terminator", err)
			}
			if brk {
				return nil
			}
			if err := visit(); err != nil {
				return err
			}
		}
	}
	for i := uint64(0); i < arrayItem.Count; i++ {
		if err := visit(); err != nil {
			return err
		}
	}
	return nil
}

// parseProtectedHeaders decodes the protected header byte string. RFC 8152
// permits it to be a zero-length byte string standing in for an empty map,
// which this package must accept without attempting to decode zero bytes as
// a CBOR map head; any trailing bytes left over after the map is parsed
// mean the byte string carried more than one top-level item, which is
// malformed.
func parseProtectedHeaders(protected []byte) (*HeaderSet, error) {
	if len(protected) == 0 {
		return &HeaderSet{}, nil
	}
	d := cbor.NewDecoder(protected)
	hs, err := parseHeaderMap(d)
	if err != nil {
		return nil, err
	}
	if d.Remaining() != 0 {
		return nil, newErr(CBORNotWellFormed, "protected header byte string has trailing data")
	}
	return hs, nil
}
