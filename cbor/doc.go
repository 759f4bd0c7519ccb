// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

// Package cbor implements a minimal streaming decoder for RFC 8949 Concise
// Binary Object Representation (CBOR).
//
// Unlike a reflection-based marshal/unmarshal package, [Decoder] surfaces one
// data item at a time and never builds a Go value graph: arrays and maps
// come back as a head (an element count, or a flag saying the length is
// indefinite and was terminated by a break) that the caller walks by asking
// for further items, and byte/text strings are slices borrowed directly from
// the input except when they arrive as indefinite-length chunks, which have
// to be concatenated into a freshly allocated buffer.
//
// Not supported, because nothing that uses this package needs it:
//
//   - Encoding (this package only reads)
//   - Recovering Go struct/map values by reflection
//   - Interpreting floating-point or most other "simple" values; they come
//     back as an opaque [Item] of type [TypeSimple] or [TypeFloat]
//   - Tag numbers above the 64-bit range a tag argument can hold
package cbor
