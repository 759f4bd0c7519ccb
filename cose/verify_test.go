// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package cose_test

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"testing"

	"github.com/coseverify/sign1/cose"
)

// --- minimal hand-rolled CBOR head encoding, for building adversarial and
// golden-path COSE_Sign1 byte sequences without depending on this module's
// own cbor package (which would make these tests unable to catch a bug
// shared by both sides). ---

func head(major byte, n uint64) []byte {
	m := major << 5
	switch {
	case n < 24:
		return []byte{m | byte(n)}
	case n < 1<<8:
		return []byte{m | 24, byte(n)}
	case n < 1<<16:
		return []byte{m | 25, byte(n >> 8), byte(n)}
	case n < 1<<32:
		return []byte{m | 26, byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)}
	default:
		return []byte{
			m | 27,
			byte(n >> 56), byte(n >> 48), byte(n >> 40), byte(n >> 32),
			byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n),
		}
	}
}

func uintItem(n uint64) []byte    { return head(0, n) }
func negIntItem(v int64) []byte   { return head(1, uint64(-1-v)) }
func bstr(b []byte) []byte        { return append(head(2, uint64(len(b))), b...) }
func tstr(s string) []byte        { return append(head(3, uint64(len(s))), []byte(s)...) }
func arrayHead(n int) []byte      { return head(4, uint64(n)) }
func mapHead(n int) []byte        { return head(5, uint64(n)) }
func tagHead(num uint64) []byte   { return head(6, num) }

// sigStructureBytes builds the Sig_structure for a COSE_Sign1 message the
// same way RFC 8152 section 4.4 defines it, independently of this module's
// own TBS builder, so the golden-path test actually exercises interop
// rather than testing the implementation against itself.
func sigStructureBytes(protectedMap, payload []byte) []byte {
	var b []byte
	b = append(b, arrayHead(4)...)
	b = append(b, tstr("Signature1")...)
	b = append(b, bstr(protectedMap)...)
	b = append(b, bstr(nil)...)
	b = append(b, bstr(payload)...)
	return b
}

func buildSign1(protectedMap, unprotectedMap, payload, signature []byte) []byte {
	var b []byte
	b = append(b, tagHead(18)...)
	b = append(b, arrayHead(4)...)
	b = append(b, bstr(protectedMap)...)
	b = append(b, unprotectedMap...)
	b = append(b, bstr(payload)...)
	b = append(b, bstr(signature)...)
	return b
}

func signES256(t *testing.T, priv *ecdsa.PrivateKey, protectedMap, payload []byte) []byte {
	t.Helper()
	hash := sha256.Sum256(sigStructureBytes(protectedMap, payload))
	r, s, err := ecdsa.Sign(rand.Reader, priv, hash[:])
	if err != nil {
		t.Fatalf("ecdsa.Sign: %v", err)
	}
	n := (priv.Params().N.BitLen() + 7) / 8
	sig := make([]byte, 2*n)
	r.FillBytes(sig[:n])
	s.FillBytes(sig[n:])
	return sig
}

func es256ProtectedMap() []byte {
	return append(mapHead(1), append(uintItem(1), negIntItem(cose.AlgES256)...)...)
}

func kidMap(kid []byte) []byte {
	return append(mapHead(1), append(uintItem(4), bstr(kid)...)...)
}

func errCode(t *testing.T, err error) cose.ErrorCode {
	t.Helper()
	var ve *cose.VerifyError
	if !errors.As(err, &ve) {
		t.Fatalf("error %v is not a *cose.VerifyError", err)
	}
	return ve.Code
}

func TestVerifyGoldenPath(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	protected := es256ProtectedMap()
	payload := []byte("This is the content.")
	sig := signES256(t, priv, protected, payload)
	msg := buildSign1(protected, kidMap([]byte("11")), payload, sig)

	got, err := cose.Verify(0, &priv.PublicKey, msg)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload = %q, want %q", got, payload)
	}
}

func TestVerifyBitFlippedSignatureFails(t *testing.T) {
	priv, _ := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	protected := es256ProtectedMap()
	payload := []byte("This is the content.")
	sig := signES256(t, priv, protected, payload)
	sig[0] ^= 0xff
	msg := buildSign1(protected, kidMap([]byte("11")), payload, sig)

	_, err := cose.Verify(0, &priv.PublicKey, msg)
	if err == nil {
		t.Fatal("Verify succeeded with a corrupted signature")
	}
	if code := errCode(t, err); code != cose.SigVerify {
		t.Fatalf("code = %v, want SigVerify", code)
	}
}

func TestVerifyBitFlippedPayloadFails(t *testing.T) {
	priv, _ := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	protected := es256ProtectedMap()
	payload := []byte("This is the content.")
	sig := signES256(t, priv, protected, payload)
	tampered := append([]byte{}, payload...)
	tampered[0] ^= 0xff
	msg := buildSign1(protected, kidMap([]byte("11")), tampered, sig)

	if _, err := cose.Verify(0, &priv.PublicKey, msg); err == nil {
		t.Fatal("Verify succeeded with a tampered payload")
	}
}

func TestVerifyWrongArrayLength(t *testing.T) {
	var b []byte
	b = append(b, tagHead(18)...)
	b = append(b, arrayHead(3)...)
	b = append(b, bstr(es256ProtectedMap())...)
	b = append(b, mapHead(0)...)
	b = append(b, bstr([]byte("x"))...)

	_, err := cose.Verify(0, nil, b)
	if code := errCode(t, err); code != cose.Sign1Format {
		t.Fatalf("code = %v, want Sign1Format", code)
	}
}

func TestVerifyMissingTagRejected(t *testing.T) {
	var b []byte
	b = append(b, arrayHead(4)...)
	b = append(b, bstr(es256ProtectedMap())...)
	b = append(b, mapHead(0)...)
	b = append(b, bstr([]byte("x"))...)
	b = append(b, bstr(make([]byte, 64))...)

	_, err := cose.Verify(0, nil, b)
	if code := errCode(t, err); code != cose.Sign1Format {
		t.Fatalf("code = %v, want Sign1Format", code)
	}
}

func TestVerifyUnknownCriticalHeaderRejected(t *testing.T) {
	// protected = {1: -7, 2: [100], 100: 0}
	protected := append(mapHead(3),
		append(uintItem(1), negIntItem(cose.AlgES256)...)...)
	protected = append(protected, uintItem(2)...)
	protected = append(protected, append(arrayHead(1), uintItem(100)...)...)
	protected = append(protected, uintItem(100)...)
	protected = append(protected, uintItem(0)...)

	msg := buildSign1(protected, mapHead(0), []byte("x"), make([]byte, 64))

	_, err := cose.Verify(0, nil, msg)
	if code := errCode(t, err); code != cose.UnknownCriticalHeader {
		t.Fatalf("code = %v, want UnknownCriticalHeader", code)
	}
}

func TestVerifyTooManyUnknownHeadersRejected(t *testing.T) {
	const extra = 11
	protected := mapHead(1 + extra)
	protected = append(protected, uintItem(1)...)
	protected = append(protected, negIntItem(cose.AlgES256)...)
	for i := 0; i < extra; i++ {
		protected = append(protected, uintItem(uint64(200+i))...)
		protected = append(protected, uintItem(0)...)
	}

	msg := buildSign1(protected, mapHead(0), []byte("x"), make([]byte, 64))

	_, err := cose.Verify(0, nil, msg)
	if code := errCode(t, err); code != cose.TooManyHeaders {
		t.Fatalf("code = %v, want TooManyHeaders", code)
	}
}

func TestVerifyReservedAlgZeroRejected(t *testing.T) {
	protected := append(mapHead(1), append(uintItem(1), uintItem(0)...)...)
	msg := buildSign1(protected, mapHead(0), []byte("x"), make([]byte, 64))

	_, err := cose.Verify(0, nil, msg)
	if code := errCode(t, err); code != cose.UnsupportedSigningAlg {
		t.Fatalf("code = %v, want UnsupportedSigningAlg", code)
	}
}

func TestVerifyOversizedAlgRejected(t *testing.T) {
	protected := append(mapHead(1), uintItem(1)...)
	protected = append(protected, head(0, 1<<33)...)
	msg := buildSign1(protected, mapHead(0), []byte("x"), make([]byte, 64))

	_, err := cose.Verify(0, nil, msg)
	if code := errCode(t, err); code != cose.UnsupportedSigningAlg {
		t.Fatalf("code = %v, want UnsupportedSigningAlg", code)
	}
}

func TestVerifyRequireKidRejectsMissingKid(t *testing.T) {
	protected := es256ProtectedMap()
	msg := buildSign1(protected, mapHead(0), []byte("x"), make([]byte, 64))

	_, err := cose.Verify(cose.RequireKid, nil, msg)
	if code := errCode(t, err); code != cose.NoKid {
		t.Fatalf("code = %v, want NoKid", code)
	}
}

func TestVerifyBothIVAndPartialIVRejected(t *testing.T) {
	// protected = {1: -7, 5: h'00', 6: h'01'}
	protected := mapHead(3)
	protected = append(protected, uintItem(1)...)
	protected = append(protected, negIntItem(cose.AlgES256)...)
	protected = append(protected, uintItem(5)...)
	protected = append(protected, bstr([]byte{0x00})...)
	protected = append(protected, uintItem(6)...)
	protected = append(protected, bstr([]byte{0x01})...)

	msg := buildSign1(protected, mapHead(0), []byte("x"), make([]byte, 64))

	_, err := cose.Verify(0, nil, msg)
	if code := errCode(t, err); code != cose.Sign1Format {
		t.Fatalf("code = %v, want Sign1Format", code)
	}
}

func TestVerifyTruncatedInputRejected(t *testing.T) {
	msg := buildSign1(es256ProtectedMap(), mapHead(0), []byte("x"), make([]byte, 64))
	_, err := cose.Verify(0, nil, msg[:len(msg)-2])
	if code := errCode(t, err); code != cose.CBORNotWellFormed {
		t.Fatalf("code = %v, want CBORNotWellFormed", code)
	}
}

func TestVerifyShortCircuitRequiresOption(t *testing.T) {
	protected := es256ProtectedMap()
	payload := []byte("debug payload")
	hash := sha256.Sum256(sigStructureBytes(protected, payload))
	msg := buildSign1(protected, kidMap(cose.ShortCircuitKid()), payload, hash[:])

	_, err := cose.Verify(0, nil, msg)
	if code := errCode(t, err); code != cose.ShortCircuitSig {
		t.Fatalf("code = %v, want ShortCircuitSig", code)
	}
}

func TestVerifyShortCircuitAllowed(t *testing.T) {
	protected := es256ProtectedMap()
	payload := []byte("debug payload")
	hash := sha256.Sum256(sigStructureBytes(protected, payload))
	msg := buildSign1(protected, kidMap(cose.ShortCircuitKid()), payload, hash[:])

	got, err := cose.Verify(cose.AllowShortCircuit, nil, msg)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload = %q, want %q", got, payload)
	}
}

func TestVerifyShortCircuitWrongHashFails(t *testing.T) {
	protected := es256ProtectedMap()
	payload := []byte("debug payload")
	badHash := make([]byte, sha256.Size)
	msg := buildSign1(protected, kidMap(cose.ShortCircuitKid()), payload, badHash)

	_, err := cose.Verify(cose.AllowShortCircuit, nil, msg)
	if code := errCode(t, err); code != cose.SigVerify {
		t.Fatalf("code = %v, want SigVerify", code)
	}
}
