// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaindigest_test

import (
	"fmt"
	"testing"

	"golang.org/x/crypto/sha3"

	"github.com/clearline-inc/ledgerd/chaindigest"
)

// digest of a record must be the plain SHA3-256 of its bytes
func TestNewDigest(t *testing.T) {
	record := []byte("segment pressure record")
	expected := chaindigest.Digest(sha3.Sum256(record))
	actual := chaindigest.NewDigest(record)
	if actual != expected {
		t.Errorf("digest: actual: %#v  expected: %#v", actual, expected)
	}
}

// a chain step must bind the payload to the previous digest
func TestForRecord(t *testing.T) {
	payload := []byte(`{"pressurePsig":750,"segmentId":"SEG-01"}`)

	first := chaindigest.ForRecord(chaindigest.Seed, payload)
	second := chaindigest.ForRecord(first, payload)

	if first == second {
		t.Fatal("identical payloads with different previous digests must differ")
	}

	// deterministic
	again := chaindigest.ForRecord(chaindigest.Seed, payload)
	if first != again {
		t.Errorf("digest not deterministic: %#v != %#v", first, again)
	}

	// manual recomputation
	h := sha3.New256()
	h.Write(payload)
	h.Write(first[:])
	var expected chaindigest.Digest
	copy(expected[:], h.Sum(nil))
	if second != expected {
		t.Errorf("chain step: actual: %#v  expected: %#v", second, expected)
	}
}

func TestSeed(t *testing.T) {
	if !chaindigest.Seed.IsSeed() {
		t.Error("seed does not report IsSeed")
	}
	d := chaindigest.NewDigest([]byte("x"))
	if d.IsSeed() {
		t.Error("non-seed digest reports IsSeed")
	}
}

// text round trip via fmt and encoding interfaces
func TestTextRoundTrip(t *testing.T) {
	original := chaindigest.NewDigest([]byte("round trip"))

	text, err := original.MarshalText()
	if nil != err {
		t.Fatalf("marshal error: %s", err)
	}

	var restored chaindigest.Digest
	err = restored.UnmarshalText(text)
	if nil != err {
		t.Fatalf("unmarshal error: %s", err)
	}
	if restored != original {
		t.Errorf("round trip: actual: %#v  expected: %#v", restored, original)
	}

	var scanned chaindigest.Digest
	n, err := fmt.Sscan(original.String(), &scanned)
	if nil != err {
		t.Fatalf("scan error: %s", err)
	}
	if 1 != n {
		t.Fatalf("scan count: actual: %d  expected: 1", n)
	}
	if scanned != original {
		t.Errorf("scan: actual: %#v  expected: %#v", scanned, original)
	}
}

func TestUnmarshalTextBadLength(t *testing.T) {
	var d chaindigest.Digest
	err := d.UnmarshalText([]byte("abcdef"))
	if nil == err {
		t.Error("unmarshal of short text unexpectedly succeeded")
	}
}

func TestDigestFromBytes(t *testing.T) {
	original := chaindigest.NewDigest([]byte("some record"))

	var digest chaindigest.Digest
	err := chaindigest.DigestFromBytes(&digest, original[:])
	if nil != err {
		t.Fatalf("digest from bytes error: %s", err)
	}
	if digest != original {
		t.Errorf("digest: actual: %#v  expected: %#v", digest, original)
	}

	err = chaindigest.DigestFromBytes(&digest, original[:10])
	if nil == err {
		t.Error("short buffer unexpectedly accepted")
	}
}
