// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaindigest

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"

	"github.com/clearline-inc/ledgerd/fault"
)

// Length - number of bytes in the digest
const Length = 32

// Digest - type for a chain digest
// stored and displayed as big endian hex
// to convert to bytes just use d[:]
type Digest [Length]byte

// Seed - the fixed value the first reading of a segment chains from
var Seed = Digest{}

// NewDigest - create a digest from a byte slice
func NewDigest(record []byte) Digest {
	return sha3.Sum256(record)
}

// ForRecord - chain step digest: hash of the canonical payload
// followed by the previous digest in the chain
func ForRecord(previous Digest, canonical []byte) Digest {
	h := sha3.New256()
	h.Write(canonical)
	h.Write(previous[:])
	var digest Digest
	copy(digest[:], h.Sum(nil))
	return digest
}

// IsSeed - true for the fixed chain seed value
func (digest Digest) IsSeed() bool {
	return digest == Seed
}

// String - convert a binary digest to hex string for use by the fmt package (for %s)
func (digest Digest) String() string {
	return hex.EncodeToString(digest[:])
}

// GoString - convert a binary digest to hex string for use by the fmt package (for %#v)
func (digest Digest) GoString() string {
	return "<SHA3-256:" + hex.EncodeToString(digest[:]) + ">"
}

// Scan - convert a hex representation to a digest for use by the format package scan routines
func (digest *Digest) Scan(state fmt.ScanState, verb rune) error {
	token, err := state.Token(true, func(c rune) bool {
		if c >= '0' && c <= '9' {
			return true
		}
		if c >= 'A' && c <= 'F' {
			return true
		}
		if c >= 'a' && c <= 'f' {
			return true
		}
		return false
	})
	if nil != err {
		return err
	}
	if len(token) != hex.EncodedLen(Length) {
		return fault.WrongDigestLength
	}

	buffer := make([]byte, hex.DecodedLen(len(token)))
	_, err = hex.Decode(buffer, token)
	if nil != err {
		return err
	}

	copy(digest[:], buffer)
	return nil
}

// MarshalText - convert digest to hex text
func (digest Digest) MarshalText() ([]byte, error) {
	size := hex.EncodedLen(len(digest))
	buffer := make([]byte, size)
	hex.Encode(buffer, digest[:])
	return buffer, nil
}

// UnmarshalText - convert hex text into a digest
func (digest *Digest) UnmarshalText(s []byte) error {
	if Length != hex.DecodedLen(len(s)) {
		return fault.WrongDigestLength
	}
	buffer := make([]byte, hex.DecodedLen(len(s)))
	byteCount, err := hex.Decode(buffer, s)
	if nil != err {
		return err
	}
	copy(digest[:], buffer[:byteCount])
	return nil
}

// DigestFromBytes - convert and validate a binary byte slice to a digest
func DigestFromBytes(digest *Digest, buffer []byte) error {
	if Length != len(buffer) {
		return fault.WrongDigestLength
	}
	copy(digest[:], buffer)
	return nil
}
