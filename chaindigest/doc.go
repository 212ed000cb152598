// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaindigest - hashing for the tamper-evident reading chain
//
// each committed record is digested together with the digest of the
// record immediately preceding it in the same segment, so any
// retroactive change to a stored record invalidates every later
// digest in that segment and is detectable by recomputation
//
// uses SHA3-256; the first record of a segment chains from a fixed
// all-zero seed value
package chaindigest
