// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - maintain the on-disk data store
//
// maintains a single LevelDB database protected by a set of pool
// handles, one per record class.  Each pool has a single byte prefix
// that partitions the key space:
//
//	Readings:
//	  R<reading-id>       - packed pressure reading with chain digests
//	Segment index:
//	  S<segment-id>       - chain tip (sequence + digest) per segment
//	  X<segment-id>00<n>  - sequence number to reading id
//	Audit:
//	  A<entry-id>         - packed audit trail entry
//	Reconciliation:
//	  N<note-id>          - packed reconciliation note
//	  T<thread-root>00<n> - version number to note id
//	  H<thread-root>      - note id of the CURRENT version
//	Reference:
//	  G<segment-id>       - pipeline segment registration
//	  E<sensor-id>        - sensor registration
//	  U<user-id>          - user registration
//	Internal:
//	  Q<name>             - identifier sequence allocators
//	  Z<key>              - test data
//
// Pools backing the ledger record classes (Readings, AuditTrail and
// EngineeringReconciliation) refuse deletes and all non-allowlisted
// updates at this layer, so no higher code path can mutate sealed
// history.  Denied mutations are reported through a registered hook.
package storage
