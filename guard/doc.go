// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package guard - append-only enforcement for ledger-class records
//
// every write to a ledger-class table (Readings, AuditTrail,
// EngineeringReconciliation) passes through Authorize before it
// reaches the store:
//
//   - inserts are always allowed
//   - deletes are always denied
//   - updates are denied, except the single allowlisted path that
//     flips a reconciliation note to SUPERSEDED, sets its forward
//     reference, or advances its review status - every other field
//     must be byte-identical
//
// the guard holds no state and takes no locks of its own; it runs
// inline with the caller's transaction and its verdict is the only
// side effect
package guard
