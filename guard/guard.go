// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package guard

import (
	"encoding/json"
	"reflect"

	"github.com/clearline-inc/ledgerd/fault"
)

// Operation - the kind of write being authorized
type Operation int

// possible operations
const (
	Insert Operation = iota
	Update
	Delete
)

// String - operation name for logs and audit details
func (op Operation) String() string {
	switch op {
	case Insert:
		return "insert"
	case Update:
		return "update"
	case Delete:
		return "delete"
	}
	return "unknown"
}

// Table - logical table name of a guarded record class
type Table string

// the ledger-class tables
const (
	Readings Table = "Readings"
	Audit    Table = "AuditTrail"
	Notes    Table = "EngineeringReconciliation"
)

// the only fields of a reconciliation note that an update may touch:
// flipping a superseded flag and recording the forward reference after
// the replacement row has already been committed, plus the review
// status advance
var mutableNoteFields = map[string]struct{}{
	"status":         {},
	"supersededById": {},
	"qiStatus":       {},
}

// IsLedgerClass - true for tables subject to the append-only invariant
func IsLedgerClass(table Table) bool {
	switch table {
	case Readings, Audit, Notes:
		return true
	}
	return false
}

// Authorize - allow or deny a write to a ledger-class table
//
// existing is nil for an insert; proposed is nil for a delete; both
// are the stored JSON encodings of the row
//
// stateless: the verdict depends only on the arguments, so the guard
// can run synchronously inline with whatever transaction the caller
// holds
func Authorize(op Operation, table Table, existing []byte, proposed []byte) error {
	if !IsLedgerClass(table) {
		return nil
	}

	switch op {
	case Insert:
		return nil

	case Delete:
		return fault.DeleteNotAllowed

	case Update:
		if Notes != table {
			return fault.RecordImmutable
		}
		return authorizeNoteUpdate(existing, proposed)
	}

	return fault.RecordImmutable
}

// the single allowlisted mutation path: every field of the note except
// the lifecycle status, forward supersede reference and review status
// must be byte-identical between the existing and proposed rows
func authorizeNoteUpdate(existing []byte, proposed []byte) error {
	var before, after map[string]interface{}

	if err := json.Unmarshal(existing, &before); nil != err {
		return fault.RecordImmutable
	}
	if err := json.Unmarshal(proposed, &after); nil != err {
		return fault.RecordImmutable
	}

	for field := range mutableNoteFields {
		delete(before, field)
		delete(after, field)
	}

	if !reflect.DeepEqual(before, after) {
		return fault.RecordImmutable
	}

	// re-read the mutable fields for direction checks
	if err := json.Unmarshal(existing, &before); nil != err {
		return fault.RecordImmutable
	}
	if err := json.Unmarshal(proposed, &after); nil != err {
		return fault.RecordImmutable
	}

	// a superseded row can never become current again
	if "SUPERSEDED" == before["status"] && "CURRENT" == after["status"] {
		return fault.RecordImmutable
	}

	// the forward reference, once set, never changes; a current row
	// stores it as an explicit null
	previous := before["supersededById"]
	next := after["supersededById"]
	if nil != previous {
		if !reflect.DeepEqual(previous, next) {
			return fault.RecordImmutable
		}
	} else if nil != next {
		// a fresh reference must point strictly forward: the
		// successor row is always inserted after its predecessor,
		// so its identifier is strictly greater
		successor, okRef := next.(float64)
		noteID, okID := before["noteId"].(float64)
		if !okRef || !okID || successor <= noteID {
			return fault.RecordImmutable
		}
	}

	return nil
}
