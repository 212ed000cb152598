// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package guard_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/clearline-inc/ledgerd/fault"
	"github.com/clearline-inc/ledgerd/guard"
	"github.com/clearline-inc/ledgerd/reconciliation"
)

const storedNote = `{
  "noteId": 7,
  "readingId": 12,
  "timestamp": "2026-01-18T10:30:00Z",
  "reconcilerId": 2,
  "assetId": "SEG-01",
  "qiStatus": "Pending",
  "noteText": "initial assessment",
  "versionNumber": 1,
  "status": "CURRENT",
  "supersededById": null,
  "threadRootId": 7,
  "noteHash": "00aa"
}`

func TestInsertAlwaysAllowed(t *testing.T) {
	for _, table := range []guard.Table{guard.Readings, guard.Audit, guard.Notes} {
		err := guard.Authorize(guard.Insert, table, nil, []byte(`{"x":1}`))
		assert.NoError(t, err, "insert denied on %s", table)
	}
}

func TestDeleteAlwaysDenied(t *testing.T) {
	for _, table := range []guard.Table{guard.Readings, guard.Audit, guard.Notes} {
		err := guard.Authorize(guard.Delete, table, []byte(`{"x":1}`), nil)
		assert.Equal(t, fault.DeleteNotAllowed, err, "delete allowed on %s", table)
	}
}

func TestUpdateDeniedOnReadingsAndAudit(t *testing.T) {
	row := []byte(`{"pressurePsig":750}`)
	changed := []byte(`{"pressurePsig":900}`)

	for _, table := range []guard.Table{guard.Readings, guard.Audit} {
		err := guard.Authorize(guard.Update, table, row, changed)
		assert.Equal(t, fault.RecordImmutable, err, "update allowed on %s", table)

		// even a no-op update is denied on these tables
		err = guard.Authorize(guard.Update, table, row, row)
		assert.Equal(t, fault.RecordImmutable, err, "no-op update allowed on %s", table)
	}
}

func TestNoteSupersedeFlipAllowed(t *testing.T) {
	proposed := []byte(`{
  "noteId": 7,
  "readingId": 12,
  "timestamp": "2026-01-18T10:30:00Z",
  "reconcilerId": 2,
  "assetId": "SEG-01",
  "qiStatus": "Pending",
  "noteText": "initial assessment",
  "versionNumber": 1,
  "status": "SUPERSEDED",
  "supersededById": 9,
  "threadRootId": 7,
  "noteHash": "00aa"
}`)

	err := guard.Authorize(guard.Update, guard.Notes, []byte(storedNote), proposed)
	assert.NoError(t, err, "supersede flip denied")
}

func TestNoteReviewStatusAdvanceAllowed(t *testing.T) {
	proposed := []byte(`{
  "noteId": 7,
  "readingId": 12,
  "timestamp": "2026-01-18T10:30:00Z",
  "reconcilerId": 2,
  "assetId": "SEG-01",
  "qiStatus": "QI_Reviewing",
  "noteText": "initial assessment",
  "versionNumber": 1,
  "status": "CURRENT",
  "supersededById": null,
  "threadRootId": 7,
  "noteHash": "00aa"
}`)

	err := guard.Authorize(guard.Update, guard.Notes, []byte(storedNote), proposed)
	assert.NoError(t, err, "review status advance denied")
}

func TestNoteContentChangeDenied(t *testing.T) {
	// text edited alongside a legitimate status flip
	proposed := []byte(`{
  "noteId": 7,
  "readingId": 12,
  "timestamp": "2026-01-18T10:30:00Z",
  "reconcilerId": 2,
  "assetId": "SEG-01",
  "qiStatus": "Pending",
  "noteText": "rewritten history",
  "versionNumber": 1,
  "status": "SUPERSEDED",
  "supersededById": 9,
  "threadRootId": 7,
  "noteHash": "00aa"
}`)

	err := guard.Authorize(guard.Update, guard.Notes, []byte(storedNote), proposed)
	assert.Equal(t, fault.RecordImmutable, err)
}

func TestNoteHashChangeDenied(t *testing.T) {
	proposed := []byte(`{
  "noteId": 7,
  "readingId": 12,
  "timestamp": "2026-01-18T10:30:00Z",
  "reconcilerId": 2,
  "assetId": "SEG-01",
  "qiStatus": "Pending",
  "noteText": "initial assessment",
  "versionNumber": 1,
  "status": "CURRENT",
  "threadRootId": 7,
  "noteHash": "ff00"
}`)

	err := guard.Authorize(guard.Update, guard.Notes, []byte(storedNote), proposed)
	assert.Equal(t, fault.RecordImmutable, err)
}

func TestNoteUnsupersedeDenied(t *testing.T) {
	superseded := `{
  "noteId": 7,
  "noteText": "sealed",
  "versionNumber": 1,
  "status": "SUPERSEDED",
  "supersededById": 9,
  "threadRootId": 7
}`
	resurrect := `{
  "noteId": 7,
  "noteText": "sealed",
  "versionNumber": 1,
  "status": "CURRENT",
  "supersededById": 9,
  "threadRootId": 7
}`
	err := guard.Authorize(guard.Update, guard.Notes, []byte(superseded), []byte(resurrect))
	assert.Equal(t, fault.RecordImmutable, err)
}

func TestNoteForwardReferenceFrozen(t *testing.T) {
	superseded := `{
  "noteId": 7,
  "noteText": "sealed",
  "versionNumber": 1,
  "status": "SUPERSEDED",
  "supersededById": 9,
  "threadRootId": 7
}`
	repointed := `{
  "noteId": 7,
  "noteText": "sealed",
  "versionNumber": 1,
  "status": "SUPERSEDED",
  "supersededById": 11,
  "threadRootId": 7
}`
	err := guard.Authorize(guard.Update, guard.Notes, []byte(superseded), []byte(repointed))
	assert.Equal(t, fault.RecordImmutable, err)
}

func TestNoteSupersedeFlipFromPackedRow(t *testing.T) {
	// the stored encoding of a current note carries an explicit
	// "supersededById": null, which must not count as an already
	// frozen reference
	current := reconciliation.Note{
		NoteID:        7,
		ReadingID:     12,
		Timestamp:     time.Date(2026, 1, 18, 10, 30, 0, 0, time.UTC),
		ReconcilerID:  2,
		AssetID:       "SEG-01",
		QIStatus:      reconciliation.QIPending,
		NoteText:      "initial assessment",
		VersionNumber: 1,
		Status:        reconciliation.StatusCurrent,
		ThreadRootID:  7,
	}
	existing, err := current.Pack()
	assert.NoError(t, err, "pack error")

	successorID := uint64(9)
	flipped := current
	flipped.Status = reconciliation.StatusSuperseded
	flipped.SupersededByID = &successorID
	proposed, err := flipped.Pack()
	assert.NoError(t, err, "pack error")

	err = guard.Authorize(guard.Update, guard.Notes, existing, proposed)
	assert.NoError(t, err, "supersede flip of packed row denied")
}

func TestNoteBackwardReferenceDenied(t *testing.T) {
	// a fresh forward reference must name a strictly later node
	backward := []byte(`{
  "noteId": 7,
  "noteText": "initial assessment",
  "versionNumber": 2,
  "status": "SUPERSEDED",
  "supersededById": 3,
  "threadRootId": 3
}`)
	stored := []byte(`{
  "noteId": 7,
  "noteText": "initial assessment",
  "versionNumber": 2,
  "status": "CURRENT",
  "supersededById": null,
  "threadRootId": 3
}`)
	err := guard.Authorize(guard.Update, guard.Notes, stored, backward)
	assert.Equal(t, fault.RecordImmutable, err)

	// self-reference is also denied
	self := []byte(`{
  "noteId": 7,
  "noteText": "initial assessment",
  "versionNumber": 2,
  "status": "SUPERSEDED",
  "supersededById": 7,
  "threadRootId": 3
}`)
	err = guard.Authorize(guard.Update, guard.Notes, stored, self)
	assert.Equal(t, fault.RecordImmutable, err)
}

func TestUnguardedTableIgnored(t *testing.T) {
	err := guard.Authorize(guard.Update, guard.Table("SegmentTips"), []byte(`{"a":1}`), []byte(`{"a":2}`))
	assert.NoError(t, err)
	err = guard.Authorize(guard.Delete, guard.Table("SegmentTips"), []byte(`{"a":1}`), nil)
	assert.NoError(t, err)
}
