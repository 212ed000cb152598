// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package reconciliation

import (
	"encoding/json"
	"time"

	"github.com/clearline-inc/ledgerd/chaindigest"
	"github.com/clearline-inc/ledgerd/fault"
)

// Status - supersede state of a note version
type Status string

const (
	StatusCurrent    Status = "CURRENT"
	StatusSuperseded Status = "SUPERSEDED"
)

// Note - one version node of a reconciliation thread
//
// only Status, SupersededByID and QIStatus may change after commit;
// everything else is sealed by NoteHash
type Note struct {
	NoteID           uint64             `json:"noteId"`
	ReadingID        uint64             `json:"readingId,omitempty"`
	Timestamp        time.Time          `json:"timestamp"`
	ReconcilerID     uint64             `json:"reconcilerId"`
	AssetID          string             `json:"assetId,omitempty"`
	QIStatus         QIStatus           `json:"qiStatus"`
	NoteText         string             `json:"noteText"`
	VersionNumber    uint64             `json:"versionNumber"`
	Status           Status             `json:"status"`
	SupersededByID   *uint64            `json:"supersededById"`
	ThreadRootID     uint64             `json:"threadRootId"`
	OriginalDataHash chaindigest.Digest `json:"originalDataHash"`
	NoteHash         chaindigest.Digest `json:"noteHash"`
}

// the sealed portion of a note: review state deliberately excluded so
// QI advancement does not break the seal
type seal struct {
	NoteText     string    `json:"noteText"`
	ReadingID    uint64    `json:"readingId"`
	Timestamp    time.Time `json:"timestamp"`
	ReconcilerID uint64    `json:"reconcilerId"`
}

// Seal - compute the content hash of a note
func (n *Note) Seal() (chaindigest.Digest, error) {
	canonical, err := chaindigest.Canonical(seal{
		NoteText:     n.NoteText,
		ReadingID:    n.ReadingID,
		Timestamp:    n.Timestamp,
		ReconcilerID: n.ReconcilerID,
	})
	if nil != err {
		return chaindigest.Digest{}, err
	}
	return chaindigest.NewDigest(canonical), nil
}

// Pack - serialize for storage
func (n *Note) Pack() ([]byte, error) {
	buffer, err := json.Marshal(n)
	if nil != err {
		return nil, fault.CanonicalEncodingFailed
	}
	return buffer, nil
}

// Unpack - deserialize a stored note
func Unpack(buffer []byte) (*Note, error) {
	n := &Note{}
	err := json.Unmarshal(buffer, n)
	if nil != err {
		return nil, fault.CanonicalEncodingFailed
	}
	return n, nil
}
