// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package reading

import (
	"encoding/json"
	"time"

	"github.com/clearline-inc/ledgerd/chaindigest"
	"github.com/clearline-inc/ledgerd/fault"
)

// Quality - provenance tag for a pressure value
type Quality string

// allowed data quality tags
const (
	QualityGood      Quality = "GOOD"
	QualitySuspect   Quality = "SUSPECT"
	QualityEstimated Quality = "ESTIMATED"
	QualityBad       Quality = "BAD"
)

// ValidQuality - check a quality tag is one of the allowed values
func ValidQuality(q Quality) bool {
	switch q {
	case QualityGood, QualitySuspect, QualityEstimated, QualityBad:
		return true
	}
	return false
}

// Reading - one sealed pressure measurement
//
// PreviousDigest and Digest are assigned by the ledger at append time
// and are excluded from the hashed payload
type Reading struct {
	ReadingID      uint64             `json:"readingId"`
	Timestamp      time.Time          `json:"timestamp"`
	SegmentID      string             `json:"segmentId"`
	SensorID       uint64             `json:"sensorId"`
	PressurePSIG   float64            `json:"pressurePsig"`
	MAOPPSIG       float64            `json:"maopPsig"`
	RecordedBy     uint64             `json:"recordedBy"`
	DataSource     string             `json:"dataSource"`
	DataQuality    Quality            `json:"dataQuality"`
	Notes          string             `json:"notes,omitempty"`
	PreviousDigest chaindigest.Digest `json:"previousDigest"`
	Digest         chaindigest.Digest `json:"digest"`
}

// the hashed portion of a reading
type payload struct {
	ReadingID    uint64    `json:"readingId"`
	Timestamp    time.Time `json:"timestamp"`
	SegmentID    string    `json:"segmentId"`
	SensorID     uint64    `json:"sensorId"`
	PressurePSIG float64   `json:"pressurePsig"`
	MAOPPSIG     float64   `json:"maopPsig"`
	RecordedBy   uint64    `json:"recordedBy"`
	DataSource   string    `json:"dataSource"`
	DataQuality  Quality   `json:"dataQuality"`
	Notes        string    `json:"notes,omitempty"`
}

// Payload - canonical bytes of every field except the digests
//
// this is the record the chain digest covers, so a stored reading can
// be re-verified without the digest fields influencing their own hash
func (r *Reading) Payload() ([]byte, error) {
	return chaindigest.Canonical(payload{
		ReadingID:    r.ReadingID,
		Timestamp:    r.Timestamp,
		SegmentID:    r.SegmentID,
		SensorID:     r.SensorID,
		PressurePSIG: r.PressurePSIG,
		MAOPPSIG:     r.MAOPPSIG,
		RecordedBy:   r.RecordedBy,
		DataSource:   r.DataSource,
		DataQuality:  r.DataQuality,
		Notes:        r.Notes,
	})
}

// Pack - serialize the full record for storage
func (r *Reading) Pack() ([]byte, error) {
	buffer, err := json.Marshal(r)
	if nil != err {
		return nil, fault.CanonicalEncodingFailed
	}
	return buffer, nil
}

// Unpack - deserialize a stored record
func Unpack(buffer []byte) (*Reading, error) {
	r := &Reading{}
	err := json.Unmarshal(buffer, r)
	if nil != err {
		return nil, fault.CanonicalEncodingFailed
	}
	return r, nil
}

// Validate - reject malformed readings before they reach the chain
func (r *Reading) Validate() error {
	switch {
	case "" == r.SegmentID:
		return fault.MissingSegmentIdentifier
	case "" == r.DataSource:
		return fault.MissingRecorder
	case !ValidQuality(r.DataQuality):
		return fault.DataQualityInvalid
	case r.MAOPPSIG <= 0:
		return fault.MaximumPressureInvalid
	case r.PressurePSIG <= 0:
		return fault.PressureOutOfRange
	case r.PressurePSIG > 2*r.MAOPPSIG:
		// twice the maximum allowable operating pressure is treated
		// as instrument failure, not data
		return fault.PressureOutOfRange
	}
	return nil
}
