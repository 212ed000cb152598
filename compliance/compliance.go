// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package compliance - MAOP threshold evaluation and transient filtering
//
// pressure is judged against the segment's maximum allowable operating
// pressure.  A single high sample is a SPIKE and is filtered; only a
// window whose average is also high is SUSTAINED and worth an alarm.
package compliance

import (
	"fmt"
	"sync"
	"time"

	"github.com/clearline-inc/ledgerd/audit"
	"github.com/clearline-inc/ledgerd/fault"
)

// Status - compliance state of one pressure value
type Status string

// ordered from benign to reportable
const (
	StatusOK        Status = "OK"
	StatusWarning   Status = "WARNING"
	StatusCritical  Status = "CRITICAL"
	StatusViolation Status = "VIOLATION"
)

// AlertType - transient classification of a high reading
type AlertType string

const (
	AlertNormal    AlertType = "NORMAL"
	AlertSpike     AlertType = "SPIKE"
	AlertSustained AlertType = "SUSTAINED"
)

// Thresholds - fraction of MAOP at which each status begins
type Thresholds struct {
	Warning   float64 `gluamapper:"warning" json:"warning"`
	Critical  float64 `gluamapper:"critical" json:"critical"`
	Violation float64 `gluamapper:"violation" json:"violation"`
}

// regulatory defaults
var DefaultThresholds = Thresholds{
	Warning:   0.90,
	Critical:  0.95,
	Violation: 1.00,
}

// DefaultWindow - moving average span for the transient filter
const DefaultWindow = 5 * time.Minute

var globalData struct {
	sync.RWMutex
	thresholds Thresholds
	window     time.Duration
}

func init() {
	globalData.thresholds = DefaultThresholds
	globalData.window = DefaultWindow
}

// SetThresholds - replace the active thresholds, e.g. on configuration
// reload
func SetThresholds(t Thresholds) error {
	if t.Warning <= 0 || t.Warning >= t.Critical || t.Critical >= t.Violation {
		return fault.MaximumPressureInvalid
	}
	globalData.Lock()
	globalData.thresholds = t
	globalData.Unlock()
	return nil
}

// CurrentThresholds - the active thresholds
func CurrentThresholds() Thresholds {
	globalData.RLock()
	defer globalData.RUnlock()
	return globalData.thresholds
}

// SetWindow - replace the transient filter window
func SetWindow(window time.Duration) error {
	if window <= 0 {
		return fault.InvalidCount
	}
	globalData.Lock()
	globalData.window = window
	globalData.Unlock()
	return nil
}

// Window - the active transient filter window
func Window() time.Duration {
	globalData.RLock()
	defer globalData.RUnlock()
	return globalData.window
}

// Evaluate - judge one pressure value against MAOP
//
// a non-positive MAOP is already rejected by reading validation; it is
// treated as a violation here rather than silently passing
func Evaluate(pressurePSIG float64, maopPSIG float64) Status {
	if maopPSIG <= 0 {
		return StatusViolation
	}

	ratio := pressurePSIG / maopPSIG
	t := CurrentThresholds()

	switch {
	case ratio >= t.Violation:
		return StatusViolation
	case ratio >= t.Critical:
		return StatusCritical
	case ratio >= t.Warning:
		return StatusWarning
	}
	return StatusOK
}

// Classify - transient filter over the moving window average
//
// a reading at or above the critical threshold is a SPIKE when the
// window average is still below it, SUSTAINED when the average is high
// too; everything else is NORMAL
func Classify(pressurePSIG float64, maopPSIG float64, windowAvgPSIG float64) (AlertType, bool) {
	if maopPSIG <= 0 {
		return AlertSustained, false
	}

	t := CurrentThresholds()
	currentRatio := pressurePSIG / maopPSIG
	averageRatio := windowAvgPSIG / maopPSIG

	if currentRatio >= t.Critical {
		if averageRatio >= t.Critical {
			return AlertSustained, false
		}
		return AlertSpike, true
	}
	return AlertNormal, false
}

// Acknowledge - record an operator acknowledgment of an alarm
func Acknowledge(segmentID string, operatorID uint64, details string, reason string) (*audit.Entry, error) {
	if "" == segmentID {
		return nil, fault.MissingSegmentIdentifier
	}
	return audit.Record(audit.Event{
		UserID:        operatorID,
		EventType:     audit.EventOperatorAcknowledgment,
		TableAffected: "Readings",
		RecordID:      segmentID,
		Details:       details,
		ChangeReason:  reason,
	})
}

// Describe - one line status summary for audit details and logs
func Describe(status Status, alert AlertType, pressurePSIG float64, maopPSIG float64) string {
	return fmt.Sprintf("status: %s alert: %s pressure: %.2f PSIG maop: %.2f PSIG", status, alert, pressurePSIG, maopPSIG)
}
