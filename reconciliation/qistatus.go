// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package reconciliation

// QIStatus - review state of a reconciliation note
type QIStatus string

// review states
const (
	QIPending   QIStatus = "Pending"
	QIReviewing QIStatus = "QI_Reviewing"
	QIApproved  QIStatus = "QI_Approved"
	QIRejected  QIStatus = "QI_Rejected"
	QIClosed    QIStatus = "Closed"
)

// legal review moves; Closed is terminal
var qiTransitions = map[QIStatus][]QIStatus{
	QIPending:   {QIReviewing},
	QIReviewing: {QIApproved, QIRejected},
	QIApproved:  {QIClosed},
	QIRejected:  {QIPending, QIClosed}, // resubmit or abandon
	QIClosed:    {},
}

// ValidQIStatus - check a review state is known
func ValidQIStatus(status QIStatus) bool {
	_, ok := qiTransitions[status]
	return ok
}

// CanTransition - check a review status move is legal
func CanTransition(from QIStatus, to QIStatus) bool {
	for _, allowed := range qiTransitions[from] {
		if to == allowed {
			return true
		}
	}
	return false
}
