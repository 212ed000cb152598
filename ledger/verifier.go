// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"time"

	"github.com/bitmark-inc/logger"
)

// periodic re-verification of every segment chain
type verifier struct {
	log      *logger.L
	interval time.Duration
}

// Run - background loop
func (v *verifier) Run(args interface{}, shutdown <-chan struct{}) {
	log := v.log
	log.Info("starting…")

loop:
	for {
		select {
		case <-shutdown:
			break loop

		case <-time.After(v.interval):
			results, err := verifyAll(false)
			if nil != err {
				log.Errorf("verification error: %s", err)
			}
			total := uint64(0)
			broken := 0
			for _, result := range results {
				total += result.Checked
				if !result.Valid {
					broken += 1
				}
			}
			if broken > 0 {
				log.Criticalf("verification pass: %d segments, %d records, %d broken chains",
					len(results), total, broken)
			} else {
				log.Infof("verification pass: %d segments, %d records, all intact",
					len(results), total)
			}
		}
	}

	log.Info("shutting down…")
	log.Flush()
}
