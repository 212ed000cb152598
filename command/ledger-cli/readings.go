// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/clearline-inc/ledgerd/ledger"
	"github.com/clearline-inc/ledgerd/reading"
)

func runAppend(c *cli.Context, globals globalFlags) error {

	shutdown, err := openLedger(globals)
	if nil != err {
		return err
	}
	defer shutdown()

	r, err := ledger.Append(ledger.AppendArguments{
		SegmentID:    c.String("segment"),
		SensorID:     c.Uint64("sensor"),
		PressurePSIG: c.Float64("pressure"),
		RecordedBy:   globals.operator,
		DataSource:   c.String("source"),
		DataQuality:  reading.Quality(c.String("quality")),
		Notes:        c.String("notes"),
	})
	if nil != err {
		return err
	}

	printJson("", r, globals.verbose)
	fmt.Printf("reading: %d sealed on segment: %s digest: %s\n", r.ReadingID, r.SegmentID, r.Digest)
	return nil
}

func runTip(c *cli.Context, globals globalFlags) error {

	segmentID := c.String("segment")
	if "" == segmentID {
		return fmt.Errorf("segment id is required")
	}

	shutdown, err := openLedger(globals)
	if nil != err {
		return err
	}
	defer shutdown()

	digest, readingID, err := ledger.Tip(segmentID)
	if nil != err {
		return err
	}
	if digest.IsSeed() {
		fmt.Printf("segment: %s has no readings\n", segmentID)
		return nil
	}
	fmt.Printf("segment: %s tip reading: %d digest: %s\n", segmentID, readingID, digest)
	return nil
}

func runVerify(c *cli.Context, globals globalFlags) error {

	shutdown, err := openLedger(globals)
	if nil != err {
		return err
	}
	defer shutdown()

	segmentID := c.String("segment")
	var results []ledger.VerifyResult

	if "" != segmentID {
		result, verifyErr := ledger.VerifyChain(segmentID)
		results = []ledger.VerifyResult{result}
		err = verifyErr
	} else {
		results, err = ledger.VerifyAll()
	}

	for _, r := range results {
		if r.Valid {
			fmt.Printf("segment: %-12s ok       checked: %d\n", r.SegmentID, r.Checked)
		} else {
			fmt.Printf("segment: %-12s BROKEN   first break at reading: %d\n", r.SegmentID, r.FirstBreakID)
		}
	}
	return err
}
