// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli"

	"github.com/clearline-inc/ledgerd/audit"
	"github.com/clearline-inc/ledgerd/compliance"
)

func runAudit(c *cli.Context, globals globalFlags) error {

	shutdown, err := openLedger(globals)
	if nil != err {
		return err
	}
	defer shutdown()

	var entries []audit.Entry

	switch {
	case "" != c.String("record"):
		if "" == c.String("table") {
			return fmt.Errorf("--record needs --table")
		}
		entries, err = audit.ByRecord(c.String("table"), c.String("record"))

	case "" != c.String("table"):
		entries, err = audit.ByTable(c.String("table"))

	case c.Uint64("actor") > 0:
		entries, err = audit.ByActor(c.Uint64("actor"))

	default:
		from := time.Time{}
		to := time.Now().UTC().Add(time.Second)
		if "" != c.String("from") {
			from, err = time.Parse(time.RFC3339, c.String("from"))
			if nil != err {
				return fmt.Errorf("from: %q error: %s", c.String("from"), err)
			}
		}
		if "" != c.String("to") {
			to, err = time.Parse(time.RFC3339, c.String("to"))
			if nil != err {
				return fmt.Errorf("to: %q error: %s", c.String("to"), err)
			}
		}
		entries, err = audit.ByTimeRange(from, to)
	}
	if nil != err {
		return err
	}

	if globals.verbose {
		printJson("", entries)
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%6d  %s  user: %-4d %-24s %-26s %s\n",
			e.EntryID,
			e.Timestamp.Format(time.RFC3339),
			e.UserID,
			e.EventType,
			e.TableAffected+"/"+e.RecordID,
			e.Details,
		)
	}
	return nil
}

func runAcknowledge(c *cli.Context, globals globalFlags) error {

	shutdown, err := openLedger(globals)
	if nil != err {
		return err
	}
	defer shutdown()

	entry, err := compliance.Acknowledge(
		c.String("segment"),
		globals.operator,
		c.String("details"),
		c.String("reason"),
	)
	if nil != err {
		return err
	}

	printJson("", entry, globals.verbose)
	fmt.Printf("acknowledgment recorded: entry %d\n", entry.EntryID)
	return nil
}
