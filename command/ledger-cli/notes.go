// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/clearline-inc/ledgerd/reconciliation"
)

func runNoteCreate(c *cli.Context, globals globalFlags) error {

	shutdown, err := openLedger(globals)
	if nil != err {
		return err
	}
	defer shutdown()

	note, err := reconciliation.CreateNote(
		c.Uint64("reading"),
		c.String("asset"),
		globals.operator,
		c.String("text"),
	)
	if nil != err {
		return err
	}

	printJson("", note, globals.verbose)
	fmt.Printf("note: %d created, thread root: %d\n", note.NoteID, note.ThreadRootID)
	return nil
}

func runNoteSupersede(c *cli.Context, globals globalFlags) error {

	shutdown, err := openLedger(globals)
	if nil != err {
		return err
	}
	defer shutdown()

	successor, err := reconciliation.Supersede(
		c.Uint64("note"),
		c.String("text"),
		globals.operator,
		c.String("reason"),
	)
	if nil != err {
		return err
	}

	printJson("", successor, globals.verbose)
	fmt.Printf("note: %d superseded by: %d version: %d\n", c.Uint64("note"), successor.NoteID, successor.VersionNumber)
	return nil
}

func runNoteAdvance(c *cli.Context, globals globalFlags) error {

	shutdown, err := openLedger(globals)
	if nil != err {
		return err
	}
	defer shutdown()

	note, err := reconciliation.AdvanceQIStatus(
		c.Uint64("note"),
		reconciliation.QIStatus(c.String("status")),
		globals.operator,
	)
	if nil != err {
		return err
	}

	printJson("", note, globals.verbose)
	fmt.Printf("note: %d review status: %s\n", note.NoteID, note.QIStatus)
	return nil
}

func runNoteShow(c *cli.Context, globals globalFlags) error {

	shutdown, err := openLedger(globals)
	if nil != err {
		return err
	}
	defer shutdown()

	note, err := reconciliation.GetNote(c.Uint64("note"))
	if nil != err {
		return err
	}

	printJson("", note)
	return nil
}

func runNoteThread(c *cli.Context, globals globalFlags) error {

	shutdown, err := openLedger(globals)
	if nil != err {
		return err
	}
	defer shutdown()

	thread, err := reconciliation.Thread(c.Uint64("root"))
	if nil != err {
		return err
	}

	if globals.verbose {
		printJson("", thread)
		return nil
	}
	for _, note := range thread {
		marker := " "
		if reconciliation.StatusCurrent == note.Status {
			marker = "*"
		}
		fmt.Printf("%s v%-3d note: %-6d %-12s %s\n", marker, note.VersionNumber, note.NoteID, note.QIStatus, note.NoteText)
	}
	return nil
}
