// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/clearline-inc/ledgerd/configuration"
	"github.com/clearline-inc/ledgerd/util"
)

// basic defaults (directories and files are relative to the "data_directory" from the configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultLevelDBDirectory = "data"
	defaultDatabase         = "ledger.leveldb"

	defaultLogDirectory = "log"
	defaultLogFile      = "ledgerd.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size

	defaultVerifyInterval = "1h"
	defaultVerifyRate     = 500.0 // records per second read by a verification pass

	defaultComplianceWindow = "5m"
)

// to hold log levels
type LoglevelMap map[string]string

var defaultLogLevels = LoglevelMap{
	logger.DefaultTag: "critical",
}

type DatabaseType struct {
	Directory string `gluamapper:"directory" json:"directory"`
	Name      string `gluamapper:"name" json:"name"`
}

type VerifierType struct {
	Interval string  `gluamapper:"interval" json:"interval"`
	Rate     float64 `gluamapper:"rate" json:"rate"`
}

type ComplianceType struct {
	Warning   float64 `gluamapper:"warning" json:"warning"`
	Critical  float64 `gluamapper:"critical" json:"critical"`
	Violation float64 `gluamapper:"violation" json:"violation"`
	Window    string  `gluamapper:"window" json:"window"`
}

type Configuration struct {
	DataDirectory string               `gluamapper:"data_directory" json:"data_directory"`
	PidFile       string               `gluamapper:"pidfile" json:"pidfile"`
	Database      DatabaseType         `gluamapper:"database" json:"database"`
	Verifier      VerifierType         `gluamapper:"verifier" json:"verifier"`
	Compliance    ComplianceType       `gluamapper:"compliance" json:"compliance"`
	Logging       logger.Configuration `gluamapper:"logging" json:"logging"`
}

// verifyInterval - the parsed background verification interval
func (c *Configuration) verifyInterval() (time.Duration, error) {
	return time.ParseDuration(c.Verifier.Interval)
}

// complianceWindow - the parsed transient-filter averaging window
func (c *Configuration) complianceWindow() (time.Duration, error) {
	return time.ParseDuration(c.Compliance.Window)
}

// will read decode and verify the configuration
func getConfiguration(configurationFileName string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{

		DataDirectory: defaultDataDirectory,
		PidFile:       "", // no PidFile by default

		Database: DatabaseType{
			Directory: defaultLevelDBDirectory,
			Name:      defaultDatabase,
		},

		Verifier: VerifierType{
			Interval: defaultVerifyInterval,
			Rate:     defaultVerifyRate,
		},

		Compliance: ComplianceType{
			Warning:   0.90,
			Critical:  0.95,
			Violation: 1.00,
			Window:    defaultComplianceWindow,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels,
		},
	}

	if err := configuration.ParseConfigurationFile(configurationFileName, options); nil != err {
		return nil, err
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fmt.Errorf("path: %q is not a valid directory", options.DataDirectory)
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory // same directory as the configuration file
	} else {
		options.DataDirectory = filepath.Clean(options.DataDirectory)
	}

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); nil != err {
		return nil, err
	} else if !fileInfo.IsDir() {
		return nil, fmt.Errorf("path: %q is not a directory", options.DataDirectory)
	}

	// force all relevant items to be absolute paths
	// if not, assign them to the data directory
	mustBeAbsolute := []*string{
		&options.Database.Directory,
		&options.Logging.Directory,
	}
	for _, f := range mustBeAbsolute {
		*f = util.EnsureAbsolute(options.DataDirectory, *f)
	}

	// optional absolute paths i.e. blank or an absolute path
	optionalAbsolute := []*string{
		&options.PidFile,
	}
	for _, f := range optionalAbsolute {
		if "" != *f {
			*f = util.EnsureAbsolute(options.DataDirectory, *f)
		}
	}

	// fail if any of these are not simple file names i.e. must
	// not contain path separator, then add the correct directory
	// prefix, file item is first and corresponding directory is
	// second (or nil if no prefix can be added)
	mustNotBePaths := [][2]*string{
		{&options.Database.Name, &options.Database.Directory},
		{&options.Logging.File, nil},
	}
	for _, f := range mustNotBePaths {
		switch filepath.Dir(*f[0]) {
		case "", ".":
			if nil != f[1] {
				*f[0] = util.EnsureAbsolute(*f[1], *f[0])
			}
		default:
			return nil, fmt.Errorf("files: %q is not plain name", *f[0])
		}
	}

	// make absolute and create directories if they do not already exist
	for _, d := range []*string{
		&options.Database.Directory,
		&options.Logging.Directory,
	} {
		*d = util.EnsureAbsolute(options.DataDirectory, *d)
		if err := os.MkdirAll(*d, 0o700); nil != err {
			return nil, err
		}
	}

	// durations must parse before any service is started
	if _, err := options.verifyInterval(); nil != err {
		return nil, fmt.Errorf("verifier interval: %q error: %s", options.Verifier.Interval, err)
	}
	if _, err := options.complianceWindow(); nil != err {
		return nil, fmt.Errorf("compliance window: %q error: %s", options.Compliance.Window, err)
	}

	// done
	return options, nil
}
