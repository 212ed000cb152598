// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clearline-inc/ledgerd/configuration"
)

type testConfiguration struct {
	DataDirectory string  `gluamapper:"data_directory"`
	Nodes         int     `gluamapper:"nodes"`
	Warning       float64 `gluamapper:"warning"`
}

const sampleConfiguration = `
local M = {}

-- arg[0] is this file
M.data_directory = arg[0] .. ".d"
M.nodes = 7
M.warning = 0.90

return M
`

func TestParseConfigurationFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "configuration-test")
	assert.Nil(t, err, "temp dir error")
	defer os.RemoveAll(dir)

	fileName := filepath.Join(dir, "ledgerd.conf")
	err = ioutil.WriteFile(fileName, []byte(sampleConfiguration), 0o600)
	assert.Nil(t, err, "write error")

	config := &testConfiguration{}
	err = configuration.ParseConfigurationFile(fileName, config)
	assert.Nil(t, err, "parse error")

	assert.Equal(t, fileName+".d", config.DataDirectory, "wrong data_directory")
	assert.Equal(t, 7, config.Nodes, "wrong nodes")
	assert.Equal(t, 0.90, config.Warning, "wrong warning")
}

func TestParseConfigurationFileMissing(t *testing.T) {
	config := &testConfiguration{}
	err := configuration.ParseConfigurationFile("/nonexistent/ledgerd.conf", config)
	assert.NotNil(t, err, "missing file must fail")
}
