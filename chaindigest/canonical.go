// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaindigest

import (
	"encoding/json"

	"github.com/clearline-inc/ledgerd/fault"
)

// Canonical - encode a record so that semantically identical records
// always produce identical bytes regardless of serialization path
//
// the record is marshalled to JSON, decoded into a generic map and
// re-marshalled: Go emits object keys in sorted order with no
// whitespace, which removes field order and formatting differences
func Canonical(v interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	if nil != err {
		return nil, fault.CanonicalEncodingFailed
	}

	var m map[string]interface{}
	err = json.Unmarshal(b, &m)
	if nil != err {
		return nil, fault.CanonicalEncodingFailed
	}

	canonical, err := json.Marshal(m)
	if nil != err {
		return nil, fault.CanonicalEncodingFailed
	}
	return canonical, nil
}
