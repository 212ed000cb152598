// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fault - error instances
//
// Provides a single instance of each error to allow easy comparison,
// grouped into classes that match how the caller can recover:
// validation and not-found errors are correctable inputs, conflict
// errors are retryable races, immutability and integrity errors are
// hard denials.
package fault
