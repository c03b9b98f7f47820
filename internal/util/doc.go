// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util holds small file helpers shared by the export writer and the
// line editor history.
//
//	err := util.AtomicWriteFile(path, data, 0600, 0700)
package util
