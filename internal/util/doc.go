// Copyright (c) 2025 Threadlinee
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides shared helpers for the threatintel-ai client.
//
// It contains rune-safe string manipulation (truncation, padding, title
// tokenization) and crash-safe atomic file writing used by the snapshot
// store.
package util
