// Copyright (c) 2025 Threadlinee
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and
// messages.
//
// A Conversation is one independent chat thread with its own id, title and
// chronological message sequence. Messages are append-only: the single
// permitted rewrite is the resolution of a pending assistant placeholder,
// addressed by message identity.
package model
