// Copyright (c) 2025 Threadlinee
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"strings"
)

// Substrings that mark a failure description as credential-related or
// connectivity-related. Matched case-insensitively against both remote
// error bodies and transport errors.
var (
	authMarkers = []string{
		"unauthorized",
		"forbidden",
		"authentication",
		"api key",
		"apikey",
		"credential",
		"invalid key",
	}
	connectionMarkers = []string{
		"connection refused",
		"no such host",
		"unreachable",
		"dial tcp",
		"network is down",
		"connection reset",
	}
)

// classifyRemote maps a failure description onto an error type by known
// substrings. Anything unrecognized stays a plain remote error and is
// passed through verbatim.
func classifyRemote(message string) ErrorType {
	lower := strings.ToLower(message)
	for _, marker := range authMarkers {
		if strings.Contains(lower, marker) {
			return ErrTypeAuth
		}
	}
	for _, marker := range connectionMarkers {
		if strings.Contains(lower, marker) {
			return ErrTypeConnection
		}
	}
	return ErrTypeRemote
}

// Describe turns a dispatch failure into the human-readable text that
// replaces the pending placeholder. Never retried automatically; the user
// resends.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	switch TypeOf(err) {
	case ErrTypeAuth:
		return "The responder rejected the request as unauthorized. Check the credential configuration of the backend service and resend."
	case ErrTypeConnection:
		return "The backend is unreachable. Make sure the responder service is running and the base URL in your configuration is correct, then resend."
	case ErrTypeTimeout:
		return "The request timed out before the responder answered. The message was not lost locally; resend to try again."
	case ErrTypeInvalidResponse:
		return "The responder sent a reply this client could not understand: " + err.Error()
	default:
		return "Sorry, I encountered an error. " + err.Error()
	}
}
