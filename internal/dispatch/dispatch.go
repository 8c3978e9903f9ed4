// Copyright (c) 2025 Threadlinee
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dispatch runs the send pipeline: validate the outgoing turn,
// screen it, append the optimistic exchange, call the responder, and
// reconcile the placeholder with whatever came back.
package dispatch

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/Threadlinee/threatintel-ai/internal/api"
	"github.com/Threadlinee/threatintel-ai/internal/model"
	"github.com/Threadlinee/threatintel-ai/internal/moderation"
	"github.com/Threadlinee/threatintel-ai/internal/store"
)

// =============================================================================
// RESPONDER CONTRACT
// =============================================================================

// Responder produces the assistant's reply for an outgoing message.
// *api.Client satisfies it.
type Responder interface {
	Send(ctx context.Context, req api.SendRequest) (string, error)
}

// =============================================================================
// INPUT / RESULT
// =============================================================================

// Input is one outgoing user turn.
type Input struct {
	Text string

	// Attachment metadata plus its payload, already loaded by the caller.
	Attachment     *model.Attachment
	AttachmentData []byte
}

// Result reports how a dispatched turn resolved. It is produced after the
// responder returns, so by the time the caller sees it the placeholder has
// already been rewritten in the store.
type Result struct {
	ConversationID string
	PlaceholderID  string

	// Text is the final assistant body now occupying the placeholder:
	// the responder's reply, or a readable failure description.
	Text   string
	Failed bool

	// FlaggedInput is set when screening matched the raw text. The caller
	// shows a warning for this turn and drops it on the next send.
	FlaggedInput bool
}

// =============================================================================
// DISPATCHER
// =============================================================================

// Dispatcher owns the single in-flight exchange. A second send while one
// is pending is refused rather than queued.
type Dispatcher struct {
	store     *store.Store
	responder Responder
	detector  moderation.Detector

	inflight atomic.Bool
}

// New creates a dispatcher. detector may be moderation.Nop{}.
func New(s *store.Store, r Responder, d moderation.Detector) *Dispatcher {
	if d == nil {
		d = moderation.Nop{}
	}
	return &Dispatcher{store: s, responder: r, detector: d}
}

// Busy reports whether an exchange is currently in flight.
func (d *Dispatcher) Busy() bool {
	return d.inflight.Load()
}

// Prepare validates and stages an outgoing turn: screening, the optimistic
// user+placeholder append, and the in-flight guard all happen here,
// synchronously. The returned Staged drives the responder call.
//
// ok is false when the turn is refused: blank with no attachment, no
// active conversation, or another exchange still in flight. Refusals
// leave the store untouched.
func (d *Dispatcher) Prepare(in Input) (Staged, bool) {
	text := strings.TrimSpace(in.Text)
	if text == "" && in.Attachment == nil {
		return Staged{}, false
	}

	convID := d.store.ActiveID()
	if convID == "" {
		return Staged{}, false
	}

	if !d.inflight.CompareAndSwap(false, true) {
		return Staged{}, false
	}

	flagged := text != "" && d.detector.Detect(text)
	if flagged {
		text = d.detector.Redact(text)
	}

	user := model.NewUserMessage(text)
	user.Attachment = in.Attachment
	placeholder := model.NewPendingMessage()
	d.store.AppendExchange(convID, user, placeholder)

	return Staged{
		ConversationID: convID,
		PlaceholderID:  placeholder.ID,
		Text:           text,
		Flagged:        flagged,
		Attachment:     in.Attachment,
		AttachmentData: in.AttachmentData,
	}, true
}

// Staged is a prepared turn waiting on the responder.
type Staged struct {
	ConversationID string
	PlaceholderID  string
	Text           string
	Flagged        bool
	Attachment     *model.Attachment
	AttachmentData []byte
}

// Complete runs the responder for a staged turn and reconciles the
// placeholder. It blocks until the responder returns or ctx ends, so it
// belongs off the event loop. The in-flight guard is released on every
// path out.
func (d *Dispatcher) Complete(ctx context.Context, st Staged) Result {
	defer d.inflight.Store(false)

	req := api.SendRequest{
		Message:           st.Text,
		ConversationID:    st.ConversationID,
		ProfanityDetected: st.Flagged,
	}
	if st.Attachment != nil {
		req.Attachment = st.AttachmentData
		req.AttachmentName = st.Attachment.Name
		req.AttachmentMimeType = st.Attachment.MimeType
	}

	res := Result{
		ConversationID: st.ConversationID,
		PlaceholderID:  st.PlaceholderID,
		FlaggedInput:   st.Flagged,
	}

	reply, err := d.responder.Send(ctx, req)
	if err != nil {
		res.Text = api.Describe(err)
		res.Failed = true
	} else {
		res.Text = reply
	}

	d.store.ResolvePlaceholder(st.ConversationID, st.PlaceholderID, res.Text)
	return res
}

// Dispatch stages and completes a turn in one call. Interactive callers
// split the two so the optimistic append paints before the wait starts.
func (d *Dispatcher) Dispatch(ctx context.Context, in Input) (Result, bool) {
	st, ok := d.Prepare(in)
	if !ok {
		return Result{}, false
	}
	return d.Complete(ctx, st), true
}
