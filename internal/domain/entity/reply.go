package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ReplyStatus is the lifecycle state of a reply draft.
type ReplyStatus string

const (
	// ReplyStatusDraft is an editable draft, either freshly generated or
	// invalidated by a later edit.
	ReplyStatusDraft ReplyStatus = "draft"
	// ReplyStatusApproved marks a draft the tenant signed off on.
	ReplyStatusApproved ReplyStatus = "approved"
	// ReplyStatusPosted means the reply was published upstream. Terminal for
	// the editing surface.
	ReplyStatusPosted ReplyStatus = "posted"
	// ReplyStatusFailed marks a reply whose upstream publish failed.
	ReplyStatusFailed ReplyStatus = "failed"
)

// ErrInvalidReplyTransition is returned by Transition for a disallowed move.
var ErrInvalidReplyTransition = errors.New("invalid reply status transition")

// Reply is the locally editable response to a review, one-to-one with it.
// Ingestion never touches a reply; all mutations go through the reply
// usecase, which drives the status machine via Transition.
type Reply struct {
	ID        uuid.UUID
	ReviewID  uuid.UUID
	TenantID  uuid.UUID
	Text      string
	Status    ReplyStatus
	UpdatedAt time.Time
	PostedAt  *time.Time // Set once the reply is published upstream.
}

// replyTransitions enumerates the allowed status moves. "failed" is
// reachable from any non-posted state; "posted" is terminal.
var replyTransitions = map[ReplyStatus][]ReplyStatus{
	ReplyStatusDraft:    {ReplyStatusApproved, ReplyStatusFailed},
	ReplyStatusApproved: {ReplyStatusDraft, ReplyStatusPosted, ReplyStatusFailed},
	ReplyStatusFailed:   {ReplyStatusDraft, ReplyStatusFailed},
	ReplyStatusPosted:   {},
}

// Transition moves the reply to the target status, or returns
// ErrInvalidReplyTransition when the move is not allowed.
func (r *Reply) Transition(target ReplyStatus) error {
	for _, allowed := range replyTransitions[r.Status] {
		if allowed == target {
			r.Status = target

			return nil
		}
	}

	return errors.Wrapf(ErrInvalidReplyTransition, "%s -> %s", r.Status, target)
}

// Editable reports whether the editing surface may still change the text.
// A posted reply rejects edits outright.
func (r *Reply) Editable() bool {
	return r.Status != ReplyStatusPosted
}

// Edit replaces the text and forces the status back to draft. An edit
// invalidates a prior approval. Editing a posted reply is an error the
// caller must map to a Forbidden rejection, never a silent no-op.
func (r *Reply) Edit(text string) error {
	if !r.Editable() {
		return errors.Wrap(ErrInvalidReplyTransition, "reply already posted")
	}

	r.Text = text
	r.Status = ReplyStatusDraft

	return nil
}
