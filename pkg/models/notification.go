package models

import "burrow/pkg/apperr"

const (
	NotifyLike    = "like"
	NotifyComment = "comment"
	NotifyFollow  = "follow"
	NotifyInvite  = "invite"
)

// Notification records one cross-user action. Repeated transitions into
// the same state produce fresh notifications; nothing is retracted when
// the triggering state is undone.
type Notification struct {
	ID        string `json:"id"`
	Recipient string `json:"recipient"`
	Kind      string `json:"kind"`
	Actor     string `json:"actor"`
	// Subject references the post/chat/user the action touched.
	Subject string `json:"subject,omitempty"`
	Read    bool   `json:"read,omitempty"`
	TS      int64  `json:"ts"`
}

func (n Notification) Validate() error {
	if n.Recipient == "" || n.Actor == "" {
		return apperr.Validation("notification requires recipient and actor")
	}
	switch n.Kind {
	case NotifyLike, NotifyComment, NotifyFollow, NotifyInvite:
		return nil
	}
	return apperr.Validation("invalid notification kind")
}
