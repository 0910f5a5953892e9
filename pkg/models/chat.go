package models

import "burrow/pkg/apperr"

type Chat struct {
	ID      string `json:"id"`
	Creator string `json:"creator"`
	// Members holds unique user ids; every change is paired with exactly
	// one system message in the same batch.
	Members   []string `json:"members,omitempty"`
	Public    bool     `json:"public,omitempty"`
	CreatedTS int64    `json:"created_ts"`
}

func (c Chat) Validate() error {
	if c.ID == "" {
		return apperr.Validation("chat id is required")
	}
	if c.Creator == "" {
		return apperr.Validation("chat creator is required")
	}
	return nil
}

// HasMember reports membership of user in the chat.
func (c Chat) HasMember(user string) bool {
	for _, id := range c.Members {
		if id == user {
			return true
		}
	}
	return false
}

// SystemSender is the synthetic author of membership announcements.
const SystemSender = "system"

type Message struct {
	ID     string `json:"id"`
	Chat   string `json:"chat"`
	Sender string `json:"sender"`
	Text   string `json:"text"`
	// System marks synthesized audit messages (joins, leaves, creation).
	System  bool     `json:"system,omitempty"`
	Viewers []string `json:"viewers,omitempty"`
	TS      int64    `json:"ts"`
}

func (m Message) Validate() error {
	if m.ID == "" {
		return apperr.Validation("message id is required")
	}
	if m.Chat == "" {
		return apperr.Validation("message chat is required")
	}
	if m.Sender == "" {
		return apperr.Validation("message sender is required")
	}
	if m.Text == "" {
		return apperr.Validation("message text is required")
	}
	return nil
}

const (
	InvitePending  = "pending"
	InviteAccepted = "accepted"
	InviteRejected = "rejected"
)

// Invite transitions pending -> accepted | rejected; both are terminal.
type Invite struct {
	ID        string `json:"id"`
	Chat      string `json:"chat"`
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Status    string `json:"status"`
	TS        int64  `json:"ts"`
}

func (i Invite) Validate() error {
	if i.ID == "" || i.Chat == "" || i.Sender == "" || i.Recipient == "" {
		return apperr.Validation("invite requires id, chat, sender and recipient")
	}
	switch i.Status {
	case InvitePending, InviteAccepted, InviteRejected:
		return nil
	}
	return apperr.Validation("invalid invite status")
}
