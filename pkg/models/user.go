package models

import "burrow/pkg/apperr"

type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	// PasswordHash is a bcrypt hash; never serialized to clients.
	PasswordHash string `json:"password_hash,omitempty"`
	AvatarURL    string `json:"avatar_url,omitempty"`
	CreatedTS    int64  `json:"created_ts"`
}

func (u User) Validate() error {
	if u.ID == "" {
		return apperr.Validation("user id is required")
	}
	if len(u.Username) < 3 {
		return apperr.Validation("username must be at least 3 characters")
	}
	return nil
}
