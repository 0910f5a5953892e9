// Package account manages user registration, credentials and profiles.
package account

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"burrow/pkg/apperr"
	"burrow/pkg/auth"
	"burrow/pkg/logger"
	"burrow/pkg/models"
	"burrow/pkg/store"
	"burrow/pkg/utils"
)

var now = time.Now

// Service wires account operations to token issuing and refresh
// sessions.
type Service struct {
	signer   *auth.Signer
	sessions *auth.SessionStore
}

func NewService(signer *auth.Signer, sessions *auth.SessionStore) *Service {
	return &Service{signer: signer, sessions: sessions}
}

// Register creates a user. Username uniqueness is enforced through a
// lowercased index record; the lock on the index key closes the
// check-then-create race.
func (s *Service) Register(ctx context.Context, username, password, displayName string) (models.User, auth.Tokens, error) {
	username = strings.TrimSpace(username)
	if len(username) < 3 {
		return models.User{}, auth.Tokens{}, apperr.Validation("username must be at least 3 characters")
	}
	if len(password) < 8 {
		return models.User{}, auth.Tokens{}, apperr.Validation("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, auth.Tokens{}, apperr.Internal("hash password", err)
	}
	u := models.User{
		ID:           utils.GenID(),
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		CreatedTS:    now().UTC().UnixNano(),
	}
	if err := u.Validate(); err != nil {
		return models.User{}, auth.Tokens{}, err
	}
	ub, err := json.Marshal(u)
	if err != nil {
		return models.User{}, auth.Tokens{}, apperr.Internal("marshal user", err)
	}

	idxKey := store.UsernameKey(username)
	err = store.WithKeyLock(idxKey, func() error {
		taken, err := store.Has(idxKey)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Conflict("username already taken: " + username)
		}
		wb := store.NewBatch()
		_ = wb.Set([]byte(idxKey), []byte(u.ID), nil)
		_ = wb.Set([]byte(store.UserKey(u.ID)), ub, nil)
		return store.ApplyBatch(wb)
	})
	if err != nil {
		return models.User{}, auth.Tokens{}, err
	}

	toks, err := s.issue(ctx, u.ID)
	if err != nil {
		return models.User{}, auth.Tokens{}, err
	}
	logger.Log.Info("user_registered", zap.String("user", u.ID), zap.String("username", username))
	return sanitize(u), toks, nil
}

// Login verifies credentials and returns a fresh token pair. Unknown
// usernames and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (models.User, auth.Tokens, error) {
	u, err := GetByUsername(username)
	if err != nil {
		if apperr.Is(err, apperr.CodeNotFound) {
			return models.User{}, auth.Tokens{}, apperr.Unauthorized("invalid credentials")
		}
		return models.User{}, auth.Tokens{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return models.User{}, auth.Tokens{}, apperr.Unauthorized("invalid credentials")
	}
	toks, err := s.issue(ctx, u.ID)
	if err != nil {
		return models.User{}, auth.Tokens{}, err
	}
	logger.Log.Info("user_login", zap.String("user", u.ID))
	return sanitize(u), toks, nil
}

// Refresh exchanges a valid refresh token for a new pair and rotates
// the session.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (auth.Tokens, error) {
	hash := auth.HashToken(refreshToken)
	userID, err := s.sessions.Lookup(ctx, hash)
	if err != nil {
		return auth.Tokens{}, err
	}
	if err := s.sessions.Revoke(ctx, hash); err != nil {
		return auth.Tokens{}, err
	}
	return s.issue(ctx, userID)
}

// Logout revokes the refresh session.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	return s.sessions.Revoke(ctx, auth.HashToken(refreshToken))
}

func (s *Service) issue(ctx context.Context, userID string) (auth.Tokens, error) {
	access, err := s.signer.Issue(userID, auth.AccessTokenTTL)
	if err != nil {
		return auth.Tokens{}, err
	}
	refresh, err := s.signer.Issue(userID, auth.RefreshTokenTTL)
	if err != nil {
		return auth.Tokens{}, err
	}
	if err := s.sessions.Save(ctx, auth.HashToken(refresh), userID, auth.RefreshTokenTTL); err != nil {
		return auth.Tokens{}, err
	}
	return auth.Tokens{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(auth.AccessTokenTTL.Seconds()),
	}, nil
}

// Get returns the user's profile without credential material.
func Get(id string) (models.User, error) {
	b, err := store.Get(store.UserKey(id))
	if err != nil {
		return models.User{}, err
	}
	var u models.User
	if err := json.Unmarshal(b, &u); err != nil {
		return models.User{}, apperr.Wrap(apperr.CodeValidation, "malformed user document", err)
	}
	return sanitize(u), nil
}

// GetByUsername resolves the username index and loads the user with
// credentials intact. Callers exposing the result must sanitize it.
func GetByUsername(username string) (models.User, error) {
	idb, err := store.Get(store.UsernameKey(username))
	if err != nil {
		return models.User{}, err
	}
	b, err := store.Get(store.UserKey(string(idb)))
	if err != nil {
		return models.User{}, err
	}
	var u models.User
	if err := json.Unmarshal(b, &u); err != nil {
		return models.User{}, apperr.Wrap(apperr.CodeValidation, "malformed user document", err)
	}
	return u, nil
}

// UpdateProfile changes display name and avatar for the caller.
func UpdateProfile(id, displayName, avatarURL string) (models.User, error) {
	var out models.User
	err := store.Update(store.UserKey(id), func(cur []byte, found bool) ([]byte, error) {
		if !found {
			return nil, apperr.NotFound("user not found: " + id)
		}
		var u models.User
		if err := json.Unmarshal(cur, &u); err != nil {
			return nil, apperr.Wrap(apperr.CodeValidation, "malformed user document", err)
		}
		if displayName != "" {
			u.DisplayName = displayName
		}
		if avatarURL != "" {
			u.AvatarURL = avatarURL
		}
		out = u
		return json.Marshal(u)
	})
	if err != nil {
		return models.User{}, err
	}
	return sanitize(out), nil
}

func sanitize(u models.User) models.User {
	u.PasswordHash = ""
	return u
}
