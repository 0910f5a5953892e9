// Package chat implements chats, ordered messages, the membership
// editor (member-set change paired with exactly one system message) and
// the invite state machine.
package chat

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"burrow/pkg/apperr"
	"burrow/pkg/logger"
	"burrow/pkg/models"
	"burrow/pkg/store"
	"burrow/pkg/utils"
)

var now = time.Now

// CreateChat creates a chat with the creator as its only member and the
// creation announcement as its first system message, in one atomic batch.
func CreateChat(creator string, public bool) (models.Chat, error) {
	c := models.Chat{
		ID:        utils.GenID(),
		Creator:   creator,
		Members:   []string{creator},
		Public:    public,
		CreatedTS: now().UTC().UnixNano(),
	}
	if err := c.Validate(); err != nil {
		return models.Chat{}, err
	}
	cb, err := json.Marshal(c)
	if err != nil {
		return models.Chat{}, apperr.Internal("marshal chat", err)
	}
	msgKey, msgPayload, err := systemMessage(c.ID, creator+" created the chat")
	if err != nil {
		return models.Chat{}, err
	}
	wb := store.NewBatch()
	_ = wb.Set([]byte(store.ChatKey(c.ID)), cb, nil)
	_ = wb.Set([]byte(msgKey), msgPayload, nil)
	if err := store.ApplyBatch(wb); err != nil {
		return models.Chat{}, err
	}
	logger.Log.Info("chat_created", zap.String("chat", c.ID), zap.String("creator", creator))
	return c, nil
}

// GetChat returns the chat document or NotFound.
func GetChat(id string) (models.Chat, error) {
	b, err := store.Get(store.ChatKey(id))
	if err != nil {
		return models.Chat{}, err
	}
	return decodeChat(b)
}

// ListChats returns the chats visible to user: public ones plus any the
// user is a member of.
func ListChats(user string) ([]models.Chat, error) {
	recs, err := store.ScanPrefix(store.ChatPrefix)
	if err != nil {
		return nil, err
	}
	var out []models.Chat
	for _, r := range recs {
		if !store.IsMetaKey(r.Key) {
			continue
		}
		c, err := decodeChat(r.Value)
		if err != nil {
			logger.Log.Warn("skip_malformed_chat", zap.String("key", r.Key), zap.Error(err))
			continue
		}
		if c.Public || c.HasMember(user) {
			out = append(out, c)
		}
	}
	return out, nil
}

// DeleteChat removes the chat and cascades over every message sharing
// its key prefix. Only the creator may delete.
func DeleteChat(id, caller string) error {
	c, err := GetChat(id)
	if err != nil {
		return err
	}
	if c.Creator != caller {
		return apperr.Unauthorized("only the creator can delete a chat")
	}
	n, err := store.DeletePrefix(store.ChatScanPrefix(id))
	if err != nil {
		return err
	}
	logger.Log.Info("chat_deleted", zap.String("chat", id), zap.Int("records", n))
	return nil
}

func decodeChat(b []byte) (models.Chat, error) {
	var c models.Chat
	if err := json.Unmarshal(b, &c); err != nil {
		return models.Chat{}, apperr.Wrap(apperr.CodeValidation, "malformed chat document", err)
	}
	if err := c.Validate(); err != nil {
		return models.Chat{}, err
	}
	return c, nil
}

// systemMessage builds the key and payload for a synthesized audit
// message attributed to the system sender.
func systemMessage(chatID, text string) (string, []byte, error) {
	ts := now().UTC().UnixNano()
	m := models.Message{
		ID:     utils.GenID(),
		Chat:   chatID,
		Sender: models.SystemSender,
		Text:   text,
		System: true,
		TS:     ts,
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", nil, apperr.Internal("marshal system message", err)
	}
	return store.MsgKey(chatID, ts, store.NextSeq()), b, nil
}
