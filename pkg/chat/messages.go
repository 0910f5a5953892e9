package chat

import (
	"encoding/json"

	"go.uber.org/zap"

	"burrow/pkg/apperr"
	"burrow/pkg/logger"
	"burrow/pkg/models"
	"burrow/pkg/store"
	"burrow/pkg/utils"
)

// SendMessage appends a message to the chat. Only members may send; the
// sender is the message's first viewer.
func SendMessage(chatID, sender, text string) (models.Message, error) {
	c, err := GetChat(chatID)
	if err != nil {
		return models.Message{}, err
	}
	if !c.HasMember(sender) {
		return models.Message{}, apperr.Unauthorized("sender is not a chat member")
	}
	m := models.Message{
		ID:      utils.GenID(),
		Chat:    chatID,
		Sender:  sender,
		Text:    text,
		Viewers: []string{sender},
		TS:      now().UTC().UnixNano(),
	}
	if err := m.Validate(); err != nil {
		return models.Message{}, err
	}
	b, err := json.Marshal(m)
	if err != nil {
		return models.Message{}, apperr.Internal("marshal message", err)
	}
	key := store.MsgKey(chatID, m.TS, store.NextSeq())
	if err := store.Set(key, b); err != nil {
		return models.Message{}, err
	}
	logger.Log.Debug("message_sent", zap.String("chat", chatID), zap.String("msg", m.ID))
	return m, nil
}

// ListMessages returns the chat's history oldest-first. Membership is
// required. limit > 0 keeps only the most recent limit messages, still
// oldest-first.
func ListMessages(chatID, caller string, limit int) ([]models.Message, error) {
	c, err := GetChat(chatID)
	if err != nil {
		return nil, err
	}
	if !c.HasMember(caller) {
		return nil, apperr.Unauthorized("caller is not a chat member")
	}
	recs, err := store.ScanPrefix(store.MsgScanPrefix(chatID))
	if err != nil {
		return nil, err
	}
	out := make([]models.Message, 0, len(recs))
	for _, r := range recs {
		var m models.Message
		if err := json.Unmarshal(r.Value, &m); err != nil {
			logger.Log.Warn("skip_malformed_message", zap.String("key", r.Key), zap.Error(err))
			continue
		}
		out = append(out, m)
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// MarkViewed records that user has seen the message. Re-viewing is a
// no-op; the viewer list never holds duplicates.
func MarkViewed(chatID, msgID, user string) error {
	c, err := GetChat(chatID)
	if err != nil {
		return err
	}
	if !c.HasMember(user) {
		return apperr.Unauthorized("caller is not a chat member")
	}
	recs, err := store.ScanPrefix(store.MsgScanPrefix(chatID))
	if err != nil {
		return err
	}
	for _, r := range recs {
		var m models.Message
		if err := json.Unmarshal(r.Value, &m); err != nil {
			continue
		}
		if m.ID != msgID {
			continue
		}
		return store.Update(r.Key, func(cur []byte, found bool) ([]byte, error) {
			if !found {
				return nil, apperr.NotFound("message not found: " + msgID)
			}
			var cm models.Message
			if err := json.Unmarshal(cur, &cm); err != nil {
				return nil, apperr.Wrap(apperr.CodeValidation, "malformed message document", err)
			}
			for _, v := range cm.Viewers {
				if v == user {
					return append([]byte(nil), cur...), nil
				}
			}
			cm.Viewers = append(cm.Viewers, user)
			return json.Marshal(cm)
		})
	}
	return apperr.NotFound("message not found: " + msgID)
}
