// Package notify fans one notification document out per qualifying
// cross-user action. Writes go through a bounded in-memory queue so the
// primary mutation never waits on the notification write; a reader may
// observe the mutation before its notification exists.
package notify

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

// Emit queues one notification for recipient. Actions a user performs
// on their own resources are skipped; nothing else is deduplicated, so
// repeated like/unlike/like produces a fresh notification per liked
// transition. A full queue drops the notification (best-effort).
func Emit(recipient, kind, actor, subject string) {
	if recipient == "" || recipient == actor {
		return
	}
	n := models.Notification{
		ID:        newNotifID(),
		Recipient: recipient,
		Kind:      kind,
		Actor:     actor,
		Subject:   subject,
		TS:        now().UTC().UnixNano(),
	}
	if err := n.Validate(); err != nil {
		logger.Log.Warn("notify_invalid", zap.Error(err))
		return
	}
	b, err := json.Marshal(n)
	if err != nil {
		logger.Log.Error("notify_marshal_failed", zap.Error(err))
		return
	}
	if err := DefaultQueue.TryEnqueue(&Op{Recipient: recipient, Payload: b, TS: n.TS}); err != nil {
		logger.Log.Warn("notify_dropped",
			zap.String("recipient", recipient), zap.String("kind", kind), zap.Error(err))
	}
}

// Apply persists one queued notification. It is the worker handler.
func Apply(op *Op) error {
	key := store.NotifKey(op.Recipient, op.TS, op.EnqSeq)
	if err := store.Set(key, append([]byte(nil), op.Payload...)); err != nil {
		logger.Log.Error("notify_write_failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

// StartWorker launches the fanout worker; it exits when stop closes.
func StartWorker(stop <-chan struct{}) {
	go DefaultQueue.RunWorker(stop, Apply)
}

// Flush synchronously writes everything queued right now.
func Flush() {
	DefaultQueue.DrainPending(Apply)
}

// List returns recipient's notifications newest-first. limit <= 0 means
// no limit.
func List(recipient string, limit int) ([]models.Notification, error) {
	recs, err := store.ScanPrefix(store.NotifScanPrefix(recipient))
	if err != nil {
		return nil, err
	}
	out := make([]models.Notification, 0, len(recs))
	// key order is oldest-first; walk backwards
	for i := len(recs) - 1; i >= 0; i-- {
		var n models.Notification
		if err := json.Unmarshal(recs[i].Value, &n); err != nil {
			logger.Log.Warn("skip_malformed_notification", zap.String("key", recs[i].Key), zap.Error(err))
			continue
		}
		out = append(out, n)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// MarkRead flags one of recipient's notifications as read.
func MarkRead(recipient, id string) error {
	recs, err := store.ScanPrefix(store.NotifScanPrefix(recipient))
	if err != nil {
		return err
	}
	for _, r := range recs {
		var n models.Notification
		if err := json.Unmarshal(r.Value, &n); err != nil {
			continue
		}
		if n.ID != id {
			continue
		}
		key := r.Key
		return store.Update(key, func(cur []byte, found bool) ([]byte, error) {
			if !found {
				return nil, apperr.NotFound("notification not found: " + id)
			}
			var cn models.Notification
			if err := json.Unmarshal(cur, &cn); err != nil {
				return nil, apperr.Wrap(apperr.CodeValidation, "malformed notification document", err)
			}
			cn.Read = true
			return json.Marshal(cn)
		})
	}
	return apperr.NotFound("notification not found: " + id)
}

func newNotifID() string { return utils.GenPrefixedID("ntf") }
