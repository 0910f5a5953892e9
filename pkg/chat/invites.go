package chat

import (
	"encoding/json"

	"github.com/cockroachdb/pebble"
	"go.uber.org/zap"

	"burrow/pkg/apperr"
	"burrow/pkg/logger"
	"burrow/pkg/models"
	"burrow/pkg/notify"
	"burrow/pkg/store"
	"burrow/pkg/utils"
)

// CreateInvite records a pending invite and notifies the recipient. The
// sender must be a member. The recipient id is taken as given; an invite
// to an id that never logs in simply stays pending.
func CreateInvite(chatID, sender, recipient string) (models.Invite, error) {
	c, err := GetChat(chatID)
	if err != nil {
		return models.Invite{}, err
	}
	if !c.HasMember(sender) {
		return models.Invite{}, apperr.Unauthorized("sender is not a chat member")
	}
	if c.HasMember(recipient) {
		return models.Invite{}, apperr.Conflict("recipient is already a member")
	}
	inv := models.Invite{
		ID:        utils.GenID(),
		Chat:      chatID,
		Sender:    sender,
		Recipient: recipient,
		Status:    models.InvitePending,
		TS:        now().UTC().UnixNano(),
	}
	if err := inv.Validate(); err != nil {
		return models.Invite{}, err
	}
	b, err := json.Marshal(inv)
	if err != nil {
		return models.Invite{}, apperr.Internal("marshal invite", err)
	}
	if err := store.Set(store.InviteKey(inv.ID), b); err != nil {
		return models.Invite{}, err
	}
	notify.Emit(recipient, models.NotifyInvite, sender, chatID)
	logger.Log.Info("invite_created",
		zap.String("invite", inv.ID), zap.String("chat", chatID), zap.String("recipient", recipient))
	return inv, nil
}

// GetInvite returns the invite document or NotFound.
func GetInvite(id string) (models.Invite, error) {
	b, err := store.Get(store.InviteKey(id))
	if err != nil {
		return models.Invite{}, err
	}
	var inv models.Invite
	if err := json.Unmarshal(b, &inv); err != nil {
		return models.Invite{}, apperr.Wrap(apperr.CodeValidation, "malformed invite document", err)
	}
	return inv, nil
}

// ListInvites returns user's pending invites.
func ListInvites(user string) ([]models.Invite, error) {
	recs, err := store.ScanPrefix(store.InvitePrefix)
	if err != nil {
		return nil, err
	}
	var out []models.Invite
	for _, r := range recs {
		var inv models.Invite
		if err := json.Unmarshal(r.Value, &inv); err != nil {
			logger.Log.Warn("skip_malformed_invite", zap.String("key", r.Key), zap.Error(err))
			continue
		}
		if inv.Recipient == user && inv.Status == models.InvitePending {
			out = append(out, inv)
		}
	}
	return out, nil
}

// ResolveInvite moves a pending invite to accepted or rejected. Both
// outcomes are terminal: resolving an already-resolved invite fails with
// Conflict. Acceptance joins the recipient and writes the membership
// edit, its system message and the status flip in one batch.
func ResolveInvite(id, caller string, accept bool) (models.Invite, error) {
	var resolved models.Invite
	err := store.WithKeyLock(store.InviteKey(id), func() error {
		inv, err := GetInvite(id)
		if err != nil {
			return err
		}
		if inv.Recipient != caller {
			return apperr.Unauthorized("only the recipient can resolve an invite")
		}
		if inv.Status != models.InvitePending {
			return apperr.Conflict("invite already " + inv.Status)
		}

		if !accept {
			inv.Status = models.InviteRejected
			b, err := json.Marshal(inv)
			if err != nil {
				return apperr.Internal("marshal invite", err)
			}
			if err := store.Set(store.InviteKey(id), b); err != nil {
				return err
			}
			resolved = inv
			return nil
		}

		inv.Status = models.InviteAccepted
		b, err := json.Marshal(inv)
		if err != nil {
			return apperr.Internal("marshal invite", err)
		}
		changed, err := changeMembership(inv.Chat, caller, OpJoin, func(wb *pebble.Batch) error {
			return wb.Set([]byte(store.InviteKey(id)), b, nil)
		})
		if err != nil {
			return err
		}
		if !changed {
			// already a member; flip the status on its own
			if err := store.Set(store.InviteKey(id), b); err != nil {
				return err
			}
		}
		resolved = inv
		return nil
	})
	if err != nil {
		return models.Invite{}, err
	}
	logger.Log.Info("invite_resolved",
		zap.String("invite", id), zap.String("status", resolved.Status))
	return resolved, nil
}
