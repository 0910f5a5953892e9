package chat

import (
	"encoding/json"

	"github.com/cockroachdb/pebble"
	"go.uber.org/zap"

	"burrow/pkg/apperr"
	"burrow/pkg/logger"
	"burrow/pkg/store"
)

// MembershipOp selects the direction of a membership change.
type MembershipOp string

const (
	OpJoin  MembershipOp = "join"
	OpLeave MembershipOp = "leave"
)

// Join adds user to a chat they can see. Private chats are joined only
// through invite acceptance.
func Join(chatID, user string) (bool, error) {
	c, err := GetChat(chatID)
	if err != nil {
		return false, err
	}
	if !c.Public && !c.HasMember(user) {
		return false, apperr.Unauthorized("chat is private; join by invite")
	}
	return ChangeMembership(chatID, user, OpJoin)
}

// Leave removes user from the chat.
func Leave(chatID, user string) (bool, error) {
	return ChangeMembership(chatID, user, OpLeave)
}

// ChangeMembership applies one membership edit. When the member set
// actually changes, the updated chat document and exactly one system
// message announcing the change are committed in the same batch; an edit
// that leaves the set unchanged writes nothing and announces nothing.
func ChangeMembership(chatID, userID string, op MembershipOp) (bool, error) {
	return changeMembership(chatID, userID, op, nil)
}

// changeMembership holds the chat's key lock for the whole
// read-modify-write. extend, when non-nil, appends caller writes to the
// same batch so compound transitions (invite acceptance) stay atomic.
func changeMembership(chatID, userID string, op MembershipOp, extend func(wb *pebble.Batch) error) (bool, error) {
	if userID == "" {
		return false, apperr.Validation("user id is required")
	}
	changed := false
	err := store.WithKeyLock(store.ChatKey(chatID), func() error {
		b, err := store.Get(store.ChatKey(chatID))
		if err != nil {
			return err
		}
		c, err := decodeChat(b)
		if err != nil {
			return err
		}
		present := c.HasMember(userID)
		var announce string
		switch op {
		case OpJoin:
			if present {
				return nil
			}
			c.Members = append(c.Members, userID)
			announce = userID + " joined the chat"
		case OpLeave:
			if !present {
				return nil
			}
			members := c.Members[:0]
			for _, id := range c.Members {
				if id != userID {
					members = append(members, id)
				}
			}
			c.Members = members
			announce = userID + " left the chat"
		default:
			return apperr.Validation("unknown membership op: " + string(op))
		}

		cb, err := json.Marshal(c)
		if err != nil {
			return apperr.Internal("marshal chat", err)
		}
		msgKey, msgPayload, err := systemMessage(chatID, announce)
		if err != nil {
			return err
		}
		wb := store.NewBatch()
		_ = wb.Set([]byte(store.ChatKey(chatID)), cb, nil)
		_ = wb.Set([]byte(msgKey), msgPayload, nil)
		if extend != nil {
			if err := extend(wb); err != nil {
				return err
			}
		}
		if err := store.ApplyBatch(wb); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if changed {
		logger.Log.Debug("membership_changed",
			zap.String("chat", chatID), zap.String("user", userID), zap.String("op", string(op)))
	}
	return changed, nil
}
