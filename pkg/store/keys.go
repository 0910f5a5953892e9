package store

import (
	"fmt"
	"strings"
)

// Key namespace. The first colon-delimited segment encodes the entity
// kind; uniqueness of an entity is uniqueness of its key. Container
// documents live under a ":meta" suffix so child records (chat messages)
// can share the container prefix without colliding with it.
const (
	UserPrefix     = "user:"
	UsernamePrefix = "username:"
	PostPrefix     = "post:"
	ChatPrefix     = "chat:"
	FollowPrefix   = "follow:"
	NotifPrefix    = "notif:"
	InvitePrefix   = "invite:"
	StatsPrefix    = "stats:"
)

func UserKey(id string) string     { return UserPrefix + id }
func UsernameKey(name string) string { return UsernamePrefix + strings.ToLower(name) }
func PostKey(id string) string     { return PostPrefix + id }
func ChatKey(id string) string     { return ChatPrefix + id + ":meta" }
func InviteKey(id string) string   { return InvitePrefix + id }
func StatsKey(user string) string  { return StatsPrefix + user }

// FollowKey addresses the edge (follower, followee); record presence is
// the following state.
func FollowKey(follower, followee string) string {
	return FollowPrefix + follower + ":" + followee
}

// FollowerScanPrefix matches all edges originating at follower.
func FollowerScanPrefix(follower string) string {
	return FollowPrefix + follower + ":"
}

// ChatScanPrefix matches the chat document and all of its messages;
// cascade deletion removes this whole range.
func ChatScanPrefix(chatID string) string { return ChatPrefix + chatID + ":" }

// MsgKey orders messages within a chat by a zero-padded nanosecond
// timestamp plus a small sequence to break same-nanosecond ties.
func MsgKey(chatID string, ts int64, seq uint64) string {
	return fmt.Sprintf("%s%s:msg:%020d-%06d", ChatPrefix, chatID, ts, seq%1000000)
}

// MsgScanPrefix matches all messages of a chat, in creation order.
func MsgScanPrefix(chatID string) string { return ChatPrefix + chatID + ":msg:" }

// NotifKey is unique per recipient and creation instant.
func NotifKey(recipient string, ts int64, seq uint64) string {
	return fmt.Sprintf("%s%s:%020d-%06d", NotifPrefix, recipient, ts, seq%1000000)
}

// NotifScanPrefix matches all notifications for a recipient, oldest first.
func NotifScanPrefix(recipient string) string { return NotifPrefix + recipient + ":" }

// IsMetaKey reports whether key addresses a container document rather
// than a child record.
func IsMetaKey(key string) bool { return strings.HasSuffix(key, ":meta") }
