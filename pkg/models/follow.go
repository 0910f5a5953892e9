package models

// FollowEdge exists iff follower follows followee; presence of the record
// is the only state.
type FollowEdge struct {
	Follower string `json:"follower"`
	Followee string `json:"followee"`
	TS       int64  `json:"ts"`
}
