package social

import (
	"encoding/json"

	"go.uber.org/zap"

	"burrow/pkg/apperr"
	"burrow/pkg/logger"
	"burrow/pkg/models"
	"burrow/pkg/notify"
	"burrow/pkg/store"
)

// LikeState is the post-toggle view returned to the caller.
type LikeState struct {
	Liked bool `json:"liked"`
	Count int  `json:"count"`
}

// ToggleLike flips userID's membership in the post's liker set and
// reports the resulting state. The read-modify-write runs serialized on
// the post key, so concurrent toggles by distinct users converge to one
// entry each. Each transition into the liked state notifies the owner
// anew; unliking retracts nothing.
func ToggleLike(postID, userID string) (LikeState, error) {
	var st LikeState
	var owner string
	err := store.Update(store.PostKey(postID), func(cur []byte, found bool) ([]byte, error) {
		if !found {
			return nil, apperr.NotFound("post not found: " + postID)
		}
		p, err := decodePost(cur)
		if err != nil {
			return nil, err
		}
		if p.HasLiker(userID) {
			next := p.Likers[:0]
			for _, id := range p.Likers {
				if id != userID {
					next = append(next, id)
				}
			}
			p.Likers = next
			st.Liked = false
		} else {
			p.Likers = append(p.Likers, userID)
			st.Liked = true
		}
		st.Count = len(p.Likers)
		owner = p.Owner
		return json.Marshal(p)
	})
	if err != nil {
		return LikeState{}, err
	}
	if st.Liked {
		notify.Emit(owner, models.NotifyLike, userID, postID)
	}
	logger.Log.Debug("like_toggled",
		zap.String("post", postID), zap.String("user", userID),
		zap.Bool("liked", st.Liked), zap.Int("count", st.Count))
	return st, nil
}

// ToggleFollow flips the follow edge (follower -> followee). Presence of
// the edge record is the only state; create/delete sidesteps duplicate
// entries but keeps toggle semantics. Returns the new following state.
func ToggleFollow(follower, followee string) (bool, error) {
	if follower == followee {
		return false, apperr.Validation("cannot follow yourself")
	}
	key := store.FollowKey(follower, followee)
	var following bool
	err := store.WithKeyLock(key, func() error {
		exists, err := store.Has(key)
		if err != nil {
			return err
		}
		if exists {
			following = false
			return store.Delete(key)
		}
		edge := models.FollowEdge{Follower: follower, Followee: followee, TS: now().UTC().UnixNano()}
		b, err := json.Marshal(edge)
		if err != nil {
			return apperr.Internal("marshal follow edge", err)
		}
		following = true
		return store.Set(key, b)
	})
	if err != nil {
		return false, err
	}
	if following {
		notify.Emit(followee, models.NotifyFollow, follower, "")
	}
	return following, nil
}

// IsFollowing reports edge presence.
func IsFollowing(follower, followee string) (bool, error) {
	return store.Has(store.FollowKey(follower, followee))
}

// ListFollowing returns the ids follower follows.
func ListFollowing(follower string) ([]string, error) {
	recs, err := store.ScanPrefix(store.FollowerScanPrefix(follower))
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		var e models.FollowEdge
		if err := json.Unmarshal(r.Value, &e); err != nil {
			continue
		}
		out = append(out, e.Followee)
	}
	return out, nil
}

// ListFollowers returns the ids following followee. Edges are keyed by
// follower, so this walks the whole namespace.
func ListFollowers(followee string) ([]string, error) {
	recs, err := store.ScanPrefix(store.FollowPrefix)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, r := range recs {
		var e models.FollowEdge
		if err := json.Unmarshal(r.Value, &e); err != nil {
			continue
		}
		if e.Followee == followee {
			out = append(out, e.Follower)
		}
	}
	return out, nil
}
