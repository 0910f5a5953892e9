package models

import "burrow/pkg/apperr"

// Post embeds everything mutated by the post protocols: the liker set,
// the featured flag pair and the comment arena. Mutations rewrite the
// whole document (there is no partial-field update primitive).
type Post struct {
	ID       string `json:"id"`
	Owner    string `json:"owner"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	// Likers holds unique user ids; toggled, never duplicated.
	Likers []string `json:"likers,omitempty"`
	// Featured/FeaturedTS implement the at-most-one-featured invariant.
	// FeaturedTS is ns since epoch; zero when not featured.
	Featured   bool  `json:"featured,omitempty"`
	FeaturedTS int64 `json:"featured_ts,omitempty"`
	// Comments is a flat arena of nodes; parent/child relations are id
	// references, and reply trees are materialized at read time.
	Comments  []CommentNode `json:"comments,omitempty"`
	CreatedTS int64         `json:"created_ts"`
}

// CommentNode is one entry of a post's comment arena. Parent is empty for
// roots. Arena order is insertion order, which is also sibling order.
type CommentNode struct {
	ID        string `json:"id"`
	Owner     string `json:"owner"`
	Text      string `json:"text"`
	Parent    string `json:"parent,omitempty"`
	CreatedTS int64  `json:"created_ts"`
}

// CommentTree is the nested wire shape built from the arena for responses.
type CommentTree struct {
	ID        string        `json:"id"`
	Owner     string        `json:"owner"`
	Text      string        `json:"text"`
	CreatedTS int64         `json:"created_ts"`
	Replies   []CommentTree `json:"replies,omitempty"`
}

func (p Post) Validate() error {
	if p.ID == "" {
		return apperr.Validation("post id is required")
	}
	if p.Owner == "" {
		return apperr.Validation("post owner is required")
	}
	if p.Text == "" && p.ImageURL == "" {
		return apperr.Validation("post needs text or an image")
	}
	return nil
}

// HasLiker reports membership of user in the liker set.
func (p Post) HasLiker(user string) bool {
	for _, id := range p.Likers {
		if id == user {
			return true
		}
	}
	return false
}
