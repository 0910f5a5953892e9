package social

import (
	"encoding/json"

	"go.uber.org/zap"

	"burrow/pkg/apperr"
	"burrow/pkg/logger"
	"burrow/pkg/models"
	"burrow/pkg/notify"
	"burrow/pkg/store"
	"burrow/pkg/utils"
)

// MaxCommentDepth bounds reply nesting; without a ceiling a client
// replying to its own newest comment builds an arbitrarily deep chain.
const MaxCommentDepth = 32

// AddComment inserts a comment into the post's arena, either as a new
// root (parent == "") or as a reply under an existing node. Insertion
// only ever appends a leaf, so the arena stays a forest. A parent id
// that matches no node fails with NotFound and performs no mutation.
func AddComment(postID, owner, text, parent string) (models.CommentNode, error) {
	if text == "" {
		return models.CommentNode{}, apperr.Validation("comment text is required")
	}
	node := models.CommentNode{
		ID:        utils.GenID(),
		Owner:     owner,
		Text:      text,
		Parent:    parent,
		CreatedTS: now().UTC().UnixNano(),
	}
	var postOwner string
	err := store.Update(store.PostKey(postID), func(cur []byte, found bool) ([]byte, error) {
		if !found {
			return nil, apperr.NotFound("post not found: " + postID)
		}
		p, err := decodePost(cur)
		if err != nil {
			return nil, err
		}
		if parent != "" {
			depth, ok := arenaDepth(p.Comments, parent)
			if !ok {
				return nil, apperr.NotFound("comment not found: " + parent)
			}
			if depth+1 >= MaxCommentDepth {
				return nil, apperr.Validation("reply nesting too deep")
			}
		}
		p.Comments = append(p.Comments, node)
		postOwner = p.Owner
		return json.Marshal(p)
	})
	if err != nil {
		return models.CommentNode{}, err
	}
	notify.Emit(postOwner, models.NotifyComment, owner, postID)
	logger.Log.Debug("comment_added",
		zap.String("post", postID), zap.String("comment", node.ID), zap.String("parent", parent))
	return node, nil
}

// ListComments returns the post's comment forest in nested wire shape.
func ListComments(postID string) ([]models.CommentTree, error) {
	p, err := GetPost(postID)
	if err != nil {
		return nil, err
	}
	return BuildCommentTrees(p.Comments), nil
}

// arenaDepth finds id in the arena and returns its depth (roots are 0).
// The parent chain is walked iteratively with a step bound, so a
// corrupted arena with a cycle terminates instead of spinning.
func arenaDepth(arena []models.CommentNode, id string) (int, bool) {
	parents := make(map[string]string, len(arena))
	seen := false
	for _, n := range arena {
		parents[n.ID] = n.Parent
		if n.ID == id {
			seen = true
		}
	}
	if !seen {
		return 0, false
	}
	depth := 0
	cur := id
	for steps := 0; steps <= len(arena); steps++ {
		p, ok := parents[cur]
		if !ok || p == "" {
			return depth, true
		}
		depth++
		cur = p
	}
	// cycle: treat as at the ceiling so insertion under it is refused
	return MaxCommentDepth, true
}

// BuildCommentTrees materializes the nested reply shape from the flat
// arena. Nodes link to their parent by id; arena order is sibling order.
// Nodes whose parent is missing are dropped rather than invented as roots.
func BuildCommentTrees(arena []models.CommentNode) []models.CommentTree {
	type link struct {
		node     models.CommentNode
		children []*link
	}
	byID := make(map[string]*link, len(arena))
	var roots []*link
	for _, n := range arena {
		byID[n.ID] = &link{node: n}
	}
	for _, n := range arena {
		l := byID[n.ID]
		if n.Parent == "" {
			roots = append(roots, l)
			continue
		}
		if parent, ok := byID[n.Parent]; ok {
			parent.children = append(parent.children, l)
		}
	}
	// convert links to value trees; recursion depth is capped by
	// MaxCommentDepth at insertion time
	var convert func(l *link) models.CommentTree
	convert = func(l *link) models.CommentTree {
		t := models.CommentTree{
			ID:        l.node.ID,
			Owner:     l.node.Owner,
			Text:      l.node.Text,
			CreatedTS: l.node.CreatedTS,
		}
		for _, c := range l.children {
			t.Replies = append(t.Replies, convert(c))
		}
		return t
	}
	out := make([]models.CommentTree, 0, len(roots))
	for _, r := range roots {
		out = append(out, convert(r))
	}
	return out
}
