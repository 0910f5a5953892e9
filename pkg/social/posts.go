// Package social implements the post protocols: creation, the liker
// toggle, follow edges, comment-tree insertion and featured-post
// rotation with lazy expiry.
package social

import (
	"encoding/json"
	"sort"
	"time"

	"go.uber.org/zap"

	"burrow/pkg/apperr"
	"burrow/pkg/logger"
	"burrow/pkg/models"
	"burrow/pkg/store"
	"burrow/pkg/utils"
)

// now is swapped out by tests exercising the expiry window.
var now = time.Now

// CreatePost persists a new post owned by owner.
func CreatePost(owner, text, imageURL string) (models.Post, error) {
	p := models.Post{
		ID:        utils.GenID(),
		Owner:     owner,
		Text:      text,
		ImageURL:  imageURL,
		CreatedTS: now().UTC().UnixNano(),
	}
	if err := p.Validate(); err != nil {
		return models.Post{}, err
	}
	b, err := json.Marshal(p)
	if err != nil {
		return models.Post{}, apperr.Internal("marshal post", err)
	}
	if err := store.Set(store.PostKey(p.ID), b); err != nil {
		return models.Post{}, err
	}
	logger.Log.Info("post_created", zap.String("post", p.ID), zap.String("owner", owner))
	return p, nil
}

// GetPost returns the post or NotFound.
func GetPost(id string) (models.Post, error) {
	b, err := store.Get(store.PostKey(id))
	if err != nil {
		return models.Post{}, err
	}
	return decodePost(b)
}

// ListPosts returns posts newest-first. Listing is a read path, so it
// first expires stale featured flags and then reads the corrected set.
// limit <= 0 means no limit.
func ListPosts(limit int) ([]models.Post, error) {
	if _, err := ExpireStaleFeatured(); err != nil {
		return nil, err
	}
	recs, err := store.ScanPrefix(store.PostPrefix)
	if err != nil {
		return nil, err
	}
	out := make([]models.Post, 0, len(recs))
	for _, r := range recs {
		p, err := decodePost(r.Value)
		if err != nil {
			logger.Log.Warn("skip_malformed_post", zap.String("key", r.Key), zap.Error(err))
			continue
		}
		out = append(out, p)
	}
	// scan order is key order; feeds want newest first
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedTS > out[j].CreatedTS })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListPostsByOwner returns one user's posts newest-first.
func ListPostsByOwner(owner string, limit int) ([]models.Post, error) {
	all, err := ListPosts(0)
	if err != nil {
		return nil, err
	}
	out := make([]models.Post, 0, len(all))
	for _, p := range all {
		if p.Owner == owner {
			out = append(out, p)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// DeletePost removes a post; only the owner may delete it.
func DeletePost(id, caller string) error {
	p, err := GetPost(id)
	if err != nil {
		return err
	}
	if p.Owner != caller {
		return apperr.Unauthorized("only the owner can delete a post")
	}
	return store.Delete(store.PostKey(id))
}

func decodePost(b []byte) (models.Post, error) {
	var p models.Post
	if err := json.Unmarshal(b, &p); err != nil {
		return models.Post{}, apperr.Wrap(apperr.CodeValidation, "malformed post document", err)
	}
	if err := p.Validate(); err != nil {
		return models.Post{}, err
	}
	return p, nil
}
